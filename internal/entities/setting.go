package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	SettingKeyNotebookSyncEnabled     = "notebook_sync_enabled"
	SettingKeyNotebookSyncSchedule    = "notebook_sync_schedule"
	SettingKeyNotebookSyncRegion      = "notebook_sync_region"
	SettingKeyNotebookSyncOutputDir   = "notebook_sync_output_dir"
	SettingKeyNotebookSyncLastAt      = "notebook_sync_last_at"
	SettingKeyNotebookSyncLastStatus  = "notebook_sync_last_status"
	SettingKeyNotebookSyncLastMessage = "notebook_sync_last_message"
)
