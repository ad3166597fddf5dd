package settingsstore

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/kindle-notebook/internal/entities"
	"github.com/mrlokans/kindle-notebook/internal/kindle"
)

// ErrInvalidSetting marks an update rejected by validation.
var ErrInvalidSetting = errors.New("invalid setting")

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NotebookSyncConfig is the effective configuration of scheduled runs.
type NotebookSyncConfig struct {
	Enabled   bool   `json:"enabled"`
	Schedule  string `json:"schedule"`
	Region    string `json:"region"`
	OutputDir string `json:"output_dir"`
}

// NotebookSyncConfigInfo includes where each value came from.
type NotebookSyncConfigInfo struct {
	NotebookSyncConfig
	EnabledSource   string `json:"enabled_source"`
	ScheduleSource  string `json:"schedule_source"`
	RegionSource    string `json:"region_source"`
	OutputDirSource string `json:"output_dir_source"`
}

// NotebookSyncStatus is the outcome of the last run.
type NotebookSyncStatus struct {
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	Status     string     `json:"status,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// NotebookSyncUpdate holds optional overrides; nil fields are left alone.
type NotebookSyncUpdate struct {
	Enabled   *bool   `json:"enabled"`
	Schedule  *string `json:"schedule"`
	Region    *string `json:"region"`
	OutputDir *string `json:"output_dir"`
}

func (s *SettingsStore) GetNotebookSyncConfigInfo() NotebookSyncConfigInfo {
	var info NotebookSyncConfigInfo

	enabled, source := s.lookup(entities.SettingKeyNotebookSyncEnabled, strconv.FormatBool(s.cfg.NotebookSync.Enabled))
	info.Enabled = enabled == "true" || enabled == "1"
	info.EnabledSource = source

	info.Schedule, info.ScheduleSource = s.lookup(entities.SettingKeyNotebookSyncSchedule, s.cfg.NotebookSync.Schedule)
	info.Region, info.RegionSource = s.lookup(entities.SettingKeyNotebookSyncRegion, s.cfg.Kindle.Region)
	info.OutputDir, info.OutputDirSource = s.lookup(entities.SettingKeyNotebookSyncOutputDir, s.cfg.Output.Dir)
	return info
}

func (s *SettingsStore) GetNotebookSyncConfig() NotebookSyncConfig {
	return s.GetNotebookSyncConfigInfo().NotebookSyncConfig
}

// UpdateNotebookSyncConfig validates and stores the given overrides.
func (s *SettingsStore) UpdateNotebookSyncConfig(update NotebookSyncUpdate) error {
	values := map[string]string{}
	if update.Enabled != nil {
		values[entities.SettingKeyNotebookSyncEnabled] = strconv.FormatBool(*update.Enabled)
	}
	if update.Schedule != nil {
		if err := ValidateCronSchedule(*update.Schedule); err != nil {
			return fmt.Errorf("%w: cron schedule '%s': %v", ErrInvalidSetting, *update.Schedule, err)
		}
		values[entities.SettingKeyNotebookSyncSchedule] = *update.Schedule
	}
	if update.Region != nil {
		if _, err := kindle.LookupRegion(*update.Region); err != nil {
			return err
		}
		values[entities.SettingKeyNotebookSyncRegion] = *update.Region
	}
	if update.OutputDir != nil {
		if *update.OutputDir == "" {
			return fmt.Errorf("%w: output directory must not be empty", ErrInvalidSetting)
		}
		values[entities.SettingKeyNotebookSyncOutputDir] = *update.OutputDir
	}
	return s.repo.SetSettings(values)
}

// ClearNotebookSyncSettings reverts every override to the configuration.
func (s *SettingsStore) ClearNotebookSyncSettings() error {
	return s.repo.DeleteSettings(
		entities.SettingKeyNotebookSyncEnabled,
		entities.SettingKeyNotebookSyncSchedule,
		entities.SettingKeyNotebookSyncRegion,
		entities.SettingKeyNotebookSyncOutputDir,
	)
}

func (s *SettingsStore) GetNotebookSyncStatus() NotebookSyncStatus {
	status := NotebookSyncStatus{}
	if value, ok := s.repo.Lookup(entities.SettingKeyNotebookSyncLastAt); ok {
		if ts, err := time.Parse(time.RFC3339, value); err == nil {
			status.LastSyncAt = &ts
		}
	}
	status.Status, _ = s.repo.Lookup(entities.SettingKeyNotebookSyncLastStatus)
	status.Message, _ = s.repo.Lookup(entities.SettingKeyNotebookSyncLastMessage)
	return status
}

func (s *SettingsStore) SetNotebookSyncStatus(status, message string) error {
	return s.repo.SetSettings(map[string]string{
		entities.SettingKeyNotebookSyncLastAt:      time.Now().UTC().Format(time.RFC3339),
		entities.SettingKeyNotebookSyncLastStatus:  status,
		entities.SettingKeyNotebookSyncLastMessage: message,
	})
}

// ValidateCronSchedule validates a five-field cron schedule string
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 */12 * * *":
		return "Every 12 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when the next run happens after from.
func GetNextRunTime(schedule string, from time.Time) (*time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(from)
	return &next, nil
}
