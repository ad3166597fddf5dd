package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/settingsstore"
)

// SettingsController reads and updates the notebook sync settings.
type SettingsController struct {
	store   SettingsStore
	trigger SyncTrigger
}

func NewSettingsController(store SettingsStore, trigger SyncTrigger) *SettingsController {
	return &SettingsController{store: store, trigger: trigger}
}

// SchedulePreset is a predefined schedule option
type SchedulePreset struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var schedulePresets = []SchedulePreset{
	{Label: "Every hour", Value: "0 * * * *"},
	{Label: "Every 6 hours", Value: "0 */6 * * *"},
	{Label: "Every 12 hours", Value: "0 */12 * * *"},
	{Label: "Daily at midnight", Value: "0 0 * * *"},
	{Label: "Weekly on Sunday", Value: "0 0 * * 0"},
}

// NotebookSettingsResponse is returned by GET /api/settings/notebook
type NotebookSettingsResponse struct {
	Config              settingsstore.NotebookSyncConfigInfo `json:"config"`
	Status              settingsstore.NotebookSyncStatus     `json:"status"`
	ScheduleDescription string                               `json:"schedule_description"`
	SchedulerRunning    bool                                 `json:"scheduler_running"`
	NextRun             *time.Time                           `json:"next_run,omitempty"`
	Presets             []SchedulePreset                     `json:"presets"`
}

func (sc *SettingsController) response() NotebookSettingsResponse {
	info := sc.store.GetNotebookSyncConfigInfo()
	return NotebookSettingsResponse{
		Config:              info,
		Status:              sc.store.GetNotebookSyncStatus(),
		ScheduleDescription: settingsstore.GetCronDescription(info.Schedule),
		SchedulerRunning:    sc.trigger.IsRunning(),
		NextRun:             sc.trigger.GetNextRunTime(),
		Presets:             schedulePresets,
	}
}

// Get handles GET /api/settings/notebook
func (sc *SettingsController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, sc.response())
}

// Update handles POST /api/settings/notebook
// Absent fields keep their current value.
func (sc *SettingsController) Update(c *gin.Context) {
	var req settingsstore.NotebookSyncUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	err := sc.store.UpdateNotebookSyncConfig(req)
	if errors.Is(err, settingsstore.ErrInvalidSetting) || errors.Is(err, kindle.ErrUnknownRegion) {
		respondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "update notebook settings")
		return
	}

	sc.reschedule(c)
	c.JSON(http.StatusOK, sc.response())
}

// Reset handles POST /api/settings/notebook/reset
// Removes every override so the environment configuration applies again.
func (sc *SettingsController) Reset(c *gin.Context) {
	if err := sc.store.ClearNotebookSyncSettings(); err != nil {
		respondInternalError(c, err, "reset notebook settings")
		return
	}
	sc.reschedule(c)
	c.JSON(http.StatusOK, sc.response())
}

// reschedule applies new settings. The settings are already saved, so a
// failure is logged rather than returned.
func (sc *SettingsController) reschedule(c *gin.Context) {
	if err := sc.trigger.Reschedule(c.Request.Context()); err != nil {
		log.Printf("[HTTP] Failed to reschedule notebook sync: %v", err)
	}
}
