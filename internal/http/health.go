package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kindle-notebook/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController reports database connectivity plus informational checks
// for the scheduler and stored sessions. Only the database affects status.
type HealthController struct {
	db       *database.Database
	version  string
	trigger  SyncTrigger
	sessions SessionStore
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// WithScheduler adds the scheduler state to the checks.
func (h *HealthController) WithScheduler(trigger SyncTrigger) *HealthController {
	h.trigger = trigger
	return h
}

// WithSessions adds the number of stored sessions to the checks.
func (h *HealthController) WithSessions(sessions SessionStore) *HealthController {
	h.sessions = sessions
	return h
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		if err := h.pingDatabase(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.trigger != nil {
		if h.trigger.IsRunning() {
			checks["scheduler"] = "running"
		} else {
			checks["scheduler"] = "stopped"
		}
	}

	if h.sessions != nil && status == "healthy" {
		if list, err := h.sessions.List(); err != nil {
			checks["sessions"] = "error: " + err.Error()
		} else {
			checks["sessions"] = fmt.Sprintf("%d stored", len(list))
		}
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.IndentedJSON(statusCode, HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	})
}

func (h *HealthController) pingDatabase() error {
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
