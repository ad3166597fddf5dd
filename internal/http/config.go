package http

import (
	"github.com/mrlokans/kindle-notebook/internal/auth"
	"github.com/mrlokans/kindle-notebook/internal/database"
	"github.com/mrlokans/kindle-notebook/internal/demo"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
// Nil optional fields disable their routes.
type RouterConfig struct {
	Database *database.Database
	Version  string

	Runs     RunStore
	Progress ProgressReader
	Trigger  SyncTrigger
	Settings SettingsStore
	Sessions SessionStore     // optional
	Tasks    TaskStatusReader // optional, set when the task queue is enabled
	Covers   CoverStore       // optional
	Auth     *auth.Guard      // optional, installed before every route
	Demo     *demo.Middleware // optional, blocks writes when enabled
}
