package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	if cfg.Auth != nil {
		cfg.Auth.Install(router)
	}
	if cfg.Demo != nil && cfg.Demo.IsEnabled() {
		router.Use(cfg.Demo.Handler())
	}

	health := NewHealthController(cfg.Database, cfg.Version).WithScheduler(cfg.Trigger)
	if cfg.Sessions != nil {
		health.WithSessions(cfg.Sessions)
	}
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	notebook := NewNotebookController(cfg.Runs, cfg.Progress, cfg.Trigger)
	api.POST("/notebook/sync", notebook.Sync)
	api.GET("/notebook/status", notebook.Status)
	api.GET("/notebook/result", notebook.Result)
	api.GET("/notebook/runs", notebook.ListRuns)
	api.GET("/notebook/runs/:id", notebook.GetRun)
	api.GET("/notebook/notes", notebook.ListNotes)
	api.GET("/notebook/notes/:bookId", notebook.GetNote)
	api.GET("/notebook/regions", notebook.Regions)

	if cfg.Covers != nil {
		covers := NewCoverController(cfg.Runs, cfg.Covers)
		api.GET("/notebook/covers/:bookId", covers.GetCover)
	}

	settings := NewSettingsController(cfg.Settings, cfg.Trigger)
	api.GET("/settings/notebook", settings.Get)
	api.POST("/settings/notebook", settings.Update)
	api.POST("/settings/notebook/reset", settings.Reset)

	if cfg.Sessions != nil {
		sessions := NewSessionsController(cfg.Sessions)
		api.GET("/sessions", sessions.List)
		api.PUT("/sessions/:region", sessions.Import)
		api.DELETE("/sessions/:region", sessions.Clear)
	}

	if cfg.Tasks != nil {
		tasks := NewTasksController(cfg.Tasks)
		api.GET("/tasks/:id", tasks.GetTaskStatus)
	}

	return router
}
