package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kindle-notebook/internal/auth"
	"github.com/mrlokans/kindle-notebook/internal/config"
	"github.com/mrlokans/kindle-notebook/internal/covers"
	"github.com/mrlokans/kindle-notebook/internal/demo"
	"github.com/mrlokans/kindle-notebook/internal/entities"
	http_controllers "github.com/mrlokans/kindle-notebook/internal/http"
	"github.com/mrlokans/kindle-notebook/internal/scheduler"
	"github.com/mrlokans/kindle-notebook/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so no run starts during shutdown
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Kindle Notebook v%s", version)

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		log.Printf("WARNING: output directory %s is not usable: %v", cfg.Output.Dir, err)
	}

	runCtx, cancelRuns := context.WithCancel(context.Background())
	defer cancelRuns()

	// Runs go through the task queue when it is enabled, otherwise they run
	// in a goroutine of this process.
	var dispatcher scheduler.Dispatcher
	var taskClient *tasks.Client
	var direct *scheduler.DirectDispatcher
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewNotebookSyncQueue(app.Service),
			tasks.NewCleanupRunsQueue(app.Runs),
		)
		taskClient.Start(runCtx)

		if _, err := taskClient.Enqueue(runCtx, tasks.CleanupRunsTask{}); err != nil {
			log.Printf("WARNING: failed to queue run history cleanup: %v", err)
		}
		dispatcher = scheduler.NewQueueDispatcher(taskClient)
	} else {
		direct = scheduler.NewDirectDispatcher(runCtx, app.Service)
		dispatcher = direct
	}

	syncScheduler := scheduler.NewNotebookSyncScheduler(app.Settings, dispatcher)
	if err := syncScheduler.Start(runCtx); err != nil {
		log.Printf("WARNING: notebook sync scheduler not started: %v", err)
	}

	sqlDB, err := app.DB.DB.DB()
	if err != nil {
		log.Fatalf("Failed to access database: %v", err)
	}
	guard, err := auth.NewGuard(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize authentication: %v", err)
	}
	defer guard.Close()
	if guard.Service.Enabled() {
		log.Printf("API authentication enabled (mode=%s)", cfg.Auth.Mode)
	}

	routerCfg := http_controllers.RouterConfig{
		Database: app.DB,
		Version:  version,
		Runs:     app.Runs,
		Progress: app.Progress,
		Trigger:  syncScheduler,
		Settings: app.Settings,
		Sessions: app.Sessions,
		Auth:     guard,
		Demo:     demo.NewMiddleware(cfg.Demo.Enabled),
	}
	if taskClient != nil {
		routerCfg.Tasks = taskClient
	}
	if cfg.Output.CoverDir != "" {
		coverCache, err := covers.NewCache(cfg.Output.CoverDir)
		if err != nil {
			log.Printf("WARNING: cover cache disabled: %v", err)
		} else {
			routerCfg.Covers = coverCache
		}
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		syncScheduler.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		cancelRuns()
		if direct != nil {
			direct.Wait()
		}
	}

	if cfg.Demo.Enabled {
		if err := syncScheduler.RunNow(runCtx, entities.RunTriggerDemo); err != nil {
			log.Printf("WARNING: demo run not started: %v", err)
		}
	}

	Serve(router, cfg, onShutdown)
}
