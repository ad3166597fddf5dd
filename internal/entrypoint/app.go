package entrypoint

import (
	"fmt"
	"log"

	"github.com/mrlokans/kindle-notebook/internal/config"
	"github.com/mrlokans/kindle-notebook/internal/database"
	"github.com/mrlokans/kindle-notebook/internal/database/runs"
	"github.com/mrlokans/kindle-notebook/internal/database/settings"
	syncrepo "github.com/mrlokans/kindle-notebook/internal/database/sync"
	"github.com/mrlokans/kindle-notebook/internal/demo"
	"github.com/mrlokans/kindle-notebook/internal/exporters"
	"github.com/mrlokans/kindle-notebook/internal/fetch"
	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/metadata"
	"github.com/mrlokans/kindle-notebook/internal/render"
	"github.com/mrlokans/kindle-notebook/internal/services"
	"github.com/mrlokans/kindle-notebook/internal/session"
	"github.com/mrlokans/kindle-notebook/internal/settingsstore"
)

// App holds the components shared by the server and the CLI commands.
type App struct {
	Config   *config.Config
	DB       *database.Database
	Runs     *runs.Repository
	Progress *syncrepo.Repository
	Settings *settingsstore.SettingsStore
	Sessions *session.Manager
	Service  *services.NotebookService
}

// NewApp opens the database and builds the notebook service from cfg.
func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app, err := newApp(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(cfg *config.Config, db *database.Database) (*App, error) {
	store, err := session.NewStore(db.DB, session.KeyConfig{
		EncryptionKey: cfg.Session.EncryptionKey,
		Passphrase:    cfg.Session.Passphrase,
		KeyFilePath:   cfg.Session.KeyFilePath,
	})
	if err != nil {
		return nil, err
	}

	renderer, err := render.NewRendererFromFile(cfg.Output.TemplatePath)
	if err != nil {
		return nil, err
	}

	var enricher services.BookEnricher
	if cfg.Metadata.Download {
		enricher = metadata.NewEnricher(metadata.NewOpenLibraryClient())
	}

	app := &App{
		Config:   cfg,
		DB:       db,
		Runs:     runs.NewRepository(db.DB),
		Progress: syncrepo.NewRepository(db.DB),
		Settings: settingsstore.New(settings.NewRepository(db.DB), cfg),
		Sessions: session.NewManager(store),
	}

	if n, err := app.Runs.FailInterrupted(); err != nil {
		log.Printf("[NOTEBOOK] failed to close interrupted runs: %v", err)
	} else if n > 0 {
		log.Printf("[NOTEBOOK] marked %d interrupted runs as failed", n)
	}

	var provider services.SessionProvider = app.Sessions
	fetchers := FetcherFactory(cfg)
	if cfg.Demo.Enabled {
		log.Printf("[NOTEBOOK] demo mode: reading saved pages from %s", cfg.Demo.PagesDir)
		provider = demo.Sessions{}
		fetchers = demo.FetcherFactory(cfg.Demo.PagesDir)
	}

	app.Service = services.NewNotebookService(services.NotebookServiceDeps{
		Sessions:  provider,
		Fetchers:  fetchers,
		Exporters: ExporterFactory(app.Runs),
		Pipeline:  services.NewPipeline(enricher, renderer),
		Runs:      app.Runs,
		Progress:  app.Progress,
		Status:    app.Settings,
		MaxPages:  cfg.Kindle.MaxPages,
	})
	return app, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}

// FetcherFactory picks the HTTP or browser fetcher from KINDLE_FETCHER.
func FetcherFactory(cfg *config.Config) services.FetcherFactory {
	opts := fetch.Options{
		UserAgent:  cfg.Kindle.UserAgent,
		Timeout:    cfg.Kindle.RequestTimeout,
		BrowserBin: cfg.Kindle.BrowserBin,
	}
	return func(sess *session.Session) (kindle.Fetcher, func() error, error) {
		if cfg.Kindle.Fetcher == config.FetcherBrowser {
			f, err := fetch.NewBrowserFetcher(sess, opts)
			if err != nil {
				return nil, nil, err
			}
			return f, f.Close, nil
		}
		f, err := fetch.NewHTTPFetcher(sess, opts)
		if err != nil {
			return nil, nil, err
		}
		return f, func() error { return nil }, nil
	}
}

// ExporterFactory writes notes to disk and keeps a copy per book in the database.
func ExporterFactory(store exporters.NoteStore) services.ExporterFactory {
	return func(runID uint, outputDir string) exporters.NoteExporter {
		return exporters.NewDatabaseMarkdownExporter(store, outputDir).ForRun(runID)
	}
}
