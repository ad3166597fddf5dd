package entrypoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kindle-notebook/internal/config"
	"github.com/mrlokans/kindle-notebook/internal/entities"
	"github.com/mrlokans/kindle-notebook/internal/fetch"
	"github.com/mrlokans/kindle-notebook/internal/render"
	"github.com/mrlokans/kindle-notebook/internal/services"
	"github.com/mrlokans/kindle-notebook/internal/session"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Database.Path = filepath.Join(dir, "app.db")
	cfg.Kindle.Region = "com"
	cfg.Kindle.Fetcher = config.FetcherHTTP
	cfg.Kindle.MaxPages = 10
	cfg.Kindle.RequestTimeout = time.Second
	cfg.Output.Dir = filepath.Join(dir, "notes")
	cfg.Session.KeyFilePath = filepath.Join(dir, "key")
	cfg.NotebookSync.Schedule = config.DefaultSyncSchedule
	return cfg
}

func TestNewApp(t *testing.T) {
	cfg := testConfig(t)

	app, err := NewApp(cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Service)
	assert.Equal(t, "com", app.Settings.GetNotebookSyncConfig().Region)

	_, err = os.Stat(cfg.Session.KeyFilePath)
	assert.NoError(t, err, "session key file should be created")

	running, err := app.Service.IsRunning()
	require.NoError(t, err)
	assert.False(t, running)
}

func TestNewApp_MarksInterruptedRuns(t *testing.T) {
	cfg := testConfig(t)

	app, err := NewApp(cfg)
	require.NoError(t, err)
	run, err := app.Runs.StartRun("com", entities.RunTriggerManual)
	require.NoError(t, err)
	require.NoError(t, app.Close())

	app, err = NewApp(cfg)
	require.NoError(t, err)
	defer app.Close()

	got, err := app.Runs.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RunStatusFailed, got.Status)
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Kindle.Fetcher = "carrier-pigeon"

	_, err := NewApp(cfg)
	assert.Error(t, err)
}

func TestNewApp_MissingTemplate(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.TemplatePath = filepath.Join(t.TempDir(), "missing.tmpl")

	_, err := NewApp(cfg)
	assert.Error(t, err)
}

func TestFetcherFactory(t *testing.T) {
	cfg := testConfig(t)
	cookies, err := session.ParseCookieHeader("session-id=1", ".amazon.com")
	require.NoError(t, err)

	fetcher, closeFn, err := FetcherFactory(cfg)(&session.Session{Region: "com", Cookies: cookies})
	require.NoError(t, err)
	assert.IsType(t, &fetch.HTTPFetcher{}, fetcher)
	assert.NoError(t, closeFn())

	_, _, err = FetcherFactory(cfg)(&session.Session{Region: "com"})
	assert.Error(t, err)
}

func TestExporterFactory(t *testing.T) {
	cfg := testConfig(t)
	app, err := NewApp(cfg)
	require.NoError(t, err)
	defer app.Close()

	run, err := app.Runs.StartRun("com", entities.RunTriggerCLI)
	require.NoError(t, err)

	result, err := ExporterFactory(app.Runs)(run.ID, cfg.Output.Dir).Export([]render.Note{
		{BookID: "B1", Title: "Dune", FileName: "Dune.md", Content: "# Dune\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.NotesWritten)

	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "Dune.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Dune\n", string(data))

	note, err := app.Runs.GetNote("B1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, note.RunID)
}

func TestNewApp_DemoMode(t *testing.T) {
	cfg := testConfig(t)
	pages := t.TempDir()
	for src, dst := range map[string]string{
		"library.html":           "library.html",
		"annotations_book1.html": "B000000001.html",
		"annotations_empty.html": "B000000002.html",
	} {
		data, err := os.ReadFile(filepath.Join("..", "kindle", "testdata", src))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(pages, dst), data, 0o644))
	}
	cfg.Demo.Enabled = true
	cfg.Demo.PagesDir = pages

	app, err := NewApp(cfg)
	require.NoError(t, err)
	defer app.Close()

	report, err := app.Service.Run(t.Context(), services.RunOptions{
		Region:    "com",
		OutputDir: cfg.Output.Dir,
		Trigger:   entities.RunTriggerDemo,
	})
	require.NoError(t, err)
	assert.Equal(t, entities.RunStatusCompleted, report.Run.Status)
	assert.Len(t, report.Result.Books, 2)

	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "The Pragmatic Programmer.md"))
	assert.NoError(t, err)
}
