package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/kindle-notebook/internal/covers"
	"github.com/mrlokans/kindle-notebook/internal/database/runs"
	"github.com/mrlokans/kindle-notebook/internal/database/sync"
	"github.com/mrlokans/kindle-notebook/internal/demo"
	"github.com/mrlokans/kindle-notebook/internal/exporters"
	"github.com/mrlokans/kindle-notebook/internal/fetch"
	"github.com/mrlokans/kindle-notebook/internal/http"
	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/metadata"
	"github.com/mrlokans/kindle-notebook/internal/scheduler"
	"github.com/mrlokans/kindle-notebook/internal/services"
	"github.com/mrlokans/kindle-notebook/internal/session"
	"github.com/mrlokans/kindle-notebook/internal/settingsstore"
	"github.com/mrlokans/kindle-notebook/internal/tasks"
)

// =============================================================================
// Scraping
// =============================================================================

var _ kindle.Fetcher = (*fetch.HTTPFetcher)(nil)
var _ kindle.Fetcher = (*fetch.BrowserFetcher)(nil)
var _ kindle.Fetcher = (*fetch.FileFetcher)(nil)

var _ kindle.SessionState = (*session.Session)(nil)
var _ kindle.ProgressReporter = (*sync.Reporter)(nil)

// =============================================================================
// Notebook Service
// =============================================================================

var _ services.SessionProvider = (*session.Manager)(nil)
var _ services.SessionProvider = demo.Sessions{}
var _ services.BookEnricher = (*metadata.Enricher)(nil)
var _ services.RunStore = (*runs.Repository)(nil)
var _ services.ProgressTracker = (*sync.Repository)(nil)
var _ services.StatusRecorder = (*settingsstore.SettingsStore)(nil)

var _ metadata.MetadataProvider = (*metadata.OpenLibraryClient)(nil)

var _ exporters.NoteStore = (*runs.Repository)(nil)
var _ exporters.NoteExporter = (*exporters.MarkdownExporter)(nil)
var _ exporters.NoteExporter = (*exporters.DatabaseMarkdownExporter)(nil)

// =============================================================================
// Scheduling and Tasks
// =============================================================================

var _ scheduler.Dispatcher = (*scheduler.DirectDispatcher)(nil)
var _ scheduler.Dispatcher = (*scheduler.QueueDispatcher)(nil)
var _ scheduler.Runner = (*services.NotebookService)(nil)
var _ scheduler.SettingsSource = (*settingsstore.SettingsStore)(nil)

var _ tasks.NotebookRunner = (*services.NotebookService)(nil)
var _ tasks.RunHistoryCleaner = (*runs.Repository)(nil)

// =============================================================================
// HTTP Layer
// =============================================================================

var _ http.RunStore = (*runs.Repository)(nil)
var _ http.ProgressReader = (*sync.Repository)(nil)
var _ http.SyncTrigger = (*scheduler.NotebookSyncScheduler)(nil)
var _ http.SettingsStore = (*settingsstore.SettingsStore)(nil)
var _ http.SessionStore = (*session.Manager)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)
var _ http.CoverStore = (*covers.Cache)(nil)
