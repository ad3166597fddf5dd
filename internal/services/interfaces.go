package services

import (
	"context"

	"github.com/mrlokans/kindle-notebook/internal/entities"
	"github.com/mrlokans/kindle-notebook/internal/exporters"
	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/metadata"
	"github.com/mrlokans/kindle-notebook/internal/session"
)

// SessionProvider leases the authenticated session for a region.
type SessionProvider interface {
	Acquire(ctx context.Context, region string) (*session.Session, func(), error)
}

// FetcherFactory builds the page fetcher for a leased session. The returned
// close function releases fetcher resources such as a browser.
type FetcherFactory func(sess *session.Session) (kindle.Fetcher, func() error, error)

// ExporterFactory builds the exporter that writes a run's notes.
type ExporterFactory func(runID uint, outputDir string) exporters.NoteExporter

// BookEnricher fills book metadata in place.
type BookEnricher interface {
	EnrichBooks(ctx context.Context, books []entities.Book) (metadata.EnrichmentResult, error)
}

// RunStore records run history.
type RunStore interface {
	StartRun(region string, trigger entities.RunTrigger) (*entities.NotebookRun, error)
	SetResult(run *entities.NotebookRun, result entities.NotebookResult) error
	FinishRun(run *entities.NotebookRun) error
}

// ProgressTracker exposes live progress of the current run.
type ProgressTracker interface {
	StartSync(totalItems int) error
	CompleteSync(succeeded bool, errorMsg string) error
	IsSyncRunning() (bool, error)
	Reporter() kindle.ProgressReporter
}

// StatusRecorder keeps a one-line summary of the last run.
type StatusRecorder interface {
	SetNotebookSyncStatus(status, message string) error
}
