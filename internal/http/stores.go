package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/kindle-notebook/internal/entities"
	"github.com/mrlokans/kindle-notebook/internal/session"
	"github.com/mrlokans/kindle-notebook/internal/settingsstore"
)

// RunStore reads run history and stored notes.
type RunStore interface {
	GetRun(id uint) (*entities.NotebookRun, error)
	GetLastRun() (*entities.NotebookRun, error)
	ListRuns(limit int) ([]entities.NotebookRun, error)
	LastResult() (*entities.NotebookResult, *entities.NotebookRun, error)
	GetNote(bookID string) (*entities.StoredNote, error)
	ListNotes() ([]entities.StoredNote, error)
}

// ProgressReader exposes live progress of the current run.
type ProgressReader interface {
	GetSyncProgress() (*entities.SyncProgress, error)
}

// SyncTrigger starts runs and reports on the schedule.
type SyncTrigger interface {
	RunNow(ctx context.Context, trigger entities.RunTrigger) error
	Reschedule(ctx context.Context) error
	IsRunning() bool
	GetNextRunTime() *time.Time
}

// SettingsStore is the notebook sync part of the settings store.
type SettingsStore interface {
	GetNotebookSyncConfigInfo() settingsstore.NotebookSyncConfigInfo
	GetNotebookSyncStatus() settingsstore.NotebookSyncStatus
	UpdateNotebookSyncConfig(update settingsstore.NotebookSyncUpdate) error
	ClearNotebookSyncSettings() error
}

// SessionStore manages imported Amazon sessions.
type SessionStore interface {
	List() ([]entities.KindleSession, error)
	Import(region, host, cookieHeader, userAgent string) (*session.Session, error)
	Clear(region string) error
}

// TaskStatusReader looks up background task status.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// CoverStore returns a local file for a book's cover image.
type CoverStore interface {
	GetCover(ctx context.Context, bookID, coverURL string) (string, error)
}
