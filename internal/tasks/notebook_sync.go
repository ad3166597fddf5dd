package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/kindle-notebook/internal/entities"
	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/services"
)

// NotebookRunner executes one notebook run.
type NotebookRunner interface {
	Run(ctx context.Context, opts services.RunOptions) (*services.RunReport, error)
}

// NotebookSyncTask fetches the notebook of a region and writes the notes.
type NotebookSyncTask struct {
	Region    string              `json:"region"`
	OutputDir string              `json:"output_dir"`
	Trigger   entities.RunTrigger `json:"trigger"`
}

var notebookQueue atomic.Pointer[backlite.QueueConfig]

func init() {
	setNotebookQueue(DefaultConfig())
}

// setNotebookQueue applies the retry and retention settings. backlite reads
// them from the task value, so they are kept at package level.
func setNotebookQueue(cfg Config) {
	notebookQueue.Store(&backlite.QueueConfig{
		Name:        "notebook_sync",
		MaxAttempts: cfg.MaxRetries + 1,
		Backoff:     cfg.RetryDelay,
		Timeout:     cfg.TaskTimeout,
		Retention: &backlite.Retention{
			Duration:   cfg.RetentionDuration,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	})
}

// Config returns the queue configuration for notebook runs.
func (t NotebookSyncTask) Config() backlite.QueueConfig {
	return *notebookQueue.Load()
}

// NotebookSyncProcessor runs the task. Failures that a retry cannot fix
// (no session, unknown region, a run already in progress) are logged and
// not returned, so backlite does not schedule another attempt.
func NotebookSyncProcessor(runner NotebookRunner) backlite.QueueProcessor[NotebookSyncTask] {
	return func(ctx context.Context, task NotebookSyncTask) error {
		if runner == nil {
			return fmt.Errorf("notebook runner not configured")
		}

		report, err := runner.Run(ctx, services.RunOptions{
			Region:    task.Region,
			OutputDir: task.OutputDir,
			Trigger:   task.Trigger,
		})
		switch {
		case err == nil:
			log.Printf("[TASK] Notebook run %d for %s finished: %s, %d notes written",
				report.Run.ID, task.Region, report.Run.Status, report.Run.NotesWritten)
			return nil
		case errors.Is(err, services.ErrRunInProgress):
			log.Printf("[TASK] Skipping notebook run for %s: %v", task.Region, err)
			return nil
		case errors.Is(err, kindle.ErrAuthRequired), errors.Is(err, kindle.ErrUnknownRegion):
			log.Printf("[TASK] Notebook run for %s failed permanently: %v", task.Region, err)
			return nil
		default:
			return fmt.Errorf("notebook run for %s: %w", task.Region, err)
		}
	}
}

// NewNotebookSyncQueue creates a backlite queue for notebook runs.
func NewNotebookSyncQueue(runner NotebookRunner) backlite.Queue {
	return backlite.NewQueue(NotebookSyncProcessor(runner))
}
