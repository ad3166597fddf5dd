package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// RunHistoryCleaner deletes finished runs older than a retention period.
type RunHistoryCleaner interface {
	DeleteOldRuns(retention time.Duration) (int64, error)
}

// CleanupRunsTask prunes the run history.
type CleanupRunsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for run history cleanup.
func (t CleanupRunsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_notebook_runs",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupRunsProcessor creates a processor function for CleanupRunsTask.
func CleanupRunsProcessor(cleaner RunHistoryCleaner) backlite.QueueProcessor[CleanupRunsTask] {
	return func(ctx context.Context, task CleanupRunsTask) error {
		if cleaner == nil {
			return fmt.Errorf("run history cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 90
		}

		deleted, err := cleaner.DeleteOldRuns(time.Duration(retentionDays) * 24 * time.Hour)
		if err != nil {
			return fmt.Errorf("cleanup notebook runs: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d notebook runs older than %d days", deleted, retentionDays)
		return nil
	}
}

// NewCleanupRunsQueue creates a backlite queue for run history cleanup.
func NewCleanupRunsQueue(cleaner RunHistoryCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupRunsProcessor(cleaner))
}
