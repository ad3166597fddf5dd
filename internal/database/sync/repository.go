// Package sync provides database operations for sync progress tracking.
//
// Reporter adapts a Repository to the notebook fetch progress events.
//
// # Interface Implementation
//
//	var _ kindle.ProgressReporter = (*Reporter)(nil)
//
// # Usage
//
//	repo := sync.NewRepository(db)
//	err := repo.StartSync(0)
//	syncer := kindle.NewSyncer(fetcher, sess, kindle.WithProgressReporter(repo.Reporter()))
package sync

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/kindle-notebook/internal/entities"
)

// StaleAfter is how long a running sync may go without an update before
// it is considered interrupted.
const StaleAfter = 10 * time.Minute

// Counts is a snapshot of a running notebook fetch.
type Counts struct {
	Processed   int
	Succeeded   int
	Failed      int
	Pages       int
	Highlights  int
	Warnings    int
	CurrentItem string
}

// Repository handles all sync progress database operations. There is a
// single notebook progress row, reset by every run.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) scope() *gorm.DB {
	return r.db.Model(&entities.SyncProgress{}).Where("sync_type = ?", entities.SyncTypeNotebook)
}

// GetSyncProgress retrieves the notebook progress row.
func (r *Repository) GetSyncProgress() (*entities.SyncProgress, error) {
	var progress entities.SyncProgress
	err := r.db.Where("sync_type = ?", entities.SyncTypeNotebook).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// StartSync creates or resets the progress row. totalItems may be
// zero when the number of books is not known yet.
func (r *Repository) StartSync(totalItems int) error {
	now := time.Now()
	progress, err := r.GetSyncProgress()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&entities.SyncProgress{
			SyncType:   entities.SyncTypeNotebook,
			Status:     entities.SyncStatusRunning,
			TotalItems: totalItems,
			StartedAt:  now,
			UpdatedAt:  now,
		}).Error
	}
	if err != nil {
		return err
	}

	*progress = entities.SyncProgress{
		ID:         progress.ID,
		SyncType:   entities.SyncTypeNotebook,
		Status:     entities.SyncStatusRunning,
		TotalItems: totalItems,
		StartedAt:  now,
		UpdatedAt:  now,
	}
	return r.db.Save(progress).Error
}

// SetTotal records the number of books once the library page is parsed.
func (r *Repository) SetTotal(totalItems int) error {
	return r.scope().Updates(map[string]any{
		"total_items": totalItems,
		"updated_at":  time.Now(),
	}).Error
}

// UpdateProgress overwrites the counters of the running sync.
func (r *Repository) UpdateProgress(c Counts) error {
	return r.scope().Updates(map[string]any{
		"processed":    c.Processed,
		"succeeded":    c.Succeeded,
		"failed":       c.Failed,
		"pages":        c.Pages,
		"highlights":   c.Highlights,
		"warnings":     c.Warnings,
		"current_item": c.CurrentItem,
		"updated_at":   time.Now(),
	}).Error
}

// CompleteSync marks the sync as completed or failed.
func (r *Repository) CompleteSync(succeeded bool, errorMsg string) error {
	now := time.Now()
	status := entities.SyncStatusCompleted
	if !succeeded {
		status = entities.SyncStatusFailed
	}

	updates := map[string]any{
		"status":       status,
		"current_item": "",
		"updated_at":   now,
		"completed_at": now,
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return r.scope().Updates(updates).Error
}

// IsSyncRunning checks if a sync is currently in progress.
// A stale sync is marked failed and reported as not running.
func (r *Repository) IsSyncRunning() (bool, error) {
	progress, err := r.GetSyncProgress()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if progress.Status != entities.SyncStatusRunning {
		return false, nil
	}

	if progress.UpdatedAt.Before(time.Now().Add(-StaleAfter)) {
		if err := r.CompleteSync(false, "sync was interrupted"); err != nil {
			log.Printf("[SYNC] failed to mark interrupted sync as failed: %v", err)
		}
		return false, nil
	}
	return true, nil
}
