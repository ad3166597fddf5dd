// Package runs stores the history of notebook runs and the latest rendered
// note per book.
//
// # Usage
//
//	repo := runs.NewRepository(db)
//	run, err := repo.StartRun("com", entities.RunTriggerManual)
//	...
//	err = repo.FinishRun(run)
package runs

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/kindle-notebook/internal/entities"
)

// ErrNoResult means no run has stored a notebook result yet.
var ErrNoResult = errors.New("no notebook result stored yet")

// Repository handles notebook run and stored note operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new runs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// StartRun inserts a running record.
func (r *Repository) StartRun(region string, trigger entities.RunTrigger) (*entities.NotebookRun, error) {
	run := &entities.NotebookRun{
		Region:    region,
		Trigger:   trigger,
		Status:    entities.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := r.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// SetResult stores the fetched notebook on the run. It is saved by FinishRun.
func (r *Repository) SetResult(run *entities.NotebookRun, result entities.NotebookResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	run.Result = string(data)
	run.BooksCount = len(result.Books)
	run.HighlightsCount = len(result.Highlights)
	return nil
}

// FinishRun stamps the finish time and saves every field of the run.
func (r *Repository) FinishRun(run *entities.NotebookRun) error {
	now := time.Now()
	run.FinishedAt = &now
	if run.Status == entities.RunStatusRunning || run.Status == "" {
		run.Status = entities.RunStatusCompleted
	}
	return r.db.Save(run).Error
}

// GetRun retrieves a run by ID.
func (r *Repository) GetRun(id uint) (*entities.NotebookRun, error) {
	var run entities.NotebookRun
	if err := r.db.First(&run, id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// GetLastRun returns the most recently started run.
func (r *Repository) GetLastRun() (*entities.NotebookRun, error) {
	var run entities.NotebookRun
	if err := r.db.Order("started_at DESC, id DESC").First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the newest runs first.
func (r *Repository) ListRuns(limit int) ([]entities.NotebookRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []entities.NotebookRun
	err := r.db.Omit("result").Order("started_at DESC, id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// LastResult decodes the result of the latest run that stored one.
func (r *Repository) LastResult() (*entities.NotebookResult, *entities.NotebookRun, error) {
	var run entities.NotebookRun
	err := r.db.Where("result <> ''").Order("started_at DESC, id DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNoResult
	}
	if err != nil {
		return nil, nil, err
	}

	var result entities.NotebookResult
	if err := json.Unmarshal([]byte(run.Result), &result); err != nil {
		return nil, nil, fmt.Errorf("decode result of run %d: %w", run.ID, err)
	}
	return &result, &run, nil
}

// FailInterrupted marks runs left running by a previous process as failed.
func (r *Repository) FailInterrupted() (int64, error) {
	now := time.Now()
	result := r.db.Model(&entities.NotebookRun{}).
		Where("status = ?", entities.RunStatusRunning).
		Updates(map[string]any{
			"status":      entities.RunStatusFailed,
			"error":       "run was interrupted",
			"finished_at": now,
		})
	return result.RowsAffected, result.Error
}

// DeleteOldRuns removes finished runs that started before now minus retention.
func (r *Repository) DeleteOldRuns(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := r.db.
		Where("started_at < ? AND status <> ?", cutoff, entities.RunStatusRunning).
		Delete(&entities.NotebookRun{})
	return result.RowsAffected, result.Error
}

// SaveNotes upserts the rendered notes by book ID.
func (r *Repository) SaveNotes(runID uint, notes []entities.StoredNote) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, note := range notes {
			stored := entities.StoredNote{BookID: note.BookID}
			err := tx.Where(entities.StoredNote{BookID: note.BookID}).
				Assign(entities.StoredNote{
					Title:     note.Title,
					FileName:  note.FileName,
					Content:   note.Content,
					RunID:     runID,
					UpdatedAt: time.Now(),
				}).
				FirstOrCreate(&stored).Error
			if err != nil {
				return fmt.Errorf("save note for %s: %w", note.BookID, err)
			}
		}
		return nil
	})
}

// GetNote retrieves the stored note for a book.
func (r *Repository) GetNote(bookID string) (*entities.StoredNote, error) {
	var note entities.StoredNote
	if err := r.db.Where("book_id = ?", bookID).First(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// ListNotes returns stored notes ordered by title, without content.
func (r *Repository) ListNotes() ([]entities.StoredNote, error) {
	var notes []entities.StoredNote
	err := r.db.Omit("content").Order("title").Find(&notes).Error
	return notes, err
}
