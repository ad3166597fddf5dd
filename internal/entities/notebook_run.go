package entities

import "time"

type RunTrigger string

const (
	RunTriggerManual    RunTrigger = "manual"
	RunTriggerScheduled RunTrigger = "scheduled"
	RunTriggerCLI       RunTrigger = "cli"
	RunTriggerDemo      RunTrigger = "demo"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial" // some books failed
	RunStatusFailed    RunStatus = "failed"
)

// NotebookRun is the outcome of one fetch-render-export cycle.
// Result holds the NotebookResult JSON of the last successful fetch.
type NotebookRun struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Region     string     `gorm:"size:16;index" json:"region"`
	Trigger    RunTrigger `gorm:"size:20" json:"trigger"`
	Status     RunStatus  `gorm:"size:20;index" json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	BooksCount      int `json:"books_count"`
	HighlightsCount int `json:"highlights_count"`
	FailedBooks     int `json:"failed_books"`
	NotesWritten    int `json:"notes_written"`

	Warnings string `gorm:"type:text" json:"warnings,omitempty"` // newline separated
	Error    string `gorm:"type:text" json:"error,omitempty"`
	Result   string `gorm:"type:text" json:"-"`
}

func (NotebookRun) TableName() string {
	return "notebook_runs"
}

// StoredNote is the latest rendering of one book, kept for previews.
type StoredNote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookID    string    `gorm:"size:32;uniqueIndex" json:"book_id"`
	Title     string    `gorm:"size:512" json:"title"`
	FileName  string    `gorm:"size:512" json:"file_name"`
	Content   string    `gorm:"type:text" json:"content"`
	RunID     uint      `gorm:"index" json:"run_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StoredNote) TableName() string {
	return "stored_notes"
}
