package exporters

import (
	"fmt"
	"log"

	"github.com/mrlokans/kindle-notebook/internal/entities"
	"github.com/mrlokans/kindle-notebook/internal/render"
)

// NoteStore keeps the latest rendering of each book.
type NoteStore interface {
	SaveNotes(runID uint, notes []entities.StoredNote) error
}

// DatabaseMarkdownExporter stores notes for previews, then writes them to disk.
type DatabaseMarkdownExporter struct {
	store            NoteStore
	runID            uint
	markdownExporter *MarkdownExporter
}

func NewDatabaseMarkdownExporter(store NoteStore, outputDir string) *DatabaseMarkdownExporter {
	return &DatabaseMarkdownExporter{
		store:            store,
		markdownExporter: NewMarkdownExporter(outputDir),
	}
}

// ForRun returns a copy that tags stored notes with runID.
func (exporter *DatabaseMarkdownExporter) ForRun(runID uint) *DatabaseMarkdownExporter {
	clone := *exporter
	clone.runID = runID
	clone.markdownExporter = NewMarkdownExporter(exporter.markdownExporter.OutputDir)
	return &clone
}

func (exporter *DatabaseMarkdownExporter) Export(notes []render.Note) (ExportResult, error) {
	stored := make([]entities.StoredNote, 0, len(notes))
	for _, note := range notes {
		stored = append(stored, entities.StoredNote{
			BookID:   note.BookID,
			Title:    note.Title,
			FileName: note.FileName,
			Content:  note.Content,
		})
	}

	// Previews are best effort; the files on disk are the output that matters
	if err := exporter.store.SaveNotes(exporter.runID, stored); err != nil {
		log.Printf("[EXPORT] failed to store %d notes in database: %v", len(stored), err)
	}

	result, err := exporter.markdownExporter.Export(notes)
	if err != nil {
		return result, fmt.Errorf("failed to export to markdown: %w", err)
	}
	return result, nil
}

var _ NoteExporter = (*DatabaseMarkdownExporter)(nil)
