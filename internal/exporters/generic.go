package exporters

import "github.com/mrlokans/kindle-notebook/internal/render"

type NoteExporter interface {
	Export(notes []render.Note) (ExportResult, error)
}

type ExportResult struct {
	NotesWritten int      `json:"notes_written"`
	NotesFailed  int      `json:"notes_failed"`
	Files        []string `json:"files,omitempty"`
}
