package exporters

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/kindle-notebook/internal/render"
	"github.com/mrlokans/kindle-notebook/internal/utils"
)

// MarkdownExporter writes one file per note into OutputDir, replacing files
// from earlier runs.
type MarkdownExporter struct {
	OutputDir string
	Result    ExportResult
}

func NewMarkdownExporter(outputDir string) *MarkdownExporter {
	return &MarkdownExporter{
		OutputDir: outputDir,
		Result:    ExportResult{},
	}
}

func (exporter *MarkdownExporter) ensureDir() (string, error) {
	dir := strings.TrimRight(exporter.OutputDir, "/")
	if strings.Trim(dir, "/") == "" {
		return "", fmt.Errorf("output directory is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}

// writeNote replaces the target through a temporary file so a reader never
// sees a half-written note.
func (exporter *MarkdownExporter) writeNote(dir, fileName, content string) (string, error) {
	outputPath := filepath.Join(dir, fileName)

	tmp, err := os.CreateTemp(dir, ".note-*.md")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

// Export writes every note. A note that fails to write is logged and
// counted; only an unusable output directory fails the whole export.
func (exporter *MarkdownExporter) Export(notes []render.Note) (ExportResult, error) {
	// Reset result state for each export
	exporter.Result = ExportResult{}

	dir, err := exporter.ensureDir()
	if err != nil {
		return ExportResult{}, err
	}

	seen := make(map[string]int, len(notes))
	for _, note := range notes {
		fileName := note.FileName
		if fileName == "" {
			fileName = render.NoteFileName(note.Title)
		}
		fileName = utils.UniqueFilename(fileName, seen)

		path, err := exporter.writeNote(dir, fileName, note.Content)
		if err != nil {
			log.Printf("[EXPORT] failed to write %q: %v", note.Title, err)
			exporter.Result.NotesFailed++
			continue
		}
		exporter.Result.NotesWritten++
		exporter.Result.Files = append(exporter.Result.Files, path)
	}

	log.Printf("[EXPORT] wrote %d notes to %s (%d failed)", exporter.Result.NotesWritten, dir, exporter.Result.NotesFailed)
	return exporter.Result, nil
}

var _ NoteExporter = (*MarkdownExporter)(nil)
