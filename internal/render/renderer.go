package render

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"
	"text/template"

	"github.com/mrlokans/kindle-notebook/internal/entities"
	"github.com/mrlokans/kindle-notebook/internal/utils"
)

// DefaultTemplate is used when no template file is configured.
const DefaultTemplate = `{{.frontmatter}}
# {{.title}}

{{if .imageUrl}}![image]({{.imageUrl}})

{{end -}}
## Book information
{{if .authorUrl}}- Author: [{{.author}}]({{.authorUrl}})
{{else if .author}}- Author: [[{{.author}}]]
{{end -}}
{{if .highlightsCount}}- Highlights: {{.highlightsCount}}
{{end -}}
{{if .lastAnnotatedDate}}- Last annotated: {{.lastAnnotatedDate}}
{{end -}}
{{if .publicationDate}}- Published: {{.publicationDate}}
{{end -}}
{{if .publisher}}- Publisher: {{.publisher}}
{{end -}}
{{if .url}}- [Amazon link]({{.url}})
{{end -}}
{{if .appLink}}- [Kindle link]({{.appLink}})
{{end}}
## Highlights

{{.highlights}}`

// Note is one rendered book.
type Note struct {
	BookID   string `json:"book_id"`
	Title    string `json:"title"`
	FileName string `json:"file_name"`
	Content  string `json:"content"`
}

// RenderFailure records a book whose template execution failed.
type RenderFailure struct {
	BookID string `json:"book_id"`
	Title  string `json:"title"`
	Err    error  `json:"-"`
}

type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses a text/template. An empty text selects DefaultTemplate.
func NewRenderer(text string) (*Renderer, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultTemplate
	}
	tmpl, err := template.New("note").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// NewRendererFromFile reads the template at path, or uses DefaultTemplate
// when path is empty.
func NewRendererFromFile(path string) (*Renderer, error) {
	if path == "" {
		return NewRenderer("")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return NewRenderer(string(data))
}

// Render executes the template against a prepared context.
func (r *Renderer) Render(ctx map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// RenderBook renders one book with its highlights.
func (r *Renderer) RenderBook(book entities.Book, highlights []entities.Highlight) (Note, error) {
	ctx, err := BuildContext(book, highlights)
	if err != nil {
		return Note{}, err
	}
	content, err := r.Render(ctx)
	if err != nil {
		return Note{}, err
	}
	return Note{
		BookID:   book.ID,
		Title:    book.Title,
		FileName: NoteFileName(book.Title),
		Content:  content,
	}, nil
}

// RenderAll renders every book in the result. A book whose template fails is
// logged and skipped; the others are still rendered.
func (r *Renderer) RenderAll(result entities.NotebookResult) ([]Note, []RenderFailure) {
	notes := make([]Note, 0, len(result.Books))
	var failures []RenderFailure
	for _, book := range result.Books {
		note, err := r.RenderBook(book, result.HighlightsFor(book.ID))
		if err != nil {
			log.Printf("[RENDER] skipping %q: %v", book.Title, err)
			failures = append(failures, RenderFailure{BookID: book.ID, Title: book.Title, Err: err})
			continue
		}
		notes = append(notes, note)
	}
	return notes, failures
}

// NoteFileName is the markdown file name for a book title.
func NoteFileName(title string) string {
	return utils.SanitizeFilename(title) + ".md"
}
