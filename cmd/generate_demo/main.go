// Command generate_demo writes a directory of Kindle notebook pages with
// highlights from public domain books, in the layout notebook-parse reads.
// Usage: go run ./cmd/generate_demo [--dir demo/pages] [--per-page 3]
package main

import (
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/mrlokans/kindle-notebook/internal/fetch"
)

const defaultDemoDir = "./demo/pages"

type demoHighlight struct {
	Text     string
	Location int
	Page     int
	Color    string
	Note     string
}

type demoBook struct {
	ASIN          string
	Title         string
	Author        string
	LastAnnotated string
	Highlights    []demoHighlight
}

type annotationsPage struct {
	Highlights        []demoHighlight
	Token             string
	ContentLimitState string
}

var libraryTemplate = template.Must(template.New("library").Parse(`<!DOCTYPE html>
<html>
<head><title>Kindle: Your Notes and Highlights</title></head>
<body>
<div id="kp-notebook-library" class="a-row">
{{- range .}}
  <div id="{{.ASIN}}" class="a-row kp-notebook-library-each-book a-color-base-background">
    <span class="a-declarative">
      <h2 class="a-size-base a-color-base a-text-center kp-notebook-searchable a-text-bold kp-notebook-metadata">{{.Title}}</h2>
      <p class="a-spacing-base a-spacing-top-mini a-text-center a-size-base a-color-secondary kp-notebook-searchable kp-notebook-metadata">By: {{.Author}}</p>
    </span>
    <span id="kp-notebook-annotated-date-{{.ASIN}}" class="a-color-secondary kp-notebook-annotated-date">{{.LastAnnotated}}</span>
  </div>
{{- end}}
</div>
</body>
</html>
`))

var annotationsTemplate = template.Must(template.New("annotations").Parse(`<!DOCTYPE html>
<html>
<body>
<div id="kp-notebook-annotations-pane">
  <div id="kp-notebook-annotations" class="a-row">
{{- range .Highlights}}
    <div class="a-row a-spacing-base kp-notebook-highlight-row">
      <div class="a-column a-span10 kp-notebook-row-separator">
        <div class="a-row">
          <span id="annotationHighlightHeader" class="a-size-small a-color-secondary kp-notebook-metadata">{{.Color}} highlight | Page: {{.Page}}</span>
        </div>
        <div class="a-row a-spacing-top-medium kp-notebook-highlight kp-notebook-highlight-{{.Color}}">
          <span id="highlight" class="a-size-base-plus a-color-base">{{.Text}}</span>
        </div>
        <input type="hidden" id="kp-annotation-location" value="{{.Location}}">
      </div>
    </div>
{{- if .Note}}
    <div class="a-row a-spacing-base kp-notebook-note">
      <span id="note" class="a-size-base-plus a-color-base">{{.Note}}</span>
    </div>
{{- end}}
{{- end}}
  </div>
  <input type="hidden" name="" class="kp-notebook-annotations-next-page-start" value="{{.Token}}">
  <input type="hidden" name="" class="kp-notebook-content-limit-state" value="{{.ContentLimitState}}">
</div>
</body>
</html>
`))

func main() {
	dir := flag.StringP("dir", "d", defaultDemoDir, "directory to write the pages into")
	perPage := flag.Int("per-page", 3, "highlights per annotation page")
	flag.Parse()

	if *perPage <= 0 {
		log.Fatalf("--per-page must be positive")
	}

	log.Printf("Generating demo notebook pages in %s...", *dir)

	// Start fresh so stale continuation pages are not picked up
	if err := os.RemoveAll(*dir); err != nil {
		log.Fatalf("Failed to remove existing demo pages: %v", err)
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatalf("Failed to create demo directory: %v", err)
	}

	books := getPublicDomainBooks()
	if err := writePage(filepath.Join(*dir, fetch.LibraryFileName), libraryTemplate, books); err != nil {
		log.Fatalf("Failed to write library page: %v", err)
	}

	for _, book := range books {
		pages, err := writeBookPages(*dir, book, *perPage)
		if err != nil {
			log.Fatalf("Failed to write pages for %s: %v", book.Title, err)
		}
		log.Printf("Saved: %s by %s (%d highlights, %d pages)", book.Title, book.Author, len(book.Highlights), pages)
	}

	log.Printf("Done. Try: kindle-notebook notebook-parse --dir %s", *dir)
}

// writeBookPages splits highlights into annotation pages chained by
// continuation tokens, named the way fetch.FileFetcher expects.
func writeBookPages(dir string, book demoBook, perPage int) (int, error) {
	pages := 0
	for start := 0; start == 0 || start < len(book.Highlights); start += perPage {
		end := min(start+perPage, len(book.Highlights))
		pages++

		page := annotationsPage{Highlights: book.Highlights[start:end]}
		if end < len(book.Highlights) {
			page.Token = fmt.Sprintf("%s-%d", book.ASIN, end)
			page.ContentLimitState = "{}"
		}

		name := book.ASIN + ".html"
		if pages > 1 {
			name = fmt.Sprintf("%s.%d.html", book.ASIN, pages)
		}
		if err := writePage(filepath.Join(dir, name), annotationsTemplate, page); err != nil {
			return pages, err
		}
	}
	return pages, nil
}

func writePage(path string, tmpl *template.Template, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(file, data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func getPublicDomainBooks() []demoBook {
	return []demoBook{
		{
			ASIN:          "B008476HBM",
			Title:         "Pride and Prejudice",
			Author:        "Jane Austen",
			LastAnnotated: "Monday, March 4, 2024",
			Highlights: []demoHighlight{
				{Text: "It is a truth universally acknowledged, that a single man in possession of a good fortune, must be in want of a wife.", Location: 7, Page: 1, Color: "yellow", Note: "The most famous opening line in English literature."},
				{Text: "I could easily forgive his pride, if he had not mortified mine.", Location: 312, Page: 21, Color: "yellow"},
				{Text: "Vanity and pride are different things, though the words are often used synonymously.", Location: 318, Page: 21, Color: "blue", Note: "Mary draws the distinction the whole novel turns on."},
				{Text: "There is a stubbornness about me that never can bear to be frightened at the will of others.", Location: 2650, Page: 174, Color: "orange"},
				{Text: "Till this moment I never knew myself.", Location: 3120, Page: 208, Color: "pink"},
			},
		},
		{
			ASIN:          "B004UJ20MW",
			Title:         "Meditations",
			Author:        "Marcus Aurelius",
			LastAnnotated: "Saturday, February 10, 2024",
			Highlights: []demoHighlight{
				{Text: "You have power over your mind, not outside events. Realize this, and you will find strength.", Location: 140, Page: 9, Color: "yellow"},
				{Text: "The happiness of your life depends upon the quality of your thoughts.", Location: 388, Page: 24, Color: "blue", Note: "Book V."},
				{Text: "Waste no more time arguing about what a good man should be. Be one.", Location: 1902, Page: 131, Color: "yellow"},
			},
		},
		{
			ASIN:          "B000FC1PJI",
			Title:         "The Art of War",
			Author:        "Sun Tzu",
			LastAnnotated: "Sunday, January 7, 2024",
			Highlights: []demoHighlight{
				{Text: "The supreme art of war is to subdue the enemy without fighting.", Location: 210, Page: 15, Color: "orange"},
			},
		},
		{
			ASIN:          "B0082RXVQ8",
			Title:         "Walden",
			Author:        "Henry David Thoreau",
			LastAnnotated: "Friday, December 1, 2023",
		},
	}
}
