package render

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/mrlokans/kindle-notebook/internal/entities"
	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/metadata"
)

// Context keys available to templates. Every key is always present so a
// template can test a value without tripping over a missing entry.
const (
	KeyBook              = "book"
	KeyTitle             = "title"
	KeyAuthor            = "author"
	KeyASIN              = "asin"
	KeyImageURL          = "imageUrl"
	KeyURL               = "url"
	KeyAppLink           = "appLink"
	KeyHighlights        = "highlights"
	KeyHighlightItems    = "highlightItems"
	KeyHighlightsCount   = "highlightsCount"
	KeyLastAnnotatedDate = "lastAnnotatedDate"
	KeyPublisher         = "publisher"
	KeyPublicationDate   = "publicationDate"
	KeyAuthorURL         = "authorUrl"
	KeyFrontmatter       = "frontmatter"
)

// BuildContext assembles the template variables for one book.
func BuildContext(book entities.Book, highlights []entities.Highlight) (map[string]any, error) {
	frontmatter, err := Frontmatter(book, highlights)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		KeyBook:              book,
		KeyTitle:             book.Title,
		KeyAuthor:            book.Author,
		KeyASIN:              book.ASIN,
		KeyImageURL:          book.ImageURL,
		KeyURL:               book.URL,
		KeyAppLink:           kindle.BookAppLink(book.ASIN),
		KeyHighlights:        FormatHighlights(book, highlights),
		KeyHighlightItems:    highlights,
		KeyHighlightsCount:   len(highlights),
		KeyLastAnnotatedDate: book.LastAnnotated(),
		KeyPublisher:         book.MetadataString(metadata.KeyPublisher),
		KeyPublicationDate:   book.MetadataString(metadata.KeyPublicationDate),
		KeyAuthorURL:         book.MetadataString(metadata.KeyAuthorURL),
		KeyFrontmatter:       frontmatter,
	}, nil
}

type frontmatterFields struct {
	Title           string   `yaml:"title"`
	Author          string   `yaml:"author,omitempty"`
	ASIN            string   `yaml:"asin"`
	URL             string   `yaml:"url,omitempty"`
	Cover           string   `yaml:"cover,omitempty"`
	Highlights      int      `yaml:"highlights"`
	LastAnnotated   string   `yaml:"last_annotated,omitempty"`
	Publisher       string   `yaml:"publisher,omitempty"`
	PublicationDate string   `yaml:"publication_date,omitempty"`
	ISBN            string   `yaml:"isbn,omitempty"`
	Tags            []string `yaml:"tags"`
}

// Frontmatter returns a YAML block delimited by "---" lines describing the book.
func Frontmatter(book entities.Book, highlights []entities.Highlight) (string, error) {
	fields := frontmatterFields{
		Title:           book.Title,
		Author:          book.Author,
		ASIN:            book.ASIN,
		URL:             book.URL,
		Cover:           book.ImageURL,
		Highlights:      len(highlights),
		LastAnnotated:   book.LastAnnotated(),
		Publisher:       book.MetadataString(metadata.KeyPublisher),
		PublicationDate: book.MetadataString(metadata.KeyPublicationDate),
		ISBN:            book.MetadataString(metadata.KeyISBN),
		Tags:            []string{"kindle", "highlights"},
	}

	out, err := yaml.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	return "---\n" + strings.TrimRight(string(out), "\n") + "\n---\n", nil
}
