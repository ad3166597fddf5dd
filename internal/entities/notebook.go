package entities

import (
	"fmt"
	"time"
)

// Book is one entry of the Kindle notebook library listing.
// ID and ASIN always carry the same value; ID is kept for consumers that key by it.
type Book struct {
	ID    string `json:"id"`
	ASIN  string `json:"asin"`
	Title string `json:"title"`

	// Optional fields. Empty strings mean the markup did not provide a value.
	Author   string `json:"author,omitempty"`
	URL      string `json:"url,omitempty"`
	ImageURL string `json:"image_url,omitempty"`

	// LastAnnotatedDate is a calendar date at UTC midnight, nil when the text
	// was missing or could not be parsed.
	LastAnnotatedDate *time.Time `json:"last_annotated_date"`

	// Metadata is filled by the enrichment step, never by the scraper.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// LastAnnotated formats LastAnnotatedDate as YYYY-MM-DD, or "" when unknown.
func (b Book) LastAnnotated() string {
	if b.LastAnnotatedDate == nil {
		return ""
	}
	return b.LastAnnotatedDate.Format("2006-01-02")
}

// MetadataString returns a metadata value as a string, or "" when absent.
func (b Book) MetadataString(key string) string {
	if b.Metadata == nil {
		return ""
	}
	switch v := b.Metadata[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Highlight is a single highlighted passage from a book's annotation listing.
type Highlight struct {
	// ID is derived from the book ASIN plus the location (or a text fragment)
	// and is stable across re-parses of the same markup.
	ID     string `json:"id"`
	BookID string `json:"book_id"`
	Text   string `json:"text"`

	Location string `json:"location,omitempty"`
	Page     int    `json:"page,omitempty"`
	Color    string `json:"color,omitempty"`
	Note     string `json:"note,omitempty"`
	AppLink  string `json:"app_link,omitempty"`
}

// NotebookResult is the full output of one notebook fetch.
type NotebookResult struct {
	Books      []Book      `json:"books"`
	Highlights []Highlight `json:"highlights"`
}

// HighlightsFor returns the highlights belonging to the given book, in order.
func (r NotebookResult) HighlightsFor(bookID string) []Highlight {
	var out []Highlight
	for _, h := range r.Highlights {
		if h.BookID == bookID {
			out = append(out, h)
		}
	}
	return out
}
