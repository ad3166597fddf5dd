package render

import (
	"strings"

	"github.com/mrlokans/kindle-notebook/internal/entities"
	"github.com/mrlokans/kindle-notebook/internal/kindle"
)

// FormatHighlight renders one highlight as a markdown quote with an optional
// location link and an indented note:
//
//	> text
//	> Location: [1234](kindle://book?action=open&asin=B1&location=1234)
//	  - Note: note text
func FormatHighlight(book entities.Book, h entities.Highlight) string {
	var b strings.Builder
	for i, line := range strings.Split(strings.TrimSpace(h.Text), "\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("> ")
		b.WriteString(strings.TrimSpace(line))
	}

	if h.Location != "" {
		link := h.AppLink
		if link == "" {
			link = kindle.BookAppLink(bookASIN(book, h))
		}
		b.WriteString("\n> Location: [")
		b.WriteString(h.Location)
		b.WriteString("](")
		b.WriteString(link)
		b.WriteString(")")
	}

	if h.Note != "" {
		b.WriteString("\n  - Note: ")
		b.WriteString(h.Note)
	}
	b.WriteString("\n")
	return b.String()
}

// FormatHighlights joins the formatted highlights with a blank line between them.
func FormatHighlights(book entities.Book, highlights []entities.Highlight) string {
	items := make([]string, 0, len(highlights))
	for _, h := range highlights {
		items = append(items, FormatHighlight(book, h))
	}
	return strings.Join(items, "\n")
}

func bookASIN(book entities.Book, h entities.Highlight) string {
	if book.ASIN != "" {
		return book.ASIN
	}
	return h.BookID
}
