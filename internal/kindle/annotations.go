package kindle

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mrlokans/kindle-notebook/internal/entities"
)

// RowKind classifies an annotation row.
type RowKind int

const (
	RowOther RowKind = iota
	RowHighlight
	RowNote
)

func (k RowKind) String() string {
	switch k {
	case RowHighlight:
		return "highlight"
	case RowNote:
		return "note"
	default:
		return "other"
	}
}

// AnnotationRow is one element matched by the annotation row selector.
type AnnotationRow struct {
	Kind RowKind
	// Note holds the note text of a note row.
	Note string
	// SiblingNote is the note text of a highlight row's next element sibling
	// when that sibling matches the note selector but not the row selector.
	SiblingNote string
	// InlineNote is a note nested in a highlight row, directly after the highlight element.
	InlineNote string
	// FollowedBySibling is true when the next collected row is this row's
	// immediately following element sibling in the DOM.
	FollowedBySibling bool

	sel *goquery.Selection
}

// Continuation is the opaque pagination cursor of an annotation listing.
// Both values are passed back to Amazon verbatim.
type Continuation struct {
	Token             string
	ContentLimitState string
}

// collectRows is the first pass: tag every row by kind, in document order.
func (p *Parser) collectRows(doc *goquery.Document) []AnnotationRow {
	if doc == nil {
		return nil
	}
	matches := doc.Find(p.sel.AnnotationRow)
	rows := make([]AnnotationRow, 0, matches.Length())

	matches.Each(func(_ int, s *goquery.Selection) {
		row := AnnotationRow{Kind: RowOther, sel: s}
		switch {
		case strings.TrimSpace(s.Find(p.sel.HighlightText).First().Text()) != "":
			row.Kind = RowHighlight
			inline := s.Find(p.sel.HighlightColor).First().NextFiltered(p.sel.NoteRow)
			row.InlineNote = strings.TrimSpace(inline.Find(p.sel.NoteText).First().Text())
			if sibling := s.NextFiltered(p.sel.NoteRow); sibling.Length() > 0 && !sibling.Is(p.sel.AnnotationRow) {
				row.SiblingNote = strings.TrimSpace(sibling.Find(p.sel.NoteText).First().Text())
			}
		case s.Is(p.sel.NoteRow):
			row.Kind = RowNote
			row.Note = strings.TrimSpace(s.Find(p.sel.NoteText).First().Text())
		}
		rows = append(rows, row)
	})

	for i := 0; i+1 < len(rows); i++ {
		next := rows[i].sel.Next()
		rows[i].FollowedBySibling = next.Length() > 0 && next.Get(0) == rows[i+1].sel.Get(0)
	}
	return rows
}

// AssociateNotes is the second pass. A highlight row takes the note of its
// immediate DOM sibling when that sibling is a note, whether or not the note
// was collected as a row; otherwise it keeps a note nested directly after its
// highlight element. The result maps row index to note text.
func AssociateNotes(rows []AnnotationRow) map[int]string {
	notes := make(map[int]string)
	for i, row := range rows {
		if row.Kind != RowHighlight {
			continue
		}
		if i+1 < len(rows) && row.FollowedBySibling && rows[i+1].Kind == RowNote && rows[i+1].Note != "" {
			notes[i] = rows[i+1].Note
			continue
		}
		if row.SiblingNote != "" {
			notes[i] = row.SiblingNote
			continue
		}
		if row.InlineNote != "" {
			notes[i] = row.InlineNote
		}
	}
	return notes
}

// ParseHighlightsPage extracts the highlights on one annotation page of a book.
// Note rows are never emitted on their own; they only annotate a highlight.
func (p *Parser) ParseHighlightsPage(doc *goquery.Document, bookID string) []entities.Highlight {
	highlights := []entities.Highlight{}
	rows := p.collectRows(doc)
	if len(rows) == 0 {
		return highlights
	}
	if bookID == "" {
		p.warnf("skipping %d annotation rows: no book ASIN", len(rows))
		return highlights
	}

	notes := AssociateNotes(rows)
	for i, row := range rows {
		if row.Kind != RowHighlight {
			continue
		}
		h := p.buildHighlight(row.sel, bookID)
		h.Note = notes[i]
		highlights = append(highlights, h)
	}
	return highlights
}

func (p *Parser) buildHighlight(row *goquery.Selection, bookID string) entities.Highlight {
	text := strings.TrimSpace(row.Find(p.sel.HighlightText).First().Text())

	rawLocation := row.Find(p.sel.HighlightLocation).First().AttrOr("value", "")
	location, number, numeric := normalizeLocation(rawLocation)

	page := 0
	row.Find(p.sel.HighlightPageHeader).EachWithBreak(func(_ int, header *goquery.Selection) bool {
		page = parsePage(header.Text())
		return page == 0
	})

	color, _ := mapColorToken(row.Find(p.sel.HighlightColor).First().AttrOr("class", ""), p.sel.ColorClassPrefix)

	h := entities.Highlight{
		ID:       HighlightID(bookID, location, text),
		BookID:   bookID,
		Text:     text,
		Location: location,
		Page:     page,
		Color:    color,
	}
	if numeric {
		h.AppLink = AppLink(bookID, number)
	}
	return h
}

// HighlightID derives a stable highlight identifier from the book ASIN and the
// location, falling back to the first ten characters of the text.
func HighlightID(bookID, location, text string) string {
	if location != "" {
		return fmt.Sprintf("highlight-%s-loc-%s", bookID, location)
	}
	fragment := []rune(text)
	if len(fragment) > 10 {
		fragment = fragment[:10]
	}
	return fmt.Sprintf("highlight-%s-text-%s", bookID, whitespaceRun.ReplaceAllString(string(fragment), "-"))
}

// AppLink is the kindle:// deep link opening a book at a location.
func AppLink(asin string, location int) string {
	return fmt.Sprintf("kindle://book?action=open&asin=%s&location=%d", asin, location)
}

// BookAppLink opens a book without a location.
func BookAppLink(asin string) string {
	return "kindle://book?action=open&asin=" + asin
}

// ParseContinuation reads the next-page cursor. ok is false, meaning there is
// no further page, unless both hidden values are present and non-empty.
func (p *Parser) ParseContinuation(doc *goquery.Document) (Continuation, bool) {
	if doc == nil {
		return Continuation{}, false
	}
	c := Continuation{
		Token:             doc.Find(p.sel.NextPageToken).First().AttrOr("value", ""),
		ContentLimitState: doc.Find(p.sel.ContentLimitState).First().AttrOr("value", ""),
	}
	if strings.TrimSpace(c.Token) == "" || strings.TrimSpace(c.ContentLimitState) == "" {
		return Continuation{}, false
	}
	return c, true
}
