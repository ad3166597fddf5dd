package kindle

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mrlokans/kindle-notebook/internal/entities"
)

// ParseBookList extracts one Book per library entry, in document order.
// Entries without an ASIN or a title are skipped with a diagnostic.
func (p *Parser) ParseBookList(doc *goquery.Document, regionCode string) []entities.Book {
	books := []entities.Book{}
	if doc == nil {
		return books
	}

	doc.Find(p.sel.BookEntry).Each(func(_ int, entry *goquery.Selection) {
		book, ok := p.parseBookEntry(entry, regionCode)
		if !ok {
			p.warnf("skipping book element due to missing ASIN or title: %s", snippet(entry))
			return
		}
		books = append(books, book)
	})

	return books
}

func (p *Parser) parseBookEntry(entry *goquery.Selection, regionCode string) (entities.Book, bool) {
	asin := strings.TrimSpace(entry.AttrOr(p.sel.BookASINAttr, ""))

	title := firstText(entry, p.sel.BookTitle, p.sel.BookTitleFallback)

	author, _ := ParseAuthor(firstText(entry, p.sel.BookAuthor, p.sel.BookAuthorFallback))

	imageURL := strings.TrimSpace(entry.Find(p.sel.BookImage).First().AttrOr("src", ""))
	bookURL := strings.TrimSpace(entry.Find(p.sel.BookReadMoreLink).First().AttrOr("href", ""))
	lastAnnotated := ParseDate(entry.Find(p.sel.BookLastAnnotated).First().Text(), regionCode)

	if asin == "" && bookURL != "" {
		asin = p.asinFromURL(bookURL)
	}

	if asin == "" || title == "" {
		return entities.Book{}, false
	}

	return entities.Book{
		ID:                asin,
		ASIN:              asin,
		Title:             title,
		Author:            author,
		URL:               bookURL,
		ImageURL:          imageURL,
		LastAnnotatedDate: lastAnnotated,
	}, true
}

func (p *Parser) asinFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		p.warnf("could not parse book URL for ASIN fallback %q: %v", raw, err)
		return ""
	}
	return strings.TrimSpace(u.Query().Get(p.sel.ReadMoreASINParameter))
}
