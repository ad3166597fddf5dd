package metadata

import (
	"context"
	"log"

	"github.com/mrlokans/kindle-notebook/internal/entities"
)

// Metadata keys written into entities.Book.Metadata.
const (
	KeyAuthorURL       = "authorUrl"
	KeyPublisher       = "publisher"
	KeyPublicationDate = "publicationDate"
	KeyISBN            = "isbn"
	KeyCoverURL        = "coverUrl"
	KeyPageCount       = "pageCount"
	KeySubjects        = "subjects"
	KeyOpenLibraryKey  = "openLibraryKey"
	KeySource          = "source"
)

// MetadataProvider looks books up by title.
type MetadataProvider interface {
	SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
}

// EnrichmentResult summarizes one EnrichBooks call.
type EnrichmentResult struct {
	Enriched int `json:"enriched"`
	Failed   int `json:"failed"`
}

// Enricher fills Book.Metadata from an external provider. Enrichment is best
// effort: lookups that fail are logged and the book is left untouched.
type Enricher struct {
	provider MetadataProvider
}

func NewEnricher(provider MetadataProvider) *Enricher {
	return &Enricher{provider: provider}
}

// EnrichBooks updates books in place. It stops early only when ctx is done.
func (e *Enricher) EnrichBooks(ctx context.Context, books []entities.Book) (EnrichmentResult, error) {
	var result EnrichmentResult
	for i := range books {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		book := &books[i]

		found, err := e.provider.SearchByTitle(ctx, book.Title, book.Author)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			log.Printf("[METADATA] lookup failed for %q: %v", book.Title, err)
			result.Failed++
			continue
		}

		applyMetadata(book, found)
		result.Enriched++
	}
	return result, nil
}

func applyMetadata(book *entities.Book, m *BookMetadata) {
	if book.Metadata == nil {
		book.Metadata = make(map[string]any)
	}
	set := func(key, value string) {
		if value != "" {
			book.Metadata[key] = value
		}
	}

	set(KeyAuthorURL, m.AuthorURL)
	set(KeyPublisher, m.Publisher)
	set(KeyPublicationDate, m.PublicationDate)
	set(KeyISBN, m.ISBN)
	set(KeyCoverURL, m.CoverURL)
	set(KeyOpenLibraryKey, m.OpenLibraryKey)
	if m.PageCount > 0 {
		book.Metadata[KeyPageCount] = m.PageCount
	}
	if len(m.Subjects) > 0 {
		book.Metadata[KeySubjects] = m.Subjects
	}
	book.Metadata[KeySource] = "openlibrary"

	if book.Author == "" {
		book.Author = m.Author
	}
	if book.ImageURL == "" {
		book.ImageURL = m.CoverURL
	}
}
