package kindle

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrlokans/kindle-notebook/internal/entities"
)

// FetchAllHighlightsForBook walks every annotation page of a book.
// Any page failure aborts the book and returns a *PageFetchError; partial
// results are discarded. Pagination ends when a page carries no cursor, the
// cursor repeats, or MaxPages is reached.
func (s *Syncer) FetchAllHighlightsForBook(ctx context.Context, region Region, book entities.Book) ([]entities.Highlight, error) {
	ctx, span := tracer.Start(ctx, "kindle.FetchAllHighlightsForBook",
		trace.WithAttributes(attribute.String("asin", book.ASIN)))
	defer span.End()

	highlights := []entities.Highlight{}
	seen := make(map[Continuation]struct{})
	pageURL := region.FirstPageURL(book.ASIN)

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.maxPages > 0 && page > s.maxPages {
			s.warn(book, fmt.Sprintf("stopped after %d pages for %q: page limit reached", s.maxPages, book.Title))
			break
		}

		doc, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "page fetch failed")
			return nil, &PageFetchError{
				BookID:    book.ASIN,
				BookTitle: book.Title,
				URL:       pageURL,
				Page:      page,
				Err:       err,
			}
		}

		found := s.parser.ParseHighlightsPage(doc, book.ASIN)
		highlights = append(highlights, found...)
		s.reporter.OnPhase(Event{
			Phase:      PhasePage,
			Region:     region.Code,
			BookID:     book.ASIN,
			BookTitle:  book.Title,
			Page:       page,
			Highlights: len(found),
		})

		next, ok := s.parser.ParseContinuation(doc)
		if !ok {
			break
		}
		if _, repeated := seen[next]; repeated {
			s.warn(book, fmt.Sprintf("pagination cursor repeated on page %d for %q, stopping", page, book.Title))
			break
		}
		seen[next] = struct{}{}
		pageURL = region.NextPageURL(book.ASIN, next)
	}

	span.SetAttributes(attribute.Int("highlights", len(highlights)))
	return highlights, nil
}

func (s *Syncer) warn(book entities.Book, message string) {
	s.reporter.OnPhase(Event{
		Phase:     PhaseWarning,
		BookID:    book.ASIN,
		BookTitle: book.Title,
		Message:   message,
	})
}
