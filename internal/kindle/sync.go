package kindle

import (
	"context"
	"fmt"
	"log"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrlokans/kindle-notebook/internal/entities"
)

var tracer = otel.Tracer("kindle-notebook/kindle")

// DefaultMaxPages bounds pagination per book.
const DefaultMaxPages = 500

// Fetcher returns the rendered DOM of an authenticated Kindle page.
// Implementations are stateful and are never called concurrently.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*goquery.Document, error)
}

// SessionState reports whether an authenticated Amazon session is available.
type SessionState interface {
	Authenticated() bool
}

// Result is the aggregated output of FetchHighlights.
type Result struct {
	entities.NotebookResult
	Region   string        `json:"region"`
	Failures []BookFailure `json:"failures,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Empty reports whether nothing at all was extracted.
func (r *Result) Empty() bool {
	return len(r.Books) == 0 && len(r.Highlights) == 0
}

// Syncer drives the notebook fetch: library page first, then every book's
// annotation pages, one request at a time.
type Syncer struct {
	fetcher  Fetcher
	session  SessionState
	parser   *Parser
	reporter ProgressReporter
	maxPages int
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

func WithParser(p *Parser) SyncerOption {
	return func(s *Syncer) { s.parser = p }
}

func WithProgressReporter(r ProgressReporter) SyncerOption {
	return func(s *Syncer) { s.reporter = r }
}

// WithMaxPages sets the per-book page limit; zero or less disables it.
func WithMaxPages(n int) SyncerOption {
	return func(s *Syncer) { s.maxPages = n }
}

func NewSyncer(fetcher Fetcher, session SessionState, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		fetcher:  fetcher,
		session:  session,
		parser:   NewParser(),
		reporter: LogReporter{Logger: log.Default()},
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reporter == nil {
		s.reporter = MultiReporter{}
	}
	return s
}

// FetchHighlights fetches every book on the notebook page and all of their
// highlights. A book whose pages fail is recorded in Result.Failures and the
// run continues. Only a missing session, an unknown region, a failed library
// page or cancellation end the run with an error.
func (s *Syncer) FetchHighlights(ctx context.Context, regionCode string) (*Result, error) {
	if s.session == nil || !s.session.Authenticated() {
		return nil, ErrAuthRequired
	}
	region, err := LookupRegion(regionCode)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "kindle.FetchHighlights",
		trace.WithAttributes(attribute.String("region", region.Code)))
	defer span.End()

	result := &Result{
		NotebookResult: entities.NotebookResult{
			Books:      []entities.Book{},
			Highlights: []entities.Highlight{},
		},
		Region: region.Code,
	}

	run := *s
	run.reporter = MultiReporter{s.reporter, ProgressFunc(func(e Event) {
		if e.Phase == PhaseWarning {
			result.Warnings = append(result.Warnings, e.Message)
		}
	})}

	run.reporter.OnPhase(Event{Phase: PhaseFetchStart, Region: region.Code})

	doc, err := run.fetcher.Fetch(ctx, region.NotebookURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "notebook page fetch failed")
		return nil, fmt.Errorf("fetch notebook page %s: %w", region.NotebookURL, err)
	}

	result.Books = run.parser.ParseBookList(doc, region.Code)
	total := len(result.Books)
	if total == 0 {
		run.reporter.OnPhase(Event{
			Phase:   PhaseWarning,
			Region:  region.Code,
			Message: "no books found on the notebook page; the page structure may have changed or there are no highlights",
		})
		run.reporter.OnPhase(Event{Phase: PhaseFetchEnd, Region: region.Code})
		return result, nil
	}

	for i, book := range result.Books {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run.reporter.OnPhase(Event{
			Phase: PhaseBookStart, Region: region.Code,
			BookID: book.ASIN, BookTitle: book.Title, BookIndex: i, TotalBooks: total,
		})

		highlights, err := run.FetchAllHighlightsForBook(ctx, region, book)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			result.Failures = append(result.Failures, newBookFailure(book.ASIN, book.Title, err))
			run.reporter.OnPhase(Event{
				Phase: PhaseBookEnd, Region: region.Code,
				BookID: book.ASIN, BookTitle: book.Title, BookIndex: i, TotalBooks: total,
				Err: err,
			})
			continue
		}

		result.Highlights = append(result.Highlights, highlights...)
		run.reporter.OnPhase(Event{
			Phase: PhaseBookEnd, Region: region.Code,
			BookID: book.ASIN, BookTitle: book.Title, BookIndex: i, TotalBooks: total,
			Highlights: len(highlights),
		})
	}

	span.SetAttributes(
		attribute.Int("books", total),
		attribute.Int("highlights", len(result.Highlights)),
		attribute.Int("failed", len(result.Failures)),
	)
	run.reporter.OnPhase(Event{
		Phase: PhaseFetchEnd, Region: region.Code,
		TotalBooks: total, Highlights: len(result.Highlights), Failed: len(result.Failures),
	})
	return result, nil
}
