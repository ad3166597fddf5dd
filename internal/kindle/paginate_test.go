package kindle

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kindle-notebook/internal/entities"
)

func paginationFixture(t *testing.T) (Region, entities.Book) {
	t.Helper()
	region, err := LookupRegion("com")
	require.NoError(t, err)
	return region, entities.Book{ID: "B1", ASIN: "B1", Title: "Paged"}
}

func newTestSyncer(fetcher Fetcher, events *[]Event, opts ...SyncerOption) *Syncer {
	parser, _ := quietParser()
	reporter := ProgressFunc(func(e Event) {
		if events != nil {
			*events = append(*events, e)
		}
	})
	opts = append([]SyncerOption{WithParser(parser), WithProgressReporter(reporter)}, opts...)
	return NewSyncer(fetcher, fakeSession{authenticated: true}, opts...)
}

func TestFetchAllHighlightsForBook_FollowsContinuation(t *testing.T) {
	region, book := paginationFixture(t)
	fetcher := newFakeFetcher()

	first := region.FirstPageURL(book.ASIN)
	second := region.NextPageURL(book.ASIN, Continuation{Token: "T1", ContentLimitState: "S1"})
	fetcher.pages[first] = annotationPage("T1", "S1", highlightRow("one", "1", "yellow"))
	fetcher.pages[second] = annotationPage("", "", highlightRow("two", "2", "blue"), noteRow("second note"))

	var events []Event
	highlights, err := newTestSyncer(fetcher, &events).FetchAllHighlightsForBook(context.Background(), region, book)

	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, fetcher.requests)
	require.Len(t, highlights, 2)
	assert.Equal(t, "one", highlights[0].Text)
	assert.Equal(t, "second note", highlights[1].Note)

	require.Len(t, events, 2)
	assert.Equal(t, PhasePage, events[0].Phase)
	assert.Equal(t, 1, events[0].Page)
	assert.Equal(t, 2, events[1].Page)
}

func TestFetchAllHighlightsForBook_URLs(t *testing.T) {
	region, _ := paginationFixture(t)

	assert.Equal(t, "https://read.amazon.com/notebook?asin=B1&contentLimitState=", region.FirstPageURL("B1"))
	assert.Equal(t,
		"https://read.amazon.com/notebook?asin=B1&contentLimitState=S%2B1&token=T%2F1",
		region.NextPageURL("B1", Continuation{Token: "T/1", ContentLimitState: "S+1"}))
}

func TestFetchAllHighlightsForBook_StopsWithoutToken(t *testing.T) {
	region, book := paginationFixture(t)
	fetcher := newFakeFetcher()
	fetcher.pages[region.FirstPageURL(book.ASIN)] = annotationPage("T1", "", highlightRow("one", "1", "yellow"))

	highlights, err := newTestSyncer(fetcher, nil).FetchAllHighlightsForBook(context.Background(), region, book)

	require.NoError(t, err)
	assert.Len(t, fetcher.requests, 1)
	assert.Len(t, highlights, 1)
}

func TestFetchAllHighlightsForBook_RepeatedToken(t *testing.T) {
	region, book := paginationFixture(t)
	fetcher := newFakeFetcher()
	next := region.NextPageURL(book.ASIN, Continuation{Token: "T1", ContentLimitState: "S1"})
	fetcher.pages[region.FirstPageURL(book.ASIN)] = annotationPage("T1", "S1", highlightRow("one", "1", "yellow"))
	fetcher.pages[next] = annotationPage("T1", "S1", highlightRow("two", "2", "yellow"))

	var events []Event
	highlights, err := newTestSyncer(fetcher, &events).FetchAllHighlightsForBook(context.Background(), region, book)

	require.NoError(t, err)
	assert.Len(t, fetcher.requests, 2)
	assert.Len(t, highlights, 2)

	last := events[len(events)-1]
	assert.Equal(t, PhaseWarning, last.Phase)
	assert.Contains(t, last.Message, "repeated")
}

func TestFetchAllHighlightsForBook_MaxPages(t *testing.T) {
	region, book := paginationFixture(t)
	fetcher := newFakeFetcher()
	fetcher.pages[region.FirstPageURL(book.ASIN)] = annotationPage("T1", "S", highlightRow("p1", "1", "yellow"))
	for i := 1; i <= 5; i++ {
		url := region.NextPageURL(book.ASIN, Continuation{Token: fmt.Sprintf("T%d", i), ContentLimitState: "S"})
		fetcher.pages[url] = annotationPage(fmt.Sprintf("T%d", i+1), "S", highlightRow(fmt.Sprintf("p%d", i+1), fmt.Sprint(i+1), "yellow"))
	}

	var events []Event
	highlights, err := newTestSyncer(fetcher, &events, WithMaxPages(3)).FetchAllHighlightsForBook(context.Background(), region, book)

	require.NoError(t, err)
	assert.Len(t, fetcher.requests, 3)
	assert.Len(t, highlights, 3)
	assert.Equal(t, PhaseWarning, events[len(events)-1].Phase)
	assert.Contains(t, events[len(events)-1].Message, "page limit")
}

func TestFetchAllHighlightsForBook_FailsFast(t *testing.T) {
	region, book := paginationFixture(t)
	fetcher := newFakeFetcher()
	second := region.NextPageURL(book.ASIN, Continuation{Token: "T1", ContentLimitState: "S1"})
	fetcher.pages[region.FirstPageURL(book.ASIN)] = annotationPage("T1", "S1", highlightRow("one", "1", "yellow"))
	fetcher.failures[second] = ErrLoginRedirect

	highlights, err := newTestSyncer(fetcher, nil).FetchAllHighlightsForBook(context.Background(), region, book)

	require.Error(t, err)
	assert.Nil(t, highlights)
	assert.ErrorIs(t, err, ErrLoginRedirect)

	var pfe *PageFetchError
	require.True(t, errors.As(err, &pfe))
	assert.Equal(t, second, pfe.URL)
	assert.Equal(t, 2, pfe.Page)
	assert.Equal(t, "Paged", pfe.BookTitle)
	assert.Contains(t, err.Error(), "Paged")
}

func TestFetchAllHighlightsForBook_Cancelled(t *testing.T) {
	region, book := paginationFixture(t)
	fetcher := newFakeFetcher()
	fetcher.pages[region.FirstPageURL(book.ASIN)] = annotationPage("T1", "S1", highlightRow("one", "1", "yellow"))

	ctx, cancel := context.WithCancel(context.Background())
	fetcher.onFetch = func(string) { cancel() }

	_, err := newTestSyncer(fetcher, nil).FetchAllHighlightsForBook(ctx, region, book)

	assert.ErrorIs(t, err, context.Canceled)
	var pfe *PageFetchError
	assert.False(t, errors.As(err, &pfe))
}
