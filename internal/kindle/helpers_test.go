package kindle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	lines []string
}

func (l *captureLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

type fakeSession struct {
	authenticated bool
}

func (s fakeSession) Authenticated() bool { return s.authenticated }

// fakeFetcher serves HTML by exact URL and records every request in order.
type fakeFetcher struct {
	pages    map[string]string
	failures map[string]error
	requests []string
	// onFetch runs before a page is served.
	onFetch func(url string)
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:    make(map[string]string),
		failures: make(map[string]error),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	f.requests = append(f.requests, url)
	if f.onFetch != nil {
		f.onFetch(url)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.failures[url]; ok {
		return nil, err
	}
	html, ok := f.pages[url]
	if !ok {
		return nil, errors.New("no page for " + url)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func fixtureDoc(t *testing.T, name string) *goquery.Document {
	t.Helper()
	return mustDoc(t, loadFixture(t, name))
}

func quietParser() (*Parser, *captureLogger) {
	logger := &captureLogger{}
	return NewParser(WithLogger(logger)), logger
}

// highlightRow renders one annotation row. Empty location omits the hidden input.
func highlightRow(text, location, color string) string {
	var b strings.Builder
	b.WriteString(`<div class="a-row a-spacing-base"><div class="a-column a-span10">`)
	fmt.Fprintf(&b, `<div class="a-row kp-notebook-highlight kp-notebook-highlight-%s"><span id="highlight">%s</span></div>`, color, text)
	if location != "" {
		fmt.Fprintf(&b, `<input type="hidden" id="kp-annotation-location" value="%s">`, location)
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

func noteRow(text string) string {
	return fmt.Sprintf(`<div class="a-row a-spacing-base kp-notebook-note"><span id="note">%s</span></div>`, text)
}

// annotationPage wraps rows and the pagination inputs into a full page.
func annotationPage(token, state string, rows ...string) string {
	return fmt.Sprintf(`<html><body><div id="kp-notebook-annotations">%s</div>`+
		`<input type="hidden" class="kp-notebook-annotations-next-page-start" value="%s">`+
		`<input type="hidden" class="kp-notebook-content-limit-state" value="%s">`+
		`</body></html>`, strings.Join(rows, ""), token, state)
}

func libraryPage(entries ...string) string {
	return `<html><body><div id="kp-notebook-library">` + strings.Join(entries, "") + `</div></body></html>`
}

func bookEntry(asin, title string) string {
	return fmt.Sprintf(`<div id="%s" class="kp-notebook-library-each-book"><h2 class="kp-notebook-metadata">%s</h2></div>`, asin, title)
}
