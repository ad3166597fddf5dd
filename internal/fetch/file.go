package fetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/PuerkitoBio/goquery"

	"github.com/mrlokans/kindle-notebook/internal/kindle"
)

// LibraryFileName is the saved notebook listing inside a FileFetcher directory.
const LibraryFileName = "library.html"

// FileFetcher serves pages saved from the browser, for debugging selector
// drift without a network. Layout:
//
//	library.html      the notebook page
//	<ASIN>.html       first annotation page of a book
//	<ASIN>.2.html     second page, and so on
type FileFetcher struct {
	dir   string
	pages map[string]int
}

var _ kindle.Fetcher = (*FileFetcher)(nil)

func NewFileFetcher(dir string) (*FileFetcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &FileFetcher{dir: dir, pages: make(map[string]int)}, nil
}

func (f *FileFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := f.fileFor(pageURL)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(f.dir, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return goquery.NewDocumentFromReader(file)
}

func (f *FileFetcher) fileFor(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", pageURL, err)
	}
	q := u.Query()
	asin := q.Get("asin")
	if asin == "" {
		return LibraryFileName, nil
	}
	if filepath.Base(asin) != asin {
		return "", fmt.Errorf("invalid asin %q", asin)
	}

	if q.Get("token") == "" {
		f.pages[asin] = 1
		return asin + ".html", nil
	}
	f.pages[asin]++
	return fmt.Sprintf("%s.%d.html", asin, f.pages[asin]), nil
}
