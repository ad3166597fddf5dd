package demo

import (
	"context"
	"fmt"

	"github.com/mrlokans/kindle-notebook/internal/fetch"
	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/services"
	"github.com/mrlokans/kindle-notebook/internal/session"
)

// Sessions hands out offline sessions, so demo runs never need Amazon cookies.
type Sessions struct{}

func (Sessions) Acquire(ctx context.Context, region string) (*session.Session, func(), error) {
	if _, err := kindle.LookupRegion(region); err != nil {
		return nil, nil, err
	}
	return session.Offline(region), func() {}, nil
}

// FetcherFactory reads notebook pages saved under pagesDir, in the layout
// written by cmd/generate_demo.
func FetcherFactory(pagesDir string) services.FetcherFactory {
	return func(sess *session.Session) (kindle.Fetcher, func() error, error) {
		f, err := fetch.NewFileFetcher(pagesDir)
		if err != nil {
			return nil, nil, fmt.Errorf("demo pages: %w", err)
		}
		return f, func() error { return nil }, nil
	}
}
