// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Scraping
//
//   - kindle.Fetcher: returns the DOM of a notebook page (internal/kindle/sync.go).
//     Implemented by fetch.HTTPFetcher, fetch.BrowserFetcher and fetch.FileFetcher.
//   - kindle.ProgressReporter: observes a fetch book by book (internal/kindle/progress.go)
//
// ## Notebook Service
//
//   - services.SessionProvider: leases the stored Amazon session for a region
//   - services.BookEnricher: best effort metadata lookup after a fetch
//   - services.RunStore / services.ProgressTracker: run history and live progress
//   - exporters.NoteExporter: writes rendered notes (internal/exporters/generic.go)
//
// ## HTTP Layer
//
//   - RunStore, ProgressReader, SyncTrigger, SettingsStore, SessionStore,
//     TaskStatusReader and CoverStore in internal/http/stores.go
//
// # Adding a New Fetcher
//
// To read notebook pages from a new source (e.g. a HAR capture):
//
//  1. Implement kindle.Fetcher in internal/fetch/
//
//     type HARFetcher struct{ entries map[string][]byte }
//
//     func (f *HARFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error)
//
//     var _ kindle.Fetcher = (*HARFetcher)(nil)
//
//  2. Return it from the FetcherFactory in internal/entrypoint/app.go
//
// # Adding a New Note Destination
//
//  1. Implement exporters.NoteExporter in internal/exporters/
//
//     func (e *S3Exporter) Export(notes []render.Note) (ExportResult, error)
//
//  2. Return it from the ExporterFactory in internal/entrypoint/app.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the application-wide list.
package interfaces
