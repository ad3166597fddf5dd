package config

const (
	// DefaultDatabasePath holds sync progress, sessions and run history
	DefaultDatabasePath = "./kindle-notebook.db"

	// DefaultOutputDir is where rendered notes are written
	DefaultOutputDir = "Kindle Highlights"

	DefaultCoverCacheDir = ".cache/covers"

	// DefaultDemoPagesDir matches the output of cmd/generate_demo
	DefaultDemoPagesDir = "./demo/pages"

	DefaultRegion = "com"

	// DefaultSyncSchedule runs every 6 hours
	DefaultSyncSchedule = "0 */6 * * *"
)

// Fetcher kinds accepted by KINDLE_FETCHER.
const (
	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
)
