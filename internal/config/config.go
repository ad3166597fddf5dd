package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AuthMode selects how the HTTP API is protected.
type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeLocal AuthMode = "local" // Single operator: password login or API token
)

type (
	Config struct {
		HTTP
		Global
		Database
		Kindle
		Output
		Metadata
		NotebookSync
		Session
		Tasks
		Auth
		Demo
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Kindle struct {
		Region         string
		Fetcher        string        // "http" or "browser"
		MaxPages       int           // per book
		RequestTimeout time.Duration // per page fetch
		UserAgent      string
		BrowserBin     string // Chromium binary for the browser fetcher, empty = auto download
	}
	Output struct {
		Dir          string
		TemplatePath string // empty = built-in template
		CoverDir     string // cover image cache, empty disables the covers endpoint
	}
	Metadata struct {
		Download bool
	}
	NotebookSync struct {
		Enabled  bool
		Schedule string // Cron format: "0 */6 * * *" = every 6 hours
	}
	Session struct {
		EncryptionKey string
		Passphrase    string
		KeyFilePath   string
	}
	Auth struct {
		Mode            AuthMode
		Username        string
		PasswordHash    string // bcrypt, see the auth-hash-password command
		APIToken        string // accepted as "Authorization: Bearer <token>"
		SessionSecret   string // CSRF key, generated per process if empty
		SessionLifetime time.Duration
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Login rate limiting
		MaxLoginAttempts int
		RateLimitWindow  time.Duration
		LockoutDuration  time.Duration
	}
	Demo struct {
		Enabled  bool   // read-only API, runs read saved pages instead of Amazon
		PagesDir string // written by cmd/generate_demo
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
)

// NewConfig reads the environment, after loading .env from the working
// directory when present.
func NewConfig() *Config {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("kindle_region", DefaultRegion)
	v.SetDefault("kindle_fetcher", FetcherHTTP)
	v.SetDefault("kindle_max_pages", 500)
	v.SetDefault("kindle_request_timeout", "30s")
	v.SetDefault("kindle_user_agent", "")
	v.SetDefault("rod_browser_bin", "")

	v.SetDefault("kindle_output_dir", DefaultOutputDir)
	v.SetDefault("kindle_template_path", "")
	v.SetDefault("kindle_cover_cache_dir", DefaultCoverCacheDir)
	v.SetDefault("kindle_download_metadata", true)

	v.SetDefault("kindle_sync_enabled", false)
	v.SetDefault("kindle_sync_schedule", DefaultSyncSchedule)

	v.SetDefault("session_encryption_key", "")
	v.SetDefault("session_passphrase", "")
	v.SetDefault("session_key_file", "")

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_username", "")
	v.SetDefault("auth_password_hash", "")
	v.SetDefault("auth_api_token", "")
	v.SetDefault("auth_session_secret", "")
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	v.SetDefault("demo_mode", false)
	v.SetDefault("demo_pages_dir", DefaultDemoPagesDir)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_max_retries", 2)
	v.SetDefault("task_retry_delay", "5m")
	v.SetDefault("task_timeout", "30m")
	v.SetDefault("task_release_after", "45m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "72h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Kindle: Kindle{
			Region:         strings.TrimSpace(v.GetString("KINDLE_REGION")),
			Fetcher:        strings.ToLower(v.GetString("KINDLE_FETCHER")),
			MaxPages:       v.GetInt("KINDLE_MAX_PAGES"),
			RequestTimeout: v.GetDuration("KINDLE_REQUEST_TIMEOUT"),
			UserAgent:      v.GetString("KINDLE_USER_AGENT"),
			BrowserBin:     v.GetString("ROD_BROWSER_BIN"),
		},
		Output: Output{
			Dir:          v.GetString("KINDLE_OUTPUT_DIR"),
			TemplatePath: v.GetString("KINDLE_TEMPLATE_PATH"),
			CoverDir:     v.GetString("KINDLE_COVER_CACHE_DIR"),
		},
		Metadata: Metadata{
			Download: v.GetBool("KINDLE_DOWNLOAD_METADATA"),
		},
		NotebookSync: NotebookSync{
			Enabled:  v.GetBool("KINDLE_SYNC_ENABLED"),
			Schedule: v.GetString("KINDLE_SYNC_SCHEDULE"),
		},
		Session: Session{
			EncryptionKey: v.GetString("SESSION_ENCRYPTION_KEY"),
			Passphrase:    v.GetString("SESSION_PASSPHRASE"),
			KeyFilePath:   v.GetString("SESSION_KEY_FILE"),
		},
		Demo: Demo{
			Enabled:  v.GetBool("DEMO_MODE"),
			PagesDir: v.GetString("DEMO_PAGES_DIR"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Auth: Auth{
			Mode:             AuthMode(strings.ToLower(v.GetString("AUTH_MODE"))),
			Username:         v.GetString("AUTH_USERNAME"),
			PasswordHash:     v.GetString("AUTH_PASSWORD_HASH"),
			APIToken:         v.GetString("AUTH_API_TOKEN"),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
	}
}

// Validate reports settings that would make every run fail.
func (c *Config) Validate() error {
	if c.Kindle.Fetcher != FetcherHTTP && c.Kindle.Fetcher != FetcherBrowser {
		return fmt.Errorf("unsupported KINDLE_FETCHER %q (want %q or %q)", c.Kindle.Fetcher, FetcherHTTP, FetcherBrowser)
	}
	if c.Kindle.MaxPages <= 0 {
		return fmt.Errorf("KINDLE_MAX_PAGES must be positive, got %d", c.Kindle.MaxPages)
	}
	if strings.Trim(c.Output.Dir, "/") == "" {
		return fmt.Errorf("KINDLE_OUTPUT_DIR must not be empty")
	}
	if c.Demo.Enabled && c.Demo.PagesDir == "" {
		return fmt.Errorf("DEMO_MODE requires DEMO_PAGES_DIR")
	}
	return c.Auth.Validate()
}

// Validate checks that local mode has at least one way to log in.
func (a Auth) Validate() error {
	switch a.Mode {
	case "", AuthModeNone:
		return nil
	case AuthModeLocal:
		hasPassword := a.Username != "" && a.PasswordHash != ""
		if !hasPassword && a.APIToken == "" {
			return fmt.Errorf("AUTH_MODE=local requires AUTH_USERNAME and AUTH_PASSWORD_HASH, or AUTH_API_TOKEN")
		}
		return nil
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q (want %q or %q)", a.Mode, AuthModeNone, AuthModeLocal)
	}
}
