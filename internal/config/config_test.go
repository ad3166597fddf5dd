package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, "com", cfg.Kindle.Region)
	assert.Equal(t, FetcherHTTP, cfg.Kindle.Fetcher)
	assert.Equal(t, 500, cfg.Kindle.MaxPages)
	assert.Equal(t, 30*time.Second, cfg.Kindle.RequestTimeout)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Dir)
	assert.Equal(t, DefaultCoverCacheDir, cfg.Output.CoverDir)
	assert.True(t, cfg.Metadata.Download)
	assert.False(t, cfg.NotebookSync.Enabled)
	assert.Equal(t, DefaultSyncSchedule, cfg.NotebookSync.Schedule)
	assert.True(t, cfg.Tasks.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestNewConfig_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KINDLE_REGION", "co.jp")
	t.Setenv("KINDLE_FETCHER", "Browser")
	t.Setenv("KINDLE_MAX_PAGES", "25")
	t.Setenv("KINDLE_DOWNLOAD_METADATA", "false")
	t.Setenv("KINDLE_SYNC_SCHEDULE", "0 0 * * *")

	cfg := NewConfig()

	assert.Equal(t, "co.jp", cfg.Kindle.Region)
	assert.Equal(t, FetcherBrowser, cfg.Kindle.Fetcher)
	assert.Equal(t, 25, cfg.Kindle.MaxPages)
	assert.False(t, cfg.Metadata.Download)
	assert.Equal(t, "0 0 * * *", cfg.NotebookSync.Schedule)
}

func TestConfig_Validate(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := NewConfig()
	cfg.Kindle.Fetcher = "curl"
	assert.ErrorContains(t, cfg.Validate(), "KINDLE_FETCHER")

	cfg = NewConfig()
	cfg.Kindle.MaxPages = 0
	assert.ErrorContains(t, cfg.Validate(), "KINDLE_MAX_PAGES")

	cfg = NewConfig()
	cfg.Output.Dir = "//"
	assert.ErrorContains(t, cfg.Validate(), "KINDLE_OUTPUT_DIR")
}

func TestAuth_Validate(t *testing.T) {
	tests := []struct {
		name    string
		auth    Auth
		wantErr bool
	}{
		{name: "unset", auth: Auth{}},
		{name: "none", auth: Auth{Mode: AuthModeNone}},
		{name: "local with password", auth: Auth{Mode: AuthModeLocal, Username: "me", PasswordHash: "$2a$..."}},
		{name: "local with token", auth: Auth{Mode: AuthModeLocal, APIToken: "secret"}},
		{name: "local without credentials", auth: Auth{Mode: AuthModeLocal, Username: "me"}, wantErr: true},
		{name: "unknown mode", auth: Auth{Mode: "oauth"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.auth.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewConfig_AuthEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_MODE", "LOCAL")
	t.Setenv("AUTH_API_TOKEN", "tok")

	cfg := NewConfig()

	assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionLifetime)
	assert.True(t, cfg.Auth.SecureCookies)
	require.NoError(t, cfg.Validate())
}
