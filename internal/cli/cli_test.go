package cli

import (
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kindle-notebook/internal/auth"
	"github.com/mrlokans/kindle-notebook/internal/config"
	"github.com/mrlokans/kindle-notebook/internal/kindle"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Database.Path = filepath.Join(dir, "app.db")
	cfg.Kindle.Region = "com"
	cfg.Kindle.Fetcher = config.FetcherHTTP
	cfg.Kindle.MaxPages = 10
	cfg.Kindle.RequestTimeout = time.Second
	cfg.Output.Dir = filepath.Join(dir, "notes")
	cfg.Session.KeyFilePath = filepath.Join(dir, "key")
	return cfg
}

// savedPages lays the kindle fixtures out the way a browser "save page" would.
func savedPages(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	copyFixture := func(src, dst string) {
		data, err := os.ReadFile(filepath.Join("..", "kindle", "testdata", src))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, dst), data, 0o644))
	}
	copyFixture("library.html", "library.html")
	copyFixture("annotations_book1.html", "B000000001.html")
	copyFixture("annotations_empty.html", "B000000002.html")
	return dir
}

func TestNotebookSyncCommand_ParseFlags(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metadata.Download = true
	cmd := NewNotebookSyncCommand(cfg)

	err := cmd.ParseFlags([]string{"-r", "co.uk", "--output", "/tmp/vault", "--fetcher", "browser", "--no-metadata"})
	require.NoError(t, err)

	assert.Equal(t, "co.uk", cfg.Kindle.Region)
	assert.Equal(t, "/tmp/vault", cfg.Output.Dir)
	assert.Equal(t, config.FetcherBrowser, cfg.Kindle.Fetcher)
	assert.False(t, cfg.Metadata.Download)
}

func TestNotebookSyncCommand_ParseFlagsDefaultsFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cmd := NewNotebookSyncCommand(cfg)

	require.NoError(t, cmd.ParseFlags(nil))
	assert.Equal(t, "com", cmd.Region)
	assert.Equal(t, cfg.Database.Path, cmd.DatabasePath)
}

func TestNotebookSyncCommand_RejectsInvalidConfig(t *testing.T) {
	cmd := NewNotebookSyncCommand(testConfig(t))
	assert.Error(t, cmd.ParseFlags([]string{"--fetcher", "curl"}))
}

func TestNotebookSyncCommand_MissingSession(t *testing.T) {
	cfg := testConfig(t)
	cmd := NewNotebookSyncCommand(cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.ErrorIs(t, cmd.Run(), kindle.ErrAuthRequired)
}

func TestNotebookParseCommand_RequiresDir(t *testing.T) {
	cmd := NewNotebookParseCommand()
	assert.Error(t, cmd.ParseFlags(nil))
}

func TestNotebookParseCommand_UnknownRegion(t *testing.T) {
	cmd := NewNotebookParseCommand()
	assert.Error(t, cmd.ParseFlags([]string{"--dir", t.TempDir(), "--region", "moon"}))
}

func TestNotebookParseCommand_Parse(t *testing.T) {
	cmd := NewNotebookParseCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--dir", savedPages(t)}))

	result, err := cmd.parse(t.Context())
	require.NoError(t, err)

	require.Len(t, result.Books, 2)
	assert.Equal(t, "The Pragmatic Programmer", result.Books[0].Title)
	assert.Len(t, result.HighlightsFor("B000000001"), 2)
	assert.Empty(t, result.HighlightsFor("B000000002"))
	assert.Empty(t, result.Failures)
}

func TestNotebookParseCommand_RunWritesNotes(t *testing.T) {
	out := filepath.Join(t.TempDir(), "vault")
	cmd := NewNotebookParseCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--dir", savedPages(t), "--output", out}))

	require.NoError(t, cmd.Run())

	data, err := os.ReadFile(filepath.Join(out, "The Pragmatic Programmer.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# The Pragmatic Programmer")

	_, err = os.Stat(filepath.Join(out, "Missing Elements.md"))
	assert.NoError(t, err)
}

func TestNotebookParseCommand_MissingLibraryPage(t *testing.T) {
	cmd := NewNotebookParseCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--dir", t.TempDir()}))

	assert.Error(t, cmd.Run())
}

func TestSessionImportCommand_ParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "inline cookies", args: []string{"--cookies", "session-id=1"}},
		{name: "cookies file", args: []string{"-f", "cookies.txt"}},
		{name: "no cookies", args: []string{}, wantErr: true},
		{name: "both sources", args: []string{"-c", "a=1", "-f", "x"}, wantErr: true},
		{name: "unknown region", args: []string{"-c", "a=1", "-r", "moon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSessionImportCommand(testConfig(t)).ParseFlags(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSessionImportCommand_CookieHeaderFromStdin(t *testing.T) {
	cmd := NewSessionImportCommand(testConfig(t))
	require.NoError(t, cmd.ParseFlags([]string{"--cookies-file", "-"}))
	cmd.stdin = strings.NewReader("Cookie: session-id=abc; ubid-main=1\n\nat-main=tok\n")

	header, err := cmd.cookieHeader()
	require.NoError(t, err)
	assert.Equal(t, "session-id=abc; ubid-main=1; at-main=tok", header)
}

func TestSessionCommands_ImportListClear(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

	imp := NewSessionImportCommand(cfg)
	require.NoError(t, imp.ParseFlags([]string{"-r", "co.jp", "-c", "session-id=abc; at-acbjp=tok"}))
	require.NoError(t, imp.Run())

	manager, closeDB, err := openSessions(cfg)
	require.NoError(t, err)
	sessions, err := manager.List()
	require.NoError(t, err)
	closeDB()
	require.Len(t, sessions, 1)
	assert.Equal(t, "co.jp", sessions[0].Region)
	assert.Equal(t, 2, sessions[0].CookieCount)

	list := NewSessionListCommand(cfg)
	require.NoError(t, list.ParseFlags(nil))
	require.NoError(t, list.Run())

	clear := NewSessionClearCommand(cfg)
	require.NoError(t, clear.ParseFlags([]string{"--region", "co.jp"}))
	require.NoError(t, clear.Run())

	manager, closeDB, err = openSessions(cfg)
	require.NoError(t, err)
	defer closeDB()
	sessions, err = manager.List()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionImportCommand_EmptyCookies(t *testing.T) {
	cmd := NewSessionImportCommand(testConfig(t))
	require.NoError(t, cmd.ParseFlags([]string{"-c", "   "}))

	assert.Error(t, cmd.Run())
}

func TestRegionsCommand(t *testing.T) {
	assert.NoError(t, NewRegionsCommand().Run())
}

func TestHashPasswordCommand(t *testing.T) {
	var out strings.Builder
	cmd := NewHashPasswordCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--cost", "4"}))
	cmd.stdin = strings.NewReader("correct horse battery\n")
	cmd.stdout = &out

	require.NoError(t, cmd.Run())

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, auth.CheckPassword("correct horse battery", hash))
}

func TestHashPasswordCommand_TooShort(t *testing.T) {
	cmd := NewHashPasswordCommand()
	require.NoError(t, cmd.ParseFlags(nil))
	cmd.stdin = strings.NewReader("short")
	cmd.stdout = io.Discard

	assert.ErrorIs(t, cmd.Run(), auth.ErrPasswordTooShort)
}
