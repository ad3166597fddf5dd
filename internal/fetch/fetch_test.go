package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/session"
)

func testSession(t *testing.T) *session.Session {
	cookies, err := session.ParseCookieHeader("session-id=abc; at-main=tok", "127.0.0.1")
	require.NoError(t, err)
	return &session.Session{Region: "com", Cookies: cookies}
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	var gotCookie, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><div class="kp-notebook-library-each-book" id="B1"></div></body></html>`))
	}))
	defer server.Close()

	fetcher, err := NewHTTPFetcher(testSession(t), Options{UserAgent: "test-agent"})
	require.NoError(t, err)

	doc, err := fetcher.Fetch(context.Background(), server.URL+"/notebook")
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Find(".kp-notebook-library-each-book").Length())
	assert.Contains(t, gotCookie, "session-id=abc")
	assert.Contains(t, gotCookie, "at-main=tok")
	assert.Equal(t, "test-agent", gotUA)
}

func TestHTTPFetcher_LoginRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ap/signin?openid.return_to=x", http.StatusFound)
	}))
	defer server.Close()

	fetcher, err := NewHTTPFetcher(testSession(t), Options{})
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), server.URL+"/notebook")
	assert.ErrorIs(t, err, kindle.ErrLoginRedirect)
}

func TestHTTPFetcher_SignInPageServedInline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><form name="signIn" method="post"></form></body></html>`))
	}))
	defer server.Close()

	fetcher, err := NewHTTPFetcher(testSession(t), Options{})
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), server.URL+"/notebook")
	assert.ErrorIs(t, err, kindle.ErrLoginRedirect)
}

func TestHTTPFetcher_FollowsOtherRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/notebook", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/kp/notebook", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/kp/notebook", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p id="moved">ok</p></body></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher, err := NewHTTPFetcher(testSession(t), Options{})
	require.NoError(t, err)

	doc, err := fetcher.Fetch(context.Background(), server.URL+"/notebook")
	require.NoError(t, err)
	assert.Equal(t, "ok", doc.Find("#moved").Text())
}

func TestHTTPFetcher_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher, err := NewHTTPFetcher(testSession(t), Options{})
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), server.URL+"/notebook")

	var status *kindle.StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusServiceUnavailable, status.StatusCode)
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	fetcher, err := NewHTTPFetcher(testSession(t), Options{Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), server.URL+"/notebook")
	assert.Error(t, err)
}

func TestFetchers_RequireSession(t *testing.T) {
	_, err := NewHTTPFetcher(&session.Session{Region: "com"}, Options{})
	assert.ErrorIs(t, err, kindle.ErrAuthRequired)

	_, err = NewBrowserFetcher(nil, Options{})
	assert.ErrorIs(t, err, kindle.ErrAuthRequired)
}

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}.withDefaults(&session.Session{UserAgent: "from-session"})
	assert.Equal(t, "from-session", opts.UserAgent)
	assert.Equal(t, DefaultTimeout, opts.Timeout)

	opts = Options{}.withDefaults(nil)
	assert.Equal(t, DefaultUserAgent, opts.UserAgent)
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write(LibraryFileName, `<p id="which">library</p>`)
	write("B1.html", `<p id="which">first</p>`)
	write("B1.2.html", `<p id="which">second</p>`)

	fetcher, err := NewFileFetcher(dir)
	require.NoError(t, err)
	region, err := kindle.LookupRegion("com")
	require.NoError(t, err)

	read := func(url string) string {
		doc, err := fetcher.Fetch(context.Background(), url)
		require.NoError(t, err)
		return doc.Find("#which").Text()
	}

	assert.Equal(t, "library", read(region.NotebookURL))
	assert.Equal(t, "first", read(region.FirstPageURL("B1")))
	assert.Equal(t, "second", read(region.NextPageURL("B1", kindle.Continuation{Token: "t", ContentLimitState: "s"})))
	assert.Equal(t, "first", read(region.FirstPageURL("B1")))

	_, err = fetcher.Fetch(context.Background(), region.FirstPageURL("MISSING"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = fetcher.Fetch(context.Background(), region.FirstPageURL("../etc"))
	assert.Error(t, err)
}

func TestNewFileFetcher_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.html")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewFileFetcher(file)
	assert.Error(t, err)
}
