// Package fetch turns notebook URLs into parsed documents for the syncer.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/session"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	DefaultTimeout   = 30 * time.Second

	signInPath   = "/ap/signin"
	maxRedirects = 10
)

// signInForm is present on Amazon's sign-in page even when it is served with 200.
const signInForm = `form[name="signIn"]`

// Options configures the HTTP and browser fetchers.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// BrowserBin is the Chromium binary for BrowserFetcher; ROD_BROWSER_BIN is used when empty.
	BrowserBin string
}

func (o Options) withDefaults(sess *session.Session) Options {
	if o.UserAgent == "" && sess != nil {
		o.UserAgent = sess.UserAgent
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// HTTPFetcher requests notebook pages directly with the session cookies.
// The notebook listing is server-rendered, so no browser is needed.
type HTTPFetcher struct {
	client *resty.Client
}

var _ kindle.Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(sess *session.Session, opts Options) (*HTTPFetcher, error) {
	if !sess.Authenticated() {
		return nil, kindle.ErrAuthRequired
	}
	opts = opts.withDefaults(sess)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetCookies(sess.Cookies)
	client.SetTimeout(opts.Timeout)
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetHeader("accept", "text/html,application/xhtml+xml")
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		if strings.Contains(req.URL.Path, signInPath) {
			return http.ErrUseLastResponse
		}
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}))
	instrument(client)

	return &HTTPFetcher{client: client}, nil
}

// Fetch returns kindle.ErrLoginRedirect when Amazon sends the request to the
// sign-in page and a *kindle.StatusError for any other non-200 response.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get(pageURL)
	if err != nil {
		return nil, err
	}

	if res.StatusCode() >= 300 && res.StatusCode() < 400 {
		if strings.Contains(res.Header().Get("Location"), signInPath) {
			return nil, kindle.ErrLoginRedirect
		}
	}
	if res.StatusCode() != http.StatusOK {
		return nil, &kindle.StatusError{URL: pageURL, StatusCode: res.StatusCode()}
	}
	if raw := res.RawResponse; raw != nil && raw.Request != nil && strings.Contains(raw.Request.URL.Path, signInPath) {
		return nil, kindle.ErrLoginRedirect
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", pageURL, err)
	}
	if doc.Find(signInForm).Length() > 0 {
		return nil, kindle.ErrLoginRedirect
	}
	return doc, nil
}
