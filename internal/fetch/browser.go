package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/session"
)

var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("failed to load page")
)

// BrowserFetcher renders notebook pages in headless Chromium with the session
// cookies installed. One tab is reused for every page; Fetch is not safe for
// concurrent use.
type BrowserFetcher struct {
	sess *session.Session
	opts Options

	mu      sync.Mutex
	browser *rod.Browser
	page    *rod.Page
}

var _ kindle.Fetcher = (*BrowserFetcher)(nil)

func NewBrowserFetcher(sess *session.Session, opts Options) (*BrowserFetcher, error) {
	if !sess.Authenticated() {
		return nil, kindle.ErrAuthRequired
	}
	return &BrowserFetcher{sess: sess, opts: opts.withDefaults(sess)}, nil
}

// ensureBrowser lazily launches Chromium and installs the cookies.
// Rod downloads a browser on first run unless a binary is configured.
func (f *BrowserFetcher) ensureBrowser() error {
	if f.page != nil {
		return nil
	}

	l := launcher.New().Headless(true)
	bin := f.opts.BrowserBin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin).NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	if err := browser.SetCookies(cookieParams(f.sess)); err != nil {
		_ = browser.Close()
		return fmt.Errorf("%w: set cookies: %v", ErrBrowserConnect, err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		return fmt.Errorf("%w: open tab: %v", ErrBrowserConnect, err)
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.opts.UserAgent}); err != nil {
		_ = browser.Close()
		return fmt.Errorf("%w: set user agent: %v", ErrBrowserConnect, err)
	}

	f.browser = browser
	f.page = page
	return nil
}

func cookieParams(sess *session.Session) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(sess.Cookies))
	for _, c := range sess.Cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   true,
			HTTPOnly: c.HttpOnly,
		})
	}
	return params
}

func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureBrowser(); err != nil {
		return nil, err
	}

	timeout := f.opts.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	page := f.page.Context(ctx).Timeout(timeout)
	if err := page.Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if strings.Contains(info.URL, signInPath) {
		return nil, kindle.ErrLoginRedirect
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: read html: %v", ErrPageLoad, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", pageURL, err)
	}
	if doc.Find(signInForm).Length() > 0 {
		return nil, kindle.ErrLoginRedirect
	}
	return doc, nil
}

// Close shuts the browser down. The fetcher can be reused afterwards.
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.browser == nil {
		return nil
	}
	err := f.browser.Close()
	f.browser = nil
	f.page = nil
	return err
}
