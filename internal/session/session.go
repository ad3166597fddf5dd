// Package session holds the authenticated Amazon session the fetchers run with.
// Acquiring a session is explicit and scoped: callers get a release function
// and must not share a session between concurrent runs.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrSessionNotFound means no session was imported for the region.
	ErrSessionNotFound = errors.New("no Kindle session stored for region")
	// ErrSessionBusy means another run holds the region's session.
	ErrSessionBusy = errors.New("Kindle session is in use by another run")
	// ErrNoCookies means a cookie header contained nothing usable.
	ErrNoCookies = errors.New("cookie header contains no cookies")
)

// Session is an authenticated browsing context for one Amazon region.
type Session struct {
	Region     string
	Cookies    []*http.Cookie
	UserAgent  string
	ImportedAt time.Time

	offline bool
}

// Authenticated reports whether the session can fetch notebook pages.
func (s *Session) Authenticated() bool {
	if s == nil {
		return false
	}
	return s.offline || len(s.Cookies) > 0
}

// Offline returns a session for reading saved pages from disk.
func Offline(region string) *Session {
	return &Session{Region: region, offline: true, ImportedAt: time.Now()}
}

// CookieHeader renders the cookies as a Cookie request header value.
func (s *Session) CookieHeader() string {
	parts := make([]string, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// ParseCookieHeader reads a header copied from the browser's developer tools,
// with or without the leading "Cookie:". Cookies are scoped to domain.
func ParseCookieHeader(header, domain string) ([]*http.Cookie, error) {
	header = strings.TrimSpace(header)
	if name, rest, ok := strings.Cut(header, ":"); ok && strings.EqualFold(strings.TrimSpace(name), "cookie") {
		header = strings.TrimSpace(rest)
	}
	if header == "" {
		return nil, ErrNoCookies
	}

	parsed, err := http.ParseCookie(header)
	if err != nil {
		return nil, fmt.Errorf("parse cookie header: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(parsed))
	for _, c := range parsed {
		if c.Name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: domain,
			Path:   "/",
		})
	}
	if len(cookies) == 0 {
		return nil, ErrNoCookies
	}
	return cookies, nil
}
