package kindle

import (
	"errors"
	"fmt"
)

// ErrAuthRequired means no authenticated Amazon session is available. Fatal for a run.
var ErrAuthRequired = errors.New("not logged in to Amazon Kindle")

// ErrUnknownRegion means the region code is not in the region table.
var ErrUnknownRegion = errors.New("invalid or unsupported Amazon region")

// ErrLoginRedirect is returned by fetchers when Amazon bounced a request to the sign-in page.
var ErrLoginRedirect = errors.New("authentication failed or session expired")

// PageFetchError reports a failed page of a book's annotation listing.
type PageFetchError struct {
	BookID    string
	BookTitle string
	URL       string
	Page      int
	Err       error
}

func (e *PageFetchError) Error() string {
	return fmt.Sprintf("fetch highlights for %q (%s) page %d at %s: %v",
		e.BookTitle, e.BookID, e.Page, e.URL, e.Err)
}

func (e *PageFetchError) Unwrap() error {
	return e.Err
}

// StatusError is returned by fetchers for a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// BookFailure records a book whose highlights could not be fetched.
type BookFailure struct {
	BookID    string `json:"book_id"`
	BookTitle string `json:"book_title"`
	URL       string `json:"url,omitempty"`
	Err       error  `json:"-"`
	Message   string `json:"error"`
}

func newBookFailure(bookID, title string, err error) BookFailure {
	f := BookFailure{BookID: bookID, BookTitle: title, Err: err, Message: err.Error()}
	var pfe *PageFetchError
	if errors.As(err, &pfe) {
		f.URL = pfe.URL
	}
	return f
}
