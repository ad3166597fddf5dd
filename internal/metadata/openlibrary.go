package metadata

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultOpenLibraryURL = "https://openlibrary.org"
	userAgent             = "KindleNotebook/1.0 (https://github.com/mrlokans/kindle-notebook)"
)

// BookMetadata is what OpenLibrary knows about a book.
type BookMetadata struct {
	Title           string   `json:"title,omitempty"`
	Author          string   `json:"author,omitempty"`
	AuthorURL       string   `json:"author_url,omitempty"`
	ISBN            string   `json:"isbn,omitempty"`
	CoverURL        string   `json:"cover_url,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
	PageCount       int      `json:"page_count,omitempty"`
	Subjects        []string `json:"subjects,omitempty"`
	OpenLibraryKey  string   `json:"open_library_key,omitempty"`
}

// OpenLibraryClient searches the OpenLibrary API, at most one request per interval.
type OpenLibraryClient struct {
	http        *resty.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if since := time.Since(r.lastCall); since < r.interval {
		timer := time.NewTimer(r.interval - since)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	r.lastCall = time.Now()
	return nil
}

func NewOpenLibraryClient() *OpenLibraryClient {
	return newOpenLibraryClient(DefaultOpenLibraryURL, time.Second)
}

func newOpenLibraryClient(baseURL string, interval time.Duration) *OpenLibraryClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(10 * time.Second)
	client.SetHeader("User-Agent", userAgent)
	return &OpenLibraryClient{
		http:        client,
		baseURL:     baseURL,
		rateLimiter: newRateLimiter(interval),
	}
}

// SearchByTitle returns the best match for a title and optional author.
func (c *OpenLibraryClient) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if err := c.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}

	q := title
	if author != "" {
		q = title + " " + author
	}

	var result openLibrarySearchResult
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"q": q, "limit": "5"}).
		SetResult(&result).
		Get("/search.json")
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", res.StatusCode())
	}
	if len(result.Docs) == 0 {
		return nil, fmt.Errorf("no results found for: %s", title)
	}

	best := findBestMatch(result.Docs, title, author)
	metadata := c.searchDocToMetadata(best)

	if metadata.ISBN == "" && best.CoverEditionKey != "" {
		if edition, err := c.fetchEdition(ctx, best.CoverEditionKey); err == nil {
			mergeEdition(metadata, edition)
		}
	}
	return metadata, nil
}

func (c *OpenLibraryClient) fetchEdition(ctx context.Context, key string) (*openLibraryEdition, error) {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}
	var edition openLibraryEdition
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&edition).
		Get("/books/" + key + ".json")
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status: %d", res.StatusCode())
	}
	return &edition, nil
}

// findBestMatch scores title and author similarity, then ISBN and cover presence.
func findBestMatch(docs []openLibrarySearchDoc, title, author string) *openLibrarySearchDoc {
	titleLower := strings.ToLower(title)
	authorLower := strings.ToLower(author)

	best := &docs[0]
	bestScore := -1
	for i := range docs {
		doc := &docs[i]
		score := 0

		docTitle := strings.ToLower(doc.Title)
		if docTitle == titleLower {
			score += 10
		} else if strings.Contains(docTitle, titleLower) || strings.Contains(titleLower, docTitle) {
			score += 5
		}

		if author != "" {
			for _, name := range doc.AuthorName {
				name = strings.ToLower(name)
				if name == authorLower {
					score += 10
					break
				}
				if strings.Contains(authorLower, name) || strings.Contains(name, authorLower) {
					score += 5
					break
				}
			}
		}

		if len(doc.ISBN) > 0 {
			score += 2
		}
		if doc.CoverI != 0 {
			score++
		}

		if score > bestScore {
			bestScore = score
			best = doc
		}
	}
	return best
}

func (c *OpenLibraryClient) searchDocToMetadata(doc *openLibrarySearchDoc) *BookMetadata {
	m := &BookMetadata{
		Title:          doc.Title,
		OpenLibraryKey: doc.Key,
	}
	if doc.FirstPublishYear > 0 {
		m.PublicationDate = strconv.Itoa(doc.FirstPublishYear)
	}
	if len(doc.AuthorName) > 0 {
		m.Author = doc.AuthorName[0]
	}
	if len(doc.AuthorKey) > 0 {
		m.AuthorURL = fmt.Sprintf("%s/authors/%s", c.baseURL, doc.AuthorKey[0])
	}
	if len(doc.Publisher) > 0 {
		m.Publisher = doc.Publisher[0]
	}
	if len(doc.ISBN) > 0 {
		m.ISBN = doc.ISBN[0]
		m.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", doc.ISBN[0])
	} else if doc.CoverI != 0 {
		m.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", doc.CoverI)
	}
	if len(doc.Subject) > 0 {
		m.Subjects = doc.Subject
		if len(m.Subjects) > 10 {
			m.Subjects = m.Subjects[:10]
		}
	}
	return m
}

// mergeEdition fills gaps from the cover edition; search results win.
func mergeEdition(m *BookMetadata, edition *openLibraryEdition) {
	if m.ISBN == "" {
		if len(edition.ISBN13) > 0 {
			m.ISBN = edition.ISBN13[0]
		} else if len(edition.ISBN10) > 0 {
			m.ISBN = edition.ISBN10[0]
		}
	}
	if m.ISBN != "" && m.CoverURL == "" {
		m.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", m.ISBN)
	}
	if m.Publisher == "" && len(edition.Publishers) > 0 {
		m.Publisher = edition.Publishers[0]
	}
	if m.PageCount == 0 {
		m.PageCount = edition.NumberOfPages
	}
	if edition.PublishDate != "" {
		m.PublicationDate = edition.PublishDate
	}
}

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	AuthorKey        []string `json:"author_key"`
	FirstPublishYear int      `json:"first_publish_year"`
	Publisher        []string `json:"publisher"`
	ISBN             []string `json:"isbn"`
	CoverI           int      `json:"cover_i"`
	CoverEditionKey  string   `json:"cover_edition_key"`
	Subject          []string `json:"subject"`
}

type openLibraryEdition struct {
	Key           string   `json:"key"`
	Publishers    []string `json:"publishers"`
	PublishDate   string   `json:"publish_date"`
	ISBN10        []string `json:"isbn_10"`
	ISBN13        []string `json:"isbn_13"`
	NumberOfPages int      `json:"number_of_pages"`
}
