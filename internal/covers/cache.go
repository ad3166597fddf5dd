package covers

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

// Cache keeps local copies of book cover images so note previews do not
// hotlink Amazon's image CDN on every view.
type Cache struct {
	cacheDir string
	http     *resty.Client
}

func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "KindleNotebook/1.0")

	return &Cache{cacheDir: cacheDir, http: client}, nil
}

// GetCover returns the path of the cached cover for a book, downloading it on
// first use. A changed URL for the same book is a new cache entry.
func (c *Cache) GetCover(ctx context.Context, bookID, coverURL string) (string, error) {
	if coverURL == "" {
		return "", nil
	}
	if filepath.Base(bookID) != bookID || bookID == "" {
		return "", fmt.Errorf("invalid book id %q", bookID)
	}

	cachePath := filepath.Join(c.cacheDir, coverFilename(bookID, coverURL))
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := c.fetchAndCache(ctx, coverURL, cachePath); err != nil {
		return "", err
	}
	return cachePath, nil
}

// InvalidateCover removes every cached cover of a book.
func (c *Cache) InvalidateCover(bookID string) error {
	matches, err := filepath.Glob(filepath.Join(c.cacheDir, "cover_"+bookID+"_*"))
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func coverFilename(bookID, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("cover_%s_%x.jpg", bookID, hash[:8])
}

func (c *Cache) fetchAndCache(ctx context.Context, url, cachePath string) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return fmt.Errorf("fetch cover: %w", err)
	}
	body := res.RawBody()
	defer body.Close()

	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", res.StatusCode())
	}

	// Temp file in the same directory so the rename is atomic
	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.ReadFrom(body); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, cachePath)
}

func (c *Cache) CacheDir() string {
	return c.cacheDir
}
