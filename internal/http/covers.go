package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kindle-notebook/internal/database/runs"
)

// CoverController serves locally cached cover images of the last result's books.
type CoverController struct {
	runs   RunStore
	covers CoverStore
}

func NewCoverController(runStore RunStore, covers CoverStore) *CoverController {
	return &CoverController{runs: runStore, covers: covers}
}

// GetCover handles GET /api/notebook/covers/:bookId
func (cc *CoverController) GetCover(c *gin.Context) {
	bookID := c.Param("bookId")

	result, _, err := cc.runs.LastResult()
	if errors.Is(err, runs.ErrNoResult) {
		respondNotFound(c, "cover")
		return
	}
	if err != nil {
		respondInternalError(c, err, "load result")
		return
	}

	var imageURL string
	for _, book := range result.Books {
		if book.ID == bookID {
			imageURL = book.ImageURL
			break
		}
	}
	if imageURL == "" {
		respondNotFound(c, "cover")
		return
	}

	path, err := cc.covers.GetCover(c.Request.Context(), bookID, imageURL)
	if err != nil {
		log.Printf("[HTTP] cover for %s unavailable: %v", bookID, err)
		respondError(c, http.StatusBadGateway, "COVER_UNAVAILABLE", "cover image could not be fetched")
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}
