package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/session"
)

// SessionsController manages imported Amazon sessions. Cookies are accepted
// but never returned.
type SessionsController struct {
	store SessionStore
}

func NewSessionsController(store SessionStore) *SessionsController {
	return &SessionsController{store: store}
}

// List handles GET /api/sessions
func (sc *SessionsController) List(c *gin.Context) {
	sessions, err := sc.store.List()
	if err != nil {
		respondInternalError(c, err, "list sessions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// ImportSessionRequest carries the Cookie header copied from a signed-in browser.
type ImportSessionRequest struct {
	Cookies   string `json:"cookies" binding:"required"`
	UserAgent string `json:"user_agent"`
}

// Import handles PUT /api/sessions/:region
func (sc *SessionsController) Import(c *gin.Context) {
	region, err := kindle.LookupRegion(c.Param("region"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var req ImportSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.UserAgent == "" {
		req.UserAgent = c.GetHeader("User-Agent")
	}

	sess, err := sc.store.Import(region.Code, region.Host, req.Cookies, req.UserAgent)
	if errors.Is(err, session.ErrNoCookies) {
		respondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "import session")
		return
	}
	respondSuccess(c, "session imported", gin.H{"region": sess.Region, "cookie_count": len(sess.Cookies)})
}

// Clear handles DELETE /api/sessions/:region
func (sc *SessionsController) Clear(c *gin.Context) {
	err := sc.store.Clear(c.Param("region"))
	switch {
	case err == nil:
		respondSuccess(c, "session removed", nil)
	case errors.Is(err, session.ErrSessionBusy):
		respondError(c, http.StatusConflict, "session_busy", err.Error())
	default:
		respondInternalError(c, err, "clear session")
	}
}
