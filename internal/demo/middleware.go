package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware blocks write operations in demo mode.
// Read-only operations (GET) are always allowed, as are the paths in
// allowedPaths: logging in and re-running the sync against saved pages.
type Middleware struct {
	enabled bool
}

func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

// IsEnabled returns whether demo mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

var allowedPaths = []string{
	"/api/auth/",
	"/api/notebook/sync",
}

// Handler returns a Gin middleware that rejects writes with 403.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "This action is disabled in demo mode",
			"code":      "DEMO_MODE",
			"demo_mode": true,
		})
	}
}

func isAllowedPath(path string) bool {
	for _, allowed := range allowedPaths {
		if path == allowed || (strings.HasSuffix(allowed, "/") && strings.HasPrefix(path, allowed)) {
			return true
		}
	}
	return false
}
