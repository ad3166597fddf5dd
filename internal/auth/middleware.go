package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys
const (
	ContextKeyUsername = "auth_username"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the request was authenticated.
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// Middleware rejects unauthenticated requests outside the public paths.
type Middleware struct {
	service     *Service
	sessions    *SessionManager
	publicPaths map[string]bool
}

func NewMiddleware(service *Service, sessions *SessionManager) *Middleware {
	return &Middleware{
		service:  service,
		sessions: sessions,
		publicPaths: map[string]bool{
			"/health":          true,
			"/ping":            true,
			"/api/auth/login":  true,
			"/api/auth/logout": true,
			"/api/auth/me":     true,
		},
	}
}

func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.service.Enabled() {
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
			return
		}

		if token, ok := bearerToken(c); ok && m.service.ValidateToken(token) {
			setIdentity(c, m.service.Username(), AuthTypeBearer)
			c.Next()
			return
		}

		if m.sessions != nil {
			if username := m.sessions.Username(c.Request); username != "" {
				setIdentity(c, username, AuthTypeSession)
				c.Next()
				return
			}
		}

		if m.publicPaths[c.Request.URL.Path] {
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
			"code":  "UNAUTHORIZED",
		})
	}
}

func setIdentity(c *gin.Context, username string, authType AuthType) {
	c.Set(ContextKeyUsername, username)
	c.Set(ContextKeyAuthType, authType)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUsername returns the authenticated username, or "" when auth is off.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetAuthType returns how the request was authenticated.
func GetAuthType(c *gin.Context) AuthType {
	if t, ok := c.Get(ContextKeyAuthType); ok {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
