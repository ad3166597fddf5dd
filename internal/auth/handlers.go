package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kindle-notebook/internal/config"
)

// Guard bundles the auth components the router installs.
type Guard struct {
	Service  *Service
	Sessions *SessionManager // nil when auth is off

	limiter    *RateLimiter
	csrfSecret []byte
	secure     bool
}

// NewGuard builds the auth stack for cfg. Sessions live in sqlDB.
func NewGuard(sqlDB *sql.DB, cfg config.Auth) (*Guard, error) {
	g := &Guard{Service: NewService(cfg), secure: cfg.SecureCookies}
	if !g.Service.Enabled() {
		return g, nil
	}

	sessions, err := NewSessionManager(sqlDB, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}
	g.Sessions = sessions

	g.csrfSecret = []byte(cfg.SessionSecret)
	if len(g.csrfSecret) < 32 {
		if len(g.csrfSecret) > 0 {
			log.Printf("[AUTH] AUTH_SESSION_SECRET shorter than 32 bytes, using a generated one")
		}
		if g.csrfSecret, err = GenerateSessionSecret(); err != nil {
			sessions.Close()
			return nil, err
		}
	}

	g.limiter = NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})
	return g, nil
}

// Install adds security headers, and when auth is on, sessions, CSRF
// protection and the auth check. Call it before registering any route.
func (g *Guard) Install(router *gin.Engine) {
	router.Use(SecurityHeadersMiddleware())
	if g.Sessions != nil {
		router.Use(g.Sessions.LoadAndSave())
		router.Use(CSRFMiddleware(g.csrfSecret, g.secure, g.Service))
	}
	router.Use(NewMiddleware(g.Service, g.Sessions).Handler())

	ac := &AuthController{service: g.Service, sessions: g.Sessions, limiter: g.limiter}
	group := router.Group("/api/auth")
	group.GET("/me", ac.Me)
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
}

func (g *Guard) Close() {
	if g.Sessions != nil {
		g.Sessions.Close()
	}
}

// AuthController handles the login endpoints.
type AuthController struct {
	service  *Service
	sessions *SessionManager
	limiter  *RateLimiter
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type MeResponse struct {
	Mode          string `json:"mode"`
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	AuthType      string `json:"auth_type"`
	CSRFToken     string `json:"csrf_token,omitempty"`
}

// Me describes the caller and hands out the CSRF token for later writes.
func (ac *AuthController) Me(c *gin.Context) {
	resp := MeResponse{
		Mode:      string(config.AuthModeNone),
		AuthType:  string(GetAuthType(c)),
		CSRFToken: GetCSRFToken(c),
	}
	if ac.service.Enabled() {
		resp.Mode = string(config.AuthModeLocal)
		resp.Username = GetUsername(c)
		resp.Authenticated = resp.Username != ""
	} else {
		resp.Authenticated = true
	}
	c.JSON(http.StatusOK, resp)
}

func (ac *AuthController) Login(c *gin.Context) {
	if ac.sessions == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "authentication is disabled", "code": "AUTH_DISABLED"})
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required", "code": "BAD_REQUEST"})
		return
	}

	clientIP := c.ClientIP()
	if allowed, retryAfter := ac.limiter.Allow(clientIP, req.Username); !allowed {
		c.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts",
			"code":        "RATE_LIMITED",
			"retry_after": retryAfter.String(),
		})
		return
	}

	if err := ac.service.Authenticate(req.Username, req.Password); err != nil {
		if errors.Is(err, ErrPasswordLoginOff) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "PASSWORD_LOGIN_OFF"})
			return
		}
		if ac.limiter.RecordFailure(clientIP, req.Username) {
			log.Printf("[AUTH] locked out %q from %s after repeated failures", req.Username, clientIP)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidCredentials.Error(), "code": "UNAUTHORIZED"})
		return
	}
	ac.limiter.RecordSuccess(clientIP, req.Username)

	if err := ac.sessions.CreateSession(c.Request, req.Username); err != nil {
		log.Printf("[AUTH] failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session", "code": "INTERNAL_ERROR"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged in", "username": req.Username})
}

func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessions != nil {
		if err := ac.sessions.DestroySession(c.Request); err != nil {
			log.Printf("[AUTH] failed to destroy session: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
