package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kindle-notebook/internal/config"
	"github.com/mrlokans/kindle-notebook/internal/database"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGuardRouter(t *testing.T, cfg config.Auth) *gin.Engine {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	guard, err := NewGuard(sqlDB, cfg)
	require.NoError(t, err)
	t.Cleanup(guard.Close)

	router := gin.New()
	guard.Install(router)
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/notebook/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetUsername(c), "via": GetAuthType(c)})
	})
	router.POST("/api/notebook/sync", func(c *gin.Context) { c.Status(http.StatusAccepted) })
	return router
}

type client struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func (cl *client) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	cl.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(cl.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	cl.router.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		cl.cookies[c.Name] = c
	}
	return rr
}

func TestGuard_Disabled(t *testing.T) {
	router := newGuardRouter(t, config.Auth{Mode: config.AuthModeNone})
	cl := &client{t: t, router: router, cookies: map[string]*http.Cookie{}}

	rr := cl.do(http.MethodPost, "/api/notebook/sync", nil, nil)
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))

	rr = cl.do(http.MethodGet, "/api/auth/me", nil, nil)
	var me MeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, "none", me.Mode)
	assert.True(t, me.Authenticated)
}

func TestGuard_RejectsAnonymous(t *testing.T) {
	router := newGuardRouter(t, localConfig(t))
	cl := &client{t: t, router: router, cookies: map[string]*http.Cookie{}}

	assert.Equal(t, http.StatusUnauthorized, cl.do(http.MethodGet, "/api/notebook/status", nil, nil).Code)
	assert.Equal(t, http.StatusOK, cl.do(http.MethodGet, "/health", nil, nil).Code)
}

func TestGuard_BearerToken(t *testing.T) {
	router := newGuardRouter(t, localConfig(t))
	cl := &client{t: t, router: router, cookies: map[string]*http.Cookie{}}
	bearer := map[string]string{"Authorization": "Bearer api-token-123"}

	rr := cl.do(http.MethodGet, "/api/notebook/status", nil, bearer)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"user":"operator","via":"bearer"}`, rr.Body.String())

	assert.Equal(t, http.StatusAccepted, cl.do(http.MethodPost, "/api/notebook/sync", nil, bearer).Code,
		"bearer requests skip CSRF")

	wrong := map[string]string{"Authorization": "Bearer nope"}
	assert.Equal(t, http.StatusUnauthorized, cl.do(http.MethodGet, "/api/notebook/status", nil, wrong).Code)
}

func TestGuard_SessionLogin(t *testing.T) {
	cfg := localConfig(t)
	cfg.SecureCookies = false
	router := newGuardRouter(t, cfg)
	cl := &client{t: t, router: router, cookies: map[string]*http.Cookie{}}

	rr := cl.do(http.MethodGet, "/api/auth/me", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var me MeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.False(t, me.Authenticated)
	require.NotEmpty(t, me.CSRFToken)
	csrfHeader := map[string]string{CSRFTokenHeader: me.CSRFToken}

	// Login itself is CSRF protected
	rr = cl.do(http.MethodPost, "/api/auth/login", LoginRequest{Username: "operator", Password: testPassword}, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = cl.do(http.MethodPost, "/api/auth/login", LoginRequest{Username: "operator", Password: "wrong password!!"}, csrfHeader)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = cl.do(http.MethodPost, "/api/auth/login", LoginRequest{Username: "operator", Password: testPassword}, csrfHeader)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, cl.cookies, "kn_session")

	rr = cl.do(http.MethodGet, "/api/notebook/status", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"user":"operator","via":"session"}`, rr.Body.String())

	assert.Equal(t, http.StatusForbidden, cl.do(http.MethodPost, "/api/notebook/sync", nil, nil).Code,
		"session writes need the CSRF header")
	assert.Equal(t, http.StatusAccepted, cl.do(http.MethodPost, "/api/notebook/sync", nil, csrfHeader).Code)

	rr = cl.do(http.MethodPost, "/api/auth/logout", nil, csrfHeader)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusUnauthorized, cl.do(http.MethodGet, "/api/notebook/status", nil, nil).Code)
}

func TestGuard_LoginRateLimited(t *testing.T) {
	cfg := localConfig(t)
	cfg.SecureCookies = false
	cfg.MaxLoginAttempts = 2
	router := newGuardRouter(t, cfg)
	cl := &client{t: t, router: router, cookies: map[string]*http.Cookie{}}

	var me MeResponse
	require.NoError(t, json.Unmarshal(cl.do(http.MethodGet, "/api/auth/me", nil, nil).Body.Bytes(), &me))
	csrfHeader := map[string]string{CSRFTokenHeader: me.CSRFToken}
	wrong := LoginRequest{Username: "operator", Password: "wrong password!!"}

	assert.Equal(t, http.StatusUnauthorized, cl.do(http.MethodPost, "/api/auth/login", wrong, csrfHeader).Code)
	assert.Equal(t, http.StatusUnauthorized, cl.do(http.MethodPost, "/api/auth/login", wrong, csrfHeader).Code)

	rr := cl.do(http.MethodPost, "/api/auth/login", LoginRequest{Username: "operator", Password: testPassword}, csrfHeader)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}
