package auth

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/kindle-notebook/internal/config"
)

// Session data keys
const (
	SessionKeyUsername = "username"
	SessionKeyLoginAt  = "login_at"
)

// SessionManager wraps scs.SessionManager with login helpers.
type SessionManager struct {
	*scs.SessionManager
	store *sqlite3store.SQLite3Store
}

// NewSessionManager stores sessions in the given sqlite database.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	store := sqlite3store.New(sqlDB)

	sm := scs.New()
	sm.Store = store
	sm.Lifetime = cfg.SessionLifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = 24 * time.Hour
	}
	sm.IdleTimeout = sm.Lifetime / 2

	sm.Cookie.Name = "kn_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm, store: store}, nil
}

// CreateSession logs username in on the request's session.
func (sm *SessionManager) CreateSession(r *http.Request, username string) error {
	// Renew token to prevent session fixation
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}
	sm.Put(r.Context(), SessionKeyUsername, username)
	sm.Put(r.Context(), SessionKeyLoginAt, time.Now())
	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// Username returns the logged in user, or "" for anonymous requests.
func (sm *SessionManager) Username(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyUsername)
}

// LoginAt returns when the session was created.
func (sm *SessionManager) LoginAt(r *http.Request) time.Time {
	return sm.GetTime(r.Context(), SessionKeyLoginAt)
}

// Close stops the store's expired-session cleanup.
func (sm *SessionManager) Close() {
	sm.store.StopCleanup()
}
