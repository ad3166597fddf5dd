package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/mrlokans/kindle-notebook/internal/entities"
)

// Manager hands out stored sessions one run at a time per region.
type Manager struct {
	store *Store

	mu     sync.Mutex
	leased map[string]struct{}
}

func NewManager(store *Store) *Manager {
	return &Manager{
		store:  store,
		leased: make(map[string]struct{}),
	}
}

// Acquire loads the region's session and leases it to the caller until the
// returned release function runs. Release is idempotent.
func (m *Manager) Acquire(ctx context.Context, region string) (*Session, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	if _, busy := m.leased[region]; busy {
		m.mu.Unlock()
		return nil, nil, fmt.Errorf("%w: %s", ErrSessionBusy, region)
	}
	m.leased[region] = struct{}{}
	m.mu.Unlock()

	sess, err := m.store.Load(region)
	if err != nil {
		m.unlease(region)
		return nil, nil, err
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := m.store.Touch(region); err != nil {
				log.Printf("[SESSION] %v", err)
			}
			m.unlease(region)
		})
	}
	return sess, release, nil
}

// Import parses a cookie header and stores it as the region's session.
func (m *Manager) Import(region, host, cookieHeader, userAgent string) (*Session, error) {
	cookies, err := ParseCookieHeader(cookieHeader, "."+host)
	if err != nil {
		return nil, err
	}
	sess := &Session{Region: region, Cookies: cookies, UserAgent: userAgent}
	if err := m.store.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Clear deletes the region's session. It fails while a run holds the session.
func (m *Manager) Clear(region string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.leased[region]; busy {
		return fmt.Errorf("%w: %s", ErrSessionBusy, region)
	}
	return m.store.Delete(region)
}

// List returns the stored sessions without their cookies.
func (m *Manager) List() ([]entities.KindleSession, error) {
	return m.store.List()
}

func (m *Manager) unlease(region string) {
	m.mu.Lock()
	delete(m.leased, region)
	m.mu.Unlock()
}
