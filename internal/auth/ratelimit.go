package auth

import (
	"sync"
	"time"
)

// RateLimiter counts failed logins per client IP and username in a fixed
// window, locking the pair out once the limit is reached.
type RateLimiter struct {
	mu              sync.Mutex
	attempts        map[string]*attemptRecord
	maxAttempts     int
	windowDuration  time.Duration
	lockoutDuration time.Duration
	now             func() time.Time
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int           // default 5
	WindowDuration  time.Duration // default 15m
	LockoutDuration time.Duration // default 30m
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = 15 * time.Minute
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 30 * time.Minute
	}
	return &RateLimiter{
		attempts:        make(map[string]*attemptRecord),
		maxAttempts:     cfg.MaxAttempts,
		windowDuration:  cfg.WindowDuration,
		lockoutDuration: cfg.LockoutDuration,
		now:             time.Now,
	}
}

func rateKey(ip, username string) string {
	return ip + ":" + username
}

// Allow reports whether a login attempt may proceed, and if not, for how long
// the pair stays locked.
func (rl *RateLimiter) Allow(ip, username string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, ok := rl.attempts[rateKey(ip, username)]
	if !ok {
		return true, 0
	}
	now := rl.now()
	if now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a failed attempt and reports whether it caused a lockout.
func (rl *RateLimiter) RecordFailure(ip, username string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.prune(now)

	key := rateKey(ip, username)
	record, ok := rl.attempts[key]
	if !ok || now.Sub(record.firstAttempt) > rl.windowDuration {
		record = &attemptRecord{firstAttempt: now}
		rl.attempts[key] = record
	}

	record.count++
	if record.count >= rl.maxAttempts {
		record.lockedUntil = now.Add(rl.lockoutDuration)
		return true
	}
	return false
}

// RecordSuccess clears the failure record for a successful login.
func (rl *RateLimiter) RecordSuccess(ip, username string) {
	rl.mu.Lock()
	delete(rl.attempts, rateKey(ip, username))
	rl.mu.Unlock()
}

// prune drops records whose window and lockout have both passed. Called with mu held.
func (rl *RateLimiter) prune(now time.Time) {
	for key, record := range rl.attempts {
		if now.Sub(record.firstAttempt) > rl.windowDuration && !now.Before(record.lockedUntil) {
			delete(rl.attempts, key)
		}
	}
}
