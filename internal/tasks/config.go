package tasks

import (
	"time"

	"github.com/mrlokans/kindle-notebook/internal/config"
)

// Config holds configuration for the task queue.
type Config struct {
	// Workers is the number of concurrent task workers. Notebook runs hold
	// an exclusive session lease, so one worker is enough. Default: 1
	Workers int

	MaxRetries  int
	RetryDelay  time.Duration
	TaskTimeout time.Duration

	// ReleaseAfter is when stuck tasks are released back to the queue. It
	// must exceed TaskTimeout. Default: 45m
	ReleaseAfter time.Duration

	CleanupInterval   time.Duration
	RetentionDuration time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           1,
		MaxRetries:        2,
		RetryDelay:        5 * time.Minute,
		TaskTimeout:       30 * time.Minute,
		ReleaseAfter:      45 * time.Minute,
		CleanupInterval:   time.Hour,
		RetentionDuration: 72 * time.Hour,
	}
}

// ConfigFrom takes the task settings from the application config, keeping
// defaults for zero values.
func ConfigFrom(cfg *config.Config) Config {
	out := DefaultConfig()
	t := cfg.Tasks
	if t.Workers > 0 {
		out.Workers = t.Workers
	}
	if t.MaxRetries > 0 {
		out.MaxRetries = t.MaxRetries
	}
	if t.RetryDelay > 0 {
		out.RetryDelay = t.RetryDelay
	}
	if t.TaskTimeout > 0 {
		out.TaskTimeout = t.TaskTimeout
	}
	if t.ReleaseAfter > 0 {
		out.ReleaseAfter = t.ReleaseAfter
	}
	if t.CleanupInterval > 0 {
		out.CleanupInterval = t.CleanupInterval
	}
	if t.RetentionDuration > 0 {
		out.RetentionDuration = t.RetentionDuration
	}
	return out
}
