// Package scheduler triggers notebook runs on a cron schedule read from the
// settings store.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/kindle-notebook/internal/entities"
	"github.com/mrlokans/kindle-notebook/internal/services"
	"github.com/mrlokans/kindle-notebook/internal/settingsstore"
)

// ErrNotConfigured means the effective settings lack a region or output directory.
var ErrNotConfigured = errors.New("notebook sync is not configured")

// SettingsSource is the part of the settings store the scheduler reads.
type SettingsSource interface {
	GetNotebookSyncConfig() settingsstore.NotebookSyncConfig
	SetNotebookSyncStatus(status, message string) error
}

// NotebookSyncScheduler runs the notebook fetch periodically.
type NotebookSyncScheduler struct {
	settings   SettingsSource
	dispatcher Dispatcher

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewNotebookSyncScheduler(settings SettingsSource, dispatcher Dispatcher) *NotebookSyncScheduler {
	return &NotebookSyncScheduler{
		settings:   settings,
		dispatcher: dispatcher,
		cron:       newCron(),
	}
}

func newCron() *cron.Cron {
	return cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
}

// Start schedules the job if sync is enabled. It is a no-op when disabled.
func (s *NotebookSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	cfg := s.settings.GetNotebookSyncConfig()
	if !cfg.Enabled {
		log.Printf("[SCHEDULER] Notebook sync disabled")
		return nil
	}
	if err := checkConfig(cfg); err != nil {
		log.Printf("[SCHEDULER] Notebook sync not started: %v", err)
		return nil
	}
	if err := settingsstore.ValidateCronSchedule(cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", cfg.Schedule, err)
	}

	s.cron = newCron()
	entryID, err := s.cron.AddFunc(cfg.Schedule, func() {
		s.runScheduled()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule notebook sync: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(cfg.Schedule, time.Now())
	log.Printf("[SCHEDULER] Notebook sync started with schedule '%s' (%s). Next run: %v",
		cfg.Schedule, settingsstore.GetCronDescription(cfg.Schedule), nextRun)

	// A rescheduled instance must not be stopped by the previous context.
	go func(c *cron.Cron) {
		<-cancelCtx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.cron == c {
			s.stopLocked()
		}
	}(s.cron)
	return nil
}

// Stop waits for the cron loop to exit. Dispatched runs are not cancelled.
func (s *NotebookSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *NotebookSyncScheduler) stopLocked() {
	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("[SCHEDULER] Notebook sync stopped")
}

// Reschedule restarts the scheduler with the current settings.
func (s *NotebookSyncScheduler) Reschedule(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// RunNow dispatches a run with the current settings, whether or not the
// schedule is enabled.
func (s *NotebookSyncScheduler) RunNow(ctx context.Context, trigger entities.RunTrigger) error {
	cfg := s.settings.GetNotebookSyncConfig()
	if err := checkConfig(cfg); err != nil {
		return err
	}
	return s.dispatcher.Dispatch(ctx, services.RunOptions{
		Region:    cfg.Region,
		OutputDir: cfg.OutputDir,
		Trigger:   trigger,
	})
}

func (s *NotebookSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next run will occur, or nil when stopped.
func (s *NotebookSyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *NotebookSyncScheduler) runScheduled() {
	cfg := s.settings.GetNotebookSyncConfig()
	if !cfg.Enabled {
		log.Printf("[SCHEDULER] Notebook sync skipped: disabled")
		return
	}

	err := s.RunNow(context.Background(), entities.RunTriggerScheduled)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrRunInProgress):
		log.Printf("[SCHEDULER] Notebook sync skipped: %v", err)
	default:
		log.Printf("[SCHEDULER] Notebook sync failed to start: %v", err)
		_ = s.settings.SetNotebookSyncStatus(string(entities.RunStatusFailed), err.Error())
	}
}

func checkConfig(cfg settingsstore.NotebookSyncConfig) error {
	if cfg.Region == "" {
		return fmt.Errorf("%w: region is empty", ErrNotConfigured)
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("%w: output directory is empty", ErrNotConfigured)
	}
	return nil
}
