package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/mrlokans/kindle-notebook/internal/entities"
	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/session"
)

// ErrRunInProgress means another notebook run has not finished yet.
var ErrRunInProgress = errors.New("a notebook run is already in progress")

// RunOptions selects what a run fetches and where it writes.
type RunOptions struct {
	Region    string
	OutputDir string
	Trigger   entities.RunTrigger
}

// RunReport is everything a caller may want to show about a finished run.
type RunReport struct {
	Run     *entities.NotebookRun `json:"run"`
	Result  *kindle.Result        `json:"-"`
	Process *ProcessResult        `json:"process,omitempty"`
}

// NotebookService runs the whole cycle: lease session, fetch, enrich,
// render, export and record the run.
type NotebookService struct {
	sessions   SessionProvider
	newFetcher FetcherFactory
	newExport  ExporterFactory
	pipeline   *Pipeline
	runs       RunStore
	progress   ProgressTracker
	status     StatusRecorder
	maxPages   int

	// mu serializes the in-progress check with the start of a run.
	mu     sync.Mutex
	active bool
}

type NotebookServiceDeps struct {
	Sessions  SessionProvider
	Fetchers  FetcherFactory
	Exporters ExporterFactory
	Pipeline  *Pipeline
	Runs      RunStore
	Progress  ProgressTracker
	Status    StatusRecorder // optional
	MaxPages  int
}

func NewNotebookService(deps NotebookServiceDeps) *NotebookService {
	maxPages := deps.MaxPages
	if maxPages <= 0 {
		maxPages = kindle.DefaultMaxPages
	}
	return &NotebookService{
		sessions:   deps.Sessions,
		newFetcher: deps.Fetchers,
		newExport:  deps.Exporters,
		pipeline:   deps.Pipeline,
		runs:       deps.Runs,
		progress:   deps.Progress,
		status:     deps.Status,
		maxPages:   maxPages,
	}
}

// IsRunning reports whether a run is in progress.
func (s *NotebookService) IsRunning() (bool, error) {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if active {
		return true, nil
	}
	return s.progress.IsSyncRunning()
}

// begin claims the service for one run. Only one run may hold it at a time.
func (s *NotebookService) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return ErrRunInProgress
	}
	running, err := s.progress.IsSyncRunning()
	if err != nil {
		return fmt.Errorf("check sync progress: %w", err)
	}
	if running {
		return ErrRunInProgress
	}
	s.active = true
	return nil
}

func (s *NotebookService) end() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// Run executes one notebook run. The returned report is non-nil whenever a
// run record was created, including failed runs.
func (s *NotebookService) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	if _, err := kindle.LookupRegion(opts.Region); err != nil {
		return nil, err
	}

	run, err := s.runs.StartRun(opts.Region, opts.Trigger)
	if err != nil {
		return nil, err
	}
	if err := s.progress.StartSync(0); err != nil {
		log.Printf("[NOTEBOOK] failed to record sync start: %v", err)
	}

	report := &RunReport{Run: run}
	if err := s.execute(ctx, opts, report); err != nil {
		s.fail(report, err)
		return report, err
	}
	s.complete(report)
	return report, nil
}

func (s *NotebookService) execute(ctx context.Context, opts RunOptions, report *RunReport) error {
	sess, release, err := s.sessions.Acquire(ctx, opts.Region)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return fmt.Errorf("%w: %v", kindle.ErrAuthRequired, err)
		}
		return err
	}
	defer release()

	fetcher, closeFetcher, err := s.newFetcher(sess)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFetcher(); err != nil {
			log.Printf("[NOTEBOOK] failed to close fetcher: %v", err)
		}
	}()

	syncer := kindle.NewSyncer(fetcher, sess,
		kindle.WithMaxPages(s.maxPages),
		kindle.WithProgressReporter(kindle.MultiReporter{
			kindle.LogReporter{Logger: log.Default()},
			s.progress.Reporter(),
		}),
	)
	result, err := syncer.FetchHighlights(ctx, opts.Region)
	if err != nil {
		return err
	}
	report.Result = result

	processed, err := s.pipeline.Process(ctx, &result.NotebookResult, s.newExport(report.Run.ID, opts.OutputDir))
	report.Process = processed
	if err != nil {
		return err
	}

	// Store the enriched result so previews show the same metadata as the files
	if err := s.runs.SetResult(report.Run, result.NotebookResult); err != nil {
		log.Printf("[NOTEBOOK] failed to store result: %v", err)
	}
	return nil
}

func (s *NotebookService) complete(report *RunReport) {
	run := report.Run
	result := report.Result

	run.Status = entities.RunStatusCompleted
	run.FailedBooks = len(result.Failures)
	run.Warnings = strings.Join(result.Warnings, "\n")
	if report.Process != nil {
		run.NotesWritten = report.Process.Export.NotesWritten
		if len(report.Process.RenderFailures) > 0 || report.Process.Export.NotesFailed > 0 {
			run.Status = entities.RunStatusPartial
		}
	}
	if run.FailedBooks > 0 {
		run.Status = entities.RunStatusPartial
	}

	if err := s.runs.FinishRun(run); err != nil {
		log.Printf("[NOTEBOOK] failed to save run %d: %v", run.ID, err)
	}
	if err := s.progress.CompleteSync(true, ""); err != nil {
		log.Printf("[NOTEBOOK] failed to record sync completion: %v", err)
	}

	message := fmt.Sprintf("%d books, %d highlights, %d notes written", len(result.Books), len(result.Highlights), run.NotesWritten)
	if run.FailedBooks > 0 {
		message += fmt.Sprintf(", %d books failed", run.FailedBooks)
	}
	s.recordStatus(string(run.Status), message)
	log.Printf("[NOTEBOOK] run %d %s: %s", run.ID, run.Status, message)
}

func (s *NotebookService) fail(report *RunReport, err error) {
	run := report.Run
	run.Status = entities.RunStatusFailed
	run.Error = err.Error()
	if report.Result != nil {
		run.FailedBooks = len(report.Result.Failures)
		run.Warnings = strings.Join(report.Result.Warnings, "\n")
	}

	if ferr := s.runs.FinishRun(run); ferr != nil {
		log.Printf("[NOTEBOOK] failed to save run %d: %v", run.ID, ferr)
	}
	if cerr := s.progress.CompleteSync(false, err.Error()); cerr != nil {
		log.Printf("[NOTEBOOK] failed to record sync failure: %v", cerr)
	}
	s.recordStatus(string(entities.RunStatusFailed), err.Error())
	log.Printf("[NOTEBOOK] run %d failed: %v", run.ID, err)
}

func (s *NotebookService) recordStatus(status, message string) {
	if s.status == nil {
		return
	}
	if err := s.status.SetNotebookSyncStatus(status, message); err != nil {
		log.Printf("[NOTEBOOK] failed to record status: %v", err)
	}
}
