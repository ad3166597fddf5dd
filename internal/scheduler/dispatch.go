package scheduler

import (
	"context"
	"log"
	"sync"

	"github.com/mrlokans/kindle-notebook/internal/services"
	"github.com/mrlokans/kindle-notebook/internal/tasks"
)

// Dispatcher starts a notebook run without waiting for it to finish.
type Dispatcher interface {
	Dispatch(ctx context.Context, opts services.RunOptions) error
}

// Runner executes a notebook run synchronously.
type Runner interface {
	Run(ctx context.Context, opts services.RunOptions) (*services.RunReport, error)
	IsRunning() (bool, error)
}

// DirectDispatcher runs notebooks in a goroutine of the current process.
// Runs use the base context, not the caller's, so they outlive HTTP requests.
type DirectDispatcher struct {
	base   context.Context
	runner Runner
	wg     sync.WaitGroup
}

func NewDirectDispatcher(base context.Context, runner Runner) *DirectDispatcher {
	return &DirectDispatcher{base: base, runner: runner}
}

func (d *DirectDispatcher) Dispatch(ctx context.Context, opts services.RunOptions) error {
	running, err := d.runner.IsRunning()
	if err != nil {
		return err
	}
	if running {
		return services.ErrRunInProgress
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if _, err := d.runner.Run(d.base, opts); err != nil {
			log.Printf("[SCHEDULER] Notebook run for %s failed: %v", opts.Region, err)
		}
	}()
	return nil
}

// Wait blocks until dispatched runs return.
func (d *DirectDispatcher) Wait() {
	d.wg.Wait()
}

// QueueDispatcher enqueues runs on the background task queue.
type QueueDispatcher struct {
	client *tasks.Client
}

func NewQueueDispatcher(client *tasks.Client) *QueueDispatcher {
	return &QueueDispatcher{client: client}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, opts services.RunOptions) error {
	id, err := d.client.Enqueue(ctx, tasks.NotebookSyncTask{
		Region:    opts.Region,
		OutputDir: opts.OutputDir,
		Trigger:   opts.Trigger,
	})
	if err != nil {
		return err
	}
	log.Printf("[SCHEDULER] Queued notebook run for %s as task %s", opts.Region, id)
	return nil
}
