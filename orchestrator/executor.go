package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/parkho-ai/contentengine/core"
)

// DefaultMaxConcurrentJobs is the executor pool size when none is given.
const DefaultMaxConcurrentJobs = 5

// Handle tracks one submitted job.
type Handle struct {
	jobID  string
	done   chan struct{}
	once   sync.Once
	result *core.ProcessingResult
	err    error
}

func newHandle(jobID string) *Handle {
	return &Handle{jobID: jobID, done: make(chan struct{})}
}

func (h *Handle) complete(result *core.ProcessingResult, err error) {
	h.once.Do(func() {
		h.result, h.err = result, err
		close(h.done)
	})
}

// JobID returns the id of the submitted job.
func (h *Handle) JobID() string {
	return h.jobID
}

// Done is closed when the job reaches a terminal state.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the job finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) (*core.ProcessingResult, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the terminal result, or ErrNotFinished while the job runs.
func (h *Handle) Result() (*core.ProcessingResult, error) {
	select {
	case <-h.done:
		return h.result, h.err
	default:
		return nil, ErrNotFinished
	}
}

// Executor runs jobs on a bounded worker pool.
type Executor struct {
	orchestrator *Orchestrator
	pool         *ants.Pool
	logger       *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*executorOptions)

type executorOptions struct {
	size        int
	nonblocking bool
}

// WithPoolSize sets the number of jobs that may run at once.
// Default is DefaultMaxConcurrentJobs, with a minimum of 1.
func WithPoolSize(size int) ExecutorOption {
	return func(o *executorOptions) {
		if size < 1 {
			size = 1
		}
		o.size = size
	}
}

// WithBlockingSubmit makes Submit wait for a free worker instead of
// failing with ErrExecutorBusy.
func WithBlockingSubmit() ExecutorOption {
	return func(o *executorOptions) {
		o.nonblocking = false
	}
}

// NewExecutor creates an executor backed by an ants pool.
func NewExecutor(orchestrator *Orchestrator, opts ...ExecutorOption) (*Executor, error) {
	options := &executorOptions{size: DefaultMaxConcurrentJobs, nonblocking: true}
	for _, opt := range opts {
		opt(options)
	}

	pool, err := ants.NewPool(options.size, ants.WithNonblocking(options.nonblocking))
	if err != nil {
		return nil, err
	}
	return &Executor{
		orchestrator: orchestrator,
		pool:         pool,
		logger:       slog.Default().With("component", "executor"),
	}, nil
}

// Submit schedules jobID and returns a handle to its result. A job that is
// already running is rejected with ErrJobAlreadyRunning before anything is
// scheduled.
func (e *Executor) Submit(ctx context.Context, jobID string) (*Handle, error) {
	running := e.orchestrator.running
	if !running.Add(jobID) {
		e.orchestrator.metrics.ObserveRejected("already_running")
		return nil, fmt.Errorf("%w: %s", ErrJobAlreadyRunning, jobID)
	}

	h := newHandle(jobID)
	err := e.pool.Submit(func() {
		defer running.Remove(jobID)
		h.complete(e.orchestrator.process(ctx, jobID), nil)
	})
	if err != nil {
		running.Remove(jobID)
		switch {
		case errors.Is(err, ants.ErrPoolOverload):
			e.orchestrator.metrics.ObserveRejected("busy")
			return nil, ErrExecutorBusy
		case errors.Is(err, ants.ErrPoolClosed):
			return nil, ErrExecutorClosed
		}
		return nil, err
	}

	e.logger.Debug("job submitted", "job_id", jobID, "running", e.pool.Running())
	return h, nil
}

// Running returns the number of busy workers.
func (e *Executor) Running() int {
	return e.pool.Running()
}

// Cap returns the pool size.
func (e *Executor) Cap() int {
	return e.pool.Cap()
}

// Release waits up to timeout for running jobs and closes the pool.
// The executor should not be used after calling Release.
func (e *Executor) Release(timeout time.Duration) error {
	return e.pool.ReleaseTimeout(timeout)
}
