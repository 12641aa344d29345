package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bastionkit/bastion/core/logger"
)

// Job is a unit of periodic work. The context is cancelled when the scheduler
// stops; long-running jobs must honor it.
type Job func(ctx context.Context)

// job holds a registered job and its cancellation handle.
type job struct {
	name     string
	interval time.Duration
	fn       Job
	cancel   context.CancelFunc // nil until the scheduler starts the job
}

// Scheduler runs named jobs at fixed intervals, each on its own goroutine.
// Safe for concurrent use.
type Scheduler struct {
	mu   sync.Mutex
	jobs map[string]*job

	logger          *slog.Logger
	shutdownTimeout time.Duration

	// State management
	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup

	// Observability metrics
	runsCompleted atomic.Int64
}

// Stats provides observability metrics for monitoring and debugging.
type Stats struct {
	JobsRegistered int   // Current number of registered jobs
	RunsCompleted  int64 // Total number of job executions
	IsRunning      bool  // Whether the scheduler is currently running
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger for scheduler operations.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithShutdownTimeout sets the maximum time Stop waits for in-flight jobs.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// New creates a scheduler. Call Start to begin running registered jobs.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs:            make(map[string]*job),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		shutdownTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AddJob registers a named job. If the scheduler is already running, the job
// starts ticking immediately.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn Job) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	if fn == nil {
		return ErrNilJob
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrJobAlreadyRegistered, name)
	}

	j := &job{name: name, interval: interval, fn: fn}
	s.jobs[name] = j

	if s.running.Load() {
		s.launch(j)
	}

	return nil
}

// StopJob cancels and removes a single job by name. The job handle is retained
// by the scheduler for exactly this purpose: a component being disposed stops
// its own jobs without shutting down the shared scheduler.
func (s *Scheduler) StopJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	if j.cancel != nil {
		j.cancel()
	}
	delete(s.jobs, name)

	s.logger.Info("scheduler job stopped", logger.Key("job", name))
	return nil
}

// Start launches all registered jobs and blocks until the context is
// cancelled or Stop is called. Use Run for the errgroup pattern.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running.Store(true)

	for _, j := range s.jobs {
		s.launch(j)
	}
	s.mu.Unlock()

	s.logger.Info("scheduler started", logger.Count("jobs", s.Stats().JobsRegistered))

	<-s.ctx.Done()
	s.running.Store(false)
	return s.ctx.Err()
}

// Stop gracefully shuts down all jobs, waiting up to the shutdown timeout for
// in-flight executions to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return ErrNotStarted
	}

	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()

	ctx, ctxCancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer ctxCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped cleanly")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler shutdown timeout exceeded",
			logger.Duration(s.shutdownTimeout))
		return fmt.Errorf("shutdown timeout exceeded after %s", s.shutdownTimeout)
	}
}

// Run provides errgroup compatibility for coordinated lifecycle management.
func (s *Scheduler) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			_ = s.Stop() // Ignore stop error in normal shutdown
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

// Stats returns current scheduler metrics. Thread-safe.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	registered := len(s.jobs)
	s.mu.Unlock()

	return Stats{
		JobsRegistered: registered,
		RunsCompleted:  s.runsCompleted.Load(),
		IsRunning:      s.running.Load(),
	}
}

// launch starts the ticking goroutine for a job. Caller must hold s.mu and
// the scheduler context must be set.
func (s *Scheduler) launch(j *job) {
	jobCtx, jobCancel := context.WithCancel(s.ctx)
	j.cancel = jobCancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-ticker.C:
				j.fn(jobCtx)
				s.runsCompleted.Add(1)
			}
		}
	}()
}
