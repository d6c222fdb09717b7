// Package scheduler runs scrapes on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled run. It receives a context that is cancelled on Stop.
type Job func(ctx context.Context) error

// Scheduler triggers a job on a standard five-field cron spec.
type Scheduler struct {
	cron    *cron.Cron
	jobID   cron.EntryID
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

// New creates a scheduler. Runs that overlap a still-running job are skipped.
// A positive timeout bounds each run.
func New(spec string, timeout time.Duration, job Job, logger *slog.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("job must not be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		logger:  logger,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.cron = cron.New(cron.WithChain(cron.Recover(cronLogger{logger})))

	id, err := s.cron.AddFunc(spec, func() { s.run(job) })
	if err != nil {
		cancel()
		return nil, fmt.Errorf("add cron %q: %w", spec, err)
	}
	s.jobID = id
	return s, nil
}

// Start begins cron execution.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "next", s.Next())
}

// Stop cancels a running job and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

// Next returns the time of the next scheduled run.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.jobID).Next
}

func (s *Scheduler) run(job Job) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("previous scheduled scrape still running, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("scheduled scrape failed", "error", err, "elapsed", time.Since(start))
		return
	}
	s.logger.Info("scheduled scrape finished", "elapsed", time.Since(start))
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
