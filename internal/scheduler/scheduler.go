// Package scheduler wires up the cron job that periodically closes jobs
// whose headcount has been reached.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"edluar/pipeline/internal/model"
)

// Sweeper closes filled jobs. *pipeline.Service implements it.
type Sweeper interface {
	SweepFilledJobs(ctx context.Context) ([]model.Job, error)
}

// Scheduler wraps robfig/cron and manages the sweep loop.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	spec    string // cron spec, e.g. "@every 15m"
	log     *slog.Logger
}

// New creates a Scheduler firing on spec.
func New(sweeper Sweeper, spec string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scheduler")
	cl := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		sweeper: sweeper,
		spec:    spec,
		log:     logger,
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so jobs filled by an import are closed without waiting for
// the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("cron started", "spec", s.spec)

	go s.RunOnce(ctx)

	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron stopped")
}

// RunOnce performs one sweep. Errors are logged, never returned.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	closed, err := s.sweeper.SweepFilledJobs(ctx)
	if err != nil {
		s.log.Error("sweep failed", "err", err)
		return
	}
	if len(closed) == 0 {
		s.log.Debug("sweep complete, nothing to close")
		return
	}
	s.log.Info("sweep complete", "closed", len(closed))
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}
