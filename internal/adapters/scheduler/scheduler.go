// Package scheduler runs recurring background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"clubify/internal/adapters/http/perf"
)

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = 5 * time.Minute

// Job is one named unit of scheduled work. An empty Spec disables the job.
type Job struct {
	Name string
	Spec string // standard 5-field cron or a descriptor such as "@every 1m"
	Run  func(ctx context.Context) error
}

// Scheduler wraps a cron runner. Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron      *cron.Cron
	collector *perf.Collector
	timeout   time.Duration
	now       func() time.Time
}

// New creates a Scheduler. collector may be nil.
func New(collector *perf.Collector) *Scheduler {
	logger := slogLogger{}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(logger), cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		collector: collector,
		timeout:   DefaultJobTimeout,
		now:       time.Now,
	}
}

// Add registers job. It reports false without error when the job is disabled.
// PRE: job.Run is non-nil
func (s *Scheduler) Add(job Job) (bool, error) {
	if job.Spec == "" {
		slog.Info("scheduler_event", "event", "job_disabled", "job", job.Name)
		return false, nil
	}
	if _, err := s.cron.AddFunc(job.Spec, s.wrap(job)); err != nil {
		return false, fmt.Errorf("schedule %s (%q): %w", job.Name, job.Spec, err)
	}
	slog.Info("scheduler_event", "event", "job_scheduled", "job", job.Name, "spec", job.Spec)
	return true, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("scheduler_event", "event", "stop_timeout")
	}
}

// wrap bounds a run with the job timeout, logs its outcome and records its
// duration in the perf collector.
func (s *Scheduler) wrap(job Job) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		started := s.now()
		err := job.Run(ctx)
		if s.collector != nil {
			s.collector.RecordJob(job.Name, started, err)
		}
		if err != nil {
			slog.Error("scheduler_event", "event", "job_failed", "job", job.Name,
				"duration_ms", time.Since(started).Milliseconds(), "error", err)
			return
		}
		slog.Info("scheduler_event", "event", "job_done", "job", job.Name,
			"duration_ms", time.Since(started).Milliseconds())
	}
}

// slogLogger adapts cron's logger interface to slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron", append([]any{"msg", msg}, keysAndValues...)...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron", append([]any{"msg", msg, "error", err}, keysAndValues...)...)
}
