package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a job on a cron schedule. A run still in progress when the
// next tick fires is skipped.
type Scheduler struct {
	spec string
	job  func(context.Context) error

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
}

func NewScheduler(spec string, job func(context.Context) error) *Scheduler {
	return &Scheduler{spec: spec, job: job}
}

// ValidateSchedule reports whether spec is a valid cron expression,
// including descriptors such as "@hourly".
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return nil
}

// Start schedules the job. Returns an error if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug))
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(logger), cron.Recover(logger)))

	runCtx, cancel := context.WithCancel(ctx)
	if _, err := c.AddFunc(s.spec, func() { s.run(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}

	c.Start()
	s.cron = c
	s.cancel = cancel
	s.running = true

	slog.InfoContext(ctx, "Scheduler started", "schedule", s.spec)
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	if err := s.job(ctx); err != nil {
		slog.ErrorContext(ctx, "Scheduled job failed", "schedule", s.spec, "error", err)
	}
}

// Stop cancels the job context and waits for a running job or ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	c, cancel := s.cron, s.cancel
	s.running = false
	s.mu.Unlock()

	cancel()
	done := c.Stop()

	select {
	case <-done.Done():
		slog.InfoContext(ctx, "Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
