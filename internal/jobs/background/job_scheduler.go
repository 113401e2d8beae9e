package background

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"apartmani/internal/metrics"

	"github.com/go-co-op/gocron/v2"
)

const sweepTimeout = 30 * time.Second

// ResetTokenSweeper clears password reset tokens that expired before now.
type ResetTokenSweeper interface {
	ClearExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error)
}

// JobScheduler runs the periodic maintenance jobs.
type JobScheduler struct {
	scheduler     gocron.Scheduler
	sweeper       ResetTokenSweeper
	now           func() time.Time
	sweepInterval time.Duration
	logger        *slog.Logger
	jobs          map[string]gocron.Job
	mu            sync.RWMutex
}

// NewJobScheduler creates a scheduler with the reset token sweep registered.
func NewJobScheduler(sweeper ResetTokenSweeper, sweepInterval time.Duration, now func() time.Time, logger *slog.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if now == nil {
		now = time.Now
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		sweeper:       sweeper,
		now:           now,
		sweepInterval: sweepInterval,
		logger:        logger,
		jobs:          make(map[string]gocron.Job),
	}

	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler", "jobs", len(js.jobs))
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	sweepJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.sweepInterval),
		gocron.NewTask(js.SweepExpiredResetTokens, context.Background()),
		gocron.WithName("password-reset-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create password reset sweep job: %w", err)
	}

	js.mu.Lock()
	js.jobs["password-reset-sweep"] = sweepJob
	js.mu.Unlock()
	return nil
}

// SweepExpiredResetTokens clears expired reset tokens together with their
// expiry so the pair stays consistent.
func (js *JobScheduler) SweepExpiredResetTokens(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	cleared, err := js.sweeper.ClearExpiredPasswordResets(ctx, js.now())
	if err != nil {
		js.logger.ErrorContext(ctx, "password reset sweep failed", "error", err)
		return
	}
	metrics.ObserveResetTokensSwept(cleared)
	if cleared > 0 {
		js.logger.InfoContext(ctx, "cleared expired password reset tokens", "count", cleared)
	}
}

// JobNames lists the registered jobs.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}
