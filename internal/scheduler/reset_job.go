package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
)

const sessionCleanupSpec = "@hourly"

type Resetter interface {
	Execute(ctx context.Context, caller entities.CallerKind) (*entities.ResetResult, error)
}

type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type ResetObserver interface {
	ObserveReset(caller entities.CallerKind, result *entities.ResetResult)
}

// Options configures the jobs. An empty ResetSpec leaves only the session cleanup.
type Options struct {
	ResetSpec string
	Location  *time.Location
	Timeout   time.Duration
}

// Scheduler runs the monthly reset and session housekeeping in process.
type Scheduler struct {
	cron     *cron.Cron
	reset    Resetter
	sessions SessionPurger
	observer ResetObserver
	logger   *zap.Logger
	opts     Options
}

func New(reset Resetter, sessions SessionPurger, observer ResetObserver, logger *zap.Logger, opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}

	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(opts.Location),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		reset:    reset,
		sessions: sessions,
		observer: observer,
		logger:   logger,
		opts:     opts,
	}
}

// Start registers the jobs and starts the cron loop. Jobs run with a context
// derived from ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.opts.ResetSpec != "" && s.reset != nil {
		if _, err := s.cron.AddFunc(s.opts.ResetSpec, func() { s.RunReset(ctx) }); err != nil {
			return fmt.Errorf("schedule reset %q: %w", s.opts.ResetSpec, err)
		}
		s.logger.Info("monthly reset scheduled",
			zap.String("spec", s.opts.ResetSpec),
			zap.String("location", s.opts.Location.String()),
		)
	}

	if s.sessions != nil {
		if _, err := s.cron.AddFunc(sessionCleanupSpec, func() { s.PurgeSessions(ctx) }); err != nil {
			return fmt.Errorf("schedule session cleanup: %w", err)
		}
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started")

	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cron scheduler stopped")
}

// RunReset executes one scheduled reset.
func (s *Scheduler) RunReset(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	s.logger.Info("cron triggered: monthly reset")

	result, err := s.reset.Execute(ctx, entities.CallerScheduled)
	if s.observer != nil {
		s.observer.ObserveReset(entities.CallerScheduled, result)
	}
	if err != nil {
		s.logger.Error("scheduled reset failed", zap.Error(err))
		return
	}

	s.logger.Info("scheduled reset done", zap.Int64("deleted_records", result.DeletedRecords))
}

func (s *Scheduler) PurgeSessions(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	n, err := s.sessions.PurgeExpiredSessions(ctx)
	if err != nil {
		s.logger.Error("purge expired sessions", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("expired sessions purged", zap.Int64("count", n))
	}
}
