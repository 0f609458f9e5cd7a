package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/leave"
	"github.com/robfig/cron/v3"
)

type LeaveSweeper interface {
	Sweep(ctx context.Context) (leave.SweepResult, error)
}

type TimerFinalizer interface {
	Run(ctx context.Context) (int, error)
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

// Scheduler runs the leave status sweep and the work timer finalizer.
type Scheduler struct {
	cfg       internal.SchedulerConfig
	cron      *cron.Cron
	sweeper   LeaveSweeper
	finalizer TimerFinalizer
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func New(cfg internal.SchedulerConfig, loc *time.Location, sweeper LeaveSweeper, finalizer TimerFinalizer, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cfg: cfg,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		sweeper:   sweeper,
		finalizer: finalizer,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start registers the jobs, runs the leave sweep once and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.LeaveSweepSpec, s.sweep); err != nil {
		return fmt.Errorf("invalid leave sweep spec %q: %w", s.cfg.LeaveSweepSpec, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.TimerFinalizerSpec, s.finalize); err != nil {
		return fmt.Errorf("invalid timer finalizer spec %q: %w", s.cfg.TimerFinalizerSpec, err)
	}

	s.sweep()
	s.cron.Start()

	s.logger.Info("scheduler started",
		"leave_sweep_spec", s.cfg.LeaveSweepSpec,
		"timer_finalizer_spec", s.cfg.TimerFinalizerSpec)
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.once.Do(func() {
		s.cancel()
		select {
		case <-s.cron.Stop().Done():
		case <-ctx.Done():
			s.logger.Warn("scheduler stop timed out")
		}
		s.logger.Info("scheduler stopped")
	})
}

func (s *Scheduler) sweep() {
	result, err := s.sweeper.Sweep(s.ctx)
	if err != nil {
		s.logger.Error("scheduled leave sweep failed", "error", err)
		return
	}
	s.logger.Debug("scheduled leave sweep done", "activated", result.Activated, "set_on_leave", result.SetOnLeave)
}

func (s *Scheduler) finalize() {
	if _, err := s.finalizer.Run(s.ctx); err != nil {
		s.logger.Error("scheduled timer finalization failed", "error", err)
	}
}
