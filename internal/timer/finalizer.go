package timer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/attendance-management/internal/worker"
)

type Submitter interface {
	Submit(job worker.Job) error
}

// Finalizer completes timers that ran out while nobody was reading them.
type Finalizer struct {
	service *Service
	pool    Submitter
	logger  *slog.Logger
}

func NewFinalizer(service *Service, pool Submitter, logger *slog.Logger) *Finalizer {
	return &Finalizer{
		service: service,
		pool:    pool,
		logger:  logger,
	}
}

// Run queues one completion job per expired timer and returns how many were queued.
func (f *Finalizer) Run(ctx context.Context) (int, error) {
	users, err := f.service.Expired(ctx)
	if err != nil {
		f.logger.Error("failed to list expired work timers", "error", err)
		return 0, err
	}

	queued := 0
	for _, userID := range users {
		userID := userID
		err := f.pool.Submit(func(ctx context.Context) {
			if _, err := f.service.Get(ctx, userID); err != nil && !errors.Is(err, ErrTimerNotFound) {
				f.logger.Error("failed to finalize work timer", "error", err, "user_id", userID)
			}
		})
		if err != nil {
			f.logger.Warn("could not queue work timer finalization", "error", err, "user_id", userID)
			continue
		}
		queued++
	}

	if queued > 0 {
		f.logger.Info("queued expired work timers", "count", queued)
	}
	return queued, nil
}
