package timer

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/frahmantamala/attendance-management/internal/attendance"
	timerDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/timer"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/pkg/clock"
)

type RepositoryAPI interface {
	// Get returns nil when the user has no timer.
	Get(ctx context.Context, userID int64) (*timerDatamodel.WorkTimer, error)
	Save(ctx context.Context, t *timerDatamodel.WorkTimer) error
	Delete(ctx context.Context, userID int64) error
	ListActive(ctx context.Context) ([]*timerDatamodel.WorkTimer, error)
}

// DayCompleter patches the day's attendance record when a timer finishes.
type DayCompleter interface {
	CompleteDay(ctx context.Context, userID int64, date string, checkOutAt time.Time, workedHours float64) error
}

type Service struct {
	repo      RepositoryAPI
	days      DayCompleter
	schedule  attendance.Schedule
	clock     clock.Clock
	publisher events.Publisher
	logger    *slog.Logger

	locks sync.Map
}

func NewService(repo RepositoryAPI, days DayCompleter, schedule attendance.Schedule, c clock.Clock, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		days:      days,
		schedule:  schedule,
		clock:     c,
		publisher: publisher,
		logger:    logger,
	}
}

// lock serialises state changes for one user's timer.
func (s *Service) lock(userID int64) func() {
	m, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Start begins the countdown from checkIn to the end of the working day.
func (s *Service) Start(ctx context.Context, userID int64, checkIn time.Time) (*Timer, error) {
	unlock := s.lock(userID)
	defer unlock()

	now := s.clock.Now()
	existing, err := s.repo.Get(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load work timer", "error", err, "user_id", userID)
		return nil, err
	}

	var total float64
	if existing != nil {
		if existing.IsActive && RemainingAt(existing, now) > 0 {
			return nil, ErrTimerAlreadyActive
		}
		total = existing.TotalHours
	}

	duration := int64(s.schedule.WorkDuration(checkIn) / time.Second)
	t := &timerDatamodel.WorkTimer{
		UserID:           userID,
		StartTime:        now,
		DurationSeconds:  duration,
		RemainingSeconds: duration,
		IsActive:         true,
		TotalHours:       total,
		CheckInTime:      checkIn,
		Date:             s.schedule.Date(checkIn),
	}
	if err := s.repo.Save(ctx, t); err != nil {
		s.logger.Error("failed to start work timer", "error", err, "user_id", userID)
		return nil, err
	}
	s.logger.Info("work timer started", "user_id", userID, "duration_seconds", duration)

	if duration == 0 {
		if err := s.complete(ctx, t, now); err != nil {
			return nil, err
		}
	}
	return FromDataModel(t, now), nil
}

// Get returns the timer with its remaining time recomputed, completing it
// when the countdown has run out.
func (s *Service) Get(ctx context.Context, userID int64) (*Timer, error) {
	unlock := s.lock(userID)
	defer unlock()

	t, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if t.IsActive && RemainingAt(t, now) == 0 {
		if err := s.complete(ctx, t, now); err != nil {
			return nil, err
		}
	}
	return FromDataModel(t, now), nil
}

// Complete finishes an active timer regardless of what is left on it.
func (s *Service) Complete(ctx context.Context, userID int64) (*Timer, error) {
	unlock := s.lock(userID)
	defer unlock()

	t, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if t.IsActive {
		if err := s.complete(ctx, t, now); err != nil {
			return nil, err
		}
	}
	return FromDataModel(t, now), nil
}

// Stop pauses the timer, freezing the remaining time.
func (s *Service) Stop(ctx context.Context, userID int64) (*Timer, error) {
	unlock := s.lock(userID)
	defer unlock()

	t, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if !t.IsActive {
		return FromDataModel(t, now), nil
	}

	remaining := RemainingAt(t, now)
	if remaining == 0 {
		if err := s.complete(ctx, t, now); err != nil {
			return nil, err
		}
		return FromDataModel(t, now), nil
	}

	t.RemainingSeconds = remaining
	t.IsActive = false
	if err := s.repo.Save(ctx, t); err != nil {
		s.logger.Error("failed to stop work timer", "error", err, "user_id", userID)
		return nil, err
	}
	return FromDataModel(t, now), nil
}

func (s *Service) Reset(ctx context.Context, userID int64) (*Timer, error) {
	unlock := s.lock(userID)
	defer unlock()

	t, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	t.IsActive = false
	t.RemainingSeconds = 0
	t.TotalHours = 0
	if err := s.repo.Save(ctx, t); err != nil {
		s.logger.Error("failed to reset work timer", "error", err, "user_id", userID)
		return nil, err
	}
	return FromDataModel(t, s.clock.Now()), nil
}

func (s *Service) Delete(ctx context.Context, userID int64) error {
	unlock := s.lock(userID)
	defer unlock()

	if err := s.repo.Delete(ctx, userID); err != nil {
		if !errors.Is(err, ErrTimerNotFound) {
			s.logger.Error("failed to delete work timer", "error", err, "user_id", userID)
		}
		return err
	}
	return nil
}

// Expired lists the users whose active timers have reached zero.
func (s *Service) Expired(ctx context.Context) ([]int64, error) {
	timers, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var users []int64
	for _, t := range timers {
		if RemainingAt(t, now) == 0 {
			users = append(users, t.UserID)
		}
	}
	return users, nil
}

func (s *Service) load(ctx context.Context, userID int64) (*timerDatamodel.WorkTimer, error) {
	t, err := s.repo.Get(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load work timer", "error", err, "user_id", userID)
		return nil, err
	}
	if t == nil {
		return nil, ErrTimerNotFound
	}
	return t, nil
}

// complete must be called with the user's lock held.
func (s *Service) complete(ctx context.Context, t *timerDatamodel.WorkTimer, now time.Time) error {
	elapsed := roundHours(now.Sub(t.CheckInTime))

	t.TotalHours = math.Round((t.TotalHours+elapsed)*100) / 100
	t.IsActive = false
	t.RemainingSeconds = 0
	if err := s.repo.Save(ctx, t); err != nil {
		s.logger.Error("failed to complete work timer", "error", err, "user_id", t.UserID)
		return err
	}

	if err := s.days.CompleteDay(ctx, t.UserID, t.Date, now, elapsed); err != nil {
		if !errors.Is(err, attendance.ErrAttendanceNotFound) {
			return err
		}
		s.logger.Warn("no attendance record to patch for completed timer", "user_id", t.UserID, "date", t.Date)
	}

	s.logger.Info("work timer completed", "user_id", t.UserID, "worked_hours", elapsed)
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewTimerCompletedEvent(t.UserID, t.Date, elapsed)); err != nil {
			s.logger.Warn("failed to publish timer completion", "error", err, "user_id", t.UserID)
		}
	}
	return nil
}

func roundHours(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return math.Round(d.Hours()*100) / 100
}
