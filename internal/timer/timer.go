package timer

import (
	"fmt"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	timerDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/timer"
)

var (
	ErrTimerNotFound      = internal.NewNotFoundError("Work timer not found", internal.ErrCodeTimerNotFound)
	ErrTimerAlreadyActive = internal.NewConflictError("Work timer is already running", internal.ErrCodeTimerAlreadyActive)
)

// Timer is the per-user countdown started by a successful check-in.
type Timer struct {
	UserID           int64     `json:"user_id"`
	StartTime        time.Time `json:"start_time"`
	DurationSeconds  int64     `json:"duration_seconds"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	Remaining        string    `json:"remaining"`
	IsActive         bool      `json:"is_active"`
	TotalHours       float64   `json:"total_hours"`
	CheckInTime      time.Time `json:"check_in_time"`
	Date             string    `json:"date"`
}

// RemainingAt is the countdown left at now. Stopped timers keep their frozen value.
func RemainingAt(t *timerDatamodel.WorkTimer, now time.Time) int64 {
	if !t.IsActive {
		return t.RemainingSeconds
	}
	elapsed := int64(now.Sub(t.StartTime) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := t.RemainingSeconds - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FormatRemaining renders seconds as H:MM:SS.
func FormatRemaining(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

func FromDataModel(t *timerDatamodel.WorkTimer, now time.Time) *Timer {
	if t == nil {
		return nil
	}
	remaining := RemainingAt(t, now)
	return &Timer{
		UserID:           t.UserID,
		StartTime:        t.StartTime,
		DurationSeconds:  t.DurationSeconds,
		RemainingSeconds: remaining,
		Remaining:        FormatRemaining(remaining),
		IsActive:         t.IsActive,
		TotalHours:       t.TotalHours,
		CheckInTime:      t.CheckInTime,
		Date:             t.Date,
	}
}
