package attendance

import (
	"fmt"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/pkg/clock"
)

// Schedule is the configured working day.
type Schedule struct {
	start    time.Duration
	end      time.Duration
	grace    time.Duration
	location *time.Location
}

func NewSchedule(cfg internal.AttendanceConfig) (Schedule, error) {
	start, err := parseTimeOfDay(cfg.WorkStart)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid work_start: %w", err)
	}
	end, err := parseTimeOfDay(cfg.WorkEnd)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid work_end: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{
		start:    start,
		end:      end,
		grace:    time.Duration(cfg.GracePeriodMinutes) * time.Minute,
		location: loc,
	}, nil
}

func parseTimeOfDay(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func (s Schedule) Location() *time.Location {
	return s.location
}

func (s Schedule) midnight(t time.Time) time.Time {
	t = t.In(s.location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.location)
}

// Start is the start of the working day containing t.
func (s Schedule) Start(t time.Time) time.Time {
	return s.midnight(t).Add(s.start)
}

// End is the end of the working day containing t.
func (s Schedule) End(t time.Time) time.Time {
	return s.midnight(t).Add(s.end)
}

// StatusFor is Late strictly after start plus grace; the boundary itself is Present.
func (s Schedule) StatusFor(checkIn time.Time) string {
	if checkIn.After(s.Start(checkIn).Add(s.grace)) {
		return StatusLate
	}
	return StatusPresent
}

// WorkDuration is the time left from checkIn until the end of the day, never negative.
func (s Schedule) WorkDuration(checkIn time.Time) time.Duration {
	d := s.End(checkIn).Sub(checkIn)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

// Date is the calendar date of t in the schedule's time zone.
func (s Schedule) Date(t time.Time) string {
	return clock.Date(t.In(s.location))
}
