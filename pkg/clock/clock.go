package clock

import (
	"sync"
	"time"
)

const DateLayout = "2006-01-02"

// Clock is injected wherever "now" matters so that attendance, timer and leave
// logic can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// System returns a clock reading wall time in loc. A nil loc means time.Local.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Fixed is a settable clock for tests.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Date formats t as YYYY-MM-DD in its own location.
func Date(t time.Time) string {
	return t.Format(DateLayout)
}

// InRange reports whether date lies within [start, end]. All three are YYYY-MM-DD
// strings, which order lexically the same as chronologically.
func InRange(date, start, end string) bool {
	return date >= start && date <= end
}
