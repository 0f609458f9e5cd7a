package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/frahmantamala/attendance-management/pkg/clock"
)

// Recorder measures named operations. Start returns a stop func that records
// the elapsed time when called.
type Recorder interface {
	Start(op string) func()
	Observe(op string, d time.Duration)
	Snapshot() []OperationStats
}

type OperationStats struct {
	Operation string          `json:"operation"`
	Count     int64           `json:"count"`
	AverageMs float64         `json:"average_ms"`
	LastMs    float64         `json:"last_ms"`
	Recent    []time.Duration `json:"-"`
}

type series struct {
	count  int64
	recent []time.Duration
}

// WindowRecorder keeps the last `window` durations per operation plus a lifetime count.
type WindowRecorder struct {
	clock  clock.Clock
	window int

	mu  sync.Mutex
	ops map[string]*series
}

func NewWindowRecorder(c clock.Clock, window int) *WindowRecorder {
	if window <= 0 {
		window = 10
	}
	return &WindowRecorder{
		clock:  c,
		window: window,
		ops:    make(map[string]*series),
	}
}

func (r *WindowRecorder) Start(op string) func() {
	started := r.clock.Now()
	return func() {
		r.Observe(op, r.clock.Now().Sub(started))
	}
}

func (r *WindowRecorder) Observe(op string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.ops[op]
	if !ok {
		s = &series{}
		r.ops[op] = s
	}
	s.count++
	s.recent = append(s.recent, d)
	if len(s.recent) > r.window {
		s.recent = s.recent[len(s.recent)-r.window:]
	}
}

// Snapshot returns stats for every operation, sorted by name.
func (r *WindowRecorder) Snapshot() []OperationStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]OperationStats, 0, len(r.ops))
	for name, s := range r.ops {
		var total time.Duration
		for _, d := range s.recent {
			total += d
		}
		stats := OperationStats{
			Operation: name,
			Count:     s.count,
			Recent:    append([]time.Duration(nil), s.recent...),
		}
		if n := len(s.recent); n > 0 {
			stats.AverageMs = float64(total.Microseconds()) / 1000 / float64(n)
			stats.LastMs = float64(s.recent[n-1].Microseconds()) / 1000
		}
		out = append(out, stats)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// Nop discards everything.
type Nop struct{}

func (Nop) Start(string) func() { return func() {} }

func (Nop) Observe(string, time.Duration) {}

func (Nop) Snapshot() []OperationStats { return nil }
