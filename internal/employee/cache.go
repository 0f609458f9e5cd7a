package employee

import (
	"context"
	"sync"
	"time"

	"github.com/frahmantamala/attendance-management/pkg/clock"
)

// DirectoryCache holds the full employee list for lookups on the check-in path.
// Every employee write must call Invalidate.
type DirectoryCache interface {
	Get(ctx context.Context) ([]*Employee, bool, error)
	Set(ctx context.Context, employees []*Employee) error
	Invalidate(ctx context.Context) error
}

type MemoryDirectoryCache struct {
	clock clock.Clock
	ttl   time.Duration

	mu       sync.RWMutex
	entries  []*Employee
	storedAt time.Time
	valid    bool
}

func NewMemoryDirectoryCache(c clock.Clock, ttl time.Duration) *MemoryDirectoryCache {
	return &MemoryDirectoryCache{clock: c, ttl: ttl}
}

func (m *MemoryDirectoryCache) Get(_ context.Context) ([]*Employee, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.valid || m.clock.Now().Sub(m.storedAt) >= m.ttl {
		return nil, false, nil
	}
	return cloneAll(m.entries), true, nil
}

func (m *MemoryDirectoryCache) Set(_ context.Context, employees []*Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = cloneAll(employees)
	m.storedAt = m.clock.Now()
	m.valid = true
	return nil
}

func (m *MemoryDirectoryCache) Invalidate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	m.valid = false
	return nil
}

// cloneAll copies every entry so callers cannot mutate cached state.
func cloneAll(in []*Employee) []*Employee {
	out := make([]*Employee, len(in))
	for i, e := range in {
		cp := *e
		out[i] = &cp
	}
	return out
}
