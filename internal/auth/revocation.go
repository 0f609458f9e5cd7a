package auth

import (
	"context"
	"sync"
	"time"

	"github.com/frahmantamala/attendance-management/pkg/clock"
	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers revoked token ids until the token would have
// expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type MemoryRevocationStore struct {
	mu      sync.Mutex
	clock   clock.Clock
	revoked map[string]time.Time
}

func NewMemoryRevocationStore(c clock.Clock) *MemoryRevocationStore {
	return &MemoryRevocationStore{
		clock:   c,
		revoked: make(map[string]time.Time),
	}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	if expiresAt.After(now) {
		s.revoked[tokenID] = expiresAt
	}
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !exp.After(s.clock.Now()) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

const revokedKeyPrefix = "attendance:auth:revoked:"

type RedisRevocationStore struct {
	rdb   redis.Cmdable
	clock clock.Clock
}

func NewRedisRevocationStore(rdb redis.Cmdable, c clock.Clock) *RedisRevocationStore {
	return &RedisRevocationStore{rdb: rdb, clock: c}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
