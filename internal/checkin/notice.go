package checkin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/frahmantamala/attendance-management/pkg/clock"
	"github.com/redis/go-redis/v9"
)

// LateNotice is shown once to an employee who checked in late.
type LateNotice struct {
	Date      string    `json:"date"`
	CheckInAt time.Time `json:"check_in_at"`
	Message   string    `json:"message"`
}

type NoticeStore interface {
	PutLate(ctx context.Context, userID int64, notice LateNotice) error
	// TakeLate returns and clears the pending notice, or nil when there is none.
	TakeLate(ctx context.Context, userID int64) (*LateNotice, error)
}

type memoryNotice struct {
	notice    LateNotice
	expiresAt time.Time
}

type MemoryNoticeStore struct {
	clock clock.Clock
	ttl   time.Duration

	mu      sync.Mutex
	notices map[int64]memoryNotice
}

func NewMemoryNoticeStore(c clock.Clock, ttl time.Duration) *MemoryNoticeStore {
	return &MemoryNoticeStore{
		clock:   c,
		ttl:     ttl,
		notices: make(map[int64]memoryNotice),
	}
}

func (s *MemoryNoticeStore) PutLate(_ context.Context, userID int64, notice LateNotice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices[userID] = memoryNotice{notice: notice, expiresAt: s.clock.Now().Add(s.ttl)}
	return nil
}

func (s *MemoryNoticeStore) TakeLate(_ context.Context, userID int64) (*LateNotice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.notices[userID]
	if !ok {
		return nil, nil
	}
	delete(s.notices, userID)
	if !s.clock.Now().Before(entry.expiresAt) {
		return nil, nil
	}
	notice := entry.notice
	return &notice, nil
}

const lateNoticeKeyPrefix = "attendance:notices:late:"

type RedisNoticeStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisNoticeStore(rdb redis.Cmdable, ttl time.Duration) *RedisNoticeStore {
	return &RedisNoticeStore{rdb: rdb, ttl: ttl}
}

func lateNoticeKey(userID int64) string {
	return fmt.Sprintf("%s%d", lateNoticeKeyPrefix, userID)
}

func (s *RedisNoticeStore) PutLate(ctx context.Context, userID int64, notice LateNotice) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, lateNoticeKey(userID), data, s.ttl).Err()
}

func (s *RedisNoticeStore) TakeLate(ctx context.Context, userID int64) (*LateNotice, error) {
	raw, err := s.rdb.GetDel(ctx, lateNoticeKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var notice LateNotice
	if err := json.Unmarshal([]byte(raw), &notice); err != nil {
		return nil, nil
	}
	return &notice, nil
}
