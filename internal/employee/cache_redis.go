package employee

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const directoryCacheKey = "attendance:employees:directory"

// RedisDirectoryCache shares the directory between server instances. Redis
// expires the key after ttl.
type RedisDirectoryCache struct {
	rdb redis.Cmdable
	key string
	ttl time.Duration
}

func NewRedisDirectoryCache(rdb redis.Cmdable, ttl time.Duration) *RedisDirectoryCache {
	return &RedisDirectoryCache{rdb: rdb, key: directoryCacheKey, ttl: ttl}
}

func (c *RedisDirectoryCache) Get(ctx context.Context) ([]*Employee, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cached []*Employee
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		// a corrupt entry is treated as a miss and dropped
		_ = c.rdb.Del(ctx, c.key).Err()
		return nil, false, nil
	}
	return cached, true, nil
}

func (c *RedisDirectoryCache) Set(ctx context.Context, employees []*Employee) error {
	// PasswordHash is tagged json:"-" and never reaches redis
	data, err := json.Marshal(employees)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key, data, c.ttl).Err()
}

func (c *RedisDirectoryCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}
