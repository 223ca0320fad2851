package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares fixed windows across instances via INCR + EXPIRE. The
// key's TTL is the window: the first increment of a window sets it, and
// Redis expiry implements the reset.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore wraps a Redis client. The prefix namespaces limiter keys so
// one Redis database can serve several limiters.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisStore) Incr(ctx context.Context, key string, length time.Duration) (int64, time.Time, error) {
	k := s.key(key)

	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimit: redis incr: %w", err)
	}

	if count == 1 {
		if err := s.client.PExpire(ctx, k, length).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("ratelimit: redis expire: %w", err)
		}
		return count, time.Now().Add(length), nil
	}

	ttl, err := s.client.PTTL(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimit: redis pttl: %w", err)
	}
	if ttl < 0 {
		// The key lost its expiry (e.g. the first increment's PExpire was
		// interrupted). Re-arm it rather than leaving an immortal window.
		if err := s.client.PExpire(ctx, k, length).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("ratelimit: redis expire: %w", err)
		}
		ttl = length
	}

	return count, time.Now().Add(ttl), nil
}

func (s *RedisStore) Peek(ctx context.Context, key string) (int64, time.Time, bool, error) {
	k := s.key(key)

	count, err := s.client.Get(ctx, k).Int64()
	if err == redis.Nil {
		return 0, time.Time{}, false, nil
	}
	if err != nil {
		return 0, time.Time{}, false, fmt.Errorf("ratelimit: redis get: %w", err)
	}

	ttl, err := s.client.PTTL(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, false, fmt.Errorf("ratelimit: redis pttl: %w", err)
	}
	if ttl < 0 {
		return 0, time.Time{}, false, nil
	}

	return count, time.Now().Add(ttl), true, nil
}
