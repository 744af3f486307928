package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "studio:ratelimit:"

// Incrementer bumps a shared counter and reports its remaining lifetime.
type Incrementer interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// RedisStore shares counters between instances through Redis.
type RedisStore struct {
	counter Incrementer
	now     func() time.Time
}

// NewRedisStore creates a RedisStore over client.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return NewRedisStoreWith(redisIncrementer{client: client})
}

// NewRedisStoreWith creates a RedisStore over any Incrementer.
func NewRedisStoreWith(counter Incrementer) *RedisStore {
	return &RedisStore{counter: counter, now: time.Now}
}

// Dial parses a redis:// URL, connects and pings.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Increment implements Store.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	count, ttl, err := s.counter.IncrWindow(ctx, redisKeyPrefix+key, window)
	if err != nil {
		return 0, time.Time{}, err
	}
	if ttl <= 0 || ttl > window {
		ttl = window
	}
	return count, s.now().Add(ttl), nil
}

type redisIncrementer struct {
	client redis.Cmdable
}

// IncrWindow runs INCR and PTTL in one transaction and starts the expiry
// on the first hit of a window.
func (r redisIncrementer) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	count, ttl := incr.Val(), pttl.Val()
	if count == 1 || ttl < 0 {
		if err := r.client.PExpire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = window
	}
	return count, ttl, nil
}
