// Package ratelimit counts requests per key in fixed Redis windows.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter is the subset of *redis.Client the limiter uses.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

type Limiter struct {
	rdb    Counter
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

func New(rdb Counter, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		rdb:    rdb,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// SetClock replaces the time source.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}

// Allow counts one hit for key in the current window and reports whether
// the hit is within the limit. The window key expires with the window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	windowKey := l.Key(key)

	count, err := l.rdb.Incr(ctx, windowKey).Result()
	if err != nil {
		return false, fmt.Errorf("incrementing %s: %w", windowKey, err)
	}

	if count == 1 {
		if err := l.rdb.Expire(ctx, windowKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("expiring %s: %w", windowKey, err)
		}
	}

	return count <= l.limit, nil
}

// Key is the Redis key holding key's count in the current window.
func (l *Limiter) Key(key string) string {
	start := l.now().Truncate(l.window).Unix()
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, start)
}
