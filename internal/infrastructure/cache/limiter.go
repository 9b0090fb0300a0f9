package cache

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "ratelimit:reports:"

// Decision is the result of one rate limit check
type Decision struct {
	Allowed bool
	Count   int64
	Limit   int
	ResetIn time.Duration
}

// Limiter counts requests per key in fixed windows
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter keeps counters in Redis so limits hold across replicas
type RedisLimiter struct {
	rdb    *goredis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a fixed-window limiter backed by Redis
func NewRedisLimiter(rdb *goredis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow increments the counter for key and reports whether the request fits
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l.limit <= 0 {
		return Decision{Allowed: true, Limit: l.limit}, nil
	}

	k := keyPrefix + key
	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("redis incr failed: %w", err)
	}

	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("redis ttl failed: %w", err)
	}
	// A counter without expiry would block the key forever.
	if count == 1 || ttl < 0 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("redis expire failed: %w", err)
		}
		ttl = l.window
	}

	return Decision{
		Allowed: count <= int64(l.limit),
		Count:   count,
		Limit:   l.limit,
		ResetIn: ttl,
	}, nil
}

// MemoryLimiter keeps counters in process memory
type MemoryLimiter struct {
	store  *MemoryStore
	limit  int
	window time.Duration
}

// NewMemoryLimiter creates a fixed-window limiter backed by store
func NewMemoryLimiter(store *MemoryStore, limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{store: store, limit: limit, window: window}
}

// Allow increments the counter for key and reports whether the request fits
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	if l.limit <= 0 {
		return Decision{Allowed: true, Limit: l.limit}, nil
	}

	count, resetIn := l.store.Incr(keyPrefix+key, l.window)
	return Decision{
		Allowed: count <= int64(l.limit),
		Count:   count,
		Limit:   l.limit,
		ResetIn: resetIn,
	}, nil
}

// FallbackLimiter asks primary first and falls back when it errors
type FallbackLimiter struct {
	primary  Limiter
	fallback Limiter
	logger   *zap.Logger
}

// NewFallbackLimiter chains two limiters
func NewFallbackLimiter(primary, fallback Limiter, logger *zap.Logger) *FallbackLimiter {
	return &FallbackLimiter{primary: primary, fallback: fallback, logger: logger}
}

// Allow implements Limiter
func (l *FallbackLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	d, err := l.primary.Allow(ctx, key)
	if err == nil {
		return d, nil
	}
	if l.logger != nil {
		l.logger.Warn("⚠️ Primary rate limiter failed, using in-memory counters",
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return l.fallback.Allow(ctx, key)
}
