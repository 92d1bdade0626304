package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultRateLimitPrefix namespaces rate limit counters
const DefaultRateLimitPrefix = "pcbot:ratelimit:"

// RedisRateLimiter is a fixed-window request counter shared by every bot
// replica that points at the same Redis.
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisRateLimiter allows limit requests per key within window
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		prefix: DefaultRateLimitPrefix,
		limit:  limit,
		window: window,
	}
}

// OpenRedisRateLimiter connects to redisURL and pings the server
func OpenRedisRateLimiter(ctx context.Context, redisURL string, limit int, window time.Duration) (*RedisRateLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisRateLimiter(client, limit, window), nil
}

func (l *RedisRateLimiter) key(key string) string {
	return l.prefix + key
}

// Allow increments the counter for key. The window starts at the first hit,
// and a counter found without an expiry gets one again.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := l.key(key)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		ttl = pipe.TTL(ctx, k)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to set rate limit window: %w", err)
		}
		remaining = l.window
	}

	if incr.Val() <= int64(l.limit) {
		return true, 0, nil
	}
	return false, remaining, nil
}

// Close releases the Redis connection
func (l *RedisRateLimiter) Close() error {
	return l.client.Close()
}
