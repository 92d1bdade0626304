package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/purochile/pcbot/internal/ports"
)

// DefaultRedisPrefix namespaces collection keys
const DefaultRedisPrefix = "pcbot:collection:"

// RedisBackend stores each collection under one string key
type RedisBackend struct {
	client *redis.Client
	prefix string
}

var _ ports.RecordBackend = (*RedisBackend)(nil)

// OpenRedis parses redisURL, connects and pings the server
func OpenRedis(ctx context.Context, redisURL, prefix string) (*RedisBackend, error) {
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
	return NewRedisBackend(client, prefix), nil
}

// NewRedisBackend wraps a client. An empty prefix uses DefaultRedisPrefix.
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) key(collection string) string {
	return b.prefix + collection
}

// Read returns the stored value, or nil if the key does not exist
func (b *RedisBackend) Read(ctx context.Context, collection string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key(collection)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}
	return data, nil
}

// Write replaces the value with a single SET
func (b *RedisBackend) Write(ctx context.Context, collection string, data []byte) error {
	if err := b.client.Set(ctx, b.key(collection), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", collection, err)
	}
	return nil
}

// Close closes the client
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
