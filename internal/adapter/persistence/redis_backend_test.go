package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisBackend_KeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	assert.Equal(t, "pcbot:collection:warnings", NewRedisBackend(client, "").key("warnings"))
	assert.Equal(t, "test:warnings", NewRedisBackend(client, "test:").key("warnings"))
}

func TestRedisBackend_ReadWrite(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredis(t)
	backend := NewRedisBackend(client, "")

	data, err := backend.Read(ctx, "warnings")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, backend.Write(ctx, "warnings", []byte(`[{"id":1}]`)))
	data, err = backend.Read(ctx, "warnings")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(data))

	stored, err := mr.Get("pcbot:collection:warnings")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, stored)

	require.NoError(t, backend.Write(ctx, "warnings", []byte(`[]`)))
	data, err = backend.Read(ctx, "warnings")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestRedisBackend_ReadFailure(t *testing.T) {
	mr, client := newMiniredis(t)
	backend := NewRedisBackend(client, "")
	mr.SetError("server unavailable")

	_, err := backend.Read(context.Background(), "warnings")
	assert.ErrorContains(t, err, "failed to read collection warnings")
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	backend, err := OpenRedis(context.Background(), "redis://"+mr.Addr(), "test:")
	require.NoError(t, err)
	defer backend.Close()
	assert.Equal(t, "test:ratings", backend.key("ratings"))

	_, err = OpenRedis(context.Background(), "not a url", "")
	assert.Error(t, err)
}

func TestRedisRateLimiter_Key(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	limiter := NewRedisRateLimiter(client, 5, 0)
	assert.Equal(t, "pcbot:ratelimit:api:ip:10.0.0.1", limiter.key("api:ip:10.0.0.1"))
}

func TestRedisRateLimiter_Window(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredis(t)
	limiter := NewRedisRateLimiter(client, 2, time.Minute)

	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(ctx, "api:ip:10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "api:ip:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Minute)

	allowed, _, err = limiter.Allow(ctx, "api:ip:10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed, "other clients keep their own budget")

	mr.FastForward(time.Minute + time.Second)
	allowed, _, err = limiter.Allow(ctx, "api:ip:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed, "budget resets after the window")

	require.NoError(t, limiter.Close())
	_, _, err = limiter.Allow(ctx, "api:ip:10.0.0.1")
	assert.Error(t, err)
}

func TestRedisRateLimiter_RestoresMissingExpiry(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredis(t)
	limiter := NewRedisRateLimiter(client, 2, time.Minute)

	// a counter left over limit without a TTL
	require.NoError(t, mr.Set("pcbot:ratelimit:api:ip:10.0.0.1", "7"))

	allowed, retryAfter, err := limiter.Allow(ctx, "api:ip:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, retryAfter)
	assert.Equal(t, time.Minute, mr.TTL("pcbot:ratelimit:api:ip:10.0.0.1"))

	mr.FastForward(time.Minute + time.Second)
	allowed, _, err = limiter.Allow(ctx, "api:ip:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_Failure(t *testing.T) {
	mr, client := newMiniredis(t)
	limiter := NewRedisRateLimiter(client, 2, time.Minute)
	mr.SetError("server unavailable")

	_, _, err := limiter.Allow(context.Background(), "api:ip:10.0.0.1")
	assert.ErrorContains(t, err, "failed to increment rate limit")
}
