package cartstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisBackend on it
func setupTestRedis(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	backend := NewRedisBackend(client, 15*time.Minute)
	t.Cleanup(func() { client.Close() })
	return backend, mr
}

func TestRedisGet_Miss(t *testing.T) {
	backend, _ := setupTestRedis(t)

	data, err := backend.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Nil(t, data)
}

func TestRedisSetGet(t *testing.T) {
	backend, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "stokcer_cart:s1", []byte(`{"version":2}`)))

	stored, err := mr.Get("stokcer_cart:s1")
	require.NoError(t, err)
	assert.Equal(t, `{"version":2}`, stored)

	data, err := backend.Get(ctx, "stokcer_cart:s1")
	require.NoError(t, err)
	assert.Equal(t, `{"version":2}`, string(data))
}

func TestRedisSet_WithTTL(t *testing.T) {
	backend, mr := setupTestRedis(t)

	require.NoError(t, backend.Set(context.Background(), "k", []byte("v")))

	ttl := mr.TTL("k")
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl < 20*time.Minute, "TTL should be base + max jitter")
}

func TestRedisDelete(t *testing.T) {
	backend, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("k", "v"))
	require.NoError(t, backend.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))

	// deleting a missing key is not an error
	assert.NoError(t, backend.Delete(ctx, "k"))
}

func TestRedisGet_ServerDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	backend := NewRedisBackend(client, time.Minute)

	_, err := backend.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}
