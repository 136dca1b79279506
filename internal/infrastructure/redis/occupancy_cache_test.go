package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emirhangull/Train-DB-APP/internal/config"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := NewClient(&config.RedisConfig{Host: "localhost", Port: "6379"})
	if err := Ping(context.Background(), client); err != nil {
		client.Close()
		t.Skip("redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestOccupancyCache_HeldCount(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewOccupancyCache(client)
	ctx := context.Background()
	tripID := int64(90001)

	t.Run("miss returns ErrCacheMiss", func(t *testing.T) {
		cache.Invalidate(ctx, tripID)
		_, err := cache.GetHeldCount(ctx, tripID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("stored count is returned", func(t *testing.T) {
		err := cache.SetHeldCount(ctx, tripID, 42, DefaultOccupancyTTL)
		require.NoError(t, err)

		count, err := cache.GetHeldCount(ctx, tripID)
		require.NoError(t, err)
		assert.Equal(t, 42, count)
	})

	t.Run("invalidate drops the entry", func(t *testing.T) {
		err := cache.SetHeldCount(ctx, tripID, 17, DefaultOccupancyTTL)
		require.NoError(t, err)

		err = cache.Invalidate(ctx, tripID)
		require.NoError(t, err)

		_, err = cache.GetHeldCount(ctx, tripID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}

func TestOccupancyCache_InvalidateAll(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewOccupancyCache(client)
	ctx := context.Background()

	trips := []int64{90010, 90011, 90012}
	for _, id := range trips {
		require.NoError(t, cache.SetHeldCount(ctx, id, 5, DefaultOccupancyTTL))
	}

	require.NoError(t, cache.InvalidateAll(ctx, trips))

	for _, id := range trips {
		_, err := cache.GetHeldCount(ctx, id)
		assert.ErrorIs(t, err, ErrCacheMiss)
	}

	// Empty input is a no-op.
	assert.NoError(t, cache.InvalidateAll(ctx, nil))
}

func TestOccupancyCache_TTL(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewOccupancyCache(client)
	ctx := context.Background()
	tripID := int64(90020)

	err := cache.SetHeldCount(ctx, tripID, 100, 100*time.Millisecond)
	require.NoError(t, err)

	count, err := cache.GetHeldCount(ctx, tripID)
	require.NoError(t, err)
	assert.Equal(t, 100, count)

	time.Sleep(150 * time.Millisecond)
	_, err = cache.GetHeldCount(ctx, tripID)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
