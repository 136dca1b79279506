package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// DefaultOccupancyTTL bounds staleness of cached counts; every booking
// mutation also invalidates the affected trips explicitly.
const DefaultOccupancyTTL = 30 * time.Second

// OccupancyCache caches the held-seat count per trip, backing the seat
// map endpoint and the occupancy report between invalidations.
type OccupancyCache struct {
	client *redis.Client
}

func NewOccupancyCache(client *redis.Client) *OccupancyCache {
	return &OccupancyCache{client: client}
}

// GetHeldCount returns the cached held-seat count for a trip.
func (c *OccupancyCache) GetHeldCount(ctx context.Context, tripID int64) (int, error) {
	val, err := c.client.Get(ctx, c.heldCountKey(tripID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("cache get: %w", err)
	}
	return val, nil
}

// SetHeldCount stores the held-seat count for a trip.
func (c *OccupancyCache) SetHeldCount(ctx context.Context, tripID int64, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.heldCountKey(tripID), count, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached count for a trip.
func (c *OccupancyCache) Invalidate(ctx context.Context, tripID int64) error {
	if err := c.client.Del(ctx, c.heldCountKey(tripID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// InvalidateAll drops the cached counts for several trips.
func (c *OccupancyCache) InvalidateAll(ctx context.Context, tripIDs []int64) error {
	if len(tripIDs) == 0 {
		return nil
	}
	keys := make([]string, len(tripIDs))
	for i, id := range tripIDs {
		keys[i] = c.heldCountKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func (c *OccupancyCache) heldCountKey(tripID int64) string {
	return fmt.Sprintf("trips:held:%d", tripID)
}
