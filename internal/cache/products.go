package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// ProductCache caches hydrated product views in Redis. It sits in front of
// the batch-lookup path used by cart/favorites hydration, which is by far
// the hottest read. Entries expire after a TTL and are invalidated when a
// review changes the product's rating.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewProductCache creates a product cache backed by Redis.
func NewProductCache(addr, password string, db int, ttl time.Duration) (*ProductCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &ProductCache{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection
func (c *ProductCache) Close() error {
	return c.rdb.Close()
}

func productKey(id string) string {
	return "product:" + id
}

// GetViews returns cached views keyed by product ID. IDs without an entry
// are simply absent from the map.
func (c *ProductCache) GetViews(ctx context.Context, ids []string) (map[string]models.ProductView, error) {
	result := make(map[string]models.ProductView)
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}

	values, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("cache mget failed: %w", err)
	}

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var view models.ProductView
		if err := json.Unmarshal([]byte(raw), &view); err != nil {
			// A corrupt entry behaves like a miss.
			continue
		}
		result[ids[i]] = view
	}
	return result, nil
}

// SetViews stores views with the configured TTL.
func (c *ProductCache) SetViews(ctx context.Context, views []models.ProductView) error {
	if len(views) == 0 {
		return nil
	}

	pipe := c.rdb.Pipeline()
	for _, view := range views {
		raw, err := json.Marshal(view)
		if err != nil {
			return fmt.Errorf("cache marshal failed: %w", err)
		}
		pipe.Set(ctx, productKey(view.ID), raw, c.ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate drops a product's cached view.
func (c *ProductCache) Invalidate(ctx context.Context, productID string) error {
	return c.rdb.Del(ctx, productKey(productID)).Err()
}
