package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	catalogVersionKey = "catalog:version"
	catalogListPrefix = "catalog:products"
)

// Cache keeps the product list in Redis under a versioned key. Writes bump
// the version so stale entries are never read again and expire on their own.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Products returns the cached list or populates it using loader. Concurrent
// misses for the same version share one load.
func (c *Cache) Products(ctx context.Context, loader func(context.Context) ([]Product, error)) ([]Product, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	version, err := c.version(ctx)
	if err != nil {
		return loader(ctx)
	}
	key := fmt.Sprintf("%s:%d", catalogListPrefix, version)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached []Product
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		products, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(products); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttl).Err()
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]Product), nil
}

// Invalidate bumps the catalog version.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, catalogVersionKey).Err()
}

func (c *Cache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, catalogVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return ver, err
}
