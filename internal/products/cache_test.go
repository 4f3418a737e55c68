package products

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheServesRepeatedReads(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)
	repo := newMemoryRepo()
	svc := NewService(repo, ServiceConfig{Cache: cache})
	seed(t, svc, "P1", 3)

	for i := 0; i < 3; i++ {
		list, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
	}
	assert.Equal(t, 1, repo.lists)
}

func TestCacheInvalidatedByWrites(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	repo := newMemoryRepo()
	svc := NewService(repo, ServiceConfig{Cache: cache})
	seed(t, svc, "P1", 3)

	_, err := svc.List(ctx)
	require.NoError(t, err)

	_, err = svc.ReduceQuantity(ctx, "P1", 2)
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].Quantity)
	assert.Equal(t, 2, repo.lists)

	ver, err := mr.Get(catalogVersionKey)
	require.NoError(t, err)
	assert.Equal(t, "2", ver)
}

func TestCacheFallsBackWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	repo := newMemoryRepo()
	svc := NewService(repo, ServiceConfig{Cache: cache})
	seed(t, svc, "P1", 3)
	mr.Close()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestNilCacheLoadsDirectly(t *testing.T) {
	var cache *Cache
	calls := 0
	list, err := cache.Products(context.Background(), func(context.Context) ([]Product, error) {
		calls++
		return []Product{{ProductID: "X"}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, calls)
	require.NoError(t, cache.Invalidate(context.Background()))
}
