package rediscache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ecommerce-metrics/internal/infrastructure/rediscache"
)

type item struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
}

func newTestCache(t *testing.T) (*rediscache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return rediscache.NewCache(client, time.Minute, nil), mr
}

func TestFetchJSON_CacheaHastaBump(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return []item{{ProductID: calls, Name: "Remera"}}, nil
	}

	fetch := func() []item {
		key, err := cache.BuildKey(ctx, "analytics", "top", "30", "10")
		require.NoError(t, err)
		var out []item
		require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
		return out
	}

	first := fetch()
	second := fetch()
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	require.NoError(t, cache.Bump(ctx))
	third := fetch()
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, third[0].ProductID)
}

func TestFetchJSON_RespetaTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return item{ProductID: 1}, nil
	}

	var out item
	require.NoError(t, cache.FetchJSON(ctx, "k", &out, loader))
	mr.FastForward(2 * time.Minute)
	require.NoError(t, cache.FetchJSON(ctx, "k", &out, loader))
	assert.Equal(t, 2, calls)
}

func TestFetchJSON_ErrorDelLoaderNoSeCachea(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	var out item
	err := cache.FetchJSON(ctx, "k", &out, func(context.Context) (any, error) {
		return nil, errors.New("webservice caído")
	})
	require.Error(t, err)
	assert.False(t, mr.Exists("k"))
}

func TestFetchJSON_SinRedisEjecutaLoader(t *testing.T) {
	var cache *rediscache.Cache
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "analytics", "dead")
	require.NoError(t, err)
	assert.Equal(t, "analytics:dead", key)

	var out item
	require.NoError(t, cache.FetchJSON(ctx, key, &out, func(context.Context) (any, error) {
		return item{ProductID: 5, Name: "Buzo"}, nil
	}))
	assert.Equal(t, item{ProductID: 5, Name: "Buzo"}, out)
	assert.NoError(t, cache.Bump(ctx))
}

func TestFetchJSON_RedisCaidoEjecutaLoader(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	mr.SetError("LOADING redis no disponible")

	calls := 0
	var out item
	require.NoError(t, cache.FetchJSON(ctx, "k", &out, func(context.Context) (any, error) {
		calls++
		return item{ProductID: 9, Name: "Campera"}, nil
	}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, item{ProductID: 9, Name: "Campera"}, out)

	_, err := cache.BuildKey(ctx, "analytics", "top")
	assert.Error(t, err)

	mr.SetError("")
	assert.False(t, mr.Exists("k"))
}
