package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "apibench:users:list:asc", CacheKey("users", "list", "asc"))
}

func TestCacheData_RoundTripAndMiss(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	key := CacheKey("thing")

	miss, err := GetCacheData[cachedThing](ctx, rdb, key)
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, SetCacheData(ctx, rdb, key, &cachedThing{Name: "a", Items: []string{"x"}}, time.Minute))
	assert.True(t, mr.Exists(key))

	hit, err := GetCacheData[cachedThing](ctx, rdb, key)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "a", hit.Name)

	mr.FastForward(2 * time.Minute)
	expired, err := GetCacheData[cachedThing](ctx, rdb, key)
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestCacheData_CorruptValue(t *testing.T) {
	mr, rdb := newTestRedis(t)
	key := CacheKey("corrupt")
	require.NoError(t, mr.Set(key, "{not json"))

	data, err := GetCacheData[cachedThing](context.Background(), rdb, key)
	assert.Error(t, err)
	assert.Nil(t, data)
}

func TestDeleteCacheData(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("k1", "1"))
	require.NoError(t, mr.Set("k2", "2"))

	require.NoError(t, DeleteCacheData(ctx, rdb))
	require.NoError(t, DeleteCacheData(ctx, rdb, "k1", "k2"))
	assert.False(t, mr.Exists("k1"))
	assert.False(t, mr.Exists("k2"))
}
