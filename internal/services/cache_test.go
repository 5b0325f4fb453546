package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisCache(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisCache(client)
	ctx := context.Background()

	var got map[string]int
	hit, err := cache.Get(ctx, "moods:u1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "moods:u1", map[string]int{"happy": 2}, time.Minute))
	assert.True(t, mr.Exists("cache:moods:u1"))

	hit, err = cache.Get(ctx, "moods:u1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, got["happy"])

	mr.FastForward(2 * time.Minute)
	hit, err = cache.Get(ctx, "moods:u1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "moods:u1", map[string]int{}, time.Minute))
	require.NoError(t, cache.Delete(ctx, "moods:u1"))
	assert.False(t, mr.Exists("cache:moods:u1"))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "moods:abc", CacheKey("moods", "abc"))
}
