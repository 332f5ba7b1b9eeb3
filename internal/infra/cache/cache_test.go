package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client), mr
}

func TestRememberLoadsOnce(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	calls := 0
	load := func() ([]item, error) {
		calls++
		return []item{{ID: 1, Name: "Scooter"}}, nil
	}

	first, err := Remember(ctx, c, "vehicle_types", time.Hour, load)
	require.NoError(t, err)
	second, err := Remember(ctx, c, "vehicle_types", time.Hour, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("rmb:vehicle_types"))
	assert.Equal(t, time.Hour, mr.TTL("rmb:vehicle_types"))

	mr.FastForward(time.Hour + time.Second)
	_, err = Remember(ctx, c, "vehicle_types", time.Hour, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	c, mr := setupCache(t)
	boom := errors.New("db down")

	_, err := Remember(context.Background(), c, "shop_info_list", time.Hour, func() ([]item, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("rmb:shop_info_list"))
}

func TestNilCacheAlwaysLoads(t *testing.T) {
	var c *Cache
	calls := 0
	for i := 0; i < 3; i++ {
		_, err := Remember(context.Background(), c, "k", time.Minute, func() (int, error) {
			calls++
			return calls, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
	assert.Error(t, c.Ping(context.Background()))
	c.Delete(context.Background(), "k")
}

func TestDelete(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("rmb:subscriptions_plans_list", "[]"))

	c.Delete(ctx, "subscriptions_plans_list")
	assert.False(t, mr.Exists("rmb:subscriptions_plans_list"))
}

func TestUnavailableRedisFallsBackToLoad(t *testing.T) {
	c, mr := setupCache(t)
	mr.Close()

	got, err := Remember(context.Background(), c, "vehicle_types", time.Hour, func() (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}
