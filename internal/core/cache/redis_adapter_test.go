package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdapter(t *testing.T) (*RedisAdapter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return adapter, mr
}

func TestRedisAdapter_GetSet(t *testing.T) {
	adapter, mr := newAdapter(t)
	ctx := context.Background()

	err := adapter.Set(ctx, "promotions:catalog", []byte("payload"), 10*time.Second)
	assert.NoError(t, err)

	got, err := adapter.Get(ctx, "promotions:catalog")
	assert.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	// Keys are namespaced so they cannot collide with geo or counter keys.
	assert.True(t, mr.Exists("cache:promotions:catalog"))
}

func TestRedisAdapter_GetMiss(t *testing.T) {
	adapter, _ := newAdapter(t)

	_, err := adapter.Get(context.Background(), "non_existent_key")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisAdapter_Invalidate(t *testing.T) {
	adapter, _ := newAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "k", []byte("v"), 0))
	assert.NoError(t, adapter.Invalidate(ctx, "k"))

	_, err := adapter.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisAdapter_TTL(t *testing.T) {
	adapter, mr := newAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "ttl_test", []byte("expires_soon"), time.Second))

	_, err := adapter.Get(ctx, "ttl_test")
	assert.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = adapter.Get(ctx, "ttl_test")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisAdapter_Ping(t *testing.T) {
	adapter, _ := newAdapter(t)
	assert.NoError(t, adapter.Ping(context.Background()))
}

func TestRedisAdapter_SharedClientNotClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	adapter := NewRedisAdapterFromClient(client)
	require.NoError(t, adapter.Close())

	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestRedisAdapter_InvalidURL(t *testing.T) {
	_, err := NewRedisAdapter("invalid://url")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}

func TestJSONHelpers(t *testing.T) {
	adapter, mr := newAdapter(t)
	ctx := context.Background()

	type entry struct {
		ID    string `json:"id"`
		Count int    `json:"count"`
	}
	require.NoError(t, SetJSON(ctx, adapter, "entry", entry{ID: "a", Count: 2}, 0))

	got, err := GetJSON[entry](ctx, adapter, "entry")
	require.NoError(t, err)
	assert.Equal(t, entry{ID: "a", Count: 2}, got)

	_, err = GetJSON[entry](ctx, adapter, "absent")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, mr.Set("cache:broken", "{not json"))
	_, err = GetJSON[entry](ctx, adapter, "broken")
	assert.ErrorIs(t, err, ErrCorrupt)
}
