package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gutp/discux/internal/ports"
	"github.com/gutp/discux/internal/testutil"
)

func TestKVStore_SetAndGet(t *testing.T) {
	tr := testutil.SetupTestRedis(t)
	store := NewKVStore(tr.Client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "discux_sid:abc", "user-123", time.Hour))

	got, err := store.Get(ctx, "discux_sid:abc")
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)

	ttl, err := store.TTL(ctx, "discux_sid:abc")
	require.NoError(t, err)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 2)
}

func TestKVStore_GetNonExistent(t *testing.T) {
	tr := testutil.SetupTestRedis(t)
	store := NewKVStore(tr.Client)

	_, err := store.Get(context.Background(), "non-existent")
	require.ErrorIs(t, err, ports.ErrKeyNotFound)

	_, err = store.Get(context.Background(), "")
	require.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestKVStore_Expiry(t *testing.T) {
	tr := testutil.SetupTestRedis(t)
	store := NewKVStore(tr.Client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Second))
	tr.FastForward(2 * time.Second)

	_, err := store.Get(ctx, "k")
	require.ErrorIs(t, err, ports.ErrKeyNotFound)

	_, err = store.TTL(ctx, "k")
	require.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestKVStore_SetRejectsInvalidInput(t *testing.T) {
	tr := testutil.SetupTestRedis(t)
	store := NewKVStore(tr.Client)

	require.Error(t, store.Set(context.Background(), "", "v", time.Minute))
	require.Error(t, store.Set(context.Background(), "k", "v", 0))
}

func TestKVStore_DeleteIsIdempotent(t *testing.T) {
	tr := testutil.SetupTestRedis(t)
	store := NewKVStore(tr.Client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, ""))

	_, err := store.Get(ctx, "k")
	require.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestKVStore_Expire(t *testing.T) {
	tr := testutil.SetupTestRedis(t)
	store := NewKVStore(tr.Client)
	ctx := context.Background()

	ok, err := store.Expire(ctx, "missing", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", "v", time.Hour))
	ok, err = store.Expire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ttl, err := store.TTL(ctx, "k")
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Minute)
}
