package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usermgmt/admin-console/internal/core/ports"
)

func setupStore(t *testing.T, prefix string) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client, prefix), mr
}

func TestConnect_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = Connect(context.Background(), Config{Addr: addr})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestStore_SetGetRemove(t *testing.T) {
	store, mr := setupStore(t, "console:")
	ctx := context.Background()

	_, err := store.Get(ctx, "token")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "token", "abc.def.ghi"))

	got, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", got)

	raw, err := mr.Get("console:token")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", raw)
	assert.False(t, mr.Exists("token"), "keys must be namespaced")

	require.NoError(t, store.Remove(ctx, "token"))
	require.NoError(t, store.Remove(ctx, "token"))
	_, err = store.Get(ctx, "token")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestStore_NoExpiry(t *testing.T) {
	store, mr := setupStore(t, "")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", `[]`))
	assert.Zero(t, mr.TTL("users"))
}

func TestStore_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	store := NewStore(client, "")
	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}

func TestStore_PrefixIsolation(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	a := NewStore(client, "a:")
	b := NewStore(client, "b:")
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, "token", "for-a"))
	_, err = b.Get(ctx, "token")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}
