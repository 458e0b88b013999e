// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package params

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return mr, store
}

func TestStores_Contract(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"redis": func(t *testing.T) Store {
			_, s := setupMiniRedis(t)
			return s
		},
	}
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			_, err := s.Get(ctx, KeyHost)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, KeyHost, "gaming-pc.local"))
			v, err := s.Get(ctx, KeyHost)
			require.NoError(t, err)
			assert.Equal(t, "gaming-pc.local", v)

			require.NoError(t, s.Set(ctx, KeyHost, "10.0.0.5"))
			v, err = s.Get(ctx, KeyHost)
			require.NoError(t, err)
			assert.Equal(t, "10.0.0.5", v)

			require.NoError(t, s.Delete(ctx, KeyHost))
			_, err = s.Get(ctx, KeyHost)
			assert.ErrorIs(t, err, ErrNotFound)
			require.NoError(t, s.Delete(ctx, "missing"))
		})
	}
}

func TestRedisStore_Namespaced(t *testing.T) {
	mr, s := setupMiniRedis(t)
	require.NoError(t, s.Set(context.Background(), KeyHost, "gaming-pc.local"))

	got, err := mr.Get("limelight:params:host")
	require.NoError(t, err)
	assert.Equal(t, "gaming-pc.local", got)
	assert.False(t, mr.Exists("host"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr, s := setupMiniRedis(t)
	mr.Close()

	_, err := s.Get(context.Background(), KeyHost)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Error(t, s.HealthCheck(context.Background()))
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr}, zerolog.Nop())
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &memoryStore{}, s)

	mr := miniredis.RunT(t)
	s, err = Open(ctx, Config{Backend: BackendRedis, RedisAddr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Config{Backend: "etcd"}, zerolog.Nop())
	assert.Error(t, err)
}
