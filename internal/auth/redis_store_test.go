// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis creates a test Redis server using miniredis.
func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store := newRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), zerolog.Nop())
	t.Cleanup(func() { _ = store.Close() })
	return mr, store
}

func TestRedisStore_CreateGetDelete(t *testing.T) {
	mr, store := setupMiniRedis(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, NewPrincipal("tok", "dad"), time.Hour)
	require.NoError(t, err)
	assert.True(t, mr.Exists(redisKeyPrefix+sess.ID))
	assert.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+sess.ID))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.PrincipalID, got.PrincipalID)
	assert.True(t, sess.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	mr, store := setupMiniRedis(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, NewPrincipal("tok", ""), time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_CorruptEntryIsDiscarded(t *testing.T) {
	mr, store := setupMiniRedis(t)
	require.NoError(t, mr.Set(redisKeyPrefix+"bad", "{not json"))

	_, err := store.Get(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.False(t, mr.Exists(redisKeyPrefix+"bad"))
}

func TestRedisStore_EmptyID(t *testing.T) {
	_, store := setupMiniRedis(t)
	_, err := store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, store := setupMiniRedis(t)
	mr.Close()

	_, err := store.Get(context.Background(), "anything")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestNewRedisStore_PingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewRedisStore_Connects(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()
	assert.NoError(t, store.HealthCheck(context.Background()))
}
