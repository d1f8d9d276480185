// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemoryStore_CreateGetDelete(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()
	ctx := context.Background()

	sess, err := s.Create(ctx, NewPrincipal("tok", "dad"), time.Hour)
	require.NoError(t, err)
	assert.Len(t, sess.ID, 64)
	assert.Equal(t, "dad", sess.PrincipalID)

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
	assert.Equal(t, "dad", got.Principal().ID)

	require.NoError(t, s.Delete(ctx, sess.ID))
	_, err = s.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, s.Delete(ctx, sess.ID), "deleting twice is fine")
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()
	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	sess, err := s.Create(ctx, NewPrincipal("tok", ""), time.Minute)
	require.NoError(t, err)

	now = now.Add(59 * time.Second)
	_, err = s.Get(ctx, sess.ID)
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = s.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.deleteExpired())
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_RejectsInvalidInput(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()

	_, err := s.Create(context.Background(), nil, time.Hour)
	assert.Error(t, err)
	_, err = s.Create(context.Background(), NewPrincipal("tok", ""), 0)
	assert.Error(t, err)
}

func TestMemoryStore_JanitorStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewMemoryStore(10 * time.Millisecond)
	_, err := s.Create(context.Background(), NewPrincipal("tok", ""), 20*time.Millisecond)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return s.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestNewSessionIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := NewSessionID()
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
