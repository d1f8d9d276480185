// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("auth: session not found or expired")

// Session is an authenticated caller session.
type Session struct {
	ID          string    `json:"id"`
	PrincipalID string    `json:"principal_id"`
	User        string    `json:"user,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Principal rebuilds the caller identity stored with the session.
func (s Session) Principal() *Principal {
	return &Principal{ID: s.PrincipalID, User: s.User}
}

// SessionStore persists caller sessions.
type SessionStore interface {
	Create(ctx context.Context, p *Principal, ttl time.Duration) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewSessionID returns 32 random bytes, hex encoded.
func NewSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func newSession(p *Principal, ttl time.Duration, now time.Time) (Session, error) {
	if p == nil || p.ID == "" {
		return Session{}, errors.New("auth: principal is required")
	}
	if ttl <= 0 {
		return Session{}, fmt.Errorf("auth: invalid session ttl %s", ttl)
	}
	id, err := NewSessionID()
	if err != nil {
		return Session{}, err
	}
	return Session{
		ID:          id,
		PrincipalID: p.ID,
		User:        p.User,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}, nil
}
