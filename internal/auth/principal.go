// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package auth resolves dashboard callers: API token checks, principals and
// the caller sessions that back the dashboard_session cookie.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Principal represents the authenticated identity of a caller.
type Principal struct {
	// ID is either the configured user or a hash of the API token.
	ID string

	// User is the human-readable username if configured (e.g., "dad").
	User string
}

// NewPrincipal derives a Principal from the presented token and optional user.
// The token itself is never retained.
func NewPrincipal(token string, user string) *Principal {
	id := user
	if id == "" {
		// "t_" prefix keeps derived ids apart from configured usernames
		hash := sha256.Sum256([]byte(token))
		id = "t_" + hex.EncodeToString(hash[:])[:16]
	}
	return &Principal{ID: id, User: user}
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller attached by the auth middleware.
func PrincipalFromContext(ctx context.Context) *Principal {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
