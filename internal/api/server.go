// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api is the dashboard's HTTP boundary. It authenticates callers and
// turns each gateway-backed request into exactly one bounded Gateway call.
package api

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ManuGH/dashboard/internal/audit"
	"github.com/ManuGH/dashboard/internal/auth"
	"github.com/ManuGH/dashboard/internal/gateway"
	"github.com/ManuGH/dashboard/internal/health"
	"github.com/ManuGH/dashboard/internal/ratelimit"
	"github.com/ManuGH/dashboard/internal/resilience"
	"github.com/ManuGH/dashboard/internal/version"
)

// GatewayCaller is the part of gateway.Client the HTTP layer depends on.
type GatewayCaller interface {
	ListCronJobs(ctx context.Context, budget time.Duration) (gateway.CronList, error)
	SessionConfig() (gateway.ChatSessionConfig, error)
}

// Config holds the hot-reloadable HTTP settings.
type Config struct {
	APIToken      string
	User          string
	SessionTTL    time.Duration
	GatewayBudget time.Duration

	// Static after New.
	GlobalPerMinute int
	TracingService  string
}

// Deps are the collaborators of a Server. Breaker and Limiter fall back to
// defaults when nil. Audit and Health are optional.
type Deps struct {
	Sessions auth.SessionStore
	Gateway  GatewayCaller
	Breaker  *resilience.CircuitBreaker
	Limiter  *ratelimit.Limiter
	Audit    *audit.Logger
	Health   *health.Manager
}

// Server serves the dashboard API.
type Server struct {
	cfg      atomic.Pointer[Config]
	sessions auth.SessionStore
	gateway  GatewayCaller
	breaker  *resilience.CircuitBreaker
	limiter  *ratelimit.Limiter
	audit    *audit.Logger
	health   *health.Manager
}

// New creates a Server.
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		sessions: deps.Sessions,
		gateway:  deps.Gateway,
		breaker:  deps.Breaker,
		limiter:  deps.Limiter,
		audit:    deps.Audit,
		health:   deps.Health,
	}
	if s.breaker == nil {
		s.breaker = NewGatewayBreaker(0, 0)
	}
	if s.limiter == nil {
		s.limiter = ratelimit.New("gateway", ratelimit.DefaultConfig())
	}
	if s.health == nil {
		s.health = health.NewManager(version.Version)
	}
	s.UpdateConfig(cfg)
	return s
}

// NewGatewayBreaker builds the breaker guarding Gateway calls. Only transport
// and timeout failures count towards tripping it.
func NewGatewayBreaker(threshold int, reset time.Duration) *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker("gateway", threshold, reset,
		resilience.WithFailureFilter(breakerCounts),
	)
}

// UpdateConfig swaps the reloadable settings. Requests in flight keep the
// snapshot they started with.
func (s *Server) UpdateConfig(cfg Config) {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.GatewayBudget <= 0 {
		cfg.GatewayBudget = gateway.DefaultBudget
	}
	s.cfg.Store(&cfg)
}

// GetConfig returns the current snapshot.
func (s *Server) GetConfig() Config {
	return *s.cfg.Load()
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.routes()
}
