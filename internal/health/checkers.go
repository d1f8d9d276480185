// SPDX-License-Identifier: MIT

package health

import (
	"context"

	"github.com/ManuGH/dashboard/internal/resilience"
)

// PingChecker reports unhealthy when ping fails. Used for backing stores.
type PingChecker struct {
	name string
	ping func(ctx context.Context) error
}

// NewPingChecker creates a checker around ping.
func NewPingChecker(name string, ping func(ctx context.Context) error) *PingChecker {
	return &PingChecker{name: name, ping: ping}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	if err := c.ping(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}

// GatewayChecker reports degraded while no Gateway endpoint is configured.
// It never opens a connection.
type GatewayChecker struct {
	configured func() bool
}

// NewGatewayChecker creates a checker reading the live configuration through configured.
func NewGatewayChecker(configured func() bool) *GatewayChecker {
	return &GatewayChecker{configured: configured}
}

func (c *GatewayChecker) Name() string { return "gateway_config" }

func (c *GatewayChecker) Check(context.Context) CheckResult {
	if !c.configured() {
		return CheckResult{Status: StatusDegraded, Message: "gateway url not configured"}
	}
	return CheckResult{Status: StatusHealthy}
}

// BreakerState is satisfied by resilience.CircuitBreaker.
type BreakerState interface {
	State() resilience.State
}

// BreakerChecker reports degraded while the breaker is not closed.
type BreakerChecker struct {
	name    string
	breaker BreakerState
}

// NewBreakerChecker creates a checker for breaker.
func NewBreakerChecker(name string, breaker BreakerState) *BreakerChecker {
	return &BreakerChecker{name: name, breaker: breaker}
}

func (c *BreakerChecker) Name() string { return c.name }

func (c *BreakerChecker) Check(context.Context) CheckResult {
	switch st := c.breaker.State(); st {
	case resilience.StateClosed:
		return CheckResult{Status: StatusHealthy}
	default:
		return CheckResult{Status: StatusDegraded, Message: "circuit " + string(st)}
	}
}
