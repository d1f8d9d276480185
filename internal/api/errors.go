// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ManuGH/dashboard/internal/gateway"
	"github.com/ManuGH/dashboard/internal/log"
	"github.com/ManuGH/dashboard/internal/resilience"
)

// gatewayProblem describes how one gateway failure class surfaces over HTTP.
type gatewayProblem struct {
	problemType string
	title       string
	code        string
}

func classifyGatewayError(err error) gatewayProblem {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return gatewayProblem{"gateway/circuit_open", "Gateway Temporarily Disabled", CodeCircuitOpen}
	}
	switch gateway.KindOf(err) {
	case gateway.KindTimeout:
		return gatewayProblem{"gateway/timeout", "Gateway Timeout", CodeGatewayTimeout}
	case gateway.KindAuthentication:
		return gatewayProblem{"gateway/auth_failed", "Gateway Authentication Failed", CodeGatewayAuthFailed}
	case gateway.KindUpstream:
		return gatewayProblem{"gateway/upstream_error", "Gateway Error", CodeGatewayUpstreamError}
	case gateway.KindProtocol:
		return gatewayProblem{"gateway/protocol_error", "Gateway Protocol Error", CodeGatewayProtocolError}
	default:
		return gatewayProblem{"gateway/unavailable", "Gateway Unavailable", CodeGatewayUnavailable}
	}
}

// writeGatewayError maps any gateway failure to 502.
func writeGatewayError(w http.ResponseWriter, r *http.Request, err error) {
	p := classifyGatewayError(err)

	var extra map[string]any
	var ce *gateway.CallError
	if errors.As(err, &ce) {
		extra = map[string]any{"phase": ce.Phase.String()}
		if ce.Code != "" {
			extra["upstreamCode"] = ce.Code
		}
	}

	log.FromContext(r.Context()).Warn().
		Err(err).
		Str(log.FieldEvent, "gateway.request_failed").
		Str("problem_code", p.code).
		Msg("gateway call failed")

	writeProblem(w, r, http.StatusBadGateway, p.problemType, p.title, p.code, err.Error(), extra)
}

// breakerCounts reports whether err suggests the Gateway itself is unreachable.
// Authentication and upstream errors prove it answered.
func breakerCounts(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, gateway.ErrNotConfigured) {
		return false
	}
	switch gateway.KindOf(err) {
	case gateway.KindTransport, gateway.KindTimeout:
		return true
	default:
		return false
	}
}
