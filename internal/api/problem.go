// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/dashboard/internal/api/middleware"
	"github.com/ManuGH/dashboard/internal/log"
)

// Stable machine-readable problem codes.
const (
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeRateLimited          = "RATE_LIMITED"
	CodeGatewayTimeout       = "GATEWAY_TIMEOUT"
	CodeGatewayAuthFailed    = "GATEWAY_AUTH_FAILED"
	CodeGatewayUpstreamError = "GATEWAY_UPSTREAM_ERROR"
	CodeGatewayProtocolError = "GATEWAY_PROTOCOL_ERROR"
	CodeGatewayUnavailable   = "GATEWAY_UNAVAILABLE"
	CodeCircuitOpen          = "CIRCUIT_OPEN"
	CodeInternal             = "INTERNAL_ERROR"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRawJSON writes an already encoded JSON document unchanged.
func writeRawJSON(w http.ResponseWriter, code int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

// writeProblem writes an RFC 7807 problem details response.
//
//   - type: canonical machine identifier (e.g. "gateway/timeout").
//   - title: short human-readable label.
//   - code: stable short code clients branch on.
//   - detail: explanation of this occurrence, optional.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, problemType, title, code, detail string, extra map[string]any) {
	reqID := log.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = w.Header().Get(middleware.HeaderRequestID)
	}

	res := map[string]any{
		"type":     problemType,
		"title":    title,
		"status":   status,
		"code":     code,
		"instance": r.URL.EscapedPath(),
	}
	if reqID != "" {
		res["requestId"] = reqID
	}
	if detail != "" {
		res["detail"] = detail
	}
	for k, v := range extra {
		switch k {
		case "type", "title", "status", "detail", "instance", "code":
			log.L().Warn().Str("key", k).Str("problem_type", problemType).Msg("ignoring reserved key in problem extras")
			continue
		}
		res[k] = v
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.L().Error().Err(err).Str("type", problemType).Int("status", status).Msg("failed to encode problem response")
	}
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	writeProblem(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized", CodeUnauthorized, "", nil)
}
