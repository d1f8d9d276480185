// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Gateway attributes
	GatewayMethodKey  = "gateway.method"
	GatewayOutcomeKey = "gateway.outcome"
	GatewayPhaseKey   = "gateway.phase"
	GatewayBudgetKey  = "gateway.budget_ms"
	GatewaySessionKey = "gateway.session_id"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// GatewayCallAttributes creates span attributes describing one gateway call.
// Empty values are omitted.
func GatewayCallAttributes(method, sessionID string, budgetMS int64) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if method != "" {
		attrs = append(attrs, attribute.String(GatewayMethodKey, method))
	}
	if sessionID != "" {
		attrs = append(attrs, attribute.String(GatewaySessionKey, sessionID))
	}
	if budgetMS > 0 {
		attrs = append(attrs, attribute.Int64(GatewayBudgetKey, budgetMS))
	}
	return attrs
}

// GatewayOutcomeAttributes records how a gateway call ended and the last phase it reached.
func GatewayOutcomeAttributes(outcome, phase string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(GatewayOutcomeKey, outcome),
		attribute.String(GatewayPhaseKey, phase),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
