// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestHTTPAttributes(t *testing.T) {
	attrs := HTTPAttributes("GET", "/api/gateway/cron/jobs", "http://localhost:8080/api/gateway/cron/jobs", 200)

	if len(attrs) != 4 {
		t.Fatalf("Expected 4 attributes, got %d", len(attrs))
	}

	verifyAttribute(t, attrs, HTTPMethodKey, "GET")
	verifyAttribute(t, attrs, HTTPRouteKey, "/api/gateway/cron/jobs")
	verifyIntAttribute(t, attrs, HTTPStatusCodeKey, 200)
}

func TestGatewayCallAttributes(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		sessionID string
		budget    int64
		wantLen   int
	}{
		{name: "all fields", method: "cron.list", sessionID: "s-1", budget: 15000, wantLen: 3},
		{name: "method only", method: "cron.list", wantLen: 1},
		{name: "empty", wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := GatewayCallAttributes(tt.method, tt.sessionID, tt.budget)
			if len(attrs) != tt.wantLen {
				t.Fatalf("Expected %d attributes, got %d", tt.wantLen, len(attrs))
			}
			if tt.method != "" {
				verifyAttribute(t, attrs, GatewayMethodKey, tt.method)
			}
		})
	}
}

func TestGatewayOutcomeAttributes(t *testing.T) {
	attrs := GatewayOutcomeAttributes("timeout", "authenticating")
	verifyAttribute(t, attrs, GatewayOutcomeKey, "timeout")
	verifyAttribute(t, attrs, GatewayPhaseKey, "authenticating")
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes(errors.New("boom"), "transport")
	if len(attrs) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(attrs))
	}
	verifyAttribute(t, attrs, ErrorTypeKey, "transport")
}

func verifyAttribute(t *testing.T, attrs []attribute.KeyValue, key, want string) {
	t.Helper()
	for _, a := range attrs {
		if string(a.Key) == key {
			if got := a.Value.AsString(); got != want {
				t.Errorf("attribute %s = %q, want %q", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %s not found", key)
}

func verifyIntAttribute(t *testing.T, attrs []attribute.KeyValue, key string, want int64) {
	t.Helper()
	for _, a := range attrs {
		if string(a.Key) == key {
			if got := a.Value.AsInt64(); got != want {
				t.Errorf("attribute %s = %d, want %d", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %s not found", key)
}
