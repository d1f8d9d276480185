// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_gateway_calls_total",
		Help: "Gateway RPC calls by method and outcome",
	}, []string{"method", "outcome"}) // outcome=success|transport|authentication|timeout|upstream|protocol

	gatewayCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_gateway_call_duration_seconds",
		Help:    "Wall-clock duration of gateway calls (connect + handshake + round trip)",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
	}, []string{"method", "outcome"})

	gatewaySessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_gateway_sessions_open",
		Help: "Gateway transport sessions currently open",
	})

	gatewayFramesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_gateway_frames_dropped_total",
		Help: "Inbound gateway frames discarded without affecting the call",
	}, []string{"reason"}) // reason=malformed|unknown_type|unexpected|unmatched_id
)

// MethodOther is the method label for calls outside the known method set.
const MethodOther = "other"

var (
	knownMethodsMu sync.RWMutex
	knownMethods   = map[string]struct{}{"cron.list": {}}
)

// RegisterGatewayMethods adds methods that get their own label value.
func RegisterGatewayMethods(methods ...string) {
	knownMethodsMu.Lock()
	defer knownMethodsMu.Unlock()
	for _, m := range methods {
		knownMethods[m] = struct{}{}
	}
}

// gatewayMethodLabel keeps the method label bounded: arbitrary method names
// from ad hoc callers collapse into MethodOther.
func gatewayMethodLabel(method string) string {
	knownMethodsMu.RLock()
	defer knownMethodsMu.RUnlock()
	if _, ok := knownMethods[method]; ok {
		return method
	}
	return MethodOther
}

// ObserveGatewayCall records the outcome and latency of one gateway call.
func ObserveGatewayCall(method, outcome string, d time.Duration) {
	method = gatewayMethodLabel(method)
	gatewayCallsTotal.WithLabelValues(method, outcome).Inc()
	gatewayCallDuration.WithLabelValues(method, outcome).Observe(d.Seconds())
}

// GatewaySessionOpened increments the open-session gauge.
func GatewaySessionOpened() {
	gatewaySessionsOpen.Inc()
}

// GatewaySessionClosed decrements the open-session gauge.
func GatewaySessionClosed() {
	gatewaySessionsOpen.Dec()
}

// RecordGatewayFrameDropped counts an inbound frame that was ignored.
func RecordGatewayFrameDropped(reason string) {
	gatewayFramesDropped.WithLabelValues(reason).Inc()
}
