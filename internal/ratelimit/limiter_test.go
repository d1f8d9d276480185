// SPDX-License-Identifier: MIT

package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLimiter_PerKeyBurst(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := New("test_burst", Config{Rate: 1, Burst: 2, IdleTTL: time.Hour})
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("dad"))
	assert.True(t, l.Allow("dad"))
	assert.False(t, l.Allow("dad"))
	assert.True(t, l.Allow("mom"), "keys have independent buckets")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("dad"), "one token refilled")
	assert.Equal(t, float64(1), testutil.ToFloat64(rateLimitExceeded.WithLabelValues("test_burst")))
}

func TestLimiter_IdleCleanup(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := New("test_cleanup", Config{Rate: 1, Burst: 1, IdleTTL: time.Minute})
	l.now = func() time.Time { return now }
	l.lastCleanup = now

	l.Allow("a")
	l.Allow("b")
	assert.Equal(t, 2, l.Len())

	now = now.Add(2 * time.Minute)
	l.Allow("c")
	assert.Equal(t, 1, l.Len())
}

func TestNew_Defaults(t *testing.T) {
	l := New("test_defaults", Config{})
	assert.Equal(t, DefaultConfig(), l.config)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "xff first hop", headers: map[string]string{"X-Forwarded-For": " 10.0.0.1 , 10.0.0.2"}, remote: "1.2.3.4:5", want: "10.0.0.1"},
		{name: "x-real-ip", headers: map[string]string{"X-Real-IP": "10.0.0.9"}, remote: "1.2.3.4:5", want: "10.0.0.9"},
		{name: "remote addr", remote: "1.2.3.4:5", want: "1.2.3.4"},
		{name: "remote without port", remote: "1.2.3.4", want: "1.2.3.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(r))
		})
	}
}
