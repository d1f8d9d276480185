// SPDX-License-Identifier: MIT

package audit

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/dashboard/internal/log"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	l := New(zerolog.New(buf))
	l.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return l
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLog_SetsTimestampAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.Log(Event{
		Type:     EventConfigReload,
		Actor:    "system",
		Action:   "reloaded configuration",
		Resource: "config",
		Result:   ResultSuccess,
		Details:  map[string]string{"gateway_configured": "true"},
	})

	entry := decode(t, &buf)
	assert.Equal(t, "audit", entry["log_type"])
	assert.Equal(t, "config.reload", entry["event_type"])
	assert.Equal(t, "system", entry["actor"])
	assert.Equal(t, "success", entry["result"])
	assert.Equal(t, "true", entry["gateway_configured"])
	assert.Contains(t, entry["timestamp"], "2025-03-01T12:00:00")
	assert.NotContains(t, entry, "remote_addr")
}

func TestLogRequest_FillsMetadata(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	req := httptest.NewRequest("POST", "/api/auth/session", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	req.Header.Set("User-Agent", "curl/8.0")
	req = req.WithContext(log.ContextWithRequestID(req.Context(), "req-1"))

	l.AuthFailure(req, "bad_api_token")

	entry := decode(t, &buf)
	assert.Equal(t, "auth.failure", entry["event_type"])
	assert.Equal(t, "192.0.2.10", entry["actor"])
	assert.Equal(t, "192.0.2.10", entry["remote_addr"])
	assert.Equal(t, "curl/8.0", entry["user_agent"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "POST /api/auth/session", entry["resource"])
	assert.Equal(t, "denied", entry["result"])
	assert.Equal(t, "bad_api_token", entry["reason"])
}

func TestSessionCreated_UsesPrincipalAsActor(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	req := httptest.NewRequest("POST", "/api/auth/session", nil)
	l.SessionCreated(req, "p-123", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))

	entry := decode(t, &buf)
	assert.Equal(t, "auth.session_created", entry["event_type"])
	assert.Equal(t, "p-123", entry["actor"])
	assert.Equal(t, "2025-03-02T00:00:00Z", entry["expires_at"])
}

func TestNilLoggerDiscards(t *testing.T) {
	var l *Logger
	req := httptest.NewRequest("GET", "/", nil)
	assert.NotPanics(t, func() {
		l.RateLimited(req, "p")
		l.ConfigReload("system", ResultSuccess, nil)
	})
}
