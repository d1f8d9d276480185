// SPDX-License-Identifier: MIT

// Package audit writes structured audit records for security-sensitive
// operations: session issue and revocation, rejected callers, rate limiting
// and configuration reloads. Records carry who, what and when.
package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/dashboard/internal/log"
	"github.com/ManuGH/dashboard/internal/ratelimit"
)

// EventType represents the type of audit event.
type EventType string

const (
	EventConfigReload EventType = "config.reload"

	EventSessionCreated EventType = "auth.session_created"
	EventSessionRevoked EventType = "auth.session_revoked"
	EventAuthFailure    EventType = "auth.failure"

	EventRateLimited EventType = "api.ratelimit"
)

// Result values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultDenied  = "denied"
)

// Event represents a structured audit event.
type Event struct {
	Timestamp  time.Time
	Type       EventType
	Actor      string // principal ID, client IP or "system"
	Action     string
	Resource   string
	Result     string
	RemoteAddr string
	UserAgent  string
	RequestID  string
	Details    map[string]string
}

// Logger provides audit logging functionality.
type Logger struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewLogger creates an audit logger on the process logger.
func NewLogger() *Logger {
	return New(log.WithComponent("audit"))
}

// New creates an audit logger writing to l.
func New(l zerolog.Logger) *Logger {
	return &Logger{
		logger: l.With().Str("log_type", "audit").Logger(),
		now:    time.Now,
	}
}

// Log writes one audit event. A nil Logger discards it.
func (l *Logger) Log(event Event) {
	if l == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}

	e := l.logger.Info().
		Time("timestamp", event.Timestamp).
		Str("event_type", string(event.Type)).
		Str("actor", event.Actor).
		Str("action", event.Action).
		Str("resource", event.Resource).
		Str("result", event.Result)

	if event.RemoteAddr != "" {
		e.Str("remote_addr", event.RemoteAddr)
	}
	if event.UserAgent != "" {
		e.Str("user_agent", event.UserAgent)
	}
	if event.RequestID != "" {
		e.Str("request_id", event.RequestID)
	}
	for k, v := range event.Details {
		e.Str(k, v)
	}
	e.Msg("audit event")
}

// LogRequest fills the request metadata of event from r and logs it.
func (l *Logger) LogRequest(r *http.Request, event Event) {
	if l == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = log.RequestIDFromContext(r.Context())
	}
	if event.RemoteAddr == "" {
		event.RemoteAddr = ratelimit.GetClientIP(r)
	}
	if event.UserAgent == "" {
		event.UserAgent = r.UserAgent()
	}
	if event.Resource == "" {
		event.Resource = r.Method + " " + r.URL.Path
	}
	if event.Actor == "" {
		event.Actor = event.RemoteAddr
	}
	l.Log(event)
}

// SessionCreated records a caller session exchanged for the API token.
func (l *Logger) SessionCreated(r *http.Request, principalID string, expiresAt time.Time) {
	l.LogRequest(r, Event{
		Type:   EventSessionCreated,
		Actor:  principalID,
		Action: "issued caller session",
		Result: ResultSuccess,
		Details: map[string]string{
			"expires_at": expiresAt.UTC().Format(time.RFC3339),
		},
	})
}

// SessionRevoked records a caller session deleted on logout.
func (l *Logger) SessionRevoked(r *http.Request, principalID string) {
	l.LogRequest(r, Event{
		Type:   EventSessionRevoked,
		Actor:  principalID,
		Action: "revoked caller session",
		Result: ResultSuccess,
	})
}

// AuthFailure records a request rejected before reaching a handler.
func (l *Logger) AuthFailure(r *http.Request, reason string) {
	l.LogRequest(r, Event{
		Type:    EventAuthFailure,
		Action:  "authentication failed",
		Result:  ResultDenied,
		Details: map[string]string{"reason": reason},
	})
}

// RateLimited records a principal exceeding its request budget.
func (l *Logger) RateLimited(r *http.Request, principalID string) {
	l.LogRequest(r, Event{
		Type:   EventRateLimited,
		Actor:  principalID,
		Action: "rate limit exceeded",
		Result: ResultDenied,
	})
}

// ConfigReload records a configuration reload applied to the running service.
func (l *Logger) ConfigReload(actor, result string, details map[string]string) {
	l.Log(Event{
		Type:     EventConfigReload,
		Actor:    actor,
		Action:   "reloaded configuration",
		Resource: "config",
		Result:   result,
		Details:  details,
	})
}

// Bool formats b for Details maps.
func Bool(b bool) string {
	return strconv.FormatBool(b)
}
