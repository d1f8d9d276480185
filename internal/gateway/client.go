// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/dashboard/internal/log"
	"github.com/ManuGH/dashboard/internal/metrics"
	"github.com/ManuGH/dashboard/internal/telemetry"
)

// DefaultBudget bounds a call when neither the caller nor the config sets one.
const DefaultBudget = 15 * time.Second

// Credential identifies this client to the Gateway. It is never logged.
type Credential struct {
	ClientName string
	Token      string
}

// String masks the token so a Credential is safe in fmt output.
func (c Credential) String() string {
	token := "<empty>"
	if c.Token != "" {
		token = "***"
	}
	return fmt.Sprintf("Credential{ClientName:%s Token:%s}", c.ClientName, token)
}

// Config is the endpoint and credential snapshot a call runs with.
type Config struct {
	URL        string
	Credential Credential
	Budget     time.Duration
}

// ChatSessionConfig carries the parameters a caller needs to speak the
// protocol itself.
type ChatSessionConfig struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// CronJob is one entry of a cron.list result.
type CronJob struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Enabled  *bool           `json:"enabled,omitempty"`
	Schedule json.RawMessage `json:"schedule,omitempty"`
}

// CronList is the typed view of a cron.list result. Raw holds the result
// payload exactly as the Gateway sent it, including fields Jobs does not model.
type CronList struct {
	Jobs []CronJob      `json:"jobs"`
	Raw  json.RawMessage `json:"-"`
}

// Client is the Gateway call facade. It holds no connection between calls.
type Client struct {
	cfg    atomic.Pointer[Config]
	dialer Dialer
	clock  Clock
	logger zerolog.Logger
	tracer trace.Tracer
	newID  func() string
}

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the WebSocket dialer.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// WithClock replaces the wall clock used by the timeout guard.
func WithClock(clk Clock) Option {
	return func(c *Client) { c.clock = clk }
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithIDGenerator replaces uuid.NewString for correlation ids.
func WithIDGenerator(fn func() string) Option {
	return func(c *Client) { c.newID = fn }
}

// New creates a Client.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		dialer: WebSocketDialer{},
		clock:  realClock{},
		logger: log.WithComponent("gateway"),
		tracer: telemetry.Tracer("dashboard/gateway"),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.SetConfig(cfg)
	return c
}

// SetConfig swaps the endpoint and credential. Calls in flight keep the
// snapshot they started with.
func (c *Client) SetConfig(cfg Config) {
	c.cfg.Store(&cfg)
}

// Config returns the current snapshot.
func (c *Client) Config() Config {
	return *c.cfg.Load()
}

// Call performs one bounded request against the Gateway on a fresh session
// and returns the raw result payload. budget <= 0 selects the configured
// default. The session is always closed before Call returns.
func (c *Client) Call(ctx context.Context, method string, params any, budget time.Duration) (json.RawMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := c.Config()
	if budget <= 0 {
		budget = cfg.Budget
	}
	if budget <= 0 {
		budget = DefaultBudget
	}

	sessionID := c.newID()
	ctx, span := c.tracer.Start(ctx, "gateway.call",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.GatewayCallAttributes(method, sessionID, budget.Milliseconds())...),
	)
	defer span.End()

	logger := log.WithContext(ctx, c.logger).With().
		Str(log.FieldSessionID, sessionID).
		Str(log.FieldGatewayMethod, method).
		Logger()

	start := c.clock.Now()
	result, err := c.call(ctx, logger, cfg, sessionID, method, params, budget)
	elapsed := c.clock.Now().Sub(start)

	outcomeLabel, phase := "success", StateReady
	var ce *CallError
	if errors.As(err, &ce) {
		outcomeLabel, phase = string(ce.Kind), ce.Phase
	}
	metrics.ObserveGatewayCall(method, outcomeLabel, elapsed)
	span.SetAttributes(telemetry.GatewayOutcomeAttributes(outcomeLabel, phase.String())...)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcomeLabel)
		logger.Warn().
			Err(err).
			Str(log.FieldEvent, "gateway.call.failed").
			Str(log.FieldOutcome, outcomeLabel).
			Str(log.FieldPhase, phase.String()).
			Dur(log.FieldDuration, elapsed).
			Dur(log.FieldBudget, budget).
			Msg("gateway call failed")
		return nil, err
	}
	logger.Info().
		Str(log.FieldEvent, "gateway.call.completed").
		Str(log.FieldOutcome, outcomeLabel).
		Dur(log.FieldDuration, elapsed).
		Msg("gateway call completed")
	return result, nil
}

func (c *Client) call(ctx context.Context, logger zerolog.Logger, cfg Config, sessionID, method string, params any, budget time.Duration) (json.RawMessage, error) {
	if method == "" {
		return nil, &CallError{Kind: KindProtocol, Phase: StateIdle, Message: "method is required"}
	}
	if method == MethodConnect {
		return nil, &CallError{Kind: KindProtocol, Method: method, Phase: StateIdle, Message: "connect is reserved for the handshake"}
	}
	rawParams, err := encodeParams(params)
	if err != nil {
		return nil, &CallError{Kind: KindProtocol, Method: method, Phase: StateIdle, Message: "encode params", Err: err}
	}
	if cfg.URL == "" {
		return nil, &CallError{Kind: KindTransport, Method: method, Phase: StateIdle, Err: ErrNotConfigured}
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := newSession(sessionID, logger)
	slot := newResultSlot()

	// Armed before dialing: connect and handshake spend the same budget.
	g := armGuard(ctx, c.clock, budget, func(cause error) {
		slot.settle(outcome{err: &CallError{Kind: KindTimeout, Method: method, Phase: sess.State(), Err: cause}})
		cancel()
		_ = sess.Close()
	})

	c.dispatch(callCtx, logger, cfg, sess, slot, method, rawParams)

	g.disarm()
	_ = sess.Close()
	out := slot.outcome()
	return out.result, out.err
}

// dispatch drives the session until the slot is settled. Each wait races
// inbound frames against session teardown and the guard.
func (c *Client) dispatch(ctx context.Context, logger zerolog.Logger, cfg Config, sess *Session, slot *resultSlot, method string, params json.RawMessage) {
	if err := sess.open(ctx, c.dialer, cfg.URL); err != nil {
		slot.settle(outcome{err: &CallError{Kind: KindTransport, Method: method, Phase: StateConnecting, Err: err}})
		return
	}

	hs := newHandshake(cfg.Credential, c.newID)
	var pending *pendingRequest

	closed := func() *CallError {
		if pending == nil {
			return &CallError{Kind: KindAuthentication, Method: method, Phase: StateAuthenticating, Message: hs.closedMessage(), Err: sess.Err()}
		}
		return &CallError{Kind: KindTransport, Method: method, Phase: StateReady, Message: "connection closed before response", Err: sess.Err()}
	}

	for {
		var data []byte
		select {
		case <-slot.Done():
			return
		case <-sess.Done():
			slot.settle(outcome{err: closed()})
			return
		case data = <-sess.Inbound():
		}

		in, reason, err := decodeInbound(data)
		if err != nil {
			c.dropFrame(logger, reason, err)
			continue
		}

		var st step
		if pending == nil {
			st = hs.onFrame(in)
		} else {
			st = pending.onFrame(in)
		}

		switch {
		case st.drop != "":
			c.dropFrame(logger, st.drop, nil)
		case st.err != nil:
			slot.settle(outcome{err: st.err})
			return
		case st.send != nil:
			if err := sess.Send(*st.send); err != nil {
				slot.settle(outcome{err: closed()})
				return
			}
		case st.ready:
			if err := sess.transition(StateReady); err != nil {
				slot.settle(outcome{err: closed()})
				return
			}
			var req Request
			pending, req = issue(method, params, c.newID(), c.clock.Now())
			if err := sess.Send(req); err != nil {
				slot.settle(outcome{err: closed()})
				return
			}
			logger.Debug().
				Str(log.FieldEvent, "gateway.request.sent").
				Str(log.FieldCorrelationID, pending.id).
				Msg("domain request sent")
		case st.resolved:
			logger.Debug().
				Str(log.FieldEvent, "gateway.response.matched").
				Str(log.FieldCorrelationID, pending.id).
				Dur(log.FieldDuration, c.clock.Now().Sub(pending.issuedAt)).
				Msg("domain response received")
			slot.settle(outcome{result: st.result})
			return
		}
	}
}

func (c *Client) dropFrame(logger zerolog.Logger, reason string, err error) {
	metrics.RecordGatewayFrameDropped(reason)
	evt := logger.Debug()
	if err != nil {
		evt = evt.Err(err)
	}
	evt.Str(log.FieldEvent, "gateway.frame.dropped").
		Str("reason", reason).
		Msg("ignoring inbound frame")
}

// ListCronJobs calls cron.list with {all:true}.
func (c *Client) ListCronJobs(ctx context.Context, budget time.Duration) (CronList, error) {
	raw, err := c.Call(ctx, "cron.list", map[string]any{"all": true}, budget)
	if err != nil {
		return CronList{}, err
	}
	var list CronList
	if err := json.Unmarshal(raw, &list); err != nil {
		return CronList{}, &CallError{Kind: KindProtocol, Method: "cron.list", Phase: StateReady, Message: "decode result", Err: err}
	}
	list.Raw = raw
	return list, nil
}

// SessionConfig returns the endpoint and token for callers that speak the
// protocol themselves. No Gateway traffic is generated.
func (c *Client) SessionConfig() (ChatSessionConfig, error) {
	cfg := c.Config()
	if cfg.URL == "" {
		return ChatSessionConfig{}, &CallError{Kind: KindTransport, Method: "session-config", Phase: StateIdle, Err: ErrNotConfigured}
	}
	return ChatSessionConfig{URL: cfg.URL, Token: cfg.Credential.Token}, nil
}
