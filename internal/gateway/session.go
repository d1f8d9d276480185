// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ManuGH/dashboard/internal/log"
	"github.com/ManuGH/dashboard/internal/metrics"
)

var (
	errSessionClosed = errors.New("session closed")
	errSendRefused   = errors.New("send refused in current state")
)

// Session owns one Gateway connection for the lifetime of a single call.
type Session struct {
	id     string
	logger zerolog.Logger

	mu            sync.Mutex
	state         State
	authenticated bool
	conn          Conn
	err           error

	inbound   chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(id string, logger zerolog.Logger) *Session {
	return &Session{
		id:      id,
		logger:  logger,
		state:   StateIdle,
		inbound: make(chan []byte),
		done:    make(chan struct{}),
	}
}

// ID returns the session identifier used in logs and spans.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authenticated reports whether hello-ok has been observed.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Done is closed once the session reaches Closed or Failed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the transport error that failed the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Inbound delivers raw frames in arrival order.
func (s *Session) Inbound() <-chan []byte { return s.inbound }

func (s *Session) transition(to State) error {
	s.mu.Lock()
	from := s.state
	if !from.canAdvance(to) {
		s.mu.Unlock()
		return fmt.Errorf("invalid session transition %s -> %s", from, to)
	}
	s.state = to
	if to == StateReady {
		s.authenticated = true
	}
	s.mu.Unlock()

	s.logger.Debug().
		Str(log.FieldEvent, "gateway.session.transition").
		Str(log.FieldOldState, from.String()).
		Str(log.FieldNewState, to.String()).
		Msg("session state changed")
	return nil
}

// open dials the endpoint and starts the reader. On success the session is
// Authenticating.
func (s *Session) open(ctx context.Context, dialer Dialer, endpoint string) error {
	if err := s.transition(StateConnecting); err != nil {
		return errSessionClosed
	}
	conn, err := dialer.Dial(ctx, endpoint)
	if err != nil {
		s.fail(err)
		return err
	}

	s.mu.Lock()
	if s.state.Terminal() {
		// Closed while dialing; finish already ran without a connection to close.
		s.mu.Unlock()
		_ = conn.Close()
		return errSessionClosed
	}
	s.conn = conn
	s.mu.Unlock()
	metrics.GatewaySessionOpened()

	if err := s.transition(StateAuthenticating); err != nil {
		return errSessionClosed
	}
	go s.readLoop(conn)
	return nil
}

func (s *Session) readLoop(conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			s.fail(err)
			return
		}
		select {
		case s.inbound <- data:
		case <-s.done:
			return
		}
	}
}

// Send writes one request. Only connect may be sent while Authenticating;
// domain requests require Ready.
func (s *Session) Send(req Request) error {
	s.mu.Lock()
	state, conn := s.state, s.conn
	s.mu.Unlock()

	switch {
	case state == StateAuthenticating && req.Method == MethodConnect:
	case state == StateReady && req.Method != MethodConnect:
	default:
		return fmt.Errorf("%w: %q in state %s", errSendRefused, req.Method, state)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(data); err != nil {
		s.fail(err)
		return err
	}
	return nil
}

// Close tears the session down. It is idempotent and safe from any state.
func (s *Session) Close() error {
	s.finish(StateClosed, nil)
	return nil
}

func (s *Session) fail(err error) {
	s.finish(StateFailed, err)
}

// finish runs once for both the close and the fail path, so the connection is
// closed exactly once.
func (s *Session) finish(to State, cause error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		from := s.state
		s.state = to
		s.err = cause
		conn := s.conn
		s.mu.Unlock()

		close(s.done)
		if conn != nil {
			if err := conn.Close(); err != nil {
				s.logger.Debug().Err(err).Str(log.FieldEvent, "gateway.session.close_error").Msg("closing connection")
			}
			metrics.GatewaySessionClosed()
		}

		evt := s.logger.Debug()
		if cause != nil {
			evt = evt.Err(cause)
		}
		evt.Str(log.FieldEvent, "gateway.session.transition").
			Str(log.FieldOldState, from.String()).
			Str(log.FieldNewState, to.String()).
			Msg("session finished")
	})
}
