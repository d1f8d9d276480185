// SPDX-License-Identifier: MIT

// Package gatewaytest provides a scriptable WebSocket Gateway for tests.
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ManuGH/dashboard/internal/gateway"
)

// HandlerFunc answers one domain request. A non-nil *Error is sent as the
// response's error payload.
type HandlerFunc func(params json.RawMessage) (any, *Error)

// Error is the error payload a handler can return.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Received is one request the server read from a client.
type Received struct {
	ID     string
	Method string
	Params json.RawMessage
}

// MockServer speaks the Gateway protocol over WebSocket.
type MockServer struct {
	*httptest.Server

	mu                 sync.RWMutex
	token              string
	handlers           map[string]HandlerFunc
	delay              map[string]time.Duration
	silent             map[string]bool
	preamble           []string
	skipChallenge      bool
	dropAfterChallenge bool
	received           []Received

	connMu      sync.Mutex
	conns       map[*websocket.Conn]struct{}
	connections atomic.Int64
	closed      chan struct{}
	closeOnce   sync.Once

	upgrader websocket.Upgrader
}

// NewMockServer starts a Gateway that accepts the given token and knows cron.list.
func NewMockServer(token string) *MockServer {
	m := &MockServer{
		token:    token,
		handlers: make(map[string]HandlerFunc),
		delay:    make(map[string]time.Duration),
		silent:   make(map[string]bool),
		conns:    make(map[*websocket.Conn]struct{}),
		closed:   make(chan struct{}),
	}
	m.SetDefaultData()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.handleWS)
	m.Server = httptest.NewServer(mux)
	return m
}

// SetDefaultData installs a cron.list handler returning one job.
func (m *MockServer) SetDefaultData() {
	m.Handle("cron.list", func(json.RawMessage) (any, *Error) {
		return map[string]any{
			"jobs": []map[string]any{{"id": "j1", "name": "daily-report"}},
		}, nil
	})
}

// URL returns the ws:// endpoint of the Gateway.
func (m *MockServer) URL() string {
	return "ws" + strings.TrimPrefix(m.Server.URL, "http") + "/ws"
}

// Handle registers the handler for a domain method.
func (m *MockServer) Handle(method string, h HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[method] = h
}

// SetDelay makes the server wait before answering method.
func (m *MockServer) SetDelay(method string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay[method] = d
}

// SetSilent makes the server never answer method.
func (m *MockServer) SetSilent(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.silent[method] = true
}

// SetPreamble sends raw frames before the challenge.
func (m *MockServer) SetPreamble(frames ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preamble = frames
}

// SkipChallenge stops the server from sending connect.challenge.
func (m *MockServer) SkipChallenge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipChallenge = true
}

// DropAfterChallenge closes the connection when the connect request arrives.
func (m *MockServer) DropAfterChallenge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropAfterChallenge = true
}

// Received returns a copy of all requests read so far.
func (m *MockServer) Received() []Received {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Received(nil), m.received...)
}

// Connections returns how many WebSocket connections were accepted.
func (m *MockServer) Connections() int64 {
	return m.connections.Load()
}

// Close closes all live WebSocket connections and stops the server.
func (m *MockServer) Close() {
	m.closeOnce.Do(func() {
		close(m.closed)
		m.connMu.Lock()
		for c := range m.conns {
			_ = c.Close()
		}
		m.connMu.Unlock()
		m.Server.Close()
	})
}

func (m *MockServer) track(c *websocket.Conn) bool {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	select {
	case <-m.closed:
		return false
	default:
	}
	m.conns[c] = struct{}{}
	return true
}

func (m *MockServer) untrack(c *websocket.Conn) {
	m.connMu.Lock()
	delete(m.conns, c)
	m.connMu.Unlock()
	_ = c.Close()
}

func (m *MockServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if !m.track(conn) {
		_ = conn.Close()
		return
	}
	defer m.untrack(conn)
	m.connections.Add(1)

	m.mu.RLock()
	preamble := append([]string(nil), m.preamble...)
	skipChallenge := m.skipChallenge
	m.mu.RUnlock()

	for _, frame := range preamble {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return
		}
	}
	if !skipChallenge {
		if err := m.write(conn, map[string]any{"type": gateway.FrameEvent, "method": gateway.MethodChallenge}); err != nil {
			return
		}
	}

	authenticated := false
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req gateway.Request
		if err := json.Unmarshal(data, &req); err != nil {
			continue
		}
		m.record(req)

		if req.Method == gateway.MethodConnect {
			if !m.answerConnect(conn, req) {
				return
			}
			authenticated = true
			continue
		}
		if !authenticated {
			_ = m.writeError(conn, req.ID, &Error{Code: "NOT_AUTHENTICATED", Message: "connect first"})
			continue
		}
		if !m.answer(conn, req) {
			return
		}
	}
}

// answerConnect returns false when the connection should be dropped.
func (m *MockServer) answerConnect(conn *websocket.Conn, req gateway.Request) bool {
	m.mu.RLock()
	drop, token := m.dropAfterChallenge, m.token
	m.mu.RUnlock()
	if drop {
		return false
	}

	var params gateway.ConnectParams
	_ = json.Unmarshal(req.Params, &params)
	if token != "" && params.Token != token {
		_ = m.writeError(conn, req.ID, &Error{Code: "INVALID_TOKEN", Message: "token rejected"})
		return true
	}
	return m.write(conn, map[string]any{
		"type":   gateway.FrameResponse,
		"result": map[string]any{"status": gateway.StatusHelloOK},
	}) == nil
}

func (m *MockServer) answer(conn *websocket.Conn, req gateway.Request) bool {
	m.mu.RLock()
	h := m.handlers[req.Method]
	delay := m.delay[req.Method]
	silent := m.silent[req.Method]
	m.mu.RUnlock()

	if silent {
		return true
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-m.closed:
			return false
		}
	}
	if h == nil {
		return m.writeError(conn, req.ID, &Error{Code: "METHOD_NOT_FOUND", Message: req.Method}) == nil
	}
	result, e := h(req.Params)
	if e != nil {
		return m.writeError(conn, req.ID, e) == nil
	}
	return m.write(conn, map[string]any{"type": gateway.FrameResponse, "id": req.ID, "result": result}) == nil
}

func (m *MockServer) record(req gateway.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, Received{ID: req.ID, Method: req.Method, Params: req.Params})
}

func (m *MockServer) write(conn *websocket.Conn, frame any) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (m *MockServer) writeError(conn *websocket.Conn, id string, e *Error) error {
	return m.write(conn, map[string]any{"type": gateway.FrameResponse, "id": id, "error": e})
}
