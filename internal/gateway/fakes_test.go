// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var errFakeClosed = errors.New("fake conn: closed")

// fakeConn is a scripted Conn. Frames pushed before or during the call are
// read in order; onWrite lets a test answer requests.
type fakeConn struct {
	reads    chan []byte
	closed   chan struct{}
	peerGone chan struct{}

	closeOnce sync.Once
	dropOnce  sync.Once
	closes    atomic.Int32

	mu      sync.Mutex
	writes  []Request
	onWrite func(c *fakeConn, req Request)
}

func newFakeConn(onWrite func(c *fakeConn, req Request), frames ...string) *fakeConn {
	c := &fakeConn{
		reads:    make(chan []byte, 32),
		closed:   make(chan struct{}),
		peerGone: make(chan struct{}),
		onWrite:  onWrite,
	}
	c.push(frames...)
	return c
}

func (c *fakeConn) push(frames ...string) {
	for _, f := range frames {
		c.reads <- []byte(f)
	}
}

// drop simulates the Gateway going away without a Close from our side.
func (c *fakeConn) drop() {
	c.dropOnce.Do(func() { close(c.peerGone) })
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case <-c.closed:
		return nil, errFakeClosed
	default:
	}
	select {
	case data := <-c.reads:
		return data, nil
	case <-c.peerGone:
		return nil, io.ErrUnexpectedEOF
	case <-c.closed:
		return nil, errFakeClosed
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	select {
	case <-c.closed:
		return errFakeClosed
	case <-c.peerGone:
		return io.ErrClosedPipe
	default:
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return err
	}
	c.mu.Lock()
	c.writes = append(c.writes, req)
	onWrite := c.onWrite
	c.mu.Unlock()
	if onWrite != nil {
		onWrite(c, req)
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.closes.Add(1)
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) written() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request(nil), c.writes...)
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

type fakeDialer struct {
	conn  *fakeConn
	err   error
	block bool

	mu        sync.Mutex
	endpoints []string
}

func (d *fakeDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	d.mu.Lock()
	d.endpoints = append(d.endpoints, endpoint)
	d.mu.Unlock()
	if d.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

func (d *fakeDialer) dials() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.endpoints...)
}

// fakeClock only moves when Advance is called.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
	armed  chan struct{}
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0), armed: make(chan struct{}, 16)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) NewTimer(d time.Duration) Timer {
	f.mu.Lock()
	t := &fakeTimer{clock: f, deadline: f.now.Add(d), c: make(chan time.Time, 1)}
	f.timers = append(f.timers, t)
	f.mu.Unlock()
	f.armed <- struct{}{}
	return t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	for _, t := range f.timers {
		if !t.stopped && !t.fired && !f.now.Before(t.deadline) {
			t.fired = true
			t.c <- f.now
		}
	}
}

func (f *fakeClock) waitArmed(t *testing.T) {
	t.Helper()
	select {
	case <-f.armed:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout guard was never armed")
	}
}

type fakeTimer struct {
	clock    *fakeClock
	deadline time.Time
	c        chan time.Time
	stopped  bool
	fired    bool
}

func (t *fakeTimer) C() <-chan time.Time { return t.c }

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Frames used across tests.
const (
	challengeFrame = `{"type":"event","method":"connect.challenge"}`
	helloOKFrame   = `{"type":"res","result":{"status":"hello-ok"}}`
)

func responseFrame(id, result string) string {
	return `{"type":"res","id":"` + id + `","result":` + result + `}`
}

// gatewayScript answers connect with hello-ok and the domain method with respond(id).
func gatewayScript(method string, respond func(id string) []string) func(c *fakeConn, req Request) {
	return func(c *fakeConn, req Request) {
		switch req.Method {
		case MethodConnect:
			c.push(helloOKFrame)
		case method:
			if respond != nil {
				c.push(respond(req.ID)...)
			}
		}
	}
}
