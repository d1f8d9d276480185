// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Clock abstracts time for the timeout guard.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer is the subset of *time.Timer the guard needs.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTimer(d time.Duration) Timer { return realTimer{time.NewTimer(d)} }

type realTimer struct{ t *time.Timer }

func (r realTimer) C() <-chan time.Time { return r.t.C }
func (r realTimer) Stop() bool { return r.t.Stop() }

// guard fires onFire once if the budget elapses or ctx ends before disarm.
type guard struct {
	timer    Timer
	stop     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once
}

func armGuard(ctx context.Context, clk Clock, budget time.Duration, onFire func(cause error)) *guard {
	g := &guard{
		timer:  clk.NewTimer(budget),
		stop:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go func() {
		defer close(g.exited)
		select {
		case <-g.timer.C():
			onFire(fmt.Errorf("budget of %s elapsed", budget))
		case <-ctx.Done():
			onFire(ctx.Err())
		case <-g.stop:
		}
	}()
	return g
}

// disarm cancels the countdown and waits for the guard goroutine to exit.
func (g *guard) disarm() {
	g.stopOnce.Do(func() {
		g.timer.Stop()
		close(g.stop)
	})
	<-g.exited
}
