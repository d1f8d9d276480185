// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultSlot_FirstWriterWins(t *testing.T) {
	s := newResultSlot()
	require.True(t, s.settle(outcome{result: json.RawMessage(`1`)}))
	assert.False(t, s.settle(outcome{err: errors.New("late")}))

	out := s.outcome()
	assert.NoError(t, out.err)
	assert.Equal(t, json.RawMessage(`1`), out.result)
}

func TestResultSlot_ConcurrentSettle(t *testing.T) {
	s := newResultSlot()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.settle(outcome{}) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestGuard_FiresOnBudget(t *testing.T) {
	clk := newFakeClock()
	fired := make(chan error, 2)
	g := armGuard(t.Context(), clk, time.Second, func(cause error) { fired <- cause })
	<-clk.armed

	clk.Advance(time.Second)
	select {
	case cause := <-fired:
		assert.Contains(t, cause.Error(), "1s")
	case <-time.After(time.Second):
		t.Fatal("guard did not fire")
	}
	g.disarm()
	g.disarm()
	assert.Empty(t, fired)
}

func TestGuard_DisarmPreventsFiring(t *testing.T) {
	clk := newFakeClock()
	var calls atomic.Int32
	g := armGuard(t.Context(), clk, time.Second, func(error) { calls.Add(1) })
	<-clk.armed

	g.disarm()
	clk.Advance(time.Hour)
	assert.Equal(t, int32(0), calls.Load())
}
