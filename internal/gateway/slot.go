// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"encoding/json"
	"sync"
)

type outcome struct {
	result json.RawMessage
	err    error
}

// resultSlot is assigned at most once. The dispatch loop and the timeout
// guard race on settle; the loser is a no-op.
type resultSlot struct {
	once sync.Once
	done chan struct{}
	out  outcome
}

func newResultSlot() *resultSlot {
	return &resultSlot{done: make(chan struct{})}
}

func (s *resultSlot) settle(o outcome) bool {
	won := false
	s.once.Do(func() {
		s.out = o
		won = true
		close(s.done)
	})
	return won
}

func (s *resultSlot) Done() <-chan struct{} { return s.done }

// outcome must only be read after Done is closed.
func (s *resultSlot) outcome() outcome {
	<-s.done
	return s.out
}
