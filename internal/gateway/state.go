// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

// State is the lifecycle phase of a Session.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateAuthenticating
	StateReady
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateClosed || s == StateFailed
}

// canAdvance allows one step forward along the happy path, or a jump to a
// terminal state from any non-terminal one.
func (s State) canAdvance(to State) bool {
	if s.Terminal() {
		return false
	}
	switch to {
	case StateClosed, StateFailed:
		return true
	default:
		return to == s+1
	}
}
