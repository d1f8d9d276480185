// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrTransport      = errors.New("gateway: connection failed or dropped")
	ErrAuthentication = errors.New("gateway: authentication failed")
	ErrTimeout        = errors.New("gateway: call budget exceeded")
	ErrUpstream       = errors.New("gateway: upstream returned an error")
	ErrProtocol       = errors.New("gateway: protocol violation")

	// ErrNotConfigured is wrapped into a transport failure when no endpoint is set.
	ErrNotConfigured = errors.New("gateway: endpoint not configured")
)

// Kind classifies a failed call.
type Kind string

const (
	KindTransport      Kind = "transport"
	KindAuthentication Kind = "authentication"
	KindTimeout        Kind = "timeout"
	KindUpstream       Kind = "upstream"
	KindProtocol       Kind = "protocol"
)

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindAuthentication:
		return ErrAuthentication
	case KindTimeout:
		return ErrTimeout
	case KindUpstream:
		return ErrUpstream
	default:
		return ErrProtocol
	}
}

// CallError is the single typed failure returned by Client.Call.
type CallError struct {
	Kind    Kind
	Method  string
	Phase   State  // session state when the call failed
	Code    string // Gateway error code (upstream and rejected handshakes)
	Message string
	Err     error // lower-level cause, e.g. a dial error or context.DeadlineExceeded
}

func (e *CallError) Error() string {
	msg := fmt.Sprintf("gateway: %s: %s failure during %s", e.Method, e.Kind, e.Phase)
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *CallError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// KindOf reports the failure kind of err, or "" when err is not a gateway failure.
func KindOf(err error) Kind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
