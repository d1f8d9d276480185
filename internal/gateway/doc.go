// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package gateway implements the client side of the Gateway RPC protocol.
//
// Every call owns exactly one transport session: the client dials the
// Gateway, answers the connect.challenge event with a connect request carrying
// its credential, waits for the hello-ok acknowledgement, issues a single
// correlated domain request and closes the session once the result slot is
// settled. A timeout guard armed before dialing bounds the whole sequence.
//
// The protocol is driven by one dispatch loop per call over an explicit
// session state machine:
//
//	Idle -> Connecting -> Authenticating -> Ready -> Closed
//	  \__________\______________\____________\-----> Failed
//
// Failures are reported as *CallError values that match one of the sentinel
// errors ErrTransport, ErrAuthentication, ErrTimeout, ErrUpstream or
// ErrProtocol under errors.Is.
package gateway
