// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"encoding/json"
	"time"
)

// pendingRequest is the single outstanding domain request of a session.
type pendingRequest struct {
	id       string
	method   string
	issuedAt time.Time
}

func issue(method string, params json.RawMessage, id string, now time.Time) (*pendingRequest, Request) {
	p := &pendingRequest{id: id, method: method, issuedAt: now}
	return p, Request{Type: FrameRequest, ID: id, Method: method, Params: params}
}

// onFrame resolves on the response carrying the pending id. Anything else is ignored.
func (p *pendingRequest) onFrame(in Inbound) step {
	if in.Type != FrameResponse {
		return step{drop: dropUnexpected}
	}
	if in.ID != p.id {
		return step{drop: dropUnmatchedID}
	}
	if in.Error != nil {
		return step{err: &CallError{
			Kind:    KindUpstream,
			Method:  p.method,
			Phase:   StateReady,
			Code:    in.Error.Code,
			Message: in.Error.Message,
		}}
	}
	return step{resolved: true, result: in.Body()}
}
