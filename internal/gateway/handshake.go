// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"encoding/json"
)

// step is what the dispatch loop does with one decoded frame.
type step struct {
	send     *Request
	ready    bool
	resolved bool
	result   json.RawMessage
	err      *CallError
	drop     string
}

// handshake answers the challenge and waits for hello-ok. The acknowledgement
// is matched structurally; the Gateway does not echo the connect id on it.
type handshake struct {
	cred       Credential
	newID      func() string
	challenged bool
	connectID  string
}

func newHandshake(cred Credential, newID func() string) *handshake {
	return &handshake{cred: cred, newID: newID}
}

func (h *handshake) onFrame(in Inbound) step {
	if !h.challenged {
		if !in.isChallenge() {
			return step{drop: dropUnexpected}
		}
		h.challenged = true
		h.connectID = h.newID()
		params, _ := json.Marshal(ConnectParams{
			ClientType: ClientTypeAPI,
			Token:      h.cred.Token,
			Name:       h.cred.ClientName,
		})
		return step{send: &Request{Type: FrameRequest, ID: h.connectID, Method: MethodConnect, Params: params}}
	}

	if in.Type != FrameResponse {
		return step{drop: dropUnexpected}
	}
	if in.Error != nil && (in.ID == "" || in.ID == h.connectID) {
		return step{err: &CallError{
			Kind:    KindAuthentication,
			Method:  MethodConnect,
			Phase:   StateAuthenticating,
			Code:    in.Error.Code,
			Message: orDefault(in.Error.Message, "connect rejected"),
		}}
	}
	if in.isHelloOK() {
		return step{ready: true}
	}
	return step{drop: dropUnexpected}
}

// closedMessage describes a session that ended before hello-ok.
func (h *handshake) closedMessage() string {
	if !h.challenged {
		return "challenge never arrived"
	}
	return "connection closed before authentication complete"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
