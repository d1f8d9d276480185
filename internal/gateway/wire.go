// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// Frame discriminants and fixed protocol values.
const (
	FrameEvent    = "event"
	FrameResponse = "res"
	FrameRequest  = "req"

	MethodChallenge = "connect.challenge"
	MethodConnect   = "connect"

	StatusHelloOK = "hello-ok"
	ClientTypeAPI = "api"
)

// Drop reasons reported to dashboard_gateway_frames_dropped_total.
const (
	dropMalformed   = "malformed"
	dropUnknownType = "unknown_type"
	dropUnexpected  = "unexpected"
	dropUnmatchedID = "unmatched_id"
)

// Request is the only outbound frame shape.
type Request struct {
	Type   string          `json:"type"`
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ConnectParams answers the connect.challenge event.
type ConnectParams struct {
	ClientType string `json:"clientType"`
	Token      string `json:"token"`
	Name       string `json:"name"`
}

// ErrorPayload is the error member of a response. Gateways send either an
// object with code and message or a bare string.
type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// UnmarshalJSON accepts {"code":..,"message":..}, a numeric code, or a bare string.
func (e *ErrorPayload) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &e.Message)
	}
	var obj struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	e.Message = obj.Message
	if len(obj.Code) > 0 && string(obj.Code) != "null" {
		var s string
		if err := json.Unmarshal(obj.Code, &s); err == nil {
			e.Code = s
		} else {
			e.Code = string(obj.Code)
		}
	}
	return nil
}

// Inbound is a decoded Gateway frame: either a server-pushed event or a response.
type Inbound struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Event   string          `json:"event,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *ErrorPayload   `json:"error,omitempty"`
}

// Name returns the event name; some Gateway builds put it in "event" instead of "method".
func (in Inbound) Name() string {
	if in.Method != "" {
		return in.Method
	}
	return in.Event
}

// Body returns the response result, falling back to "payload".
func (in Inbound) Body() json.RawMessage {
	if len(in.Result) > 0 {
		return in.Result
	}
	return in.Payload
}

func (in Inbound) isChallenge() bool {
	return in.Type == FrameEvent && in.Name() == MethodChallenge
}

func (in Inbound) isHelloOK() bool {
	if in.Type != FrameResponse || in.Error != nil {
		return false
	}
	var ack struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(in.Body(), &ack); err != nil {
		return false
	}
	return ack.Status == StatusHelloOK
}

var errFrameShape = errors.New("frame does not match any known shape")

// decodeInbound parses one frame. A non-nil error comes with the drop reason.
func decodeInbound(data []byte) (Inbound, string, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, dropMalformed, err
	}
	switch in.Type {
	case FrameEvent:
		if in.Name() == "" {
			return Inbound{}, dropMalformed, errFrameShape
		}
	case FrameResponse:
		if len(in.Body()) == 0 && in.Error == nil {
			return Inbound{}, dropMalformed, errFrameShape
		}
	default:
		return Inbound{}, dropUnknownType, errors.New("unknown frame type " + strconv.Quote(in.Type))
	}
	return in, "", nil
}

func encodeParams(params any) (json.RawMessage, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if !json.Valid(p) {
			return nil, errors.New("params are not valid JSON")
		}
		return p, nil
	default:
		return json.Marshal(p)
	}
}
