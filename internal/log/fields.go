// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID     = "session_id"
	FieldCorrelationID = "correlation_id"
	FieldRequestID     = "request_id"
	FieldPrincipalID   = "principal_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Gateway fields
	FieldGatewayMethod = "gateway_method"
	FieldGatewayURL    = "gateway_url"
	FieldPhase         = "phase"
	FieldOutcome       = "outcome"
	FieldBudget        = "budget"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// HTTP fields
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldDuration   = "duration"
	FieldRemoteAddr = "remote_addr"
)
