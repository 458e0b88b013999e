// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldAttemptID = "attempt_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Connection fields
	FieldHost      = "host"
	FieldAddress   = "address"
	FieldStage     = "stage"
	FieldErrorCode = "error_code"
	FieldResult    = "result"

	// Media / stream fields
	FieldKind       = "kind"
	FieldResolution = "resolution"
	FieldFPS        = "fps"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
