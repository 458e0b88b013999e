// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by attempt spans.
const (
	AttemptIDKey     = "attempt.id"
	AttemptHostKey   = "attempt.host"
	AttemptAddrKey   = "attempt.address"
	AttemptResultKey = "attempt.result"
	AttemptStateKey  = "attempt.state"

	StageNameKey      = "stage.name"
	StageIDKey        = "stage.id"
	StageErrorCodeKey = "stage.error_code"

	StreamResolutionKey = "stream.resolution"
	StreamFPSKey        = "stream.fps"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// AttemptAttributes describes a connection attempt. Empty values are omitted.
func AttemptAttributes(id, host string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if id != "" {
		attrs = append(attrs, attribute.String(AttemptIDKey, id))
	}
	if host != "" {
		attrs = append(attrs, attribute.String(AttemptHostKey, host))
	}
	return attrs
}

// StageAttributes describes a stage event. The error code is only attached
// for failures.
func StageAttributes(name string, id int, failed bool, errorCode int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(StageNameKey, name),
		attribute.Int(StageIDKey, id),
	}
	if failed {
		attrs = append(attrs, attribute.Int(StageErrorCodeKey, errorCode))
	}
	return attrs
}

// OutcomeAttributes records how the attempt ended.
func OutcomeAttributes(state, result, address string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttemptStateKey, state),
		attribute.String(AttemptResultKey, result),
	}
	if address != "" {
		attrs = append(attrs, attribute.String(AttemptAddrKey, address))
	}
	return attrs
}

// ErrorAttributes marks a span as errored with a coarse type.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
