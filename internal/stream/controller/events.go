// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package controller

// EventKind drives the attempt state machine.
type EventKind int

const (
	EvUnknown EventKind = iota
	EvStart
	EvResolved
	EvResolveEmpty
	EvConnected
	EvStageFailed
	EvConnectError // error or panic out of the engine with no stage failure
	EvAborted      // caller's context ended
)

func (e EventKind) String() string {
	switch e {
	case EvStart:
		return "start"
	case EvResolved:
		return "resolved"
	case EvResolveEmpty:
		return "resolve_empty"
	case EvConnected:
		return "connected"
	case EvStageFailed:
		return "stage_failed"
	case EvConnectError:
		return "connect_error"
	case EvAborted:
		return "aborted"
	default:
		return "unknown"
	}
}
