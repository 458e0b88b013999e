// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package stage models the ordered bring-up stages reported by the streaming
// engine and tracks their progress for a single connection attempt.
package stage

import "strconv"

// Stage is one discrete step of session bring-up.
// Values match the engine's wire ids and are totally ordered.
type Stage int

const (
	None Stage = iota
	PlatformInit
	Handshake
	ControlStreamInit
	VideoStreamInit
	AudioStreamInit
	InputStreamInit
	ControlStreamStart
	VideoStreamStart
	AudioStreamStart
	InputStreamStart
	Max
)

// Valid reports whether s is a real stage (not a range bound).
func (s Stage) Valid() bool {
	return s > None && s < Max
}

// String returns a stable snake_case name, used for logs and metric labels.
func (s Stage) String() string {
	if s.Valid() {
		return table[s].name
	}
	switch s {
	case None:
		return "none"
	case Max:
		return "max"
	default:
		return "stage_" + strconv.Itoa(int(s))
	}
}

// All returns the ten real stages in bring-up order.
func All() []Stage {
	out := make([]Stage, 0, int(Max)-1)
	for s := PlatformInit; s < Max; s++ {
		out = append(out, s)
	}
	return out
}

// Kind is the type of a stage event.
type Kind int

const (
	KindStarting Kind = iota + 1
	KindComplete
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindStarting:
		return "starting"
	case KindComplete:
		return "complete"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is a single stage callback observed from the engine.
// ErrorCode is only meaningful for KindFailed.
type Event struct {
	Stage     Stage
	Kind      Kind
	ErrorCode int
}
