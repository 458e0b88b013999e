// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package controller

// Transition is a single allowed edge in the attempt state machine.
type Transition struct {
	From   State
	To     State
	Event  EventKind
	Result Result // set on edges into a terminal state
}

var transitionsTable = []Transition{
	{From: StateIdle, To: StateResolving, Event: EvStart},

	// Resolution
	{From: StateResolving, To: StateConnecting, Event: EvResolved},
	{From: StateResolving, To: StateFailed, Event: EvResolveEmpty, Result: ResultHostUnresolved},
	{From: StateResolving, To: StateCancelled, Event: EvAborted, Result: ResultFailed},

	// Connect
	{From: StateConnecting, To: StateSucceeded, Event: EvConnected, Result: ResultSucceeded},
	{From: StateConnecting, To: StateCancelled, Event: EvStageFailed, Result: ResultFailed},
	{From: StateConnecting, To: StateFailed, Event: EvConnectError, Result: ResultFailed},
	{From: StateConnecting, To: StateCancelled, Event: EvAborted, Result: ResultFailed},
}

// TransitionFor returns the allowed transition for a given state+event.
func TransitionFor(from State, ev EventKind) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}
