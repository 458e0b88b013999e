// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package controller

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var allStates = []State{StateIdle, StateResolving, StateConnecting, StateSucceeded, StateFailed, StateCancelled}

var allEvents = []EventKind{EvStart, EvResolved, EvResolveEmpty, EvConnected, EvStageFailed, EvConnectError, EvAborted}

func TestTransitionTable_Coverage(t *testing.T) {
	seen := map[State]map[EventKind]struct{}{}
	for _, tr := range transitionsTable {
		if _, ok := seen[tr.From]; !ok {
			seen[tr.From] = map[EventKind]struct{}{}
		}
		if _, dup := seen[tr.From][tr.Event]; dup {
			t.Fatalf("duplicate transition: %s + %s", tr.From, tr.Event)
		}
		seen[tr.From][tr.Event] = struct{}{}

		require.False(t, tr.From.IsTerminal(), "transition out of terminal state %s", tr.From)
		if tr.To.IsTerminal() {
			require.NotEmpty(t, tr.Result, "terminal edge %s + %s must carry a result", tr.From, tr.Event)
		} else {
			require.Empty(t, tr.Result, "non-terminal edge %s + %s must not carry a result", tr.From, tr.Event)
		}
	}

	for _, s := range allStates {
		for _, ev := range allEvents {
			_, ok := TransitionFor(s, ev)
			_, want := seen[s][ev]
			require.Equal(t, want, ok, "%s + %s", s, ev)
		}
	}
}

func TestTransitionTable_Paths(t *testing.T) {
	tests := []struct {
		name       string
		events     []EventKind
		wantState  State
		wantResult Result
	}{
		{"success", []EventKind{EvStart, EvResolved, EvConnected}, StateSucceeded, ResultSucceeded},
		{"stage failure", []EventKind{EvStart, EvResolved, EvStageFailed}, StateCancelled, ResultFailed},
		{"uncaught", []EventKind{EvStart, EvResolved, EvConnectError}, StateFailed, ResultFailed},
		{"unresolved", []EventKind{EvStart, EvResolveEmpty}, StateFailed, ResultHostUnresolved},
		{"aborted while resolving", []EventKind{EvStart, EvAborted}, StateCancelled, ResultFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAttempt("host", testLogger())
			for _, ev := range tt.events {
				_, err := a.dispatch(ev)
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantState, a.State())
			require.Equal(t, tt.wantResult, a.result)
		})
	}
}

func TestStateStrings(t *testing.T) {
	require.Equal(t, "IDLE", StateIdle.String())
	require.Equal(t, "CANCELLED", StateCancelled.String())
	require.Equal(t, "UNKNOWN", State(99).String())
	require.Equal(t, "resolve_empty", EvResolveEmpty.String())
}
