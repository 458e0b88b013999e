// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package controller

import (
	"time"

	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/ManuGH/limelight/internal/stream/resolve"
	"github.com/ManuGH/limelight/internal/stream/stage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Attempt is the per-attempt context. It is owned by the worker goroutine
// and discarded once the outcome has been produced.
type Attempt struct {
	ID      string
	Host    string
	started time.Time

	state   State
	result  Result
	pending *resolve.Pending
	tracker *stage.Tracker
	logger  zerolog.Logger
}

func newAttempt(host string, logger zerolog.Logger) *Attempt {
	return &Attempt{
		ID:      uuid.NewString(),
		Host:    host,
		started: time.Now(),
		state:   StateIdle,
		logger:  logger,
	}
}

// State returns the current state.
func (a *Attempt) State() State { return a.state }

// dispatch applies ev to the attempt. An illegal event still moves the
// attempt into a terminal state in production builds.
func (a *Attempt) dispatch(ev EventKind) (Transition, error) {
	var (
		tr  Transition
		ok  bool
		err error
	)
	if !a.state.IsTerminal() {
		tr, ok = TransitionFor(a.state, ev)
	}
	if !ok {
		tr, err = illegalTransition(a.state, ev)
	}

	a.logger.Debug().
		Str(xglog.FieldEvent, "attempt.transition").
		Str(xglog.FieldOldState, a.state.String()).
		Str(xglog.FieldNewState, tr.To.String()).
		Str("trigger", ev.String()).
		Msg("attempt state changed")

	a.state = tr.To
	if tr.Result != "" {
		a.result = tr.Result
	}
	return tr, err
}
