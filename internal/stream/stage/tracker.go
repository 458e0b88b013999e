// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stage

import (
	"sync"

	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/ManuGH/limelight/internal/metrics"
	"github.com/rs/zerolog"
)

// ProgressSink receives progress text for display.
// PostProgress must not block: the caller is the engine's callback goroutine.
type ProgressSink interface {
	PostProgress(text string)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(text string)

func (f ProgressFunc) PostProgress(text string) { f(text) }

// Observer is notified of every stage event, in callback order.
type Observer func(Event)

// Failure is the authoritative stage failure of an attempt.
type Failure struct {
	Stage     Stage
	ErrorCode int
	Text      string
}

// Tracker records stage progress for one connection attempt.
// The first failure with a known stage wins; later ones are observed but
// never change the recorded failure.
type Tracker struct {
	mu         sync.Mutex
	failure    Failure
	failed     bool
	suppressed int
	events     []Event

	progress ProgressSink
	observer Observer
	logger   zerolog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithProgress sets the sink that receives progress text.
func WithProgress(p ProgressSink) Option {
	return func(t *Tracker) { t.progress = p }
}

// WithObserver registers a hook that sees every event.
func WithObserver(o Observer) Option {
	return func(t *Tracker) { t.observer = o }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// NewTracker creates a tracker for a single attempt.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		logger: xglog.WithComponent("stage"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnStageStarting hands the stage's progress text to the progress sink.
func (t *Tracker) OnStageStarting(s Stage) {
	t.record(Event{Stage: s, Kind: KindStarting})

	text := ProgressText(s)
	t.logger.Debug().
		Str(xglog.FieldEvent, "stage.starting").
		Str(xglog.FieldStage, s.String()).
		Msg("stage starting")
	if text != "" && t.progress != nil {
		t.progress.PostProgress(text)
	}
}

// OnStageComplete is a hook for observers only; it never affects the outcome.
func (t *Tracker) OnStageComplete(s Stage) {
	t.record(Event{Stage: s, Kind: KindComplete})
}

// OnStageFailed records the failure if it is the first one of the attempt.
func (t *Tracker) OnStageFailed(s Stage, code int) {
	t.record(Event{Stage: s, Kind: KindFailed, ErrorCode: code})

	text := FailureText(s, code)
	if text == "" {
		t.logger.Warn().
			Str(xglog.FieldEvent, "stage.failed_unknown").
			Int(xglog.FieldStage, int(s)).
			Int(xglog.FieldErrorCode, code).
			Msg("failure reported for unknown stage")
		return
	}

	t.mu.Lock()
	if t.failed {
		t.suppressed++
		t.mu.Unlock()
		metrics.IncStageFailureSuppressed()
		t.logger.Debug().
			Str(xglog.FieldEvent, "stage.failed_suppressed").
			Str(xglog.FieldStage, s.String()).
			Int(xglog.FieldErrorCode, code).
			Msg("later stage failure ignored")
		return
	}
	t.failure = Failure{Stage: s, ErrorCode: code, Text: text}
	t.failed = true
	t.mu.Unlock()

	metrics.IncStageFailure(s.String())
	t.logger.Warn().
		Str(xglog.FieldEvent, "stage.failed").
		Str(xglog.FieldStage, s.String()).
		Int(xglog.FieldErrorCode, code).
		Msg(text)
}

// HasFailure reports whether a stage failure has been recorded.
func (t *Tracker) HasFailure() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// Failure returns the recorded failure, if any.
func (t *Tracker) Failure() (Failure, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failure, t.failed
}

// FailureText returns the recorded diagnostic, or "" when no stage failed.
func (t *Tracker) FailureText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failure.Text
}

// Suppressed returns how many failures arrived after the recorded one.
func (t *Tracker) Suppressed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.suppressed
}

// Events returns a copy of every event observed so far.
func (t *Tracker) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

func (t *Tracker) record(ev Event) {
	t.mu.Lock()
	t.events = append(t.events, ev)
	t.mu.Unlock()

	metrics.IncStageEvent(ev.Stage.String(), ev.Kind.String())
	if t.observer != nil {
		t.observer(ev)
	}
}
