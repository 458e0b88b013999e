// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package session ties one streaming view to one connection attempt: it
// starts the attempt on entry, shows progress, and reacts to the outcome on
// the UI dispatcher.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/ManuGH/limelight/internal/params"
	"github.com/ManuGH/limelight/internal/stream/accessory"
	"github.com/ManuGH/limelight/internal/stream/controller"
	"github.com/ManuGH/limelight/internal/stream/engine"
	"github.com/ManuGH/limelight/internal/stream/sink"
	"github.com/ManuGH/limelight/internal/stream/stage"
	"github.com/rs/zerolog"
)

// FailureTitle heads the dialog shown for a stage failure.
const FailureTitle = "Failure Starting Connection"

// ErrAlreadyEntered is returned by Enter while a session is active.
var ErrAlreadyEntered = errors.New("session already entered")

const progressKey = "progress"

// View is the presentation side of a session. All methods are called on
// the dispatcher goroutine. Acknowledge may block until the user confirms.
type View interface {
	ShowProgress(text string)
	HideProgress()
	ShowStream()
	Acknowledge(title, message string)
	NavigateToSetup()
}

// Lifecycle drives a session view.
type Lifecycle struct {
	store      params.Store
	view       View
	dispatcher *Dispatcher
	engine     engine.Engine
	resolver   controller.AddressResolver

	accessory *accessory.Manager
	surface   sink.Surface
	sinkOpts  []sink.Option
	ctrlOpts  []controller.Option
	onOutcome func(controller.Outcome)
	logger    zerolog.Logger

	mu     sync.Mutex
	active *entry
	ready  atomic.Bool
}

// entry is the state of one Enter..Leave span.
type entry struct {
	sink      *sink.Sink
	worker    *controller.Worker
	cancel    context.CancelFunc
	left      bool
	presented bool

	// closed once the accessory attempt of this entry returned
	accessoryDone chan struct{}
}

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithAccessory sets the accessory connected on entry.
func WithAccessory(m *accessory.Manager) Option {
	return func(l *Lifecycle) { l.accessory = m }
}

// WithSurface sets where samples are presented once the stream is shown.
func WithSurface(s sink.Surface) Option {
	return func(l *Lifecycle) { l.surface = s }
}

// WithSinkOptions configures the per-session sink.
func WithSinkOptions(opts ...sink.Option) Option {
	return func(l *Lifecycle) { l.sinkOpts = append(l.sinkOpts, opts...) }
}

// WithControllerOptions configures the per-session controller.
func WithControllerOptions(opts ...controller.Option) Option {
	return func(l *Lifecycle) { l.ctrlOpts = append(l.ctrlOpts, opts...) }
}

// WithOutcomeHook is called on the dispatcher after the view reacted.
func WithOutcomeHook(fn func(controller.Outcome)) Option {
	return func(l *Lifecycle) { l.onOutcome = fn }
}

// WithLogger overrides the component logger.
func WithLogger(lg zerolog.Logger) Option {
	return func(l *Lifecycle) { l.logger = lg }
}

// New creates a lifecycle. The dispatcher must be run by the caller.
func New(store params.Store, view View, d *Dispatcher, eng engine.Engine, res controller.AddressResolver, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		store:      store,
		view:       view,
		dispatcher: d,
		engine:     eng,
		resolver:   res,
		logger:     xglog.WithComponent("session"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Enter starts the session: it reads the host parameter, prepares the sink,
// starts the connection attempt and then tries the accessory. The attempt
// never waits for the accessory.
func (l *Lifecycle) Enter(ctx context.Context) error {
	l.mu.Lock()
	if l.active != nil {
		l.mu.Unlock()
		return ErrAlreadyEntered
	}

	host := l.host(ctx)
	runCtx, cancel := context.WithCancel(ctx)
	e := &entry{
		sink:          sink.New(l.sinkOpts...),
		cancel:        cancel,
		accessoryDone: make(chan struct{}),
	}
	l.active = e
	l.ready.Store(false)

	opts := append([]controller.Option{}, l.ctrlOpts...)
	opts = append(opts,
		controller.WithProgress(stage.ProgressFunc(func(text string) { l.postProgress(e, text) })),
		controller.WithSamples(e.sink),
	)
	ctrl := controller.New(l.engine, l.resolver, opts...)

	l.logger.Info().
		Str(xglog.FieldEvent, "session.enter").
		Str(xglog.FieldHost, host).
		Msg("session entered")

	e.worker = ctrl.Start(runCtx, host, func(out controller.Outcome) {
		if !l.dispatcher.Post(func() { l.present(e, out) }) {
			l.logger.Warn().Str(xglog.FieldEvent, "session.outcome_dropped").Msg("dispatcher closed before outcome")
		}
	})
	l.mu.Unlock()

	l.accessory.ConnectBestEffort(runCtx)
	close(e.accessoryDone)
	return nil
}

// Leave tears the session down: pending UI reactions are ignored, the sink
// is closed and the worker is awaited. Leave is a no-op when not entered.
func (l *Lifecycle) Leave() {
	l.mu.Lock()
	e := l.active
	l.active = nil
	if e != nil {
		e.left = true
	}
	l.mu.Unlock()
	if e == nil {
		return
	}

	e.cancel()
	_ = e.sink.Close()
	e.worker.Wait()
	<-e.accessoryDone
	l.accessory.Close()
	l.ready.Store(false)

	l.logger.Info().Str(xglog.FieldEvent, "session.leave").Msg("session left")
}

// Ready reports whether the stream is being shown.
func (l *Lifecycle) Ready() bool {
	return l.ready.Load()
}

func (l *Lifecycle) host(ctx context.Context) string {
	host, err := l.store.Get(ctx, params.KeyHost)
	if err != nil {
		// An empty host fails resolution and takes the normal failure path.
		ev := l.logger.Error()
		if errors.Is(err, params.ErrNotFound) {
			ev = l.logger.Warn()
		}
		ev.Err(err).Str(xglog.FieldEvent, "session.host_missing").Msg("no host parameter")
		return ""
	}
	return host
}

func (l *Lifecycle) postProgress(e *entry, text string) {
	l.dispatcher.PostLatest(progressKey, func() {
		if l.current(e) {
			l.view.ShowProgress(text)
		}
	})
}

// current reports whether e is still the active, undecided entry.
func (l *Lifecycle) current(e *entry) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active == e && !e.left && !e.presented
}

// present runs on the dispatcher.
func (l *Lifecycle) present(e *entry, out controller.Outcome) {
	l.mu.Lock()
	stale := l.active != e || e.left || e.presented
	e.presented = true
	l.mu.Unlock()
	if stale {
		l.logger.Debug().
			Str(xglog.FieldEvent, "session.outcome_stale").
			Str(xglog.FieldAttemptID, out.AttemptID).
			Msg("ignoring outcome for a left session")
		return
	}

	l.view.HideProgress()

	switch {
	case out.Succeeded():
		if l.surface != nil {
			if err := e.sink.Attach(l.surface); err != nil {
				l.logger.Warn().Err(err).Str(xglog.FieldEvent, "session.attach_failed").Msg("surface not attached")
			}
		}
		l.ready.Store(true)
		l.view.ShowStream()
	case out.StageFailure():
		l.view.Acknowledge(FailureTitle, out.Diagnostic)
		l.view.NavigateToSetup()
	default:
		l.view.Acknowledge("", controller.GenericDiagnostic)
		l.view.NavigateToSetup()
	}

	l.logger.Info().
		Str(xglog.FieldEvent, "session.outcome").
		Str(xglog.FieldAttemptID, out.AttemptID).
		Str(xglog.FieldResult, string(out.Result)).
		Msg("session outcome presented")

	if l.onOutcome != nil {
		l.onOutcome(out)
	}
}
