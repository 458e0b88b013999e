// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package controller runs one connection attempt per session: it resolves the
// host, drives the engine through bring-up, and turns whatever happens into a
// single Outcome.
package controller

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"time"

	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/ManuGH/limelight/internal/metrics"
	"github.com/ManuGH/limelight/internal/stream/engine"
	"github.com/ManuGH/limelight/internal/stream/resolve"
	"github.com/ManuGH/limelight/internal/stream/stage"
	"github.com/ManuGH/limelight/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ResolvingText is posted before the first stage starts.
const ResolvingText = "Resolving hostname..."

// DefaultStreamConfig is requested when no configuration is supplied.
var DefaultStreamConfig = engine.StreamConfig{Width: 1280, Height: 720, FPS: 30}

// AddressResolver starts an asynchronous hostname lookup.
type AddressResolver interface {
	Resolve(ctx context.Context, host string) *resolve.Pending
}

// Controller runs connection attempts against one engine.
type Controller struct {
	engine         engine.Engine
	resolver       AddressResolver
	stream         engine.StreamConfig
	connectTimeout time.Duration
	progress       stage.ProgressSink
	samples        SampleSink
	logger         zerolog.Logger
	tracer         trace.Tracer
}

// Option configures a Controller.
type Option func(*Controller)

// WithStreamConfig sets the requested resolution and frame rate.
func WithStreamConfig(cfg engine.StreamConfig) Option {
	return func(c *Controller) { c.stream = cfg }
}

// WithConnectTimeout bounds Connect through its context. Zero disables it.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Controller) { c.connectTimeout = d }
}

// WithProgress sets where progress text is posted.
func WithProgress(p stage.ProgressSink) Option {
	return func(c *Controller) { c.progress = p }
}

// WithSamples sets the destination for decoded samples.
func WithSamples(s SampleSink) Option {
	return func(c *Controller) { c.samples = s }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) { c.tracer = t }
}

// New creates a controller.
func New(eng engine.Engine, res AddressResolver, opts ...Option) *Controller {
	c := &Controller{
		engine:   eng,
		resolver: res,
		stream:   DefaultStreamConfig,
		samples:  discardSamples{},
		logger:   xglog.WithComponent("controller"),
		tracer:   telemetry.Tracer(telemetry.InstrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes one attempt on the calling goroutine and returns its outcome.
// Engine errors and panics are converted into the outcome.
func (c *Controller) Run(ctx context.Context, host string) Outcome {
	a := newAttempt(host, c.logger)
	ctx = xglog.ContextWithAttemptID(ctx, a.ID)
	a.logger = xglog.WithContext(ctx, c.logger).With().Str(xglog.FieldHost, host).Logger()

	ctx, span := c.tracer.Start(ctx, "stream.attempt",
		trace.WithAttributes(telemetry.AttemptAttributes(a.ID, host)...))
	defer span.End()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	a.tracker = stage.NewTracker(
		stage.WithProgress(c.progress),
		stage.WithObserver(spanObserver(span)),
		stage.WithLogger(a.logger),
	)

	a.logger.Info().Str(xglog.FieldEvent, "attempt.start").Msg("connection attempt started")
	c.step(a, EvStart)
	c.postProgress(ResolvingText)

	out := c.run(ctx, cancel, a)
	return c.finish(a, span, out)
}

func (c *Controller) run(ctx context.Context, cancel context.CancelCauseFunc, a *Attempt) Outcome {
	a.pending = c.resolver.Resolve(ctx, a.Host)
	addr, ok, waitErr := a.pending.Wait(ctx)
	lookupErr := a.pending.Err()
	a.pending = nil

	switch {
	case waitErr != nil || ctx.Err() != nil:
		c.step(a, EvAborted)
		return Outcome{Diagnostic: GenericDiagnostic, Err: context.Cause(ctx)}
	case !ok:
		c.step(a, EvResolveEmpty)
		err := fmt.Errorf("%w: %q", ErrHostUnresolved, a.Host)
		if lookupErr != nil {
			err = fmt.Errorf("%w: %q: %w", ErrHostUnresolved, a.Host, lookupErr)
		}
		return Outcome{Diagnostic: GenericDiagnostic, Err: err}
	}

	c.step(a, EvResolved)
	connErr := c.connect(ctx, a, addr)

	if f, failed := a.tracker.Failure(); failed {
		serr := &StageError{Stage: f.Stage, ErrorCode: f.ErrorCode, Text: f.Text}
		cancel(serr)
		c.step(a, EvStageFailed)
		return Outcome{Diagnostic: f.Text, Failure: &f, Address: addr, Err: serr}
	}
	if connErr != nil {
		if ctx.Err() != nil {
			c.step(a, EvAborted)
			return Outcome{Diagnostic: GenericDiagnostic, Address: addr, Err: context.Cause(ctx)}
		}
		c.step(a, EvConnectError)
		return Outcome{Diagnostic: GenericDiagnostic, Address: addr, Err: fmt.Errorf("%w: %w", ErrUncaught, connErr)}
	}

	c.step(a, EvConnected)
	return Outcome{Address: addr}
}

// connect calls the engine and recovers a panic into an error.
func (c *Controller) connect(ctx context.Context, a *Attempt, addr netip.Addr) (err error) {
	if c.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.connectTimeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("engine panic: %v", rec)
		}
	}()

	a.logger.Info().
		Str(xglog.FieldEvent, "attempt.connect").
		Str(xglog.FieldAddress, addr.String()).
		Str(xglog.FieldResolution, fmt.Sprintf("%dx%d", c.stream.Width, c.stream.Height)).
		Int(xglog.FieldFPS, c.stream.FPS).
		Msg("starting connection")

	return c.engine.Connect(ctx, addr, c.stream,
		&listener{tracker: a.tracker, logger: a.logger},
		&decoder{samples: c.samples, logger: a.logger},
		&audio{samples: c.samples},
	)
}

func (c *Controller) step(a *Attempt, ev EventKind) {
	if _, err := a.dispatch(ev); err != nil {
		a.logger.Error().Err(err).Str(xglog.FieldEvent, "attempt.illegal_transition").Msg("illegal attempt transition")
	}
}

func (c *Controller) postProgress(text string) {
	if c.progress != nil {
		c.progress.PostProgress(text)
	}
}

func (c *Controller) finish(a *Attempt, span trace.Span, out Outcome) Outcome {
	out.AttemptID = a.ID
	out.State = a.state
	out.Result = a.result
	if out.Result == "" {
		out.Result = ResultFailed
	}
	out.Duration = time.Since(a.started)

	var addr string
	if out.Address.IsValid() {
		addr = out.Address.String()
	}
	span.SetAttributes(telemetry.OutcomeAttributes(out.State.String(), string(out.Result), addr)...)
	if out.Err != nil {
		span.SetAttributes(telemetry.ErrorAttributes(errorType(out.Err))...)
		span.SetStatus(codes.Error, out.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	metrics.IncConnectAttempt(string(out.Result), out.State.String(), out.Duration)

	ev := a.logger.Info()
	if out.Err != nil {
		ev = a.logger.Warn().Err(out.Err)
	}
	ev.Str(xglog.FieldEvent, "attempt.done").
		Str(xglog.FieldResult, string(out.Result)).
		Str(xglog.FieldNewState, out.State.String()).
		Dur("took", out.Duration).
		Msg("connection attempt finished")
	return out
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrStageFailed):
		return "stage_failed"
	case errors.Is(err, ErrHostUnresolved):
		return "host_unresolved"
	case errors.Is(err, ErrUncaught):
		return "uncaught"
	default:
		return "aborted"
	}
}

func spanObserver(span trace.Span) stage.Observer {
	return func(ev stage.Event) {
		span.AddEvent("stage."+ev.Kind.String(), trace.WithAttributes(
			telemetry.StageAttributes(ev.Stage.String(), int(ev.Stage), ev.Kind == stage.KindFailed, ev.ErrorCode)...,
		))
	}
}
