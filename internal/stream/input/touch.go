// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package input turns touch gestures into mouse commands for the host.
package input

import (
	"context"
	"math"
	"sync"
	"time"

	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/ManuGH/limelight/internal/stream/engine"
	"github.com/rs/zerolog"
)

// DefaultClickHold is how long a tap holds the button down. Some games poll
// input and miss shorter clicks.
const DefaultClickHold = 100 * time.Millisecond

// TouchRelay maps one touch pointer onto the host mouse: a drag moves the
// cursor, a tap without movement clicks the left button.
type TouchRelay struct {
	sender engine.InputSender
	hold   time.Duration
	sleep  func(ctx context.Context, d time.Duration)
	logger zerolog.Logger

	mu    sync.Mutex
	moved bool
}

// Option configures a TouchRelay.
type Option func(*TouchRelay)

// WithClickHold overrides the press duration of a tap.
func WithClickHold(d time.Duration) Option {
	return func(r *TouchRelay) { r.hold = d }
}

// WithSleep replaces the hold timer, mainly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration)) Option {
	return func(r *TouchRelay) { r.sleep = fn }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *TouchRelay) { r.logger = l }
}

// NewTouchRelay creates a relay sending to sender.
func NewTouchRelay(sender engine.InputSender, opts ...Option) *TouchRelay {
	r := &TouchRelay{
		sender: sender,
		hold:   DefaultClickHold,
		sleep:  sleepCtx,
		logger: xglog.WithComponent("input"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Down starts a gesture.
func (r *TouchRelay) Down() {
	r.mu.Lock()
	r.moved = false
	r.mu.Unlock()
}

// Move forwards a relative pointer movement. A zero delta is ignored and
// does not turn the gesture into a drag.
func (r *TouchRelay) Move(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	r.mu.Lock()
	r.moved = true
	r.mu.Unlock()
	r.sender.SendMouseMoveEvent(clamp16(dx), clamp16(dy))
}

// Up ends a gesture. Without movement it clicks: press, hold, release.
// It blocks for the hold duration. The release is sent even if ctx ends early.
func (r *TouchRelay) Up(ctx context.Context) {
	r.mu.Lock()
	moved := r.moved
	r.moved = false
	r.mu.Unlock()
	if moved {
		return
	}

	r.sender.SendMouseButtonEvent(engine.MousePress, engine.MouseLeft)
	r.sleep(ctx, r.hold)
	r.sender.SendMouseButtonEvent(engine.MouseRelease, engine.MouseLeft)
	r.logger.Debug().Str(xglog.FieldEvent, "input.tap").Msg("tap sent as click")
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func clamp16(v float64) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(math.Round(v))
	}
}
