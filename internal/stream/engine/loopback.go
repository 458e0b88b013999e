// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package engine

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"sync"
	"time"

	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/ManuGH/limelight/internal/stream/stage"
	"github.com/rs/zerolog"
)

// ErrConnectFailed is returned by Connect when bring-up did not complete.
var ErrConnectFailed = errors.New("connection start failed")

// LoopbackOptions scripts the behaviour of a Loopback engine.
type LoopbackOptions struct {
	// FailStage makes bring-up fail at this stage with FailCode.
	// stage.None means every stage succeeds.
	FailStage stage.Stage
	FailCode  int
	// Cascade reports an extra failure for the following stage after the first one.
	Cascade bool
	// ConnectErr is returned from Connect after all stages succeed.
	ConnectErr error
	// StageDelay is slept before each stage completes.
	StageDelay time.Duration
	// VideoUnits and AudioSamples are emitted after the connection starts.
	VideoUnits   int
	AudioSamples int
	// SampleInterval spaces emitted samples; zero emits back to back.
	SampleInterval time.Duration
}

// InputEvent is an input command recorded by Loopback.
type InputEvent struct {
	Button bool
	Action MouseButtonAction
	Which  MouseButton
	DX, DY int16
}

// Loopback is an in-process Engine that walks all stages without a network.
// It backs the CLI demo and the tests.
type Loopback struct {
	opts   LoopbackOptions
	logger zerolog.Logger

	mu       sync.Mutex
	connects int
	lastAddr netip.Addr
	inputs   []InputEvent

	wg   sync.WaitGroup
	stop chan struct{}
	once sync.Once
}

// NewLoopback creates a loopback engine.
func NewLoopback(opts LoopbackOptions) *Loopback {
	return &Loopback{
		opts:   opts,
		logger: xglog.WithComponent("engine.loopback"),
		stop:   make(chan struct{}),
	}
}

// Connect implements Engine.
func (l *Loopback) Connect(ctx context.Context, addr netip.Addr, cfg StreamConfig, cl ConnectionListener, dr DecoderRenderer, ar AudioRenderer) error {
	l.mu.Lock()
	l.connects++
	l.lastAddr = addr
	l.mu.Unlock()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}

	dr.Setup(cfg.Width, cfg.Height, cfg.FPS, 0)
	ar.Init()

	for _, s := range stage.All() {
		cl.StageStarting(s)
		// An interrupted stage is not a stage failure: only the error is returned.
		if err := l.sleep(ctx, l.opts.StageDelay); err != nil {
			dr.Release()
			ar.Release()
			return fmt.Errorf("%w: %s: %w", ErrConnectFailed, s, err)
		}
		if s == l.opts.FailStage {
			cl.StageFailed(s, l.opts.FailCode)
			if l.opts.Cascade && s+1 < stage.Max {
				cl.StageFailed(s+1, l.opts.FailCode+1)
			}
			dr.Release()
			ar.Release()
			return fmt.Errorf("%w: %s error %d", ErrConnectFailed, s, l.opts.FailCode)
		}
		cl.StageComplete(s)
	}

	if l.opts.ConnectErr != nil {
		return l.opts.ConnectErr
	}

	cl.ConnectionStarted()
	dr.Start()
	ar.Start()
	l.emit(cfg, dr, ar)
	return nil
}

func (l *Loopback) emit(cfg StreamConfig, dr DecoderRenderer, ar AudioRenderer) {
	l.wg.Add(2)
	go func() {
		defer l.wg.Done()
		for i := 0; i < l.opts.VideoUnits; i++ {
			if l.sleep(context.Background(), l.opts.SampleInterval) != nil {
				return
			}
			dr.SubmitDecodeUnit([]byte(fmt.Sprintf("video-%d", i)))
		}
	}()
	go func() {
		defer l.wg.Done()
		for i := 0; i < l.opts.AudioSamples; i++ {
			if l.sleep(context.Background(), l.opts.SampleInterval) != nil {
				return
			}
			ar.PlaySample([]byte(fmt.Sprintf("audio-%d", i)))
		}
	}()
	l.logger.Debug().
		Str(xglog.FieldEvent, "loopback.emitting").
		Str(xglog.FieldResolution, fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)).
		Int(xglog.FieldFPS, cfg.FPS).
		Msg("emitting synthetic samples")
}

// sleep waits d, returning early when ctx is done or the engine is closed.
func (l *Loopback) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-l.stop:
			return errors.New("engine closed")
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-l.stop:
		return errors.New("engine closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until all emitted samples have been delivered.
func (l *Loopback) Wait() {
	l.wg.Wait()
}

// Close stops sample emission and waits for the emitters to exit.
func (l *Loopback) Close() error {
	l.once.Do(func() { close(l.stop) })
	l.wg.Wait()
	return nil
}

// SendMouseButtonEvent implements InputSender.
func (l *Loopback) SendMouseButtonEvent(action MouseButtonAction, button MouseButton) {
	l.mu.Lock()
	l.inputs = append(l.inputs, InputEvent{Button: true, Action: action, Which: button})
	l.mu.Unlock()
}

// SendMouseMoveEvent implements InputSender.
func (l *Loopback) SendMouseMoveEvent(dx, dy int16) {
	l.mu.Lock()
	l.inputs = append(l.inputs, InputEvent{DX: dx, DY: dy})
	l.mu.Unlock()
}

// Inputs returns a copy of the recorded input commands.
func (l *Loopback) Inputs() []InputEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]InputEvent, len(l.inputs))
	copy(out, l.inputs)
	return out
}

// Connects returns how many times Connect was invoked and the last address.
func (l *Loopback) Connects() (int, netip.Addr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connects, l.lastAddr
}

var _ Engine = (*Loopback)(nil)
