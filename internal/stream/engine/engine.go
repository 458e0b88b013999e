// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package engine defines the contract of the native streaming engine: the
// blocking connect entry point, the callback groups it drives, and the
// outbound input commands.
package engine

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/ManuGH/limelight/internal/stream/stage"
)

// StreamConfig describes the requested video stream.
type StreamConfig struct {
	Width  int
	Height int
	FPS    int
}

// Validate rejects configurations the engine cannot negotiate.
func (c StreamConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("invalid frame rate %d", c.FPS)
	}
	return nil
}

// ConnectionListener receives connection lifecycle callbacks.
type ConnectionListener interface {
	StageStarting(s stage.Stage)
	StageComplete(s stage.Stage)
	StageFailed(s stage.Stage, errorCode int)
	ConnectionStarted()
	ConnectionTerminated(errorCode int)
	DisplayMessage(text string)
	DisplayTransientMessage(text string)
}

// DecoderRenderer receives decoded video units.
type DecoderRenderer interface {
	Setup(width, height, redrawRate, flags int)
	Start()
	Stop()
	Release()
	SubmitDecodeUnit(data []byte)
}

// AudioRenderer receives decoded audio samples.
type AudioRenderer interface {
	Init()
	Start()
	Stop()
	Release()
	PlaySample(data []byte)
}

// MouseButtonAction is a press or release.
type MouseButtonAction byte

const (
	MousePress   MouseButtonAction = 0x07
	MouseRelease MouseButtonAction = 0x08
)

func (a MouseButtonAction) String() string {
	switch a {
	case MousePress:
		return "press"
	case MouseRelease:
		return "release"
	default:
		return "unknown"
	}
}

// MouseButton identifies a mouse button.
type MouseButton int

const (
	MouseLeft   MouseButton = 0x01
	MouseMiddle MouseButton = 0x02
	MouseRight  MouseButton = 0x03
)

// InputSender forwards input to the host. Calls are fire-and-forget.
type InputSender interface {
	SendMouseButtonEvent(action MouseButtonAction, button MouseButton)
	SendMouseMoveEvent(dx, dy int16)
}

// Engine is the native streaming engine.
//
// Connect blocks until bring-up completes or a stage fails. It drives cl from
// its own goroutine(s) in stage order and delivers samples to dr and ar
// concurrently. A non-nil error means bring-up did not succeed.
type Engine interface {
	InputSender
	Connect(ctx context.Context, addr netip.Addr, cfg StreamConfig, cl ConnectionListener, dr DecoderRenderer, ar AudioRenderer) error
}
