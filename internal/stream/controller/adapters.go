// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package controller

import (
	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/ManuGH/limelight/internal/stream/engine"
	"github.com/ManuGH/limelight/internal/stream/stage"
	"github.com/rs/zerolog"
)

// SampleSink receives decoded samples from the engine's callback goroutines.
// Both methods must not block.
type SampleSink interface {
	EnqueueVideoSample(data []byte)
	EnqueueAudioSample(data []byte)
}

type discardSamples struct{}

func (discardSamples) EnqueueVideoSample([]byte) {}
func (discardSamples) EnqueueAudioSample([]byte) {}

// listener forwards stage callbacks to the attempt's tracker.
type listener struct {
	tracker *stage.Tracker
	logger  zerolog.Logger
}

func (l *listener) StageStarting(s stage.Stage) { l.tracker.OnStageStarting(s) }
func (l *listener) StageComplete(s stage.Stage) { l.tracker.OnStageComplete(s) }
func (l *listener) StageFailed(s stage.Stage, errorCode int) {
	l.tracker.OnStageFailed(s, errorCode)
}

func (l *listener) ConnectionStarted() {
	l.logger.Info().Str(xglog.FieldEvent, "connection.started").Msg("connection started")
}

func (l *listener) ConnectionTerminated(errorCode int) {
	l.logger.Warn().
		Str(xglog.FieldEvent, "connection.terminated").
		Int(xglog.FieldErrorCode, errorCode).
		Msg("connection terminated")
}

func (l *listener) DisplayMessage(text string) {
	l.logger.Info().Str(xglog.FieldEvent, "engine.message").Msg(text)
}

func (l *listener) DisplayTransientMessage(text string) {
	l.logger.Debug().Str(xglog.FieldEvent, "engine.transient_message").Msg(text)
}

// decoder hands decode units straight to the sink.
type decoder struct {
	samples SampleSink
	logger  zerolog.Logger
}

func (d *decoder) Setup(width, height, redrawRate, flags int) {
	d.logger.Debug().
		Str(xglog.FieldEvent, "decoder.setup").
		Int("width", width).
		Int("height", height).
		Int(xglog.FieldFPS, redrawRate).
		Int("flags", flags).
		Msg("decoder configured")
}
func (d *decoder) Start()                       {}
func (d *decoder) Stop()                        {}
func (d *decoder) Release()                     {}
func (d *decoder) SubmitDecodeUnit(data []byte) { d.samples.EnqueueVideoSample(data) }

// audio hands audio samples straight to the sink.
type audio struct {
	samples SampleSink
}

func (a *audio) Init()                  {}
func (a *audio) Start()                 {}
func (a *audio) Stop()                  {}
func (a *audio) Release()               {}
func (a *audio) PlaySample(data []byte) { a.samples.EnqueueAudioSample(data) }

var (
	_ engine.ConnectionListener = (*listener)(nil)
	_ engine.DecoderRenderer    = (*decoder)(nil)
	_ engine.AudioRenderer      = (*audio)(nil)
)
