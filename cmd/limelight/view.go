// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"
	"io"
	"sync/atomic"

	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/ManuGH/limelight/internal/stream/sink"
	"github.com/rs/zerolog"
)

// terminalView renders the session on a terminal. It runs on the
// dispatcher goroutine only.
type terminalView struct {
	out io.Writer
}

func newTerminalView(out io.Writer) *terminalView {
	return &terminalView{out: out}
}

func (v *terminalView) ShowProgress(text string) {
	fmt.Fprintf(v.out, "… %s\n", text)
}

// HideProgress is a no-op: progress lines scroll away.
func (v *terminalView) HideProgress() {}

func (v *terminalView) ShowStream() {
	fmt.Fprintln(v.out, "✔ stream started")
}

// Acknowledge prints the dialog. A terminal has nobody to click OK, so it
// returns at once.
func (v *terminalView) Acknowledge(title, message string) {
	if title != "" {
		fmt.Fprintf(v.out, "✘ %s: %s\n", title, message)
		return
	}
	fmt.Fprintf(v.out, "✘ %s\n", message)
}

func (v *terminalView) NavigateToSetup() {
	fmt.Fprintln(v.out, "→ back to setup")
}

// countingSurface stands in for a decoder surface and counts what it is fed.
type countingSurface struct {
	video  atomic.Int64
	audio  atomic.Int64
	logger zerolog.Logger
}

func (s *countingSurface) RenderVideo(smp sink.Sample) {
	s.video.Add(1)
	s.logger.Trace().Str(xglog.FieldKind, smp.Kind.String()).Uint64("seq", smp.Seq).Int("bytes", len(smp.Data)).Msg("frame")
}

func (s *countingSurface) PlayAudio(smp sink.Sample) {
	s.audio.Add(1)
	s.logger.Trace().Str(xglog.FieldKind, smp.Kind.String()).Uint64("seq", smp.Seq).Int("bytes", len(smp.Data)).Msg("audio")
}
