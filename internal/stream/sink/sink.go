// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package sink accepts decoded samples from engine callback goroutines and
// hands them to a presentation surface in order, one lane per kind.
package sink

import (
	"context"
	"errors"
	"fmt"
	"sync"

	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Default queue bounds per kind.
const (
	DefaultVideoQueue = 120
	DefaultAudioQueue = 256
)

var (
	ErrClosed          = errors.New("sink closed")
	ErrAlreadyAttached = errors.New("surface already attached")
)

// Kind separates video from audio samples.
type Kind int

const (
	KindVideo Kind = iota + 1
	KindAudio
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// Sample is one decoded unit. Data is owned by the sink once enqueued.
type Sample struct {
	Kind Kind
	Seq  uint64
	Data []byte
}

// Surface presents samples. Each method is called from a single goroutine
// per kind, in enqueue order.
type Surface interface {
	RenderVideo(s Sample)
	PlayAudio(s Sample)
}

// KindStats counts samples of one kind.
type KindStats struct {
	Enqueued  uint64
	Delivered uint64
	Dropped   uint64
	Queued    int
}

// Stats is a point-in-time snapshot of both lanes.
type Stats struct {
	Video KindStats
	Audio KindStats
}

// Sink is safe for concurrent use. Enqueue never blocks.
type Sink struct {
	video *lane
	audio *lane

	paceFPS int
	logger  zerolog.Logger

	mu       sync.Mutex
	attached bool
	closed   bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// Option configures a Sink.
type Option func(*Sink)

// WithQueueSizes bounds the per-kind queues. Values below one keep the default.
func WithQueueSizes(video, audio int) Option {
	return func(s *Sink) {
		if video > 0 {
			s.video.capacity = video
		}
		if audio > 0 {
			s.audio.capacity = audio
		}
	}
}

// WithVideoPacing limits video delivery to fps samples per second.
// Zero disables pacing.
func WithVideoPacing(fps int) Option {
	return func(s *Sink) { s.paceFPS = fps }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Sink) { s.logger = l }
}

// New creates a sink with no surface attached. Samples are buffered until
// Attach is called.
func New(opts ...Option) *Sink {
	s := &Sink{
		video:  newLane(KindVideo, DefaultVideoQueue),
		audio:  newLane(KindAudio, DefaultAudioQueue),
		logger: xglog.WithComponent("sink"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnqueueVideoSample queues a decode unit for rendering.
func (s *Sink) EnqueueVideoSample(data []byte) { s.video.push(data) }

// EnqueueAudioSample queues an audio sample for playback.
func (s *Sink) EnqueueAudioSample(data []byte) { s.audio.push(data) }

// Attach starts delivery to surface. Buffered samples are delivered first.
func (s *Sink) Attach(surface Surface) error {
	if surface == nil {
		return fmt.Errorf("attach: nil surface")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return ErrClosed
	case s.attached:
		return ErrAlreadyAttached
	}
	s.attached = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	var limiter *rate.Limiter
	if s.paceFPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.paceFPS), 1)
	}

	s.wg.Add(2)
	go s.pump(ctx, s.video, limiter, surface.RenderVideo)
	go s.pump(ctx, s.audio, nil, surface.PlayAudio)

	s.logger.Info().
		Str(xglog.FieldEvent, "sink.attached").
		Int(xglog.FieldFPS, s.paceFPS).
		Msg("surface attached")
	return nil
}

// Close stops delivery. Queued and later samples are dropped silently.
// Close is idempotent and waits for the pumps to exit.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	s.video.close()
	s.audio.close()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	st := s.Stats()
	s.logger.Debug().
		Str(xglog.FieldEvent, "sink.closed").
		Uint64("video_delivered", st.Video.Delivered).
		Uint64("audio_delivered", st.Audio.Delivered).
		Uint64("video_dropped", st.Video.Dropped).
		Uint64("audio_dropped", st.Audio.Dropped).
		Msg("sink closed")
	return nil
}

// Stats returns the per-kind counters.
func (s *Sink) Stats() Stats {
	return Stats{Video: s.video.stats(), Audio: s.audio.stats()}
}

func (s *Sink) pump(ctx context.Context, l *lane, limiter *rate.Limiter, deliver func(Sample)) {
	defer s.wg.Done()
	for {
		smp, ok := l.pop()
		if !ok {
			return
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				l.discard(dropClosed)
				return
			}
		}
		s.deliver(l, smp, deliver)
	}
}

func (s *Sink) deliver(l *lane, smp Sample, deliver func(Sample)) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error().
				Str(xglog.FieldEvent, "sink.surface_panic").
				Str(xglog.FieldKind, l.kind.String()).
				Uint64("seq", smp.Seq).
				Msgf("surface panicked: %v", rec)
			l.discard(dropSurface)
		}
	}()
	deliver(smp)
	l.delivered()
}
