// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sink

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingSurface struct {
	mu    sync.Mutex
	video []string
	audio []string
	got   chan struct{}
	panic bool
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{got: make(chan struct{}, 1024)}
}

func (r *recordingSurface) RenderVideo(s Sample) {
	if r.panic {
		panic("render failed")
	}
	r.mu.Lock()
	r.video = append(r.video, string(s.Data))
	r.mu.Unlock()
	r.got <- struct{}{}
}

func (r *recordingSurface) PlayAudio(s Sample) {
	r.mu.Lock()
	r.audio = append(r.audio, string(s.Data))
	r.mu.Unlock()
	r.got <- struct{}{}
}

func (r *recordingSurface) waitFor(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d deliveries", i, n)
		}
	}
}

func (r *recordingSurface) snapshot() (video, audio []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.video...), append([]string(nil), r.audio...)
}

func newTestSink(opts ...Option) *Sink {
	return New(append([]Option{WithLogger(zerolog.Nop())}, opts...)...)
}

func TestSink_FIFOPerKind(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newTestSink()
	surface := newRecordingSurface()
	require.NoError(t, s.Attach(surface))

	s.EnqueueVideoSample([]byte("A"))
	s.EnqueueAudioSample([]byte("x"))
	s.EnqueueVideoSample([]byte("B"))
	s.EnqueueAudioSample([]byte("y"))
	s.EnqueueVideoSample([]byte("C"))

	surface.waitFor(t, 5)
	require.NoError(t, s.Close())

	video, audio := surface.snapshot()
	if diff := cmp.Diff([]string{"A", "B", "C"}, video); diff != "" {
		t.Errorf("video order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "y"}, audio); diff != "" {
		t.Errorf("audio order mismatch (-want +got):\n%s", diff)
	}

	st := s.Stats()
	assert.Equal(t, KindStats{Enqueued: 3, Delivered: 3}, st.Video)
	assert.Equal(t, KindStats{Enqueued: 2, Delivered: 2}, st.Audio)
}

func TestSink_ConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	const perProducer = 50
	s := newTestSink(WithQueueSizes(1000, 1000))
	surface := newRecordingSurface()
	require.NoError(t, s.Attach(surface))

	var wg sync.WaitGroup
	for p := 0; p < 2; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				s.EnqueueVideoSample([]byte(fmt.Sprintf("%d-%03d", p, i)))
			}
		}(p)
	}
	wg.Wait()
	surface.waitFor(t, 2*perProducer)
	require.NoError(t, s.Close())

	video, _ := surface.snapshot()
	require.Len(t, video, 2*perProducer)
	last := map[byte]string{}
	for _, v := range video {
		prev, ok := last[v[0]]
		if ok {
			assert.Less(t, prev, v, "producer %c out of order", v[0])
		}
		last[v[0]] = v
	}
}

func TestSink_BuffersUntilAttached(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newTestSink()
	s.EnqueueVideoSample([]byte("A"))
	s.EnqueueVideoSample([]byte("B"))
	s.EnqueueAudioSample([]byte("x"))
	assert.Equal(t, 2, s.Stats().Video.Queued)

	surface := newRecordingSurface()
	require.NoError(t, s.Attach(surface))
	surface.waitFor(t, 3)
	require.NoError(t, s.Close())

	video, audio := surface.snapshot()
	assert.Equal(t, []string{"A", "B"}, video)
	assert.Equal(t, []string{"x"}, audio)
}

func TestSink_DropsOldestWhenFull(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newTestSink(WithQueueSizes(2, 2))
	for _, v := range []string{"A", "B", "C", "D"} {
		s.EnqueueVideoSample([]byte(v))
	}
	st := s.Stats().Video
	assert.EqualValues(t, 4, st.Enqueued)
	assert.EqualValues(t, 2, st.Dropped)
	assert.Equal(t, 2, st.Queued)

	surface := newRecordingSurface()
	require.NoError(t, s.Attach(surface))
	surface.waitFor(t, 2)
	require.NoError(t, s.Close())

	video, _ := surface.snapshot()
	assert.Equal(t, []string{"C", "D"}, video)
}

func TestSink_CloseDropsSilently(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newTestSink()
	s.EnqueueVideoSample([]byte("queued"))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.NotPanics(t, func() {
		s.EnqueueVideoSample([]byte("late"))
		s.EnqueueAudioSample([]byte("late"))
	})

	st := s.Stats()
	assert.EqualValues(t, 2, st.Video.Dropped)
	assert.EqualValues(t, 1, st.Audio.Dropped)
	assert.Zero(t, st.Video.Delivered)
	assert.ErrorIs(t, s.Attach(newRecordingSurface()), ErrClosed)
}

func TestSink_AttachTwice(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newTestSink()
	require.NoError(t, s.Attach(newRecordingSurface()))
	assert.ErrorIs(t, s.Attach(newRecordingSurface()), ErrAlreadyAttached)
	assert.Error(t, s.Attach(nil))
	require.NoError(t, s.Close())
}

func TestSink_SurfacePanicDoesNotStopDelivery(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newTestSink()
	surface := newRecordingSurface()
	surface.panic = true
	require.NoError(t, s.Attach(surface))

	s.EnqueueVideoSample([]byte("A"))
	s.EnqueueAudioSample([]byte("x"))
	surface.waitFor(t, 1)

	require.Eventually(t, func() bool { return s.Stats().Video.Dropped == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Close())
}

func TestSink_VideoPacing(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newTestSink(WithVideoPacing(50))
	surface := newRecordingSurface()
	require.NoError(t, s.Attach(surface))

	start := time.Now()
	for i := 0; i < 5; i++ {
		s.EnqueueVideoSample([]byte{byte(i)})
	}
	surface.waitFor(t, 5)
	elapsed := time.Since(start)
	require.NoError(t, s.Close())

	// One token up front, then one every 20ms.
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
}

func TestSink_CloseWhilePacedDoesNotHang(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newTestSink(WithVideoPacing(1))
	surface := newRecordingSurface()
	require.NoError(t, s.Attach(surface))
	for i := 0; i < 3; i++ {
		s.EnqueueVideoSample([]byte{byte(i)})
	}
	surface.waitFor(t, 1)

	done := make(chan struct{})
	go func() {
		_ = s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked on the pacing limiter")
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "video", KindVideo.String())
	assert.Equal(t, "audio", KindAudio.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
