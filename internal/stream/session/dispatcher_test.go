// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestDispatcher_FIFO(t *testing.T) {
	d := NewDispatcher()
	var got []int
	for i := 0; i < 3; i++ {
		i := i
		require.True(t, d.Post(func() { got = append(got, i) }))
	}
	assert.Equal(t, 3, d.RunPending())
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Zero(t, d.RunPending())
}

func TestDispatcher_PostLatestCoalesces(t *testing.T) {
	d := NewDispatcher()
	var got []string
	d.PostLatest("progress", func() { got = append(got, "p1") })
	d.Post(func() { got = append(got, "other") })
	d.PostLatest("progress", func() { got = append(got, "p2") })
	d.PostLatest("progress", func() { got = append(got, "p3") })

	d.RunPending()
	assert.Equal(t, []string{"p3", "other"}, got)

	d.PostLatest("progress", func() { got = append(got, "p4") })
	d.RunPending()
	assert.Equal(t, []string{"p3", "other", "p4"}, got)
}

func TestDispatcher_TaskPanicIsContained(t *testing.T) {
	d := NewDispatcher()
	ran := false
	d.Post(func() { panic("boom") })
	d.Post(func() { ran = true })
	assert.NotPanics(t, func() { d.RunPending() })
	assert.True(t, ran)
}

func TestDispatcher_RunUntilClosed(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	d := NewDispatcher()
	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	ran := make(chan struct{})
	d.Post(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}

	d.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
	assert.False(t, d.Post(func() {}))
}

func TestDispatcher_RunStopsOnContext(t *testing.T) {
	d := NewDispatcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Run(ctx), context.Canceled)
}
