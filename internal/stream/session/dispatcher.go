// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"sync"

	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/rs/zerolog"
)

type task struct {
	key string
	fn  func()
}

// Dispatcher is the UI-thread queue. Any goroutine may post; exactly one
// goroutine runs the tasks, in posting order. Posting never blocks.
type Dispatcher struct {
	mu      sync.Mutex
	queue   []*task
	pending map[string]*task
	closed  bool
	wake    chan struct{}
	logger  zerolog.Logger
}

// NewDispatcher creates an idle dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		pending: make(map[string]*task),
		wake:    make(chan struct{}, 1),
		logger:  xglog.WithComponent("dispatcher"),
	}
}

// Post queues fn. It returns false once the dispatcher is closed.
func (d *Dispatcher) Post(fn func()) bool {
	return d.enqueue("", fn)
}

// PostLatest queues fn under key. If a task with the same key is still
// waiting, it is replaced in place so only the latest one runs.
func (d *Dispatcher) PostLatest(key string, fn func()) bool {
	return d.enqueue(key, fn)
}

func (d *Dispatcher) enqueue(key string, fn func()) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	if key != "" {
		if t, ok := d.pending[key]; ok {
			t.fn = fn
			d.mu.Unlock()
			return true
		}
	}
	t := &task{key: key, fn: fn}
	d.queue = append(d.queue, t)
	if key != "" {
		d.pending[key] = t
	}
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return true
}

// Run executes tasks on the calling goroutine until ctx is done or Close is
// called. Tasks queued before Close still run.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		d.RunPending()

		d.mu.Lock()
		closed := d.closed && len(d.queue) == 0
		d.mu.Unlock()
		if closed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.wake:
		}
	}
}

// RunPending runs every queued task and returns how many ran.
func (d *Dispatcher) RunPending() int {
	n := 0
	for {
		t, ok := d.next()
		if !ok {
			return n
		}
		d.run(t)
		n++
	}
}

func (d *Dispatcher) next() (*task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return nil, false
	}
	t := d.queue[0]
	d.queue[0] = nil
	d.queue = d.queue[1:]
	if t.key != "" {
		delete(d.pending, t.key)
	}
	return t, true
}

func (d *Dispatcher) run(t *task) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error().Str(xglog.FieldEvent, "dispatcher.task_panic").Msgf("ui task panicked: %v", rec)
		}
	}()
	t.fn()
}

// Close stops accepting tasks and wakes Run so it can drain and return.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	select {
	case d.wake <- struct{}{}:
	default:
	}
}
