// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sink

import (
	"sync"

	"github.com/ManuGH/limelight/internal/metrics"
)

const (
	dropOverflow = "overflow"
	dropClosed   = "closed"
	dropSurface  = "surface"
)

// lane is a bounded FIFO for one sample kind. When full, the oldest sample
// is dropped so the newest always gets in.
type lane struct {
	kind     Kind
	capacity int

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Sample
	seq    uint64
	closed bool

	enqueued   uint64
	deliveredN uint64
	dropped    uint64
}

func newLane(kind Kind, capacity int) *lane {
	l := &lane{kind: kind, capacity: capacity}
	l.cond = sync.NewCond(&l.mu)
	return l
}

func (l *lane) push(data []byte) {
	l.mu.Lock()
	if l.closed {
		l.dropped++
		l.mu.Unlock()
		metrics.IncSinkDropped(l.kind.String(), dropClosed)
		return
	}

	overflow := len(l.queue) >= l.capacity
	if overflow {
		l.queue[0] = Sample{}
		l.queue = l.queue[1:]
		l.dropped++
	}
	l.seq++
	l.queue = append(l.queue, Sample{Kind: l.kind, Seq: l.seq, Data: data})
	l.enqueued++
	l.cond.Signal()
	l.mu.Unlock()

	metrics.IncSinkEnqueued(l.kind.String())
	if overflow {
		metrics.IncSinkDropped(l.kind.String(), dropOverflow)
	}
}

// pop blocks until a sample is available. It returns false once closed.
func (l *lane) pop() (Sample, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.queue) == 0 && !l.closed {
		l.cond.Wait()
	}
	if l.closed {
		return Sample{}, false
	}
	smp := l.queue[0]
	l.queue[0] = Sample{}
	l.queue = l.queue[1:]
	return smp, true
}

func (l *lane) close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	n := len(l.queue)
	l.dropped += uint64(n)
	l.queue = nil
	l.cond.Broadcast()
	l.mu.Unlock()

	for i := 0; i < n; i++ {
		metrics.IncSinkDropped(l.kind.String(), dropClosed)
	}
}

func (l *lane) delivered() {
	l.mu.Lock()
	l.deliveredN++
	l.mu.Unlock()
	metrics.IncSinkDelivered(l.kind.String())
}

func (l *lane) discard(reason string) {
	l.mu.Lock()
	l.dropped++
	l.mu.Unlock()
	metrics.IncSinkDropped(l.kind.String(), reason)
}

func (l *lane) stats() KindStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return KindStats{
		Enqueued:  l.enqueued,
		Delivered: l.deliveredN,
		Dropped:   l.dropped,
		Queued:    len(l.queue),
	}
}
