// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resolve

import (
	"context"
	"net/netip"
	"sync"
)

// Pending is the single-shot result slot of one resolution.
// It is completed exactly once, with or without an address.
type Pending struct {
	host string
	once sync.Once
	done chan struct{}

	// written once before done is closed
	addr netip.Addr
	ok   bool
	err  error
}

func newPending(host string) *Pending {
	return &Pending{host: host, done: make(chan struct{})}
}

// Host returns the hostname as requested by the caller.
func (p *Pending) Host() string { return p.host }

// Done is closed when resolution has finished.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Address returns the resolved address. ok is false while pending and when
// resolution produced no usable address.
func (p *Pending) Address() (netip.Addr, bool) {
	select {
	case <-p.done:
		return p.addr, p.ok
	default:
		return netip.Addr{}, false
	}
}

// Err returns the lookup error, if any, once resolution finished.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until resolution finishes or ctx is done.
// An empty result is reported as ok=false with a nil error.
func (p *Pending) Wait(ctx context.Context) (netip.Addr, bool, error) {
	select {
	case <-p.done:
		return p.addr, p.ok, nil
	case <-ctx.Done():
		return netip.Addr{}, false, ctx.Err()
	}
}

// complete fills the slot and fires the signal. Later calls are no-ops.
func (p *Pending) complete(addr netip.Addr, ok bool, err error) bool {
	fired := false
	p.once.Do(func() {
		p.addr, p.ok, p.err = addr, ok, err
		close(p.done)
		fired = true
	})
	return fired
}
