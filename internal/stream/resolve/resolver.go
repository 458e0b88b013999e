// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package resolve turns the target hostname into a numeric IPv4 address
// without blocking the caller.
package resolve

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/ManuGH/limelight/internal/metrics"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single lookup unless overridden.
const DefaultTimeout = 10 * time.Second

// Lookuper is the subset of *net.Resolver used for lookups.
type Lookuper interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// LookupFunc adapts a function to Lookuper.
type LookupFunc func(ctx context.Context, network, host string) ([]netip.Addr, error)

func (f LookupFunc) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	return f(ctx, network, host)
}

// Resolver performs asynchronous hostname resolution.
type Resolver struct {
	lookup  Lookuper
	timeout time.Duration
	logger  zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLookuper replaces the system resolver.
func WithLookuper(l Lookuper) Option {
	return func(r *Resolver) { r.lookup = l }
}

// WithTimeout sets the per-lookup timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a resolver backed by net.DefaultResolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		lookup:  net.DefaultResolver,
		timeout: DefaultTimeout,
		logger:  xglog.WithComponent("resolve"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve starts resolving host and returns immediately. The returned
// Pending is always completed, even when the lookup fails.
func (r *Resolver) Resolve(ctx context.Context, host string) *Pending {
	p := newPending(host)
	logger := xglog.WithContext(ctx, r.logger).With().Str(xglog.FieldHost, host).Logger()

	normalized, err := NormalizeHost(host)
	if err != nil {
		logger.Warn().Err(err).Str(xglog.FieldEvent, "resolve.invalid_host").Msg("invalid hostname")
		p.complete(netip.Addr{}, false, err)
		return p
	}
	if addr, err := netip.ParseAddr(normalized); err == nil {
		addr = addr.Unmap()
		if !addr.Is4() {
			p.complete(netip.Addr{}, false, nil)
			return p
		}
		p.complete(addr, true, nil)
		return p
	}

	go r.run(ctx, p, normalized, logger)
	return p
}

func (r *Resolver) run(ctx context.Context, p *Pending, host string, logger zerolog.Logger) {
	// The signal must fire even if the lookup implementation panics.
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("resolve host %q: panic: %v", host, rec)
			logger.Error().Err(err).Str(xglog.FieldEvent, "resolve.panic").Msg("hostname lookup panicked")
			p.complete(netip.Addr{}, false, err)
		}
	}()

	start := time.Now()
	addr, ok, err := r.lookupIPv4(ctx, host)
	metrics.ObserveResolve(ok, time.Since(start))

	switch {
	case err != nil:
		logger.Warn().Err(err).Str(xglog.FieldEvent, "resolve.failed").Msg("hostname resolution failed")
	case !ok:
		logger.Warn().Str(xglog.FieldEvent, "resolve.empty").Msg("hostname resolved to no IPv4 address")
	default:
		logger.Info().
			Str(xglog.FieldEvent, "resolve.done").
			Str(xglog.FieldAddress, addr.String()).
			Dur("took", time.Since(start)).
			Msg("hostname resolved")
	}
	p.complete(addr, ok, err)
}

func (r *Resolver) lookupIPv4(ctx context.Context, host string) (netip.Addr, bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	addrs, err := r.lookup.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return netip.Addr{}, false, fmt.Errorf("resolve host %q: %w", host, err)
	}
	addr, ok := firstIPv4(addrs)
	return addr, ok, nil
}
