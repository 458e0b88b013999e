// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resolve

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestResolver(l Lookuper, opts ...Option) *Resolver {
	return New(append([]Option{WithLookuper(l), WithLogger(zerolog.Nop())}, opts...)...)
}

func staticLookup(addrs ...string) LookupFunc {
	return func(_ context.Context, _, _ string) ([]netip.Addr, error) {
		out := make([]netip.Addr, 0, len(addrs))
		for _, a := range addrs {
			out = append(out, netip.MustParseAddr(a))
		}
		return out, nil
	}
}

func TestResolve_FirstIPv4(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	r := newTestResolver(staticLookup("fe80::1", "10.0.0.5", "10.0.0.6"))
	p := r.Resolve(context.Background(), "gaming-pc.local")

	addr, ok, err := p.Wait(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("10.0.0.5"), addr)
	assert.NoError(t, p.Err())
}

func TestResolve_EmptyResultStillSignals(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	r := newTestResolver(staticLookup())
	p := r.Resolve(context.Background(), "nowhere.example")

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("resolver never signaled")
	}
	_, ok := p.Address()
	assert.False(t, ok)
	assert.NoError(t, p.Err())
}

func TestResolve_IPv6OnlyIsEmpty(t *testing.T) {
	r := newTestResolver(staticLookup("2001:db8::1"))
	_, ok, err := r.Resolve(context.Background(), "v6.example").Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolve_LookupErrorStillSignals(t *testing.T) {
	lookupErr := errors.New("no such host")
	r := newTestResolver(LookupFunc(func(context.Context, string, string) ([]netip.Addr, error) {
		return nil, lookupErr
	}))

	p := r.Resolve(context.Background(), "broken.example")
	_, ok, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, p.Err(), lookupErr)
}

func TestResolve_PanicStillSignals(t *testing.T) {
	r := newTestResolver(LookupFunc(func(context.Context, string, string) ([]netip.Addr, error) {
		panic("boom")
	}))

	p := r.Resolve(context.Background(), "panic.example")
	_, ok, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Error(t, p.Err())
}

func TestResolve_DoesNotBlockCaller(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	r := newTestResolver(LookupFunc(func(ctx context.Context, _, _ string) ([]netip.Addr, error) {
		<-release
		return []netip.Addr{netip.MustParseAddr("10.0.0.5")}, nil
	}))

	p := r.Resolve(context.Background(), "slow.example")
	_, ok := p.Address()
	assert.False(t, ok, "address must not be visible before the signal")

	select {
	case <-p.Done():
		t.Fatal("signaled before lookup finished")
	default:
	}

	close(release)
	addr, ok, err := p.Wait(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.5", addr.String())
}

func TestResolve_Timeout(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	r := newTestResolver(LookupFunc(func(ctx context.Context, _, _ string) ([]netip.Addr, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), WithTimeout(20*time.Millisecond))

	p := r.Resolve(context.Background(), "hang.example")
	_, ok, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, p.Err(), context.DeadlineExceeded)
}

func TestResolve_LiteralAddress(t *testing.T) {
	called := false
	r := newTestResolver(LookupFunc(func(context.Context, string, string) ([]netip.Addr, error) {
		called = true
		return nil, nil
	}))

	p := r.Resolve(context.Background(), " 192.168.1.20 ")
	addr, ok := p.Address()
	require.True(t, ok)
	assert.Equal(t, "192.168.1.20", addr.String())
	assert.False(t, called)
}

func TestResolve_IPv6LiteralLeavesSlotEmpty(t *testing.T) {
	r := newTestResolver(staticLookup("10.0.0.5"))

	p := r.Resolve(context.Background(), "[::1]")
	addr, ok := p.Address()
	assert.False(t, ok)
	assert.False(t, addr.IsValid(), "slot must stay empty, got %s", addr)
	assert.NoError(t, p.Err())
}

func TestResolve_InvalidHost(t *testing.T) {
	r := newTestResolver(staticLookup("10.0.0.5"))
	p := r.Resolve(context.Background(), "http://pc/")
	_, ok := p.Address()
	assert.False(t, ok)
	assert.Error(t, p.Err())
}

func TestPending_WaitHonoursContext(t *testing.T) {
	p := newPending("x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err := p.Wait(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPending_CompletesOnce(t *testing.T) {
	p := newPending("x")
	assert.True(t, p.complete(netip.MustParseAddr("10.0.0.1"), true, nil))
	assert.False(t, p.complete(netip.Addr{}, false, errors.New("late")))

	addr, ok := p.Address()
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.1", addr.String())
	assert.NoError(t, p.Err())
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "Gaming-PC.Local.", want: "gaming-pc.local"},
		{in: "[::1]", want: "::1"},
		{in: "10.0.0.5", want: "10.0.0.5"},
		{in: "bücher.example", want: "xn--bcher-kva.example"},
		{in: "", wantErr: true},
		{in: "pc:47989", wantErr: true},
		{in: "user@pc", wantErr: true},
		{in: "fe80::1%eth0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeHost(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
