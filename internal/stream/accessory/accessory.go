// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package accessory connects optional controller accessories. Nothing here
// may fail a session: errors are logged and swallowed.
package accessory

import (
	"context"
	"errors"
	"fmt"
	"time"

	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/rs/zerolog"
)

// DefaultConnectTimeout bounds a best-effort connect.
const DefaultConnectTimeout = 2 * time.Second

// ErrNoDevice is returned by a Device that found nothing to connect to.
var ErrNoDevice = errors.New("no accessory found")

// Listener receives accessory input.
type Listener interface {
	OnKey(code int, down bool)
	OnMotion(axis int, value float64)
	OnStateChanged(connected bool)
}

// Device is a connectable accessory such as a gamepad.
type Device interface {
	Name() string
	Connect(ctx context.Context, l Listener) error
	Disconnect() error
}

// Manager owns at most one accessory for a session.
type Manager struct {
	device  Device
	timeout time.Duration
	logger  zerolog.Logger

	connected bool
}

// NewManager creates a manager for device. A nil device is valid and means
// no accessory is configured.
func NewManager(device Device) *Manager {
	return &Manager{
		device:  device,
		timeout: DefaultConnectTimeout,
		logger:  xglog.WithComponent("accessory"),
	}
}

// WithLogger returns m with the logger replaced.
func (m *Manager) WithLogger(l zerolog.Logger) *Manager {
	m.logger = l
	return m
}

// ConnectBestEffort tries to connect the device and reports whether it did.
// Errors and panics from the device are logged only.
func (m *Manager) ConnectBestEffort(ctx context.Context) bool {
	if m == nil || m.device == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.connect(ctx); err != nil {
		ev := m.logger.Warn()
		if errors.Is(err, ErrNoDevice) {
			ev = m.logger.Debug()
		}
		ev.Err(err).
			Str(xglog.FieldEvent, "accessory.connect_failed").
			Str("device", m.device.Name()).
			Msg("accessory not connected")
		return false
	}
	m.connected = true
	m.logger.Info().
		Str(xglog.FieldEvent, "accessory.connected").
		Str("device", m.device.Name()).
		Msg("accessory connected")
	return true
}

func (m *Manager) connect(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("accessory %s panicked: %v", m.device.Name(), rec)
		}
	}()
	return m.device.Connect(ctx, loggingListener{logger: m.logger})
}

// Close disconnects a connected device. Errors are logged.
func (m *Manager) Close() {
	if m == nil || m.device == nil || !m.connected {
		return
	}
	m.connected = false
	if err := m.device.Disconnect(); err != nil {
		m.logger.Warn().Err(err).Str(xglog.FieldEvent, "accessory.disconnect_failed").Msg("accessory disconnect failed")
	}
}

// loggingListener records accessory input; it is not forwarded to the host.
type loggingListener struct {
	logger zerolog.Logger
}

func (l loggingListener) OnKey(code int, down bool) {
	l.logger.Debug().Str(xglog.FieldEvent, "accessory.key").Int("code", code).Bool("down", down).Msg("accessory key event")
}

func (l loggingListener) OnMotion(axis int, value float64) {
	l.logger.Debug().Str(xglog.FieldEvent, "accessory.motion").Int("axis", axis).Float64("value", value).Msg("accessory motion event")
}

func (l loggingListener) OnStateChanged(connected bool) {
	l.logger.Debug().Str(xglog.FieldEvent, "accessory.state").Bool("connected", connected).Msg("accessory state changed")
}
