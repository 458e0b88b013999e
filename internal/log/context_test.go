// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextWithAttemptID(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		id   string
		want string
	}{
		{name: "nil context", ctx: nil, id: "a-1", want: "a-1"},
		{name: "background context", ctx: context.Background(), id: "a-2", want: "a-2"},
		{name: "empty id", ctx: context.Background(), id: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithAttemptID(tt.ctx, tt.id)
			assert.Equal(t, tt.want, AttemptIDFromContext(ctx))
		})
	}
}

func TestAttemptIDFromContextEmpty(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	assert.Empty(t, AttemptIDFromContext(nil))
	assert.Empty(t, AttemptIDFromContext(context.Background()))
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := ContextWithAttemptID(context.Background(), "attempt-42")
	l := WithContext(ctx, logger)
	l.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "attempt-42", entry[FieldAttemptID])
}

func TestWithContextWithoutFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	l := WithContext(context.Background(), logger)
	l.Info().Msg("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, ok := entry[FieldAttemptID]
	assert.False(t, ok)
}

func TestConfigureAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "test-svc", Version: "v0"})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("controller")
	l.Debug().Str(FieldEvent, "unit.test").Msg("component log")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test-svc", entry["service"])
	assert.Equal(t, "controller", entry[FieldComponent])
	assert.Equal(t, "unit.test", entry[FieldEvent])
}

func TestDerive(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	l := Derive(func(c *zerolog.Context) {
		*c = c.Str(FieldHost, "gaming-pc")
	})
	l.Info().Msg("derived")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "gaming-pc", entry[FieldHost])
}
