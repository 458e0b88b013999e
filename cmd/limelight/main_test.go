// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ManuGH/limelight/internal/health"
	"github.com/ManuGH/limelight/internal/stream/stage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "limelight v")
}

func TestConnectCommand_Success(t *testing.T) {
	out, err := execute(t, "connect",
		"--host", "10.0.0.5",
		"--stage-delay", "0s",
		"--video-units", "2",
		"--audio-samples", "2",
		"--tap",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "✔ stream started")
	assert.NotContains(t, out, "back to setup")
}

func TestConnectCommand_StageFailure(t *testing.T) {
	out, err := execute(t, "connect",
		"--host", "10.0.0.5",
		"--stage-delay", "0s",
		"--fail-stage", "control_stream_init",
		"--fail-code", "42",
	)
	require.ErrorIs(t, err, errAttemptFailed)
	assert.Contains(t, out, "✘ Failure Starting Connection: Initializing control stream failed. Error: 42")
	assert.Contains(t, out, "→ back to setup")
}

func TestConnectCommand_UnknownStage(t *testing.T) {
	_, err := execute(t, "connect", "--host", "10.0.0.5", "--fail-stage", "warp_drive")
	assert.ErrorContains(t, err, `unknown stage "warp_drive"`)
}

func TestParseStage(t *testing.T) {
	s, err := parseStage("")
	require.NoError(t, err)
	assert.Equal(t, stage.None, s)

	s, err = parseStage("video_stream_start")
	require.NoError(t, err)
	assert.Equal(t, stage.VideoStreamStart, s)
}

func TestTerminalView(t *testing.T) {
	var buf bytes.Buffer
	v := newTerminalView(&buf)
	v.ShowProgress("Resolving hostname...")
	v.HideProgress()
	v.Acknowledge("", "Unable to resolve hostname")
	v.NavigateToSetup()

	assert.Equal(t, "… Resolving hostname...\n✘ Unable to resolve hostname\n→ back to setup\n", buf.String())
}

func TestStatusHandler(t *testing.T) {
	var ready atomic.Bool
	mgr := health.NewManager("test")
	mgr.RegisterChecker(health.NewStreamChecker(ready.Load))
	srv := httptest.NewServer(newStatusHandler(mgr, ""))
	defer srv.Close()

	status := func(path string) int {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, status("/healthz"))
	assert.Equal(t, http.StatusServiceUnavailable, status("/readyz"))
	ready.Store(true)
	assert.Equal(t, http.StatusOK, status("/readyz"))
	assert.Equal(t, http.StatusOK, status("/metrics"))
	assert.Equal(t, http.StatusNotFound, status("/nope"))
}
