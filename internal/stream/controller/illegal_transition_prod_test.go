// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

//go:build !debug

package controller

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIllegalTransition_ForcesFailed(t *testing.T) {
	a := newAttempt("host", testLogger())

	tr, err := a.dispatch(EvConnected)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUncaught))
	require.Equal(t, StateFailed, tr.To)
	require.Equal(t, StateFailed, a.State())

	// Terminal states accept nothing.
	_, err = a.dispatch(EvStart)
	require.Error(t, err)
	require.Equal(t, StateFailed, a.State())
}
