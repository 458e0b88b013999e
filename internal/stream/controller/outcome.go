// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package controller

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/ManuGH/limelight/internal/stream/stage"
)

// Result is the user-facing classification of an attempt.
type Result string

const (
	ResultSucceeded      Result = "SUCCEEDED"
	ResultFailed         Result = "FAILED"
	ResultHostUnresolved Result = "HOST_UNRESOLVED"
)

// GenericDiagnostic is shown for resolution failures and uncaught errors.
const GenericDiagnostic = "Unable to resolve hostname"

var (
	// ErrHostUnresolved means the resolver completed without an IPv4 address.
	ErrHostUnresolved = errors.New("host unresolved")
	// ErrStageFailed means a bring-up stage reported a failure.
	ErrStageFailed = errors.New("stage failed")
	// ErrUncaught covers any other error or panic out of the engine.
	ErrUncaught = errors.New("uncaught connect failure")
)

// StageError is the error form of the first recorded stage failure.
type StageError struct {
	Stage     stage.Stage
	ErrorCode int
	Text      string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed with code %d", e.Stage, e.ErrorCode)
}

func (e *StageError) Unwrap() error { return ErrStageFailed }

// Outcome is the single terminal result of an attempt.
type Outcome struct {
	AttemptID string
	State     State
	Result    Result
	// Diagnostic is the text shown to the user; empty on success.
	Diagnostic string
	// Failure is set when a stage failure decided the outcome.
	Failure  *stage.Failure
	Address  netip.Addr
	Err      error
	Duration time.Duration
}

// Succeeded reports whether the stream can be shown.
func (o Outcome) Succeeded() bool {
	return o.Result == ResultSucceeded
}

// StageFailure reports whether a bring-up stage decided the outcome.
func (o Outcome) StageFailure() bool {
	return errors.Is(o.Err, ErrStageFailed)
}

// Aborted reports whether the caller's context ended the attempt.
func (o Outcome) Aborted() bool {
	return o.State == StateCancelled && !o.StageFailure()
}
