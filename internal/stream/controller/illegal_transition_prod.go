// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

//go:build !debug

package controller

import "fmt"

func illegalTransition(from State, ev EventKind) (Transition, error) {
	tr := Transition{
		From:   from,
		To:     StateFailed,
		Event:  ev,
		Result: ResultFailed,
	}
	return tr, fmt.Errorf("%w: illegal transition: %s + %s", ErrUncaught, from, ev)
}
