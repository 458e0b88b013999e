// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package controller

import "context"

// Worker is a running attempt started with Start.
type Worker struct {
	done    chan struct{}
	outcome Outcome
}

// Start runs one attempt on a dedicated goroutine and returns immediately.
// onComplete, if set, is called on the worker goroutine with the outcome
// before Done is closed; it must not call Wait.
func (c *Controller) Start(ctx context.Context, host string, onComplete func(Outcome)) *Worker {
	w := &Worker{done: make(chan struct{})}
	go func() {
		defer close(w.done)
		w.outcome = c.Run(ctx, host)
		if onComplete != nil {
			onComplete(w.outcome)
		}
	}()
	return w
}

// Done is closed after the attempt finished and onComplete returned.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Wait blocks until the attempt has finished and returns its outcome.
func (w *Worker) Wait() Outcome {
	<-w.done
	return w.outcome
}
