// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectAttemptsTotal tracks the outcome of connection attempts.
	ConnectAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "limelight_connect_attempts_total",
		Help: "Total number of connection attempts by result and terminal state",
	}, []string{"result", "state"})

	// ConnectAttemptDuration tracks the time from attempt start to outcome.
	ConnectAttemptDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "limelight_connect_attempt_duration_seconds",
		Help:    "Time from attempt start to terminal outcome",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 20, 30},
	}, []string{"result"})

	// ResolveDuration tracks hostname resolution latency.
	ResolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "limelight_resolve_duration_seconds",
		Help:    "Hostname resolution latency by outcome",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"outcome"}) // outcome=resolved|empty

	// StageEventsTotal counts stage callbacks reported by the engine.
	StageEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "limelight_stage_events_total",
		Help: "Stage events reported by the streaming engine",
	}, []string{"stage", "kind"})

	// StageFailuresTotal counts authoritative (first) stage failures per attempt.
	StageFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "limelight_stage_failures_total",
		Help: "First stage failure per attempt by stage",
	}, []string{"stage"})

	// StageFailuresSuppressedTotal counts cascading failures ignored after the first.
	StageFailuresSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "limelight_stage_failures_suppressed_total",
		Help: "Stage failures reported after the first failure of an attempt",
	})
)

// IncConnectAttempt records a terminal attempt outcome.
func IncConnectAttempt(result, state string, duration time.Duration) {
	if result == "" {
		result = "unknown"
	}
	ConnectAttemptsTotal.WithLabelValues(result, state).Inc()
	ConnectAttemptDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveResolve records hostname resolution latency.
func ObserveResolve(resolved bool, duration time.Duration) {
	outcome := "empty"
	if resolved {
		outcome = "resolved"
	}
	ResolveDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncStageEvent records one stage callback.
func IncStageEvent(stage, kind string) {
	StageEventsTotal.WithLabelValues(stage, kind).Inc()
}

// IncStageFailure records the authoritative failure of an attempt.
func IncStageFailure(stage string) {
	StageFailuresTotal.WithLabelValues(stage).Inc()
}

// IncStageFailureSuppressed records a failure that lost first-failure-wins.
func IncStageFailureSuppressed() {
	StageFailuresSuppressedTotal.Inc()
}
