// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SinkEnqueuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "limelight_sink_enqueued_total",
		Help: "Samples accepted by the frame sink by kind",
	}, []string{"kind"})

	SinkDeliveredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "limelight_sink_delivered_total",
		Help: "Samples handed to the presentation surface by kind",
	}, []string{"kind"})

	SinkDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "limelight_sink_dropped_total",
		Help: "Samples dropped by the frame sink by kind and reason",
	}, []string{"kind", "reason"})
)

// IncSinkEnqueued records an accepted sample.
func IncSinkEnqueued(kind string) {
	SinkEnqueuedTotal.WithLabelValues(kind).Inc()
}

// IncSinkDelivered records a sample handed to the surface.
func IncSinkDelivered(kind string) {
	SinkDeliveredTotal.WithLabelValues(kind).Inc()
}

// IncSinkDropped records a dropped sample with a concrete reason.
func IncSinkDropped(kind, reason string) {
	if kind == "" {
		kind = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}
	SinkDroppedTotal.WithLabelValues(kind, reason).Inc()
}
