// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package middleware holds the HTTP middleware of the status server.
package middleware

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// StackConfig selects the cross-cutting middleware applied to a router.
type StackConfig struct {
	EnableMetrics   bool
	TracingService  string // empty disables tracing
	EnableRateLimit bool
	Logger          *zerolog.Logger // nil disables request logging
}

// NewRouter constructs a chi router with the middleware stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack applies the middleware stack to r, outermost first.
func ApplyStack(r chi.Router, cfg StackConfig) {
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	if cfg.EnableMetrics {
		r.Use(Metrics())
	}
	if cfg.TracingService != "" {
		r.Use(OTelHTTP(cfg.TracingService))
	}
	if cfg.Logger != nil {
		r.Use(Logging(*cfg.Logger))
	}
	if cfg.EnableRateLimit {
		r.Use(StatusRateLimit())
	}
}
