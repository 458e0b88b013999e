// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ManuGH/limelight/internal/api/middleware"
	"github.com/ManuGH/limelight/internal/health"
	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newStatusHandler routes the probe and scrape endpoints.
func newStatusHandler(mgr *health.Manager, tracingService string) http.Handler {
	logger := xglog.WithComponent("status")
	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:   true,
		TracingService:  tracingService,
		EnableRateLimit: true,
		Logger:          &logger,
	})
	r.Get("/healthz", mgr.ServeHealth)
	r.Get("/readyz", mgr.ServeReady)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// serveStatus runs srv until ctx is done, then shuts it down gracefully.
func serveStatus(ctx context.Context, srv *http.Server) error {
	logger := xglog.WithComponent("status")
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str(xglog.FieldEvent, "status.listen").Str("addr", srv.Addr).Msg("status server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
