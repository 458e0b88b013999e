// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/limelight/internal/log"
	"github.com/ManuGH/limelight/internal/params"
)

// PerformStartupChecks verifies the parameter store before a session is
// entered. A missing host is only warned about: the session reports it as an
// unresolvable host.
func PerformStartupChecks(ctx context.Context, store params.Store) error {
	logger := log.WithComponent("startup-check")

	if p, ok := store.(pinger); ok {
		if err := p.HealthCheck(ctx); err != nil {
			return fmt.Errorf("params store check failed: %w", err)
		}
	}

	host, err := store.Get(ctx, params.KeyHost)
	switch {
	case errors.Is(err, params.ErrNotFound), err == nil && host == "":
		logger.Warn().Str(log.FieldEvent, "startup.host_missing").Msg("no host parameter set")
	case err != nil:
		return fmt.Errorf("read host parameter: %w", err)
	default:
		logger.Info().Str(log.FieldEvent, "startup.ok").Str(log.FieldHost, host).Msg("startup checks passed")
	}
	return nil
}
