// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"github.com/ManuGH/limelight/internal/validate"
)

// Validate checks the merged configuration.
func Validate(cfg AppConfig) error {
	v := validate.New()

	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("logLevel", err.Error(), cfg.LogLevel)
	}

	v.Range("stream.width", cfg.Stream.Width, 1, 7680)
	v.Range("stream.height", cfg.Stream.Height, 1, 4320)
	v.Range("stream.fps", cfg.Stream.FPS, 1, 240)

	v.NonNegativeDuration("resolve.timeout", cfg.Resolve.Timeout)
	v.NonNegativeDuration("connect.timeout", cfg.Connect.Timeout)

	v.Positive("sink.videoQueue", cfg.Sink.VideoQueue)
	v.Positive("sink.audioQueue", cfg.Sink.AudioQueue)

	v.OneOf("params.backend", cfg.Params.Backend, []string{"memory", "redis"})
	if cfg.Params.Backend == "redis" {
		v.NotEmpty("params.redisAddr", cfg.Params.RedisAddr)
		v.Range("params.redisDB", cfg.Params.RedisDB, 0, 15)
	}

	if cfg.Status.Listen != "" {
		v.ListenAddr("status.listen", cfg.Status.Listen)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
	}
	v.Fraction("telemetry.samplingRate", cfg.Telemetry.SamplingRate)

	return v.Err()
}
