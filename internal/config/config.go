// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the client configuration with precedence
// ENV > YAML file > defaults.
package config

import "time"

// AppConfig is the effective configuration after all sources are merged.
type AppConfig struct {
	Version  string
	Host     string
	LogLevel string

	Stream    StreamConfig
	Resolve   ResolveConfig
	Connect   ConnectConfig
	Sink      SinkConfig
	Params    ParamsConfig
	Status    StatusConfig
	Telemetry TelemetryConfig
}

// StreamConfig is the requested video mode.
type StreamConfig struct {
	Width  int
	Height int
	FPS    int
}

// ResolveConfig bounds hostname resolution. Zero disables the timeout.
type ResolveConfig struct {
	Timeout time.Duration
}

// ConnectConfig bounds the engine connect call. Zero disables the timeout.
type ConnectConfig struct {
	Timeout time.Duration
}

// SinkConfig sizes the frame sink queues.
type SinkConfig struct {
	VideoQueue int
	AudioQueue int
	PaceVideo  bool
}

// ParamsConfig selects the session-parameter store.
type ParamsConfig struct {
	Backend   string
	RedisAddr string
	RedisDB   int
}

// StatusConfig configures the local status server. Empty Listen disables it.
type StatusConfig struct {
	Listen string
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// Defaults.
const (
	DefaultWidth          = 1280
	DefaultHeight         = 720
	DefaultFPS            = 30
	DefaultResolveTimeout = 10 * time.Second
	DefaultVideoQueue     = 120
	DefaultAudioQueue     = 256
	DefaultLogLevel       = "info"
	DefaultParamsBackend  = "memory"
	DefaultRedisAddr      = "localhost:6379"
	DefaultExporter       = "grpc"
	DefaultEndpoint       = "localhost:4317"
)

// FileConfig mirrors the YAML file. Pointers distinguish "unset" from zero.
type FileConfig struct {
	Host     *string `yaml:"host,omitempty"`
	LogLevel *string `yaml:"logLevel,omitempty"`

	Stream *struct {
		Width  *int `yaml:"width,omitempty"`
		Height *int `yaml:"height,omitempty"`
		FPS    *int `yaml:"fps,omitempty"`
	} `yaml:"stream,omitempty"`

	Resolve *struct {
		Timeout *string `yaml:"timeout,omitempty"`
	} `yaml:"resolve,omitempty"`

	Connect *struct {
		Timeout *string `yaml:"timeout,omitempty"`
	} `yaml:"connect,omitempty"`

	Sink *struct {
		VideoQueue *int  `yaml:"videoQueue,omitempty"`
		AudioQueue *int  `yaml:"audioQueue,omitempty"`
		PaceVideo  *bool `yaml:"paceVideo,omitempty"`
	} `yaml:"sink,omitempty"`

	Params *struct {
		Backend   *string `yaml:"backend,omitempty"`
		RedisAddr *string `yaml:"redisAddr,omitempty"`
		RedisDB   *int    `yaml:"redisDB,omitempty"`
	} `yaml:"params,omitempty"`

	Status *struct {
		Listen *string `yaml:"listen,omitempty"`
	} `yaml:"status,omitempty"`

	Telemetry *struct {
		Enabled      *bool    `yaml:"enabled,omitempty"`
		Exporter     *string  `yaml:"exporter,omitempty"`
		Endpoint     *string  `yaml:"endpoint,omitempty"`
		SamplingRate *float64 `yaml:"samplingRate,omitempty"`
	} `yaml:"telemetry,omitempty"`
}
