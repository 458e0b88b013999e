// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty path skips the file.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults,
// then validates the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()
	cfg.Version = l.version

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel: DefaultLogLevel,
		Stream:   StreamConfig{Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS},
		Resolve:  ResolveConfig{Timeout: DefaultResolveTimeout},
		Sink:     SinkConfig{VideoQueue: DefaultVideoQueue, AudioQueue: DefaultAudioQueue},
		Params:   ParamsConfig{Backend: DefaultParamsBackend, RedisAddr: DefaultRedisAddr},
		Telemetry: TelemetryConfig{
			Exporter:     DefaultExporter,
			Endpoint:     DefaultEndpoint,
			SamplingRate: 1.0,
		},
	}
}

func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return parseFile(data)
}

func parseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrMultipleDocuments
	}
	return &fileCfg, nil
}

func mergeFileConfig(cfg *AppConfig, f *FileConfig) error {
	setString(&cfg.Host, f.Host)
	setString(&cfg.LogLevel, f.LogLevel)

	if s := f.Stream; s != nil {
		setInt(&cfg.Stream.Width, s.Width)
		setInt(&cfg.Stream.Height, s.Height)
		setInt(&cfg.Stream.FPS, s.FPS)
	}
	if r := f.Resolve; r != nil {
		if err := setDuration(&cfg.Resolve.Timeout, r.Timeout, "resolve.timeout"); err != nil {
			return err
		}
	}
	if c := f.Connect; c != nil {
		if err := setDuration(&cfg.Connect.Timeout, c.Timeout, "connect.timeout"); err != nil {
			return err
		}
	}
	if s := f.Sink; s != nil {
		setInt(&cfg.Sink.VideoQueue, s.VideoQueue)
		setInt(&cfg.Sink.AudioQueue, s.AudioQueue)
		if s.PaceVideo != nil {
			cfg.Sink.PaceVideo = *s.PaceVideo
		}
	}
	if p := f.Params; p != nil {
		setString(&cfg.Params.Backend, p.Backend)
		setString(&cfg.Params.RedisAddr, p.RedisAddr)
		setInt(&cfg.Params.RedisDB, p.RedisDB)
	}
	if s := f.Status; s != nil {
		setString(&cfg.Status.Listen, s.Listen)
	}
	if t := f.Telemetry; t != nil {
		if t.Enabled != nil {
			cfg.Telemetry.Enabled = *t.Enabled
		}
		setString(&cfg.Telemetry.Exporter, t.Exporter)
		setString(&cfg.Telemetry.Endpoint, t.Endpoint)
		if t.SamplingRate != nil {
			cfg.Telemetry.SamplingRate = *t.SamplingRate
		}
	}
	return nil
}

// mergeEnvConfig applies LIMELIGHT_* variables, which have the highest precedence.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.Host = l.envString("LIMELIGHT_HOST", cfg.Host)
	cfg.LogLevel = l.envString("LIMELIGHT_LOG_LEVEL", cfg.LogLevel)

	cfg.Stream.Width = l.envInt("LIMELIGHT_WIDTH", cfg.Stream.Width)
	cfg.Stream.Height = l.envInt("LIMELIGHT_HEIGHT", cfg.Stream.Height)
	cfg.Stream.FPS = l.envInt("LIMELIGHT_FPS", cfg.Stream.FPS)

	cfg.Resolve.Timeout = l.envDuration("LIMELIGHT_RESOLVE_TIMEOUT", cfg.Resolve.Timeout)
	cfg.Connect.Timeout = l.envDuration("LIMELIGHT_CONNECT_TIMEOUT", cfg.Connect.Timeout)

	cfg.Sink.VideoQueue = l.envInt("LIMELIGHT_SINK_VIDEO_QUEUE", cfg.Sink.VideoQueue)
	cfg.Sink.AudioQueue = l.envInt("LIMELIGHT_SINK_AUDIO_QUEUE", cfg.Sink.AudioQueue)
	cfg.Sink.PaceVideo = l.envBool("LIMELIGHT_SINK_PACE_VIDEO", cfg.Sink.PaceVideo)

	cfg.Params.Backend = l.envString("LIMELIGHT_PARAMS_BACKEND", cfg.Params.Backend)
	cfg.Params.RedisAddr = l.envString("LIMELIGHT_REDIS_ADDR", cfg.Params.RedisAddr)
	cfg.Params.RedisDB = l.envInt("LIMELIGHT_REDIS_DB", cfg.Params.RedisDB)

	cfg.Status.Listen = l.envString("LIMELIGHT_STATUS_LISTEN", cfg.Status.Listen)

	cfg.Telemetry.Enabled = l.envBool("LIMELIGHT_TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString("LIMELIGHT_OTEL_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString("LIMELIGHT_OTEL_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat("LIMELIGHT_OTEL_SAMPLING_RATE", cfg.Telemetry.SamplingRate)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, field string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*dst = d
	return nil
}
