// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/limelight/internal/config"
	"github.com/ManuGH/limelight/internal/health"
	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/ManuGH/limelight/internal/params"
	"github.com/ManuGH/limelight/internal/stream/controller"
	"github.com/ManuGH/limelight/internal/stream/engine"
	"github.com/ManuGH/limelight/internal/stream/input"
	"github.com/ManuGH/limelight/internal/stream/resolve"
	"github.com/ManuGH/limelight/internal/stream/session"
	"github.com/ManuGH/limelight/internal/stream/sink"
	"github.com/ManuGH/limelight/internal/stream/stage"
	"github.com/ManuGH/limelight/internal/telemetry"
	"github.com/ManuGH/limelight/internal/version"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// errAttemptFailed makes the process exit non-zero after a failed attempt.
var errAttemptFailed = errors.New("connection attempt failed")

type connectFlags struct {
	host         string
	failStage    string
	failCode     int
	stageDelay   time.Duration
	videoUnits   int
	audioSamples int
	hold         bool
	tap          bool
}

func newConnectCmd() *cobra.Command {
	var f connectFlags
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Start a streaming session against the loopback engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return runConnect(cmd.Context(), cmd, configPath, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.host, "host", "", "host to connect to (overrides config and stored parameter)")
	fl.StringVar(&f.failStage, "fail-stage", "", "make the loopback engine fail at this stage, e.g. control_stream_init")
	fl.IntVar(&f.failCode, "fail-code", -1, "error code reported with --fail-stage")
	fl.DurationVar(&f.stageDelay, "stage-delay", 150*time.Millisecond, "simulated duration of each stage")
	fl.IntVar(&f.videoUnits, "video-units", 60, "video units emitted once connected")
	fl.IntVar(&f.audioSamples, "audio-samples", 120, "audio samples emitted once connected")
	fl.BoolVar(&f.hold, "hold", false, "keep the session open until interrupted")
	fl.BoolVar(&f.tap, "tap", false, "send a tap-to-click once the stream is shown")
	return cmd
}

func runConnect(ctx context.Context, cmd *cobra.Command, configPath string, f connectFlags) error {
	cfg, err := config.NewLoader(configPath, version.Version).Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	xglog.Configure(xglog.Config{Level: cfg.LogLevel, Service: "limelight", Version: cfg.Version})
	logger := xglog.WithComponent("cli")

	failStage, err := parseStage(f.failStage)
	if err != nil {
		return err
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "limelight",
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Str(xglog.FieldEvent, "telemetry.shutdown_failed").Msg("tracer shutdown failed")
		}
	}()

	store, err := params.Open(ctx, params.Config{
		Backend:   cfg.Params.Backend,
		RedisAddr: cfg.Params.RedisAddr,
		RedisDB:   cfg.Params.RedisDB,
	}, xglog.WithComponent("params"))
	if err != nil {
		return fmt.Errorf("open params store: %w", err)
	}
	defer store.Close()

	// The flag and config act as the setup screen: they hand the host over
	// through the parameter store.
	host := f.host
	if host == "" {
		host = cfg.Host
	}
	if host != "" {
		if err := store.Set(ctx, params.KeyHost, host); err != nil {
			return fmt.Errorf("store host: %w", err)
		}
	}
	if err := health.PerformStartupChecks(ctx, store); err != nil {
		return err
	}

	eng := engine.NewLoopback(engine.LoopbackOptions{
		FailStage:      failStage,
		FailCode:       f.failCode,
		StageDelay:     f.stageDelay,
		VideoUnits:     f.videoUnits,
		AudioSamples:   f.audioSamples,
		SampleInterval: time.Second / time.Duration(cfg.Stream.FPS),
	})
	defer eng.Close()

	sinkOpts := []sink.Option{sink.WithQueueSizes(cfg.Sink.VideoQueue, cfg.Sink.AudioQueue)}
	if cfg.Sink.PaceVideo {
		sinkOpts = append(sinkOpts, sink.WithVideoPacing(cfg.Stream.FPS))
	}

	surface := &countingSurface{logger: xglog.WithComponent("surface")}
	dispatcher := session.NewDispatcher()
	outcomes := make(chan controller.Outcome, 1)
	lc := session.New(store, newTerminalView(cmd.OutOrStdout()), dispatcher, eng,
		resolve.New(resolve.WithTimeout(cfg.Resolve.Timeout)),
		session.WithSurface(surface),
		session.WithSinkOptions(sinkOpts...),
		session.WithControllerOptions(
			controller.WithStreamConfig(engine.StreamConfig{
				Width:  cfg.Stream.Width,
				Height: cfg.Stream.Height,
				FPS:    cfg.Stream.FPS,
			}),
			controller.WithConnectTimeout(cfg.Connect.Timeout),
			controller.WithTracer(telemetry.Tracer(telemetry.InstrumentationName)),
		),
		session.WithOutcomeHook(func(out controller.Outcome) { outcomes <- out }),
	)

	mgr := health.NewManager(cfg.Version)
	mgr.RegisterChecker(health.NewStreamChecker(lc.Ready))
	mgr.RegisterChecker(health.NewStoreChecker(store))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := dispatcher.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if cfg.Status.Listen != "" {
		tracing := ""
		if cfg.Telemetry.Enabled {
			tracing = "limelight-status"
		}
		srv := &http.Server{
			Addr:              cfg.Status.Listen,
			Handler:           newStatusHandler(mgr, tracing),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error { return serveStatus(gctx, srv) })
	}

	if err := lc.Enter(gctx); err != nil {
		dispatcher.Close()
		_ = g.Wait()
		return err
	}

	g.Go(func() error {
		defer dispatcher.Close()
		defer lc.Leave()

		var out controller.Outcome
		select {
		case out = <-outcomes:
		case <-gctx.Done():
			return nil
		}
		if !out.Succeeded() {
			return errAttemptFailed
		}

		if f.tap {
			relay := input.NewTouchRelay(eng)
			relay.Down()
			relay.Up(gctx)
		}
		if f.hold {
			<-gctx.Done()
			return nil
		}
		eng.Wait()
		logger.Info().
			Str(xglog.FieldEvent, "session.samples").
			Int64("video", surface.video.Load()).
			Int64("audio", surface.audio.Load()).
			Msg("samples presented")
		// Stops the status server.
		return errSessionDone
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errSessionDone) {
		return err
	}
	return nil
}

// errSessionDone ends the errgroup after a non-holding session.
var errSessionDone = errors.New("session done")

// parseStage maps a stage name as printed in logs to its Stage.
func parseStage(name string) (stage.Stage, error) {
	if name == "" {
		return stage.None, nil
	}
	for _, s := range stage.All() {
		if s.String() == name {
			return s, nil
		}
	}
	return stage.None, fmt.Errorf("unknown stage %q", name)
}
