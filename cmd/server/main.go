package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dkeye/dronerelay/internal/adapters/ardrone"
	router "github.com/dkeye/dronerelay/internal/adapters/http"
	"github.com/dkeye/dronerelay/internal/adapters/observability"
	"github.com/dkeye/dronerelay/internal/app"
	"github.com/dkeye/dronerelay/internal/app/orch"
	"github.com/dkeye/dronerelay/internal/app/video"
	"github.com/dkeye/dronerelay/internal/config"
	"github.com/dkeye/dronerelay/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		os.Exit(1)
	}
	setupLogging(cfg.Log)

	var (
		metrics  core.Metrics = core.NopMetrics{}
		gatherer prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		promReg := prometheus.NewRegistry()
		promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = observability.NewMetrics(promReg)
		gatherer = promReg
	}

	reg := app.NewRegistry(app.SimplePolicy{}, metrics)
	link := ardrone.NewClient(ardrone.Config{
		Host:            cfg.Drone.Host,
		ControlPort:     cfg.Drone.ControlPort,
		NavdataPort:     cfg.Drone.NavdataPort,
		CommandInterval: cfg.Drone.CommandInterval,
		NavdataTimeout:  cfg.Drone.NavdataTimeout,
	})
	relay := video.NewRelay(video.Config{
		Addr:           cfg.Video.Addr(),
		ConnectTimeout: cfg.Video.ConnectTimeout,
		Backoff: video.BackoffConfig{
			Enabled: cfg.Video.Backoff.Enabled,
			Initial: cfg.Video.Backoff.Initial,
			Max:     cfg.Video.Backoff.Max,
		},
	}, metrics)

	o := &orch.Orchestrator{
		Registry:  reg,
		Link:      link,
		Video:     relay,
		Telemetry: app.NewTelemetryBroadcaster(reg, metrics),
		Guard:     app.NewFlightGuard(cfg.Flight.Enforce),
		Metrics:   metrics,
	}

	r := router.SetupRouter(ctx, cfg, o, gatherer)
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return o.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("drone relay started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("relay exited with error")
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("level", cfg.Level).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if cfg.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}
