package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dkeye/dronerelay/internal/adapters/ardrone/sim"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	flags := pflag.NewFlagSet("dronesim", pflag.ExitOnError)
	flags.String("host", "127.0.0.1", "address to bind")
	flags.Int("control-port", 5556, "AT command UDP port")
	flags.Int("navdata-port", 5554, "navdata UDP port")
	flags.Int("video-port", 5555, "PaVE video TCP port")
	flags.Duration("navdata-interval", 65*time.Millisecond, "navdata report period")
	flags.Duration("frame-interval", 33*time.Millisecond, "video frame period")
	flags.Int("frame-size", 4096, "video payload bytes per frame")
	flags.String("log-level", "info", "log level")
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	v.SetEnvPrefix("DRONESIM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(flags); err != nil {
		log.Fatal().Err(err).Str("module", "dronesim").Msg("bind flags")
	}

	if level, err := zerolog.ParseLevel(v.GetString("log-level")); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}

	s := sim.New(sim.Config{
		Host:            v.GetString("host"),
		ControlPort:     v.GetInt("control-port"),
		NavdataPort:     v.GetInt("navdata-port"),
		VideoPort:       v.GetInt("video-port"),
		NavdataInterval: v.GetDuration("navdata-interval"),
		FrameInterval:   v.GetDuration("frame-interval"),
		FrameSize:       v.GetInt("frame-size"),
	})
	if err := s.Run(ctx); err != nil {
		log.Error().Err(err).Str("module", "dronesim").Msg("simulator stopped")
		os.Exit(1)
	}
	log.Info().Str("module", "dronesim").Msg("simulator exited")
}
