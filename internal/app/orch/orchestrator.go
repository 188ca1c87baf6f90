package orch

import (
	"context"

	"github.com/dkeye/dronerelay/internal/app"
	"github.com/dkeye/dronerelay/internal/app/video"
	"github.com/dkeye/dronerelay/internal/core"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

// Orchestrator is the relay server: it binds client sessions to the
// command path and the registry, and owns the video, telemetry and
// hardware link loops.
type Orchestrator struct {
	Registry  *app.Registry
	Link      core.HardwareLink
	Video     *video.Relay
	Telemetry *app.TelemetryBroadcaster
	Guard     *app.FlightGuard
	Metrics   core.Metrics
}

func (o *Orchestrator) metrics() core.Metrics {
	if o.Metrics == nil {
		return core.NopMetrics{}
	}
	return o.Metrics
}

// Run starts the background loops once and blocks until ctx is done and
// all of them have returned. They run whether or not clients are
// connected.
func (o *Orchestrator) Run(ctx context.Context) error {
	var wg conc.WaitGroup

	if r, ok := o.Link.(core.Runner); ok {
		wg.Go(func() {
			if err := r.Run(ctx); err != nil {
				log.Error().Err(err).Str("module", "orch").Msg("hardware link stopped")
			}
		})
	}
	if o.Video != nil {
		wg.Go(func() {
			if err := o.Video.Run(ctx); err != nil {
				log.Error().Err(err).Str("module", "orch").Msg("video relay stopped")
			}
		})
		wg.Go(func() { o.forwardFrames(ctx) })
	}
	if o.Telemetry != nil && o.Link != nil {
		wg.Go(func() { o.Telemetry.Run(ctx, o.Link.Telemetry()) })
	}

	log.Info().Str("module", "orch").Msg("relay loops started")
	wg.Wait()
	log.Info().Str("module", "orch").Msg("relay loops stopped")
	return nil
}
