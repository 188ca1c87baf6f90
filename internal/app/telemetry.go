package app

import (
	"context"

	"github.com/dkeye/dronerelay/internal/core"
	"github.com/dkeye/dronerelay/internal/domain"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Broadcaster is the fan-out side of the registry.
type Broadcaster interface {
	Broadcast(msg core.Message) core.PublishResult
}

type statusMessage struct {
	DroneStatus *domain.DemoStatus `json:"droneStatus"`
}

// TelemetryBroadcaster turns navdata reports into {"droneStatus": ...}
// text messages. Reports without the demo option are dropped.
type TelemetryBroadcaster struct {
	target  Broadcaster
	metrics core.Metrics
}

func NewTelemetryBroadcaster(target Broadcaster, metrics core.Metrics) *TelemetryBroadcaster {
	if metrics == nil {
		metrics = core.NopMetrics{}
	}
	return &TelemetryBroadcaster{target: target, metrics: metrics}
}

// Handle broadcasts nd and reports whether anything was sent.
func (t *TelemetryBroadcaster) Handle(nd domain.Navdata) bool {
	if nd.Demo == nil {
		return false
	}
	b, err := json.Marshal(statusMessage{DroneStatus: nd.Demo})
	if err != nil {
		log.Error().Err(err).Str("module", "app.telemetry").Msg("marshal drone status")
		return false
	}
	t.metrics.TelemetrySnapshot()
	t.target.Broadcast(core.NewTextMessage(b))
	return true
}

// Run consumes events until ctx is done or the stream is closed.
func (t *TelemetryBroadcaster) Run(ctx context.Context, events <-chan domain.Navdata) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.telemetry").Msg("telemetry ctx done")
			return
		case nd, ok := <-events:
			if !ok {
				log.Warn().Str("module", "app.telemetry").Msg("telemetry stream closed")
				return
			}
			t.Handle(nd)
		}
	}
}
