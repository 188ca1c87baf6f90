package observability

import (
	"github.com/dkeye/dronerelay/internal/core"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the prometheus implementation of core.Metrics.
type Metrics struct {
	sessions           prometheus.Gauge
	broadcasts         *prometheus.CounterVec
	deliveries         *prometheus.CounterVec
	dropped            prometheus.Counter
	commands           *prometheus.CounterVec
	protocolErrors     prometheus.Counter
	videoFrames        prometheus.Counter
	videoReconnects    prometheus.Counter
	telemetrySnapshots prometheus.Counter
}

var _ core.Metrics = (*Metrics)(nil)

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dronerelay_sessions",
			Help: "Client sessions currently registered.",
		}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dronerelay_broadcasts_total",
			Help: "Broadcast calls by message kind.",
		}, []string{"kind"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dronerelay_deliveries_total",
			Help: "Messages queued to sessions by message kind.",
		}, []string{"kind"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dronerelay_deliveries_dropped_total",
			Help: "Deliveries that failed and got the session kicked.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dronerelay_commands_total",
			Help: "Control commands dispatched to the hardware link.",
		}, []string{"action"}),
		protocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dronerelay_protocol_errors_total",
			Help: "Client messages that were not valid CONTROL messages.",
		}),
		videoFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dronerelay_video_frames_total",
			Help: "Video frames demultiplexed from the transport.",
		}),
		videoReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dronerelay_video_reconnects_total",
			Help: "Video transport failures followed by a reconnect.",
		}),
		telemetrySnapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dronerelay_telemetry_snapshots_total",
			Help: "Telemetry snapshots broadcast to clients.",
		}),
	}
	reg.MustRegister(
		m.sessions, m.broadcasts, m.deliveries, m.dropped, m.commands,
		m.protocolErrors, m.videoFrames, m.videoReconnects, m.telemetrySnapshots,
	)
	return m
}

func (m *Metrics) SessionsChanged(n int) { m.sessions.Set(float64(n)) }

func (m *Metrics) Broadcast(kind core.MessageKind, delivered, dropped int) {
	m.broadcasts.WithLabelValues(kind.String()).Inc()
	m.deliveries.WithLabelValues(kind.String()).Add(float64(delivered))
	m.dropped.Add(float64(dropped))
}

func (m *Metrics) CommandDispatched(action string) { m.commands.WithLabelValues(action).Inc() }
func (m *Metrics) ProtocolError()                  { m.protocolErrors.Inc() }
func (m *Metrics) VideoFrame()                     { m.videoFrames.Inc() }
func (m *Metrics) VideoReconnect()                 { m.videoReconnects.Inc() }
func (m *Metrics) TelemetrySnapshot()              { m.telemetrySnapshots.Inc() }
