package observability

import (
	"testing"

	"github.com/dkeye/dronerelay/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.SessionsChanged(3)
	if got := testutil.ToFloat64(m.sessions); got != 3 {
		t.Fatalf("expected sessions gauge 3, got %f", got)
	}

	m.Broadcast(core.BinaryMessage, 4, 1)
	m.Broadcast(core.TextMessage, 2, 0)
	if got := testutil.ToFloat64(m.broadcasts.WithLabelValues("binary")); got != 1 {
		t.Fatalf("expected 1 binary broadcast, got %f", got)
	}
	if got := testutil.ToFloat64(m.deliveries.WithLabelValues("binary")); got != 4 {
		t.Fatalf("expected 4 binary deliveries, got %f", got)
	}
	if got := testutil.ToFloat64(m.dropped); got != 1 {
		t.Fatalf("expected 1 dropped delivery, got %f", got)
	}

	m.CommandDispatched("takeoff")
	m.CommandDispatched("takeoff")
	if got := testutil.ToFloat64(m.commands.WithLabelValues("takeoff")); got != 2 {
		t.Fatalf("expected 2 takeoff commands, got %f", got)
	}

	m.ProtocolError()
	m.VideoFrame()
	m.VideoReconnect()
	m.TelemetrySnapshot()
	for name, c := range map[string]prometheus.Collector{
		"protocol_errors": m.protocolErrors,
		"video_frames":    m.videoFrames,
		"reconnects":      m.videoReconnects,
		"telemetry":       m.telemetrySnapshots,
	} {
		if got := testutil.ToFloat64(c); got != 1 {
			t.Fatalf("expected %s counter 1, got %f", name, got)
		}
	}
}

func TestMetricsRegisterOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected duplicate registration to panic")
		}
	}()
	NewMetrics(reg)
}
