package app

import (
	"context"
	"testing"
	"time"

	"github.com/dkeye/dronerelay/internal/core"
	"github.com/dkeye/dronerelay/internal/domain"
	json "github.com/goccy/go-json"
)

type recordingTarget struct {
	msgs chan core.Message
}

func (r *recordingTarget) Broadcast(msg core.Message) core.PublishResult {
	r.msgs <- msg
	return core.PublishResult{SendTo: 1}
}

func TestTelemetryHandleDemo(t *testing.T) {
	target := &recordingTarget{msgs: make(chan core.Message, 1)}
	tb := NewTelemetryBroadcaster(target, nil)

	demo := &domain.DemoStatus{
		ControlState:      "CTRL_HOVERING",
		FlyState:          "FLYING_OK",
		BatteryPercentage: 87,
		AltitudeMeters:    1.25,
		Rotation:          domain.Rotation{Clockwise: 12.5},
	}
	if !tb.Handle(domain.Navdata{Sequence: 3, Demo: demo}) {
		t.Fatalf("expected demo report to be broadcast")
	}

	msg := <-target.msgs
	if msg.Kind != core.TextMessage {
		t.Fatalf("expected text message, got %s", msg.Kind)
	}
	var got map[string]map[string]any
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	status, ok := got["droneStatus"]
	if !ok || len(got) != 1 {
		t.Fatalf("expected single droneStatus key, got %s", msg.Data)
	}
	if status["controlState"] != "CTRL_HOVERING" || status["batteryPercentage"] != float64(87) {
		t.Fatalf("unexpected status: %v", status)
	}
	if status["altitudeMeters"] != 1.25 {
		t.Fatalf("unexpected altitude: %v", status["altitudeMeters"])
	}
	rot, _ := status["rotation"].(map[string]any)
	if rot["clockwise"] != 12.5 {
		t.Fatalf("unexpected rotation: %v", status["rotation"])
	}
}

func TestTelemetryHandleWithoutDemo(t *testing.T) {
	target := &recordingTarget{msgs: make(chan core.Message, 1)}
	tb := NewTelemetryBroadcaster(target, nil)
	if tb.Handle(domain.Navdata{Sequence: 1}) {
		t.Fatalf("report without demo must not be broadcast")
	}
	if len(target.msgs) != 0 {
		t.Fatalf("nothing should have been sent")
	}
}

func TestTelemetryRunStopsOnClose(t *testing.T) {
	target := &recordingTarget{msgs: make(chan core.Message, 4)}
	tb := NewTelemetryBroadcaster(target, nil)
	events := make(chan domain.Navdata, 2)
	events <- domain.Navdata{Demo: &domain.DemoStatus{FlyState: "FLYING_OK"}}
	events <- domain.Navdata{}
	close(events)

	done := make(chan struct{})
	go func() {
		tb.Run(context.Background(), events)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after the stream closed")
	}
	if len(target.msgs) != 1 {
		t.Fatalf("expected exactly one broadcast, got %d", len(target.msgs))
	}
}

func TestTelemetryRunStopsOnCancel(t *testing.T) {
	tb := NewTelemetryBroadcaster(&recordingTarget{msgs: make(chan core.Message, 1)}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tb.Run(ctx, make(chan domain.Navdata))
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
