package ardrone

import (
	"strings"
	"testing"

	"github.com/dkeye/dronerelay/internal/domain"
)

func lastCalls(t *testing.T, c *Client) (ref, pcmd ATCall) {
	t.Helper()
	calls, err := ParseAT(string(c.nextDatagram()))
	if err != nil {
		t.Fatalf("parse datagram: %v", err)
	}
	if len(calls) < 2 {
		t.Fatalf("expected REF and PCMD, got %+v", calls)
	}
	return calls[len(calls)-2], calls[len(calls)-1]
}

func TestClientDefaults(t *testing.T) {
	c := NewClient(Config{})
	if c.addr(c.cfg.ControlPort) != "192.168.1.1:5556" || c.addr(c.cfg.NavdataPort) != "192.168.1.1:5554" {
		t.Fatalf("unexpected default addresses: %s %s", c.addr(c.cfg.ControlPort), c.addr(c.cfg.NavdataPort))
	}
}

func TestClientMovementMapping(t *testing.T) {
	tests := []struct {
		name string
		act  func(c *Client)
		want [4]float64 // roll, pitch, gaz, yaw
	}{
		{"up", func(c *Client) { c.Up(0.5) }, [4]float64{0, 0, 0.5, 0}},
		{"down", func(c *Client) { c.Down(0.5) }, [4]float64{0, 0, -0.5, 0}},
		{"front", func(c *Client) { c.Front(0.25) }, [4]float64{0, -0.25, 0, 0}},
		{"back", func(c *Client) { c.Back(0.25) }, [4]float64{0, 0.25, 0, 0}},
		{"left", func(c *Client) { c.Left(1) }, [4]float64{-1, 0, 0, 0}},
		{"right", func(c *Client) { c.Right(1) }, [4]float64{1, 0, 0, 0}},
		{"clockwise", func(c *Client) { c.Clockwise(0.75) }, [4]float64{0, 0, 0, 0.75}},
		{"counterClockwise", func(c *Client) { c.CounterClockwise(0.75) }, [4]float64{0, 0, 0, -0.75}},
	}
	for _, tt := range tests {
		c := NewClient(Config{})
		tt.act(c)
		_, pcmd := lastCalls(t, c)
		if pcmd.Args[0] != "1" {
			t.Fatalf("%s: progressive flag not set", tt.name)
		}
		for i, w := range tt.want {
			got, err := pcmd.FloatArg(i + 1)
			if err != nil || got != w {
				t.Fatalf("%s: arg %d got %v (%v), want %v", tt.name, i+1, got, err, w)
			}
		}
	}
}

func TestClientAxesCombineUntilStop(t *testing.T) {
	c := NewClient(Config{})
	c.Up(0.5)
	c.Left(0.5)
	_, pcmd := lastCalls(t, c)
	if roll, _ := pcmd.FloatArg(1); roll != -0.5 {
		t.Fatalf("roll lost: %v", roll)
	}
	if gaz, _ := pcmd.FloatArg(3); gaz != 0.5 {
		t.Fatalf("gaz lost: %v", gaz)
	}

	c.Stop()
	_, pcmd = lastCalls(t, c)
	if strings.Join(pcmd.Args, ",") != "0,0,0,0,0" {
		t.Fatalf("stop must hover, got %v", pcmd.Args)
	}
}

func TestClientTakeoffLand(t *testing.T) {
	c := NewClient(Config{})
	c.Takeoff()
	ref, _ := lastCalls(t, c)
	if fly, _, _ := ref.RefFlags(); !fly {
		t.Fatalf("takeoff bit missing")
	}
	// state persists across ticks
	ref, _ = lastCalls(t, c)
	if fly, _, _ := ref.RefFlags(); !fly {
		t.Fatalf("takeoff bit dropped on second tick")
	}
	c.Land()
	ref, _ = lastCalls(t, c)
	if fly, _, _ := ref.RefFlags(); fly {
		t.Fatalf("takeoff bit still set after land")
	}
}

func TestClientDisableEmergencyTicks(t *testing.T) {
	c := NewClient(Config{EmergencyTicks: 2})
	c.DisableEmergency()
	for i := 0; i < 2; i++ {
		ref, _ := lastCalls(t, c)
		if _, em, _ := ref.RefFlags(); !em {
			t.Fatalf("tick %d: emergency bit missing", i)
		}
	}
	ref, _ := lastCalls(t, c)
	if _, em, _ := ref.RefFlags(); em {
		t.Fatalf("emergency bit must clear after the configured ticks")
	}
}

func TestClientPendingAndSequence(t *testing.T) {
	c := NewClient(Config{})
	c.enqueue(watchdogCommand())
	calls, err := ParseAT(string(c.nextDatagram()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(calls) != 3 || calls[0].Name != "COMWDG" {
		t.Fatalf("expected pending command first, got %+v", calls)
	}
	for i, call := range calls {
		if call.Seq != uint32(i+1) {
			t.Fatalf("call %d has seq %d", i, call.Seq)
		}
	}
	calls, _ = ParseAT(string(c.nextDatagram()))
	if len(calls) != 2 || calls[0].Seq != 4 {
		t.Fatalf("pending commands must be sent once, got %+v", calls)
	}
}

func TestClientPublishDropsOldest(t *testing.T) {
	c := NewClient(Config{TelemetryBuffer: 2})
	for i := uint32(1); i <= 3; i++ {
		c.publish(domain.Navdata{Sequence: i})
	}
	if got := (<-c.Telemetry()).Sequence; got != 2 {
		t.Fatalf("expected oldest report dropped, got seq %d", got)
	}
	if got := (<-c.Telemetry()).Sequence; got != 3 {
		t.Fatalf("expected newest report, got seq %d", got)
	}
}
