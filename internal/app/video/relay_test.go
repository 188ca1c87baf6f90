package video

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dkeye/dronerelay/internal/adapters/pave"
	"github.com/dkeye/dronerelay/internal/domain"
)

func encoded(n uint32, payload string) []byte {
	return pave.Encode(pave.Header{FrameNumber: n, FrameType: pave.FrameTypeP}, []byte(payload))
}

// scriptedServer serves one script per accepted connection, then closes
// that connection. Later connections reuse the last script and are held
// open.
func scriptedServer(t *testing.T, scripts ...[]byte) (addr string, accepted *atomic.Int32) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	accepted = &atomic.Int32{}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			i := int(accepted.Add(1)) - 1
			last := i >= len(scripts)-1
			script := scripts[min(i, len(scripts)-1)]
			go func() {
				defer conn.Close()
				if _, err := conn.Write(script); err != nil {
					return
				}
				if last {
					buf := make([]byte, 1)
					_, _ = conn.Read(buf)
				}
			}()
		}
	}()
	return ln.Addr().String(), accepted
}

func nextFrame(t *testing.T, frames <-chan domain.VideoFrame) domain.VideoFrame {
	t.Helper()
	select {
	case f, ok := <-frames:
		if !ok {
			t.Fatalf("frame stream closed")
		}
		return f
	case <-time.After(3 * time.Second):
		t.Fatalf("no frame received")
	}
	return domain.VideoFrame{}
}

func startRelay(t *testing.T, r *Relay) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("run: %v", err)
			}
		case <-time.After(3 * time.Second):
			t.Errorf("relay did not stop")
		}
	})
}

func TestRelayReconnectDropsPartialFrame(t *testing.T) {
	half := encoded(2, "stale-frame")
	first := append(encoded(1, "one"), half[:len(half)/2]...)
	addr, accepted := scriptedServer(t, first, encoded(3, "three"))

	r := NewRelay(Config{
		Addr:    addr,
		Backoff: BackoffConfig{Enabled: true, Initial: 10 * time.Millisecond, Max: 20 * time.Millisecond},
	}, nil)
	startRelay(t, r)

	if f := nextFrame(t, r.Frames()); string(f.Payload) != "one" {
		t.Fatalf("unexpected first frame %q", f.Payload)
	}
	f := nextFrame(t, r.Frames())
	if string(f.Payload) != "three" || f.Number != 3 {
		t.Fatalf("expected frame 3 after reconnect, got #%d %q", f.Number, f.Payload)
	}
	if accepted.Load() < 2 {
		t.Fatalf("expected a reconnect, got %d connections", accepted.Load())
	}
	if r.State() != StateConnected {
		t.Fatalf("expected connected state, got %s", r.State())
	}
}

func TestRelayReconnectsAfterParseError(t *testing.T) {
	addr, _ := scriptedServer(t, []byte("this is not a video stream"), encoded(9, "nine"))

	r := NewRelay(Config{Addr: addr, Backoff: BackoffConfig{Enabled: false}}, nil)
	startRelay(t, r)

	if f := nextFrame(t, r.Frames()); f.Number != 9 {
		t.Fatalf("expected frame 9, got %d", f.Number)
	}
}

type countingDialer struct {
	calls atomic.Int32
}

func (d *countingDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.calls.Add(1)
	return nil, errors.New("unreachable")
}

func TestRelayKeepsRetryingDialFailures(t *testing.T) {
	d := &countingDialer{}
	r := NewRelay(Config{Addr: "drone:5555", Backoff: BackoffConfig{Enabled: false}}, nil, WithDialer(d))
	startRelay(t, r)

	deadline := time.Now().Add(3 * time.Second)
	for d.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if d.calls.Load() < 3 {
		t.Fatalf("expected repeated dial attempts, got %d", d.calls.Load())
	}
}

func TestRelayClosesFramesOnCancel(t *testing.T) {
	r := NewRelay(Config{Addr: "drone:5555"}, nil, WithDialer(&countingDialer{}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("Run did not return")
	}
	if _, ok := <-r.Frames(); ok {
		t.Fatalf("frames channel must be closed")
	}
	if r.State() != StateDisconnected {
		t.Fatalf("expected disconnected, got %s", r.State())
	}
}

type fixedParser struct{ frames []domain.VideoFrame }

func (p *fixedParser) Write([]byte) ([]domain.VideoFrame, error) {
	out := p.frames
	p.frames = nil
	return out, nil
}

func TestRelayUsesParserPerConnection(t *testing.T) {
	addr, _ := scriptedServer(t, []byte("x"), []byte("y"))
	var made atomic.Int32
	r := NewRelay(Config{Addr: addr, Backoff: BackoffConfig{Enabled: false}}, nil,
		WithParser(func() FrameParser {
			n := made.Add(1)
			return &fixedParser{frames: []domain.VideoFrame{{Number: uint32(n)}}}
		}))
	startRelay(t, r)

	if f := nextFrame(t, r.Frames()); f.Number != 1 {
		t.Fatalf("expected frame from the first parser, got %d", f.Number)
	}
	if f := nextFrame(t, r.Frames()); f.Number != 2 {
		t.Fatalf("expected a fresh parser after reconnect, got %d", f.Number)
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()
	if c.Addr != "127.0.0.1:5555" || c.ConnectTimeout != 4*time.Second {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Backoff.Initial != 100*time.Millisecond || c.Backoff.Max != 5*time.Second {
		t.Fatalf("unexpected backoff defaults: %+v", c.Backoff)
	}
}
