package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dkeye/dronerelay/internal/adapters/pave"
	"github.com/dkeye/dronerelay/internal/core"
	"github.com/dkeye/dronerelay/internal/domain"
	"github.com/rs/zerolog/log"
)

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateError
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "disconnected"
	}
}

var ErrTransportClosed = errors.New("video transport closed by peer")

// FrameParser turns transport bytes into frames. A parser is used for
// exactly one connection.
type FrameParser interface {
	Write(p []byte) ([]domain.VideoFrame, error)
}

// Dialer opens the video transport.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type BackoffConfig struct {
	Enabled bool
	Initial time.Duration
	Max     time.Duration
}

type Config struct {
	Addr           string
	ConnectTimeout time.Duration
	Backoff        BackoffConfig
	FrameBuffer    int
}

func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:5555"
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 4 * time.Second
	}
	if c.Backoff.Initial <= 0 {
		c.Backoff.Initial = 100 * time.Millisecond
	}
	if c.Backoff.Max < c.Backoff.Initial {
		c.Backoff.Max = 5 * time.Second
	}
	if c.FrameBuffer <= 0 {
		c.FrameBuffer = 8
	}
}

type Option func(*Relay)

func WithDialer(d Dialer) Option { return func(r *Relay) { r.dialer = d } }

func WithParser(fn func() FrameParser) Option { return func(r *Relay) { r.newParser = fn } }

// Relay keeps a demultiplexed video feed alive. Any transport or parse
// error drops the connection and its parser, and the relay dials again
// until its context ends.
type Relay struct {
	cfg       Config
	dialer    Dialer
	newParser func() FrameParser
	metrics   core.Metrics

	state  atomic.Int32
	frames chan domain.VideoFrame
}

func NewRelay(cfg Config, metrics core.Metrics, opts ...Option) *Relay {
	cfg.ApplyDefaults()
	if metrics == nil {
		metrics = core.NopMetrics{}
	}
	r := &Relay{
		cfg:       cfg,
		dialer:    &net.Dialer{Timeout: cfg.ConnectTimeout},
		newParser: func() FrameParser { return pave.NewParser() },
		metrics:   metrics,
		frames:    make(chan domain.VideoFrame, cfg.FrameBuffer),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Frames is the single outbound frame stream. It is closed when Run
// returns.
func (r *Relay) Frames() <-chan domain.VideoFrame { return r.frames }

func (r *Relay) State() State { return State(r.state.Load()) }

func (r *Relay) setState(s State) { r.state.Store(int32(s)) }

func (r *Relay) newBackOff() backoff.BackOff {
	if !r.cfg.Backoff.Enabled {
		return &backoff.ZeroBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.Backoff.Initial
	b.MaxInterval = r.cfg.Backoff.Max
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Run loops until ctx is done. It never returns a transport error.
func (r *Relay) Run(ctx context.Context) error {
	defer close(r.frames)
	defer r.setState(StateDisconnected)

	logger := log.With().Str("module", "video").Str("addr", r.cfg.Addr).Logger()
	bo := r.newBackOff()
	for {
		connected, err := r.stream(ctx)
		if ctx.Err() != nil {
			logger.Info().Msg("video relay ctx done")
			return nil
		}
		if connected {
			bo.Reset()
		}

		r.setState(StateError)
		r.metrics.VideoReconnect()
		wait := bo.NextBackOff()
		logger.Error().Err(err).Dur("retry_in", wait).Msg("video transport error, reconnecting")

		r.setState(StateDisconnected)
		if wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				logger.Info().Msg("video relay ctx done")
				return nil
			case <-t.C:
			}
		}
	}
}

// stream runs one connection with a fresh parser. connected reports
// whether the dial succeeded.
func (r *Relay) stream(ctx context.Context) (connected bool, err error) {
	r.setState(StateConnecting)
	log.Info().Str("module", "video").Str("addr", r.cfg.Addr).Msg("connecting to video transport")

	dialCtx, cancel := context.WithTimeout(ctx, r.cfg.ConnectTimeout)
	conn, err := r.dialer.DialContext(dialCtx, "tcp", r.cfg.Addr)
	cancel()
	if err != nil {
		return false, fmt.Errorf("dial video: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	r.setState(StateConnected)
	log.Info().Str("module", "video").Str("addr", r.cfg.Addr).Msg("video transport connected")

	parser := r.newParser()
	buf := make([]byte, 64<<10)
	for {
		n, rerr := conn.Read(buf)
		if n > 0 {
			frames, perr := parser.Write(buf[:n])
			for _, f := range frames {
				select {
				case r.frames <- f:
					r.metrics.VideoFrame()
				case <-ctx.Done():
					return true, ctx.Err()
				}
			}
			if perr != nil {
				return true, fmt.Errorf("demux video: %w", perr)
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return true, ErrTransportClosed
			}
			return true, fmt.Errorf("read video: %w", rerr)
		}
	}
}
