// Package ardrone implements core.HardwareLink for AR.Drone 2.0 vehicles:
// AT commands go out over UDP and navdata comes back over UDP.
package ardrone

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/dronerelay/internal/core"
	"github.com/dkeye/dronerelay/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// stateComWatchdog is set in the navdata drone state when the vehicle
// wants an AT*COMWDG.
const stateComWatchdog = 1 << 30

var navdataTrigger = []byte{1, 0, 0, 0}

type Config struct {
	Host            string
	ControlPort     int
	NavdataPort     int
	CommandInterval time.Duration
	NavdataTimeout  time.Duration
	// EmergencyTicks is how many control ticks carry the emergency bit
	// after DisableEmergency.
	EmergencyTicks  int
	TelemetryBuffer int
}

func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "192.168.1.1"
	}
	if c.ControlPort == 0 {
		c.ControlPort = 5556
	}
	if c.NavdataPort == 0 {
		c.NavdataPort = 5554
	}
	if c.CommandInterval <= 0 {
		c.CommandInterval = 30 * time.Millisecond
	}
	if c.NavdataTimeout <= 0 {
		c.NavdataTimeout = 2 * time.Second
	}
	if c.EmergencyTicks <= 0 {
		c.EmergencyTicks = 10
	}
	if c.TelemetryBuffer <= 0 {
		c.TelemetryBuffer = 16
	}
}

type movement struct {
	roll, pitch, gaz, yaw float64
}

// Client keeps the desired vehicle state and streams it to the vehicle
// on every control tick. Action methods only touch that state, so they
// never block on the network.
type Client struct {
	cfg Config

	mu             sync.Mutex
	fly            bool
	emergencyTicks int
	move           movement
	pending        []atCommand
	seq            uint32

	telemetry chan domain.Navdata
}

var (
	_ core.HardwareLink = (*Client)(nil)
	_ core.Runner       = (*Client)(nil)
)

func NewClient(cfg Config) *Client {
	cfg.ApplyDefaults()
	return &Client{
		cfg:       cfg,
		telemetry: make(chan domain.Navdata, cfg.TelemetryBuffer),
	}
}

func (c *Client) Takeoff() { c.setFly(true) }
func (c *Client) Land()    { c.setFly(false) }

func (c *Client) Up(speed float64)   { c.update(func(m *movement) { m.gaz = speed }) }
func (c *Client) Down(speed float64) { c.update(func(m *movement) { m.gaz = -speed }) }

func (c *Client) Front(speed float64) { c.update(func(m *movement) { m.pitch = -speed }) }
func (c *Client) Back(speed float64)  { c.update(func(m *movement) { m.pitch = speed }) }

func (c *Client) Left(speed float64)  { c.update(func(m *movement) { m.roll = -speed }) }
func (c *Client) Right(speed float64) { c.update(func(m *movement) { m.roll = speed }) }

func (c *Client) Clockwise(speed float64)        { c.update(func(m *movement) { m.yaw = speed }) }
func (c *Client) CounterClockwise(speed float64) { c.update(func(m *movement) { m.yaw = -speed }) }

// Stop hovers in place.
func (c *Client) Stop() { c.update(func(m *movement) { *m = movement{} }) }

func (c *Client) DisableEmergency() {
	c.mu.Lock()
	c.emergencyTicks = c.cfg.EmergencyTicks
	c.mu.Unlock()
	log.Info().Str("module", "ardrone").Msg("emergency reset requested")
}

func (c *Client) Telemetry() <-chan domain.Navdata { return c.telemetry }

func (c *Client) setFly(fly bool) {
	c.mu.Lock()
	c.fly = fly
	c.mu.Unlock()
}

func (c *Client) update(fn func(*movement)) {
	c.mu.Lock()
	fn(&c.move)
	c.mu.Unlock()
}

func (c *Client) enqueue(cmd atCommand) {
	c.mu.Lock()
	c.pending = append(c.pending, cmd)
	c.mu.Unlock()
}

// nextDatagram renders queued one-shot commands plus the REF and PCMD
// that carry the current state.
func (c *Client) nextDatagram() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	cmds := append(c.pending, refCommand(c.fly, c.emergencyTicks > 0), pcmdCommand(c.move))
	c.pending = nil
	if c.emergencyTicks > 0 {
		c.emergencyTicks--
	}

	var b strings.Builder
	for _, cmd := range cmds {
		c.seq++
		b.WriteString(cmd.encode(c.seq))
	}
	return []byte(b.String())
}

// Run drives the control and navdata loops until ctx is done. Transport
// errors are logged and retried; Run only returns when ctx ends.
func (c *Client) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.controlLoop(ctx) })
	g.Go(func() error { return c.navdataLoop(ctx) })
	return g.Wait()
}

func (c *Client) addr(port int) string {
	return net.JoinHostPort(c.cfg.Host, strconv.Itoa(port))
}

func (c *Client) controlLoop(ctx context.Context) error {
	addr := c.addr(c.cfg.ControlPort)
	var conn net.Conn
	for conn == nil {
		var err error
		conn, err = (&net.Dialer{}).DialContext(ctx, "udp", addr)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error().Err(err).Str("module", "ardrone").Str("addr", addr).Msg("control dial failed")
			if !sleepCtx(ctx, time.Second) {
				return nil
			}
		}
	}
	defer conn.Close()
	log.Info().Str("module", "ardrone").Str("addr", addr).Msg("control channel open")

	c.enqueue(configCommand("general:navdata_demo", "TRUE"))

	ticker := time.NewTicker(c.cfg.CommandInterval)
	defer ticker.Stop()
	failing := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, err := conn.Write(c.nextDatagram())
			switch {
			case err != nil && !failing:
				log.Warn().Err(err).Str("module", "ardrone").Msg("control write failed")
				failing = true
			case err == nil && failing:
				log.Info().Str("module", "ardrone").Msg("control write recovered")
				failing = false
			}
		}
	}
}

func (c *Client) navdataLoop(ctx context.Context) error {
	addr := c.addr(c.cfg.NavdataPort)
	for ctx.Err() == nil {
		if err := c.readNavdata(ctx, addr); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Str("module", "ardrone").Str("addr", addr).Msg("navdata link failed, retrying")
			if !sleepCtx(ctx, time.Second) {
				break
			}
		}
	}
	return nil
}

func (c *Client) readNavdata(ctx context.Context, addr string) error {
	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if _, err := conn.Write(navdataTrigger); err != nil {
		return err
	}
	log.Info().Str("module", "ardrone").Str("addr", addr).Msg("navdata requested")

	buf := make([]byte, 4096)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.cfg.NavdataTimeout)); err != nil {
			return err
		}
		n, err := conn.Read(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				log.Debug().Str("module", "ardrone").Msg("navdata timeout, re-triggering")
				if _, err := conn.Write(navdataTrigger); err != nil {
					return err
				}
				continue
			}
			return err
		}

		nd, err := ParseNavdata(buf[:n])
		if err != nil {
			log.Debug().Err(err).Str("module", "ardrone").Msg("dropping navdata packet")
			continue
		}
		if nd.DroneState&stateComWatchdog != 0 {
			c.enqueue(watchdogCommand())
		}
		c.publish(nd)
	}
}

// publish never blocks: when the consumer lags the oldest report goes,
// since each report supersedes the previous one.
func (c *Client) publish(nd domain.Navdata) {
	select {
	case c.telemetry <- nd:
		return
	default:
	}
	select {
	case <-c.telemetry:
	default:
	}
	select {
	case c.telemetry <- nd:
	default:
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
