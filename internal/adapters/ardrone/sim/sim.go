// Package sim is a loopback AR.Drone 2.0 stand-in. It accepts AT
// commands and navdata triggers over UDP, reports a simple vehicle model
// as navdata, and serves PaVE-framed video over TCP.
package sim

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/dkeye/dronerelay/internal/adapters/ardrone"
	"github.com/dkeye/dronerelay/internal/adapters/pave"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Drone state bits reported in navdata.
const (
	stateFlying      = 1 << 0
	stateComWatchdog = 1 << 30
	stateEmergency   = 1 << 31
)

// Major control states as the vehicle numbers them.
const (
	ctrlLanded   = 2
	ctrlFlying   = 3
	ctrlHovering = 4
)

const (
	cruiseAltitude  = 1000 // mm
	climbRate       = 1000 // mm/s at full gaz
	yawRate         = 90000
	watchdogTimeout = 250 * time.Millisecond
)

type Config struct {
	Host            string
	ControlPort     int
	NavdataPort     int
	VideoPort       int
	NavdataInterval time.Duration
	FrameInterval   time.Duration
	FrameSize       int
	KeyFrameEvery   int
}

func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.NavdataInterval <= 0 {
		c.NavdataInterval = 65 * time.Millisecond
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = 33 * time.Millisecond
	}
	if c.FrameSize <= 0 {
		c.FrameSize = 4096
	}
	if c.KeyFrameEvery <= 0 {
		c.KeyFrameEvery = 30
	}
}

// Snapshot is the observable vehicle state.
type Snapshot struct {
	Flying      bool
	Emergency   bool
	AltitudeMM  int32
	Roll, Pitch float64
	Gaz, Yaw    float64
	Battery     uint32
	Commands    int
	DemoEnabled bool
}

// Simulator is safe for concurrent use once Listen has returned.
type Simulator struct {
	cfg Config

	control *net.UDPConn
	navdata *net.UDPConn
	video   net.Listener

	mu           sync.Mutex
	state        Snapshot
	headingMilli float64
	lastCommand  time.Time
	navPeer      *net.UDPAddr
	navSeq       uint32
	frameNo      uint32
}

func New(cfg Config) *Simulator {
	cfg.ApplyDefaults()
	return &Simulator{cfg: cfg, state: Snapshot{Battery: 100}}
}

// Listen binds all three sockets. Port 0 picks a free port; the bound
// addresses are available from the accessors afterwards.
func (s *Simulator) Listen() error {
	var err error
	if s.control, err = listenUDP(s.cfg.Host, s.cfg.ControlPort); err != nil {
		return fmt.Errorf("control: %w", err)
	}
	if s.navdata, err = listenUDP(s.cfg.Host, s.cfg.NavdataPort); err != nil {
		s.control.Close()
		return fmt.Errorf("navdata: %w", err)
	}
	if s.video, err = net.Listen("tcp", net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.VideoPort))); err != nil {
		s.control.Close()
		s.navdata.Close()
		return fmt.Errorf("video: %w", err)
	}
	return nil
}

func listenUDP(host string, port int) (*net.UDPConn, error) {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	return net.ListenUDP("udp", addr)
}

func (s *Simulator) ControlAddr() *net.UDPAddr { return s.control.LocalAddr().(*net.UDPAddr) }
func (s *Simulator) NavdataAddr() *net.UDPAddr { return s.navdata.LocalAddr().(*net.UDPAddr) }
func (s *Simulator) VideoAddr() *net.TCPAddr   { return s.video.Addr().(*net.TCPAddr) }

func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetEmergency puts the vehicle into emergency until a REF with the
// emergency bit arrives.
func (s *Simulator) SetEmergency() {
	s.mu.Lock()
	s.state.Emergency = true
	s.state.Flying = false
	s.mu.Unlock()
}

// Serve runs until ctx is done. Listen must have been called.
func (s *Simulator) Serve(ctx context.Context) error {
	if s.control == nil {
		return errors.New("sim: Serve called before Listen")
	}
	context.AfterFunc(ctx, func() {
		_ = s.control.Close()
		_ = s.navdata.Close()
		_ = s.video.Close()
	})

	log.Info().
		Str("module", "sim").
		Str("control", s.ControlAddr().String()).
		Str("navdata", s.NavdataAddr().String()).
		Str("video", s.VideoAddr().String()).
		Msg("simulator listening")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.serveControl(ctx) })
	g.Go(func() error { return s.serveNavdataRequests(ctx) })
	g.Go(func() error { return s.streamNavdata(ctx) })
	g.Go(func() error { return s.serveVideo(ctx) })
	return g.Wait()
}

// Run is Listen followed by Serve.
func (s *Simulator) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

func (s *Simulator) serveControl(ctx context.Context) error {
	buf := make([]byte, 2048)
	for {
		n, _, err := s.control.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("control read: %w", err)
		}
		calls, err := ardrone.ParseAT(string(buf[:n]))
		if err != nil {
			log.Warn().Err(err).Str("module", "sim").Msg("bad AT datagram")
		}
		s.apply(calls)
	}
}

func (s *Simulator) apply(calls []ardrone.ATCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCommand = time.Now()
	for _, c := range calls {
		s.state.Commands++
		switch c.Name {
		case "REF":
			takeoff, emergency, err := c.RefFlags()
			if err != nil {
				continue
			}
			if emergency && s.state.Emergency {
				s.state.Emergency = false
				log.Info().Str("module", "sim").Msg("emergency cleared")
			}
			if !s.state.Emergency && takeoff != s.state.Flying {
				s.state.Flying = takeoff
				log.Info().Str("module", "sim").Bool("flying", takeoff).Msg("flight state changed")
			}
		case "PCMD":
			var v [4]float64
			for i := range v {
				f, err := c.FloatArg(i + 1)
				if err != nil {
					break
				}
				v[i] = f
			}
			s.state.Roll, s.state.Pitch, s.state.Gaz, s.state.Yaw = v[0], v[1], v[2], v[3]
		case "CONFIG":
			if len(c.Args) == 2 && c.Args[0] == `"general:navdata_demo"` {
				s.state.DemoEnabled = c.Args[1] == `"TRUE"`
			}
		}
	}
}

func (s *Simulator) serveNavdataRequests(ctx context.Context) error {
	buf := make([]byte, 64)
	for {
		_, peer, err := s.navdata.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("navdata read: %w", err)
		}
		s.mu.Lock()
		if s.navPeer == nil || s.navPeer.String() != peer.String() {
			log.Info().Str("module", "sim").Str("peer", peer.String()).Msg("navdata subscriber")
		}
		s.navPeer = peer
		s.mu.Unlock()
	}
}

func (s *Simulator) streamNavdata(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.NavdataInterval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			pkt, peer := s.step(now.Sub(last))
			last = now
			if peer == nil {
				continue
			}
			if _, err := s.navdata.WriteToUDP(pkt, peer); err != nil && ctx.Err() == nil {
				log.Debug().Err(err).Str("module", "sim").Msg("navdata write failed")
			}
		}
	}
}

// step advances the vehicle model by dt and renders the next report.
func (s *Simulator) step(dt time.Duration) ([]byte, *net.UDPAddr) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec := dt.Seconds()
	st := &s.state
	switch {
	case st.Flying && st.Gaz != 0:
		st.AltitudeMM += int32(st.Gaz * climbRate * sec)
	case st.Flying && st.AltitudeMM < cruiseAltitude:
		st.AltitudeMM = min(cruiseAltitude, st.AltitudeMM+int32(climbRate*sec))
	case !st.Flying:
		st.AltitudeMM = max(0, st.AltitudeMM-int32(climbRate*sec))
	}
	if st.AltitudeMM < 0 {
		st.AltitudeMM = 0
	}
	if st.Flying {
		s.headingMilli += st.Yaw * yawRate * sec
	}
	s.navSeq++

	var droneState uint32
	if st.Flying {
		droneState |= stateFlying
	}
	if st.Emergency {
		droneState |= stateEmergency
	}
	if time.Since(s.lastCommand) > watchdogTimeout {
		droneState |= stateComWatchdog
	}

	var demo *ardrone.DemoFields
	if st.DemoEnabled {
		ctrl := uint32(ctrlLanded)
		switch {
		case st.Flying && (st.Roll != 0 || st.Pitch != 0 || st.Gaz != 0 || st.Yaw != 0):
			ctrl = ctrlFlying
		case st.Flying:
			ctrl = ctrlHovering
		}
		demo = &ardrone.DemoFields{
			ControlState: ctrl << 16,
			Battery:      st.Battery,
			Theta:        float32(st.Pitch * 12000),
			Phi:          float32(st.Roll * 12000),
			Psi:          float32(s.headingMilli),
			Altitude:     st.AltitudeMM,
			VX:           float32(-st.Pitch * 1000),
			VY:           float32(st.Roll * 1000),
			VZ:           float32(st.Gaz * climbRate),
			FrameIndex:   s.frameNo,
		}
	}
	return ardrone.EncodeNavdata(s.navSeq, droneState, demo), s.navPeer
}

func (s *Simulator) serveVideo(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := s.video.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("video accept: %w", err)
		}
		log.Info().Str("module", "sim").Str("peer", conn.RemoteAddr().String()).Msg("video client connected")
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.streamVideo(ctx, conn)
		}()
	}
}

func (s *Simulator) streamVideo(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	ticker := time.NewTicker(s.cfg.FrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := conn.Write(s.nextFrame()); err != nil {
				log.Info().Err(err).Str("module", "sim").Msg("video client gone")
				return
			}
		}
	}
}

func (s *Simulator) nextFrame() []byte {
	s.mu.Lock()
	s.frameNo++
	n := s.frameNo
	s.mu.Unlock()

	ft := pave.FrameTypeP
	if (n-1)%uint32(s.cfg.KeyFrameEvery) == 0 {
		ft = pave.FrameTypeIDR
	}
	payload := make([]byte, s.cfg.FrameSize)
	for i := range payload {
		payload[i] = byte(n + uint32(i))
	}
	return pave.Encode(pave.Header{FrameNumber: n, FrameType: ft, Width: 640, Height: 360}, payload)
}
