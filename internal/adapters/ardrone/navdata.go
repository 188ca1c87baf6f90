package ardrone

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/dkeye/dronerelay/internal/domain"
)

const (
	navdataHeader   = 0x55667788
	navdataHdrLen   = 16
	optionHdrLen    = 4
	optionDemo      = 0
	optionChecksum  = 0xFFFF
	demoPayloadLen  = 40
	demoOptionSize  = 148
	checksumOptSize = 8
)

var (
	ErrShortPacket = errors.New("ardrone: navdata packet too short")
	ErrBadHeader   = errors.New("ardrone: bad navdata header")
	ErrBadOption   = errors.New("ardrone: bad navdata option")
	ErrChecksum    = errors.New("ardrone: navdata checksum mismatch")
)

var controlStates = []string{
	"CTRL_DEFAULT",
	"CTRL_INIT",
	"CTRL_LANDED",
	"CTRL_FLYING",
	"CTRL_HOVERING",
	"CTRL_TEST",
	"CTRL_TRANS_TAKEOFF",
	"CTRL_TRANS_GOTOFIX",
	"CTRL_TRANS_LANDING",
	"CTRL_TRANS_LOOPING",
}

var flyStates = []string{
	"FLYING_OK",
	"FLYING_LOST_ALT",
	"FLYING_LOST_ALT_GO_DOWN",
	"FLYING_ALT_OUT_ZONE",
	"FLYING_COMBINED_YAW",
	"FLYING_BRAKE",
	"FLYING_NO_VISION",
}

func stateName(names []string, i uint32) string {
	if int(i) < len(names) {
		return names[i]
	}
	return fmt.Sprintf("UNKNOWN_%d", i)
}

// ParseNavdata decodes one navdata datagram. Options other than demo and
// checksum are skipped.
func ParseNavdata(pkt []byte) (domain.Navdata, error) {
	var nd domain.Navdata
	if len(pkt) < navdataHdrLen {
		return nd, ErrShortPacket
	}
	le := binary.LittleEndian
	if h := le.Uint32(pkt); h != navdataHeader {
		return nd, fmt.Errorf("%w: %#x", ErrBadHeader, h)
	}
	nd.DroneState = le.Uint32(pkt[4:])
	nd.Sequence = le.Uint32(pkt[8:])

	off := navdataHdrLen
	for off+optionHdrLen <= len(pkt) {
		id := le.Uint16(pkt[off:])
		size := int(le.Uint16(pkt[off+2:]))
		if size < optionHdrLen || off+size > len(pkt) {
			return nd, fmt.Errorf("%w: id=%d size=%d", ErrBadOption, id, size)
		}
		data := pkt[off+optionHdrLen : off+size]

		switch id {
		case optionDemo:
			if len(data) < demoPayloadLen {
				return nd, fmt.Errorf("%w: demo option is %d bytes", ErrBadOption, len(data))
			}
			nd.Demo = parseDemo(data)
		case optionChecksum:
			if len(data) < 4 {
				return nd, fmt.Errorf("%w: checksum option is %d bytes", ErrBadOption, len(data))
			}
			if want, got := le.Uint32(data), checksum(pkt[:off]); want != got {
				return nd, fmt.Errorf("%w: want %d got %d", ErrChecksum, want, got)
			}
			return nd, nil
		}
		off += size
	}
	return nd, nil
}

func parseDemo(data []byte) *domain.DemoStatus {
	le := binary.LittleEndian
	f32 := func(o int) float64 { return float64(math.Float32frombits(le.Uint32(data[o:]))) }

	ctrl := le.Uint32(data[0:])
	theta := f32(8) / 1000
	phi := f32(12) / 1000
	psi := f32(16) / 1000
	return &domain.DemoStatus{
		ControlState:      stateName(controlStates, ctrl>>16),
		FlyState:          stateName(flyStates, ctrl&0xFFFF),
		BatteryPercentage: le.Uint32(data[4:]),
		FrontBackDegrees:  theta,
		LeftRightDegrees:  phi,
		ClockwiseDegrees:  psi,
		AltitudeMeters:    float64(int32(le.Uint32(data[20:]))) / 1000,
		FrameIndex:        le.Uint32(data[36:]),
		Rotation:          domain.Rotation{FrontBack: theta, LeftRight: phi, Clockwise: psi},
		Velocity:          domain.Velocity{X: f32(24), Y: f32(28), Z: f32(32)},
	}
}

func checksum(b []byte) uint32 {
	var sum uint32
	for _, c := range b {
		sum += uint32(c)
	}
	return sum
}

// DemoFields is the raw demo option content as the vehicle sends it.
type DemoFields struct {
	ControlState uint32 // major state << 16 | fly state
	Battery      uint32
	Theta        float32 // millidegrees
	Phi          float32
	Psi          float32
	Altitude     int32 // millimeters
	VX, VY, VZ   float32
	FrameIndex   uint32
}

// EncodeNavdata builds a navdata datagram. demo may be nil. It is the
// inverse of ParseNavdata and serves the simulator.
func EncodeNavdata(seq, droneState uint32, demo *DemoFields) []byte {
	le := binary.LittleEndian
	pkt := make([]byte, navdataHdrLen, navdataHdrLen+demoOptionSize+checksumOptSize)
	le.PutUint32(pkt[0:], navdataHeader)
	le.PutUint32(pkt[4:], droneState)
	le.PutUint32(pkt[8:], seq)

	if demo != nil {
		opt := make([]byte, demoOptionSize)
		le.PutUint16(opt[0:], optionDemo)
		le.PutUint16(opt[2:], demoOptionSize)
		d := opt[optionHdrLen:]
		le.PutUint32(d[0:], demo.ControlState)
		le.PutUint32(d[4:], demo.Battery)
		le.PutUint32(d[8:], math.Float32bits(demo.Theta))
		le.PutUint32(d[12:], math.Float32bits(demo.Phi))
		le.PutUint32(d[16:], math.Float32bits(demo.Psi))
		le.PutUint32(d[20:], uint32(demo.Altitude))
		le.PutUint32(d[24:], math.Float32bits(demo.VX))
		le.PutUint32(d[28:], math.Float32bits(demo.VY))
		le.PutUint32(d[32:], math.Float32bits(demo.VZ))
		le.PutUint32(d[36:], demo.FrameIndex)
		pkt = append(pkt, opt...)
	}

	sum := checksum(pkt)
	opt := make([]byte, checksumOptSize)
	le.PutUint16(opt[0:], optionChecksum)
	le.PutUint16(opt[2:], checksumOptSize)
	le.PutUint32(opt[4:], sum)
	return append(pkt, opt...)
}
