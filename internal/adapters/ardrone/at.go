package ardrone

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AT*REF control bits. Bits 18, 20, 22, 24 and 28 must always be set.
const (
	refBase      = 1<<18 | 1<<20 | 1<<22 | 1<<24 | 1<<28
	refEmergency = 1 << 8
	refTakeoff   = 1 << 9
)

// atCommand is one AT command before it gets a sequence number.
type atCommand struct {
	name string
	args []string
}

func (c atCommand) encode(seq uint32) string {
	var b strings.Builder
	b.WriteString("AT*")
	b.WriteString(c.name)
	b.WriteByte('=')
	b.WriteString(strconv.FormatUint(uint64(seq), 10))
	for _, a := range c.args {
		b.WriteByte(',')
		b.WriteString(a)
	}
	b.WriteByte('\r')
	return b.String()
}

func intArg(v int64) string { return strconv.FormatInt(v, 10) }

// floatArg encodes f as the signed integer that shares its float32 bit
// pattern, which is how AT commands carry floats. NaN is encoded like any
// other value.
func floatArg(f float64) string {
	return intArg(int64(int32(math.Float32bits(float32(f)))))
}

func quotedArg(s string) string { return strconv.Quote(s) }

func refCommand(fly, emergency bool) atCommand {
	v := int64(refBase)
	if fly {
		v |= refTakeoff
	}
	if emergency {
		v |= refEmergency
	}
	return atCommand{name: "REF", args: []string{intArg(v)}}
}

// pcmdCommand sends progressive movement. All zero means hover, which
// the vehicle expects with the progressive flag cleared.
func pcmdCommand(m movement) atCommand {
	flag := int64(1)
	if m == (movement{}) {
		flag = 0
	}
	return atCommand{name: "PCMD", args: []string{
		intArg(flag),
		floatArg(m.roll),
		floatArg(m.pitch),
		floatArg(m.gaz),
		floatArg(m.yaw),
	}}
}

func configCommand(key, value string) atCommand {
	return atCommand{name: "CONFIG", args: []string{quotedArg(key), quotedArg(value)}}
}

func watchdogCommand() atCommand { return atCommand{name: "COMWDG"} }

// ParseAT splits a datagram into command names and raw arguments. It is
// the inverse of encode and serves the simulator.
func ParseAT(datagram string) ([]ATCall, error) {
	var calls []ATCall
	for _, raw := range strings.Split(datagram, "\r") {
		if raw == "" {
			continue
		}
		if !strings.HasPrefix(raw, "AT*") {
			return calls, fmt.Errorf("ardrone: bad AT command %q", raw)
		}
		name, rest, _ := strings.Cut(raw[3:], "=")
		fields := strings.Split(rest, ",")
		seq, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return calls, fmt.Errorf("ardrone: bad sequence in %q: %w", raw, err)
		}
		calls = append(calls, ATCall{Name: name, Seq: uint32(seq), Args: fields[1:]})
	}
	return calls, nil
}

// ATCall is a decoded AT command.
type ATCall struct {
	Name string
	Seq  uint32
	Args []string
}

// FloatArg decodes argument i of a PCMD-style call.
func (c ATCall) FloatArg(i int) (float64, error) {
	if i >= len(c.Args) {
		return 0, fmt.Errorf("ardrone: %s has no argument %d", c.Name, i)
	}
	v, err := strconv.ParseInt(c.Args[i], 10, 32)
	if err != nil {
		return 0, err
	}
	return float64(math.Float32frombits(uint32(int32(v)))), nil
}

// RefFlags reports the takeoff and emergency bits of a REF call.
func (c ATCall) RefFlags() (takeoff, emergency bool, err error) {
	if c.Name != "REF" || len(c.Args) == 0 {
		return false, false, fmt.Errorf("ardrone: not a REF call: %s", c.Name)
	}
	v, err := strconv.ParseInt(c.Args[0], 10, 64)
	if err != nil {
		return false, false, err
	}
	return v&refTakeoff != 0, v&refEmergency != 0, nil
}
