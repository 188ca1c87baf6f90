package app

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dkeye/dronerelay/internal/core"
	"github.com/dkeye/dronerelay/internal/domain"
)

// KindControl is the only actionable message kind.
const KindControl = "CONTROL"

const fieldSep = ":"

var (
	// ErrUnknownKind means the message is not a CONTROL message. Callers
	// log it and move on.
	ErrUnknownKind = errors.New("unknown message kind")
	// ErrMissingAction means a CONTROL message without an action field.
	ErrMissingAction = errors.New("missing control action")
	// ErrUnknownAction means a CONTROL message whose action is not known.
	// Such commands are dropped without telling the client.
	ErrUnknownAction = errors.New("unknown control action")
)

// ParseCommand parses "CONTROL:<action>" or "CONTROL:<action>:<speed>".
//
// A speed field that is not a number parses to NaN and the command is
// still returned; Dispatch forwards the NaN to the vehicle.
func ParseCommand(raw string) (domain.Command, error) {
	fields := strings.Split(raw, fieldSep)
	if fields[0] != KindControl {
		return domain.Command{}, fmt.Errorf("%w: %q", ErrUnknownKind, fields[0])
	}
	params := fields[1:]
	if len(params) == 0 || params[0] == "" {
		return domain.Command{}, ErrMissingAction
	}

	action := domain.Action(params[0])
	if !action.Valid() {
		return domain.Command{}, fmt.Errorf("%w: %q", ErrUnknownAction, params[0])
	}

	cmd := domain.Command{Action: action}
	if len(params) > 1 {
		cmd.HasSpeed = true
		cmd.Speed = parseSpeed(params[1])
	}
	return cmd, nil
}

func parseSpeed(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

var dispatchTable = map[domain.Action]func(link core.HardwareLink, speed float64){
	domain.ActionTakeoff:          func(l core.HardwareLink, _ float64) { l.Takeoff() },
	domain.ActionLand:             func(l core.HardwareLink, _ float64) { l.Land() },
	domain.ActionUp:               core.HardwareLink.Up,
	domain.ActionDown:             core.HardwareLink.Down,
	domain.ActionFront:            core.HardwareLink.Front,
	domain.ActionBack:             core.HardwareLink.Back,
	domain.ActionLeft:             core.HardwareLink.Left,
	domain.ActionRight:            core.HardwareLink.Right,
	domain.ActionClockwise:        core.HardwareLink.Clockwise,
	domain.ActionCounterClockwise: core.HardwareLink.CounterClockwise,
	domain.ActionStop:             func(l core.HardwareLink, _ float64) { l.Stop() },
	domain.ActionDisableEmergency: func(l core.HardwareLink, _ float64) { l.DisableEmergency() },
}

// Dispatch invokes the link call for cmd. There is no flight state check
// here; every command goes out on its own. It returns false for actions
// that have no handler.
func Dispatch(link core.HardwareLink, cmd domain.Command) bool {
	fn, ok := dispatchTable[cmd.Action]
	if !ok {
		return false
	}
	fn(link, cmd.Speed)
	return true
}
