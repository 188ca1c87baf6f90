package app

import (
	"sync"

	"github.com/dkeye/dronerelay/internal/domain"
)

type FlightMode int

const (
	Grounded FlightMode = iota
	Flying
)

func (m FlightMode) String() string {
	if m == Flying {
		return "flying"
	}
	return "grounded"
}

// FlightGuard tracks Grounded -> Flying -> Grounded from the takeoff and
// land commands it observes. When enforcing, movement commands are
// refused while grounded. A disabled guard still tracks the mode.
type FlightGuard struct {
	mu      sync.Mutex
	mode    FlightMode
	enforce bool
}

func NewFlightGuard(enforce bool) *FlightGuard {
	return &FlightGuard{enforce: enforce}
}

// Admit records cmd and reports whether it may be dispatched.
func (g *FlightGuard) Admit(cmd domain.Command) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch cmd.Action {
	case domain.ActionTakeoff:
		g.mode = Flying
		return true
	case domain.ActionLand:
		g.mode = Grounded
		return true
	}
	if g.enforce && g.mode == Grounded && cmd.Action.IsMovement() {
		return false
	}
	return true
}

func (g *FlightGuard) Mode() FlightMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}
