package domain

// Action is a motion or state instruction understood by the vehicle.
type Action string

const (
	ActionTakeoff          Action = "takeoff"
	ActionLand             Action = "land"
	ActionUp               Action = "up"
	ActionDown             Action = "down"
	ActionFront            Action = "front"
	ActionBack             Action = "back"
	ActionLeft             Action = "left"
	ActionRight            Action = "right"
	ActionClockwise        Action = "clockwise"
	ActionCounterClockwise Action = "counterClockwise"
	ActionStop             Action = "stop"
	ActionDisableEmergency Action = "disableEmergency"
)

var movementActions = map[Action]bool{
	ActionUp:               true,
	ActionDown:             true,
	ActionFront:            true,
	ActionBack:             true,
	ActionLeft:             true,
	ActionRight:            true,
	ActionClockwise:        true,
	ActionCounterClockwise: true,
}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionTakeoff, ActionLand, ActionStop, ActionDisableEmergency:
		return true
	}
	return movementActions[a]
}

// IsMovement reports whether a takes a speed argument.
func (a Action) IsMovement() bool { return movementActions[a] }

// Command is one parsed client instruction. It is never stored.
//
// Speed is only meaningful for movement actions. When the client sent a
// speed field that is not a number, HasSpeed is true and Speed is NaN; the
// value is forwarded to the vehicle as is.
type Command struct {
	Action   Action
	Speed    float64
	HasSpeed bool
}
