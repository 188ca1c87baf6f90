package domain

// Navdata is one status report from the vehicle. Demo is nil when the
// report does not carry the demo option.
type Navdata struct {
	Sequence   uint32
	DroneState uint32
	Demo       *DemoStatus
}

// DemoStatus is the subset of navdata relayed to clients.
type DemoStatus struct {
	ControlState      string   `json:"controlState"`
	FlyState          string   `json:"flyState"`
	BatteryPercentage uint32   `json:"batteryPercentage"`
	FrontBackDegrees  float64  `json:"frontBackDegrees"`
	LeftRightDegrees  float64  `json:"leftRightDegrees"`
	ClockwiseDegrees  float64  `json:"clockwiseDegrees"`
	AltitudeMeters    float64  `json:"altitudeMeters"`
	FrameIndex        uint32   `json:"frameIndex"`
	Rotation          Rotation `json:"rotation"`
	Velocity          Velocity `json:"velocity"`
}

// Rotation is in degrees.
type Rotation struct {
	FrontBack float64 `json:"frontBack"`
	LeftRight float64 `json:"leftRight"`
	Clockwise float64 `json:"clockwise"`
}

// Velocity is in mm/s as reported by the vehicle.
type Velocity struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}
