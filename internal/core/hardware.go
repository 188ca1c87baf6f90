package core

import (
	"context"

	"github.com/dkeye/dronerelay/internal/domain"
)

//go:generate mockgen -source=hardware.go -destination=mocks/mock_hardware.go -package=mocks

// HardwareLink is the capability set the relay needs from the vehicle.
// Action methods are fire-and-forget: they must not block on the vehicle
// acknowledging them.
type HardwareLink interface {
	Takeoff()
	Land()
	Up(speed float64)
	Down(speed float64)
	Front(speed float64)
	Back(speed float64)
	Left(speed float64)
	Right(speed float64)
	Clockwise(speed float64)
	CounterClockwise(speed float64)
	Stop()
	DisableEmergency()

	// Telemetry is the single outbound stream of status reports.
	Telemetry() <-chan domain.Navdata
}

// Runner is implemented by collaborators whose background loops should
// live as long as the relay.
type Runner interface {
	Run(ctx context.Context) error
}
