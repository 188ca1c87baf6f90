package app

import (
	"testing"

	"github.com/dkeye/dronerelay/internal/domain"
)

func TestFlightGuardEnforcing(t *testing.T) {
	g := NewFlightGuard(true)
	up := domain.Command{Action: domain.ActionUp, Speed: 0.3, HasSpeed: true}

	if g.Mode() != Grounded {
		t.Fatalf("guard must start grounded")
	}
	if g.Admit(up) {
		t.Fatalf("movement while grounded must be refused")
	}
	if !g.Admit(domain.Command{Action: domain.ActionStop}) {
		t.Fatalf("stop is always admitted")
	}
	if !g.Admit(domain.Command{Action: domain.ActionDisableEmergency}) {
		t.Fatalf("disableEmergency is always admitted")
	}
	if !g.Admit(domain.Command{Action: domain.ActionTakeoff}) || g.Mode() != Flying {
		t.Fatalf("takeoff must switch to flying")
	}
	if !g.Admit(up) {
		t.Fatalf("movement while flying must be admitted")
	}
	if !g.Admit(domain.Command{Action: domain.ActionLand}) || g.Mode() != Grounded {
		t.Fatalf("land must switch to grounded")
	}
	if g.Admit(up) {
		t.Fatalf("movement after landing must be refused")
	}
}

func TestFlightGuardDisabledTracksOnly(t *testing.T) {
	g := NewFlightGuard(false)
	if !g.Admit(domain.Command{Action: domain.ActionLeft, Speed: 1, HasSpeed: true}) {
		t.Fatalf("disabled guard admits everything")
	}
	g.Admit(domain.Command{Action: domain.ActionTakeoff})
	if g.Mode() != Flying {
		t.Fatalf("disabled guard still tracks the mode, got %s", g.Mode())
	}
}
