package plant

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestGroundClamp(t *testing.T) {
	p := DefaultParams()
	s := State{Y: 0.05, Vy: -5}
	Step(&s, p, Input{}, Wind{}, 1.0/120)
	if s.Y < 0 {
		t.Fatalf("y went negative: %v", s.Y)
	}
}

func TestGroundClampNonNegativeAfterManySteps(t *testing.T) {
	p := DefaultParams()
	s := State{Y: 0.2}
	for i := 0; i < 500; i++ {
		Step(&s, p, Input{}, Wind{}, 1.0/120)
		if s.Y < 0 {
			t.Fatalf("y went negative at step %d: %v", i, s.Y)
		}
		if s.Y == 0 && s.Vy < 0 {
			t.Fatalf("vy should be clamped >= 0 once grounded, got %v", s.Vy)
		}
	}
}

func TestMotorSpeedsWithinBounds(t *testing.T) {
	p := DefaultParams()
	in := Input{Thrust: 100, TauPhi: 10, TauTht: -10, TauPsi: 5}
	speeds, _ := AllocateMotors(p, in)
	for i, w := range speeds {
		if w < 0 || w > p.OmegaMax {
			t.Fatalf("motor %d speed %v out of [0, %v]", i, w, p.OmegaMax)
		}
	}
}

func TestMotorAllocationRoundTrip(t *testing.T) {
	p := DefaultParams()
	in := Input{Thrust: p.Mass * p.G, TauPhi: 0.01, TauTht: -0.02, TauPsi: 0.003}
	speeds, sat := AllocateMotors(p, in)
	for _, s := range sat.Motor {
		if s {
			t.Fatal("unexpected saturation in round trip test")
		}
	}
	out := ForwardMix(p, speeds)
	if !floats.EqualWithinAbs(out.Thrust, in.Thrust, 1e-9) {
		t.Fatalf("thrust round trip: got %v want %v", out.Thrust, in.Thrust)
	}
	if !floats.EqualWithinAbs(out.TauPhi, in.TauPhi, 1e-9) {
		t.Fatalf("tauPhi round trip: got %v want %v", out.TauPhi, in.TauPhi)
	}
	if !floats.EqualWithinAbs(out.TauTht, in.TauTht, 1e-9) {
		t.Fatalf("tauTheta round trip: got %v want %v", out.TauTht, in.TauTht)
	}
	if !floats.EqualWithinAbs(out.TauPsi, in.TauPsi, 1e-9) {
		t.Fatalf("tauPsi round trip: got %v want %v", out.TauPsi, in.TauPsi)
	}
}

func TestHoverEquilibriumDrift(t *testing.T) {
	p := DefaultParams()
	s := State{Y: 3}
	in := Input{Thrust: p.Mass * p.G}
	dt := 1.0 / 120
	steps := int(1.0 / dt)
	for i := 0; i < steps; i++ {
		Step(&s, p, in, Wind{}, dt)
	}
	drift := math.Sqrt(s.X*s.X + (s.Y-3)*(s.Y-3) + s.Z*s.Z)
	if drift > 1e-6 {
		t.Fatalf("hover drift too large after 1s: %v", drift)
	}
}

func TestThrustVectorAtZeroAttitude(t *testing.T) {
	p := DefaultParams()
	s := State{}
	in := Input{Thrust: 10}
	Step(&s, p, in, Wind{}, 1.0/120)
	// At zero attitude, thrust is purely along +y.
	if s.Vx != 0 || s.Vz != 0 {
		t.Fatalf("expected zero horizontal acceleration at zero attitude, got vx=%v vz=%v", s.Vx, s.Vz)
	}
}
