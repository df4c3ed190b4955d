package controller

import (
	"testing"

	"github.com/crabotin-lab/quadbench/internal/plant"
	"github.com/crabotin-lab/quadbench/internal/reference"
	"gonum.org/v1/gonum/floats"
)

func TestSatZeroBoundaryLayerIsSign(t *testing.T) {
	if sat(0, 0) != 0 {
		t.Fatalf("sat(0,0) should be 0 (sign(0)=0), got %v", sat(0, 0))
	}
	if sat(2, 0) != 1 {
		t.Fatalf("sat(2,0) should be 1, got %v", sat(2, 0))
	}
	if sat(-2, 0) != -1 {
		t.Fatalf("sat(-2,0) should be -1, got %v", sat(-2, 0))
	}
}

func TestSatLinearInsideBoundaryLayer(t *testing.T) {
	phi := 0.5
	for _, s := range []float64{-0.4, -0.1, 0, 0.1, 0.4} {
		got := sat(s, phi)
		want := s / phi
		if !floats.EqualWithinAbs(got, want, 1e-12) {
			t.Fatalf("sat(%v,%v)=%v want %v", s, phi, got, want)
		}
	}
	// Outside the boundary layer it saturates to +/-1.
	if sat(10, phi) != 1 {
		t.Fatalf("expected saturation to 1")
	}
	if sat(-10, phi) != -1 {
		t.Fatalf("expected saturation to -1")
	}
}

func TestPIDIntegratorSaturatesAtIMax(t *testing.T) {
	g := DefaultPIDGains()
	g.IMax = 1.0
	c := NewPIDController(g)
	p := plant.DefaultParams()
	// Constant large error for long enough that the integrator clamps.
	sp := reference.Setpoint{X: 100, Y: 3, Z: 0}
	s := plant.State{}
	for i := 0; i < 10000; i++ {
		c.Compute(s, sp, p, 0, reference.TrajectoryFn{})
	}
	if c.intX != g.IMax {
		t.Fatalf("expected intX saturated at %v, got %v", g.IMax, c.intX)
	}
}

func TestPIDResetZeroesIntegrators(t *testing.T) {
	c := NewPIDController(DefaultPIDGains())
	p := plant.DefaultParams()
	sp := reference.Setpoint{X: 10, Y: 3, Z: 0}
	for i := 0; i < 100; i++ {
		c.Compute(plant.State{}, sp, p, 0, reference.TrajectoryFn{})
	}
	c.Reset()
	if c.intX != 0 || c.intY != 0 || c.intZ != 0 {
		t.Fatalf("Reset did not zero integrators: %v %v %v", c.intX, c.intY, c.intZ)
	}
}

func TestSetGainsRejectsWrongVariant(t *testing.T) {
	c := NewPIDController(DefaultPIDGains())
	if err := c.SetGains(DefaultSMCGains()); err == nil {
		t.Fatal("expected error setting SMC gains on a PID controller")
	}
}

func TestSTSResetZeroesAllAccumulatorsIncludingYaw(t *testing.T) {
	c := NewSTSController(DefaultSTSGains())
	p := plant.DefaultParams()
	sp := reference.Setpoint{X: 5, Y: 5, Z: 5, Yaw: 1}
	for i := 0; i < 50; i++ {
		c.Compute(plant.State{}, sp, p, 0, reference.TrajectoryFn{})
	}
	c.Reset()
	if c.vx != 0 || c.vy != 0 || c.vz != 0 || c.vPhi != 0 || c.vTheta != 0 || c.vPsi != 0 {
		t.Fatalf("STS Reset left nonzero accumulators")
	}
}

func TestThrustVectorInversionBounds(t *testing.T) {
	p := plant.DefaultParams()
	thrust, phiD, thetaD, _ := thrustVectorInversion(p, 50, 50, 50, 0, 0, 1, 1)
	if thrust < 0 || thrust > 4*p.Mass*p.G {
		t.Fatalf("thrust %v out of [0, %v]", thrust, 4*p.Mass*p.G)
	}
	if phiD < -0.6 || phiD > 0.6 {
		t.Fatalf("phiD %v out of [-0.6, 0.6]", phiD)
	}
	if thetaD < -0.6 || thetaD > 0.6 {
		t.Fatalf("thetaD %v out of [-0.6, 0.6]", thetaD)
	}
}

func TestMPCHorizonHasNPlus1EntriesAndStartsAtCurrentPosition(t *testing.T) {
	g := DefaultMPCGains()
	g.N = 10
	c := NewMPCController(g)
	p := plant.DefaultParams()
	s := plant.State{X: 4, Y: 3, Z: 0}
	refFn := reference.GetTrajectoryFn(reference.FIGURE8, reference.DefaultStepParams())
	_, tel := c.Compute(s, reference.Setpoint{Y: 3}, p, 0, refFn)
	if len(tel.MPCHorizon) != g.N+1 {
		t.Fatalf("expected %d horizon entries, got %d", g.N+1, len(tel.MPCHorizon))
	}
	first := tel.MPCHorizon[0]
	if !floats.EqualWithinAbs(first.X, s.X, 1e-6) || !floats.EqualWithinAbs(first.Y, s.Y, 1e-6) || !floats.EqualWithinAbs(first.Z, s.Z, 1e-6) {
		t.Fatalf("first horizon entry %+v does not match current position %+v", first, s)
	}
}

func TestNewRejectsUnknownAlgo(t *testing.T) {
	if _, err := New(AlgoID(99)); err == nil {
		t.Fatal("expected error for unknown algorithm id")
	}
}
