package controller

import (
	"math"

	"github.com/crabotin-lab/quadbench/internal/plant"
	"github.com/crabotin-lab/quadbench/internal/reference"
)

// SMCGains are the sliding-surface slope, reaching gain, and boundary
// layer thickness for the horizontal plane, altitude, and attitude.
type SMCGains struct {
	LambdaXY, LambdaZ float64
	EtaXY, EtaZ       float64
	PhiXY, PhiZ       float64
	LambdaAtt         float64
	EtaAtt            float64
	PhiAtt            float64
}

// Algo implements Gains.
func (SMCGains) Algo() AlgoID { return SMC }

// DefaultSMCGains are reasonable starting gains for the bench.
func DefaultSMCGains() SMCGains {
	return SMCGains{
		LambdaXY: 2.0, LambdaZ: 3.0,
		EtaXY: 3.0, EtaZ: 5.0,
		PhiXY: 0.3, PhiZ: 0.3,
		LambdaAtt: 8.0,
		EtaAtt:    6.0,
		PhiAtt:    0.2,
	}
}

// SMCController is the first-order sliding-mode law of spec.md §4.3.2.
// It carries no persistent state beyond the telemetry-only surface
// values recomputed each tick.
type SMCController struct {
	gains SMCGains
}

// NewSMCController constructs an SMC controller with the given gains.
func NewSMCController(g SMCGains) *SMCController {
	return &SMCController{gains: g}
}

// Algo implements Controller.
func (c *SMCController) Algo() AlgoID { return SMC }

// Gains implements Controller.
func (c *SMCController) Gains() Gains { return c.gains }

// SetGains implements Controller.
func (c *SMCController) SetGains(g Gains) error {
	sg, ok := g.(SMCGains)
	if !ok {
		return errWrongGains(SMC, g)
	}
	c.gains = sg
	return nil
}

// Reset implements Controller. First-order SMC has no persistent
// internal state to clear.
func (c *SMCController) Reset() {}

// Compute implements Controller.
func (c *SMCController) Compute(s plant.State, sp reference.Setpoint, p plant.Params, _ float64, _ reference.TrajectoryFn) (plant.Input, Telemetry) {
	g := c.gains

	sx := (sp.Vx - s.Vx) + g.LambdaXY*(sp.X-s.X)
	sy := (sp.Vy - s.Vy) + g.LambdaZ*(sp.Y-s.Y)
	sz := (sp.Vz - s.Vz) + g.LambdaXY*(sp.Z-s.Z)

	axDes := g.LambdaXY*(sp.Vx-s.Vx) + g.EtaXY*sat(sx, g.PhiXY)
	ayDes := g.LambdaZ*(sp.Vy-s.Vy) + g.EtaZ*sat(sy, g.PhiZ)
	azDes := g.LambdaXY*(sp.Vz-s.Vz) + g.EtaXY*sat(sz, g.PhiXY)

	cphi, ctheta := math.Cos(s.Phi), math.Cos(s.Theta)
	thrust, phiD, thetaD, _ := thrustVectorInversion(p, axDes, ayDes, azDes, s.Psi, sp.Yaw, cphi, ctheta)
	// Spec.md §4.3.2 fixes the yaw sliding-mode target to zero rather
	// than tracking the setpoint yaw, unlike the PID inner loop.
	const psiD = 0.0

	sPhi := -s.P + g.LambdaAtt*(phiD-s.Phi)
	sTheta := -s.Q + g.LambdaAtt*(thetaD-s.Theta)
	sPsi := -s.R + g.LambdaAtt*(psiD-s.Psi)

	tauPhi := p.Ixx * (g.LambdaAtt*(-s.P) + g.EtaAtt*sat(sPhi, g.PhiAtt))
	tauTht := p.Iyy * (g.LambdaAtt*(-s.Q) + g.EtaAtt*sat(sTheta, g.PhiAtt))
	tauPsi := p.Izz * (g.LambdaAtt*(-s.R) + g.EtaAtt*sat(sPsi, g.PhiAtt))

	in := plant.Input{Thrust: thrust, TauPhi: tauPhi, TauTht: tauTht, TauPsi: tauPsi}
	tel := Telemetry{
		Input:        in,
		SurfaceX:     sx,
		SurfaceY:     sy,
		SurfaceZ:     sz,
		DesiredPhi:   phiD,
		DesiredTheta: thetaD,
		DesiredYaw:   psiD,
	}
	return in, tel
}
