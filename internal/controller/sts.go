package controller

import (
	"math"

	"github.com/crabotin-lab/quadbench/internal/plant"
	"github.com/crabotin-lab/quadbench/internal/reference"
)

// STSGains are the sliding-surface slope and the two super-twisting
// gains (alpha1, alpha2) for the horizontal plane, altitude, and
// attitude axes.
type STSGains struct {
	LambdaXY, LambdaZ float64
	Alpha1XY, Alpha2XY float64
	Alpha1Z, Alpha2Z   float64
	LambdaAtt          float64
	Alpha1Att, Alpha2Att float64
}

// Algo implements Gains.
func (STSGains) Algo() AlgoID { return STS }

// DefaultSTSGains are reasonable starting gains for the bench,
// satisfying the documented (not enforced) convergence precondition
// alpha1^2 >= 4*alpha2.
func DefaultSTSGains() STSGains {
	return STSGains{
		LambdaXY: 2.0, LambdaZ: 3.0,
		Alpha1XY: 3.0, Alpha2XY: 2.0,
		Alpha1Z: 4.0, Alpha2Z: 3.0,
		LambdaAtt:  8.0,
		Alpha1Att:  5.0,
		Alpha2Att:  4.0,
	}
}

// STSController is the continuous second-order super-twisting sliding
// mode law of spec.md §4.3.3. It owns six persistent integrator
// accumulators (v_x, v_y, v_z, v_phi, v_theta, v_psi).
type STSController struct {
	gains STSGains

	vx, vy, vz             float64
	vPhi, vTheta, vPsi     float64
}

// NewSTSController constructs an STS controller with the given gains.
func NewSTSController(g STSGains) *STSController {
	return &STSController{gains: g}
}

// Algo implements Controller.
func (c *STSController) Algo() AlgoID { return STS }

// Gains implements Controller.
func (c *STSController) Gains() Gains { return c.gains }

// SetGains implements Controller.
func (c *STSController) SetGains(g Gains) error {
	sg, ok := g.(STSGains)
	if !ok {
		return errWrongGains(STS, g)
	}
	c.gains = sg
	return nil
}

// Reset implements Controller. Zeros all six super-twisting
// accumulators, including v_psi, which spec.md §9 treats as
// zero-initialized at reset.
func (c *STSController) Reset() {
	c.vx, c.vy, c.vz = 0, 0, 0
	c.vPhi, c.vTheta, c.vPsi = 0, 0, 0
}

func superTwist(s, alpha1, alpha2, v float64) (u, vDot float64) {
	vDot = -alpha2 * sign(s)
	u = alpha1*math.Sqrt(math.Abs(s))*sign(s) + v
	return
}

// Compute implements Controller.
func (c *STSController) Compute(s plant.State, sp reference.Setpoint, p plant.Params, _ float64, _ reference.TrajectoryFn) (plant.Input, Telemetry) {
	g := c.gains

	sx := (sp.Vx - s.Vx) + g.LambdaXY*(sp.X-s.X)
	sy := (sp.Vy - s.Vy) + g.LambdaZ*(sp.Y-s.Y)
	sz := (sp.Vz - s.Vz) + g.LambdaXY*(sp.Z-s.Z)

	axDes, vxDot := superTwist(sx, g.Alpha1XY, g.Alpha2XY, c.vx)
	ayDes, vyDot := superTwist(sy, g.Alpha1Z, g.Alpha2Z, c.vy)
	azDes, vzDot := superTwist(sz, g.Alpha1XY, g.Alpha2XY, c.vz)
	c.vx += vxDot * DT
	c.vy += vyDot * DT
	c.vz += vzDot * DT

	cphi, ctheta := math.Cos(s.Phi), math.Cos(s.Theta)
	thrust, phiD, thetaD, _ := thrustVectorInversion(p, axDes, ayDes, azDes, s.Psi, sp.Yaw, cphi, ctheta)
	// As for SMC (spec.md §4.3.2/.3), the attitude sliding surfaces
	// target zero yaw rather than the setpoint yaw.
	const psiD = 0.0

	sPhi := -s.P + g.LambdaAtt*(phiD-s.Phi)
	sTheta := -s.Q + g.LambdaAtt*(thetaD-s.Theta)
	sPsi := -s.R + g.LambdaAtt*(psiD-s.Psi)

	uPhi, vPhiDot := superTwist(sPhi, g.Alpha1Att, g.Alpha2Att, c.vPhi)
	uTheta, vThetaDot := superTwist(sTheta, g.Alpha1Att, g.Alpha2Att, c.vTheta)
	uPsi, vPsiDot := superTwist(sPsi, g.Alpha1Att, g.Alpha2Att, c.vPsi)
	c.vPhi += vPhiDot * DT
	c.vTheta += vThetaDot * DT
	c.vPsi += vPsiDot * DT

	tauPhi := p.Ixx * uPhi
	tauTht := p.Iyy * uTheta
	tauPsi := p.Izz * uPsi

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
