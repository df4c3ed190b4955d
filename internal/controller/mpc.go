package controller

import (
	"math"

	"github.com/crabotin-lab/quadbench/internal/plant"
	"github.com/crabotin-lab/quadbench/internal/reference"
)

// MPCGains are the horizon length, position/velocity weights, input
// weight, and the PD attitude-loop gains shared with §4.3.1's inner
// loop.
type MPCGains struct {
	N            int
	QPos, QVel   float64
	R            float64
	KpAtt, KdAtt float64
}

// Algo implements Gains.
func (MPCGains) Algo() AlgoID { return MPC }

// DefaultMPCGains are reasonable starting gains for the bench.
func DefaultMPCGains() MPCGains {
	return MPCGains{
		N: 10, QPos: 4.0, QVel: 1.5, R: 0.1,
		KpAtt: 0.3, KdAtt: 0.05,
	}
}

// MPCController is the closed-form, weighted-heuristic receding-
// horizon law of spec.md §4.3.4. It is explicitly not a constrained-QP
// solver (spec.md §1 Non-goals). It keeps no persistent state: the
// horizon is recomputed every tick and returned only in the Telemetry.
type MPCController struct {
	gains MPCGains
}

// NewMPCController constructs an MPC controller with the given gains.
func NewMPCController(g MPCGains) *MPCController {
	return &MPCController{gains: g}
}

// Algo implements Controller.
func (c *MPCController) Algo() AlgoID { return MPC }

// Gains implements Controller.
func (c *MPCController) Gains() Gains { return c.gains }

// SetGains implements Controller.
func (c *MPCController) SetGains(g Gains) error {
	mg, ok := g.(MPCGains)
	if !ok {
		return errWrongGains(MPC, g)
	}
	c.gains = mg
	return nil
}

// Reset implements Controller. The predictive controller has no
// integrator to zero; reset simply means the next Compute starts from
// a fresh horizon, which is naturally true since the horizon is
// recomputed in full every tick.
func (c *MPCController) Reset() {}

type axisRollout struct {
	pos, vel float64
}

// horizonAccel implements the weighted-sum heuristic of spec.md
// §4.3.4 for a single translational axis and returns both the
// commanded acceleration and the N predicted positions of the
// constant-velocity rollout (used by the caller to assemble the
// published 3-D horizon).
func horizonAccel(now float64, axis axisRollout, refAt func(t float64) float64, n int, dtPred, qPos, qVel, r float64) (aDes float64, predicted []float64) {
	predicted = make([]float64, n)
	var sum, sumW float64
	for k := 1; k <= n; k++ {
		tk := now + float64(k)*dtPred
		refK := refAt(tk)
		predK := axis.pos + axis.vel*(float64(k)*dtPred)
		predicted[k-1] = predK
		eK := refK - predK
		wK := 1 - 0.3*float64(k-1)/float64(n)
		sum += wK * (qPos*eK - qVel*axis.vel)
		sumW += wK
	}
	if sumW == 0 {
		return 0, predicted
	}
	aDes = sum / (sumW * (1 + r))
	return
}

// Compute implements Controller.
func (c *MPCController) Compute(s plant.State, sp reference.Setpoint, p plant.Params, now float64, refFn reference.TrajectoryFn) (plant.Input, Telemetry) {
	g := c.gains
	n := g.N
	if n <= 0 {
		n = 1
	}
	dtPred := 2 * DT

	axDes, predX := horizonAccel(now, axisRollout{s.X, s.Vx}, func(t float64) float64 { return refFn.At(t).X }, n, dtPred, g.QPos, g.QVel, g.R)
	ayDes, predY := horizonAccel(now, axisRollout{s.Y, s.Vy}, func(t float64) float64 { return refFn.At(t).Y }, n, dtPred, g.QPos, g.QVel, g.R)
	azDes, predZ := horizonAccel(now, axisRollout{s.Z, s.Vz}, func(t float64) float64 { return refFn.At(t).Z }, n, dtPred, g.QPos, g.QVel, g.R)

	cphi, ctheta := math.Cos(s.Phi), math.Cos(s.Theta)
	thrust, phiD, thetaD, psiD := thrustVectorInversion(p, axDes, ayDes, azDes, s.Psi, sp.Yaw, cphi, ctheta)

	tauPhi := g.KpAtt*(phiD-s.Phi) - g.KdAtt*s.P
	tauTht := g.KpAtt*(thetaD-s.Theta) - g.KdAtt*s.Q
	tauPsi := g.KpAtt*(psiD-s.Psi) - g.KdAtt*s.R

	in := plant.Input{Thrust: thrust, TauPhi: tauPhi, TauTht: tauTht, TauPsi: tauPsi}

	horizon := make([]reference.Setpoint, n+1)
	horizon[0] = reference.Setpoint{X: s.X, Y: s.Y, Z: s.Z}
	for k := 0; k < n; k++ {
		horizon[k+1] = reference.Setpoint{X: predX[k], Y: predY[k], Z: predZ[k]}
	}

	tel := Telemetry{
		Input:        in,
		MPCHorizon:   horizon,
		DesiredPhi:   phiD,
		DesiredTheta: thetaD,
		DesiredYaw:   psiD,
	}
	return in, tel
}
