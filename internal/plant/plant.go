// Package plant implements the 6-DOF nonlinear rigid-body dynamics of
// the quadrotor: state, parameters, the RK4-advanced derivative
// function, ground contact handling, and inverse motor allocation.
package plant

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/crabotin-lab/quadbench/internal/rk4"
)

// State is the 12-scalar rigid-body state plus the four motor speeds
// recomputed each tick for telemetry. y is the vertical (up) axis; x
// and z span the horizontal plane.
type State struct {
	X, Y, Z    float64 // position, world frame, m
	Vx, Vy, Vz float64 // linear velocity, world frame, m/s
	Phi        float64 // roll, rad
	Theta      float64 // pitch, rad
	Psi        float64 // yaw, rad
	P, Q, R    float64 // body-frame angular rates, rad/s

	Motors [4]float64 // rad/s, telemetry only
}

// Params are the immutable parameters of a single run.
type Params struct {
	Mass float64 // kg
	G    float64 // m/s^2

	Ixx, Iyy, Izz float64 // kg*m^2

	ArmLength float64 // m
	ThrustK   float64 // thrust coefficient kT
	DragK     float64 // yaw-drag coefficient kD
	LinearCd  float64 // translational drag
	OmegaMax  float64 // rad/s
}

// DefaultParams returns the bench's default quadrotor parameters; must
// match exactly across implementations for telemetry parity.
func DefaultParams() Params {
	return Params{
		Mass:      0.5,
		G:         9.81,
		Ixx:       0.0023,
		Iyy:       0.0023,
		Izz:       0.004,
		ArmLength: 0.17,
		ThrustK:   2.98e-6,
		DragK:     1.14e-7,
		LinearCd:  0.04,
		OmegaMax:  2200,
	}
}

// Input is the body-axis thrust and torque command produced by a
// controller.
type Input struct {
	Thrust float64
	TauPhi float64
	TauTht float64
	TauPsi float64
}

// Wind is a transient per-tick force sample added to world-frame
// linear acceleration.
type Wind struct {
	Fx, Fy, Fz float64
}

// Saturation records whether motor allocation clamped any rotor, for
// telemetry only; it never feeds back into the dynamics.
type Saturation struct {
	Motor [4]bool
}

// Step advances state in place by one RK4 step of dt seconds under the
// given input and wind sample.
func Step(s *State, p Params, in Input, w Wind, dt float64) Saturation {
	vec := toVector(*s)
	next := rk4.Step(func(_ float64, v []float64) []float64 {
		return derivative(v, p, in, w)
	}, 0, dt, vec)
	*s = fromVector(next, s.Motors)

	// Ground contact: soft clamp, attitude untouched.
	if s.Y < 0 {
		s.Y = 0
		if s.Vy < 0 {
			s.Vy = 0
		}
	}

	sat := allocateMotors(s, p, in)
	return sat
}

// derivative returns the 12 time-derivatives for the RK4 integrator.
// Vector layout: x,y,z,vx,vy,vz,phi,theta,psi,p,q,r.
func derivative(v []float64, p Params, in Input, w Wind) []float64 {
	vx, vy, vz := v[3], v[4], v[5]
	phi, theta, psi := v[6], v[7], v[8]
	pr, qr, rr := v[9], v[10], v[11]

	sphi, cphi := math.Sincos(phi)
	_, ctheta := math.Sincos(theta)

	T := in.Thrust
	up := bodyUpInWorld(phi, theta, psi)
	var thrustWorld mat.VecDense
	thrustWorld.ScaleVec(T, up)
	tx, ty, tz := thrustWorld.AtVec(0), thrustWorld.AtVec(1), thrustWorld.AtVec(2)

	ax := tx/p.Mass - p.LinearCd*vx + w.Fx
	ay := ty/p.Mass - p.G - p.LinearCd*vy + w.Fy
	az := tz/p.Mass - p.LinearCd*vz + w.Fz

	// cos(theta) is deliberately unguarded here: the Euler-kinematics
	// singularity at theta = +/- pi/2 is the caller's responsibility to
	// avoid (the attitude clamp to +/-0.6 rad in the controllers keeps
	// any well-behaved setpoint well clear of it).
	phiDot := pr + math.Tan(theta)*(sphi*qr+cphi*rr)
	thetaDot := cphi*qr - sphi*rr
	psiDot := (sphi*qr + cphi*rr) / ctheta

	pDot := (in.TauPhi - (p.Izz-p.Iyy)*qr*rr) / p.Ixx
	qDot := (in.TauTht - (p.Ixx-p.Izz)*pr*rr) / p.Iyy
	rDot := (in.TauPsi - (p.Iyy-p.Ixx)*pr*qr) / p.Izz

	return []float64{vx, vy, vz, ax, ay, az, phiDot, thetaDot, psiDot, pDot, qDot, rDot}
}

// bodyUpInWorld is the body-frame +y (thrust) axis expressed in world
// coordinates under the ZYX Euler convention, as a gonum vector so the
// thrust-world projection in derivative is a single ScaleVec rather
// than three hand-expanded scalar products. Generalized from the
// teacher's rotation.go, which carries the equivalent PQW-to-ECI
// column extraction as a plain []float64 returned from R1/R2/R3.
func bodyUpInWorld(phi, theta, psi float64) *mat.VecDense {
	sphi, cphi := math.Sincos(phi)
	stheta, ctheta := math.Sincos(theta)
	spsi, cpsi := math.Sincos(psi)
	return mat.NewVecDense(3, []float64{
		cpsi*stheta*cphi + spsi*sphi,
		ctheta * cphi,
		spsi*stheta*cphi - cpsi*sphi,
	})
}

func toVector(s State) []float64 {
	return []float64{s.X, s.Y, s.Z, s.Vx, s.Vy, s.Vz, s.Phi, s.Theta, s.Psi, s.P, s.Q, s.R}
}

func fromVector(v []float64, motors [4]float64) State {
	return State{
		X: v[0], Y: v[1], Z: v[2],
		Vx: v[3], Vy: v[4], Vz: v[5],
		Phi: v[6], Theta: v[7], Psi: v[8],
		P: v[9], Q: v[10], R: v[11],
		Motors: motors,
	}
}

// AllocateMotors inverts the X-configuration mixing matrix to recover
// per-rotor speeds from a commanded input. It is pure: it does not
// touch state beyond the returned speeds and saturation flags.
func AllocateMotors(p Params, in Input) (speeds [4]float64, sat Saturation) {
	a := in.Thrust / (4 * p.ThrustK)
	b := in.TauPhi * math.Sqrt2 / (4 * p.ThrustK * p.ArmLength)
	c := in.TauTht * math.Sqrt2 / (4 * p.ThrustK * p.ArmLength)
	d := in.TauPsi / (4 * p.DragK)

	sq := [4]float64{
		a - b - c - d, // front-right, CW
		a - b + c + d, // front-left, CCW
		a + b + c - d, // rear-left, CW
		a + b - c + d, // rear-right, CCW
	}

	omegaMaxSq := p.OmegaMax * p.OmegaMax
	for i, v := range sq {
		if v < 0 {
			v = 0
			sat.Motor[i] = true
		} else if v > omegaMaxSq {
			v = omegaMaxSq
			sat.Motor[i] = true
		}
		speeds[i] = math.Sqrt(v)
	}
	return
}

func allocateMotors(s *State, p Params, in Input) Saturation {
	speeds, sat := AllocateMotors(p, in)
	s.Motors = speeds
	return sat
}

// ForwardMix is the forward mixing map (omega^2 -> T, tau); it is the
// inverse of AllocateMotors and is used by the round-trip test in
// spec.md §8.
func ForwardMix(p Params, speeds [4]float64) Input {
	sq := [4]float64{
		speeds[0] * speeds[0],
		speeds[1] * speeds[1],
		speeds[2] * speeds[2],
		speeds[3] * speeds[3],
	}
	T := p.ThrustK * (sq[0] + sq[1] + sq[2] + sq[3])
	tauPhi := p.ThrustK * p.ArmLength / math.Sqrt2 * (-sq[0] - sq[1] + sq[2] + sq[3])
	tauTht := p.ThrustK * p.ArmLength / math.Sqrt2 * (-sq[0] + sq[1] + sq[2] - sq[3])
	tauPsi := p.DragK * (-sq[0] + sq[1] - sq[2] + sq[3])
	return Input{Thrust: T, TauPhi: tauPhi, TauTht: tauTht, TauPsi: tauPsi}
}
