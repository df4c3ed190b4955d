// Package controller implements the four selectable control laws
// sharing a cascaded outer-position / inner-attitude decomposition:
// cascaded PID, first-order sliding mode, super-twisting sliding mode,
// and a receding-horizon predictive heuristic. The tagged-variant
// Gains/Controller split follows the teacher's ControlLaw/ThrustControl
// interface-plus-concrete-variants pattern (prop.go's Coast/
// Tangential/AntiTangential/OptimalThrust family), generalized from a
// thrust-direction selector to a full attitude/position control law.
package controller

import (
	"fmt"
	"math"

	"github.com/crabotin-lab/quadbench/internal/plant"
	"github.com/crabotin-lab/quadbench/internal/reference"
)

// AlgoID identifies one of the four control laws.
type AlgoID uint8

const (
	PID AlgoID = iota + 1
	SMC
	STS
	MPC
)

func (a AlgoID) String() string {
	switch a {
	case PID:
		return "PID"
	case SMC:
		return "SMC"
	case STS:
		return "STS"
	case MPC:
		return "MPC"
	default:
		return "UNKNOWN"
	}
}

// ParseAlgoID maps an algorithm name to its id.
func ParseAlgoID(name string) (AlgoID, bool) {
	switch name {
	case "PID":
		return PID, true
	case "SMC":
		return SMC, true
	case "STS":
		return STS, true
	case "MPC":
		return MPC, true
	default:
		return 0, false
	}
}

// Gains is a tagged-variant gain set: exactly one of PIDGains, SMCGains,
// STSGains, MPCGains. Dispatch is on the concrete type, never on a
// string-to-number map, per the redesign note in spec.md §9.
type Gains interface {
	Algo() AlgoID
}

// Telemetry is the dedicated record a controller writes and the
// orchestrator reads; it is never aliased back into plant.State, per
// the redesign note in spec.md §9.
type Telemetry struct {
	Input plant.Input

	SurfaceX, SurfaceY, SurfaceZ float64 // sliding surfaces, SMC/STS only

	MPCHorizon []reference.Setpoint // N+1 samples, MPC only; empty otherwise

	DesiredPhi, DesiredTheta, DesiredYaw float64
}

// Controller is the common interface of all four control laws.
type Controller interface {
	Algo() AlgoID
	Gains() Gains
	SetGains(Gains) error
	// Compute maps the current plant state and setpoint to a control
	// input, writing telemetry as a side output. now is the current
	// simulation time; refFn is used only by the predictive controller
	// for horizon lookahead and may be the zero TrajectoryFn otherwise.
	Compute(state plant.State, sp reference.Setpoint, params plant.Params, now float64, refFn reference.TrajectoryFn) (plant.Input, Telemetry)
	// Reset zeros all integrators and accumulators. Mandatory on
	// algorithm change per spec.md §4.3.
	Reset()
}

// New constructs the controller for the given algorithm with its
// default gains.
func New(algo AlgoID) (Controller, error) {
	switch algo {
	case PID:
		return NewPIDController(DefaultPIDGains()), nil
	case SMC:
		return NewSMCController(DefaultSMCGains()), nil
	case STS:
		return NewSTSController(DefaultSTSGains()), nil
	case MPC:
		return NewMPCController(DefaultMPCGains()), nil
	default:
		return nil, fmt.Errorf("controller: unknown algorithm id %v", algo)
	}
}

// DT is the bench's fixed physics substep (spec.md §5: 120 Hz
// nominal); controller-internal integrators advance at this rate
// regardless of wall-clock, since the orchestrator never calls Compute
// off-cadence.
const DT = 1.0 / 120

func errWrongGains(want AlgoID, got Gains) error {
	return fmt.Errorf("controller: %v controller cannot accept %v gains", want, got.Algo())
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sign is the exact sliding-mode sign function: sign(0) = 0.
func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// sat is the boundary-layer saturation function of spec.md §4.3.2:
// s/phi clamped to [-1,1] when phi>0, otherwise the pure sign.
func sat(s, phi float64) float64 {
	if phi <= 0 {
		return sign(s)
	}
	return clamp(s/phi, -1, 1)
}

// thrustVectorInversion is the common outer-to-inner conversion of
// spec.md §4.3: world-frame desired acceleration to total thrust and
// desired roll/pitch, given the current yaw and attitude.
func thrustVectorInversion(p plant.Params, axDes, ayDes, azDes, psi, yawSetpoint, cphi, ctheta float64) (thrust, phiD, thetaD, psiD float64) {
	denom := math.Max(cphi*ctheta, 0.1)
	thrust = clamp(p.Mass*(p.G+ayDes)/denom, 0, 4*p.Mass*p.G)

	spsi, cpsi := math.Sincos(psi)
	asinArg := clamp(p.Mass*(axDes*spsi-azDes*cpsi)/math.Max(thrust, 0.1), -0.8, 0.8)
	phiD = clamp(math.Asin(asinArg), -0.6, 0.6)
	thetaD = clamp(math.Atan2(axDes*cpsi+azDes*spsi, p.G+ayDes), -0.6, 0.6)
	psiD = yawSetpoint
	return
}
