// Package reference implements the trajectory reference generator: a
// catalogue of analytic parametric patterns plus a stateful keyboard
// channel and a stateful custom-waypoint walker. The analytic patterns
// are queried through the pure Evaluate function; the keyboard channel
// and the walker are advanced through their own types.
package reference

import "math"

// Pattern identifies a trajectory in the catalogue.
type Pattern uint8

const (
	HOVER Pattern = iota + 1
	CIRCLE
	HELIX
	FIGURE8
	SQUARE
	STEP
	CUSTOM
	KEYBOARD
)

func (p Pattern) String() string {
	switch p {
	case HOVER:
		return "HOVER"
	case CIRCLE:
		return "CIRCLE"
	case HELIX:
		return "HELIX"
	case FIGURE8:
		return "FIGURE8"
	case SQUARE:
		return "SQUARE"
	case STEP:
		return "STEP"
	case CUSTOM:
		return "CUSTOM"
	case KEYBOARD:
		return "KEYBOARD"
	default:
		return "UNKNOWN"
	}
}

// ParsePattern maps a pattern name to its id; ok is false for an
// unrecognised name so the boundary layer can reject it per spec.md §7.
func ParsePattern(name string) (Pattern, bool) {
	switch name {
	case "HOVER":
		return HOVER, true
	case "CIRCLE":
		return CIRCLE, true
	case "HELIX":
		return HELIX, true
	case "FIGURE8":
		return FIGURE8, true
	case "SQUARE":
		return SQUARE, true
	case "STEP":
		return STEP, true
	case "CUSTOM":
		return CUSTOM, true
	case "KEYBOARD":
		return KEYBOARD, true
	default:
		return 0, false
	}
}

// Setpoint is position, optional feed-forward velocity, and desired yaw.
type Setpoint struct {
	X, Y, Z    float64
	Vx, Vy, Vz float64
	Yaw        float64
}

// Analytic pattern constants, fixed per spec.md §4.2.
const (
	circleR = 4.0
	circleA = 3.0
	circleW = 0.5

	helixClimb = 0.3

	fig8Sx = 4.0
	fig8Sz = 4.0
	fig8A  = 3.0

	squareL = 3.0
	squareA = 3.0
	squareH = 2.0 // dwell seconds at each corner
)

// StepParams configures the STEP pattern.
type StepParams struct {
	Y0, Y1 float64
	Ts     float64
}

// DefaultStepParams matches the spec.md §8 seed test (scenario 2).
func DefaultStepParams() StepParams { return StepParams{Y0: 1, Y1: 4, Ts: 3} }

// smoothstep is the cubic Hermite ease used for SQUARE and CUSTOM.
func smoothstep(s float64) float64 {
	if s <= 0 {
		return 0
	}
	if s >= 1 {
		return 1
	}
	return 3*s*s - 2*s*s*s
}

// squareCorners returns the four cyclic corners of the SQUARE pattern.
func squareCorners() [4][3]float64 {
	return [4][3]float64{
		{squareL, squareA, squareL},
		{-squareL, squareA, squareL},
		{-squareL, squareA, -squareL},
		{squareL, squareA, -squareL},
	}
}

// Evaluate is the pure function of time for every stateless pattern
// (everything except CUSTOM and KEYBOARD, which carry their own
// stateful channel types below).
func Evaluate(pattern Pattern, t float64, step StepParams) Setpoint {
	switch pattern {
	case HOVER:
		return Setpoint{X: 0, Y: 3, Z: 0}
	case CIRCLE:
		x := circleR * math.Cos(circleW*t)
		z := circleR * math.Sin(circleW*t)
		vx := -circleR * circleW * math.Sin(circleW*t)
		vz := circleR * circleW * math.Cos(circleW*t)
		return Setpoint{X: x, Y: circleA, Z: z, Vx: vx, Vz: vz}
	case HELIX:
		x := circleR * math.Cos(circleW*t)
		z := circleR * math.Sin(circleW*t)
		y := 1 + helixClimb*t
		vx := -circleR * circleW * math.Sin(circleW*t)
		vz := circleR * circleW * math.Cos(circleW*t)
		return Setpoint{X: x, Y: y, Z: z, Vx: vx, Vy: helixClimb, Vz: vz}
	case FIGURE8:
		x := fig8Sx * math.Cos(circleW*t)
		y := fig8A + 0.5*math.Sin(0.5*circleW*t)
		z := fig8Sz * math.Sin(2*circleW*t) / 2
		vx := -fig8Sx * circleW * math.Sin(circleW*t)
		vy := 0.5 * 0.5 * circleW * math.Cos(0.5*circleW*t)
		vz := fig8Sz * circleW * math.Cos(2*circleW*t)
		return Setpoint{X: x, Y: y, Z: z, Vx: vx, Vy: vy, Vz: vz}
	case SQUARE:
		return evaluateSquare(t)
	case STEP:
		y := step.Y0
		if t >= step.Ts {
			y = step.Y1
		}
		return Setpoint{X: 0, Y: y, Z: 0}
	default:
		// CUSTOM and KEYBOARD are stateful; callers must use their
		// dedicated walker/channel types instead of this pure function.
		return Setpoint{}
	}
}

func evaluateSquare(t float64) Setpoint {
	corners := squareCorners()
	period := 4 * squareH
	phase := math.Mod(t, period)
	if phase < 0 {
		phase += period
	}
	seg := int(phase / squareH)
	local := phase - float64(seg)*squareH
	from := corners[seg%4]
	to := corners[(seg+1)%4]
	s := local / squareH
	ease := smoothstep(s)
	x := from[0] + (to[0]-from[0])*ease
	y := from[1] + (to[1]-from[1])*ease
	z := from[2] + (to[2]-from[2])*ease
	return Setpoint{X: x, Y: y, Z: z}
}

// TrajectoryFn is a pure value — not a heap-allocated closure — that
// can be queried repeatedly at arbitrary future times without side
// effects, per the redesign note in spec.md §9. It carries only the
// pattern id and the parameters needed to reproduce the stateless
// patterns (CUSTOM/KEYBOARD lookahead instead rolls out from a frozen
// snapshot of their current state, see CustomWalker.Snapshot and
// KeyboardChannel.Snapshot).
type TrajectoryFn struct {
	Pattern Pattern
	Step    StepParams
	frozen  func(t float64) Setpoint // set only for stateful patterns
}

// At evaluates the trajectory function at time t.
func (f TrajectoryFn) At(t float64) Setpoint {
	if f.frozen != nil {
		return f.frozen(t)
	}
	return Evaluate(f.Pattern, t, f.Step)
}

// GetTrajectoryFn returns the lookahead value for a stateless pattern.
// For CUSTOM/KEYBOARD use the walker/channel's own Snapshot method.
func GetTrajectoryFn(pattern Pattern, step StepParams) TrajectoryFn {
	return TrajectoryFn{Pattern: pattern, Step: step}
}

// PreviewPattern uniformly samples a pattern over [0, horizonSeconds]
// into n positions, for a renderer to draw the desired path.
func PreviewPattern(pattern Pattern, step StepParams, n int, horizonSeconds float64) []Setpoint {
	if n <= 0 {
		return nil
	}
	out := make([]Setpoint, n)
	for i := 0; i < n; i++ {
		t := horizonSeconds * float64(i) / float64(n-1)
		if n == 1 {
			t = 0
		}
		out[i] = Evaluate(pattern, t, step)
	}
	return out
}
