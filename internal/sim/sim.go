// Package sim is the orchestrator: it owns the plant state and
// parameters, the active controller, and the active reference source,
// and implements the three external operation families of spec.md §6
// (simulation control, telemetry pull, trajectory preview). Its tick
// ordering, logger wiring, and config-driven construction are
// generalized from the teacher's Mission/Spacecraft pair (mission.go's
// Propagate/Stop/GetState/SetState/Func loop and spacecraft.go's
// SCLogInit logger).
package sim

import (
	"fmt"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/crabotin-lab/quadbench/internal/controller"
	"github.com/crabotin-lab/quadbench/internal/plant"
	"github.com/crabotin-lab/quadbench/internal/reference"
)

// DT is the fixed physics substep, 1/120 s nominal (spec.md §5).
const DT = controller.DT

// Simulator is the owned orchestrator object the redesign note of
// spec.md §9 calls for in place of a global singleton controller.
type Simulator struct {
	params plant.Params
	state  plant.State
	t      float64 // simulation time, seconds

	algo    controller.AlgoID
	ctrl    controller.Controller
	pattern reference.Pattern
	step    reference.StepParams

	custom   *reference.CustomWalker
	keyboard *reference.KeyboardChannel

	windIntensity float64

	lastTel controller.Telemetry
	lastSp  reference.Setpoint

	paused bool

	logger kitlog.Logger
}

// New constructs a Simulator with the given parameters and default
// controller/pattern (PID / HOVER), matching spec.md §6's default
// parameter set when params is the zero value is not assumed — callers
// should pass plant.DefaultParams() unless intentionally overriding.
func New(params plant.Params) *Simulator {
	ctrl, _ := controller.New(controller.PID)
	return &Simulator{
		params:   params,
		state:    plant.State{Y: 3},
		algo:     controller.PID,
		ctrl:     ctrl,
		pattern:  reference.HOVER,
		step:     reference.DefaultStepParams(),
		custom:   reference.NewCustomWalker(nil, 1),
		keyboard: reference.NewKeyboardChannel(0, 3, 0, 0),
		logger:   newLogger(),
	}
}

func newLogger() kitlog.Logger {
	l := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	l = kitlog.With(l, "component", "sim", "ts", kitlog.DefaultTimestampUTC)
	return l
}

// Reset returns the plant state to its initial hover pose and resets
// the active controller's internal state and the stateful reference
// channels. It does not change the selected algorithm, pattern, or
// gains.
func (s *Simulator) Reset() {
	s.state = plant.State{Y: 3}
	s.t = 0
	s.ctrl.Reset()
	s.custom.Reset()
	s.keyboard.Reset(0, 3, 0, 0)
	level.Info(s.logger).Log("msg", "reset", "algo", s.algo, "pattern", s.pattern)
}

// SetAlgorithm switches the active control law, constructing it with
// default gains and resetting it. An unknown algorithm id is rejected
// and the previous configuration persists, per spec.md §7.
func (s *Simulator) SetAlgorithm(algo controller.AlgoID) error {
	c, err := controller.New(algo)
	if err != nil {
		return fmt.Errorf("sim: setAlgorithm: %w", err)
	}
	s.algo = algo
	s.ctrl = c
	level.Info(s.logger).Log("msg", "algorithm changed", "algo", algo)
	return nil
}

// SetGains validates and applies a raw gain map to the currently
// active controller. A malformed gain set is rejected and the previous
// gains persist.
func (s *Simulator) SetGains(algo controller.AlgoID, raw map[string]float64) error {
	if algo != s.algo {
		return fmt.Errorf("sim: setGains: algo %v is not the active algorithm (%v)", algo, s.algo)
	}
	g, err := controller.ParseGains(algo, raw, s.ctrl.Gains())
	if err != nil {
		return fmt.Errorf("sim: setGains: %w", err)
	}
	return s.ctrl.SetGains(g)
}

// SetPattern switches the active trajectory pattern. An unknown
// pattern id is rejected (ignored) and the previous pattern persists.
func (s *Simulator) SetPattern(pattern reference.Pattern) {
	if _, ok := reference.ParsePattern(pattern.String()); !ok {
		return
	}
	s.pattern = pattern
	level.Info(s.logger).Log("msg", "pattern changed", "pattern", pattern)
}

// SetStepParams replaces the STEP pattern's shape (y0, y1, switch time).
func (s *Simulator) SetStepParams(step reference.StepParams) { s.step = step }

// SetWindIntensity sets the wind model's intensity coefficient W.
func (s *Simulator) SetWindIntensity(w float64) { s.windIntensity = w }

// SetKeyboardAxes updates the keyboard reference channel's axis state.
func (s *Simulator) SetKeyboardAxes(a reference.Axes) { s.keyboard.SetAxes(a) }

// SetCustomWaypoints replaces the CUSTOM pattern's waypoint list and
// traversal speed, resetting the walker.
func (s *Simulator) SetCustomWaypoints(wps []reference.Waypoint, speed float64) {
	s.custom.SetWaypoints(wps, speed)
}

// Pause stops substeps from being issued by Step until Resume is
// called; the orchestrator itself never blocks or suspends.
func (s *Simulator) Pause()  { s.paused = true }
func (s *Simulator) Resume() { s.paused = false }

// currentSetpoint queries the active reference source. Ordering is
// strict: this is always called before the controller compute and
// plant step of the same tick (spec.md §5).
func (s *Simulator) currentSetpoint() (reference.Setpoint, reference.TrajectoryFn) {
	switch s.pattern {
	case reference.CUSTOM:
		sp := s.custom.Advance(DT)
		return sp, s.custom.Snapshot(s.t)
	case reference.KEYBOARD:
		sp := s.keyboard.Advance(DT)
		return sp, s.keyboard.Snapshot(s.t)
	default:
		sp := reference.Evaluate(s.pattern, s.t, s.step)
		return sp, reference.GetTrajectoryFn(s.pattern, s.step)
	}
}

// Step advances the simulation by exactly one DT substep, following
// the strict ordering of spec.md §5: (1) reference query, (2)
// controller compute, (3) plant step. It is a no-op while paused.
// Step never blocks, suspends, or touches shared mutable state across
// goroutines.
func (s *Simulator) Step() plant.State {
	if s.paused {
		return s.state
	}

	sp, refFn := s.currentSetpoint()
	in, tel := s.ctrl.Compute(s.state, sp, s.params, s.t, refFn)
	wind := Wind(s.windIntensity, s.t)
	plant.Step(&s.state, s.params, in, wind, DT)

	s.lastSp = sp
	s.lastTel = tel
	s.t += DT
	return s.state
}

// Run advances the simulation by n substeps, realizing a time-scaling
// factor when the driver issues more than one substep per host frame
// (spec.md §5). It returns the final state.
func (s *Simulator) Run(n int) plant.State {
	for i := 0; i < n; i++ {
		s.Step()
	}
	return s.state
}

// GetState returns the current plant state.
func (s *Simulator) GetState() plant.State { return s.state }

// Time returns the current simulation time in seconds.
func (s *Simulator) Time() float64 { return s.t }

// GetControlOutput returns the most recently computed control input.
func (s *Simulator) GetControlOutput() plant.Input { return s.lastTel.Input }

// GetSlidingSurfaces returns the most recently computed sliding
// surfaces (SMC/STS only; zero otherwise).
func (s *Simulator) GetSlidingSurfaces() (sx, sy, sz float64) {
	return s.lastTel.SurfaceX, s.lastTel.SurfaceY, s.lastTel.SurfaceZ
}

// GetMPCHorizon returns the most recently published predictive
// horizon, or nil when the active algorithm is not MPC.
func (s *Simulator) GetMPCHorizon() []reference.Setpoint { return s.lastTel.MPCHorizon }

// GetSetpoint returns the most recently evaluated reference setpoint.
func (s *Simulator) GetSetpoint() reference.Setpoint { return s.lastSp }

// Algorithm returns the currently active algorithm id.
func (s *Simulator) Algorithm() controller.AlgoID { return s.algo }

// Pattern returns the currently active trajectory pattern id.
func (s *Simulator) Pattern() reference.Pattern { return s.pattern }

// PreviewPattern samples a pattern for a renderer collaborator without
// disturbing the live simulation state.
func (s *Simulator) PreviewPattern(pattern reference.Pattern, n int, horizonSeconds float64) []reference.Setpoint {
	return reference.PreviewPattern(pattern, s.step, n, horizonSeconds)
}
