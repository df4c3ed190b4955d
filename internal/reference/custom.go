package reference

import "math"

// Waypoint is one stop of a CUSTOM trajectory.
type Waypoint struct {
	X, Y, Z float64
}

// CustomWalker holds the state of a piecewise smoothstep walk between
// user waypoints at constant traversal speed, cyclic. The segment
// index and segment-local time are exactly the kind of owned,
// per-tick-mutated internal state the teacher's Loiter/ReachDistance
// waypoints carry (current segment, time-in-segment, cleared flag).
type CustomWalker struct {
	waypoints []Waypoint
	speed     float64 // m/s traversal speed

	segment int
	tau     float64 // segment-local elapsed time
}

// NewCustomWalker does not validate its arguments. A walk needs at
// least two waypoints and a positive speed; with a single waypoint
// Advance holds it, and with none Advance returns the zero Setpoint.
func NewCustomWalker(waypoints []Waypoint, speed float64) *CustomWalker {
	return &CustomWalker{waypoints: waypoints, speed: speed}
}

// SetWaypoints replaces the waypoint list and resets walker state.
func (w *CustomWalker) SetWaypoints(waypoints []Waypoint, speed float64) {
	w.waypoints = waypoints
	w.speed = speed
	w.Reset()
}

// Reset zeros the segment index and segment-local time.
func (w *CustomWalker) Reset() {
	w.segment = 0
	w.tau = 0
}

func (w *CustomWalker) segmentDuration(from, to Waypoint) float64 {
	d := math.Sqrt((to.X-from.X)*(to.X-from.X) + (to.Y-from.Y)*(to.Y-from.Y) + (to.Z-from.Z)*(to.Z-from.Z))
	if w.speed <= 0 {
		return 0
	}
	return d / w.speed
}

// Advance walks the state forward by one fixed nominal tick and
// returns the interpolated setpoint. dt is independent of wall-clock;
// the orchestrator passes the simulation's fixed substep.
func (w *CustomWalker) Advance(dt float64) Setpoint {
	n := len(w.waypoints)
	if n < 2 {
		if n == 1 {
			return Setpoint{X: w.waypoints[0].X, Y: w.waypoints[0].Y, Z: w.waypoints[0].Z}
		}
		return Setpoint{}
	}

	from := w.waypoints[w.segment%n]
	to := w.waypoints[(w.segment+1)%n]
	duration := w.segmentDuration(from, to)

	w.tau += dt
	s := 0.0
	if duration > 0 {
		s = w.tau / duration
	} else {
		s = 1
	}
	ease := smoothstep(s)

	sp := Setpoint{
		X: from.X + (to.X-from.X)*ease,
		Y: from.Y + (to.Y-from.Y)*ease,
		Z: from.Z + (to.Z-from.Z)*ease,
	}

	if w.tau >= duration {
		w.tau -= duration
		if w.tau < 0 {
			w.tau = 0
		}
		w.segment = (w.segment + 1) % n
	}
	return sp
}

// Snapshot freezes the current walker position/segment into a pure
// rollout function of absolute simulation time, usable for horizon
// lookahead without mutating the live walker (the MPC controller
// samples several such evaluations per tick and must not perturb the
// real state). now is the simulation time at which the snapshot was
// taken, so that TrajectoryFn.At(t) for t > now rolls the walk forward
// by t-now.
func (w *CustomWalker) Snapshot(now float64) TrajectoryFn {
	n := len(w.waypoints)
	segment := w.segment
	tau := w.tau
	waypoints := append([]Waypoint{}, w.waypoints...)
	speed := w.speed

	rollout := func(deltaT float64) Setpoint {
		if n < 2 {
			return Setpoint{}
		}
		seg := segment
		t := tau + deltaT
		for i := 0; i < n*4 && t < 0; i++ {
			// Lookahead never needs negative deltaT in practice, but
			// guard the segment arithmetic for safety.
			seg = (seg - 1 + n) % n
			from := waypoints[seg]
			to := waypoints[(seg+1)%n]
			dur := speed0Duration(from, to, speed)
			t += dur
		}
		for {
			from := waypoints[seg%n]
			to := waypoints[(seg+1)%n]
			dur := speed0Duration(from, to, speed)
			if dur <= 0 || t < dur {
				s := 0.0
				if dur > 0 {
					s = t / dur
				} else {
					s = 1
				}
				ease := smoothstep(s)
				return Setpoint{
					X: from.X + (to.X-from.X)*ease,
					Y: from.Y + (to.Y-from.Y)*ease,
					Z: from.Z + (to.Z-from.Z)*ease,
				}
			}
			t -= dur
			seg = (seg + 1) % n
		}
	}

	return TrajectoryFn{frozen: func(t float64) Setpoint { return rollout(t - now) }}
}

func speed0Duration(from, to Waypoint, speed float64) float64 {
	d := math.Sqrt((to.X-from.X)*(to.X-from.X) + (to.Y-from.Y)*(to.Y-from.Y) + (to.Z-from.Z)*(to.Z-from.Z))
	if speed <= 0 {
		return 0
	}
	return d / speed
}
