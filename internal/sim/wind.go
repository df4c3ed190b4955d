package sim

import (
	"math"

	"github.com/crabotin-lab/quadbench/internal/plant"
)

// Wind returns the deterministic pseudo-random wind sample for
// intensity W at simulation time t (spec.md §6). It is a pure
// function of time; there is no entropy source, so a run with the
// same intensity is bit-exactly reproducible.
func Wind(w, t float64) plant.Wind {
	return plant.Wind{
		Fx: w * (0.5*math.Sin(1.7*t) + 0.5*math.Sin(0.3*t)),
		Fy: w * 0.3 * math.Sin(0.8*t),
		Fz: w * (0.4*math.Cos(1.2*t) + 0.3*math.Sin(2.1*t)),
	}
}
