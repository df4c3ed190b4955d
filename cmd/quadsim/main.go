// Command quadsim runs one scenario for a fixed duration and writes
// its telemetry to a CSV file. Flag parsing follows the teacher's
// cmd/mission pattern (flag.StringVar in init, a scenario TOML file,
// a verbose switch); the CLI flag parser itself is stdlib (see
// DESIGN.md: no CLI-flag library exists anywhere in the retrieval
// pack, so flag is kept rather than invented).
package main

import (
	"flag"
	"log"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/crabotin-lab/quadbench/internal/config"
	"github.com/crabotin-lab/quadbench/internal/controller"
	"github.com/crabotin-lab/quadbench/internal/export"
	"github.com/crabotin-lab/quadbench/internal/sim"
)

const defaultScenario = "~~unset~~"

var (
	scenarioName string
	scenarioPath string
	outPath      string
	duration     float64
	verbose      bool
)

func init() {
	flag.StringVar(&scenarioName, "scenario", "hover-pid", "named scenario to run (see internal/config for built-ins)")
	flag.StringVar(&scenarioPath, "config", "", "optional TOML file defining custom scenarios; empty selects a built-in")
	flag.StringVar(&outPath, "out", "quadsim.csv", "CSV telemetry output path")
	flag.Float64Var(&duration, "duration", 10, "scenario duration, seconds")
	flag.BoolVar(&verbose, "verbose", false, "also emit debug-level quadsim log lines (the simulator logs algorithm/pattern changes either way)")
}

func main() {
	flag.Parse()

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "component", "quadsim")
	if !verbose {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	sc, err := config.Load(scenarioPath, scenarioName)
	if err != nil {
		log.Fatalf("quadsim: loading scenario %q: %s", scenarioName, err)
	}

	s := sim.New(sc.Params)
	if err := s.SetAlgorithm(sc.Algo); err != nil {
		log.Fatalf("quadsim: %s", err)
	}
	if len(sc.Gains) > 0 {
		if err := s.SetGains(sc.Algo, sc.Gains); err != nil {
			log.Fatalf("quadsim: applying scenario gains: %s", err)
		}
	}
	s.SetPattern(sc.Pattern)
	s.SetStepParams(sc.Step)
	s.SetWindIntensity(sc.WindIntensity)

	f, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("quadsim: creating %s: %s", outPath, err)
	}
	defer f.Close()
	w := export.NewWriter(f)

	level.Info(logger).Log("msg", "running scenario", "name", sc.Name, "algo", sc.Algo, "duration_s", duration)

	n := int(duration / sim.DT)
	for i := 0; i < n; i++ {
		st := s.Step()
		tel := controller.Telemetry{
			Input:      s.GetControlOutput(),
			MPCHorizon: s.GetMPCHorizon(),
		}
		tel.SurfaceX, tel.SurfaceY, tel.SurfaceZ = s.GetSlidingSurfaces()
		row := export.RowFromSnapshot(s.Time(), st, s.GetSetpoint(), tel, sc.Algo)
		if err := w.Write(row); err != nil {
			log.Fatalf("quadsim: writing telemetry row: %s", err)
		}
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("quadsim: flushing %s: %s", outPath, err)
	}

	level.Info(logger).Log("msg", "scenario complete", "rows", n, "out", outPath)
}
