// Command quadserver starts the HTTP/WS bench server: REST endpoints
// for simulation control plus a per-tick telemetry broadcast, grounded
// on the gorilla/mux + gorilla/websocket stack of internal/api.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/crabotin-lab/quadbench/internal/api"
	"github.com/crabotin-lab/quadbench/internal/config"
	"github.com/crabotin-lab/quadbench/internal/sim"
)

var (
	addr         string
	scenarioName string
	scenarioPath string
)

func init() {
	flag.StringVar(&addr, "addr", ":8090", "HTTP listen address")
	flag.StringVar(&scenarioName, "scenario", "hover-pid", "named scenario to start with")
	flag.StringVar(&scenarioPath, "config", "", "optional TOML file defining custom scenarios")
}

func main() {
	flag.Parse()

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "component", "quadserver")

	sc, err := config.Load(scenarioPath, scenarioName)
	if err != nil {
		log.Fatalf("quadserver: loading scenario %q: %s", scenarioName, err)
	}

	s := sim.New(sc.Params)
	if err := s.SetAlgorithm(sc.Algo); err != nil {
		log.Fatalf("quadserver: %s", err)
	}
	if len(sc.Gains) > 0 {
		if err := s.SetGains(sc.Algo, sc.Gains); err != nil {
			log.Fatalf("quadserver: applying scenario gains: %s", err)
		}
	}
	s.SetPattern(sc.Pattern)
	s.SetStepParams(sc.Step)
	s.SetWindIntensity(sc.WindIntensity)

	srv := api.NewServer(s, logger)

	stop := make(chan struct{})
	go srv.Run(stop)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		close(stop)
		os.Exit(0)
	}()

	level.Info(logger).Log("msg", "listening", "addr", addr, "scenario", sc.Name)
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		log.Fatalf("quadserver: %s", err)
	}
}
