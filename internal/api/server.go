// Package api exposes the bench's simulation-control and telemetry
// operations (spec.md §6) over HTTP and a websocket broadcast,
// grounded on the teacher's gorilla/mux-free net/http plumbing but
// adopting gorilla/mux for routing and gorilla/websocket for the
// broadcast transport, following the upgrade/ping-pong/write-deadline
// pattern of niceyeti-tabular's tabular/server/server.go — generalized
// from that server's single-client assumption to a registered-client
// broadcast hub, since a bench is expected to host more than one
// telemetry viewer at a time.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/crabotin-lab/quadbench/internal/controller"
	"github.com/crabotin-lab/quadbench/internal/export"
	"github.com/crabotin-lab/quadbench/internal/reference"
	"github.com/crabotin-lab/quadbench/internal/sim"
)

const (
	writeWait      = 1 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server serves the control REST endpoints and the telemetry websocket
// broadcast over a single owned Simulator. All mutating requests and
// the tick loop are serialized through mu so the cooperative
// single-threaded tick ordering of spec.md §5 is preserved even though
// HTTP handlers run on their own goroutines.
type Server struct {
	mu  sync.Mutex
	sim *sim.Simulator

	hub    *hub
	logger kitlog.Logger
}

// NewServer wraps s for HTTP/WS access.
func NewServer(s *sim.Simulator, logger kitlog.Logger) *Server {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Server{sim: s, hub: newHub(), logger: logger}
}

// Router builds the gorilla/mux router for this server.
func (srv *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/algorithm", srv.handleSetAlgorithm).Methods(http.MethodPost)
	r.HandleFunc("/gains", srv.handleSetGains).Methods(http.MethodPost)
	r.HandleFunc("/pattern", srv.handleSetPattern).Methods(http.MethodPost)
	r.HandleFunc("/wind", srv.handleSetWind).Methods(http.MethodPost)
	r.HandleFunc("/keyboard", srv.handleKeyboard).Methods(http.MethodPost)
	r.HandleFunc("/waypoints", srv.handleWaypoints).Methods(http.MethodPost)
	r.HandleFunc("/reset", srv.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/pause", srv.handlePause).Methods(http.MethodPost)
	r.HandleFunc("/resume", srv.handleResume).Methods(http.MethodPost)
	r.HandleFunc("/telemetry", srv.handleTelemetry).Methods(http.MethodGet)
	r.HandleFunc("/preview", srv.handlePreview).Methods(http.MethodGet)
	r.HandleFunc("/export.csv", srv.handleExportRow).Methods(http.MethodGet)
	r.HandleFunc("/ws", srv.handleWebsocket).Methods(http.MethodGet)
	return r
}

// Run starts the fixed-rate tick loop, stepping the simulation and
// broadcasting one telemetry snapshot per tick, until stop is closed.
// Run owns real-time pacing; the Simulator itself never sleeps or
// blocks (spec.md §5).
func (srv *Server) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(sim.DT * float64(time.Second)))
	defer ticker.Stop()
	level.Info(srv.logger).Log("msg", "tick loop started")
	for {
		select {
		case <-stop:
			level.Info(srv.logger).Log("msg", "tick loop stopped")
			return
		case <-ticker.C:
			srv.mu.Lock()
			srv.sim.Step()
			snap := srv.snapshotLocked()
			srv.mu.Unlock()
			srv.hub.broadcast(snap)
		}
	}
}

type telemetrySnapshot struct {
	Time     float64              `json:"time"`
	Algo     string               `json:"algo"`
	Pattern  string               `json:"pattern"`
	State    interface{}          `json:"state"`
	Setpoint interface{}          `json:"setpoint"`
	Control  interface{}          `json:"control"`
	MPC      []reference.Setpoint `json:"mpc_horizon,omitempty"`
}

func (srv *Server) snapshotLocked() telemetrySnapshot {
	state := srv.sim.GetState()
	sp := srv.sim.GetSetpoint()
	return telemetrySnapshot{
		Time:     srv.sim.Time(),
		Algo:     srv.sim.Algorithm().String(),
		Pattern:  srv.sim.Pattern().String(),
		State:    state,
		Setpoint: sp,
		Control:  srv.sim.GetControlOutput(),
		MPC:      srv.sim.GetMPCHorizon(),
	}
}

// snapshotRow assembles the CSV-export view of the current tick,
// sharing RowFromSnapshot with the file-export path so the two never
// drift (SPEC_FULL.md §4).
func (srv *Server) snapshotRow() export.Row {
	state := srv.sim.GetState()
	sp := srv.sim.GetSetpoint()
	tel := controller.Telemetry{Input: srv.sim.GetControlOutput(), MPCHorizon: srv.sim.GetMPCHorizon()}
	sx, sy, sz := srv.sim.GetSlidingSurfaces()
	tel.SurfaceX, tel.SurfaceY, tel.SurfaceZ = sx, sy, sz
	return export.RowFromSnapshot(srv.sim.Time(), state, sp, tel, srv.sim.Algorithm())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("api: decoding request body: %w", err)
	}
	return nil
}
