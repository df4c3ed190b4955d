package api

import (
	"net/http"
	"strconv"

	"github.com/crabotin-lab/quadbench/internal/controller"
	"github.com/crabotin-lab/quadbench/internal/export"
	"github.com/crabotin-lab/quadbench/internal/reference"
)

type algorithmRequest struct {
	Algo string `json:"algo"`
}

func (srv *Server) handleSetAlgorithm(w http.ResponseWriter, r *http.Request) {
	var req algorithmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	algo, ok := controller.ParseAlgoID(req.Algo)
	if !ok {
		writeError(w, errUnknownAlgo(req.Algo), http.StatusBadRequest)
		return
	}

	srv.mu.Lock()
	err := srv.sim.SetAlgorithm(algo)
	srv.mu.Unlock()
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"algo": algo.String()})
}

type gainsRequest struct {
	Algo  string             `json:"algo"`
	Gains map[string]float64 `json:"gains"`
}

func (srv *Server) handleSetGains(w http.ResponseWriter, r *http.Request) {
	var req gainsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	algo, ok := controller.ParseAlgoID(req.Algo)
	if !ok {
		writeError(w, errUnknownAlgo(req.Algo), http.StatusBadRequest)
		return
	}

	srv.mu.Lock()
	err := srv.sim.SetGains(algo, req.Gains)
	srv.mu.Unlock()
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

type patternRequest struct {
	Pattern string                `json:"pattern"`
	Step    *reference.StepParams `json:"step,omitempty"`
}

func (srv *Server) handleSetPattern(w http.ResponseWriter, r *http.Request) {
	var req patternRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	pattern, ok := reference.ParsePattern(req.Pattern)
	if !ok {
		writeError(w, errUnknownPattern(req.Pattern), http.StatusBadRequest)
		return
	}

	srv.mu.Lock()
	srv.sim.SetPattern(pattern)
	if req.Step != nil {
		srv.sim.SetStepParams(*req.Step)
	}
	srv.mu.Unlock()
	writeJSON(w, map[string]string{"pattern": pattern.String()})
}

type windRequest struct {
	Intensity float64 `json:"intensity"`
}

func (srv *Server) handleSetWind(w http.ResponseWriter, r *http.Request) {
	var req windRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	srv.mu.Lock()
	srv.sim.SetWindIntensity(req.Intensity)
	srv.mu.Unlock()
	writeJSON(w, map[string]float64{"intensity": req.Intensity})
}

func (srv *Server) handleKeyboard(w http.ResponseWriter, r *http.Request) {
	var axes reference.Axes
	if err := decodeJSON(r, &axes); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	srv.mu.Lock()
	srv.sim.SetKeyboardAxes(axes)
	srv.mu.Unlock()
	writeJSON(w, map[string]string{"status": "ok"})
}

type waypointsRequest struct {
	Waypoints []reference.Waypoint `json:"waypoints"`
	Speed     float64              `json:"speed"`
}

func (srv *Server) handleWaypoints(w http.ResponseWriter, r *http.Request) {
	var req waypointsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if len(req.Waypoints) < 2 || req.Speed <= 0 {
		writeError(w, errBadWaypoints(), http.StatusBadRequest)
		return
	}
	srv.mu.Lock()
	srv.sim.SetCustomWaypoints(req.Waypoints, req.Speed)
	srv.mu.Unlock()
	writeJSON(w, map[string]int{"count": len(req.Waypoints)})
}

func (srv *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	srv.mu.Lock()
	srv.sim.Reset()
	srv.mu.Unlock()
	writeJSON(w, map[string]string{"status": "ok"})
}

func (srv *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	srv.mu.Lock()
	srv.sim.Pause()
	srv.mu.Unlock()
	writeJSON(w, map[string]string{"status": "paused"})
}

func (srv *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	srv.mu.Lock()
	srv.sim.Resume()
	srv.mu.Unlock()
	writeJSON(w, map[string]string{"status": "running"})
}

func (srv *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	srv.mu.Lock()
	snap := srv.snapshotLocked()
	srv.mu.Unlock()
	writeJSON(w, snap)
}

func (srv *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pattern, ok := reference.ParsePattern(q.Get("pattern"))
	if !ok {
		writeError(w, errUnknownPattern(q.Get("pattern")), http.StatusBadRequest)
		return
	}
	n, err := strconv.Atoi(q.Get("n"))
	if err != nil || n <= 0 {
		n = 100
	}
	horizon, err := strconv.ParseFloat(q.Get("horizon"), 64)
	if err != nil || horizon <= 0 {
		horizon = 10
	}

	srv.mu.Lock()
	samples := srv.sim.PreviewPattern(pattern, n, horizon)
	srv.mu.Unlock()
	writeJSON(w, samples)
}

// handleExportRow streams the current tick as a one-row CSV download,
// reusing the same RowFromSnapshot conversion the file-writer path in
// cmd/quadsim uses so the two export paths cannot drift.
func (srv *Server) handleExportRow(w http.ResponseWriter, r *http.Request) {
	srv.mu.Lock()
	row := srv.snapshotRow()
	srv.mu.Unlock()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\"tick.csv\"")
	csvWriter := export.NewWriter(w)
	if err := csvWriter.Write(row); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if err := csvWriter.Flush(); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
}

func (srv *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	c := &client{conn: conn, send: make(chan telemetrySnapshot, 8)}
	srv.hub.serve(c)
}
