package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/crabotin-lab/quadbench/internal/plant"
	"github.com/crabotin-lab/quadbench/internal/sim"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := sim.New(plant.DefaultParams())
	srv := NewServer(s, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body interface{}) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestSetAlgorithmRejectsUnknownName(t *testing.T) {
	_, ts := newTestServer(t)
	resp := postJSON(t, ts, "/algorithm", map[string]string{"algo": "NOPE"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSetAlgorithmAccepted(t *testing.T) {
	_, ts := newTestServer(t)
	resp := postJSON(t, ts, "/algorithm", map[string]string{"algo": "SMC"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestSetGainsRejectsUnknownKey(t *testing.T) {
	_, ts := newTestServer(t)
	resp := postJSON(t, ts, "/gains", map[string]interface{}{
		"algo":  "PID",
		"gains": map[string]float64{"not_a_real_key": 1.0},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSetPatternAndTelemetryRoundTrip(t *testing.T) {
	_, ts := newTestServer(t)
	resp := postJSON(t, ts, "/pattern", map[string]string{"pattern": "CIRCLE"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	tresp, err := http.Get(ts.URL + "/telemetry")
	if err != nil {
		t.Fatal(err)
	}
	defer tresp.Body.Close()
	var snap telemetrySnapshot
	if err := json.NewDecoder(tresp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Pattern != "CIRCLE" {
		t.Fatalf("expected pattern CIRCLE, got %q", snap.Pattern)
	}
}

func TestPreviewRejectsUnknownPattern(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/preview?pattern=BOGUS")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWaypointsRejectsTooFewPoints(t *testing.T) {
	_, ts := newTestServer(t)
	resp := postJSON(t, ts, "/waypoints", map[string]interface{}{
		"waypoints": []map[string]float64{{"x": 0, "y": 3, "z": 0}},
		"speed":     2.0,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestExportRowReturnsCSV(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/export.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("expected text/csv, got %q", ct)
	}
}

// TestExportRowIncludesSlidingSurfaces guards against the HTTP export
// path silently dropping the SMC/STS sliding-surface columns that the
// file-writer path in cmd/quadsim populates.
func TestExportRowIncludesSlidingSurfaces(t *testing.T) {
	srv, ts := newTestServer(t)
	resp := postJSON(t, ts, "/algorithm", map[string]string{"algo": "SMC"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// Wind moves the vehicle off the exact hover pose, where every
	// sliding surface is identically zero.
	srv.mu.Lock()
	srv.sim.SetWindIntensity(5)
	srv.sim.Run(60)
	row := srv.snapshotRow()
	srv.mu.Unlock()

	if row.Telemetry.SurfaceX == 0 && row.Telemetry.SurfaceY == 0 && row.Telemetry.SurfaceZ == 0 {
		t.Fatalf("expected at least one nonzero sliding surface after an SMC run, got %+v", row.Telemetry)
	}
}

func TestWebsocketBroadcastsTicks(t *testing.T) {
	srv, ts := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	go srv.Run(stop)
	defer close(stop)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap telemetrySnapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("expected a broadcast telemetry snapshot: %v", err)
	}
}
