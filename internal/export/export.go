// Package export writes the bench's CSV telemetry schema (spec.md §6),
// generalizing the teacher's channel-driven StreamStates writer
// (export.go) from an orbital-elements row to the flight-telemetry row
// schema below. Export is an out-of-core collaborator concern (spec.md
// §1), kept separate from internal/sim.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/crabotin-lab/quadbench/internal/controller"
	"github.com/crabotin-lab/quadbench/internal/plant"
	"github.com/crabotin-lab/quadbench/internal/reference"
)

// Columns is the ordered CSV column schema of spec.md §6.
var Columns = []string{
	"time", "x", "y", "z", "vx", "vy", "vz", "phi", "theta", "psi", "p", "q", "r",
	"x_ref", "y_ref", "z_ref",
	"T", "tau_phi", "tau_theta", "tau_psi",
	"s_x", "s_y", "s_z",
	"m1", "m2", "m3", "m4",
	"algo",
}

// Row is one tick's worth of telemetry, matching Columns 1:1.
type Row struct {
	Time      float64
	State     plant.State
	Setpoint  reference.Setpoint
	Telemetry controller.Telemetry
	Algo      controller.AlgoID
}

// RowFromSnapshot assembles a Row from a tick's observable outputs, the
// single conversion function shared by the file writer and the HTTP
// download endpoint so the two paths cannot drift (see SPEC_FULL.md §4).
func RowFromSnapshot(t float64, s plant.State, sp reference.Setpoint, tel controller.Telemetry, algo controller.AlgoID) Row {
	return Row{Time: t, State: s, Setpoint: sp, Telemetry: tel, Algo: algo}
}

func (r Row) strings() []string {
	f := strconv.FormatFloat
	return []string{
		f(r.Time, 'f', 6, 64),
		f(r.State.X, 'f', 6, 64), f(r.State.Y, 'f', 6, 64), f(r.State.Z, 'f', 6, 64),
		f(r.State.Vx, 'f', 6, 64), f(r.State.Vy, 'f', 6, 64), f(r.State.Vz, 'f', 6, 64),
		f(r.State.Phi, 'f', 6, 64), f(r.State.Theta, 'f', 6, 64), f(r.State.Psi, 'f', 6, 64),
		f(r.State.P, 'f', 6, 64), f(r.State.Q, 'f', 6, 64), f(r.State.R, 'f', 6, 64),
		f(r.Setpoint.X, 'f', 6, 64), f(r.Setpoint.Y, 'f', 6, 64), f(r.Setpoint.Z, 'f', 6, 64),
		f(r.Telemetry.Input.Thrust, 'f', 6, 64),
		f(r.Telemetry.Input.TauPhi, 'f', 6, 64), f(r.Telemetry.Input.TauTht, 'f', 6, 64), f(r.Telemetry.Input.TauPsi, 'f', 6, 64),
		f(r.Telemetry.SurfaceX, 'f', 6, 64), f(r.Telemetry.SurfaceY, 'f', 6, 64), f(r.Telemetry.SurfaceZ, 'f', 6, 64),
		f(r.State.Motors[0], 'f', 3, 64), f(r.State.Motors[1], 'f', 3, 64), f(r.State.Motors[2], 'f', 3, 64), f(r.State.Motors[3], 'f', 3, 64),
		r.Algo.String(),
	}
}

// Writer streams Rows to an underlying io.Writer as CSV, writing the
// header on the first Write call. It mirrors the teacher's
// StreamStates in shape (drain-until-closed, incremental writes) but
// is driven by an explicit Write/Flush pair instead of a goroutine +
// channel, since the orchestrator's Step already runs on a single
// cooperative loop with no concurrency to bridge.
type Writer struct {
	cw          *csv.Writer
	wroteHeader bool
}

// NewWriter wraps w for CSV telemetry export.
func NewWriter(w io.Writer) *Writer {
	return &Writer{cw: csv.NewWriter(w)}
}

// Write appends one telemetry row, writing the header first if needed.
func (wr *Writer) Write(r Row) error {
	if !wr.wroteHeader {
		if err := wr.cw.Write(Columns); err != nil {
			return err
		}
		wr.wroteHeader = true
	}
	return wr.cw.Write(r.strings())
}

// Flush flushes any buffered rows to the underlying writer.
func (wr *Writer) Flush() error {
	wr.cw.Flush()
	return wr.cw.Error()
}

// StreamRows drains rows from a channel until it is closed, writing
// each to wr and flushing at the end. This is the direct generalization
// of the teacher's StreamStates: a buffered channel of snapshots
// produced by the simulation loop and drained by a dedicated writer,
// so a slow disk never stalls the physics loop.
func StreamRows(wr *Writer, rows <-chan Row) error {
	for r := range rows {
		if err := wr.Write(r); err != nil {
			return err
		}
	}
	return wr.Flush()
}
