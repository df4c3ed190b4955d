package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/crabotin-lab/quadbench/internal/controller"
	"github.com/crabotin-lab/quadbench/internal/plant"
	"github.com/crabotin-lab/quadbench/internal/reference"
)

func TestWriterWritesHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	row := RowFromSnapshot(0, plant.State{}, reference.Setpoint{}, controller.Telemetry{}, controller.PID)
	if err := w.Write(row); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(row); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "time,x,y,z") {
		t.Fatalf("expected header row first, got %q", lines[0])
	}
}

func TestStreamRowsDrainsUntilClosed(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	ch := make(chan Row, 4)
	ch <- RowFromSnapshot(0, plant.State{}, reference.Setpoint{}, controller.Telemetry{}, controller.PID)
	ch <- RowFromSnapshot(1.0 / 120, plant.State{}, reference.Setpoint{}, controller.Telemetry{}, controller.PID)
	close(ch)
	if err := StreamRows(w, ch); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(lines))
	}
}
