package reference

import (
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestPreviewMatchesEvaluate(t *testing.T) {
	patterns := []Pattern{HOVER, CIRCLE, HELIX, FIGURE8, SQUARE}
	step := DefaultStepParams()
	for _, p := range patterns {
		preview := PreviewPattern(p, step, 50, 10)
		for i, sp := range preview {
			tAt := 10 * float64(i) / 49
			want := Evaluate(p, tAt, step)
			if !floats.EqualWithinAbs(sp.X, want.X, 1e-9) || !floats.EqualWithinAbs(sp.Y, want.Y, 1e-9) || !floats.EqualWithinAbs(sp.Z, want.Z, 1e-9) {
				t.Fatalf("%v: preview[%d]=%+v want %+v", p, i, sp, want)
			}
		}
	}
}

func TestTrajectoryFnMatchesEvaluate(t *testing.T) {
	fn := GetTrajectoryFn(CIRCLE, DefaultStepParams())
	for _, tt := range []float64{0, 1.5, 10, 37.2} {
		got := fn.At(tt)
		want := Evaluate(CIRCLE, tt, DefaultStepParams())
		if got != want {
			t.Fatalf("At(%v)=%+v want %+v", tt, got, want)
		}
	}
}

func TestStepPattern(t *testing.T) {
	sp := DefaultStepParams()
	before := Evaluate(STEP, 2.9, sp)
	after := Evaluate(STEP, 3.1, sp)
	if before.Y != sp.Y0 {
		t.Fatalf("before step: got y=%v want %v", before.Y, sp.Y0)
	}
	if after.Y != sp.Y1 {
		t.Fatalf("after step: got y=%v want %v", after.Y, sp.Y1)
	}
}

func TestCustomWalkerReachesWaypoints(t *testing.T) {
	w := NewCustomWalker([]Waypoint{{0, 3, 0}, {10, 3, 0}, {10, 3, 10}}, 5)
	dt := 1.0 / 120
	var last Setpoint
	for i := 0; i < 120*10; i++ {
		last = w.Advance(dt)
	}
	if last.X < 5 {
		t.Fatalf("expected walker to have progressed significantly, got %+v", last)
	}
}

func TestCustomWalkerSnapshotDoesNotMutate(t *testing.T) {
	w := NewCustomWalker([]Waypoint{{0, 3, 0}, {10, 3, 0}}, 5)
	dt := 1.0 / 120
	for i := 0; i < 60; i++ {
		w.Advance(dt)
	}
	segBefore, tauBefore := w.segment, w.tau
	fn := w.Snapshot(60 * dt)
	_ = fn.At(100)
	_ = fn.At(5)
	if w.segment != segBefore || w.tau != tauBefore {
		t.Fatalf("Snapshot lookahead mutated walker state")
	}
}

func TestKeyboardChannelIntegratesCommandedVelocity(t *testing.T) {
	k := NewKeyboardChannel(0, 3, 0, 0)
	k.SetAxes(Axes{Right: true})
	dt := 1.0 / 120
	var sp Setpoint
	for i := 0; i < 120; i++ {
		sp = k.Advance(dt)
	}
	if !floats.EqualWithinAbs(sp.X, keyboardLateralSpeed, 1e-9) {
		t.Fatalf("expected x to reach %v after 1s, got %v", keyboardLateralSpeed, sp.X)
	}
}

func TestKeyboardChannelSnapshotRollsForwardAtHeldVelocity(t *testing.T) {
	k := NewKeyboardChannel(0, 3, 0, 0)
	k.SetAxes(Axes{Right: true})
	dt := 1.0 / 120
	var now float64
	for i := 0; i < 120; i++ {
		k.Advance(dt)
		now += dt
	}

	fn := k.Snapshot(now)
	want := k.x + keyboardLateralSpeed*2
	got := fn.At(now + 2).X
	if !floats.EqualWithinAbs(got, want, 1e-9) {
		t.Fatalf("expected snapshot rollout x=%v at now+2s, got %v", want, got)
	}
}

func TestKeyboardChannelSnapshotDoesNotMutate(t *testing.T) {
	k := NewKeyboardChannel(0, 3, 0, 0)
	k.SetAxes(Axes{Right: true, Ascend: true})
	dt := 1.0 / 120
	for i := 0; i < 60; i++ {
		k.Advance(dt)
	}
	xBefore, yBefore, zBefore, yawBefore := k.x, k.y, k.z, k.yaw
	fn := k.Snapshot(60 * dt)
	_ = fn.At(100)
	_ = fn.At(5)
	if k.x != xBefore || k.y != yBefore || k.z != zBefore || k.yaw != yawBefore {
		t.Fatalf("Snapshot lookahead mutated keyboard channel state")
	}
}

func TestKeyboardChannelClampsGround(t *testing.T) {
	k := NewKeyboardChannel(0, 0.1, 0, 0)
	k.SetAxes(Axes{Descend: true})
	dt := 1.0 / 120
	var sp Setpoint
	for i := 0; i < 120; i++ {
		sp = k.Advance(dt)
	}
	if sp.Y < 0 {
		t.Fatalf("keyboard y went negative: %v", sp.Y)
	}
}
