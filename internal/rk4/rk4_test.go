package rk4

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// dx/dt = x exactly solves to x(t) = x0*e^t; RK4 over one unit step at
// h=0.01 should track it to a tight tolerance.
func TestStepExponential(t *testing.T) {
	f := func(_ float64, s []float64) []float64 {
		return []float64{s[0]}
	}
	s := []float64{1}
	h := 0.01
	tm := 0.0
	for i := 0; i < 100; i++ {
		s = Step(f, tm, h, s)
		tm += h
	}
	want := math.Exp(1)
	if !floats.EqualWithinAbs(s[0], want, 1e-6) {
		t.Fatalf("got %v, want %v", s[0], want)
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	f := func(_ float64, s []float64) []float64 {
		return []float64{-s[0], s[1]}
	}
	s := []float64{1, 2}
	orig := append([]float64{}, s...)
	_ = Step(f, 0, 0.1, s)
	if !floats.Equal(s, orig) {
		t.Fatalf("Step mutated its input: %v != %v", s, orig)
	}
}
