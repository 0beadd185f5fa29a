// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stepper

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/cone"
	"github.com/coneprog/coneprog/kktsolver"
)

// buildLP returns a tiny LP over the nonnegative orthant (n=3, p=1, q=3)
// together with a strictly central starting point, mirroring
// coneprog's own initial-point construction but inlined here so this
// package's tests do not depend on the root package.
func buildLP() (data *kktsolver.Data, x, y, z, s []float64, tau, kappa float64) {
	c := mat.NewVecDense(3, []float64{1, 2, 3})
	a := mat.NewDense(1, 3, []float64{1, 1, 1})
	b := mat.NewVecDense(1, []float64{1})
	g := mat.NewDense(3, 3, []float64{
		-1, 0, 0,
		0, -1, 0,
		0, 0, -1,
	})
	h := mat.NewVecDense(3, []float64{0, 0, 0})
	k := cone.NewNonnegative(3)

	data = &kktsolver.Data{
		C: c, A: a, B: b, G: g, H: h,
		Cones:    []cone.Cone{k},
		ConeIdxs: []kktsolver.Range{{Start: 0, End: 3}},
	}

	sVal := []float64{1, 1, 1}
	k.LoadPoint(sVal)
	k.ResetData()
	grad := k.Grad()
	zVal := make([]float64, 3)
	copy(zVal, grad)

	return data, []float64{0.3, 0.3, 0.4}, []float64{0}, zVal, sVal, 1, 1
}

func TestStepKeepsIterateStrictlyPositive(t *testing.T) {
	t.Parallel()

	data, x, y, z, s, tau, kappa := buildLP()
	sys := &kktsolver.NaiveSolver{}
	st := New(sys, 3, 1, 3, DefaultConfig())

	mu := 1.0
	rx := make([]float64, 3)
	ry := make([]float64, 1)
	rz := make([]float64, 3)

	result, err := st.Step(data, x, y, z, s, tau, kappa, rx, ry, rz, mu)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if result.Alpha <= 0 || result.Alpha > 1 {
		t.Errorf("Alpha = %v, want in (0, 1]", result.Alpha)
	}
	if result.Dir == nil {
		t.Fatalf("Step returned a nil direction")
	}

	// Applying the step at its returned alpha must keep every nonnegative
	// slack/dual pair strictly positive (the line search's own contract).
	for i := 0; i < 3; i++ {
		sNew := s[i] + result.Alpha*result.Dir.S[i]
		zNew := z[i] + result.Alpha*result.Dir.Z[i]
		if sNew <= 0 || zNew <= 0 {
			t.Errorf("coordinate %d: sNew=%v zNew=%v, want both > 0", i, sNew, zNew)
		}
	}
	tauNew := tau + result.Alpha*result.Dir.Tau
	kappaNew := kappa + result.Alpha*result.Dir.Kappa
	if tauNew <= 0 || kappaNew <= 0 {
		t.Errorf("tauNew=%v kappaNew=%v, want both > 0", tauNew, kappaNew)
	}
}

func TestBranchString(t *testing.T) {
	t.Parallel()
	if got := Predict.String(); got != "predict" {
		t.Errorf("Predict.String() = %q, want %q", got, "predict")
	}
	if got := Center.String(); got != "center" {
		t.Errorf("Center.String() = %q, want %q", got, "center")
	}
}

func TestStartAlphaClipsOnNegativeDirection(t *testing.T) {
	t.Parallel()
	st := New(&kktsolver.NaiveSolver{}, 1, 0, 1, DefaultConfig())
	st.prevAlpha = 1

	dir := kktsolver.NewDir(1, 0, 1)
	dir.Tau = -0.5
	dir.Kappa = -2

	alpha := st.startAlpha(1.0, 1.0, dir)
	want := 0.9999 * math.Min(1, 1.0/2.0)
	if math.Abs(alpha-want) > 1e-9 {
		t.Errorf("startAlpha = %v, want %v", alpha, want)
	}
}
