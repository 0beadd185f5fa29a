// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kktsolver

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/cone"
)

// buildTestData constructs a tiny LP over the nonnegative orthant:
//
//	n=3 variables, p=1 equality constraint, q=3 nonnegative slacks.
func buildTestData() *Data {
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

	return &Data{
		C: c, A: a, B: b, G: g, H: h,
		Cones:    []cone.Cone{k},
		ConeIdxs: []Range{{Start: 0, End: 3}},
	}
}

func loadCentralPoint(data *Data, mu float64) {
	for i, k := range data.Cones {
		r := data.ConeIdxs[i]
		s := make([]float64, r.End-r.Start)
		k.SetInitialPoint(s)
		for j := range s {
			s[j] *= math.Sqrt(mu)
		}
		k.LoadPoint(s)
		g := k.Grad()
		z := make([]float64, len(g))
		for j := range z {
			z[j] = -g[j] * math.Sqrt(mu)
		}
		k.LoadDualPoint(z)
		k.ResetData()
	}
}

func sampleRHS(n, p, q int) *RHS {
	rhs := NewRHS(n, p, q)
	for i := range rhs.RX {
		rhs.RX[i] = float64(i+1) * 0.1
	}
	for i := range rhs.RY {
		rhs.RY[i] = float64(i+1) * 0.2
	}
	for i := range rhs.RZ {
		rhs.RZ[i] = float64(i+1) * 0.3
	}
	for i := range rhs.RS {
		rhs.RS[i] = float64(i+1) * 0.05
	}
	rhs.RTau = 0.5
	rhs.RKappa = -0.25
	return rhs
}

func TestNaiveAndQRCholAgree(t *testing.T) {
	t.Parallel()

	data := buildTestData()
	mu, tau, kappa := 1.0, 1.0, 1.0
	loadCentralPoint(data, mu)

	var naive NaiveSolver
	if err := naive.UpdateLHS(data, mu, tau, kappa); err != nil {
		t.Fatalf("NaiveSolver.UpdateLHS: %v", err)
	}
	var qrchol QRCholSolver
	if err := qrchol.UpdateLHS(data, mu, tau, kappa); err != nil {
		t.Fatalf("QRCholSolver.UpdateLHS: %v", err)
	}

	n, p, q := data.Dims()
	rhs := sampleRHS(n, p, q)

	dirN := NewDir(n, p, q)
	if err := naive.Solve(data, rhs, dirN); err != nil {
		t.Fatalf("NaiveSolver.Solve: %v", err)
	}
	dirQ := NewDir(n, p, q)
	if err := qrchol.Solve(data, rhs, dirQ); err != nil {
		t.Fatalf("QRCholSolver.Solve: %v", err)
	}

	const tol = 1e-7
	checkClose := func(name string, got, want []float64) {
		for i := range want {
			if math.Abs(got[i]-want[i]) > tol*(1+math.Abs(want[i])) {
				t.Errorf("%s[%d] = %v, want %v (naive)", name, i, got[i], want[i])
			}
		}
	}
	checkClose("X", dirQ.X, dirN.X)
	checkClose("Y", dirQ.Y, dirN.Y)
	checkClose("Z", dirQ.Z, dirN.Z)
	checkClose("S", dirQ.S, dirN.S)
	if math.Abs(dirQ.Tau-dirN.Tau) > tol*(1+math.Abs(dirN.Tau)) {
		t.Errorf("Tau = %v, want %v", dirQ.Tau, dirN.Tau)
	}
	if math.Abs(dirQ.Kappa-dirN.Kappa) > tol*(1+math.Abs(dirN.Kappa)) {
		t.Errorf("Kappa = %v, want %v", dirQ.Kappa, dirN.Kappa)
	}
}

func TestQRCholRejectsRankDeficientA(t *testing.T) {
	t.Parallel()

	data := buildTestData()
	// Stack a duplicate of the single equality row to make A rank-deficient
	// relative to its row count.
	data.A = mat.NewDense(2, 3, []float64{1, 1, 1, 1, 1, 1})
	data.B = mat.NewVecDense(2, []float64{1, 1})

	loadCentralPoint(data, 1.0)

	var qrchol QRCholSolver
	err := qrchol.UpdateLHS(data, 1.0, 1.0, 1.0)
	if err == nil {
		t.Fatalf("UpdateLHS with rank-deficient A: want error, got nil")
	}
}
