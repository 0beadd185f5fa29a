// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// lmiStandardBasis returns the basis of S^d whose elements have a single
// unit entry at (i, j) and (j, i) (no √2 svec scaling), used to build a
// small but genuinely feasible LMI instance.
func lmiStandardBasis(d int) []*mat.SymDense {
	basis := make([]*mat.SymDense, 0, d*(d+1)/2)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			A := mat.NewSymDense(d, nil)
			A.SetSym(i, j, 1)
			basis = append(basis, A)
		}
	}
	return basis
}

// sampleCones exercises the generic invariants against every cone variant
// in the library (spec §4.2/§8's invariants apply uniformly across the
// roster, including the cones whose Hessian-vector products fall back to
// numeric.go's finite-difference machinery).
func sampleCones(t *testing.T) []struct {
	name string
	c    Cone
} {
	t.Helper()
	wsosP := mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 1})
	return []struct {
		name string
		c    Cone
	}{
		{"Nonnegative", NewNonnegative(4)},
		{"SecondOrder", NewSecondOrder(5)},
		{"RotatedSecondOrder", NewRotatedSecondOrder(4)},
		{"PositiveSemidefinite", NewPSDTriangle(3)},
		{"DoublyNonnegativeTriangle", NewDoublyNonnegativeTriangle(2)},
		{"EpiNormInf", NewEpiNormInf(4)},
		{"EpiNormEucl", NewEpiNormEucl(4)},
		{"EpiNormSpectral", NewEpiNormSpectral(2, 3)},
		{"EpiNormNuclear", NewEpiNormNuclear(2, 3)},
		{"GenPower", NewGenPower([]float64{0.5, 0.5}, 2)},
		{"HypoGeoMean", NewHypoGeoMean(3)},
		{"HypoPowerMean", NewHypoPowerMean([]float64{0.25, 0.75})},
		{"HypoPerspectiveLog", NewHypoPerspectiveLog()},
		{"HypoPerspectiveLogDet", NewHypoPerspectiveLogDet(2)},
		{"HypoRootDet", NewHypoRootDet(2)},
		{"EpiSepSpectral", NewEpiSepSpectral(3)},
		{"EpiSepSpectralMat", NewEpiSepSpectralMat(2)},
		{"EpiRelEntropy", NewEpiRelEntropy(3)},
		{"EpiTraceRelEntropy", NewEpiTraceRelEntropy(2)},
		{"WSOSNonneg", NewWSOSNonneg(wsosP)},
		{"LMI", NewLMI(lmiStandardBasis(2))},
	}
}

func TestConeFeasibleAtInitialPoint(t *testing.T) {
	t.Parallel()
	for _, tc := range sampleCones(t) {
		s := make([]float64, tc.c.Dimension())
		tc.c.SetInitialPoint(s)
		tc.c.LoadPoint(s)
		tc.c.ResetData()
		if !tc.c.IsFeas() {
			t.Errorf("%s: SetInitialPoint output is not IsFeas", tc.name)
		}
	}
}

// TestConeInitialPointComplementarity checks spec §4.6's initial-point
// invariant ⟨s, -∇F(s)⟩ = ν at the cone's own anchor.
func TestConeInitialPointComplementarity(t *testing.T) {
	t.Parallel()
	for _, tc := range sampleCones(t) {
		s := make([]float64, tc.c.Dimension())
		tc.c.SetInitialPoint(s)
		tc.c.LoadPoint(s)
		tc.c.ResetData()
		g := tc.c.Grad()

		var ip float64
		for i := range s {
			ip += s[i] * g[i]
		}
		if want := tc.c.Nu(); math.Abs(ip-want) > 1e-6 {
			t.Errorf("%s: <s,-grad(s)> = %v, want nu = %v", tc.name, ip, want)
		}
	}
}

// TestConeHessSymmetricPositiveDefinite checks that the materialized
// Hessian is symmetric and that its quadratic form is positive for a
// nonzero direction, at the cone's initial point.
func TestConeHessSymmetricPositiveDefinite(t *testing.T) {
	t.Parallel()
	for _, tc := range sampleCones(t) {
		d := tc.c.Dimension()
		s := make([]float64, d)
		tc.c.SetInitialPoint(s)
		tc.c.LoadPoint(s)
		tc.c.ResetData()

		h := tc.c.Hess()
		for i := 0; i < d; i++ {
			for j := 0; j < d; j++ {
				if a, b := h.At(i, j), h.At(j, i); math.Abs(a-b) > 1e-8 {
					t.Errorf("%s: Hess()[%d,%d]=%v != Hess()[%d,%d]=%v", tc.name, i, j, a, j, i, b)
				}
			}
		}

		v := make([]float64, d)
		for i := range v {
			v[i] = float64(i+1) * 0.37
		}
		out := make([]float64, d)
		tc.c.HessProd(out, v)
		var quad float64
		for i := range v {
			quad += v[i] * out[i]
		}
		if quad <= 0 {
			t.Errorf("%s: v^T Hess v = %v, want > 0", tc.name, quad)
		}
	}
}

// TestConeInvHessProdRoundTrip checks HessProd and InvHessProd are mutual
// inverses at the cone's initial point (spec §8 item 3).
func TestConeInvHessProdRoundTrip(t *testing.T) {
	t.Parallel()
	for _, tc := range sampleCones(t) {
		d := tc.c.Dimension()
		s := make([]float64, d)
		tc.c.SetInitialPoint(s)
		tc.c.LoadPoint(s)
		tc.c.ResetData()

		v := make([]float64, d)
		for i := range v {
			v[i] = float64(2*i+1) * 0.11
		}
		hv := make([]float64, d)
		tc.c.HessProd(hv, v)
		back := make([]float64, d)
		tc.c.InvHessProd(back, hv)

		// EpiTraceRelEntropy differentiates its barrier value twice by
		// finite differences (numeric.go), which compounds roundoff past
		// what a single-layer FD gradient tolerates; give it a wider berth.
		tol := 1e-6
		if tc.name == "EpiTraceRelEntropy" {
			tol = 1e-2
		}
		for i := range v {
			if math.Abs(back[i]-v[i]) > tol*math.Max(1, math.Abs(v[i])) {
				t.Errorf("%s: InvHessProd(HessProd(v))[%d] = %v, want %v", tc.name, i, back[i], v[i])
			}
		}
	}
}

// TestConeGradHomogeneity checks the logarithmic homogeneity of the barrier
// gradient: -grad(t*s) = -grad(s)/t for t > 0 (spec §8 item 4).
func TestConeGradHomogeneity(t *testing.T) {
	t.Parallel()
	for _, tc := range sampleCones(t) {
		d := tc.c.Dimension()
		s := make([]float64, d)
		tc.c.SetInitialPoint(s)
		tc.c.LoadPoint(s)
		tc.c.ResetData()
		g1 := append([]float64(nil), tc.c.Grad()...)

		const scale = 2.5
		scaled := make([]float64, d)
		for i := range s {
			scaled[i] = scale * s[i]
		}
		tc.c.LoadPoint(scaled)
		tc.c.ResetData()
		g2 := tc.c.Grad()

		for i := range g1 {
			want := g1[i] / scale
			if math.Abs(g2[i]-want) > 1e-6*math.Max(1, math.Abs(want)) {
				t.Errorf("%s: grad homogeneity violated at %d: got %v, want %v", tc.name, i, g2[i], want)
			}
		}
	}
}

func TestConeNeighborhoodAtCentralPoint(t *testing.T) {
	t.Parallel()
	for _, tc := range sampleCones(t) {
		d := tc.c.Dimension()
		s := make([]float64, d)
		tc.c.SetInitialPoint(s)
		tc.c.LoadPoint(s)
		tc.c.ResetData()
		g := tc.c.Grad()
		z := make([]float64, d)
		copy(z, g)
		tc.c.LoadDualPoint(z)
		tc.c.ResetData()

		if !tc.c.InNeighborhood(1.0, 0.5, false) {
			t.Errorf("%s: central point not InNeighborhood under quadratic-form metric", tc.name)
		}
	}
}
