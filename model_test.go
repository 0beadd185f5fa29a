// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coneprog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/cone"
)

func simpleLP() (*mat.VecDense, *mat.Dense, *mat.VecDense, *mat.Dense, *mat.VecDense, []cone.Cone) {
	c := mat.NewVecDense(3, []float64{1, 2, 3})
	a := mat.NewDense(1, 3, []float64{1, 1, 1})
	b := mat.NewVecDense(1, []float64{1})
	g := mat.NewDense(3, 3, []float64{
		-1, 0, 0,
		0, -1, 0,
		0, 0, -1,
	})
	h := mat.NewVecDense(3, []float64{0, 0, 0})
	cones := []cone.Cone{cone.NewNonnegative(3)}
	return c, a, b, g, h, cones
}

func TestNewModelValid(t *testing.T) {
	t.Parallel()
	c, a, b, g, h, cones := simpleLP()
	m, err := NewModel(c, a, b, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	n, p, q := m.Dims()
	if n != 3 || p != 1 || q != 3 {
		t.Errorf("Dims() = (%d,%d,%d), want (3,1,3)", n, p, q)
	}
	if m.Nu() != 3 {
		t.Errorf("Nu() = %v, want 3", m.Nu())
	}

	want := []ConeRange{{Start: 0, End: 3}}
	if diff := cmp.Diff(want, m.ConeIdxs); diff != "" {
		t.Errorf("ConeIdxs mismatch (-want +got):\n%s", diff)
	}
}

func TestNewModelRejectsConeCoverageMismatch(t *testing.T) {
	t.Parallel()
	c, a, b, g, h, _ := simpleLP()
	cones := []cone.Cone{cone.NewNonnegative(2)} // covers only 2 of 3 coordinates
	if _, err := NewModel(c, a, b, g, h, cones, 0); err == nil {
		t.Fatalf("NewModel with mismatched cone coverage: want error, got nil")
	}
}

func TestNewModelRejectsShapeMismatch(t *testing.T) {
	t.Parallel()
	c, a, _, g, h, cones := simpleLP()
	badB := mat.NewVecDense(2, []float64{1, 1})
	if _, err := NewModel(c, a, badB, g, h, cones, 0); err == nil {
		t.Fatalf("NewModel with mismatched b length: want error, got nil")
	}
}

func TestPointMuAndAddScaled(t *testing.T) {
	t.Parallel()
	c, a, b, g, h, cones := simpleLP()
	m, err := NewModel(c, a, b, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	pt := NewPoint(3, 1, 3)
	copy(pt.S, []float64{1, 1, 1})
	copy(pt.Z, []float64{1, 1, 1})
	pt.Tau, pt.Kappa = 1, 1

	if mu := pt.Mu(m); mu != 1 {
		t.Errorf("Mu() = %v, want 1", mu)
	}

	dir := NewDirection(3, 1, 3)
	copy(dir.X, []float64{1, 1, 1})
	pt.AddScaled(dir, 0.5)
	want := []float64{0.5, 0.5, 0.5}
	for i := range want {
		if pt.X[i] != want[i] {
			t.Errorf("X[%d] = %v, want %v", i, pt.X[i], want[i])
		}
	}
}
