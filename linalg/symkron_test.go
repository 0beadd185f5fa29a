// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestSymKronMatchesDefiningProperty(t *testing.T) {
	t.Parallel()

	d := 3
	A := mat.NewSymDense(d, []float64{2, 1, 0, 1, 3, 1, 0, 1, 4})
	X := mat.NewSymDense(d, []float64{1, 2, 0, 2, 5, 1, 0, 1, 3})

	M := SymKron(A)

	var tmp, axat mat.Dense
	tmp.Mul(A, X)
	axat.Mul(&tmp, A.T())
	want := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			want.SetSym(i, j, 0.5*(axat.At(i, j)+axat.At(j, i)))
		}
	}
	wantVec := Svec(make([]float64, SvecDim(d)), want)

	xVec := Svec(make([]float64, SvecDim(d)), X)
	gotVec := make([]float64, SvecDim(d))
	mv := mat.NewVecDense(SvecDim(d), gotVec)
	mv.MulVec(M, mat.NewVecDense(SvecDim(d), xVec))

	if !floats.EqualApprox(gotVec, wantVec, 1e-9) {
		t.Errorf("SymKron(A)*svec(X) = %v, want svec(AXA^T) = %v", gotVec, wantVec)
	}
}

func TestSymKronIdentityIsIdentity(t *testing.T) {
	t.Parallel()

	d := 4
	I := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		I.SetSym(i, i, 1)
	}
	M := SymKron(I)
	n := SvecDim(d)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if got := M.At(i, j); got < want-1e-9 || got > want+1e-9 {
				t.Errorf("SymKron(I)[%d,%d] = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestSymKronSymmetric(t *testing.T) {
	t.Parallel()

	d := 3
	A := mat.NewSymDense(d, []float64{3, -1, 2, -1, 5, 0, 2, 0, 4})
	M := SymKron(A)
	n := SvecDim(d)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if got, want := M.At(i, j), M.At(j, i); got != want {
				t.Errorf("SymKron(A) not symmetric at [%d,%d]: %v vs %v", i, j, got, want)
			}
		}
	}
}
