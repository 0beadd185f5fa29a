// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

func TestSvecSmatRoundTrip(t *testing.T) {
	t.Parallel()

	for _, d := range []int{1, 2, 3, 5, 8} {
		a := mat.NewSymDense(d, nil)
		for i := 0; i < d; i++ {
			for j := 0; j <= i; j++ {
				a.SetSym(i, j, float64(3*i-2*j+1))
			}
		}

		v := Svec(make([]float64, SvecDim(d)), a)
		got := mat.NewSymDense(d, nil)
		Smat(got, v)

		for i := 0; i < d; i++ {
			for j := 0; j < d; j++ {
				if !scalar.EqualWithinAbsOrRel(a.At(i, j), got.At(i, j), 1e-12, 1e-12) {
					t.Errorf("d=%d: Smat(Svec(A))[%d,%d] = %v, want %v", d, i, j, got.At(i, j), a.At(i, j))
				}
			}
		}
	}
}

func TestSvecPreservesTraceInnerProduct(t *testing.T) {
	t.Parallel()

	d := 4
	a := mat.NewSymDense(d, []float64{
		2, 1, 0, 3,
		1, 4, 1, 0,
		0, 1, 5, 2,
		3, 0, 2, 6,
	})
	b := mat.NewSymDense(d, []float64{
		1, 0, 2, 1,
		0, 3, 0, 1,
		2, 0, 2, 0,
		1, 1, 0, 4,
	})

	var prod mat.Dense
	prod.Mul(a, b)
	var want float64
	for i := 0; i < d; i++ {
		want += prod.At(i, i)
	}

	va := Svec(make([]float64, SvecDim(d)), a)
	vb := Svec(make([]float64, SvecDim(d)), b)
	got := SvecDot(va, vb)

	if !scalar.EqualWithinAbsOrRel(got, want, 1e-10, 1e-10) {
		t.Errorf("SvecDot = %v, want trace(AB) = %v", got, want)
	}
}

func TestSmatDim(t *testing.T) {
	t.Parallel()

	for d := 0; d < 10; d++ {
		n := SvecDim(d)
		if got := SmatDim(n); got != d {
			t.Errorf("SmatDim(SvecDim(%d)=%d) = %d, want %d", d, n, got, d)
		}
	}
	if got := SmatDim(2); got != -1 {
		t.Errorf("SmatDim(2) = %d, want -1 (not a triangular number)", got)
	}
}

func TestScaleUnscaleOffDiagRoundTrip(t *testing.T) {
	t.Parallel()

	v := []float64{1, 2, 3, 4, 5, 6}
	orig := append([]float64(nil), v...)

	ScaleOffDiag(v)
	UnscaleOffDiag(v)

	if !floats.EqualApprox(v, orig, 1e-12) {
		t.Errorf("ScaleOffDiag/UnscaleOffDiag round trip = %v, want %v", v, orig)
	}
}

func TestSvecDenseMatchesSvec(t *testing.T) {
	t.Parallel()

	d := 3
	sym := mat.NewSymDense(d, []float64{4, 1, 2, 1, 5, 3, 2, 3, 6})
	dense := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			dense.Set(i, j, sym.At(i, j))
		}
	}

	want := Svec(make([]float64, SvecDim(d)), sym)
	got := SvecDense(make([]float64, SvecDim(d)), dense)

	if !floats.EqualApprox(got, want, 1e-12) {
		t.Errorf("SvecDense = %v, want %v", got, want)
	}
}

func TestSvecDimMonotone(t *testing.T) {
	t.Parallel()
	if SvecDim(0) != 0 {
		t.Errorf("SvecDim(0) = %d, want 0", SvecDim(0))
	}
	for d := 1; d < 20; d++ {
		if SvecDim(d) <= SvecDim(d-1) {
			t.Errorf("SvecDim not strictly increasing at d=%d", d)
		}
	}
}
