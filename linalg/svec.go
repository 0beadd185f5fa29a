// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linalg collects the numerical primitives shared by the cone
// library and the system solvers: scaled symmetric vectorization, symmetric
// Kronecker products, pivoted QR, triplet assembly and dense factorization
// wrappers over gonum's mat and lapack64 packages.
package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// rt2 is √2, the off-diagonal scale factor used throughout svec.
const rt2 = math.Sqrt2

// SvecDim returns the length of the svec vectorization of a d×d symmetric
// matrix, d*(d+1)/2.
func SvecDim(d int) int {
	return d * (d + 1) / 2
}

// SmatDim returns the side length d of the symmetric matrix whose svec
// vectorization has length n, or -1 if n is not a triangular number.
func SmatDim(n int) int {
	// solve d*(d+1)/2 == n for non-negative integer d.
	d := int(math.Round((math.Sqrt(8*float64(n)+1) - 1) / 2))
	if d < 0 || d*(d+1)/2 != n {
		return -1
	}
	return d
}

// Svec writes the scaled vectorization of the lower triangle of the d×d
// symmetric matrix A (column-major within the lower triangle) into dst,
// multiplying every off-diagonal entry by √2. Svec preserves the trace inner
// product: ⟨Svec(A), Svec(B)⟩ = trace(A B).
//
// dst must have length SvecDim(d); A must be d×d.
func Svec(dst []float64, A mat.Symmetric) []float64 {
	d := A.SymmetricDim()
	n := SvecDim(d)
	if len(dst) != n {
		panic("linalg: svec destination has wrong length")
	}
	idx := 0
	for j := 0; j < d; j++ {
		for i := j; i < d; i++ {
			v := A.At(i, j)
			if i != j {
				v *= rt2
			}
			dst[idx] = v
			idx++
		}
	}
	return dst
}

// SvecDense is Svec specialized for a *mat.Dense holding a symmetric matrix
// (only the lower triangle is read), useful on the hot path where allocating
// a mat.SymDense view is undesirable.
func SvecDense(dst []float64, A *mat.Dense) []float64 {
	r, c := A.Dims()
	if r != c {
		panic("linalg: svec requires a square matrix")
	}
	n := SvecDim(r)
	if len(dst) != n {
		panic("linalg: svec destination has wrong length")
	}
	idx := 0
	for j := 0; j < r; j++ {
		for i := j; i < r; i++ {
			v := A.At(i, j)
			if i != j {
				v *= rt2
			}
			dst[idx] = v
			idx++
		}
	}
	return dst
}

// Smat writes the symmetric matrix recovered from the svec vector v into the
// d×d destination dst, where d = SmatDim(len(v)). It is the exact inverse of
// Svec: Smat(Svec(A)) == A.
func Smat(dst *mat.SymDense, v []float64) {
	d := SmatDim(len(v))
	if d < 0 {
		panic("linalg: smat source has no valid symmetric dimension")
	}
	if dst.SymmetricDim() != d {
		panic("linalg: smat destination has wrong dimension")
	}
	idx := 0
	for j := 0; j < d; j++ {
		for i := j; i < d; i++ {
			x := v[idx]
			if i != j {
				x /= rt2
			}
			dst.SetSym(i, j, x)
			idx++
		}
	}
}

// ScaleOffDiag multiplies every off-diagonal entry of the svec-ordered
// vector v (dimension n = d*(d+1)/2) in place by √2. It is used whenever a
// raw vector of matrix entries (no svec scaling yet applied) must be turned
// into svec form without a full Svec/Smat round trip.
func ScaleOffDiag(v []float64) {
	d := SmatDim(len(v))
	if d < 0 {
		panic("linalg: ScaleOffDiag requires a triangular-number length")
	}
	idx := 0
	for j := 0; j < d; j++ {
		for i := j; i < d; i++ {
			if i != j {
				v[idx] *= rt2
			}
			idx++
		}
	}
}

// UnscaleOffDiag is the exact inverse of ScaleOffDiag: it divides every
// off-diagonal svec entry by √2.
func UnscaleOffDiag(v []float64) {
	d := SmatDim(len(v))
	if d < 0 {
		panic("linalg: UnscaleOffDiag requires a triangular-number length")
	}
	idx := 0
	for j := 0; j < d; j++ {
		for i := j; i < d; i++ {
			if i != j {
				v[idx] /= rt2
			}
			idx++
		}
	}
}

// SvecDot returns the trace inner product of two symmetric matrices given
// already in svec form: since Svec preserves the inner product this is a
// plain dot product, exposed here so callers never need to remember that
// fact themselves.
func SvecDot(u, v []float64) float64 {
	if len(u) != len(v) {
		panic("linalg: SvecDot operands have different lengths")
	}
	var s float64
	for i := range u {
		s += u[i] * v[i]
	}
	return s
}
