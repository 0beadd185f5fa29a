// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned by SymIndefinite.Factorize and LU.Factorize when
// the matrix under factorization is exactly singular.
var ErrSingular = errors.New("linalg: matrix is numerically singular")

// SymIndefinite is a dense Bunch-Kaufman (LDLᵀ with 1×1/2×2 pivots)
// factorization of a symmetric matrix, standing in for the "sparse symmetric
// LDLᵀ" factorization of spec §2 bullet 1 and backing the naive system
// solver's reduced KKT system (spec §4.3). The retrieval pack exposes no
// pure-Go sparse symmetric factorization; see DESIGN.md for why the dense
// lapack64.Sytrf route was chosen instead of vendoring one.
type SymIndefinite struct {
	a    *mat.Dense
	ipiv []int
	n    int
}

// Factorize computes the Bunch-Kaufman factorization of the symmetric
// matrix a, reusing internal storage across repeated calls on
// same-dimension matrices (the system solvers call this once per iteration,
// after the cones have been refreshed at the new scaled point).
func (f *SymIndefinite) Factorize(a mat.Symmetric) error {
	n := a.SymmetricDim()
	if f.a == nil || f.n != n {
		f.a = mat.NewDense(n, n, nil)
		f.ipiv = make([]int, n)
		f.n = n
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			f.a.Set(i, j, a.At(i, j))
		}
	}
	sym := blas64.Symmetric{N: n, Stride: f.a.RawMatrix().Stride, Data: f.a.RawMatrix().Data, Uplo: blas.Upper}
	work := []float64{0}
	ok := lapack64.Sytrf(sym, f.ipiv, work, -1)
	_ = ok
	work = make([]float64, int(work[0]))
	ok = lapack64.Sytrf(sym, f.ipiv, work, len(work))
	if !ok {
		return ErrSingular
	}
	return nil
}

// Solve overwrites rhs (n×nrhs, dense general) with the solution of A*X =
// rhs using the factorization computed by Factorize.
func (f *SymIndefinite) Solve(rhs *mat.Dense) error {
	n, _ := rhs.Dims()
	if n != f.n {
		panic("linalg: SymIndefinite.Solve dimension mismatch")
	}
	sym := blas64.Symmetric{N: f.n, Stride: f.a.RawMatrix().Stride, Data: f.a.RawMatrix().Data, Uplo: blas.Upper}
	b := rhs.RawMatrix()
	lapack64.Sytrs(sym, b, f.ipiv)
	return nil
}

// LU is a dense partial-pivoted LU factorization, standing in for the
// "sparse nonsymmetric LU" of spec §2 bullet 1. Neither system solver nor
// preprocessing uses it: both work with symmetric or QR factorizations.
type LU struct {
	a    *mat.Dense
	ipiv []int
	n    int
}

// Factorize computes the LU factorization (with partial pivoting) of the
// square matrix a.
func (f *LU) Factorize(a mat.Matrix) error {
	n, m := a.Dims()
	if n != m {
		panic("linalg: LU requires a square matrix")
	}
	f.a = mat.DenseCopyOf(a)
	f.ipiv = make([]int, n)
	f.n = n
	ok := lapack64.Getrf(f.a.RawMatrix(), f.ipiv)
	if !ok {
		return ErrSingular
	}
	return nil
}

// Solve overwrites rhs with the solution of A*X = rhs (trans == false) or
// Aᵀ*X = rhs (trans == true).
func (f *LU) Solve(rhs *mat.Dense, trans bool) {
	t := blas.NoTrans
	if trans {
		t = blas.Trans
	}
	lapack64.Getrs(t, f.a.RawMatrix(), rhs.RawMatrix(), f.ipiv)
}
