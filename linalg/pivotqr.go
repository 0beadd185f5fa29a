// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

// PivotedQR is the column-pivoted ("rank-revealing") QR factorization used by
// preprocessing (spec §4.6) to detect rank deficiency in A and [A; G], and by
// the QR-Cholesky system solver to eliminate x and y against the QR factors
// of Aᵀ. It mirrors the Factorize/QTo/RTo/Solve shape of mat.QR, but is built
// on lapack64.Geqp3 (QR with column pivoting) rather than the unpivoted
// lapack64.Geqrf that mat.QR wraps, since rank detection requires pivoting.
type PivotedQR struct {
	qr   *mat.Dense
	tau  []float64
	jpvt []int
	rows int
	cols int
}

// Factorize computes A*P = Q*R for the m×n matrix a, where P is the column
// permutation recorded in Jpvt. a must have m >= n; the decomposition always
// exists.
func (qr *PivotedQR) Factorize(a mat.Matrix) {
	m, n := a.Dims()
	if m < n {
		panic("linalg: PivotedQR requires rows >= cols")
	}
	qr.rows, qr.cols = m, n
	qr.qr = mat.DenseCopyOf(a)
	qr.jpvt = make([]int, n)
	qr.tau = make([]float64, min(m, n))

	rm := qr.qr.RawMatrix()
	work := []float64{0}
	lapack64.Geqp3(rm, qr.jpvt, qr.tau, work, -1)
	work = make([]float64, int(work[0]))
	// jpvt must be zeroed before the real call so every column is free to
	// be pivoted; a non-zero entry on input pins that column in place.
	for i := range qr.jpvt {
		qr.jpvt[i] = 0
	}
	lapack64.Geqp3(rm, qr.jpvt, qr.tau, work, len(work))
}

// Jpvt returns the column permutation found by Factorize: column j of the
// factorized (permuted) matrix corresponds to column Jpvt()[j] of the
// original input.
func (qr *PivotedQR) Jpvt() []int {
	return qr.jpvt
}

// RTo extracts the m×n upper trapezoidal factor R (in the permuted column
// order) into dst.
func (qr *PivotedQR) RTo(dst *mat.Dense) *mat.Dense {
	if dst == nil {
		dst = mat.NewDense(qr.rows, qr.cols, nil)
	}
	for i := 0; i < qr.rows; i++ {
		for j := 0; j < qr.cols; j++ {
			if i <= j {
				dst.Set(i, j, qr.qr.At(i, j))
			} else {
				dst.Set(i, j, 0)
			}
		}
	}
	return dst
}

// QTo extracts the m×m orthonormal factor Q into dst.
func (qr *PivotedQR) QTo(dst *mat.Dense) *mat.Dense {
	if dst == nil {
		dst = mat.NewDense(qr.rows, qr.rows, nil)
	}
	dst.Zero()
	for i := 0; i < qr.rows*qr.rows; i += qr.rows + 1 {
		dst.RawMatrix().Data[i] = 1
	}
	work := []float64{0}
	rm := qr.qr.RawMatrix()
	dm := dst.RawMatrix()
	lapack64.Ormqr(blas.Left, blas.NoTrans, rm, qr.tau, dm, work, -1)
	work = make([]float64, int(work[0]))
	lapack64.Ormqr(blas.Left, blas.NoTrans, rm, qr.tau, dm, work, len(work))
	return dst
}

// EstimateRank counts the number of diagonal entries of R whose magnitude
// exceeds tol, following spec §4.6's rank-estimation rule. Since R is
// produced by a column-pivoted factorization its diagonal is non-increasing
// in magnitude, so this is equivalent to finding the last surviving pivot.
func (qr *PivotedQR) EstimateRank(tol float64) int {
	k := min(qr.rows, qr.cols)
	rank := 0
	for i := 0; i < k; i++ {
		if math.Abs(qr.qr.At(i, i)) > tol {
			rank++
		} else {
			break
		}
	}
	return rank
}

// DefaultRankTol returns the default pivot tolerance of spec §4.6,
// 100·ε(float64).
func DefaultRankTol() float64 {
	return 100 * epsFloat64
}

const epsFloat64 = 2.220446049250313e-16

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
