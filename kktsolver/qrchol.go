// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kktsolver

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/linalg"
)

// QRCholSolver implements System by eliminating x and y against the
// pivoted-QR factors of Aᵀ and Cholesky-factoring the remaining reduced
// system over x's null-space component, per spec §4.3's second solver
// variant and SPEC_FULL.md §7. It requires Options.Preprocess (the caller
// is expected to have already rank-checked A via the same PivotedQR route
// during preprocessing).
//
// Writing the eliminated row-3 equation G·x - (1/μ)·H⁻¹·z = bz as
// z = μ·H·(G·x - bz) (H the cone Hessian block) and substituting into row 1
// collapses the bordered core of naive.go to the SPD-bordered system
//
//	[ M   Aᵀ ] [x]   [bx + μ·Gᵀ·H·bz]
//	[ A   0  ] [y] = [by            ]
//
// with M = μ·Gᵀ·H·G. Writing Aᵀ = [Q1 Q2]·[R1; 0] (the pivoted QR of Aᵀ),
// the row-2 equation forces the Q1-component of x to the fixed value
// x1part = R1⁻ᵀ·by, leaving a Cholesky-factorable (n-p)×(n-p) system
// Q2ᵀ·M·Q2·u = Q2ᵀ·(bx+μGᵀHbz) - Q2ᵀ·M·Q1·x1part over the free component
// x = Q1·x1part + Q2·u. y is then recovered from row 1 via the triangular
// system R1·y = Q1ᵀ·(bx+μGᵀHbz-M·x). This mirrors CVXOPT's conelp
// kkt_qr routine but is a from-scratch re-derivation, not a line-by-line
// port — see DESIGN.md.
type QRCholSolver struct {
	n, p, q int
	mu      float64
	tau     float64

	q1, q2 *mat.Dense // n×p, n×(n-p); q1 is nil when p == 0
	r1     *mat.Dense // p×p upper triangular; nil when p == 0

	mredChol mat.Cholesky

	// x1, y1, z1 solve the reduced system against (-c, b, h); cached once
	// per UpdateLHS, reused by every Solve call in the iteration.
	x1, y1, z1 []float64
	denom      float64
}

// ErrRankDeficient is returned when Aᵀ's pivoted QR factorization does not
// reveal full column rank p, which this solver requires.
var ErrRankDeficient = errors.New("kktsolver: A is not full row rank")

func (s *QRCholSolver) factorA(data *Data) error {
	n, p, _ := data.Dims()
	s.n, s.p = n, p
	if p == 0 {
		s.q1, s.r1 = nil, nil
		s.q2 = mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			s.q2.Set(i, i, 1)
		}
		return nil
	}
	var qr linalg.PivotedQR
	qr.Factorize(data.A.T())
	if qr.EstimateRank(linalg.DefaultRankTol()) < p {
		return errors.Wrap(ErrRankDeficient, "QR-Cholesky solver")
	}
	qFull := qr.QTo(nil)
	rFull := qr.RTo(nil)
	s.q1 = mat.DenseCopyOf(qFull.Slice(0, n, 0, p))
	s.q2 = mat.DenseCopyOf(qFull.Slice(0, n, p, n))
	s.r1 = mat.DenseCopyOf(rFull.Slice(0, p, 0, p))
	return nil
}

// hessBlock assembles the block-diagonal cone Hessian as a dense symmetric
// matrix, mirroring the manual Put loop naive.go uses for InvHess.
func hessBlock(data *Data) *mat.SymDense {
	_, _, q := data.Dims()
	h := mat.NewSymDense(q, nil)
	for i, k := range data.Cones {
		hs := k.Hess()
		r := data.ConeIdxs[i]
		d := r.End - r.Start
		for a := 0; a < d; a++ {
			for b := 0; b <= a; b++ {
				h.SetSym(r.Start+a, r.Start+b, hs.At(a, b))
			}
		}
	}
	return h
}

// solveRT solves R1ᵀ·x = b (R1 upper triangular p×p) by forward
// substitution.
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

// solveRfwd solves R1·y = b (R1 upper triangular p×p) by back substitution.
func solveRfwd(r *mat.Dense, b []float64) []float64 {
	p := len(b)
	y := make([]float64, p)
	for i := p - 1; i >= 0; i-- {
		sum := b[i]
		for k := i + 1; k < p; k++ {
			sum -= r.At(i, k) * y[k]
		}
		y[i] = sum / r.At(i, i)
	}
	return y
}

func toSym(d *mat.Dense) *mat.SymDense {
	n, _ := d.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(d.At(i, j)+d.At(j, i)))
		}
	}
	return sym
}

// UpdateLHS refreshes Aᵀ's QR factors (cheap to recompute; A does not
// change across iterations, but recomputing keeps this solver stateless
// across calls with a different Data) and the Cholesky factor of the
// reduced (n-p)×(n-p) system, then pre-solves the fixed (-c, b, h) column.
func (s *QRCholSolver) UpdateLHS(data *Data, mu, tau, kappa float64) error {
	n, p, q := data.Dims()
	s.n, s.p, s.q = n, p, q
	s.mu, s.tau = mu, tau

	if err := s.factorA(data); err != nil {
		return err
	}

	hblk := hessBlock(data)
	var hg mat.Dense
	hg.Mul(hblk, data.G)
	var m mat.Dense
	m.Mul(data.G.T(), &hg)
	m.Scale(mu, &m)

	free := n - p
	var mred mat.Dense
	if free > 0 {
		var mq2 mat.Dense
		mq2.Mul(&m, s.q2)
		mred.Mul(s.q2.T(), &mq2)
		if !s.mredChol.Factorize(toSym(&mred)) {
			return errors.Wrap(ErrFactorization, "QR-Cholesky reduced system")
		}
	}

	var bCol []float64
	if p > 0 {
		bCol = colOf(data.B)
	}
	x1, y1, z1 := s.solveReduced(data, &m, hblk, colOf(data.C), bCol, colOf(data.H), true)
	s.x1, s.y1, s.z1 = x1, y1, z1

	s.denom = -floats.Dot(colOf(data.C), s.x1)
	if p > 0 {
		s.denom -= floats.Dot(colOf(data.B), s.y1)
	}
	s.denom -= floats.Dot(colOf(data.H), s.z1)
	s.denom -= mu / (tau * tau)
	return nil
}

// solveReduced solves the SPD-bordered system of the type doc comment for
// (bx, by, bz), flipping the sign of bx when negate is true (the fixed
// column uses bx=-c, matching the naive solver's convention).
func (s *QRCholSolver) solveReduced(data *Data, m *mat.Dense, hblk *mat.SymDense, bx, by, bz []float64, negate bool) (x, y, z []float64) {
	n, p, q := s.n, s.p, s.q

	hbz := make([]float64, q)
	if bz != nil {
		hv := mat.NewVecDense(q, nil)
		hv.MulVec(hblk, mat.NewVecDense(q, bz))
		for i := 0; i < q; i++ {
			hbz[i] = hv.AtVec(i)
		}
	}
	rhsX := make([]float64, n)
	for i := 0; i < n; i++ {
		v := 0.0
		if bx != nil {
			v = bx[i]
		}
		if negate {
			v = -v
		}
		rhsX[i] = v
	}
	if bz != nil {
		gtHbz := mat.NewVecDense(n, nil)
		gtHbz.MulVec(data.G.T(), mat.NewVecDense(q, hbz))
		for i := 0; i < n; i++ {
			rhsX[i] += s.mu * gtHbz.AtVec(i)
		}
	}

	var x1part []float64
	if p > 0 {
		x1part = solveRT(s.r1, by)
	}

	free := n - p
	x = make([]float64, n)
	if free > 0 {
		rhsU := make([]float64, free)
		q2t := s.q2.T()
		rv := mat.NewVecDense(n, rhsX)
		ru := mat.NewVecDense(free, nil)
		ru.MulVec(q2t, rv)
		for i := 0; i < free; i++ {
			rhsU[i] = ru.AtVec(i)
		}
		if p > 0 {
			q1x1 := mat.NewVecDense(n, nil)
			q1x1.MulVec(s.q1, mat.NewVecDense(p, x1part))
			mq1x1 := mat.NewVecDense(n, nil)
			mq1x1.MulVec(m, q1x1)
			mq1x1u := mat.NewVecDense(free, nil)
			mq1x1u.MulVec(q2t, mq1x1)
			for i := 0; i < free; i++ {
				rhsU[i] -= mq1x1u.AtVec(i)
			}
		}
		u := mat.NewVecDense(free, nil)
		rhsUVec := mat.NewVecDense(free, rhsU)
		_ = s.mredChol.SolveVecTo(u, rhsUVec)
		xu := mat.NewVecDense(n, nil)
		xu.MulVec(s.q2, u)
		for i := 0; i < n; i++ {
			x[i] = xu.AtVec(i)
		}
	}
	if p > 0 {
		q1x1 := mat.NewVecDense(n, nil)
		q1x1.MulVec(s.q1, mat.NewVecDense(p, x1part))
		for i := 0; i < n; i++ {
			x[i] += q1x1.AtVec(i)
		}
	}

	if p > 0 {
		mx := mat.NewVecDense(n, nil)
		mx.MulVec(m, mat.NewVecDense(n, x))
		rhsY := make([]float64, p)
		qv := mat.NewVecDense(p, nil)
		qv.MulVec(s.q1.T(), mat.NewVecDense(n, rhsX))
		for i := 0; i < p; i++ {
			rhsY[i] = qv.AtVec(i)
		}
		mxq1 := mat.NewVecDense(p, nil)
		mxq1.MulVec(s.q1.T(), mx)
		for i := 0; i < p; i++ {
			rhsY[i] -= mxq1.AtVec(i)
		}
		y = solveRfwd(s.r1, rhsY)
	} else {
		y = nil
	}

	z = make([]float64, q)
	gx := mat.NewVecDense(q, nil)
	gx.MulVec(data.G, mat.NewVecDense(n, x))
	diff := make([]float64, q)
	for i := 0; i < q; i++ {
		diff[i] = gx.AtVec(i)
		if bz != nil {
			diff[i] -= bz[i]
		}
	}
	hz := mat.NewVecDense(q, nil)
	hz.MulVec(hblk, mat.NewVecDense(q, diff))
	for i := 0; i < q; i++ {
		z[i] = s.mu * hz.AtVec(i)
	}
	return x, y, z
}

// Solve implements System, folding the per-cone s elimination into bz0
// exactly as NaiveSolver.Solve does, then running the same scalar τ/κ/s
// recovery over the QR-Cholesky reduced solve.
func (s *QRCholSolver) Solve(data *Data, rhs *RHS, dir *Dir) error {
	n, p, q := s.n, s.p, s.q

	bz0 := make([]float64, q)
	for i, k := range data.Cones {
		r := data.ConeIdxs[i]
		d := r.End - r.Start
		tmp := make([]float64, d)
		k.InvHessProd(tmp, rhs.RS[r.Start:r.End])
		for a := 0; a < d; a++ {
			bz0[r.Start+a] = -rhs.RZ[r.Start+a] + tmp[a]/s.mu
		}
	}
	by := make([]float64, p)
	for i := 0; i < p; i++ {
		by[i] = -rhs.RY[i]
	}

	hblk := hessBlock(data)
	var hg mat.Dense
	hg.Mul(hblk, data.G)
	var m mat.Dense
	m.Mul(data.G.T(), &hg)
	m.Scale(s.mu, &m)

	x2, y2, z2 := s.solveReduced(data, &m, hblk, rhs.RX, by, bz0, false)

	num := rhs.RTau - rhs.RKappa + floats.Dot(colOf(data.C), x2)
	if p > 0 {
		num += floats.Dot(colOf(data.B), y2)
	}
	num += floats.Dot(colOf(data.H), z2)
	dtau := num / s.denom

	dir.Tau = dtau
	for i := 0; i < n; i++ {
		dir.X[i] = x2[i] + dtau*s.x1[i]
	}
	for i := 0; i < p; i++ {
		dir.Y[i] = y2[i] + dtau*s.y1[i]
	}
	for i := 0; i < q; i++ {
		dir.Z[i] = z2[i] + dtau*s.z1[i]
	}
	dir.Kappa = rhs.RKappa - (s.mu/(s.tau*s.tau))*dtau

	for i, k := range data.Cones {
		r := data.ConeIdxs[i]
		d := r.End - r.Start
		diff := make([]float64, d)
		for a := 0; a < d; a++ {
			diff[a] = rhs.RS[r.Start+a] - dir.Z[r.Start+a]
		}
		tmp := make([]float64, d)
		k.InvHessProd(tmp, diff)
		for a := 0; a < d; a++ {
			dir.S[r.Start+a] = tmp[a] / s.mu
		}
	}
	return nil
}
