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

// ErrFactorization wraps a factorization failure with the kind of matrix
// that failed, following the ambient error-handling convention of
// wrapping numerical failures with github.com/pkg/errors.
var ErrFactorization = errors.New("kktsolver: system factorization failed")

// NaiveSolver assembles the full symmetric indefinite core system
//
//	[  0    Aᵀ    Gᵀ           ]
//	[  A    0     0            ]
//	[  G    0   -(1/μ)·H⁻¹     ]
//
// (size n+p+q, H⁻¹ block-diagonal over cones' InvHess) via a sparse
// triplet assembly and factors it with lapack64.Sytrf (dense
// Bunch-Kaufman, standing in for the sparse LDLᵀ or LU of spec §4.3 — see
// DESIGN.md). The τ/κ/s eliminations are folded in via the standard
// two-solve bordering technique: UpdateLHS additionally solves the core
// system once against the fixed (-c, b, h) columns and caches the result,
// so each Solve call only needs one more factorized solve plus scalar
// algebra to recover dτ, dκ, ds.
type NaiveSolver struct {
	n, p, q int
	mu      float64
	tau     float64
	kappa   float64

	fact linalg.SymIndefinite

	// x1, y1, z1 solve the core system against (-c, b, h); independent of
	// the round's RHS, so it is computed once per UpdateLHS call.
	x1, y1, z1 []float64
	// denom is the cached scalar -cᵀx1-bᵀy1-hᵀz1-μ/τ² used to recover dτ.
	denom float64
}

func (s *NaiveSolver) assembleCore(data *Data) (*mat.SymDense, error) {
	n, p, q := data.Dims()
	t := linalg.NewTriplet(n+p+q, n+p+q)
	if data.A != nil {
		t.PutBlock(n, 0, data.A)
	}
	t.PutBlock(n+p, 0, data.G)
	for i, k := range data.Cones {
		ih := k.InvHess()
		r := data.ConeIdxs[i]
		d := r.End - r.Start
		scale := -1 / s.mu
		for a := 0; a < d; a++ {
			for b := 0; b <= a; b++ {
				t.Put(n+p+r.Start+a, n+p+r.Start+b, scale*ih.At(a, b))
			}
		}
	}
	return t.ToSymDense(), nil
}

// UpdateLHS factors the core system and pre-solves the fixed (-c,b,h)
// column, per spec §4.3 ("update_lhs called once per iteration ...
// reused for the centering RHS, the prediction RHS, and each correction
// RHS").
func (s *NaiveSolver) UpdateLHS(data *Data, mu, tau, kappa float64) error {
	n, p, q := data.Dims()
	s.n, s.p, s.q = n, p, q
	s.mu, s.tau, s.kappa = mu, tau, kappa

	core, err := s.assembleCore(data)
	if err != nil {
		return err
	}
	if err := s.fact.Factorize(core); err != nil {
		return errors.Wrap(ErrFactorization, "core KKT matrix (naive solver)")
	}

	rhs := mat.NewDense(n+p+q, 1, nil)
	for i := 0; i < n; i++ {
		rhs.Set(i, 0, -data.C.AtVec(i))
	}
	for i := 0; i < p; i++ {
		rhs.Set(n+i, 0, data.B.AtVec(i))
	}
	for i := 0; i < q; i++ {
		rhs.Set(n+p+i, 0, data.H.AtVec(i))
	}
	if err := s.fact.Solve(rhs); err != nil {
		return errors.Wrap(ErrFactorization, "core KKT solve (fixed column)")
	}
	s.x1 = make([]float64, n)
	s.y1 = make([]float64, p)
	s.z1 = make([]float64, q)
	for i := 0; i < n; i++ {
		s.x1[i] = rhs.At(i, 0)
	}
	for i := 0; i < p; i++ {
		s.y1[i] = rhs.At(n+i, 0)
	}
	for i := 0; i < q; i++ {
		s.z1[i] = rhs.At(n+p+i, 0)
	}

	s.denom = -floats.Dot(colOf(data.C), s.x1)
	if p > 0 {
		s.denom -= floats.Dot(colOf(data.B), s.y1)
	}
	s.denom -= floats.Dot(colOf(data.H), s.z1)
	s.denom -= mu / (tau * tau)
	return nil
}

func colOf(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

// Solve implements System.
func (s *NaiveSolver) Solve(data *Data, rhs *RHS, dir *Dir) error {
	n, p, q := s.n, s.p, s.q

	// Fold the per-cone s-elimination into the z row of the round RHS:
	// bz0 = -r_z + (1/μ)·invHess(r_s).
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

	rhs2 := mat.NewDense(n+p+q, 1, nil)
	for i := 0; i < n; i++ {
		rhs2.Set(i, 0, rhs.RX[i])
	}
	for i := 0; i < p; i++ {
		rhs2.Set(n+i, 0, -rhs.RY[i])
	}
	for i := 0; i < q; i++ {
		rhs2.Set(n+p+i, 0, bz0[i])
	}
	if err := s.fact.Solve(rhs2); err != nil {
		return errors.Wrap(ErrFactorization, "core KKT solve (round RHS)")
	}
	x2 := make([]float64, n)
	y2 := make([]float64, p)
	z2 := make([]float64, q)
	for i := 0; i < n; i++ {
		x2[i] = rhs2.At(i, 0)
	}
	for i := 0; i < p; i++ {
		y2[i] = rhs2.At(n+i, 0)
	}
	for i := 0; i < q; i++ {
		z2[i] = rhs2.At(n+p+i, 0)
	}

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

	// ds = invHess(r_s - dz)/μ, per cone.
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
