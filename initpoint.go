// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coneprog

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/linalg"
)

// initialPoint builds the spec §4.6 starting point: each cone's own central
// anchor for s, z := -∇F(s) per cone, x as the minimum-norm solution of
// Ax=b, Gx=h-s, y as the least-squares solution of Aᵀy=-c-Gᵀz, and τ=κ=1.
// x is left at zero when n < p+q, and y when n < p.
// When opts.InitUseIterative is set, both least-squares solves run through
// conjugate gradient on the normal equations (linsolve.CG) instead of the
// pivoted-QR route, per spec §6's init_use_iterative option.
func initialPoint(m *Model, pp *preprocessed, opts *Options) (*Point, error) {
	n, p, q := m.Dims()
	pt := NewPoint(n, p, q)

	for i, k := range m.Cones {
		r := m.ConeIdxs[i]
		k.SetInitialPoint(pt.S[r.Start:r.End])
	}
	for i, k := range m.Cones {
		r := m.ConeIdxs[i]
		k.LoadPoint(pt.S[r.Start:r.End])
		k.ResetData()
		g := k.Grad()
		copy(pt.Z[r.Start:r.End], g)
	}

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
		rhs := make([]float64, p+q)
		if m.A != nil {
			copy(rhs[:p], colOf(m.B))
		}
		for j := 0; j < q; j++ {
			rhs[p+j] = m.H.AtVec(j) - pt.S[j]
		}

		var x []float64
		if opts.InitUseIterative {
			xi, err := minNormSolveIterative(agt, n, p+q, rhs)
			if err != nil {
				return nil, errors.Wrap(err, "initial point: iterative minimum-norm solve for x")
			}
			x = xi
		} else {
			var qr linalg.PivotedQR
			qr.Factorize(agt)
			x = minNormSolve(&qr, n, p+q, rhs)
		}
		copy(pt.X, x)
	}

	if p > 0 && n >= p {
		at := mat.NewDense(n, p, nil)
		for j := 0; j < p; j++ {
			for i := 0; i < n; i++ {
				at.Set(i, j, m.A.At(j, i))
			}
		}
		rhs := make([]float64, n)
		for i := 0; i < n; i++ {
			rhs[i] = -m.C.AtVec(i)
		}
		for j := 0; j < q; j++ {
			zj := pt.Z[j]
			if zj == 0 {
				continue
			}
			for i := 0; i < n; i++ {
				rhs[i] -= m.G.At(j, i) * zj
			}
		}

		var y []float64
		if opts.InitUseIterative {
			yi, err := leastSquaresSolveIterative(at, n, p, rhs)
			if err != nil {
				return nil, errors.Wrap(err, "initial point: iterative least-squares solve for y")
			}
			y = yi
		} else {
			var qrAT *linalg.PivotedQR
			if pp != nil && pp.qrAT != nil {
				qrAT = pp.qrAT
			} else {
				qrAT = &linalg.PivotedQR{}
				qrAT.Factorize(at)
			}
			y = leastSquaresSolve(qrAT, n, p, rhs)
		}
		copy(pt.Y, y)
	}

	pt.Tau = 1
	pt.Kappa = 1
	return pt, nil
}

func colOf(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
