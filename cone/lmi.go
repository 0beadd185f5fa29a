// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import "gonum.org/v1/gonum/mat"

// LMI is the linear matrix inequality cone {s ∈ R^m : Σ_i s_i·A_i ⪰ 0} for
// a fixed family of d×d symmetric matrices A_1..A_m supplied at
// construction, with barrier F(s) = -logdet(Σ_i s_i A_i), ν = d. When the
// A_i are the standard basis of svec coordinates this reduces to
// PSDTriangle; LMI is kept separate because callers of this cone supply an
// arbitrary (not necessarily svec) linear pencil.
type LMI struct {
	*Engine
	b *lmiBarrier
}

type lmiBarrier struct {
	d     int
	basis []*mat.SymDense // len m, each d×d
}

// NewLMI returns the LMI cone for the pencil Σ s_i·basis[i].
func NewLMI(basis []*mat.SymDense) *LMI {
	if len(basis) == 0 {
		panic("cone: LMI requires at least one basis matrix")
	}
	d := basis[0].SymmetricDim()
	b := &lmiBarrier{d: d, basis: basis}
	return &LMI{Engine: NewEngine(b), b: b}
}

func (b *lmiBarrier) Dim() int    { return len(b.basis) }
func (b *lmiBarrier) Nu() float64 { return float64(b.d) }

func (b *lmiBarrier) InitialPoint(arr []float64) {
	// Least squares fit of the identity by the pencil basis: a robust,
	// generic central anchor that does not assume any special structure
	// of the basis (unlike PSDTriangle's, which can just use svec(I)).
	target := mat.NewSymDense(b.d, nil)
	for i := 0; i < b.d; i++ {
		target.SetSym(i, i, 1)
	}
	m := len(b.basis)
	n2 := b.d * b.d
	A := mat.NewDense(n2, m, nil)
	y := mat.NewVecDense(n2, nil)
	for k, Ak := range b.basis {
		for i := 0; i < b.d; i++ {
			for j := 0; j < b.d; j++ {
				A.Set(i*b.d+j, k, Ak.At(i, j))
			}
		}
	}
	for i := 0; i < b.d; i++ {
		for j := 0; j < b.d; j++ {
			y.SetVec(i*b.d+j, target.At(i, j))
		}
	}
	var qr mat.QR
	qr.Factorize(A)
	x := mat.NewVecDense(m, nil)
	qr.SolveVecTo(x, false, y)
	copy(arr, x.RawVector().Data)
	// Make sure the anchor is strictly feasible; if not, try the
	// least-squares solution scaled by increasing powers of ten.
	if !b.Feasible(arr) {
		for i := range arr {
			arr[i] *= 0
		}
		// fall back: scale the whole least-squares solution by 1, 10,
		// ..., 1e5 and stop at the first strictly feasible multiple.
		for i := range arr {
			arr[i] = x.AtVec(i)
		}
		for t := 1.0; t < 1e6 && !b.Feasible(arr); t *= 10 {
			for i := range arr {
				arr[i] = x.AtVec(i) * t
			}
		}
	}
}

func (b *lmiBarrier) pencil(s []float64) *mat.SymDense {
	P := mat.NewSymDense(b.d, nil)
	for k, Ak := range b.basis {
		for i := 0; i < b.d; i++ {
			for j := i; j < b.d; j++ {
				P.SetSym(i, j, P.At(i, j)+s[k]*Ak.At(i, j))
			}
		}
	}
	return P
}

func (b *lmiBarrier) Feasible(s []float64) bool {
	var chol mat.Cholesky
	return chol.Factorize(b.pencil(s))
}

func (b *lmiBarrier) Grad(s, g []float64) {
	P := b.pencil(s)
	var chol mat.Cholesky
	if !chol.Factorize(P) {
		for i := range g {
			g[i] = 0
		}
		return
	}
	var Pinv mat.SymDense
	if err := chol.InverseTo(&Pinv); err != nil {
		for i := range g {
			g[i] = 0
		}
		return
	}
	for k, Ak := range b.basis {
		g[k] = -traceProd(&Pinv, Ak)
	}
}

func (b *lmiBarrier) HessProd(s, v, out []float64) {
	P := b.pencil(s)
	var chol mat.Cholesky
	if !chol.Factorize(P) {
		for i := range out {
			out[i] = 0
		}
		return
	}
	var Pinv mat.SymDense
	if err := chol.InverseTo(&Pinv); err != nil {
		for i := range out {
			out[i] = 0
		}
		return
	}
	V := mat.NewSymDense(b.d, nil)
	for k, Ak := range b.basis {
		for i := 0; i < b.d; i++ {
			for j := i; j < b.d; j++ {
				V.SetSym(i, j, V.At(i, j)+v[k]*Ak.At(i, j))
			}
		}
	}
	var tmp, mid mat.Dense
	tmp.Mul(&Pinv, V)
	mid.Mul(&tmp, &Pinv)
	for k, Ak := range b.basis {
		out[k] = traceProdDense(&mid, Ak)
	}
}

func traceProd(A *mat.SymDense, B *mat.SymDense) float64 {
	d := A.SymmetricDim()
	var s float64
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			s += A.At(i, j) * B.At(j, i)
		}
	}
	return s
}

func traceProdDense(A *mat.Dense, B *mat.SymDense) float64 {
	d := B.SymmetricDim()
	var s float64
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			s += A.At(i, j) * B.At(j, i)
		}
	}
	return s
}
