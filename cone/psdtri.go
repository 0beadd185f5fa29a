// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/linalg"
)

// PSDTriangle is the cone of d×d symmetric positive semidefinite matrices,
// represented in svec form (dimension d(d+1)/2), with barrier
// F(S) = -logdet(S), ν = d. Self-dual.
type PSDTriangle struct {
	*Engine
	b *psdBarrier
}

type psdBarrier struct {
	d, n int
}

// NewPSDTriangle returns the PSD cone over d×d symmetric matrices.
func NewPSDTriangle(d int) *PSDTriangle {
	b := &psdBarrier{d: d, n: linalg.SvecDim(d)}
	return &PSDTriangle{Engine: NewEngine(b), b: b}
}

func (b *psdBarrier) Dim() int    { return b.n }
func (b *psdBarrier) Nu() float64 { return float64(b.d) }

func (b *psdBarrier) InitialPoint(arr []float64) {
	I := mat.NewSymDense(b.d, nil)
	for i := 0; i < b.d; i++ {
		I.SetSym(i, i, 1)
	}
	linalg.Svec(arr, I)
}

func (b *psdBarrier) mat(s []float64) *mat.SymDense {
	S := mat.NewSymDense(b.d, nil)
	linalg.Smat(S, s)
	return S
}

func (b *psdBarrier) Feasible(s []float64) bool {
	S := b.mat(s)
	var chol mat.Cholesky
	return chol.Factorize(S)
}

func (b *psdBarrier) Grad(s, g []float64) {
	S := b.mat(s)
	var chol mat.Cholesky
	if !chol.Factorize(S) {
		for i := range g {
			g[i] = 0
		}
		return
	}
	var Sinv mat.SymDense
	if err := chol.InverseTo(&Sinv); err != nil {
		for i := range g {
			g[i] = 0
		}
		return
	}
	neg := mat.NewSymDense(b.d, nil)
	for i := 0; i < b.d; i++ {
		for j := i; j < b.d; j++ {
			neg.SetSym(i, j, -Sinv.At(i, j))
		}
	}
	linalg.Svec(g, neg)
}

// HessProd applies ∇²F(S)[V] = S⁻¹ V S⁻¹ in svec coordinates.
func (b *psdBarrier) HessProd(s, v, out []float64) {
	S := b.mat(s)
	var chol mat.Cholesky
	if !chol.Factorize(S) {
		for i := range out {
			out[i] = 0
		}
		return
	}
	var Sinv mat.SymDense
	if err := chol.InverseTo(&Sinv); err != nil {
		for i := range out {
			out[i] = 0
		}
		return
	}
	V := mat.NewSymDense(b.d, nil)
	linalg.Smat(V, v)

	var tmp, res mat.Dense
	tmp.Mul(&Sinv, V)
	res.Mul(&tmp, &Sinv)

	resSym := mat.NewSymDense(b.d, nil)
	for i := 0; i < b.d; i++ {
		for j := i; j < b.d; j++ {
			resSym.SetSym(i, j, 0.5*(res.At(i, j)+res.At(j, i)))
		}
	}
	linalg.Svec(out, resSym)
}
