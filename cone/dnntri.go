// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/linalg"
)

// DoublyNonnegativeTriangle is the cone of d×d symmetric matrices that are
// both positive semidefinite and entrywise nonnegative, represented in
// svec form. Its barrier is the sum of the PSD logdet barrier and the
// entrywise nonnegative-orthant log barrier on the raw (unscaled) matrix
// entries, F(S) = -logdet(S) - Σ_{i≤j} log(S_ij), ν = d + d(d+1)/2 — the
// two constituent barriers' parameters add, since the cone is their
// intersection and each barrier is evaluated on the same variable.
type DoublyNonnegativeTriangle struct {
	*Engine
	b *dnnBarrier
}

type dnnBarrier struct {
	d, n int
}

// NewDoublyNonnegativeTriangle returns the DNN cone over d×d matrices.
func NewDoublyNonnegativeTriangle(d int) *DoublyNonnegativeTriangle {
	b := &dnnBarrier{d: d, n: linalg.SvecDim(d)}
	return &DoublyNonnegativeTriangle{Engine: NewEngine(b), b: b}
}

func (b *dnnBarrier) Dim() int    { return b.n }
func (b *dnnBarrier) Nu() float64 { return float64(b.d) + float64(b.n) }

// InitialPoint writes the matrix with unit diagonal and 1/2 in every
// off-diagonal entry: every entry is strictly positive, and its eigenvalues
// (1/2 and (d+1)/2) are positive.
func (b *dnnBarrier) InitialPoint(arr []float64) {
	I := mat.NewSymDense(b.d, nil)
	for i := 0; i < b.d; i++ {
		I.SetSym(i, i, 1)
		for j := i + 1; j < b.d; j++ {
			I.SetSym(i, j, 0.5)
		}
	}
	linalg.Svec(arr, I)
}

func (b *dnnBarrier) rawMat(s []float64) *mat.SymDense {
	S := mat.NewSymDense(b.d, nil)
	linalg.Smat(S, s)
	return S
}

// dnnIndexScale returns 1/√2 for an off-diagonal svec coordinate and 1 for a
// diagonal one, i.e. dS_ij/ds_k.
func dnnIndexScale(d int) []float64 {
	scale := make([]float64, linalg.SvecDim(d))
	idx := 0
	for j := 0; j < d; j++ {
		for i := j; i < d; i++ {
			if i == j {
				scale[idx] = 1
			} else {
				scale[idx] = 1 / rt2dnn
			}
			idx++
		}
	}
	return scale
}

const rt2dnn = 1.4142135623730951

func (b *dnnBarrier) Feasible(s []float64) bool {
	S := b.rawMat(s)
	var chol mat.Cholesky
	if !chol.Factorize(S) {
		return false
	}
	for i := 0; i < b.d; i++ {
		for j := i; j < b.d; j++ {
			if S.At(i, j) <= 0 {
				return false
			}
		}
	}
	return true
}

func (b *dnnBarrier) Grad(s, g []float64) {
	S := b.rawMat(s)
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

	scale := dnnIndexScale(b.d)
	idx := 0
	for j := 0; j < b.d; j++ {
		for i := j; i < b.d; i++ {
			g[idx] -= scale[idx] / S.At(i, j)
			idx++
		}
	}
}

func (b *dnnBarrier) HessProd(s, v, out []float64) {
	S := b.rawMat(s)
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

	scale := dnnIndexScale(b.d)
	idx := 0
	for j := 0; j < b.d; j++ {
		for i := j; i < b.d; i++ {
			out[idx] += scale[idx] * scale[idx] * v[idx] / (S.At(i, j) * S.At(i, j))
			idx++
		}
	}
}
