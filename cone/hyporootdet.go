// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/linalg"
)

// HypoRootDet is the hypograph of the d-th root of the determinant,
// {(u,W) ∈ R × S^d_+ : u ≤ det(W)^{1/d}}, W given in svec form, with
// barrier
//
//	F(u,W) = -log(det(W)^{1/d} - u) - logdet(W),  ν = d+1.
type HypoRootDet struct {
	*Engine
	b *hypoRootDetBarrier
}

type hypoRootDetBarrier struct {
	d, n int
}

// NewHypoRootDet returns the hypo-root-det cone over d×d matrices.
func NewHypoRootDet(d int) *HypoRootDet {
	b := &hypoRootDetBarrier{d: d, n: linalg.SvecDim(d)}
	return &HypoRootDet{Engine: NewEngine(b), b: b}
}

func (b *hypoRootDetBarrier) Dim() int    { return 1 + b.n }
func (b *hypoRootDetBarrier) Nu() float64 { return float64(b.d) + 1 }

func (b *hypoRootDetBarrier) InitialPoint(arr []float64) {
	arr[0] = -1
	I := mat.NewSymDense(b.d, nil)
	for i := 0; i < b.d; i++ {
		I.SetSym(i, i, 1)
	}
	linalg.Svec(arr[1:], I)
}

func (b *hypoRootDetBarrier) mat(w []float64) *mat.SymDense {
	W := mat.NewSymDense(b.d, nil)
	linalg.Smat(W, w)
	return W
}

// cholDet returns the Cholesky factorization and det(W), ok=false if not
// SPD.
func (b *hypoRootDetBarrier) cholDet(w []float64) (mat.Cholesky, float64, bool) {
	var chol mat.Cholesky
	W := b.mat(w)
	if !chol.Factorize(W) {
		return chol, 0, false
	}
	return chol, chol.Det(), true
}

func (b *hypoRootDetBarrier) Feasible(s []float64) bool {
	u, w := s[0], s[1:]
	_, det, ok := b.cholDet(w)
	if !ok || det <= 0 {
		return false
	}
	f := math.Pow(det, 1/float64(b.d))
	return f-u > 0
}

func (b *hypoRootDetBarrier) Grad(s, g []float64) {
	u, w := s[0], s[1:]
	chol, det, ok := b.cholDet(w)
	if !ok || det <= 0 {
		for i := range g {
			g[i] = 0
		}
		return
	}
	f := math.Pow(det, 1/float64(b.d))
	gap := f - u
	if gap <= 0 {
		for i := range g {
			g[i] = 0
		}
		return
	}
	g[0] = 1 / gap

	var Winv mat.SymDense
	if err := chol.InverseTo(&Winv); err != nil {
		for i := 1; i < len(g); i++ {
			g[i] = 0
		}
		return
	}
	coef := f/(float64(b.d)*gap) + 1
	scaled := mat.NewSymDense(b.d, nil)
	for i := 0; i < b.d; i++ {
		for j := i; j < b.d; j++ {
			scaled.SetSym(i, j, -coef*Winv.At(i, j))
		}
	}
	linalg.Svec(g[1:], scaled)
}

func (b *hypoRootDetBarrier) HessProd(s, v, out []float64) {
	numericHessProdFromGrad(b.Grad, s, v, out)
}
