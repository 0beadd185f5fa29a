// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/linalg"
)

// HypoPerspectiveLogDet is the hypograph of the perspective of logdet,
// {(u,v,W) ∈ R × R_++ × S^d_+ : u ≤ v·logdet(W/v)}, W given in svec form,
// with barrier
//
//	F(u,v,W) = -log(v·logdet(W/v) - u) - logdet(W) - log(v),  ν = d+2.
type HypoPerspectiveLogDet struct {
	*Engine
	b *hypoPerspectiveLogDetBarrier
}

type hypoPerspectiveLogDetBarrier struct {
	d, n int
}

// NewHypoPerspectiveLogDet returns the cone over d×d matrices.
func NewHypoPerspectiveLogDet(d int) *HypoPerspectiveLogDet {
	b := &hypoPerspectiveLogDetBarrier{d: d, n: linalg.SvecDim(d)}
	return &HypoPerspectiveLogDet{Engine: NewEngine(b), b: b}
}

func (b *hypoPerspectiveLogDetBarrier) Dim() int    { return 2 + b.n }
func (b *hypoPerspectiveLogDetBarrier) Nu() float64 { return float64(b.d) + 2 }

func (b *hypoPerspectiveLogDetBarrier) InitialPoint(arr []float64) {
	arr[0] = -1
	arr[1] = 1
	I := mat.NewSymDense(b.d, nil)
	for i := 0; i < b.d; i++ {
		I.SetSym(i, i, 1)
	}
	linalg.Svec(arr[2:], I)
}

func (b *hypoPerspectiveLogDetBarrier) mat(w []float64) *mat.SymDense {
	W := mat.NewSymDense(b.d, nil)
	linalg.Smat(W, w)
	return W
}

func (b *hypoPerspectiveLogDetBarrier) cholLogDet(w []float64) (mat.Cholesky, float64, bool) {
	var chol mat.Cholesky
	W := b.mat(w)
	if !chol.Factorize(W) {
		return chol, 0, false
	}
	return chol, chol.LogDet(), true
}

func (b *hypoPerspectiveLogDetBarrier) Feasible(s []float64) bool {
	u, v, w := s[0], s[1], s[2:]
	if v <= 0 {
		return false
	}
	_, logdet, ok := b.cholLogDet(w)
	if !ok {
		return false
	}
	L := v * (logdet - float64(b.d)*math.Log(v))
	return L-u > 0
}

func (b *hypoPerspectiveLogDetBarrier) Grad(s, g []float64) {
	u, v, w := s[0], s[1], s[2:]
	if v <= 0 {
		for i := range g {
			g[i] = 0
		}
		return
	}
	chol, logdet, ok := b.cholLogDet(w)
	if !ok {
		for i := range g {
			g[i] = 0
		}
		return
	}
	L := v * (logdet - float64(b.d)*math.Log(v))
	gap := L - u
	if gap <= 0 {
		for i := range g {
			g[i] = 0
		}
		return
	}
	dLdv := logdet - float64(b.d)*math.Log(v) - float64(b.d)
	g[0] = 1 / gap
	g[1] = -dLdv/gap - 1/v

	var Winv mat.SymDense
	if err := chol.InverseTo(&Winv); err != nil {
		for i := 2; i < len(g); i++ {
			g[i] = 0
		}
		return
	}
	coef := v/gap + 1
	scaled := mat.NewSymDense(b.d, nil)
	for i := 0; i < b.d; i++ {
		for j := i; j < b.d; j++ {
			scaled.SetSym(i, j, -coef*Winv.At(i, j))
		}
	}
	linalg.Svec(g[2:], scaled)
}

func (b *hypoPerspectiveLogDetBarrier) HessProd(s, v, out []float64) {
	numericHessProdFromGrad(b.Grad, s, v, out)
}
