// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/linalg"
)

// EpiTraceRelEntropy is the matrix (quantum) relative entropy epigraph,
//
//	{(u,V,W) ∈ R × S^d_+ × S^d_+ : u ≥ trace(W·(logW - logV))},
//
// with barrier F(u,V,W) = -log(u - trace(W(logW-logV))) - logdet(V) -
// logdet(W), ν = 2d+1. Because V and W generally do not commute, logV and
// logW are separate matrix logarithms (each taken via its own
// eigendecomposition); unlike the other cones here this one evaluates the
// barrier value directly and differentiates it numerically (see
// numeric.go) rather than hand-deriving the derivative of the
// noncommutative trace term.
type EpiTraceRelEntropy struct {
	*Engine
	b *epiTraceRelEntropyBarrier
}

type epiTraceRelEntropyBarrier struct {
	d, n int
}

// NewEpiTraceRelEntropy returns the cone over d×d matrices.
func NewEpiTraceRelEntropy(d int) *EpiTraceRelEntropy {
	b := &epiTraceRelEntropyBarrier{d: d, n: linalg.SvecDim(d)}
	return &EpiTraceRelEntropy{Engine: NewEngine(b), b: b}
}

func (b *epiTraceRelEntropyBarrier) Dim() int    { return 1 + 2*b.n }
func (b *epiTraceRelEntropyBarrier) Nu() float64 { return float64(2*b.d) + 1 }

func (b *epiTraceRelEntropyBarrier) InitialPoint(arr []float64) {
	arr[0] = 1
	I := mat.NewSymDense(b.d, nil)
	for i := 0; i < b.d; i++ {
		I.SetSym(i, i, 1)
	}
	linalg.Svec(arr[1:1+b.n], I)
	linalg.Svec(arr[1+b.n:], I)
}

func (b *epiTraceRelEntropyBarrier) split(s []float64) (u float64, V, W []float64) {
	return s[0], s[1 : 1+b.n], s[1+b.n:]
}

func (b *epiTraceRelEntropyBarrier) symOf(v []float64) *mat.SymDense {
	S := mat.NewSymDense(b.d, nil)
	linalg.Smat(S, v)
	return S
}

// traceWLogW returns Σ λ_i log λ_i for W = QΛQᵀ, or ok=false if W is not
// SPD.
func (b *epiTraceRelEntropyBarrier) traceWLogW(w []float64) (float64, bool) {
	var eigen mat.EigenSym
	if !eigen.Factorize(b.symOf(w), false) {
		return 0, false
	}
	var s float64
	for _, lam := range eigen.Values(nil) {
		if lam <= 0 {
			return 0, false
		}
		s += lam * math.Log(lam)
	}
	return s, true
}

// traceWLogV returns trace(W·logV) via V's eigendecomposition V = RMRᵀ:
// trace(W R log(M) Rᵀ) = Σ_i log(μ_i)·(r_iᵀ W r_i).
func (b *epiTraceRelEntropyBarrier) traceWLogV(v, w []float64) (float64, bool) {
	var eigen mat.EigenSym
	if !eigen.Factorize(b.symOf(v), true) {
		return 0, false
	}
	mus := eigen.Values(nil)
	var R mat.Dense
	eigen.VectorsTo(&R)
	W := b.symOf(w)
	var s float64
	for i, mu := range mus {
		if mu <= 0 {
			return 0, false
		}
		col := R.ColView(i)
		var Wc mat.VecDense
		Wc.MulVec(W, col)
		s += math.Log(mu) * mat.Dot(col, &Wc)
	}
	return s, true
}

func (b *epiTraceRelEntropyBarrier) gap(s []float64) (float64, bool) {
	u, V, W := b.split(s)
	twlw, ok := b.traceWLogW(W)
	if !ok {
		return 0, false
	}
	twlv, ok := b.traceWLogV(V, W)
	if !ok {
		return 0, false
	}
	return u - (twlw - twlv), true
}

func (b *epiTraceRelEntropyBarrier) Feasible(s []float64) bool {
	_, V, _ := b.split(s)
	var cholV mat.Cholesky
	if !cholV.Factorize(b.symOf(V)) {
		return false
	}
	g, ok := b.gap(s)
	return ok && g > 0
}

func (b *epiTraceRelEntropyBarrier) value(s []float64) float64 {
	_, V, W := b.split(s)
	g, ok := b.gap(s)
	if !ok || g <= 0 {
		return math.Inf(1)
	}
	var cholV, cholW mat.Cholesky
	if !cholV.Factorize(b.symOf(V)) || !cholW.Factorize(b.symOf(W)) {
		return math.Inf(1)
	}
	return -math.Log(g) - cholV.LogDet() - cholW.LogDet()
}

func (b *epiTraceRelEntropyBarrier) Grad(s, g []float64) {
	numericGradFromValue(b.value, s, g)
}

func (b *epiTraceRelEntropyBarrier) HessProd(s, v, out []float64) {
	numericHessProdFromValue(b.value, s, v, out)
}
