// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import "math"

// HypoPowerMean is the hypograph of a weighted power mean,
// {(u,w) ∈ R × R^d_++ : u ≤ Π_i w_i^λ_i}, for fixed weights λ ∈ R^d_++
// summing to 1, with barrier
//
//	F(u,w) = -log(Π_i w_i^λ_i - u) - Σ_i log(w_i),  ν = d+1.
//
// Unlike GenPower's epigraph, a hypograph barrier has no upper bound on
// how negative u may go — only the right-hand boundary u = f(w) matters,
// which is exactly what the single log(f(w)-u) term enforces.
type HypoPowerMean struct {
	*Engine
	b *hypoPowerMeanBarrier
}

type hypoPowerMeanBarrier struct {
	lambda []float64
	d      int
}

// NewHypoPowerMean returns the hypograph-of-power-mean cone with exponents
// lambda (length d, summing to 1).
func NewHypoPowerMean(lambda []float64) *HypoPowerMean {
	if len(lambda) == 0 {
		panic("cone: hypopowermean requires at least one exponent")
	}
	lam := append([]float64(nil), lambda...)
	b := &hypoPowerMeanBarrier{lambda: lam, d: len(lam)}
	return &HypoPowerMean{Engine: NewEngine(b), b: b}
}

func (b *hypoPowerMeanBarrier) Dim() int    { return 1 + b.d }
func (b *hypoPowerMeanBarrier) Nu() float64 { return float64(b.d) + 1 }

func (b *hypoPowerMeanBarrier) InitialPoint(arr []float64) {
	arr[0] = 0
	for i := 1; i < len(arr); i++ {
		arr[i] = 1
	}
}

func (b *hypoPowerMeanBarrier) f(w []float64) float64 {
	p := 1.0
	for i, li := range b.lambda {
		p *= math.Pow(w[i], li)
	}
	return p
}

func (b *hypoPowerMeanBarrier) Feasible(s []float64) bool {
	u, w := s[0], s[1:]
	for _, wi := range w {
		if wi <= 0 {
			return false
		}
	}
	return b.f(w)-u > 0
}

func (b *hypoPowerMeanBarrier) Grad(s, g []float64) {
	u, w := s[0], s[1:]
	fval := b.f(w)
	gap := fval - u
	if gap <= 0 {
		for i := range g {
			g[i] = 0
		}
		return
	}
	g[0] = 1 / gap
	for i, li := range b.lambda {
		g[1+i] = -(li * fval) / (gap * w[i]) - 1/w[i]
	}
}

func (b *hypoPowerMeanBarrier) HessProd(s, v, out []float64) {
	numericHessProdFromGrad(b.Grad, s, v, out)
}
