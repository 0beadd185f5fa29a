// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import "math"

// GenPower is the generalized power cone {(u,w) ∈ R^r_++ × R^m :
// Π_i u_i^λ_i ≥ ‖w‖_2}, for fixed weights λ ∈ R^r_++ with Σλ_i = 1,
// dimension r+m, with barrier
//
//	F(u,w) = -log(Π_i u_i^{2λ_i} - ‖w‖²) - Σ_i (1-λ_i)·log(u_i),  ν = r+1.
//
// Its gradient is derived in closed form below; the Hessian-vector product
// is obtained by central-differencing that gradient (see numeric.go)
// rather than by hand-deriving the full r+m square closed form.
type GenPower struct {
	*Engine
	b *genPowerBarrier
}

type genPowerBarrier struct {
	lambda []float64 // length r, sums to 1
	r, m   int
}

// NewGenPower returns the generalized power cone with exponents lambda
// (length r, summing to 1) over an m-dimensional Euclidean part.
func NewGenPower(lambda []float64, m int) *GenPower {
	if len(lambda) == 0 || m < 1 {
		panic("cone: genpower requires at least one exponent and m>=1")
	}
	lam := append([]float64(nil), lambda...)
	b := &genPowerBarrier{lambda: lam, r: len(lam), m: m}
	return &GenPower{Engine: NewEngine(b), b: b}
}

func (b *genPowerBarrier) Dim() int    { return b.r + b.m }
func (b *genPowerBarrier) Nu() float64 { return float64(b.r) + 1 }

func (b *genPowerBarrier) InitialPoint(arr []float64) {
	for i := 0; i < b.r; i++ {
		arr[i] = 1
	}
	for i := b.r; i < b.r+b.m; i++ {
		arr[i] = 0
	}
}

func (b *genPowerBarrier) phi(u []float64) float64 {
	p := 1.0
	for i, li := range b.lambda {
		p *= math.Pow(u[i], 2*li)
	}
	return p
}

func (b *genPowerBarrier) normWSq(w []float64) float64 {
	var s float64
	for _, wi := range w {
		s += wi * wi
	}
	return s
}

func (b *genPowerBarrier) Feasible(s []float64) bool {
	u, w := s[:b.r], s[b.r:]
	for _, ui := range u {
		if ui <= 0 {
			return false
		}
	}
	return b.phi(u)-b.normWSq(w) > 0
}

func (b *genPowerBarrier) Grad(s, g []float64) {
	u, w := s[:b.r], s[b.r:]
	phi := b.phi(u)
	gval := phi - b.normWSq(w)
	if gval <= 0 {
		for i := range g {
			g[i] = 0
		}
		return
	}
	for i, li := range b.lambda {
		g[i] = -(2 * li * phi) / (gval * u[i]) - (1 - li) / u[i]
	}
	for j, wj := range w {
		g[b.r+j] = 2 * wj / gval
	}
}

func (b *genPowerBarrier) HessProd(s, v, out []float64) {
	numericHessProdFromGrad(b.Grad, s, v, out)
}
