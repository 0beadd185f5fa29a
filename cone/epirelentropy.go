// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import "math"

// EpiRelEntropy is the vector relative entropy epigraph,
//
//	{(u,v,w) ∈ R × R^d_++ × R^d_++ : u ≥ Σ_i w_i·log(w_i/v_i)},
//
// with barrier F(u,v,w) = -log(u - Σ_i w_i·log(w_i/v_i)) - Σ_i log(v_i) -
// Σ_i log(w_i), ν = 2d+1. Unlike EpiSepSpectral, each w_i is measured
// against its own v_i rather than a single shared scale.
type EpiRelEntropy struct {
	*Engine
	b *epiRelEntropyBarrier
}

type epiRelEntropyBarrier struct {
	d int
}

// NewEpiRelEntropy returns the cone of ambient dimension 1+2d.
func NewEpiRelEntropy(d int) *EpiRelEntropy {
	if d < 1 {
		panic("cone: epirelentropy requires d>=1")
	}
	b := &epiRelEntropyBarrier{d: d}
	return &EpiRelEntropy{Engine: NewEngine(b), b: b}
}

func (b *epiRelEntropyBarrier) Dim() int    { return 1 + 2*b.d }
func (b *epiRelEntropyBarrier) Nu() float64 { return float64(2*b.d) + 1 }

func (b *epiRelEntropyBarrier) InitialPoint(arr []float64) {
	arr[0] = 1
	for i := 1; i < len(arr); i++ {
		arr[i] = 1
	}
}

func (b *epiRelEntropyBarrier) split(s []float64) (u float64, v, w []float64) {
	return s[0], s[1 : 1+b.d], s[1+b.d:]
}

func (b *epiRelEntropyBarrier) entropySum(v, w []float64) float64 {
	var s float64
	for i := range w {
		s += w[i] * math.Log(w[i]/v[i])
	}
	return s
}

func (b *epiRelEntropyBarrier) Feasible(s []float64) bool {
	u, v, w := b.split(s)
	for i := range v {
		if v[i] <= 0 || w[i] <= 0 {
			return false
		}
	}
	return u-b.entropySum(v, w) > 0
}

func (b *epiRelEntropyBarrier) Grad(s, g []float64) {
	u, v, w := b.split(s)
	for i := range v {
		if v[i] <= 0 || w[i] <= 0 {
			for k := range g {
				g[k] = 0
			}
			return
		}
	}
	gap := u - b.entropySum(v, w)
	if gap <= 0 {
		for k := range g {
			g[k] = 0
		}
		return
	}
	g[0] = -1 / gap
	for i := range v {
		g[1+i] = -w[i]/(v[i]*gap) - 1/v[i]
		g[1+b.d+i] = (math.Log(w[i]/v[i])+1)/gap - 1/w[i]
	}
}

func (b *epiRelEntropyBarrier) HessProd(s, v, out []float64) {
	numericHessProdFromGrad(b.Grad, s, v, out)
}
