// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import "math"

// EpiSepSpectral is the epigraph of a separable vector spectral function
// under the entropy kernel h(t) = t·log t,
//
//	{(u,v,w) ∈ R × R_++ × R^d_++ : u ≥ v·Σ_i h(w_i/v)},
//
// with barrier F(u,v,w) = -log(u - Σ_i w_i·log(w_i/v)) - log(v) - Σ_i
// log(w_i), ν = d+2. "Separable spectral" refers to the general pattern
// of applying a scalar convex kernel entrywise to a vector (here) or to
// the eigenvalues of a matrix (see EpiSepSpectralMat); the entropy kernel
// is the instance wired here.
type EpiSepSpectral struct {
	*Engine
	b *epiSepSpectralBarrier
}

type epiSepSpectralBarrier struct {
	d int
}

// NewEpiSepSpectral returns the d-dimensional separable-spectral epigraph
// cone under the entropy kernel.
func NewEpiSepSpectral(d int) *EpiSepSpectral {
	if d < 1 {
		panic("cone: episepspectral requires d>=1")
	}
	b := &epiSepSpectralBarrier{d: d}
	return &EpiSepSpectral{Engine: NewEngine(b), b: b}
}

func (b *epiSepSpectralBarrier) Dim() int    { return 2 + b.d }
func (b *epiSepSpectralBarrier) Nu() float64 { return float64(b.d) + 2 }

func (b *epiSepSpectralBarrier) InitialPoint(arr []float64) {
	arr[0] = 1
	arr[1] = 1
	for i := 2; i < len(arr); i++ {
		arr[i] = 1
	}
}

func (b *epiSepSpectralBarrier) entropySum(v float64, w []float64) float64 {
	var s float64
	for _, wi := range w {
		s += wi * math.Log(wi/v)
	}
	return s
}

func (b *epiSepSpectralBarrier) Feasible(s []float64) bool {
	u, v, w := s[0], s[1], s[2:]
	if v <= 0 {
		return false
	}
	for _, wi := range w {
		if wi <= 0 {
			return false
		}
	}
	return u-b.entropySum(v, w) > 0
}

func (b *epiSepSpectralBarrier) Grad(s, g []float64) {
	u, v, w := s[0], s[1], s[2:]
	if v <= 0 {
		for i := range g {
			g[i] = 0
		}
		return
	}
	S := b.entropySum(v, w)
	gap := u - S
	if gap <= 0 {
		for i := range g {
			g[i] = 0
		}
		return
	}
	var sumW float64
	for _, wi := range w {
		sumW += wi
	}
	g[0] = -1 / gap
	g[1] = -sumW/(v*gap) - 1/v
	for i, wi := range w {
		g[2+i] = (math.Log(wi/v)+1)/gap - 1/wi
	}
}

func (b *epiSepSpectralBarrier) HessProd(s, v, out []float64) {
	numericHessProdFromGrad(b.Grad, s, v, out)
}
