// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

// EpiNormInf is the epigraph of the ℓ∞ norm, {(u, w) ∈ R^{1+d} : u ≥
// ‖w‖∞}, realized as the intersection of the 2d halfspaces u ≥ w_i and
// u ≥ -w_i and given the standard sum-of-halfspace-log barrier
// F(u,w) = -Σ_i log(u-w_i) - Σ_i log(u+w_i), ν = 2d. This is the textbook
// LHSCB for a polyhedral cone (ν equal to the number of defining
// halfspaces) rather than the tighter ν = d+1 some interior-point codes use
// via a more specialized construction; see DESIGN.md.
type EpiNormInf struct {
	*Engine
	b *epiNormInfBarrier
}

type epiNormInfBarrier struct {
	dim int // 1 + d
}

// NewEpiNormInf returns the cone of ambient dimension dim = 1+d.
func NewEpiNormInf(dim int) *EpiNormInf {
	if dim < 2 {
		panic("cone: epinorminf cone needs dimension >= 2")
	}
	b := &epiNormInfBarrier{dim: dim}
	return &EpiNormInf{Engine: NewEngine(b), b: b}
}

func (b *epiNormInfBarrier) Dim() int    { return b.dim }
func (b *epiNormInfBarrier) Nu() float64 { return float64(2 * (b.dim - 1)) }

func (b *epiNormInfBarrier) InitialPoint(arr []float64) {
	arr[0] = 1
	for i := 1; i < len(arr); i++ {
		arr[i] = 0
	}
}

func (b *epiNormInfBarrier) Feasible(s []float64) bool {
	u := s[0]
	if u <= 0 {
		return false
	}
	for i := 1; i < len(s); i++ {
		if u-s[i] <= 0 || u+s[i] <= 0 {
			return false
		}
	}
	return true
}

func (b *epiNormInfBarrier) Grad(s, g []float64) {
	u := s[0]
	var gu float64
	for i := 1; i < len(s); i++ {
		a := 1 / (u - s[i])
		bb := 1 / (u + s[i])
		gu -= a + bb
		g[i] = a - bb
	}
	g[0] = gu
}

// HessProd exploits the arrow structure of the Hessian of the barrier
// -Σ_i [log(u-w_i) + log(u+w_i)]: coupling between u and each w_i, but no coupling between distinct w_i, w_j.
func (b *epiNormInfBarrier) HessProd(s, v, out []float64) {
	u := s[0]
	n := len(s)
	var h00 float64
	var out0 float64
	out0 = 0
	for i := 1; i < n; i++ {
		a := 1 / (u - s[i])
		bb := 1 / (u + s[i])
		a2, b2 := a*a, bb*bb
		h00 += a2 + b2
		off := b2 - a2
		out0 += off * v[i]
		out[i] = off*v[0] + (a2+b2)*v[i]
	}
	out[0] = h00*v[0] + out0
}
