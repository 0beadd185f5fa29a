// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

// Nonnegative is the nonnegative orthant R^d_+, with barrier
// F(s) = -Σ log(s_i), ν = d. It is self-dual, so UseDualBarrier is always
// false: the dual cone is itself, and a "dual" orientation would be
// identical to the primal one.
type Nonnegative struct {
	*Engine
	b *nonnegativeBarrier
}

type nonnegativeBarrier struct {
	dim int
}

// NewNonnegative returns the d-dimensional nonnegative orthant cone.
func NewNonnegative(dim int) *Nonnegative {
	b := &nonnegativeBarrier{dim: dim}
	return &Nonnegative{Engine: NewEngine(b), b: b}
}

func (b *nonnegativeBarrier) Dim() int     { return b.dim }
func (b *nonnegativeBarrier) Nu() float64  { return float64(b.dim) }

func (b *nonnegativeBarrier) InitialPoint(arr []float64) {
	for i := range arr {
		arr[i] = 1
	}
}

func (b *nonnegativeBarrier) Feasible(s []float64) bool {
	for _, v := range s {
		if v <= 0 {
			return false
		}
	}
	return true
}

func (b *nonnegativeBarrier) Grad(s, g []float64) {
	for i, v := range s {
		g[i] = -1 / v
	}
}

func (b *nonnegativeBarrier) HessProd(s, v, out []float64) {
	for i := range out {
		out[i] = v[i] / (s[i] * s[i])
	}
}

// Correction overrides Engine's generic finite-difference version with the
// closed form d_i^2 / s_i^3, written into Engine's reused correction buffer.
func (c *Nonnegative) Correction(dir []float64) []float64 {
	s := c.Engine.primal
	if c.Engine.corrOut == nil {
		c.Engine.corrOut = make([]float64, c.b.dim)
	}
	out := c.Engine.corrOut
	for i := range out {
		out[i] = dir[i] * dir[i] / (s[i] * s[i] * s[i])
	}
	return out
}
