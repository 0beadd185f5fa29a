// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

// SecondOrder is the second-order (Lorentz/"ice cream") cone
// {s = (s0, s̄) : s0 ≥ ‖s̄‖₂}, with barrier F(s) = -log(s0² - ‖s̄‖²), ν = 2.
// It is self-dual.
//
// The same barrier, under a different modeling name, is the epigraph of
// the Euclidean norm {(u, w) : u ≥ ‖w‖₂} — see NewEpiNormEucl.
type SecondOrder struct {
	*Engine
	b *socBarrier
}

type socBarrier struct {
	dim int
}

// NewSecondOrder returns the dim-dimensional second-order cone.
func NewSecondOrder(dim int) *SecondOrder {
	if dim < 2 {
		panic("cone: second-order cone needs dimension >= 2")
	}
	b := &socBarrier{dim: dim}
	return &SecondOrder{Engine: NewEngine(b), b: b}
}

// NewEpiNormEucl returns the epigraph-of-Euclidean-norm cone of ambient
// dimension dim (= 1 + len(w)): identical barrier to SecondOrder, exposed
// under the modeling name the wire adapter uses for ‖·‖₂ epigraphs.
func NewEpiNormEucl(dim int) *SecondOrder { return NewSecondOrder(dim) }

func (b *socBarrier) Dim() int    { return b.dim }
func (b *socBarrier) Nu() float64 { return 2 }

func (b *socBarrier) InitialPoint(arr []float64) {
	arr[0] = 1
	for i := 1; i < len(arr); i++ {
		arr[i] = 0
	}
}

func (b *socBarrier) w(s []float64) float64 {
	w := s[0] * s[0]
	for i := 1; i < len(s); i++ {
		w -= s[i] * s[i]
	}
	return w
}

func (b *socBarrier) Feasible(s []float64) bool {
	if s[0] <= 0 {
		return false
	}
	return b.w(s) > 0
}

func (b *socBarrier) Grad(s, g []float64) {
	w := b.w(s)
	g[0] = -2 * s[0] / w
	for i := 1; i < len(s); i++ {
		g[i] = 2 * s[i] / w
	}
}

// HessProd applies ∇²F(s) = -(2/w)·J + (4/w²)·(Js)(Js)ᵀ, where J =
// diag(1,-1,...,-1) and w = s0² - ‖s̄‖², the Hessian of the second-order
// cone's log barrier F(s) = -log(w).
func (b *socBarrier) HessProd(s, v, out []float64) {
	n := len(s)
	w := b.w(s)
	js := make([]float64, n)
	js[0] = s[0]
	for i := 1; i < n; i++ {
		js[i] = -s[i]
	}
	var a float64
	for i := 0; i < n; i++ {
		a += js[i] * v[i]
	}
	jv := make([]float64, n)
	jv[0] = v[0]
	for i := 1; i < n; i++ {
		jv[i] = -v[i]
	}
	c1 := -2 / w
	c2 := 4 * a / (w * w)
	for i := 0; i < n; i++ {
		out[i] = c1*jv[i] + c2*js[i]
	}
}
