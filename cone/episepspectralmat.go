// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/linalg"
)

// EpiSepSpectralMat is the matrix analog of EpiSepSpectral: the separable
// spectral function is applied to the eigenvalues of a d×d symmetric
// matrix W (given in svec form) instead of to a plain vector,
//
//	{(u,v,W) ∈ R × R_++ × S^d_+ : u ≥ v·Σ_i h(λ_i(W)/v)},  h(t) = t·log t,
//
// with barrier F(u,v,W) = -log(u - Σ_i λ_i·log(λ_i/v)) - log(v) - logdet(W),
// ν = d+2. The gradient of any function of the eigenvalues alone is
// Q·diag(f'(λ))·Qᵀ for the eigenbasis Q of W — used here to turn the
// vector-case derivative into the matrix-case one without re-deriving it.
type EpiSepSpectralMat struct {
	*Engine
	b *epiSepSpectralMatBarrier
}

type epiSepSpectralMatBarrier struct {
	d, n int
}

// NewEpiSepSpectralMat returns the cone over d×d matrices.
func NewEpiSepSpectralMat(d int) *EpiSepSpectralMat {
	b := &epiSepSpectralMatBarrier{d: d, n: linalg.SvecDim(d)}
	return &EpiSepSpectralMat{Engine: NewEngine(b), b: b}
}

func (b *epiSepSpectralMatBarrier) Dim() int    { return 2 + b.n }
func (b *epiSepSpectralMatBarrier) Nu() float64 { return float64(b.d) + 2 }

func (b *epiSepSpectralMatBarrier) InitialPoint(arr []float64) {
	arr[0] = 1
	arr[1] = 1
	I := mat.NewSymDense(b.d, nil)
	for i := 0; i < b.d; i++ {
		I.SetSym(i, i, 1)
	}
	linalg.Svec(arr[2:], I)
}

func (b *epiSepSpectralMatBarrier) eig(w []float64) (eigen mat.EigenSym, ok bool) {
	W := mat.NewSymDense(b.d, nil)
	linalg.Smat(W, w)
	ok = eigen.Factorize(W, true)
	return eigen, ok
}

func (b *epiSepSpectralMatBarrier) Feasible(s []float64) bool {
	u, v, w := s[0], s[1], s[2:]
	if v <= 0 {
		return false
	}
	eigen, ok := b.eig(w)
	if !ok {
		return false
	}
	var S float64
	for _, lam := range eigen.Values(nil) {
		if lam <= 0 {
			return false
		}
		S += lam * math.Log(lam/v)
	}
	return u-S > 0
}

func (b *epiSepSpectralMatBarrier) Grad(s, g []float64) {
	u, v, w := s[0], s[1], s[2:]
	if v <= 0 {
		for i := range g {
			g[i] = 0
		}
		return
	}
	eigen, ok := b.eig(w)
	if !ok {
		for i := range g {
			g[i] = 0
		}
		return
	}
	lambdas := eigen.Values(nil)
	var Q mat.Dense
	eigen.VectorsTo(&Q)

	var S, sumLam float64
	fp := make([]float64, b.d)
	for i, lam := range lambdas {
		if lam <= 0 {
			for k := range g {
				g[k] = 0
			}
			return
		}
		S += lam * math.Log(lam/v)
		sumLam += lam
		fp[i] = math.Log(lam/v) + 1
	}
	gap := u - S
	if gap <= 0 {
		for i := range g {
			g[i] = 0
		}
		return
	}
	g[0] = -1 / gap
	g[1] = -sumLam/(v*gap) - 1/v

	diag := make([]float64, b.d)
	for i, lam := range lambdas {
		diag[i] = fp[i]/gap - 1/lam
	}
	res := spectralReconstruct(&Q, diag, b.d)
	linalg.Svec(g[2:], res)
}

// spectralReconstruct forms Q·diag(d)·Qᵀ.
func spectralReconstruct(Q *mat.Dense, d []float64, n int) *mat.SymDense {
	D := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		D.Set(i, i, d[i])
	}
	var tmp mat.Dense
	tmp.Mul(Q, D)
	var full mat.Dense
	full.Mul(&tmp, Q.T())
	res := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			res.SetSym(i, j, 0.5*(full.At(i, j)+full.At(j, i)))
		}
	}
	return res
}

func (b *epiSepSpectralMatBarrier) HessProd(s, v, out []float64) {
	numericHessProdFromGrad(b.Grad, s, v, out)
}
