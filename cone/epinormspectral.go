// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import "gonum.org/v1/gonum/mat"

// EpiNormSpectral is the epigraph of the spectral (operator) norm over
// rows×cols matrices, {(u,W) ∈ R × R^{rows×cols} : u ≥ σ_max(W)}, W stored
// row-major as a flat vector of length rows·cols. Its barrier is
//
//	F(u,W) = -logdet(u²·I_p - WWᵀ)   (rows ≤ cols, p = rows)
//	F(u,W) = -logdet(u²·I_p - WᵀW)   (rows >  cols, p = cols)
//
// with ν = 2p. Setting Engine.SetDual(true) turns the same barrier into
// the epigraph of the nuclear (trace) norm, which is its Legendre-Fenchel
// conjugate — so EpiNormNuclear needs no separate barrier derivation.
type EpiNormSpectral struct {
	*Engine
	b *epiNormSpectralBarrier
}

type epiNormSpectralBarrier struct {
	rows, cols, p int
}

// NewEpiNormSpectral returns the spectral-norm epigraph cone over
// rows×cols matrices.
func NewEpiNormSpectral(rows, cols int) *EpiNormSpectral {
	if rows < 1 || cols < 1 {
		panic("cone: epinormspectral requires rows,cols>=1")
	}
	p := rows
	if cols < rows {
		p = cols
	}
	b := &epiNormSpectralBarrier{rows: rows, cols: cols, p: p}
	return &EpiNormSpectral{Engine: NewEngine(b), b: b}
}

// NewEpiNormNuclear returns the dual of the spectral-norm epigraph, i.e.
// the nuclear-norm epigraph, over rows×cols matrices.
func NewEpiNormNuclear(rows, cols int) *EpiNormSpectral {
	c := NewEpiNormSpectral(rows, cols)
	c.SetDual(true)
	return c
}

func (b *epiNormSpectralBarrier) Dim() int    { return 1 + b.rows*b.cols }
func (b *epiNormSpectralBarrier) Nu() float64 { return float64(2 * b.p) }

func (b *epiNormSpectralBarrier) InitialPoint(arr []float64) {
	arr[0] = 1
	for i := 1; i < len(arr); i++ {
		arr[i] = 0
	}
}

func (b *epiNormSpectralBarrier) wMat(s []float64) *mat.Dense {
	return mat.NewDense(b.rows, b.cols, append([]float64(nil), s[1:]...))
}

// pencil returns M = u²I_p - WWᵀ (rows≤cols) or u²I_p - WᵀW (rows>cols).
func (b *epiNormSpectralBarrier) pencil(u float64, W *mat.Dense) *mat.SymDense {
	M := mat.NewSymDense(b.p, nil)
	var G mat.Dense
	if b.rows <= b.cols {
		G.Mul(W, W.T())
	} else {
		G.Mul(W.T(), W)
	}
	for i := 0; i < b.p; i++ {
		for j := i; j < b.p; j++ {
			v := -G.At(i, j)
			if i == j {
				v += u * u
			}
			M.SetSym(i, j, v)
		}
	}
	return M
}

func (b *epiNormSpectralBarrier) Feasible(s []float64) bool {
	u := s[0]
	if u <= 0 {
		return false
	}
	W := b.wMat(s)
	var chol mat.Cholesky
	return chol.Factorize(b.pencil(u, W))
}

func (b *epiNormSpectralBarrier) Grad(s, g []float64) {
	u := s[0]
	W := b.wMat(s)
	var chol mat.Cholesky
	if u <= 0 || !chol.Factorize(b.pencil(u, W)) {
		for i := range g {
			g[i] = 0
		}
		return
	}
	var Minv mat.SymDense
	if err := chol.InverseTo(&Minv); err != nil {
		for i := range g {
			g[i] = 0
		}
		return
	}
	var tr float64
	for i := 0; i < b.p; i++ {
		tr += Minv.At(i, i)
	}
	g[0] = -2 * u * tr

	var GW mat.Dense
	if b.rows <= b.cols {
		GW.Mul(&Minv, W)
	} else {
		GW.Mul(W, &Minv)
	}
	idx := 1
	for i := 0; i < b.rows; i++ {
		for j := 0; j < b.cols; j++ {
			g[idx] = 2 * GW.At(i, j)
			idx++
		}
	}
}

func (b *epiNormSpectralBarrier) HessProd(s, v, out []float64) {
	numericHessProdFromGrad(b.Grad, s, v, out)
}
