// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kktsolver builds and factorizes the Newton system consulted by
// the stepper at every iteration, after the per-cone slack s has been
// eliminated via s = -μ·∇²F(s)·z (spec §4.3). Two independent
// implementations share the System interface: NaiveSolver assembles the
// full bordered system densely; QRCholSolver eliminates x and y against
// stored pivoted-QR factors and Cholesky-factors the remaining reduced
// system over z.
//
// This package is a leaf: it takes its problem data as plain matrices,
// vectors and cones (mirroring how gonum's optimize/convex/lp takes plain
// function arguments rather than importing the parent optimize package),
// so the root solver package can depend on it without a cycle.
package kktsolver

import (
	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/cone"
)

// Range is the contiguous index range [Start, End) a cone occupies in s/z.
type Range struct{ Start, End int }

// Data is the problem data a System needs to assemble its linear system:
// the coefficient matrices/vectors of the conic standard form plus the
// ordered cones and their index ranges.
type Data struct {
	C *mat.VecDense
	A *mat.Dense // may be nil (p=0)
	B *mat.VecDense
	G *mat.Dense
	H *mat.VecDense

	Cones    []cone.Cone
	ConeIdxs []Range
}

func (d *Data) Dims() (n, p, q int) {
	n = d.C.Len()
	if d.A != nil {
		p, _ = d.A.Dims()
	}
	q = d.H.Len()
	return n, p, q
}

// RHS is one right-hand side of the Newton system, per spec §4.3: the
// primal/dual/objective residual block (RX, RY, RZ, RTau) plus the
// cone-local slack and kappa residuals (RS, RKappa) that differ between
// the centering, prediction, and correction rounds.
type RHS struct {
	RX, RY, RZ []float64
	RTau       float64
	RS         []float64
	RKappa     float64
}

// NewRHS allocates a zero RHS of the given dimensions.
func NewRHS(n, p, q int) *RHS {
	return &RHS{
		RX: make([]float64, n),
		RY: make([]float64, p),
		RZ: make([]float64, q),
		RS: make([]float64, q),
	}
}

// Dir is the solved Newton direction, matching the shape of RHS.
type Dir struct {
	X, Y, Z, S []float64
	Tau        float64
	Kappa      float64
}

// NewDir allocates a zero Dir of the given dimensions.
func NewDir(n, p, q int) *Dir {
	return &Dir{
		X: make([]float64, n),
		Y: make([]float64, p),
		Z: make([]float64, q),
		S: make([]float64, q),
	}
}

// System is the shared contract of spec §4.3's two solver variants.
type System interface {
	// UpdateLHS refreshes the factorization for the given mu and the
	// cones' current scaled point (cones must already have had
	// LoadPoint/LoadDualPoint called at the scaled point by the caller).
	UpdateLHS(data *Data, mu, tau, kappa float64) error
	// Solve solves the system for rhs and writes the result into dir.
	Solve(data *Data, rhs *RHS, dir *Dir) error
}
