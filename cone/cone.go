// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cone implements the barrier cone library of spec §4.2: a single
// flat Cone interface plus one file per supported cone variant. Cones are
// stateful — LoadPoint/LoadDualPoint store a point and reset the per-cone
// "freshness" flags described by the lazy recomputation order of §4.2
// (feasibility → gradient → Hessian auxiliary data → Hessian product →
// inverse-Hessian product → third-order correction). Engine caches
// feasibility, the gradient and the materialized Hessian lazily, in that
// order; its other methods recompute their results on each call.
package cone

import "errors"

// ErrNotFeasible describes an operation that required a loaded point to be
// strictly feasible when it was not. No Cone method has an error result, so
// the cones in this package do not return it; callers check IsFeas before
// relying on values computed at a loaded point.
var ErrNotFeasible = errors.New("cone: point is not strictly feasible")

// Cone is the contract every barrier cone variant implements (spec §4.2).
// Vectors passed to and returned from a Cone are in the cone's own native
// coordinates: svec-scaled for the symmetric-matrix cones (see
// coneprog/linalg), plain for the vector cones.
type Cone interface {
	// Dimension returns the ambient dimension of the cone's slice of s/z.
	Dimension() int
	// Nu returns the barrier parameter ν.
	Nu() float64

	// SetInitialPoint writes a strictly feasible primal anchor into arr
	// (which must have length Dimension()) satisfying ⟨p, -grad(p)⟩ = ν.
	SetInitialPoint(arr []float64)

	// LoadPoint stores p as the current primal point and resets freshness.
	LoadPoint(p []float64)
	// LoadDualPoint stores d as the current dual point.
	LoadDualPoint(d []float64)
	// RescalePoint multiplies the stored primal point by alpha.
	RescalePoint(alpha float64)
	// ResetData clears every freshness flag, forcing lazy recomputation.
	ResetData()

	// IsFeas reports whether the loaded primal point is strictly feasible.
	IsFeas() bool
	// IsDualFeas reports whether the loaded dual point is strictly
	// feasible for the dual cone.
	IsDualFeas() bool

	// Grad returns -∇F(s) for the loaded primal point s. The returned
	// slice is owned by the cone and is invalidated by the next mutation.
	Grad() []float64
	// HessProd writes ∇²F(s)·v into out.
	HessProd(out, v []float64)
	// InvHessProd writes ∇²F(s)⁻¹·v into out.
	InvHessProd(out, v []float64)
	// Hess materializes the (symmetric, positive-definite) Hessian.
	Hess() Symmetric
	// InvHess materializes the inverse Hessian.
	InvHess() Symmetric

	// InNeighborhood reports whether the loaded primal/dual pair's local
	// deviation from the central path at complementarity μ is within β,
	// using an infinity-norm or quadratic-form metric per useInfty.
	InNeighborhood(mu, beta float64, useInfty bool) bool

	// UseCorrection reports whether Correction is implemented (non-zero)
	// for this cone.
	UseCorrection() bool
	// Correction returns the third-order directional term
	// ½·D³F(s)[dir, dir] for the loaded primal point s.
	Correction(dir []float64) []float64

	// UseDualBarrier reports whether the solver should swap primal/dual
	// roles for this cone's slice (spec §4.2, §9).
	UseDualBarrier() bool
}

// Symmetric is the minimal read access the stepper and system solvers need
// from a materialized Hessian/inverse-Hessian, satisfied by
// *mat.SymDense (coneprog/linalg builds on gonum's mat package throughout).
type Symmetric interface {
	SymmetricDim() int
	At(i, j int) float64
}
