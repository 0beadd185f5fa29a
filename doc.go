// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coneprog solves conic programs
//
//	minimize    c·x
//	subject to  A x = b
//	            h - G x = s,  s ∈ K
//
// where K is a Cartesian product of cones (second-order, positive
// semidefinite, exponential, power, and others — see the cone subpackage)
// by a primal-dual interior-point method built around the homogeneous
// self-dual embedding. The embedding adjoins a pair of scalars (τ, κ) to
// the primal-dual system so that the same Newton iteration that converges
// to an optimal solution also produces a Farkas-style infeasibility
// certificate when none exists, without a separate phase-one solve.
//
// A typical use:
//
//	m, err := coneprog.NewModel(c, a, b, g, h, cones, 0)
//	sv := coneprog.NewSolver(coneprog.DefaultOptions())
//	if err := sv.Load(m); err != nil { ... }
//	if err := sv.Solve(); err != nil { ... }
//	switch sv.Status() {
//	case coneprog.Optimal:
//		x := sv.Point().X
//	}
//
// The linear algebra (cone.Cone barrier contract, kktsolver.System Newton
// solvers, and the stepper package's predictor-corrector iteration) is
// split into leaf subpackages so each can be built and tested in
// isolation; this package wires them together and owns preprocessing,
// initial point construction, and termination detection.
package coneprog
