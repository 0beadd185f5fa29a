// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coneprog

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/coneprog/coneprog/cone"
)

// randomFeasibleLP builds a random strictly-feasible nonnegative-orthant LP
// (n variables, q = n nonnegative slacks, no equality constraints): pick a
// random strictly-interior (x, s) pair and set h := x + s so that x is
// feasible by construction, matching the randomized testable-property
// family of spec.md §8.
func randomFeasibleLP(rnd *rand.Rand, n int) (*mat.VecDense, *mat.Dense, *mat.VecDense, []cone.Cone) {
	c := make([]float64, n)
	x := make([]float64, n)
	s := make([]float64, n)
	h := make([]float64, n)
	gData := make([]float64, n*n)
	for i := 0; i < n; i++ {
		c[i] = rnd.NormFloat64()
		x[i] = 1 + rnd.Float64()
		s[i] = 1 + rnd.Float64()
		h[i] = x[i] + s[i]
		gData[i*n+i] = -1
	}
	return mat.NewVecDense(n, c), mat.NewDense(n, n, gData), mat.NewVecDense(n, h), []cone.Cone{cone.NewNonnegative(n)}
}

// TestSolverRandomFeasibleInstancesTerminate runs the solver on a batch of
// randomly generated strictly-feasible LPs (spec.md §8's randomized
// testable-property family) and checks every run reaches a terminal status
// within the iteration budget, without asserting a specific optimum.
func TestSolverRandomFeasibleInstancesTerminate(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(1))

	for trial := 0; trial < 5; trial++ {
		n := 2 + trial
		c, g, h, cones := randomFeasibleLP(rnd, n)
		m, err := NewModel(c, nil, nil, g, h, cones, 0)
		if err != nil {
			t.Fatalf("trial %d: NewModel: %v", trial, err)
		}

		opts := DefaultOptions()
		opts.IterLimit = 50
		sv := NewSolver(opts)
		if err := sv.Load(m); err != nil {
			t.Fatalf("trial %d: Load: %v", trial, err)
		}
		if err := sv.Solve(); err != nil {
			t.Fatalf("trial %d: Solve: %v", trial, err)
		}
		if !sv.Status().Terminal() {
			t.Errorf("trial %d: Status() = %v, want a terminal status", trial, sv.Status())
		}
	}
}

// TestSolverLoadRejectsQRCholWithoutPreprocess exercises the configuration
// guard documented on Solver.Load.
func TestSolverLoadRejectsQRCholWithoutPreprocess(t *testing.T) {
	t.Parallel()
	c, a, b, g, h, cones := simpleLP()
	m, err := NewModel(c, a, b, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	opts := DefaultOptions()
	opts.SystemSolver = QRChol
	opts.Preprocess = false
	sv := NewSolver(opts)
	if err := sv.Load(m); err == nil {
		t.Fatalf("Load with QRChol and Preprocess=false: want error, got nil")
	}
}

// TestSolverRunsToTermination exercises the main loop end-to-end on a tiny
// LP over the nonnegative orthant and checks only that it reaches some
// terminal status within the iteration budget, not a specific numeric
// optimum (the exact HSD trajectory is not something this suite
// independently re-derives — see DESIGN.md).
func TestSolverRunsToTermination(t *testing.T) {
	t.Parallel()
	c, a, b, g, h, cones := simpleLP()
	m, err := NewModel(c, a, b, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	opts := DefaultOptions()
	opts.IterLimit = 50
	sv := NewSolver(opts)
	if err := sv.Load(m); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := sv.Solve(); err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if !sv.Status().Terminal() {
		t.Errorf("Status() = %v, want a terminal status", sv.Status())
	}
	if sv.Iterations() < 0 {
		t.Errorf("Iterations() = %d, want >= 0", sv.Iterations())
	}
}

// TestSolverScenarioLP exercises spec.md §8 scenario (a) literally: minimize
// -x-y subject to x,y ≥ 0 and x+y ≤ 1.5, expressed as a single nonnegative-
// orthant cone over (h-Gx). The optimum lies on the x+y=1.5 facet, so the
// solver must actually reach it rather than merely stop somewhere terminal.
func TestSolverScenarioLP(t *testing.T) {
	t.Parallel()
	c := mat.NewVecDense(2, []float64{-1, -1})
	g := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		-1, -1,
	})
	h := mat.NewVecDense(3, []float64{1, 1, -1.5})
	cones := []cone.Cone{cone.NewNonnegative(3)}

	m, err := NewModel(c, nil, nil, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	opts := DefaultOptions()
	opts.IterLimit = 50
	sv := NewSolver(opts)
	if err := sv.Load(m); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := sv.Solve(); err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if sv.Status() != Optimal {
		t.Fatalf("Status() = %v, want Optimal", sv.Status())
	}

	pt := sv.Point()
	x := pt.X[0] / pt.Tau
	y := pt.X[1] / pt.Tau
	const tol = 1e-4
	// Either (1, 0.5) or (0.5, 1) is optimal; accept whichever vertex the
	// solver converges to.
	matchesA := math.Abs(x-1) < tol && math.Abs(y-0.5) < tol
	matchesB := math.Abs(x-0.5) < tol && math.Abs(y-1) < tol
	if !matchesA && !matchesB {
		t.Errorf("x = (%v, %v), want (1, 0.5) or (0.5, 1)", x, y)
	}

	if obj := sv.PrimalObjective(); math.Abs(obj-(-1.5)) > tol {
		t.Errorf("PrimalObjective() = %v, want -1.5", obj)
	}
}

// TestSolverScenarioPrimalInfeasible exercises spec.md §8 scenario (e): the
// same equality/inequality system is first checked feasible, then b is
// negated to make it infeasible, and the solver must report PrimalInfeasible.
func TestSolverScenarioPrimalInfeasible(t *testing.T) {
	t.Parallel()
	c := mat.NewVecDense(1, []float64{1})
	a := mat.NewDense(1, 1, []float64{1})
	g := mat.NewDense(1, 1, []float64{1})
	h := mat.NewVecDense(1, []float64{0})
	cones := []cone.Cone{cone.NewNonnegative(1)}

	feasibleB := mat.NewVecDense(1, []float64{1})
	m, err := NewModel(c, a, feasibleB, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel (feasible): %v", err)
	}
	opts := DefaultOptions()
	opts.IterLimit = 50
	sv := NewSolver(opts)
	if err := sv.Load(m); err != nil {
		t.Fatalf("Load (feasible): %v", err)
	}
	if err := sv.Solve(); err != nil {
		t.Fatalf("Solve (feasible): %v", err)
	}
	if sv.Status() != Optimal {
		t.Errorf("feasible instance: Status() = %v, want Optimal", sv.Status())
	}

	infeasibleB := mat.NewVecDense(1, []float64{-1})
	m2, err := NewModel(c, a, infeasibleB, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel (infeasible): %v", err)
	}
	sv2 := NewSolver(opts)
	if err := sv2.Load(m2); err != nil {
		t.Fatalf("Load (infeasible): %v", err)
	}
	_ = sv2.Solve()
	if sv2.Status() != PrimalInfeasible {
		t.Errorf("infeasible instance: Status() = %v, want PrimalInfeasible", sv2.Status())
	}
}

func TestSolverWithQRCholPreprocessRuns(t *testing.T) {
	t.Parallel()
	c, a, b, g, h, cones := simpleLP()
	m, err := NewModel(c, a, b, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	opts := DefaultOptions()
	opts.SystemSolver = QRChol
	opts.Preprocess = true
	opts.IterLimit = 50
	sv := NewSolver(opts)
	if err := sv.Load(m); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := sv.Solve(); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !sv.Status().Terminal() {
		t.Errorf("Status() = %v, want a terminal status", sv.Status())
	}
}

func TestSolverDetectsDuplicatedRowInconsistency(t *testing.T) {
	t.Parallel()
	c := mat.NewVecDense(3, []float64{1, 2, 3})
	// Two equality rows: the second duplicates the first but with a
	// different right-hand side, which preprocessing must reject.
	a := mat.NewDense(2, 3, []float64{
		1, 1, 1,
		1, 1, 1,
	})
	b := mat.NewVecDense(2, []float64{1, 2})
	g := mat.NewDense(3, 3, []float64{
		-1, 0, 0,
		0, -1, 0,
		0, 0, -1,
	})
	h := mat.NewVecDense(3, []float64{0, 0, 0})
	cones := []cone.Cone{cone.NewNonnegative(3)}

	m, err := NewModel(c, a, b, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	opts := DefaultOptions()
	opts.Preprocess = true
	sv := NewSolver(opts)
	if err := sv.Load(m); err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = sv.Solve()
	if err == nil {
		t.Fatalf("Solve with inconsistent duplicated row: want error, got nil")
	}
	if sv.Status() != DualInconsistent {
		t.Errorf("Status() = %v, want DualInconsistent", sv.Status())
	}
}
