// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stepper implements the predictor/corrector direction computation
// of spec §4.4: refreshing cones at the current scaled point, branching
// between the predict and center RHS, iterative refinement of the solved
// direction, an optional third-order correction round, and the
// neighborhood-constrained backtracking line search. It implements the
// "pure predict/center branching" policy — one of the two historical
// policies spec §9 says an implementation should pick and make total.
//
// Like coneprog/kktsolver, this package is a leaf: it takes a
// kktsolver.System and kktsolver.Data rather than importing the root
// package's Model/Point/Direction, so the root Solver can depend on it
// without a cycle.
package stepper

import (
	"math"

	"github.com/coneprog/coneprog/kktsolver"
)

// Branch records which of the two Newton directions the stepper committed
// to in a given iteration, for per-iteration logging.
type Branch int

const (
	Predict Branch = iota
	Center
)

func (b Branch) String() string {
	if b == Predict {
		return "predict"
	}
	return "center"
}

// Config holds the tunable tolerances of spec §4.4.
type Config struct {
	// BetaC is the predict/center switch threshold (default 0.04).
	BetaC float64
	// BetaMax is the wide neighborhood bound (default 0.7).
	BetaMax float64
	// BetaMin is the per-cone complementarity floor s_k·z_k ≥
	// BetaMin·μ·ν_k used by the line search; the source text names the
	// quantity without fixing its default, so this module fixes it to
	// 0.1 (a conventional fraction of BetaMax) — see DESIGN.md.
	BetaMin float64
	// UseInftyNbhd selects cone.Engine's elementwise neighborhood test
	// (every product s_i·z_i strictly positive, with no μ or β bound) over
	// the quadratic-form one, per cone.
	UseInftyNbhd bool
	// AlphaFloor is the minimum step size before the line search gives up
	// and signals numerical failure (default 1e-3).
	AlphaFloor float64
	// AlphaBacktrack scales a rejected trial α down (default 0.9, within
	// the spec's suggested 0.8-0.95 range).
	AlphaBacktrack float64
	// AlphaCeilingGrowth bounds how much larger the next starting α may
	// be than the previous successful one (default 1.4).
	AlphaCeilingGrowth float64
	// MaxRefine bounds the number of iterative-refinement rounds.
	MaxRefine int
}

// DefaultConfig returns the spec's default stepper tolerances.
func DefaultConfig() Config {
	return Config{
		BetaC:              0.04,
		BetaMax:            0.7,
		BetaMin:            0.1,
		UseInftyNbhd:       false,
		AlphaFloor:         1e-3,
		AlphaBacktrack:     0.9,
		AlphaCeilingGrowth: 1.4,
		MaxRefine:          3,
	}
}

// Stepper drives one predictor/corrector iteration against a System.
type Stepper struct {
	cfg Config
	sys kktsolver.System

	n, p, q int

	predictRHS, centerRHS *kktsolver.RHS
	predictDir, centerDir *kktsolver.Dir
	refineRHS             *kktsolver.RHS
	refineDir             *kktsolver.Dir

	prevAlpha float64
}

// New returns a Stepper driving sys over a problem of the given dimensions.
func New(sys kktsolver.System, n, p, q int, cfg Config) *Stepper {
	return &Stepper{
		cfg:        cfg,
		sys:        sys,
		n:          n,
		p:          p,
		q:          q,
		predictRHS: kktsolver.NewRHS(n, p, q),
		centerRHS:  kktsolver.NewRHS(n, p, q),
		predictDir: kktsolver.NewDir(n, p, q),
		centerDir:  kktsolver.NewDir(n, p, q),
		refineDir:  kktsolver.NewDir(n, p, q),
		prevAlpha:  1,
	}
}

// Result is the outcome of one Step call.
type Result struct {
	Dir    *kktsolver.Dir
	Alpha  float64
	Branch Branch
}

// ErrNumericalFailure is returned when the line search exhausts its
// backtracking budget without finding a neighborhood-safe step, or when a
// factorization inside the system solver fails.
type ErrNumericalFailure struct{ Reason string }

func (e *ErrNumericalFailure) Error() string { return "stepper: numerical failure: " + e.Reason }

// Step performs steps 1-5 of spec §4.4's state machine (refresh, update LHS,
// branch+solve+refine[+correct], line search) for the point
// (x, y, z, s, tau, kappa) with precomputed residuals (rx, ry, rz). It does
// not commit the step (spec's step 6); the caller applies Result.Dir scaled
// by Result.Alpha and recomputes μ.
func (st *Stepper) Step(data *kktsolver.Data, x, y, z, s []float64, tau, kappa float64, rx, ry, rz []float64, mu float64) (*Result, error) {
	rt := math.Sqrt(mu)

	// Step 1: refresh cones at the scaled point.
	for i, k := range data.Cones {
		r := data.ConeIdxs[i]
		k.LoadPoint(s[r.Start:r.End])
		k.RescalePoint(1 / rt)
		k.LoadDualPoint(z[r.Start:r.End])
		k.ResetData()
		if !k.IsFeas() {
			return nil, &ErrNumericalFailure{Reason: "cone infeasible at refresh"}
		}
	}

	// Step 2: update LHS.
	if err := st.sys.UpdateLHS(data, mu, tau, kappa); err != nil {
		return nil, err
	}

	// Step 3: branch.
	allCentral := true
	for _, k := range data.Cones {
		if !k.InNeighborhood(mu, st.cfg.BetaC, st.cfg.UseInftyNbhd) {
			allCentral = false
			break
		}
	}

	var dir *kktsolver.Dir
	var branch Branch
	var err error
	if allCentral {
		branch = Predict
		dir, err = st.solvePredict(data, x, y, z, kappa, tau, rx, ry, rz)
	} else {
		branch = Center
		dir, err = st.solveCenter(data, z, tau, kappa, mu, rt)
	}
	if err != nil {
		return nil, err
	}

	// Step 4: iterative refinement.
	if err := st.refine(data, branch, dir, mu, tau); err != nil {
		return nil, err
	}

	// Step 5: line search.
	alpha, err := st.lineSearch(data, x, y, z, s, tau, kappa, dir, mu)
	if err != nil {
		return nil, err
	}

	return &Result{Dir: dir, Alpha: alpha, Branch: branch}, nil
}

func (st *Stepper) solvePredict(data *kktsolver.Data, x, y, z []float64, kappa, tau float64, rx, ry, rz []float64) (*kktsolver.Dir, error) {
	rhs := st.predictRHS
	copy(rhs.RX, rx)
	copy(rhs.RY, ry)
	copy(rhs.RZ, rz)

	var ctx, bty, htz float64
	for i := 0; i < st.n; i++ {
		ctx += data.C.AtVec(i) * x[i]
	}
	for j := 0; j < st.p; j++ {
		bty += data.B.AtVec(j) * y[j]
	}
	for j := 0; j < st.q; j++ {
		htz += data.H.AtVec(j) * z[j]
	}
	rhs.RTau = kappa + ctx - bty - htz
	for j := 0; j < st.q; j++ {
		rhs.RS[j] = -z[j]
	}
	rhs.RKappa = -kappa

	dir := st.predictDir
	if err := st.sys.Solve(data, rhs, dir); err != nil {
		return nil, err
	}

	if st.hasCorrection(data) {
		st.addCorrection(data, rhs, dir)
		if err := st.sys.Solve(data, rhs, dir); err != nil {
			return nil, err
		}
	}
	return dir, nil
}

func (st *Stepper) solveCenter(data *kktsolver.Data, z []float64, tau, kappa, mu, rt float64) (*kktsolver.Dir, error) {
	rhs := st.centerRHS
	for i := range rhs.RX {
		rhs.RX[i] = 0
	}
	for i := range rhs.RY {
		rhs.RY[i] = 0
	}
	rhs.RTau = 0
	for i, k := range data.Cones {
		r := data.ConeIdxs[i]
		g := k.Grad()
		for a, idx := 0, r.Start; idx < r.End; a, idx = a+1, idx+1 {
			rhs.RZ[idx] = 0
			rhs.RS[idx] = -z[idx] - rt*g[a]
		}
	}
	rhs.RKappa = -kappa + mu/tau

	dir := st.centerDir
	if err := st.sys.Solve(data, rhs, dir); err != nil {
		return nil, err
	}

	if st.hasCorrection(data) {
		st.addCorrection(data, rhs, dir)
		if err := st.sys.Solve(data, rhs, dir); err != nil {
			return nil, err
		}
	}
	return dir, nil
}

func (st *Stepper) hasCorrection(data *kktsolver.Data) bool {
	for _, k := range data.Cones {
		if k.UseCorrection() {
			return true
		}
	}
	return false
}

// addCorrection adds each cone's third-order term to rhs.RS in place, per
// spec §4.5: after the first-order solve, re-solving with the correction
// folded into the slack RHS.
func (st *Stepper) addCorrection(data *kktsolver.Data, rhs *kktsolver.RHS, dir *kktsolver.Dir) {
	for i, k := range data.Cones {
		if !k.UseCorrection() {
			continue
		}
		r := data.ConeIdxs[i]
		corr := k.Correction(dir.S[r.Start:r.End])
		for a, idx := 0, r.Start; idx < r.End; a, idx = a+1, idx+1 {
			rhs.RS[idx] += corr[a]
		}
	}
}
