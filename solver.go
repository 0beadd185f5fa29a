// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coneprog

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/coneprog/coneprog/kktsolver"
	"github.com/coneprog/coneprog/stepper"
)

// ErrConfiguration is returned by Load/Solve when the requested options are
// not internally consistent (e.g. QRChol without Preprocess), per spec §8
// scenario (f)'s "reject as a configuration error".
var ErrConfiguration = errors.New("coneprog: invalid solver configuration")

// Solver is the orchestrator of spec §2 bullet 6: preprocessing, initial
// point construction, the main predictor/corrector loop, residual/μ
// computation and termination detection, driving the shared
// kktsolver.System and stepper.Stepper leaf packages.
type Solver struct {
	opts Options

	model  *Model
	pt     *Point
	res    *Residuals
	status Status

	pp *preprocessed

	iter      int
	startTime time.Time
	solveTime time.Duration
	prevMu    float64
	slowCount int
}

// NewSolver returns a Solver configured with opts.
func NewSolver(opts Options) *Solver {
	return &Solver{opts: opts, status: NotLoaded}
}

// Load attaches a model to the solver, validating option/model consistency.
func (sv *Solver) Load(m *Model) error {
	if sv.opts.SystemSolver == QRChol && !sv.opts.Preprocess {
		return errors.Wrap(ErrConfiguration, "QRChol system solver requires Preprocess")
	}
	sv.model = m
	sv.status = Loaded
	return nil
}

// Status returns the solver's current status.
func (sv *Solver) Status() Status { return sv.status }

// Point returns the solver's current (possibly partial, on early
// termination) iterate.
func (sv *Solver) Point() *Point { return sv.pt }

// Iterations returns the number of main-loop iterations run.
func (sv *Solver) Iterations() int { return sv.iter }

// SolveTime returns the wall-clock duration of the last Solve call.
func (sv *Solver) SolveTime() time.Duration { return sv.solveTime }

// PrimalObjective returns c·x/τ + objOffset at the current point.
func (sv *Solver) PrimalObjective() float64 {
	var cx float64
	for i := 0; i < sv.model.C.Len(); i++ {
		cx += sv.model.C.AtVec(i) * sv.pt.X[i]
	}
	return cx/sv.pt.Tau + sv.model.ObjOffset
}

// DualObjective returns -(b·y+h·z)/τ + objOffset at the current point.
func (sv *Solver) DualObjective() float64 {
	var by, hz float64
	for j := 0; j < len(sv.pt.Y); j++ {
		by += sv.model.B.AtVec(j) * sv.pt.Y[j]
	}
	for j := 0; j < len(sv.pt.Z); j++ {
		hz += sv.model.H.AtVec(j) * sv.pt.Z[j]
	}
	return -(by+hz)/sv.pt.Tau + sv.model.ObjOffset
}

func (sv *Solver) buildData() *kktsolver.Data {
	m := sv.model
	idxs := make([]kktsolver.Range, len(m.ConeIdxs))
	for i, r := range m.ConeIdxs {
		idxs[i] = kktsolver.Range{Start: r.Start, End: r.End}
	}
	return &kktsolver.Data{
		C: m.C, A: m.A, B: m.B, G: m.G, H: m.H,
		Cones:    m.Cones,
		ConeIdxs: idxs,
	}
}

// Solve runs the main loop of spec §5 to termination.
func (sv *Solver) Solve() error {
	if sv.status != Loaded {
		return errors.Wrap(ErrConfiguration, "Solve called before a successful Load")
	}
	sv.startTime = time.Now()
	log := sv.opts.logger()

	pp, status, err := preprocess(sv.model, &sv.opts)
	sv.pp = pp
	if err != nil {
		sv.status = status
		return err
	}

	sv.pt, err = initialPoint(sv.model, pp, &sv.opts)
	if err != nil {
		sv.status = NumericalFailure
		return errors.Wrap(err, "initial point")
	}
	sv.res = NewResiduals(sv.model.Dims())
	data := sv.buildData()

	var sys kktsolver.System
	switch sv.opts.SystemSolver {
	case QRChol:
		sys = &kktsolver.QRCholSolver{}
	default:
		sys = &kktsolver.NaiveSolver{}
	}

	n, p, q := sv.model.Dims()
	cfg := stepper.DefaultConfig()
	cfg.BetaMax = sv.opts.MaxNbhd
	cfg.UseInftyNbhd = sv.opts.UseInftyNbhd
	st := stepper.New(sys, n, p, q, cfg)

	sv.status = SolveCalled
	sv.prevMu = math.Inf(1)

	for {
		if sv.opts.IterLimit > 0 && sv.iter >= sv.opts.IterLimit {
			sv.status = IterationLimit
			break
		}
		if sv.opts.TimeLimit > 0 && time.Since(sv.startTime) > sv.opts.TimeLimit {
			sv.status = TimeLimit
			break
		}

		sv.res.Compute(sv.model, sv.pt)
		mu := sv.pt.Mu(sv.model)

		if status, ok := sv.checkTermination(mu); ok {
			sv.status = status
			break
		}

		result, serr := st.Step(data, sv.pt.X, sv.pt.Y, sv.pt.Z, sv.pt.S, sv.pt.Tau, sv.pt.Kappa,
			sv.res.RX, sv.res.RY, sv.res.RZ, mu)
		if serr != nil {
			sv.status = NumericalFailure
			if log != nil {
				log.Warnw("coneprog: numerical failure", "iter", sv.iter, "err", serr)
			}
			sv.solveTime = time.Since(sv.startTime)
			return errors.Wrap(serr, "stepper")
		}

		sv.pt.AddScaled(&Direction{
			X: result.Dir.X, Y: result.Dir.Y, Z: result.Dir.Z, S: result.Dir.S,
			Tau: result.Dir.Tau, Kappa: result.Dir.Kappa,
		}, result.Alpha)

		newMu := sv.pt.Mu(sv.model)
		if log != nil && sv.opts.Verbose {
			log.Debugw("coneprog: iteration", "iter", sv.iter, "mu", newMu,
				"alpha", result.Alpha, "branch", result.Branch.String())
		}
		if newMu <= 0 || sv.pt.Tau <= 0 || sv.pt.Kappa <= 0 {
			sv.status = NumericalFailure
			break
		}
		sv.prevMu = mu
		sv.iter++
	}

	sv.solveTime = time.Since(sv.startTime)
	if log != nil {
		log.Infow("coneprog: solve finished", "status", sv.status.String(), "iter", sv.iter)
	}
	return nil
}

// checkTermination polls the conditions of spec §5 in the required order:
// optimality, primal infeasibility, dual infeasibility, ill-posedness, slow
// progress. Iteration/time limits are checked by the caller at the top of
// the loop. The exact infeasibility/ill-posedness certificates are a
// disclosed simplification of the standard HSD theory — see DESIGN.md.
func (sv *Solver) checkTermination(mu float64) (Status, bool) {
	tau, kappa := sv.pt.Tau, sv.pt.Kappa
	rxn, ryn, rzn := sv.res.ScaledNorms(tau)
	feasResid := math.Max(rxn, math.Max(ryn, rzn))

	pobj := sv.PrimalObjective()
	dobj := sv.DualObjective()
	gap := math.Abs(pobj - dobj)
	relGap := gap / math.Max(1, math.Abs(pobj))

	if feasResid <= sv.opts.TolFeas && (gap <= sv.opts.TolAbsOpt || relGap <= sv.opts.TolRelOpt) {
		return Optimal, true
	}

	var by, hz float64
	for j := range sv.pt.Y {
		by += sv.model.B.AtVec(j) * sv.pt.Y[j]
	}
	for j := range sv.pt.Z {
		hz += sv.model.H.AtVec(j) * sv.pt.Z[j]
	}
	dualRayVal := -(by + hz)
	if dualRayVal > 0 {
		rxScaled := normL2(sv.res.RX) / dualRayVal
		if rxScaled <= sv.opts.TolFeas {
			return PrimalInfeasible, true
		}
	}

	var cx float64
	for i := range sv.pt.X {
		cx += sv.model.C.AtVec(i) * sv.pt.X[i]
	}
	if cx < 0 {
		ryzScaled := (normL2(sv.res.RY) + normL2(sv.res.RZ)) / -cx
		if ryzScaled <= sv.opts.TolFeas {
			return DualInfeasible, true
		}
	}

	if tau < sv.opts.TolFeas && kappa < sv.opts.TolFeas {
		return IllPosed, true
	}

	if sv.iter > 1 && sv.prevMu > 0 {
		improvement := (sv.prevMu - mu) / sv.prevMu
		if improvement < sv.opts.TolSlow {
			sv.slowCount++
		} else {
			sv.slowCount = 0
		}
		// Spec §5/§7: slow progress requires two consecutive iterations
		// of sub-tolerance relative improvement, not a single one.
		if sv.slowCount >= 2 {
			return SlowProgress, true
		}
	} else {
		sv.slowCount = 0
	}

	return NotLoaded, false
}

func normL2(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}
