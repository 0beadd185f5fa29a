// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"gonum.org/v1/gonum/mat"
)

// Barrier is the minimal per-cone-variant math a concrete cone type
// implements: feasibility, gradient, and a Hessian-vector product of its
// OWN logarithmically homogeneous barrier F, in the cone's native
// orientation. Engine supplies everything else in the Cone contract —
// caching, RescalePoint/ResetData bookkeeping, InvHessProd/Hess/InvHess
// (via materializing the Hessian from repeated HessProd calls and
// Cholesky-factoring it, since the barrier Hessian is SPD at any feasible
// point), a generic third-order Correction (via a finite-difference
// directional derivative of HessProd), IsDualFeas, and — when a cone sets
// UseDualBarrier — the conjugate barrier F* itself, obtained generically
// from F by inverting the gradient map with damped Newton iterations:
// ∇F*(z) = -s where ∇F(s) = -z, and ∇²F*(z) = (∇²F(s))⁻¹. This is a plain
// fact about Legendre-Fenchel conjugates of logarithmically homogeneous
// self-concordant barriers (the conjugate of the barrier of K is the
// barrier of the dual cone K*), and lets every cone variant below supply a
// single barrier implementation regardless of whether the modeling adapter
// needs the primal or the dual-barrier orientation (spec §4.2, §9).
type Barrier interface {
	Dim() int
	Nu() float64
	// InitialPoint writes a central anchor into arr (length Dim()).
	InitialPoint(arr []float64)
	// Feasible reports whether s is in the interior of F's domain.
	Feasible(s []float64) bool
	// Grad writes ∇F(s) into g (NOT negated; Engine negates at the
	// contract boundary to match Cone.Grad's -∇F(s) convention).
	Grad(s, g []float64)
	// HessProd writes ∇²F(s)·v into out.
	HessProd(s, v, out []float64)
}

// fdStep is the absolute finite-difference step (along dir) used by the
// generic Correction.
const fdStep = 1e-6

// Engine implements the Cone interface generically on top of a Barrier,
// handling the useDual orientation swap, freshness caching, and the dense
// linear algebra (materialize-then-factor) needed for InvHessProd/Hess/
// InvHess/Correction. Concrete cone types embed *Engine and expose a
// constructor; see nonnegative.go for the simplest example.
type Engine struct {
	b       Barrier
	useDual bool
	dim     int

	primal []float64
	dual   []float64

	feasSet, feasOK bool

	gradSet bool
	grad    []float64 // ∇F(s) in the engine's active orientation, un-negated

	hessSet bool
	hess    *mat.SymDense
	chol    mat.Cholesky
	cholOK  bool

	// shadow is the recovered point in the OTHER orientation: when
	// useDual is false it is unused; when useDual is true it is the s
	// with ∇F(s) = -primal, found by Newton inversion, and it is what
	// Grad/HessProd actually evaluate F at.
	shadow   []float64
	shadowOK bool

	// corrSplus, corrSminus, corrHplus, corrHminus, corrOut are scratch
	// buffers for Correction, allocated once and reused across calls
	// (mirroring how hess/chol are reused by ensureHess).
	corrSplus, corrSminus, corrHplus, corrHminus, corrOut []float64
}

// NewEngine constructs an Engine around b, oriented as the primal barrier
// (useDual = false). Call SetDual to flip the orientation for a cone
// variant that represents the conjugate barrier (e.g. the nuclear-norm
// epigraph is the dual of the spectral-norm epigraph).
func NewEngine(b Barrier) *Engine {
	return &Engine{b: b, dim: b.Dim()}
}

// SetDual flips the engine to evaluate the conjugate barrier F* instead of
// F. Must be called before the first LoadPoint.
func (e *Engine) SetDual(dual bool) { e.useDual = dual }

func (e *Engine) Dimension() int { return e.dim }
func (e *Engine) Nu() float64    { return e.b.Nu() }

func (e *Engine) SetInitialPoint(arr []float64) {
	e.b.InitialPoint(arr)
}

func (e *Engine) LoadPoint(p []float64) {
	if e.primal == nil {
		e.primal = make([]float64, e.dim)
	}
	copy(e.primal, p)
	e.ResetData()
}

func (e *Engine) LoadDualPoint(d []float64) {
	if e.dual == nil {
		e.dual = make([]float64, e.dim)
	}
	copy(e.dual, d)
}

func (e *Engine) RescalePoint(alpha float64) {
	for i := range e.primal {
		e.primal[i] *= alpha
	}
	e.ResetData()
}

func (e *Engine) ResetData() {
	e.feasSet, e.gradSet, e.hessSet, e.cholOK, e.shadowOK = false, false, false, false, false
}

// evalPoint returns the point at which the active barrier (F if !useDual,
// F* if useDual) is actually evaluated: the loaded point directly, or, for
// a dual-oriented engine, the Newton-recovered shadow primal point.
func (e *Engine) evalPoint() ([]float64, bool) {
	if !e.useDual {
		return e.primal, true
	}
	if !e.shadowOK {
		s, ok := newtonConjugate(e.b, e.primal)
		e.shadow = s
		e.shadowOK = ok
	}
	return e.shadow, e.shadowOK
}

func (e *Engine) IsFeas() bool {
	if e.feasSet {
		return e.feasOK
	}
	e.feasSet = true
	s, ok := e.evalPoint()
	if !ok {
		e.feasOK = false
		return false
	}
	e.feasOK = e.b.Feasible(s)
	return e.feasOK
}

// IsDualFeas reports whether the loaded dual point is feasible for K* (if
// this engine is primal-oriented) or for K (if dual-oriented): exactly the
// feasibility test of the OTHER orientation, evaluated at e.dual.
func (e *Engine) IsDualFeas() bool {
	if e.dual == nil {
		return false
	}
	if !e.useDual {
		s, ok := newtonConjugate(e.b, e.dual)
		return ok && e.b.Feasible(s)
	}
	return e.b.Feasible(e.dual)
}

func (e *Engine) Grad() []float64 {
	if e.gradSet {
		return e.grad
	}
	if e.grad == nil {
		e.grad = make([]float64, e.dim)
	}
	s, ok := e.evalPoint()
	if !ok {
		for i := range e.grad {
			e.grad[i] = 0
		}
		e.gradSet = true
		return e.grad
	}
	g := make([]float64, e.dim)
	e.b.Grad(s, g)
	if !e.useDual {
		for i, v := range g {
			e.grad[i] = -v
		}
	} else {
		// ∇F*(z) = -s.
		for i, v := range s {
			e.grad[i] = -v
		}
		_ = g
	}
	e.gradSet = true
	return e.grad
}

func (e *Engine) HessProd(out, v []float64) {
	s, ok := e.evalPoint()
	if !ok {
		for i := range out {
			out[i] = 0
		}
		return
	}
	if !e.useDual {
		e.b.HessProd(s, v, out)
		return
	}
	// ∇²F*(z)·v = (∇²F(s))⁻¹·v: solve the primal Hessian system at the
	// shadow point.
	e.ensureHess(s)
	e.invHessProdViaChol(out, v)
}

func (e *Engine) InvHessProd(out, v []float64) {
	s, ok := e.evalPoint()
	if !ok {
		for i := range out {
			out[i] = 0
		}
		return
	}
	if e.useDual {
		e.b.HessProd(s, v, out)
		return
	}
	e.ensureHess(s)
	e.invHessProdViaChol(out, v)
}

// ensureHess materializes the Hessian of the PRIMAL barrier b at s (the
// active evaluation point) by applying HessProd to each standard basis
// vector, and factors it with a dense Cholesky (valid since the barrier
// Hessian is SPD at any feasible point of F).
func (e *Engine) ensureHess(s []float64) {
	if e.hessSet {
		return
	}
	if e.hess == nil {
		e.hess = mat.NewSymDense(e.dim, nil)
	}
	v := make([]float64, e.dim)
	col := make([]float64, e.dim)
	for j := 0; j < e.dim; j++ {
		for i := range v {
			v[i] = 0
		}
		v[j] = 1
		e.b.HessProd(s, v, col)
		for i := j; i < e.dim; i++ {
			e.hess.SetSym(i, j, col[i])
		}
	}
	e.hessSet = true
	e.cholOK = e.chol.Factorize(e.hess)
}

func (e *Engine) invHessProdViaChol(out, v []float64) {
	if !e.cholOK {
		// Conservative fallback: the stepper never calls this on an
		// infeasible point, but guard against NaNs regardless.
		for i := range out {
			out[i] = 0
		}
		return
	}
	rhs := mat.NewVecDense(e.dim, v)
	dst := mat.NewVecDense(e.dim, out)
	e.chol.SolveVecTo(dst, rhs)
}

func (e *Engine) Hess() Symmetric {
	s, ok := e.evalPoint()
	if !ok {
		return mat.NewSymDense(e.dim, nil)
	}
	if !e.useDual {
		e.ensureHess(s)
		return e.hess
	}
	// The dual Hessian is the inverse of the primal one at the shadow
	// point: materialize it by applying InvHessProd (i.e. the primal
	// inverse) to each basis vector.
	e.ensureHess(s)
	dual := mat.NewSymDense(e.dim, nil)
	basis := make([]float64, e.dim)
	col := make([]float64, e.dim)
	for j := 0; j < e.dim; j++ {
		for i := range basis {
			basis[i] = 0
		}
		basis[j] = 1
		e.invHessProdViaChol(col, basis)
		for i := j; i < e.dim; i++ {
			dual.SetSym(i, j, col[i])
		}
	}
	return dual
}

func (e *Engine) InvHess() Symmetric {
	s, ok := e.evalPoint()
	if !ok {
		return mat.NewSymDense(e.dim, nil)
	}
	e.ensureHess(s)
	if !e.useDual {
		inv := mat.NewSymDense(e.dim, nil)
		basis := make([]float64, e.dim)
		col := make([]float64, e.dim)
		for j := 0; j < e.dim; j++ {
			for i := range basis {
				basis[i] = 0
			}
			basis[j] = 1
			e.invHessProdViaChol(col, basis)
			for i := j; i < e.dim; i++ {
				inv.SetSym(i, j, col[i])
			}
		}
		return inv
	}
	return e.hess
}

// InNeighborhood implements spec §4.4's per-cone neighborhood test. With
// useInfty it only checks that every elementwise product s_i*z_i is
// strictly positive; μ and β are not used in that branch. Otherwise it uses
// the quadratic-form deviation ‖H(s)^{-1/2}(z - μ·g(s))‖ ≤ β·μ·√ν, where
// g(s) = -∇F(s) is Grad and H is the primal Hessian — a standard
// central-path neighborhood measure.
func (e *Engine) InNeighborhood(mu, beta float64, useInfty bool) bool {
	if e.dual == nil {
		return false
	}
	if useInfty {
		for i := 0; i < e.dim; i++ {
			p := e.primal[i] * e.dual[i]
			if p <= 0 {
				return false
			}
		}
		return true
	}
	g := e.Grad()
	resid := make([]float64, e.dim)
	for i := range resid {
		resid[i] = e.dual[i] - mu*g[i]
	}
	Hinv := make([]float64, e.dim)
	e.InvHessProd(Hinv, resid)
	var quad float64
	for i := range resid {
		quad += resid[i] * Hinv[i]
	}
	if quad < 0 {
		quad = 0
	}
	return quad <= beta*beta*mu*mu*e.b.Nu()
}

// UseCorrection is true for every Engine-backed cone: the generic
// finite-difference correction below always returns a (possibly zero)
// value.
func (e *Engine) UseCorrection() bool { return true }

// Correction returns a generic third-order directional term via a central
// finite difference of the Hessian-vector product along dir:
//
//	½ D³F(s)[dir,dir] ≈ (1/(4·h)) · (∇²F(s+h·dir) - ∇²F(s-h·dir))·dir.
//
// This avoids hand-deriving a closed-form third derivative for every cone
// variant while still exercising the stepper's predictor-corrector round
// (spec §4.5); Nonnegative, whose correction has a cheap closed form,
// overrides it directly. Both versions write into the Engine's reused
// output buffer.
func (e *Engine) Correction(dir []float64) []float64 {
	if e.corrSplus == nil {
		e.corrSplus = make([]float64, e.dim)
		e.corrSminus = make([]float64, e.dim)
		e.corrHplus = make([]float64, e.dim)
		e.corrHminus = make([]float64, e.dim)
		e.corrOut = make([]float64, e.dim)
	}
	s, ok := e.evalPoint()
	if !ok {
		for i := range e.corrOut {
			e.corrOut[i] = 0
		}
		return e.corrOut
	}
	h := fdStep
	splus, sminus := e.corrSplus, e.corrSminus
	for i := range s {
		splus[i] = s[i] + h*dir[i]
		sminus[i] = s[i] - h*dir[i]
	}
	hplus, hminus := e.corrHplus, e.corrHminus
	e.b.HessProd(splus, dir, hplus)
	e.b.HessProd(sminus, dir, hminus)
	out := e.corrOut
	for i := range out {
		out[i] = (hplus[i] - hminus[i]) / (4 * h)
	}
	return out
}

func (e *Engine) UseDualBarrier() bool { return e.useDual }

// newtonConjugate finds s such that ∇F(s) = -z by damped Newton iteration
// on the strictly convex function φ(s) = F(s) + ⟨z, s⟩, whose gradient is
// ∇F(s) + z and whose Hessian is ∇²F(s) (SPD throughout the domain of F).
// It returns ok = false if the iteration fails to reach the feasible domain
// of F or does not converge within the iteration budget — the conservative
// "return false on any numerical issue" contract of spec §4.2.
func newtonConjugate(b Barrier, z []float64) ([]float64, bool) {
	n := b.Dim()
	s := make([]float64, n)
	b.InitialPoint(s)
	g := make([]float64, n)
	resid := make([]float64, n)
	step := make([]float64, n)
	trial := make([]float64, n)
	hv := make([]float64, n)

	const maxIter = 50
	const tol = 1e-10

	for iter := 0; iter < maxIter; iter++ {
		if !b.Feasible(s) {
			return nil, false
		}
		b.Grad(s, g)
		var residNorm2 float64
		for i := range resid {
			resid[i] = g[i] + z[i]
			residNorm2 += resid[i] * resid[i]
		}
		if residNorm2 < tol*tol {
			return s, true
		}

		// Materialize the Hessian at s and solve H·step = resid.
		H := mat.NewSymDense(n, nil)
		basis := make([]float64, n)
		col := make([]float64, n)
		for j := 0; j < n; j++ {
			for i := range basis {
				basis[i] = 0
			}
			basis[j] = 1
			b.HessProd(s, basis, col)
			for i := j; i < n; i++ {
				H.SetSym(i, j, col[i])
			}
		}
		var chol mat.Cholesky
		if ok := chol.Factorize(H); !ok {
			return nil, false
		}
		dst := mat.NewVecDense(n, step)
		if err := chol.SolveVecTo(dst, mat.NewVecDense(n, resid)); err != nil {
			return nil, false
		}

		// Backtracking line search keeping s feasible and decreasing
		// the residual norm.
		t := 1.0
		accepted := false
		for lsIter := 0; lsIter < 30; lsIter++ {
			for i := range trial {
				trial[i] = s[i] - t*step[i]
			}
			if b.Feasible(trial) {
				b.Grad(trial, hv)
				var newNorm2 float64
				for i := range hv {
					d := hv[i] + z[i]
					newNorm2 += d * d
				}
				if newNorm2 < residNorm2 || t < 1e-8 {
					copy(s, trial)
					accepted = true
					break
				}
			}
			t *= 0.5
		}
		if !accepted {
			return nil, false
		}
	}
	return nil, false
}
