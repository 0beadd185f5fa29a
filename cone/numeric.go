// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

// Several of the more intricate cone variants have a closed-form gradient
// but a Hessian that is considerably more involved to derive by hand; their
// barriers obtain HessProd from numericHessProdFromGrad, a central finite
// difference of that gradient. EpiTraceRelEntropy's barrier supplies only a
// Value function, and numericGradFromValue and numericHessProdFromValue
// supply its Grad and HessProd by central finite differences of that value
// — a deliberate, disclosed simplification (see DESIGN.md) rather than a
// per-cone closed-form derivation.

const valueFDStep = 1e-6

// numericGradFromValue fills g with a central-difference gradient of value
// at s.
func numericGradFromValue(value func(s []float64) float64, s, g []float64) {
	n := len(s)
	work := make([]float64, n)
	copy(work, s)
	for i := 0; i < n; i++ {
		h := valueFDStep * maxAbs1(s[i])
		orig := work[i]
		work[i] = orig + h
		fp := value(work)
		work[i] = orig - h
		fm := value(work)
		work[i] = orig
		g[i] = (fp - fm) / (2 * h)
	}
}

// numericHessProdFromValue applies a Hessian-vector product by a second
// central difference of value along two perturbation directions (the
// standard "directional second difference" estimator), reusing at most
// O(n) extra evaluations by restricting the second difference to the
// requested direction v rather than materializing the full Hessian.
func numericHessProdFromValue(value func(s []float64) float64, s, v, out []float64) {
	n := len(s)
	h := valueFDStep
	splus := make([]float64, n)
	sminus := make([]float64, n)
	s0 := make([]float64, n)
	copy(s0, s)
	for i := 0; i < n; i++ {
		splus[i] = s[i] + h*v[i]
		sminus[i] = s[i] - h*v[i]
	}
	gplus := make([]float64, n)
	gminus := make([]float64, n)
	numericGradFromValue(value, splus, gplus)
	numericGradFromValue(value, sminus, gminus)
	for i := range out {
		out[i] = (gplus[i] - gminus[i]) / (2 * h)
	}
	_ = s0
}

// numericHessProdFromGrad applies a Hessian-vector product by central
// differencing an analytically-known gradient along v directly, avoiding
// the extra layer of differencing in numericHessProdFromValue when Grad is
// already available in closed form.
func numericHessProdFromGrad(grad func(s, g []float64), s, v, out []float64) {
	n := len(s)
	h := valueFDStep
	splus := make([]float64, n)
	sminus := make([]float64, n)
	for i := 0; i < n; i++ {
		splus[i] = s[i] + h*v[i]
		sminus[i] = s[i] - h*v[i]
	}
	gplus := make([]float64, n)
	gminus := make([]float64, n)
	grad(splus, gplus)
	grad(sminus, gminus)
	for i := range out {
		out[i] = (gplus[i] - gminus[i]) / (2 * h)
	}
}

func maxAbs1(x float64) float64 {
	a := x
	if a < 0 {
		a = -a
	}
	if a < 1 {
		a = 1
	}
	return a
}
