// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stepper

import (
	"math"

	"github.com/coneprog/coneprog/kktsolver"
)

// startAlpha computes the spec §4.4 step-5 starting trial α: the previous
// successful α grown by AlphaCeilingGrowth but capped at 1, then clipped by
// -τ/τ_dir and -κ/κ_dir whenever those directions are negative, and scaled
// by 0.9999 to stay strictly inside the boundary.
func (st *Stepper) startAlpha(tau, kappa float64, dir *kktsolver.Dir) float64 {
	alpha := math.Min(1, st.prevAlpha*st.cfg.AlphaCeilingGrowth)
	if dir.Tau < 0 {
		alpha = math.Min(alpha, -tau/dir.Tau)
	}
	if dir.Kappa < 0 {
		alpha = math.Min(alpha, -kappa/dir.Kappa)
	}
	return 0.9999 * alpha
}

// lineSearch implements spec §4.4 step 5: backtrack α until the trial point
// satisfies the positivity, wide-neighborhood and per-cone feasibility
// checks, or give up below AlphaFloor.
func (st *Stepper) lineSearch(data *kktsolver.Data, x, y, z, s []float64, tau, kappa float64, dir *kktsolver.Dir, mu float64) (float64, error) {
	n, p, q := st.n, st.p, st.q
	nu := 0.0
	for _, k := range data.Cones {
		nu += k.Nu()
	}

	trialX := make([]float64, n)
	trialY := make([]float64, p)
	trialZ := make([]float64, q)
	trialS := make([]float64, q)

	alpha := st.startAlpha(tau, kappa, dir)
	const minEps = 1e-12

	for alpha >= st.cfg.AlphaFloor {
		tauP := tau + alpha*dir.Tau
		kappaP := kappa + alpha*dir.Kappa
		if tauP*kappaP <= minEps {
			alpha *= st.cfg.AlphaBacktrack
			continue
		}

		for i := 0; i < n; i++ {
			trialX[i] = x[i] + alpha*dir.X[i]
		}
		for i := 0; i < p; i++ {
			trialY[i] = y[i] + alpha*dir.Y[i]
		}
		for i := 0; i < q; i++ {
			trialZ[i] = z[i] + alpha*dir.Z[i]
			trialS[i] = s[i] + alpha*dir.S[i]
		}

		var sz float64
		ok := true
		for i, k := range data.Cones {
			r := data.ConeIdxs[i]
			var szk float64
			for idx := r.Start; idx < r.End; idx++ {
				szk += trialS[idx] * trialZ[idx]
			}
			if szk <= minEps || szk < st.cfg.BetaMin*mu*k.Nu() {
				ok = false
				break
			}
			sz += szk
		}
		if !ok {
			alpha *= st.cfg.AlphaBacktrack
			continue
		}

		muP := (sz + tauP*kappaP) / (nu + 1)
		if muP <= minEps {
			alpha *= st.cfg.AlphaBacktrack
			continue
		}
		if math.Abs(tauP*kappaP-muP) > st.cfg.BetaMax*muP {
			alpha *= st.cfg.AlphaBacktrack
			continue
		}

		rt := math.Sqrt(muP)
		feasible := true
		for i, k := range data.Cones {
			r := data.ConeIdxs[i]
			k.LoadPoint(trialS[r.Start:r.End])
			k.RescalePoint(1 / rt)
			k.LoadDualPoint(trialZ[r.Start:r.End])
			k.ResetData()
			if !k.IsFeas() || !k.IsDualFeas() || !k.InNeighborhood(muP, st.cfg.BetaMax, st.cfg.UseInftyNbhd) {
				feasible = false
				break
			}
		}
		if !feasible {
			alpha *= st.cfg.AlphaBacktrack
			continue
		}

		st.prevAlpha = alpha
		return alpha, nil
	}

	return 0, &ErrNumericalFailure{Reason: "line search exhausted backtracking budget"}
}
