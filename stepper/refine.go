// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stepper

import (
	"math"

	"github.com/coneprog/coneprog/kktsolver"
)

// defect evaluates the full Newton system (the symmetrized rows 2-3 of spec
// §4.3's block matrix, plus the unflipped objective row and the per-cone
// and κ scalar equations) at the candidate direction dir and writes
// rhs-intended minus actual into out, reusing out's storage.
func defect(data *kktsolver.Data, rhs *kktsolver.RHS, dir *kktsolver.Dir, mu, tau float64, out *kktsolver.RHS) {
	n, p, q := data.Dims()

	for i := 0; i < n; i++ {
		out.RX[i] = data.C.AtVec(i) * dir.Tau
	}
	if data.A != nil {
		for j := 0; j < p; j++ {
			yj := dir.Y[j]
			if yj == 0 {
				continue
			}
			for i := 0; i < n; i++ {
				out.RX[i] += data.A.At(j, i) * yj
			}
		}
	}
	for j := 0; j < q; j++ {
		zj := dir.Z[j]
		if zj == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			out.RX[i] += data.G.At(j, i) * zj
		}
	}
	for i := 0; i < n; i++ {
		out.RX[i] = rhs.RX[i] - out.RX[i]
	}

	for j := 0; j < p; j++ {
		var axj float64
		for i := 0; i < n; i++ {
			axj += data.A.At(j, i) * dir.X[i]
		}
		out.RY[j] = rhs.RY[j] - (axj - data.B.AtVec(j)*dir.Tau)
	}

	for j := 0; j < q; j++ {
		var gxj float64
		for i := 0; i < n; i++ {
			gxj += data.G.At(j, i) * dir.X[i]
		}
		out.RZ[j] = rhs.RZ[j] - (gxj - data.H.AtVec(j)*dir.Tau + dir.S[j])
	}

	var ctx, bty, htz float64
	for i := 0; i < n; i++ {
		ctx += data.C.AtVec(i) * dir.X[i]
	}
	for j := 0; j < p; j++ {
		bty += data.B.AtVec(j) * dir.Y[j]
	}
	for j := 0; j < q; j++ {
		htz += data.H.AtVec(j) * dir.Z[j]
	}
	out.RTau = rhs.RTau - (-ctx - bty - htz + dir.Kappa)

	for i, k := range data.Cones {
		r := data.ConeIdxs[i]
		d := r.End - r.Start
		hv := make([]float64, d)
		k.HessProd(hv, dir.S[r.Start:r.End])
		for a := 0; a < d; a++ {
			out.RS[r.Start+a] = rhs.RS[r.Start+a] - (mu*hv[a] + dir.Z[r.Start+a])
		}
	}

	out.RKappa = rhs.RKappa - (mu/(tau*tau)*dir.Tau + dir.Kappa)
}

func rhsNorms(r *kktsolver.RHS) (normInf, norm2 float64) {
	upd := func(v float64) {
		a := math.Abs(v)
		if a > normInf {
			normInf = a
		}
		norm2 += v * v
	}
	for _, v := range r.RX {
		upd(v)
	}
	for _, v := range r.RY {
		upd(v)
	}
	for _, v := range r.RZ {
		upd(v)
	}
	for _, v := range r.RS {
		upd(v)
	}
	upd(r.RTau)
	upd(r.RKappa)
	norm2 = math.Sqrt(norm2)
	return normInf, norm2
}

func addDir(dst, delta *kktsolver.Dir) {
	for i := range dst.X {
		dst.X[i] += delta.X[i]
	}
	for i := range dst.Y {
		dst.Y[i] += delta.Y[i]
	}
	for i := range dst.Z {
		dst.Z[i] += delta.Z[i]
	}
	for i := range dst.S {
		dst.S[i] += delta.S[i]
	}
	dst.Tau += delta.Tau
	dst.Kappa += delta.Kappa
}

// refine implements spec §4.4 step 4: apply the LHS operator to dir,
// compare against the RHS that produced it, and solve for a correction up
// to Config.MaxRefine times, keeping a round only if both the ∞-norm and
// 2-norm residuals strictly decreased.
func (st *Stepper) refine(data *kktsolver.Data, branch Branch, dir *kktsolver.Dir, mu, tau float64) error {
	rhs := st.predictRHS
	if branch == Center {
		rhs = st.centerRHS
	}

	if st.refineRHS == nil {
		st.refineRHS = kktsolver.NewRHS(st.n, st.p, st.q)
	}
	def := st.refineRHS
	defect(data, rhs, dir, mu, tau, def)
	infPrev, norm2Prev := rhsNorms(def)

	for iter := 0; iter < st.cfg.MaxRefine; iter++ {
		if infPrev == 0 && norm2Prev == 0 {
			return nil
		}
		if err := st.sys.Solve(data, def, st.refineDir); err != nil {
			return err
		}
		addDir(dir, st.refineDir)

		defect(data, rhs, dir, mu, tau, def)
		infNew, norm2New := rhsNorms(def)
		if infNew < infPrev && norm2New < norm2Prev {
			infPrev, norm2Prev = infNew, norm2New
			continue
		}
		// Refinement round did not help: undo it and stop.
		subDir(dir, st.refineDir)
		return nil
	}
	return nil
}

func subDir(dst, delta *kktsolver.Dir) {
	for i := range dst.X {
		dst.X[i] -= delta.X[i]
	}
	for i := range dst.Y {
		dst.Y[i] -= delta.Y[i]
	}
	for i := range dst.Z {
		dst.Z[i] -= delta.Z[i]
	}
	for i := range dst.S {
		dst.S[i] -= delta.S[i]
	}
	dst.Tau -= delta.Tau
	dst.Kappa -= delta.Kappa
}
