// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coneprog

import "gonum.org/v1/gonum/floats"

// Residuals holds the scaled HSD residuals of spec §3:
//
//	r_x = -Aᵀy - Gᵀz - cτ
//	r_y = Ax - bτ
//	r_z = s + Gx - hτ
type Residuals struct {
	RX, RY, RZ []float64
}

// NewResiduals allocates zero Residuals of the given dimensions.
func NewResiduals(n, p, q int) *Residuals {
	return &Residuals{
		RX: make([]float64, n),
		RY: make([]float64, p),
		RZ: make([]float64, q),
	}
}

// Compute fills r from the model and point.
func (r *Residuals) Compute(m *Model, pt *Point) {
	n, p, q := m.Dims()

	for i := 0; i < n; i++ {
		r.RX[i] = -m.C.AtVec(i) * pt.Tau
	}
	if m.A != nil {
		for j := 0; j < p; j++ {
			yj := pt.Y[j]
			if yj == 0 {
				continue
			}
			for i := 0; i < n; i++ {
				r.RX[i] -= m.A.At(j, i) * yj
			}
		}
	}
	for j := 0; j < q; j++ {
		zj := pt.Z[j]
		if zj == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			r.RX[i] -= m.G.At(j, i) * zj
		}
	}

	for j := 0; j < p; j++ {
		var axj float64
		for i := 0; i < n; i++ {
			axj += m.A.At(j, i) * pt.X[i]
		}
		r.RY[j] = axj - m.B.AtVec(j)*pt.Tau
	}

	for j := 0; j < q; j++ {
		var gxj float64
		for i := 0; i < n; i++ {
			gxj += m.G.At(j, i) * pt.X[i]
		}
		r.RZ[j] = pt.S[j] + gxj - m.H.AtVec(j)*pt.Tau
	}
}

// ScaledNorms returns (‖r_x‖/τ, ‖r_y‖/τ, ‖r_z‖/τ).
func (r *Residuals) ScaledNorms(tau float64) (rx, ry, rz float64) {
	return floats.Norm(r.RX, 2) / tau, floats.Norm(r.RY, 2) / tau, floats.Norm(r.RZ, 2) / tau
}
