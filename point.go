// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coneprog

// Point is the iterate (x, y, z, s, τ, κ) of the homogeneous self-dual
// embedding, per spec §3. x, y, z, s are plain slices; SView and ZView expose the
// per-cone sub-slices of s and z by index range without copying.
type Point struct {
	X, Y, Z, S []float64
	Tau, Kappa float64
}

// NewPoint allocates a zero Point of the given dimensions.
func NewPoint(n, p, q int) *Point {
	return &Point{
		X: make([]float64, n),
		Y: make([]float64, p),
		Z: make([]float64, q),
		S: make([]float64, q),
	}
}

// SView returns the sub-slice of S belonging to cone index k.
func (pt *Point) SView(m *Model, k int) []float64 {
	r := m.ConeIdxs[k]
	return pt.S[r.Start:r.End]
}

// ZView returns the sub-slice of Z belonging to cone index k.
func (pt *Point) ZView(m *Model, k int) []float64 {
	r := m.ConeIdxs[k]
	return pt.Z[r.Start:r.End]
}

// Mu returns the complementarity measure μ = (s·z + τκ)/(ν+1).
func (pt *Point) Mu(m *Model) float64 {
	var sz float64
	for i := range pt.S {
		sz += pt.S[i] * pt.Z[i]
	}
	return (sz + pt.Tau*pt.Kappa) / (m.Nu() + 1)
}

// AddScaled sets pt := pt + alpha*dir, including the scalar τ, κ entries.
func (pt *Point) AddScaled(dir *Direction, alpha float64) {
	for i := range pt.X {
		pt.X[i] += alpha * dir.X[i]
	}
	for i := range pt.Y {
		pt.Y[i] += alpha * dir.Y[i]
	}
	for i := range pt.Z {
		pt.Z[i] += alpha * dir.Z[i]
	}
	for i := range pt.S {
		pt.S[i] += alpha * dir.S[i]
	}
	pt.Tau += alpha * dir.Tau
	pt.Kappa += alpha * dir.Kappa
}

// Direction is a Newton direction (x_dir, y_dir, z_dir, s_dir, τ_dir,
// κ_dir), per spec §3.
type Direction struct {
	X, Y, Z, S []float64
	Tau, Kappa float64
}

// NewDirection allocates a zero Direction of the given dimensions.
func NewDirection(n, p, q int) *Direction {
	return &Direction{
		X: make([]float64, n),
		Y: make([]float64, p),
		Z: make([]float64, q),
		S: make([]float64, q),
	}
}

// SView returns the sub-slice of S belonging to cone index k.
func (d *Direction) SView(m *Model, k int) []float64 {
	r := m.ConeIdxs[k]
	return d.S[r.Start:r.End]
}

// ZView returns the sub-slice of Z belonging to cone index k.
func (d *Direction) ZView(m *Model, k int) []float64 {
	r := m.ConeIdxs[k]
	return d.Z[r.Start:r.End]
}
