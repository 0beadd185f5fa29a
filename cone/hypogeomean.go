// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

// NewHypoGeoMean returns the hypograph-of-geometric-mean cone
// {(u,w) ∈ R × R^d_++ : u ≤ (Π_i w_i)^{1/d}}, the equal-weight special
// case of HypoPowerMean.
func NewHypoGeoMean(d int) *HypoPowerMean {
	if d < 1 {
		panic("cone: hypogeomean requires d>=1")
	}
	lambda := make([]float64, d)
	for i := range lambda {
		lambda[i] = 1 / float64(d)
	}
	return NewHypoPowerMean(lambda)
}
