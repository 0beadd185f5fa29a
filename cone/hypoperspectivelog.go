// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import "math"

// HypoPerspectiveLog is the hypograph of the perspective of the natural
// log, {(u,v,w) ∈ R × R_++ × R_++ : u ≤ v·log(w/v)}, with barrier
//
//	F(u,v,w) = -log(v·log(w/v) - u) - log(v) - log(w),  ν = 3.
//
// This is the three-dimensional cone used to model constraints such as
// x ≥ exp(y) (recovered at v=1): u ≤ log(w) rearranges to w ≥ exp(u).
type HypoPerspectiveLog struct {
	*Engine
	b *hypoPerspectiveLogBarrier
}

type hypoPerspectiveLogBarrier struct{}

// NewHypoPerspectiveLog returns the 3-dimensional hypo-perspective-log cone.
func NewHypoPerspectiveLog() *HypoPerspectiveLog {
	b := &hypoPerspectiveLogBarrier{}
	return &HypoPerspectiveLog{Engine: NewEngine(b), b: b}
}

func (b *hypoPerspectiveLogBarrier) Dim() int    { return 3 }
func (b *hypoPerspectiveLogBarrier) Nu() float64 { return 3 }

func (b *hypoPerspectiveLogBarrier) InitialPoint(arr []float64) {
	arr[0] = -1
	arr[1] = 1
	arr[2] = 1
}

func (b *hypoPerspectiveLogBarrier) perspLog(v, w float64) float64 {
	return v * math.Log(w/v)
}

func (b *hypoPerspectiveLogBarrier) Feasible(s []float64) bool {
	u, v, w := s[0], s[1], s[2]
	if v <= 0 || w <= 0 {
		return false
	}
	return b.perspLog(v, w)-u > 0
}

func (b *hypoPerspectiveLogBarrier) Grad(s, g []float64) {
	u, v, w := s[0], s[1], s[2]
	L := b.perspLog(v, w)
	gap := L - u
	if gap <= 0 || v <= 0 || w <= 0 {
		g[0], g[1], g[2] = 0, 0, 0
		return
	}
	dLdv := math.Log(w/v) - 1
	dLdw := v / w
	g[0] = 1 / gap
	g[1] = -dLdv/gap - 1/v
	g[2] = -dLdw/gap - 1/w
}

func (b *hypoPerspectiveLogBarrier) HessProd(s, v, out []float64) {
	numericHessProdFromGrad(b.Grad, s, v, out)
}
