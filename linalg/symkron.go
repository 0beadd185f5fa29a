// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import "gonum.org/v1/gonum/mat"

// SymKron returns the svec-by-svec matrix M such that M·svec(X) = svec(A X
// Aᵀ) for every symmetric X of the same dimension as A. The result is
// symmetric whenever A is symmetric, and is built by direct application of
// the operator to each svec basis vector rather than from a closed-form
// entry formula, so its correctness follows directly from the defining
// property above.
func SymKron(A mat.Symmetric) *mat.SymDense {
	d := A.SymmetricDim()
	n := SvecDim(d)
	M := mat.NewSymDense(n, nil)

	X := mat.NewSymDense(d, nil)
	tmp := mat.NewDense(d, d, nil)
	AXAt := mat.NewDense(d, d, nil)
	col := make([]float64, n)
	basis := make([]float64, n)

	for m := 0; m < n; m++ {
		for i := range basis {
			basis[i] = 0
		}
		basis[m] = 1
		Smat(X, basis)

		// tmp = A * X, AXAt = tmp * A^T
		tmp.Mul(A, X)
		AXAt.Mul(tmp, A.T())

		AXAtSym := mat.NewSymDense(d, nil)
		for i := 0; i < d; i++ {
			for j := i; j < d; j++ {
				AXAtSym.SetSym(i, j, 0.5*(AXAt.At(i, j)+AXAt.At(j, i)))
			}
		}
		Svec(col, AXAtSym)
		for r := m; r < n; r++ {
			M.SetSym(r, m, col[r])
		}
	}
	return M
}

// EigDotKron returns the svec-by-svec matrix representing the operator
// svec(X) ↦ svec(V (Θ ∘ (Vᵀ X V)) Vᵀ), where Θ is the (elementwise,
// "Hadamard") scaling matrix produced by a separable-spectral cone from its
// eigenvalues and V is the matrix of eigenvectors. Used by the
// epi-per-separable-spectral (matrix form) cone to assemble its Hessian.
func EigDotKron(Theta *mat.Dense, V *mat.Dense) *mat.SymDense {
	d, _ := Theta.Dims()
	n := SvecDim(d)
	M := mat.NewSymDense(n, nil)

	X := mat.NewSymDense(d, nil)
	VtXV := mat.NewDense(d, d, nil)
	had := mat.NewDense(d, d, nil)
	tmp := mat.NewDense(d, d, nil)
	result := mat.NewDense(d, d, nil)
	col := make([]float64, n)
	basis := make([]float64, n)

	for m := 0; m < n; m++ {
		for i := range basis {
			basis[i] = 0
		}
		basis[m] = 1
		Smat(X, basis)

		VtXV.Mul(V.T(), X)
		VtXV.Mul(VtXV, V)
		had.MulElem(Theta, VtXV)
		tmp.Mul(V, had)
		result.Mul(tmp, V.T())

		resultSym := mat.NewSymDense(d, nil)
		for i := 0; i < d; i++ {
			for j := i; j < d; j++ {
				resultSym.SetSym(i, j, 0.5*(result.At(i, j)+result.At(j, i)))
			}
		}
		Svec(col, resultSym)
		for r := m; r < n; r++ {
			M.SetSym(r, m, col[r])
		}
	}
	return M
}
