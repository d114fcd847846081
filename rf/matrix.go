package rf

import (
	"errors"
	"fmt"
	"math/cmplx"
)

// ErrSingular is returned when a per-frequency matrix cannot be inverted.
var ErrSingular = errors.New("rf: singular matrix")

// matMul computes the product of two n-by-n row-major matrices.
func matMul(a, b []complex128, n int) []complex128 {
	out := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			aik := a[i*n+k]
			if aik == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out[i*n+j] += aik * b[k*n+j]
			}
		}
	}
	return out
}

// matInv inverts an n-by-n row-major matrix by Gauss-Jordan elimination
// with partial pivoting.
func matInv(a []complex128, n int) ([]complex128, error) {
	work := make([]complex128, n*n)
	copy(work, a)
	out := identity(n)

	for col := 0; col < n; col++ {
		pivot := col
		best := cmplx.Abs(work[col*n+col])
		for row := col + 1; row < n; row++ {
			if mag := cmplx.Abs(work[row*n+col]); mag > best {
				best = mag
				pivot = row
			}
		}
		if best == 0 {
			return nil, fmt.Errorf("%w: pivot column %d", ErrSingular, col)
		}
		if pivot != col {
			swapRows(work, n, pivot, col)
			swapRows(out, n, pivot, col)
		}

		inv := 1 / work[col*n+col]
		for j := 0; j < n; j++ {
			work[col*n+j] *= inv
			out[col*n+j] *= inv
		}
		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			factor := work[row*n+col]
			if factor == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				work[row*n+j] -= factor * work[col*n+j]
				out[row*n+j] -= factor * out[col*n+j]
			}
		}
	}
	return out, nil
}

func identity(n int) []complex128 {
	out := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		out[i*n+i] = 1
	}
	return out
}

func swapRows(m []complex128, n, a, b int) {
	for j := 0; j < n; j++ {
		m[a*n+j], m[b*n+j] = m[b*n+j], m[a*n+j]
	}
}
