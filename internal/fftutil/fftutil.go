// Package fftutil provides forward and inverse discrete Fourier
// transforms for arbitrary lengths, together with the index shuffles
// used by time-domain fixture processing.
//
// Power-of-two lengths run directly on algo-fft plans. Other lengths
// (the Hermitian-extended spectra are always odd-length) go through
// Bluestein's chirp-z algorithm, which reduces an N-point DFT to a
// cyclic convolution of power-of-two length.
package fftutil

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// ErrEmptyInput is returned for zero-length transforms.
var ErrEmptyInput = errors.New("fftutil: empty input")

// Forward computes the DFT X[k] = sum_m x[m] exp(-2i*pi*k*m/N) into a
// new slice.
func Forward(x []complex128) ([]complex128, error) {
	n := len(x)
	if n == 0 {
		return nil, ErrEmptyInput
	}
	if n == 1 {
		return []complex128{x[0]}, nil
	}
	if isPowerOf2(n) {
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, fmt.Errorf("fftutil: plan: %w", err)
		}
		out := make([]complex128, n)
		if err := plan.Forward(out, x); err != nil {
			return nil, err
		}
		return out, nil
	}
	return bluestein(x)
}

// Inverse computes the normalized inverse DFT
// x[m] = 1/N * sum_k X[k] exp(2i*pi*k*m/N) into a new slice.
func Inverse(x []complex128) ([]complex128, error) {
	n := len(x)
	if n == 0 {
		return nil, ErrEmptyInput
	}
	if isPowerOf2(n) {
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, fmt.Errorf("fftutil: plan: %w", err)
		}
		out := make([]complex128, n)
		if err := plan.Inverse(out, x); err != nil {
			return nil, err
		}
		return out, nil
	}

	conj := make([]complex128, n)
	for i, v := range x {
		conj[i] = cmplx.Conj(v)
	}
	fwd, err := bluestein(conj)
	if err != nil {
		return nil, err
	}
	scale := complex(1/float64(n), 0)
	for i, v := range fwd {
		fwd[i] = cmplx.Conj(v) * scale
	}
	return fwd, nil
}

// bluestein computes an arbitrary-length DFT as a convolution with a
// chirp sequence. The chirp phase uses m*m mod 2N to keep the argument
// small for large inputs.
func bluestein(x []complex128) ([]complex128, error) {
	n := len(x)
	m := nextPowerOf2(2*n - 1)

	w := make([]complex128, n)
	for i := 0; i < n; i++ {
		phase := math.Pi * float64((i*i)%(2*n)) / float64(n)
		w[i] = cmplx.Exp(complex(0, -phase))
	}

	a := make([]complex128, m)
	b := make([]complex128, m)
	for i := 0; i < n; i++ {
		a[i] = x[i] * w[i]
		conj := cmplx.Conj(w[i])
		b[i] = conj
		if i > 0 {
			b[m-i] = conj
		}
	}

	plan, err := algofft.NewPlan64(m)
	if err != nil {
		return nil, fmt.Errorf("fftutil: plan: %w", err)
	}
	af := make([]complex128, m)
	bf := make([]complex128, m)
	if err := plan.Forward(af, a); err != nil {
		return nil, err
	}
	if err := plan.Forward(bf, b); err != nil {
		return nil, err
	}
	for i := range af {
		af[i] *= bf[i]
	}
	conv := make([]complex128, m)
	if err := plan.Inverse(conv, af); err != nil {
		return nil, err
	}

	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		out[i] = conv[i] * w[i]
	}
	return out, nil
}

// FFTShift rolls the zero-time sample of a transform output to the
// middle of the slice, matching the usual fftshift convention.
func FFTShift(x []complex128) []complex128 {
	return rollComplex(x, len(x)/2)
}

// IFFTShift undoes FFTShift.
func IFFTShift(x []complex128) []complex128 {
	return rollComplex(x, -(len(x) / 2))
}

// FFTShiftReal is FFTShift for real-valued sequences.
func FFTShiftReal(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	out := make([]float64, n)
	shift := n / 2
	for i := range x {
		out[(i+shift)%n] = x[i]
	}
	return out
}

func rollComplex(x []complex128, shift int) []complex128 {
	n := len(x)
	if n == 0 {
		return nil
	}
	out := make([]complex128, n)
	shift = ((shift % n) + n) % n
	for i := range x {
		out[(i+shift)%n] = x[i]
	}
	return out
}

func isPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
