package tdr

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-vecmath"

	"github.com/TH1622EE/scikit-rf/internal/fftutil"
)

// Package errors.
var (
	ErrBadInput       = errors.New("tdr: invalid input")
	ErrNonConvergence = errors.New("tdr: dc solver did not converge")
)

// flatnessOffset is the early-time instant at which the causal DC solver
// forces the step response to zero, well before any physical reflection.
const flatnessOffset = -3e-9

// secantProbe is the DC perturbation used to estimate the secant slope.
const secantProbe = 0.001

// dcSeed starts the secant iteration.
const dcSeed = 0.002

// DCConfig controls the causal DC-point solver.
type DCConfig struct {
	// Tol is the allowed residual of the step response at the
	// flatness instant.
	Tol float64
	// MaxIter caps the secant iteration; exceeding it returns
	// ErrNonConvergence.
	MaxIter int
}

// DefaultDCConfig returns the solver settings used by the
// single-measurement fixture split.
func DefaultDCConfig() DCConfig {
	return DCConfig{Tol: 1e-12, MaxIter: 50}
}

// Symmetric extends a one-sided spectrum (DC value at index 0) to a
// two-sided Hermitian spectrum by mirroring the magnitude and negating
// the phase on the mirrored half. The result has odd length 2n+1 for an
// input of n+1 samples and inverse-transforms to a real sequence.
func Symmetric(oneSided []complex128) []complex128 {
	n := len(oneSided) - 1
	if n < 0 {
		return nil
	}
	re := make([]float64, len(oneSided))
	im := make([]float64, len(oneSided))
	mag := make([]float64, len(oneSided))
	for i, v := range oneSided {
		re[i] = real(v)
		im[i] = imag(v)
	}
	vecmath.Magnitude(mag, re, im)

	out := make([]complex128, 2*n+1)
	for i, v := range oneSided {
		ph := cmplx.Phase(v)
		out[i] = cmplx.Rect(mag[i], ph)
		if i > 0 {
			out[2*n+1-i] = cmplx.Rect(mag[i], -ph)
		}
	}
	return out
}

// Impulse inverse-transforms a two-sided spectrum and returns the real
// part. With shifted set, t = 0 is rolled to the middle of the slice.
func Impulse(spectrum []complex128, shifted bool) ([]float64, error) {
	td, err := fftutil.Inverse(spectrum)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(td))
	for i, v := range td {
		out[i] = real(v)
	}
	if shifted {
		out = fftutil.FFTShiftReal(out)
	}
	return out, nil
}

// Step returns the running sum of an impulse response.
func Step(impulse []float64) []float64 {
	out := make([]float64, len(impulse))
	sum := 0.0
	for i, v := range impulse {
		sum += v
		out[i] = sum
	}
	return out
}

// DCEstimate extrapolates the DC value of a causal frequency response by
// cubic interpolation through the conjugate-mirrored low-frequency
// samples. The mirror forces a real result.
func DCEstimate(s []complex128, f []float64) (float64, error) {
	if len(s) != len(f) {
		return 0, fmt.Errorf("%w: %d samples for %d frequencies", ErrBadInput, len(s), len(f))
	}
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: dc estimate needs at least 2 samples", ErrBadInput)
	}
	x := []float64{-f[1], -f[0], f[0], f[1]}
	y := []complex128{cmplx.Conj(s[1]), cmplx.Conj(s[0]), s[0], s[1]}

	var acc complex128
	for i := range x {
		l := 1.0
		for j := range x {
			if j != i {
				l *= (0 - x[j]) / (x[i] - x[j])
			}
		}
		acc += complex(l, 0) * y[i]
	}
	return real(acc), nil
}

// NoiseFilter evaluates the COM receiver noise filter (802.3 93A-20)
// over f with corner frequency fr.
func NoiseFilter(f []float64, fr float64) []complex128 {
	out := make([]complex128, len(f))
	for i, fv := range f {
		r := fv / fr
		r2 := r * r
		out[i] = 1 / complex(1-3.414214*r2+r2*r2, 2.613126*(r-r2*r))
	}
	return out
}

// SolveDC solves for the unmeasured DC value of a reflection or
// transmission term. The term is low-pass filtered, extended to a
// Hermitian spectrum with a candidate DC value, and the candidate is
// refined by secant iteration until the step response vanishes at a
// fixed instant (~3 ns) before any physical signal, enforcing causal
// flatness. The iteration is capped by cfg.MaxIter.
func SolveDC(s []complex128, f []float64, cfg DCConfig) (float64, error) {
	n := len(s)
	if n < 2 || len(f) != n {
		return 0, fmt.Errorf("%w: dc solve needs a uniform grid of at least 2 samples", ErrBadInput)
	}
	df := f[1] - f[0]
	total := 2*n + 1
	dt := 1 / (df * float64(total))

	// Shifted sample index nearest the flatness instant.
	ts := n + int(math.Round(flatnessOffset/dt))
	if ts < 0 {
		ts = 0
	}
	if ts >= total {
		ts = total - 1
	}

	hr := NoiseFilter(f, f[n-1]/2)
	filtered := make([]complex128, n)
	for i := range filtered {
		filtered[i] = hr[i] * s[i]
	}

	spec := make([]complex128, n+1)
	copy(spec[1:], filtered)
	stepAt := func(dc float64) (float64, error) {
		spec[0] = complex(dc, 0)
		imp, err := Impulse(Symmetric(spec), true)
		if err != nil {
			return 0, err
		}
		return Step(imp)[ts], nil
	}

	dc := dcSeed
	for iter := 0; iter < cfg.MaxIter; iter++ {
		h1, err := stepAt(dc)
		if err != nil {
			return 0, err
		}
		if math.Abs(h1) <= cfg.Tol {
			return dc, nil
		}
		h2, err := stepAt(dc + secantProbe)
		if err != nil {
			return 0, err
		}
		slope := (h2 - h1) / secantProbe
		if slope == 0 {
			return 0, fmt.Errorf("%w: zero secant slope", ErrNonConvergence)
		}
		dc -= h1 / slope
	}
	return 0, fmt.Errorf("%w: residual above %g after %d iterations", ErrNonConvergence, cfg.Tol, cfg.MaxIter)
}

// UnwrapPhase returns a new phase slice with +/-2*pi discontinuities
// removed.
func UnwrapPhase(phase []float64) []float64 {
	if len(phase) == 0 {
		return nil
	}
	out := make([]float64, len(phase))
	out[0] = phase[0]
	offset := 0.0
	for i := 1; i < len(phase); i++ {
		d := phase[i] - phase[i-1]
		switch {
		case d > math.Pi:
			offset -= 2 * math.Pi
		case d < -math.Pi:
			offset += 2 * math.Pi
		}
		out[i] = phase[i] + offset
	}
	return out
}
