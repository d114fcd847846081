package tdr

import "fmt"

// ImpedanceProfile converts a step response into the local impedance
// profile z(t) = -z0*(step(t)+1)/(step(t)-1) seen by a TDR launched
// into reference impedance z0.
func ImpedanceProfile(step []float64, z0 float64) []float64 {
	out := make([]float64, len(step))
	for i, s := range step {
		out[i] = -z0 * (s + 1) / (s - 1)
	}
	return out
}

// PortImpedance extracts the local impedance right at a port from its
// reflection term: the DC point is solved causally, the reflection is
// transformed to a step response, and the impedance profile is sampled
// at the first causal instant after t = 0.
func PortImpedance(s []complex128, f []float64, z0 float64, cfg DCConfig) (float64, error) {
	n := len(s)
	if n < 2 || len(f) != n {
		return 0, fmt.Errorf("%w: port impedance needs a uniform grid of at least 2 samples", ErrBadInput)
	}
	dc, err := SolveDC(s, f, cfg)
	if err != nil {
		return 0, err
	}
	spec := make([]complex128, n+1)
	spec[0] = complex(dc, 0)
	copy(spec[1:], s)
	imp, err := Impulse(Symmetric(spec), true)
	if err != nil {
		return 0, err
	}
	z := ImpedanceProfile(Step(imp), z0)
	return z[n+1], nil
}
