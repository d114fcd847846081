package tdr

import (
	"math"

	"github.com/TH1622EE/scikit-rf/rf"
)

// Grid handling constants.
const (
	// GridTol is the absolute tolerance in Hz between the first
	// sample step and the start frequency below which a grid counts
	// as uniform with an implicit DC origin.
	GridTol = 0.1
	// MaxResamplePoints caps the uniform grid used for time-domain
	// computation on non-uniform inputs.
	MaxResamplePoints = 10000
)

// IsUniform reports whether a DC-free grid is uniformly spaced starting
// one step above DC, the layout required by the time-domain transforms.
func IsUniform(f rf.Frequency) bool {
	if len(f) < 2 {
		return true
	}
	return math.Abs(f[0]-(f[1]-f[0])) <= GridTol
}

// UniformGrid projects a DC-free grid onto a uniform one covering the
// same span. The natural point count fmax/f0 is used when it stays
// within MaxResamplePoints; beyond that the span is divided into
// MaxResamplePoints steps.
func UniformGrid(f rf.Frequency) rf.Frequency {
	fmax := f[len(f)-1]
	count := int(math.Round(fmax / f[0]))
	df := f[0]
	if count > MaxResamplePoints {
		count = MaxResamplePoints
		df = fmax / float64(MaxResamplePoints)
	}
	out := make(rf.Frequency, count)
	for i := range out {
		out[i] = df * float64(i+1)
	}
	return out
}

// StripDC returns the network without its DC sample. The input is
// unchanged; if no DC sample is present, a plain copy is returned.
func StripDC(n *rf.Network) *rf.Network {
	if !n.Freq.HasDC() {
		return n.Clone()
	}
	out := rf.New(n.Freq[1:], n.NPorts())
	copy(out.Z0, n.Z0)
	for k := range out.S {
		copy(out.S[k], n.S[k+1])
	}
	return out
}

// ReinsertDC prepends a DC sample to a network, estimating each element
// at f = 0 from the conjugate-mirrored low-frequency samples.
func ReinsertDC(n *rf.Network) (*rf.Network, error) {
	freq := make(rf.Frequency, n.NPoints()+1)
	copy(freq[1:], n.Freq)

	p := n.NPorts()
	out := rf.New(freq, p)
	copy(out.Z0, n.Z0)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			values := n.Param(i, j)
			dc, err := DCEstimate(values, n.Freq)
			if err != nil {
				return nil, err
			}
			withDC := make([]complex128, len(values)+1)
			withDC[0] = complex(dc, 0)
			copy(withDC[1:], values)
			if err := out.SetParam(i, j, withDC); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
