package rf

import (
	"fmt"
	"sort"
)

// Interpolate returns a copy of the network resampled onto target by
// piecewise-linear interpolation of each scattering element (real and
// imaginary parts independently). Queries beyond the grid ends clamp to
// the end samples.
func (n *Network) Interpolate(target Frequency) (*Network, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	out := New(target, n.NPorts())
	copy(out.Z0, n.Z0)
	p := n.NPorts()
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			values := n.Param(i, j)
			interp := interpLinearComplex(n.Freq, values, target)
			if err := out.SetParam(i, j, interp); err != nil {
				return nil, fmt.Errorf("rf: interpolate: %w", err)
			}
		}
	}
	return out, nil
}

func interpLinearComplex(x Frequency, y []complex128, query Frequency) []complex128 {
	out := make([]complex128, len(query))
	last := len(x) - 1
	for i, q := range query {
		switch {
		case q <= x[0]:
			out[i] = y[0]
		case q >= x[last]:
			out[i] = y[last]
		default:
			j := sort.SearchFloat64s(x, q)
			x0, x1 := x[j-1], x[j]
			t := complex((q-x0)/(x1-x0), 0)
			out[i] = y[j-1] + t*(y[j]-y[j-1])
		}
	}
	return out
}
