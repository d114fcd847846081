package tdr

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/TH1622EE/scikit-rf/rf"
)

// NRP measures the reflection phase of each port at the top frequency
// bin, folds it into (-pi/2, pi/2], and derives the sub-sample delay
// that moves the Nyquist-rate phase onto a multiple of pi. Half of each
// port's delay is applied as an off-diagonal phase-ramp 2-port on the
// matching side. The returned delays are reapplied per side after
// fixture extraction so the error boxes preserve the total delay.
func NRP(nin *rf.Network) (*rf.Network, []float64, error) {
	if nin.NPorts() != 2 {
		return nil, nil, rf.ErrPortCount
	}
	nf := nin.NPoints()
	if nf == 0 {
		return nil, nil, fmt.Errorf("%w: empty network", ErrBadInput)
	}
	fend := nin.Freq[nf-1]

	td := make([]float64, 2)
	out := nin
	var err error
	for port := 0; port < 2; port++ {
		theta0 := cmplx.Phase(nin.At(nf-1, port, port))
		var theta float64
		switch {
		case theta0 < -math.Pi/2:
			theta = -math.Pi - theta0
		case theta0 > math.Pi/2:
			theta = math.Pi - theta0
		default:
			theta = -theta0
		}
		td[port] = -theta / (2 * math.Pi * fend)
		out, err = applyDelay(out, nin.Freq, nin.Z0, td[port], port)
		if err != nil {
			return nil, nil, err
		}
	}
	return out, td, nil
}

// ApplyNRP reapplies the recorded half-delay of one port to a network,
// restoring the delay share of that side of the fixture.
func ApplyNRP(nin *rf.Network, td []float64, port int) (*rf.Network, error) {
	if nin.NPorts() != 2 {
		return nil, rf.ErrPortCount
	}
	if port < 0 || port >= len(td) {
		return nil, fmt.Errorf("%w: port %d", ErrBadInput, port)
	}
	return applyDelay(nin, nin.Freq, nin.Z0, td[port], port)
}

func applyDelay(n *rf.Network, freq rf.Frequency, z0 []float64, td float64, port int) (*rf.Network, error) {
	delay := make([]complex128, len(freq))
	for k, f := range freq {
		delay[k] = cmplx.Exp(complex(0, -2*math.Pi*f*td/2))
	}
	spd := delay2Port(freq, z0, delay)
	if port == 0 {
		return spd.Cascade(n)
	}
	return n.Cascade(spd)
}
