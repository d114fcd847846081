package tdr

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/TH1622EE/scikit-rf/rf"
)

// peelZ0 is the reference impedance used by the lossless peeling
// primitive.
const peelZ0 = 50.0

// discreteOmega returns the normalized per-sample angular frequencies
// pi*(k+1)/n, the phase advance of one time-domain sample interval at
// each frequency bin.
func discreteOmega(n int) []float64 {
	out := make([]float64, n)
	for k := range out {
		out[k] = math.Pi * float64(k+1) / float64(n)
	}
	return out
}

// delay2Port builds the off-diagonal pure-delay 2-port with the given
// per-frequency transmission values.
func delay2Port(freq rf.Frequency, z0 []float64, delay []complex128) *rf.Network {
	out := rf.New(freq, 2)
	copy(out.Z0, z0)
	for k := range out.S {
		out.S[k][1] = delay[k]
		out.S[k][2] = delay[k]
	}
	return out
}

// ShiftPoints delays a 2-port by the given number of time-domain sample
// intervals, applying half the phase ramp on each side so transmission
// shifts by the full count and each reflection by its round trip.
// Negative counts advance the network.
func ShiftPoints(n *rf.Network, points float64) (*rf.Network, error) {
	if n.NPorts() != 2 {
		return nil, rf.ErrPortCount
	}
	spd := shiftNetwork(n, points)
	out, err := spd.Cascade(n)
	if err != nil {
		return nil, err
	}
	return out.Cascade(spd)
}

// ShiftPort applies the half phase ramp on one side only.
func ShiftPort(n *rf.Network, points float64, port int) (*rf.Network, error) {
	if n.NPorts() != 2 {
		return nil, rf.ErrPortCount
	}
	if port != 0 && port != 1 {
		return nil, fmt.Errorf("%w: port %d", ErrBadInput, port)
	}
	spd := shiftNetwork(n, points)
	if port == 0 {
		return spd.Cascade(n)
	}
	return n.Cascade(spd)
}

func shiftNetwork(n *rf.Network, points float64) *rf.Network {
	omega := discreteOmega(n.NPoints())
	delay := make([]complex128, len(omega))
	for k, w := range omega {
		delay[k] = cmplx.Exp(complex(0, -points*w/2))
	}
	return delay2Port(n.Freq, n.Z0, delay)
}

// PeelLossless strips count single-sample lossless line segments from
// both sides of a 2-port. Each step measures the local impedance at both
// ports, synthesizes a matching half-length segment per side, removes it
// from the residual and accumulates it into the per-side error boxes.
func PeelLossless(nin *rf.Network, count int, cfg DCConfig) (residual, side1, side2 *rf.Network, err error) {
	if nin.NPorts() != 2 {
		return nil, nil, nil, rf.ErrPortCount
	}
	nf := nin.NPoints()
	gamma := make([]complex128, nf)
	for k, w := range discreteOmega(nf) {
		gamma[k] = complex(0, w)
	}

	residual = nin.Clone()
	for i := 0; i < count; i++ {
		z1, err := PortImpedance(residual.Param(0, 0), residual.Freq, peelZ0, cfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("tdr: peel step %d: %w", i, err)
		}
		z2, err := PortImpedance(residual.Param(1, 1), residual.Freq, peelZ0, cfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("tdr: peel step %d: %w", i, err)
		}
		tl1, err := Line(residual.Freq, z1, peelZ0, gamma, 0.5)
		if err != nil {
			return nil, nil, nil, err
		}
		tl2, err := Line(residual.Freq, z2, peelZ0, gamma, 0.5)
		if err != nil {
			return nil, nil, nil, err
		}

		residual, err = stripSegments(residual, tl1, tl2)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("tdr: peel step %d: %w", i, err)
		}
		if i == 0 {
			side1 = tl1
			side2 = tl2
		} else {
			if side1, err = side1.Cascade(tl1); err != nil {
				return nil, nil, nil, err
			}
			if side2, err = tl2.Cascade(side2); err != nil {
				return nil, nil, nil, err
			}
		}
	}
	if side1 == nil {
		side1 = rf.Thru(nin.Freq)
		side2 = rf.Thru(nin.Freq)
	}
	return residual, side1, side2, nil
}

// stripSegments removes one synthesized segment from each side of the
// residual: tl1^-1 ++ residual ++ flip(tl2)^-1.
func stripSegments(residual, tl1, tl2 *rf.Network) (*rf.Network, error) {
	inv1, err := tl1.Inverse()
	if err != nil {
		return nil, err
	}
	inv2, err := tl2.Flipped().Inverse()
	if err != nil {
		return nil, err
	}
	out, err := inv1.Cascade(residual)
	if err != nil {
		return nil, err
	}
	return out.Cascade(inv2)
}
