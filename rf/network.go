package rf

import (
	"errors"
	"fmt"
)

// DefaultZ0 is the system reference impedance in ohm.
const DefaultZ0 = 50.0

// Network errors.
var (
	ErrPortCount     = errors.New("rf: operation requires a 2-port network")
	ErrShapeMismatch = errors.New("rf: network shape mismatch")
	ErrGridMismatch  = errors.New("rf: frequency grids differ")
)

// Network is a frequency-dependent multiport described by one complex
// scattering matrix per grid sample, referenced to a real per-port
// impedance.
type Network struct {
	// Freq is the sample grid shared by all matrices.
	Freq Frequency
	// Z0 holds the real reference impedance of each port.
	Z0 []float64
	// S holds one row-major nports*nports scattering matrix per sample.
	S [][]complex128
}

// New creates a zero-valued network over freq with the given port count,
// referenced to DefaultZ0 on every port.
func New(freq Frequency, nports int) *Network {
	z0 := make([]float64, nports)
	for i := range z0 {
		z0[i] = DefaultZ0
	}
	s := make([][]complex128, len(freq))
	for k := range s {
		s[k] = make([]complex128, nports*nports)
	}
	return &Network{Freq: freq.Clone(), Z0: z0, S: s}
}

// Thru creates an ideal 2-port thru (s21 = s12 = 1) over freq.
func Thru(freq Frequency) *Network {
	n := New(freq, 2)
	for k := range n.S {
		n.S[k][1] = 1
		n.S[k][2] = 1
	}
	return n
}

// NPorts returns the port count.
func (n *Network) NPorts() int { return len(n.Z0) }

// NPoints returns the number of frequency samples.
func (n *Network) NPoints() int { return len(n.Freq) }

// At returns the scattering element S[i][j] at frequency sample k.
func (n *Network) At(k, i, j int) complex128 {
	return n.S[k][i*n.NPorts()+j]
}

// Set writes the scattering element S[i][j] at frequency sample k.
func (n *Network) Set(k, i, j int, v complex128) {
	n.S[k][i*n.NPorts()+j] = v
}

// Param returns the frequency sweep of one scattering element as a slice.
func (n *Network) Param(i, j int) []complex128 {
	out := make([]complex128, n.NPoints())
	p := n.NPorts()
	for k := range out {
		out[k] = n.S[k][i*p+j]
	}
	return out
}

// SetParam writes one scattering element across all frequency samples.
func (n *Network) SetParam(i, j int, values []complex128) error {
	if len(values) != n.NPoints() {
		return fmt.Errorf("%w: %d values for %d samples", ErrShapeMismatch, len(values), n.NPoints())
	}
	p := n.NPorts()
	for k, v := range values {
		n.S[k][i*p+j] = v
	}
	return nil
}

// Clone returns a deep copy of the network.
func (n *Network) Clone() *Network {
	out := &Network{
		Freq: n.Freq.Clone(),
		Z0:   make([]float64, len(n.Z0)),
		S:    make([][]complex128, len(n.S)),
	}
	copy(out.Z0, n.Z0)
	for k := range n.S {
		out.S[k] = make([]complex128, len(n.S[k]))
		copy(out.S[k], n.S[k])
	}
	return out
}

// Flipped returns a copy with the port order reversed. For a 2-port this
// swaps s11 with s22 and s12 with s21.
func (n *Network) Flipped() *Network {
	p := n.NPorts()
	out := n.Clone()
	for i := 0; i < p; i++ {
		out.Z0[i] = n.Z0[p-1-i]
	}
	for k := range n.S {
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				out.S[k][i*p+j] = n.S[k][(p-1-i)*p+(p-1-j)]
			}
		}
	}
	return out
}

func (n *Network) sameShape(other *Network) error {
	if n.NPorts() != other.NPorts() {
		return fmt.Errorf("%w: %d vs %d ports", ErrShapeMismatch, n.NPorts(), other.NPorts())
	}
	if !n.Freq.Equal(other.Freq) {
		return ErrGridMismatch
	}
	return nil
}
