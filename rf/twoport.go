package rf

import (
	"fmt"
	"math"
)

const z0MatchTol = 1e-9

// Cascade connects port 2 of n to port 1 of other and returns the
// combined 2-port. Both networks must share the frequency grid; if the
// reference impedances differ, other is renormalized to n's reference
// first.
func (n *Network) Cascade(other *Network) (*Network, error) {
	if n.NPorts() != 2 || other.NPorts() != 2 {
		return nil, ErrPortCount
	}
	if !n.Freq.Equal(other.Freq) {
		return nil, ErrGridMismatch
	}
	if !sameZ0(n.Z0, other.Z0) {
		other = other.Clone()
		if err := other.Renormalize(n.Z0[0]); err != nil {
			return nil, err
		}
	}

	out := New(n.Freq, 2)
	copy(out.Z0, n.Z0)
	for k := range n.S {
		ta, err := toT(n.S[k])
		if err != nil {
			return nil, fmt.Errorf("rf: cascade at sample %d: %w", k, err)
		}
		tb, err := toT(other.S[k])
		if err != nil {
			return nil, fmt.Errorf("rf: cascade at sample %d: %w", k, err)
		}
		out.S[k] = fromT(matMul(ta, tb, 2))
	}
	return out, nil
}

// Inverse returns the network that cancels n under cascading: the result
// satisfies Inverse(n) ++ n == ideal thru. This is the building block of
// error-box removal.
func (n *Network) Inverse() (*Network, error) {
	if n.NPorts() != 2 {
		return nil, ErrPortCount
	}
	out := New(n.Freq, 2)
	copy(out.Z0, n.Z0)
	for k := range n.S {
		t, err := toT(n.S[k])
		if err != nil {
			return nil, fmt.Errorf("rf: inverse at sample %d: %w", k, err)
		}
		inv, err := matInv(t, 2)
		if err != nil {
			return nil, fmt.Errorf("rf: inverse at sample %d: %w", k, err)
		}
		out.S[k] = fromT(inv)
	}
	return out, nil
}

// toT converts a 2x2 scattering matrix to its wave cascading matrix.
func toT(s []complex128) ([]complex128, error) {
	s11, s12, s21, s22 := s[0], s[1], s[2], s[3]
	if s21 == 0 {
		return nil, fmt.Errorf("%w: no transmission (s21 = 0)", ErrSingular)
	}
	det := s11*s22 - s12*s21
	return []complex128{
		-det / s21, s11 / s21,
		-s22 / s21, 1 / s21,
	}, nil
}

// fromT converts a wave cascading matrix back to scattering form.
func fromT(t []complex128) []complex128 {
	t11, t12, t21, t22 := t[0], t[1], t[2], t[3]
	det := t11*t22 - t12*t21
	return []complex128{
		t12 / t22, det / t22,
		1 / t22, -t21 / t22,
	}
}

func sameZ0(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > z0MatchTol {
			return false
		}
	}
	return true
}
