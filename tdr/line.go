package tdr

import (
	"fmt"
	"math/cmplx"

	"github.com/TH1622EE/scikit-rf/rf"
)

// Line synthesizes a reciprocal lossy transmission-line 2-port of the
// given electrical length from a local line impedance zline, a
// per-frequency propagation constant gamma (per unit length) and the
// reference impedance z0:
//
//	s11 = s22 = (zl^2 - z0^2)*sinh(g*l) / D
//	s21 = s12 = 2*z0*zl / D
//	D = (zl^2 + z0^2)*sinh(g*l) + 2*z0*zl*cosh(g*l)
func Line(freq rf.Frequency, zline, z0 float64, gamma []complex128, length float64) (*rf.Network, error) {
	if len(gamma) != len(freq) {
		return nil, fmt.Errorf("%w: %d gamma values for %d samples", ErrBadInput, len(gamma), len(freq))
	}
	zl := complex(zline, 0)
	zr := complex(z0, 0)
	zl2 := zl * zl
	zr2 := zr * zr

	out := rf.New(freq, 2)
	for i := range out.Z0 {
		out.Z0[i] = z0
	}
	for k := range out.S {
		gl := gamma[k] * complex(length, 0)
		sh := cmplx.Sinh(gl)
		ch := cmplx.Cosh(gl)
		den := (zl2+zr2)*sh + 2*zr*zl*ch
		refl := (zl2 - zr2) * sh / den
		tran := 2 * zr * zl / den
		out.S[k][0] = refl
		out.S[k][1] = tran
		out.S[k][2] = tran
		out.S[k][3] = refl
	}
	return out, nil
}
