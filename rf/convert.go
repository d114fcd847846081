package rf

import (
	"fmt"
	"math"
)

// Conversions use the real-impedance pseudo-wave convention with
// D = diag(sqrt(z0)):
//
//	Z = D (I - S)^-1 (I + S) D
//	Y = D^-1 (I + S)^-1 (I - S) D^-1
//
// and the corresponding inverses when writing a Z or Y view back. Going
// through S directly (instead of chaining Y = Z^-1) keeps degenerate
// networks representable: Y = 0 maps to S = I and Z = 0 to S = -I.

// Z returns the per-frequency impedance matrices of the network.
func (n *Network) Z() ([][]complex128, error) {
	p := n.NPorts()
	d := n.sqrtZ0()
	out := make([][]complex128, n.NPoints())
	for k, s := range n.S {
		ips := identity(p)
		ims := identity(p)
		for idx, v := range s {
			ips[idx] += v
			ims[idx] -= v
		}
		inv, err := matInv(ims, p)
		if err != nil {
			return nil, fmt.Errorf("rf: z-conversion at sample %d: %w", k, err)
		}
		m := matMul(inv, ips, p)
		scaleDiag(m, d, d, p)
		out[k] = m
	}
	return out, nil
}

// Y returns the per-frequency admittance matrices of the network.
func (n *Network) Y() ([][]complex128, error) {
	p := n.NPorts()
	d := n.invSqrtZ0()
	out := make([][]complex128, n.NPoints())
	for k, s := range n.S {
		ips := identity(p)
		ims := identity(p)
		for idx, v := range s {
			ips[idx] += v
			ims[idx] -= v
		}
		inv, err := matInv(ips, p)
		if err != nil {
			return nil, fmt.Errorf("rf: y-conversion at sample %d: %w", k, err)
		}
		m := matMul(inv, ims, p)
		scaleDiag(m, d, d, p)
		out[k] = m
	}
	return out, nil
}

// SetZ overwrites the scattering data from per-frequency impedance
// matrices, keeping the current reference impedances.
func (n *Network) SetZ(z [][]complex128) error {
	if len(z) != n.NPoints() {
		return fmt.Errorf("%w: %d matrices for %d samples", ErrShapeMismatch, len(z), n.NPoints())
	}
	p := n.NPorts()
	dinv := n.invSqrtZ0()
	for k := range z {
		if len(z[k]) != p*p {
			return fmt.Errorf("%w: matrix %d has %d entries", ErrShapeMismatch, k, len(z[k]))
		}
		// W = D^-1 Z D^-1, S = (W + I)^-1 (W - I)
		w := make([]complex128, p*p)
		copy(w, z[k])
		scaleDiag(w, dinv, dinv, p)
		wpi := identity(p)
		wmi := make([]complex128, p*p)
		for idx, v := range w {
			wpi[idx] += v
			wmi[idx] = v
		}
		for i := 0; i < p; i++ {
			wmi[i*p+i] -= 1
		}
		inv, err := matInv(wpi, p)
		if err != nil {
			return fmt.Errorf("rf: z-write at sample %d: %w", k, err)
		}
		n.S[k] = matMul(inv, wmi, p)
	}
	return nil
}

// SetY overwrites the scattering data from per-frequency admittance
// matrices, keeping the current reference impedances.
func (n *Network) SetY(y [][]complex128) error {
	if len(y) != n.NPoints() {
		return fmt.Errorf("%w: %d matrices for %d samples", ErrShapeMismatch, len(y), n.NPoints())
	}
	p := n.NPorts()
	d := n.sqrtZ0()
	for k := range y {
		if len(y[k]) != p*p {
			return fmt.Errorf("%w: matrix %d has %d entries", ErrShapeMismatch, k, len(y[k]))
		}
		// W = D Y D, S = (I + W)^-1 (I - W)
		w := make([]complex128, p*p)
		copy(w, y[k])
		scaleDiag(w, d, d, p)
		ipw := identity(p)
		imw := identity(p)
		for idx, v := range w {
			ipw[idx] += v
			imw[idx] -= v
		}
		inv, err := matInv(ipw, p)
		if err != nil {
			return fmt.Errorf("rf: y-write at sample %d: %w", k, err)
		}
		n.S[k] = matMul(inv, imw, p)
	}
	return nil
}

// Renormalize converts the network to a new real reference impedance on
// all ports. The change of reference works in the scattering domain,
//
//	S' = A^-1 (S - G) (I - G S)^-1 A
//
// with G = diag((z0 - z0_p)/(z0 + z0_p)) and A the port scaling
// diag(sqrt(1 - g^2)), so networks without a Z or Y representation, an
// ideal thru among them, renormalize cleanly.
func (n *Network) Renormalize(z0 float64) error {
	if z0 <= 0 {
		return fmt.Errorf("rf: reference impedance must be > 0: %g", z0)
	}
	p := n.NPorts()
	g := make([]complex128, p)
	a := make([]float64, p)
	for i, old := range n.Z0 {
		gv := (z0 - old) / (z0 + old)
		g[i] = complex(gv, 0)
		a[i] = math.Sqrt(1 - gv*gv)
	}

	for k, s := range n.S {
		sg := make([]complex128, p*p)
		igs := identity(p)
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				sg[i*p+j] = s[i*p+j]
				igs[i*p+j] -= g[i] * s[i*p+j]
			}
			sg[i*p+i] -= g[i]
		}
		inv, err := matInv(igs, p)
		if err != nil {
			return fmt.Errorf("rf: renormalize at sample %d: %w", k, err)
		}
		out := matMul(sg, inv, p)
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				out[i*p+j] *= complex(a[j]/a[i], 0)
			}
		}
		n.S[k] = out
	}
	for i := range n.Z0 {
		n.Z0[i] = z0
	}
	return nil
}

func (n *Network) sqrtZ0() []float64 {
	out := make([]float64, len(n.Z0))
	for i, z := range n.Z0 {
		out[i] = math.Sqrt(z)
	}
	return out
}

func (n *Network) invSqrtZ0() []float64 {
	out := make([]float64, len(n.Z0))
	for i, z := range n.Z0 {
		out[i] = 1 / math.Sqrt(z)
	}
	return out
}

// scaleDiag computes diag(l) * M * diag(r) in place.
func scaleDiag(m []complex128, l, r []float64, p int) {
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			m[i*p+j] *= complex(l[i]*r[j], 0)
		}
	}
}
