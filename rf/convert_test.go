package rf

import (
	"math"
	"math/cmplx"
	"testing"
)

func sampleNetwork(points int) *Network {
	n := New(testFreq(points), 2)
	for k := 0; k < points; k++ {
		fv := n.Freq[k]
		n.Set(k, 0, 0, complex(0.2, -0.1))
		n.Set(k, 0, 1, cmplx.Rect(0.7, -2e-10*fv))
		n.Set(k, 1, 0, cmplx.Rect(0.7, -2e-10*fv))
		n.Set(k, 1, 1, complex(-0.15, 0.05))
	}
	return n
}

func requireSameS(t *testing.T, got, want *Network, eps float64) {
	t.Helper()
	for k := range want.S {
		for i := range want.S[k] {
			if d := cmplx.Abs(got.S[k][i] - want.S[k][i]); d > eps {
				t.Fatalf("sample %d element %d: diff %v > %v", k, i, d, eps)
			}
		}
	}
}

func TestZRoundTrip(t *testing.T) {
	n := sampleNetwork(6)
	z, err := n.Z()
	if err != nil {
		t.Fatalf("Z: %v", err)
	}
	back := n.Clone()
	if err := back.SetZ(z); err != nil {
		t.Fatalf("SetZ: %v", err)
	}
	requireSameS(t, back, n, 1e-12)
}

func TestYRoundTrip(t *testing.T) {
	n := sampleNetwork(6)
	y, err := n.Y()
	if err != nil {
		t.Fatalf("Y: %v", err)
	}
	back := n.Clone()
	if err := back.SetY(y); err != nil {
		t.Fatalf("SetY: %v", err)
	}
	requireSameS(t, back, n, 1e-12)
}

func TestZeroAdmittanceIsOpen(t *testing.T) {
	n := New(testFreq(3), 2)
	zero := make([][]complex128, 3)
	for k := range zero {
		zero[k] = make([]complex128, 4)
	}
	if err := n.SetY(zero); err != nil {
		t.Fatalf("SetY: %v", err)
	}
	for k := 0; k < 3; k++ {
		if n.At(k, 0, 0) != 1 || n.At(k, 1, 1) != 1 {
			t.Fatalf("sample %d: zero admittance should reflect fully", k)
		}
		if n.At(k, 0, 1) != 0 {
			t.Fatalf("sample %d: zero admittance should not transmit", k)
		}
	}
}

func TestZeroImpedanceIsShort(t *testing.T) {
	n := New(testFreq(3), 2)
	zero := make([][]complex128, 3)
	for k := range zero {
		zero[k] = make([]complex128, 4)
	}
	if err := n.SetZ(zero); err != nil {
		t.Fatalf("SetZ: %v", err)
	}
	for k := 0; k < 3; k++ {
		if n.At(k, 0, 0) != -1 || n.At(k, 1, 1) != -1 {
			t.Fatalf("sample %d: zero impedance should reflect with sign flip", k)
		}
	}
}

func TestRenormalizeRoundTrip(t *testing.T) {
	n := sampleNetwork(5)
	r := n.Clone()
	if err := r.Renormalize(75); err != nil {
		t.Fatalf("Renormalize: %v", err)
	}
	if r.Z0[0] != 75 {
		t.Fatalf("z0 = %v, want 75", r.Z0[0])
	}
	if err := r.Renormalize(DefaultZ0); err != nil {
		t.Fatalf("Renormalize back: %v", err)
	}
	requireSameS(t, r, n, 1e-12)
}

func TestRenormalizeIdealThru(t *testing.T) {
	// An ideal thru has no Z or Y representation; renormalizing both
	// ports together must keep it an ideal thru.
	n := Thru(testFreq(3))
	if err := n.Renormalize(75); err != nil {
		t.Fatalf("Renormalize: %v", err)
	}
	want := Thru(testFreq(3))
	requireSameS(t, n, want, 1e-12)
}

func TestRenormalizeMixedReferenceThru(t *testing.T) {
	// A direct connection between a 50 ohm and a 100 ohm reference:
	// s11 = (z2-z1)/(z1+z2), s21 = 2*sqrt(z1*z2)/(z1+z2). Moving both
	// ports to 100 ohm must give the ideal thru.
	z1, z2 := 50.0, 100.0
	n := New(testFreq(3), 2)
	n.Z0[0], n.Z0[1] = z1, z2
	s11 := complex((z2-z1)/(z1+z2), 0)
	s21 := complex(2*math.Sqrt(z1*z2)/(z1+z2), 0)
	for k := range n.S {
		n.Set(k, 0, 0, s11)
		n.Set(k, 1, 1, -s11)
		n.Set(k, 0, 1, s21)
		n.Set(k, 1, 0, s21)
	}

	if err := n.Renormalize(z2); err != nil {
		t.Fatalf("Renormalize: %v", err)
	}
	want := Thru(testFreq(3))
	requireSameS(t, n, want, 1e-12)
}

func TestZMatchesKnownSeriesElement(t *testing.T) {
	// A 2-port with only a series impedance z between the ports has
	// Y = (1/z) * [[1,-1],[-1,1]].
	f := testFreq(4)
	n := New(f, 2)
	z := complex(25, 10)
	ym := make([][]complex128, len(f))
	for k := range ym {
		v := 1 / z
		ym[k] = []complex128{v, -v, -v, v}
	}
	if err := n.SetY(ym); err != nil {
		t.Fatalf("SetY: %v", err)
	}
	got, err := n.Y()
	if err != nil {
		t.Fatalf("Y: %v", err)
	}
	for k := range got {
		for i := range got[k] {
			if d := cmplx.Abs(got[k][i] - ym[k][i]); d > 1e-12 {
				t.Fatalf("sample %d element %d: diff %v", k, i, d)
			}
		}
	}
}
