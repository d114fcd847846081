package rf

import (
	"math/cmplx"
	"testing"
)

func TestInterpolateSameGridIsIdentity(t *testing.T) {
	n := sampleNetwork(6)
	out, err := n.Interpolate(n.Freq)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	requireSameS(t, out, n, 1e-15)
}

func TestInterpolateLinearExact(t *testing.T) {
	// Elements linear in frequency are reproduced exactly at
	// intermediate points.
	f := Frequency{1e9, 2e9, 3e9, 4e9}
	n := New(f, 2)
	for k, fv := range f {
		v := complex(fv/1e9, -fv/2e9)
		n.Set(k, 0, 1, v)
		n.Set(k, 1, 0, v)
	}
	target := Frequency{1.5e9, 2.5e9, 3.5e9}
	out, err := n.Interpolate(target)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	for k, fv := range target {
		want := complex(fv/1e9, -fv/2e9)
		if d := cmplx.Abs(out.At(k, 0, 1) - want); d > 1e-12 {
			t.Fatalf("sample %d: got %v, want %v", k, out.At(k, 0, 1), want)
		}
	}
}

func TestInterpolateClampsEnds(t *testing.T) {
	f := Frequency{2e9, 3e9}
	n := New(f, 2)
	n.Set(0, 0, 1, 5)
	n.Set(1, 0, 1, 7)
	out, err := n.Interpolate(Frequency{1e9, 4e9})
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	if out.At(0, 0, 1) != 5 || out.At(1, 0, 1) != 7 {
		t.Fatalf("clamping failed: %v, %v", out.At(0, 0, 1), out.At(1, 0, 1))
	}
}

func TestInterpolateRejectsBadTarget(t *testing.T) {
	n := sampleNetwork(4)
	if _, err := n.Interpolate(Frequency{}); err == nil {
		t.Fatal("expected error for empty target grid")
	}
}
