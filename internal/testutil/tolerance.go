package testutil

import (
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/TH1622EE/scikit-rf/rf"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
// Returns an error if the slices differ in length.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, nil
}

// RequireComplexNearlyEqual fails t if got and want differ in length or
// if any element pair exceeds eps in modulus.
func RequireComplexNearlyEqual(t *testing.T, got, want []complex128, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := cmplx.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// MaxSDiff returns the maximum modulus difference between the scattering
// parameters of two networks. Returns an error on shape mismatch.
func MaxSDiff(a, b *rf.Network) (float64, error) {
	if a.NPorts() != b.NPorts() || a.NPoints() != b.NPoints() {
		return 0, fmt.Errorf("shape mismatch: %dx%d vs %dx%d ports/points",
			a.NPorts(), a.NPoints(), b.NPorts(), b.NPoints())
	}
	maxDiff := 0.0
	for k := range a.S {
		for i := range a.S[k] {
			d := cmplx.Abs(a.S[k][i] - b.S[k][i])
			if d > maxDiff {
				maxDiff = d
			}
		}
	}
	return maxDiff, nil
}

// RequireNetworkNearlyEqual fails t if the scattering parameters of got
// and want differ anywhere by more than eps in modulus.
func RequireNetworkNearlyEqual(t *testing.T, got, want *rf.Network, eps float64) {
	t.Helper()
	d, err := MaxSDiff(got, want)
	if err != nil {
		t.Fatalf("network compare: %v", err)
	}
	if d > eps {
		t.Fatalf("networks differ by %v > eps %v", d, eps)
	}
}
