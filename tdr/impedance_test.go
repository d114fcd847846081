package tdr

import (
	"math"
	"testing"

	"github.com/TH1622EE/scikit-rf/internal/testutil"
)

func TestImpedanceProfileMatched(t *testing.T) {
	z := ImpedanceProfile([]float64{0, 0, 0}, 50)
	testutil.RequireSliceNearlyEqual(t, z, []float64{50, 50, 50}, 1e-12)
}

func TestImpedanceProfileReflective(t *testing.T) {
	// A +1/3 step reflection corresponds to 100 ohm in a 50 ohm
	// system, -1/3 to 25 ohm.
	z := ImpedanceProfile([]float64{1.0 / 3, -1.0 / 3}, 50)
	testutil.RequireSliceNearlyEqual(t, z, []float64{100, 25}, 1e-9)
}

func TestPortImpedanceMatchedLine(t *testing.T) {
	f := uniformGrid(64, 1e8)
	s := make([]complex128, 64)
	z, err := PortImpedance(s, f, 50, DefaultDCConfig())
	if err != nil {
		t.Fatalf("PortImpedance: %v", err)
	}
	if math.Abs(z-50) > 1e-6 {
		t.Fatalf("z = %v, want 50", z)
	}
}

func TestPortImpedanceBadInput(t *testing.T) {
	if _, err := PortImpedance([]complex128{1}, []float64{1e9}, 50, DefaultDCConfig()); err == nil {
		t.Fatal("expected error for single-sample input")
	}
}
