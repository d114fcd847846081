package deembed

import (
	"errors"
	"math/cmplx"
	"testing"

	"github.com/TH1622EE/scikit-rf/internal/testutil"
	"github.com/TH1622EE/scikit-rf/rf"
)

func zcTestConfig() Config {
	cfg := DefaultConfig()
	cfg.NRPEnabled = false
	cfg.LeadIn = 0
	return cfg
}

func TestZCSplitsMatchedThru(t *testing.T) {
	fixture, thru2x, meas, _ := thruScene(t, 64, 4)
	s, err := NewZC2xThru(thru2x, meas, zcTestConfig(), "zc")
	if err != nil {
		t.Fatalf("NewZC2xThru: %v", err)
	}
	testutil.RequireNetworkNearlyEqual(t, s.Side1, fixture, 1e-6)
	testutil.RequireNetworkNearlyEqual(t, s.Side2, fixture, 1e-6)
}

func TestZCRecoversDevice(t *testing.T) {
	_, thru2x, meas, dut := thruScene(t, 64, 4)
	s, err := NewZC2xThru(thru2x, meas, zcTestConfig(), "zc")
	if err != nil {
		t.Fatalf("NewZC2xThru: %v", err)
	}
	got, err := s.Deembed(meas)
	if err != nil {
		t.Fatalf("Deembed: %v", err)
	}
	testutil.RequireNetworkNearlyEqual(t, got, dut, 1e-6)
}

func TestZCDefaultsOnMatchedScene(t *testing.T) {
	// NRP and lead-in are no-ops on a perfectly matched fixture, so
	// the defaults must recover the device as well.
	_, thru2x, meas, dut := thruScene(t, 64, 4)
	s, err := NewZC2xThru(thru2x, meas, DefaultConfig(), "zc")
	if err != nil {
		t.Fatalf("NewZC2xThru: %v", err)
	}
	got, err := s.Deembed(meas)
	if err != nil {
		t.Fatalf("Deembed: %v", err)
	}
	testutil.RequireNetworkNearlyEqual(t, got, dut, 1e-5)
}

func TestZCPullbackShortensBoxes(t *testing.T) {
	_, thru2x, meas, _ := thruScene(t, 64, 4)
	cfg := zcTestConfig()
	cfg.Pullback1 = 2
	cfg.Pullback2 = 2
	s, err := NewZC2xThru(thru2x, meas, cfg, "zc")
	if err != nil {
		t.Fatalf("NewZC2xThru: %v", err)
	}
	full, err := NewZC2xThru(thru2x, meas, zcTestConfig(), "zc-full")
	if err != nil {
		t.Fatalf("NewZC2xThru: %v", err)
	}
	// Pulled-back boxes remove less of the fixture, so their
	// transmission phase at the top bin is shallower.
	last := s.Side1.NPoints() - 1
	phPulled := phaseDepth(s.Side1.Param(1, 0))
	phFull := phaseDepth(full.Side1.Param(1, 0))
	if phPulled >= phFull {
		t.Fatalf("pullback did not shorten the box: %v vs %v at bin %d", phPulled, phFull, last)
	}
}

// phaseDepth sums the per-bin phase steps of a transmission term,
// a proxy for its total delay.
func phaseDepth(s []complex128) float64 {
	depth := 0.0
	for k := 1; k < len(s); k++ {
		depth += cmplx.Phase(s[k] / s[k-1])
	}
	return -depth
}

func TestZCAsymmetricPullbackRejected(t *testing.T) {
	_, thru2x, meas, _ := thruScene(t, 64, 4)
	cfg := zcTestConfig()
	cfg.Pullback1 = 1
	if _, err := NewZC2xThru(thru2x, meas, cfg, "zc"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestZCSingleSideRejected(t *testing.T) {
	_, thru2x, meas, _ := thruScene(t, 64, 4)
	cfg := zcTestConfig()
	cfg.Side2 = false
	if _, err := NewZC2xThru(thru2x, meas, cfg, "zc"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestZCBadConfigRejected(t *testing.T) {
	_, thru2x, meas, _ := thruScene(t, 64, 4)
	cfg := zcTestConfig()
	cfg.Z0 = 0
	if _, err := NewZC2xThru(thru2x, meas, cfg, "zc"); !errors.Is(err, ErrConfig) {
		t.Fatalf("zero z0: err = %v, want ErrConfig", err)
	}
	cfg = zcTestConfig()
	cfg.LeadIn = -1
	if _, err := NewZC2xThru(thru2x, meas, cfg, "zc"); !errors.Is(err, ErrConfig) {
		t.Fatalf("negative lead-in: err = %v, want ErrConfig", err)
	}
	if _, err := NewZC2xThru(nil, meas, zcTestConfig(), "zc"); !errors.Is(err, ErrConfig) {
		t.Fatalf("nil thru: err = %v, want ErrConfig", err)
	}
}

func TestZCBandwidthLimitFit(t *testing.T) {
	_, thru2x, meas, dut := thruScene(t, 64, 4)
	cfg := zcTestConfig()
	cfg.BandwidthLimit = 10e9
	s, err := NewZC2xThru(thru2x, meas, cfg, "zc")
	if err != nil {
		t.Fatalf("NewZC2xThru: %v", err)
	}
	got, err := s.Deembed(meas)
	if err != nil {
		t.Fatalf("Deembed: %v", err)
	}
	// The lossless fixture has zero attenuation, which the fit
	// reproduces, so recovery stays close.
	testutil.RequireNetworkNearlyEqual(t, got, dut, 1e-5)
}

func TestZCBandwidthLimitTooLow(t *testing.T) {
	_, thru2x, meas, _ := thruScene(t, 64, 4)
	cfg := zcTestConfig()
	cfg.BandwidthLimit = 1
	if _, err := NewZC2xThru(thru2x, meas, cfg, "zc"); !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestZCFrequencyMismatch(t *testing.T) {
	_, thru2x, meas, _ := thruScene(t, 64, 4)
	s, err := NewZC2xThru(thru2x, meas, zcTestConfig(), "zc")
	if err != nil {
		t.Fatalf("NewZC2xThru: %v", err)
	}
	other := testutil.MatchedLine(testutil.LinearFrequency(1e9, 10e9, 16), 10e-12, 0)
	if _, err := s.Deembed(other); !errors.Is(err, ErrFrequencyMismatch) {
		t.Fatalf("err = %v, want ErrFrequencyMismatch", err)
	}
}

func TestZCThruRegridDiagnostic(t *testing.T) {
	_, _, meas, _ := thruScene(t, 64, 4)
	// A 2x-thru on a finer grid than the composite measurement.
	_, thinThru2x, _, _ := thruScene(t, 128, 8)
	s, err := NewZC2xThru(thinThru2x, meas, zcTestConfig(), "zc")
	if err != nil {
		t.Fatalf("NewZC2xThru: %v", err)
	}
	found := false
	for _, d := range s.Diagnostics() {
		if d.Code == DiagThruRegrid {
			found = true
		}
	}
	if !found {
		t.Fatalf("diagnostics = %v, want %s", s.Diagnostics(), DiagThruRegrid)
	}
}

func TestZCRejectsNon2Port(t *testing.T) {
	_, thru2x, meas, _ := thruScene(t, 64, 4)
	bad := rf.New(thru2x.Freq, 3)
	if _, err := NewZC2xThru(bad, meas, zcTestConfig(), "zc"); !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}
