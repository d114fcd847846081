package deembed

import (
	"errors"
	"testing"

	"github.com/TH1622EE/scikit-rf/internal/testutil"
	"github.com/TH1622EE/scikit-rf/rf"
)

func TestSplitPiSelfDeembedIsThru(t *testing.T) {
	freq := testutil.LinearFrequency(1e9, 20e9, 24)
	thru, err := testutil.PiThru(freq, 2e-4, 0.04, nil)
	if err != nil {
		t.Fatalf("PiThru: %v", err)
	}
	s, err := NewSplitPi(thru, "split-pi")
	if err != nil {
		t.Fatalf("NewSplitPi: %v", err)
	}
	// For a true pi network the mirrored halves reassemble the thru
	// exactly, so de-embedding the thru leaves an ideal thru.
	got, err := s.Deembed(thru)
	if err != nil {
		t.Fatalf("Deembed: %v", err)
	}
	testutil.RequireNetworkNearlyEqual(t, got, rf.Thru(freq), 1e-9)
}

func TestSplitTeeSelfDeembedIsThru(t *testing.T) {
	freq := testutil.LinearFrequency(1e9, 20e9, 24)
	thru, err := testutil.TeeThru(freq, 6, 900, nil)
	if err != nil {
		t.Fatalf("TeeThru: %v", err)
	}
	s, err := NewSplitTee(thru, "split-tee")
	if err != nil {
		t.Fatalf("NewSplitTee: %v", err)
	}
	got, err := s.Deembed(thru)
	if err != nil {
		t.Fatalf("Deembed: %v", err)
	}
	testutil.RequireNetworkNearlyEqual(t, got, rf.Thru(freq), 1e-9)
}

func TestSplitPiRecoversEmbeddedDevice(t *testing.T) {
	freq := testutil.LinearFrequency(1e9, 20e9, 24)
	thru, err := testutil.PiThru(freq, 2e-4, 0.04, nil)
	if err != nil {
		t.Fatalf("PiThru: %v", err)
	}
	s, err := NewSplitPi(thru, "split-pi")
	if err != nil {
		t.Fatalf("NewSplitPi: %v", err)
	}
	// Build the measurement from the halves the strategy would
	// remove: left ++ dut ++ right.
	dut := testutil.MatchedLine(freq, 10e-12, 0.8)
	left, err := s.leftInv.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	right, err := s.rightInv.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	mid, err := left.Cascade(dut)
	if err != nil {
		t.Fatalf("Cascade: %v", err)
	}
	meas, err := mid.Cascade(right)
	if err != nil {
		t.Fatalf("Cascade: %v", err)
	}
	got, err := s.Deembed(meas)
	if err != nil {
		t.Fatalf("Deembed: %v", err)
	}
	testutil.RequireNetworkNearlyEqual(t, got, dut, 1e-9)
}

func TestSplitRejectsNon2Port(t *testing.T) {
	freq := testutil.LinearFrequency(1e9, 10e9, 8)
	bad := rf.New(freq, 3)
	if _, err := NewSplitPi(bad, "split-pi"); !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
	if _, err := NewSplitTee(bad, "split-tee"); !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestSplitFrequencyMismatch(t *testing.T) {
	freq := testutil.LinearFrequency(1e9, 20e9, 24)
	thru, err := testutil.PiThru(freq, 2e-4, 0.04, nil)
	if err != nil {
		t.Fatalf("PiThru: %v", err)
	}
	s, err := NewSplitPi(thru, "split-pi")
	if err != nil {
		t.Fatalf("NewSplitPi: %v", err)
	}
	other := testutil.MatchedLine(testutil.LinearFrequency(1e9, 10e9, 12), 10e-12, 0)
	if _, err := s.Deembed(other); !errors.Is(err, ErrFrequencyMismatch) {
		t.Fatalf("err = %v, want ErrFrequencyMismatch", err)
	}
}
