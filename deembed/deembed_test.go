package deembed

import (
	"errors"
	"testing"

	"github.com/TH1622EE/scikit-rf/internal/testutil"
	"github.com/TH1622EE/scikit-rf/rf"
)

func TestStrategyNames(t *testing.T) {
	sc := newParasiticScene(t)
	o, err := NewOpen(sc.open, "my-open")
	if err != nil {
		t.Fatalf("NewOpen: %v", err)
	}
	if o.Name() != "my-open" {
		t.Fatalf("Name = %q", o.Name())
	}
	if len(o.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", o.Diagnostics())
	}
}

func TestNilMeasuredRejected(t *testing.T) {
	sc := newParasiticScene(t)
	o, err := NewOpen(sc.open, "open")
	if err != nil {
		t.Fatalf("NewOpen: %v", err)
	}
	if _, err := o.Deembed(nil); !errors.Is(err, ErrFrequencyMismatch) {
		t.Fatalf("err = %v, want ErrFrequencyMismatch", err)
	}
}

func TestPortCountMismatchRejected(t *testing.T) {
	sc := newParasiticScene(t)
	o, err := NewOpen(sc.open, "open")
	if err != nil {
		t.Fatalf("NewOpen: %v", err)
	}
	three := rf.New(sc.open.Freq, 3)
	if _, err := o.Deembed(three); !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestGridMismatchRejected(t *testing.T) {
	sc := newParasiticScene(t)
	o, err := NewOpen(sc.open, "open")
	if err != nil {
		t.Fatalf("NewOpen: %v", err)
	}
	other, err := testutil.ShuntAdmittance(testutil.LinearFrequency(2e9, 9e9, len(sc.open.Freq)), 1e-3, nil)
	if err != nil {
		t.Fatalf("ShuntAdmittance: %v", err)
	}
	if _, err := o.Deembed(other); !errors.Is(err, ErrFrequencyMismatch) {
		t.Fatalf("err = %v, want ErrFrequencyMismatch", err)
	}
}
