// Package deembed removes the electrical effect of a measurement
// fixture from multiport scattering measurements, recovering the device
// under test at a known reference plane.
//
// Each correction method is a separate strategy type sharing one
// contract: construction takes the dummy (reference) measurements and
// computes any reusable model up front, and Deembed then applies that
// model to each new measurement without mutating its inputs. Strategies
// range from per-frequency algebraic parasitic subtraction (Open,
// Short, OpenShort, ShortOpen), over symmetric-thru mirror methods
// (SplitPi, SplitTee, AdmittanceCancel, ImpedanceCancel), to the
// IEEE-P370 time-domain fixture splits (NZC2xThru, ZC2xThru).
//
// Construction fails with ErrConfig when the dummy grids disagree and
// with ErrUnsupported for parameter combinations the algorithms cannot
// honor. Deembed fails with ErrFrequencyMismatch before any numeric
// work when the measured grid differs from the dummy grid. Non-fatal
// remediations (DC stripping, resampling of non-uniform grids) are
// reported as structured Diagnostics on the strategy.
package deembed

import (
	"errors"
	"fmt"

	"github.com/TH1622EE/scikit-rf/rf"
)

// Strategy errors.
var (
	// ErrConfig reports invalid construction input, most commonly
	// dummy networks with mismatched frequency grids.
	ErrConfig = errors.New("deembed: invalid configuration")
	// ErrFrequencyMismatch reports a measured network whose grid
	// differs from the dummy grid the strategy was built on.
	ErrFrequencyMismatch = errors.New("deembed: measured grid does not match dummy grid")
	// ErrUnsupported reports a parameter or input combination the
	// algorithm rejects rather than approximating.
	ErrUnsupported = errors.New("deembed: unsupported combination")
)

// Diagnostic is a structured non-fatal notice emitted while a strategy
// is constructed, replacing side-channel warnings so callers and tests
// can assert on remediation behavior.
type Diagnostic struct {
	Code    string
	Message string
}

// Diagnostic codes.
const (
	DiagDCPoint    = "dc-point"
	DiagNonUniform = "non-uniform-grid"
	DiagThruRegrid = "thru-regrid"
)

// Strategy is the common contract of all de-embedding methods.
type Strategy interface {
	// Name returns the identifier given at construction.
	Name() string
	// Deembed returns a new corrected network with the same port
	// count and grid as measured, leaving measured and the stored
	// dummies untouched.
	Deembed(measured *rf.Network) (*rf.Network, error)
	// Diagnostics returns the non-fatal notices collected during
	// construction.
	Diagnostics() []Diagnostic
}

// strategyBase carries the state shared by every strategy: the instance
// name, the dummy grid used for application-time validation, and the
// collected diagnostics.
type strategyBase struct {
	name   string
	freq   rf.Frequency
	nports int
	diags  []Diagnostic
}

func (b *strategyBase) Name() string { return b.name }

func (b *strategyBase) Diagnostics() []Diagnostic { return b.diags }

func (b *strategyBase) addDiag(code, message string) {
	b.diags = append(b.diags, Diagnostic{Code: code, Message: message})
}

// checkMeasured validates a measured network against the stored dummy
// grid. It runs before any numeric work.
func (b *strategyBase) checkMeasured(measured *rf.Network) error {
	if measured == nil {
		return fmt.Errorf("%w: nil measured network", ErrFrequencyMismatch)
	}
	if measured.NPorts() != b.nports {
		return fmt.Errorf("%w: measured has %d ports, dummies have %d",
			ErrConfig, measured.NPorts(), b.nports)
	}
	if !measured.Freq.Equal(b.freq) {
		return ErrFrequencyMismatch
	}
	return nil
}

// checkDummies validates the dummy set: every network non-nil with a
// valid grid, and all grids pairwise identical.
func checkDummies(dummies ...*rf.Network) error {
	if len(dummies) == 0 {
		return fmt.Errorf("%w: no dummy networks", ErrConfig)
	}
	for i, d := range dummies {
		if d == nil {
			return fmt.Errorf("%w: dummy %d is nil", ErrConfig, i)
		}
		if err := d.Freq.Validate(); err != nil {
			return fmt.Errorf("%w: dummy %d: %v", ErrConfig, i, err)
		}
		if !d.Freq.Equal(dummies[0].Freq) {
			return fmt.Errorf("%w: dummy %d grid differs from dummy 0", ErrConfig, i)
		}
		if d.NPorts() != dummies[0].NPorts() {
			return fmt.Errorf("%w: dummy %d has %d ports, dummy 0 has %d",
				ErrConfig, i, d.NPorts(), dummies[0].NPorts())
		}
	}
	return nil
}

// subtract returns a-b element-wise over per-frequency matrices.
func subtract(a, b [][]complex128) [][]complex128 {
	out := make([][]complex128, len(a))
	for k := range a {
		row := make([]complex128, len(a[k]))
		for i := range row {
			row[i] = a[k][i] - b[k][i]
		}
		out[k] = row
	}
	return out
}

// average returns (a+b)/2 element-wise over per-frequency matrices.
func average(a, b [][]complex128) [][]complex128 {
	out := make([][]complex128, len(a))
	for k := range a {
		row := make([]complex128, len(a[k]))
		for i := range row {
			row[i] = (a[k][i] + b[k][i]) / 2
		}
		out[k] = row
	}
	return out
}
