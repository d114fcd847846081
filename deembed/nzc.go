package deembed

import (
	"fmt"
	"math/cmplx"

	"github.com/TH1622EE/scikit-rf/internal/fftutil"
	"github.com/TH1622EE/scikit-rf/rf"
	"github.com/TH1622EE/scikit-rf/tdr"
)

// NZC2xThru splits a single 2x-thru (back-to-back fixture) measurement
// into two error boxes without impedance correction, following the
// IEEE P370 non-zero-crossing procedure. Construction locates the
// fixture mid-point from the transmission impulse peak, renormalizes
// the 2x-thru to the mid-point impedance, truncates the reflection
// responses in time to isolate each side, and solves for the error-box
// terms per frequency. Deembed then strips the inverted boxes from
// both sides of a fixture-DUT-fixture measurement.
//
// A DC sample on the dummy grid is stripped and re-estimated on the
// result, and a non-uniform dummy grid is resampled to a uniform one;
// both remediations are reported as Diagnostics. The two remediations
// combined are rejected with ErrUnsupported.
type NZC2xThru struct {
	strategyBase
	side1Inv *rf.Network
	side2Inv *rf.Network

	// Side1 and Side2 are the extracted error boxes on the dummy
	// grid, port 1 facing the instrument.
	Side1 *rf.Network
	Side2 *rf.Network
}

// NewNZC2xThru builds the strategy from the 2x-thru dummy measurement.
func NewNZC2xThru(thru2x *rf.Network, name string) (*NZC2xThru, error) {
	if err := checkDummies(thru2x); err != nil {
		return nil, err
	}
	if thru2x.NPorts() != 2 {
		return nil, fmt.Errorf("%w: 2x-thru must have 2 ports, got %d", ErrConfig, thru2x.NPorts())
	}
	s := &NZC2xThru{
		strategyBase: strategyBase{name: name, freq: thru2x.Freq.Clone(), nports: 2},
	}
	if err := s.split(thru2x); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *NZC2xThru) Deembed(measured *rf.Network) (*rf.Network, error) {
	if err := s.checkMeasured(measured); err != nil {
		return nil, err
	}
	step, err := s.side1Inv.Cascade(measured)
	if err != nil {
		return nil, err
	}
	return step.Cascade(s.side2Inv)
}

func (s *NZC2xThru) split(thru2x *rf.Network) error {
	work := thru2x.Clone()

	hasDC := work.Freq.HasDC()
	if hasDC {
		s.addDiag(DiagDCPoint, "dc sample stripped before the time-domain split and re-estimated on the result")
		work = tdr.StripDC(work)
	}
	nonUniform := !tdr.IsUniform(work.Freq)
	if hasDC && nonUniform {
		return fmt.Errorf("%w: grid with a dc sample and non-uniform spacing", ErrUnsupported)
	}
	origFreq := thru2x.Freq
	if nonUniform {
		s.addDiag(DiagNonUniform, "non-uniform grid resampled to a uniform grid for the split")
		uni := tdr.UniformGrid(work.Freq)
		var err error
		work, err = work.Interpolate(uni)
		if err != nil {
			return err
		}
	}

	f := work.Freq
	n := len(f)
	dcCfg := tdr.DefaultDCConfig()

	// Mid-point sample of the fixture from the transmission impulse
	// peak.
	s21 := work.Param(1, 0)
	dc21, err := tdr.DCEstimate(s21, f)
	if err != nil {
		return err
	}
	t21, err := tdr.Impulse(tdr.Symmetric(prependDC(dc21, s21)), true)
	if err != nil {
		return err
	}
	x := argmax(t21)
	if x <= n {
		return fmt.Errorf("%w: transmission impulse peaks before t=0, not a causal 2x-thru", ErrConfig)
	}

	// Impedance at the mid-point from the port 1 step response.
	dc11, err := tdr.SolveDC(work.Param(0, 0), f, dcCfg)
	if err != nil {
		return err
	}
	t11, err := tdr.Impulse(tdr.Symmetric(prependDC(dc11, work.Param(0, 0))), true)
	if err != nil {
		return err
	}
	z11x := tdr.ImpedanceProfile(tdr.Step(t11), rf.DefaultZ0)[x]

	renorm := work.Clone()
	if err := renorm.Renormalize(z11x); err != nil {
		return err
	}
	s11r := renorm.Param(0, 0)
	s12r := renorm.Param(0, 1)
	s21r := renorm.Param(1, 0)
	s22r := renorm.Param(1, 1)

	// Reflection seen at each port with the far half removed.
	e001, err := truncatedReflection(s11r, f, x, dcCfg)
	if err != nil {
		return err
	}
	e002, err := truncatedReflection(s22r, f, x, dcCfg)
	if err != nil {
		return err
	}

	// Reflection at the mid-point looking back into each half.
	e111 := make([]complex128, n)
	e112 := make([]complex128, n)
	for k := 0; k < n; k++ {
		e111[k] = (s22r[k] - e002[k]) / s12r[k]
		e112[k] = (s11r[k] - e001[k]) / s21r[k]
	}

	// One-way transmission of each half, with the square-root branch
	// tracked so the unwrapped phase stays monotonic.
	e01 := branchSqrt(s21r, e111, e112)
	e10 := branchSqrt(s12r, e111, e112)

	side1 := rf.New(f.Clone(), 2)
	side2 := rf.New(f.Clone(), 2)
	for p := range side1.Z0 {
		side1.Z0[p] = z11x
		side2.Z0[p] = z11x
	}
	for k := 0; k < n; k++ {
		side1.Set(k, 0, 0, e001[k])
		side1.Set(k, 0, 1, e01[k])
		side1.Set(k, 1, 0, e01[k])
		side1.Set(k, 1, 1, e111[k])

		side2.Set(k, 0, 0, e112[k])
		side2.Set(k, 0, 1, e10[k])
		side2.Set(k, 1, 0, e10[k])
		side2.Set(k, 1, 1, e002[k])
	}
	if err := side1.Renormalize(rf.DefaultZ0); err != nil {
		return err
	}
	if err := side2.Renormalize(rf.DefaultZ0); err != nil {
		return err
	}

	if nonUniform {
		if side1, err = side1.Interpolate(origFreq); err != nil {
			return err
		}
		if side2, err = side2.Interpolate(origFreq); err != nil {
			return err
		}
	}
	if hasDC {
		if side1, err = tdr.ReinsertDC(side1); err != nil {
			return err
		}
		if side2, err = tdr.ReinsertDC(side2); err != nil {
			return err
		}
	}

	s.Side1 = side1
	s.Side2 = side2
	if s.side1Inv, err = side1.Inverse(); err != nil {
		return err
	}
	if s.side2Inv, err = side2.Inverse(); err != nil {
		return err
	}
	return nil
}

// truncatedReflection isolates the near-side reflection of a port term
// by zeroing the shifted time response from the fixture mid-point
// onward and transforming back.
func truncatedReflection(s []complex128, f rf.Frequency, x int, cfg tdr.DCConfig) ([]complex128, error) {
	n := len(s)
	dc, err := tdr.SolveDC(s, f, cfg)
	if err != nil {
		return nil, err
	}
	td, err := fftutil.Inverse(tdr.Symmetric(prependDC(dc, s)))
	if err != nil {
		return nil, err
	}
	td = fftutil.FFTShift(td)
	for k := x; k < len(td); k++ {
		td[k] = 0
	}
	fd, err := fftutil.Forward(fftutil.IFFTShift(td))
	if err != nil {
		return nil, err
	}
	return fd[1 : n+1], nil
}

// branchSqrt takes the per-frequency square root of the one-way
// transmission product, flipping the sign whenever the raw root's
// phase increases between neighboring samples so the chosen branch
// keeps a physically decreasing phase.
func branchSqrt(s, e111, e112 []complex128) []complex128 {
	out := make([]complex128, len(s))
	sign := 1.0
	prev := 0.0
	for i := range s {
		v := cmplx.Sqrt(s[i] * (1 - e111[i]*e112[i]))
		ph := cmplx.Phase(v)
		if i > 0 && ph-prev > 0 {
			sign = -sign
		}
		prev = ph
		out[i] = complex(sign, 0) * v
	}
	return out
}

func prependDC(dc float64, s []complex128) []complex128 {
	out := make([]complex128, len(s)+1)
	out[0] = complex(dc, 0)
	copy(out[1:], s)
	return out
}

func argmax(x []float64) int {
	best := 0
	for i, v := range x {
		if v > x[best] {
			best = i
		}
	}
	return best
}
