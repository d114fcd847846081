package deembed

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/TH1622EE/scikit-rf/rf"
	"github.com/TH1622EE/scikit-rf/tdr"
)

// attenuation conversion factor between dB and nepers.
const dbPerNeper = 8.686

// zcDCConfig relaxes the DC-solver tolerance for the impedance
// profiles measured during segment peeling, which operate on residuals
// rather than raw measurements.
func zcDCConfig() tdr.DCConfig {
	return tdr.DCConfig{Tol: 1e-10, MaxIter: 50}
}

// Config controls the impedance-corrected 2x-thru split.
type Config struct {
	// Z0 is the reference impedance of the synthesized line
	// segments.
	Z0 float64
	// BandwidthLimit, when positive, fits the extracted attenuation
	// to a sqrt(f)+f+f^2 model over frequencies up to the limit and
	// extrapolates it beyond, suppressing noise above the measurement
	// bandwidth. Zero uses the raw attenuation at every frequency.
	BandwidthLimit float64
	// Pullback1 and Pullback2 retract the reference plane of each
	// side by the given number of time-domain samples. The
	// algorithm requires them equal.
	Pullback1 int
	Pullback2 int
	// Side1 and Side2 select which error boxes are extracted. Both
	// must be enabled.
	Side1 bool
	Side2 bool
	// NRPEnabled applies Nyquist-rate phase correction before the
	// split and restores the per-side delays afterwards.
	NRPEnabled bool
	// LeadIn is the number of lead-in samples peeled ahead of the
	// fixture and restored into the error boxes.
	LeadIn int
}

// DefaultConfig returns the standard split settings.
func DefaultConfig() Config {
	return Config{
		Z0:         rf.DefaultZ0,
		Side1:      true,
		Side2:      true,
		NRPEnabled: true,
		LeadIn:     1,
	}
}

// ZC2xThru splits a 2x-thru measurement into two error boxes with
// impedance correction, following the IEEE P370 zero-crossing
// procedure. Unlike NZC2xThru it consumes a second measurement, the
// fixture-DUT-fixture composite, and peels single-sample transmission
// line segments off both of its sides: each segment's impedance comes
// from the composite's own TDR profile while its loss and phase come
// from the propagation constant of the 2x-thru. The split therefore
// tracks impedance variation along the actual launch instead of
// assuming the 2x-thru and the fixture match.
type ZC2xThru struct {
	strategyBase
	cfg      Config
	side1Inv *rf.Network
	side2Inv *rf.Network

	// Side1 and Side2 are the extracted error boxes, port 1 facing
	// the instrument.
	Side1 *rf.Network
	Side2 *rf.Network
}

// NewZC2xThru builds the strategy from the 2x-thru dummy and the
// fixture-DUT-fixture measurement the fixture model is derived from.
// Deembed later validates measurements against the composite's grid.
func NewZC2xThru(thru2x, fdf *rf.Network, cfg Config, name string) (*ZC2xThru, error) {
	if err := checkZCInputs(thru2x, fdf, cfg); err != nil {
		return nil, err
	}
	s := &ZC2xThru{
		strategyBase: strategyBase{name: name, freq: fdf.Freq.Clone(), nports: 2},
		cfg:          cfg,
	}
	if err := s.split(thru2x, fdf); err != nil {
		return nil, err
	}
	return s, nil
}

func checkZCInputs(thru2x, fdf *rf.Network, cfg Config) error {
	if thru2x == nil || fdf == nil {
		return fmt.Errorf("%w: nil input network", ErrConfig)
	}
	if err := thru2x.Freq.Validate(); err != nil {
		return fmt.Errorf("%w: 2x-thru: %v", ErrConfig, err)
	}
	if err := fdf.Freq.Validate(); err != nil {
		return fmt.Errorf("%w: fixture-dut-fixture: %v", ErrConfig, err)
	}
	if thru2x.NPorts() != 2 || fdf.NPorts() != 2 {
		return fmt.Errorf("%w: both inputs must have 2 ports", ErrConfig)
	}
	if cfg.Z0 <= 0 {
		return fmt.Errorf("%w: reference impedance %g", ErrConfig, cfg.Z0)
	}
	if cfg.Pullback1 < 0 || cfg.Pullback2 < 0 || cfg.LeadIn < 0 {
		return fmt.Errorf("%w: negative sample count", ErrConfig)
	}
	if cfg.Pullback1 != cfg.Pullback2 {
		return fmt.Errorf("%w: asymmetric pullback (%d, %d)", ErrUnsupported, cfg.Pullback1, cfg.Pullback2)
	}
	if !cfg.Side1 || !cfg.Side2 {
		return fmt.Errorf("%w: single-side extraction", ErrUnsupported)
	}
	return nil
}

func (s *ZC2xThru) Deembed(measured *rf.Network) (*rf.Network, error) {
	if err := s.checkMeasured(measured); err != nil {
		return nil, err
	}
	step, err := s.side1Inv.Cascade(measured)
	if err != nil {
		return nil, err
	}
	return step.Cascade(s.side2Inv)
}

func (s *ZC2xThru) split(thru2x, fdf *rf.Network) error {
	dcCfg := zcDCConfig()

	work := fdf.Clone()
	hasDC := work.Freq.HasDC()
	if hasDC {
		s.addDiag(DiagDCPoint, "dc sample stripped before the split and re-estimated on the result")
		work = tdr.StripDC(work)
	}
	nonUniform := !tdr.IsUniform(work.Freq)
	if hasDC && nonUniform {
		return fmt.Errorf("%w: grid with a dc sample and non-uniform spacing", ErrUnsupported)
	}
	origStripped := work.Freq.Clone()
	if nonUniform {
		s.addDiag(DiagNonUniform, "non-uniform grid resampled to a uniform grid for the split")
		var err error
		if work, err = work.Interpolate(tdr.UniformGrid(work.Freq)); err != nil {
			return err
		}
	}
	f := work.Freq

	thru := thru2x.Clone()
	if !thru.Freq.Equal(fdf.Freq) {
		s.addDiag(DiagThruRegrid, "2x-thru grid differs from the fixture-dut-fixture grid; regridded onto it")
	}
	if thru.Freq.HasDC() {
		thru = tdr.StripDC(thru)
	}
	if !thru.Freq.Equal(f) {
		var err error
		if thru, err = thru.Interpolate(f); err != nil {
			return err
		}
	}

	workN, thruN := work, thru
	var td []float64
	if s.cfg.NRPEnabled {
		var err error
		if workN, td, err = tdr.NRP(work); err != nil {
			return err
		}
		if thruN, _, err = tdr.NRP(thru); err != nil {
			return err
		}
	}

	// Lead-in boxes are peeled from the composite advanced by the
	// lead-in count, then shifted back on their fixture-facing side.
	var lead1, lead2 *rf.Network
	if s.cfg.LeadIn > 0 {
		shifted, err := tdr.ShiftPoints(workN, float64(s.cfg.LeadIn))
		if err != nil {
			return err
		}
		_, t1, t2, err := tdr.PeelLossless(shifted, s.cfg.LeadIn, dcCfg)
		if err != nil {
			return err
		}
		if lead1, err = tdr.ShiftPort(t1, -float64(s.cfg.LeadIn), 0); err != nil {
			return err
		}
		if lead2, err = tdr.ShiftPort(t2, -float64(s.cfg.LeadIn), 1); err != nil {
			return err
		}
	}

	// Propagation constant of the fixture material from the 2x-thru
	// before any phase correction.
	gamma, err := propagationConstant(thru, f, s.cfg.BandwidthLimit)
	if err != nil {
		return err
	}

	// Fixture extent in time-domain samples from the 2x-thru
	// transmission impulse peak.
	dc21, err := tdr.DCEstimate(thruN.Param(1, 0), f)
	if err != nil {
		return err
	}
	t21, err := tdr.Impulse(tdr.Symmetric(prependDC(dc21, thruN.Param(1, 0))), false)
	if err != nil {
		return err
	}
	x := argmax(t21)
	if x < 1 {
		return fmt.Errorf("%w: 2x-thru transmission peaks at t=0", ErrConfig)
	}
	segLen := 1 / (2 * float64(x))
	count := x - s.cfg.Pullback1
	if count < 0 {
		return fmt.Errorf("%w: pullback %d exceeds fixture extent of %d samples", ErrConfig, s.cfg.Pullback1, x)
	}

	side1, side2, err := s.peelFixture(workN, f, gamma, segLen, count, dcCfg)
	if err != nil {
		return err
	}

	// Corrections reapply on the computation grid, then the original
	// grid is restored.
	if s.cfg.LeadIn > 0 {
		if side1, err = lead1.Cascade(side1); err != nil {
			return err
		}
		if side2, err = side2.Cascade(lead2); err != nil {
			return err
		}
	}
	if s.cfg.NRPEnabled {
		if side1, err = tdr.ApplyNRP(side1, td, 0); err != nil {
			return err
		}
		if side2, err = tdr.ApplyNRP(side2, td, 1); err != nil {
			return err
		}
	}
	if nonUniform {
		if side1, err = side1.Interpolate(origStripped); err != nil {
			return err
		}
		if side2, err = side2.Interpolate(origStripped); err != nil {
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

// peelFixture strips count single-sample segments from both sides of
// the composite. Each segment's impedance tracks the residual's TDR
// profile at the facing port.
func (s *ZC2xThru) peelFixture(workN *rf.Network, f rf.Frequency, gamma []complex128, segLen float64, count int, dcCfg tdr.DCConfig) (*rf.Network, *rf.Network, error) {
	var box1, box2 *rf.Network
	residual := workN.Clone()
	for i := 0; i < count; i++ {
		z1, err := tdr.PortImpedance(residual.Param(0, 0), f, s.cfg.Z0, dcCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("peel step %d: %w", i, err)
		}
		z2, err := tdr.PortImpedance(residual.Param(1, 1), f, s.cfg.Z0, dcCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("peel step %d: %w", i, err)
		}
		tl1, err := tdr.Line(f, z1, s.cfg.Z0, gamma, segLen)
		if err != nil {
			return nil, nil, err
		}
		tl2, err := tdr.Line(f, z2, s.cfg.Z0, gamma, segLen)
		if err != nil {
			return nil, nil, err
		}
		if box1 == nil {
			box1, box2 = tl1, tl2
		} else {
			if box1, err = box1.Cascade(tl1); err != nil {
				return nil, nil, err
			}
			if box2, err = box2.Cascade(tl2); err != nil {
				return nil, nil, err
			}
		}
		if residual, err = stripSides(residual, tl1, tl2); err != nil {
			return nil, nil, fmt.Errorf("peel step %d: %w", i, err)
		}
	}
	if box1 == nil {
		return rf.Thru(f.Clone()), rf.Thru(f.Clone()), nil
	}
	return box1, box2.Flipped(), nil
}

// stripSides removes one segment from each side of the residual.
func stripSides(residual, tl1, tl2 *rf.Network) (*rf.Network, error) {
	inv1, err := tl1.Inverse()
	if err != nil {
		return nil, err
	}
	inv2, err := tl2.Flipped().Inverse()
	if err != nil {
		return nil, err
	}
	out, err := inv1.Cascade(residual)
	if err != nil {
		return nil, err
	}
	return out.Cascade(inv2)
}

// propagationConstant extracts the per-frequency propagation constant
// of the 2x-thru: phase from the unwrapped transmission angle,
// attenuation from the mismatch-corrected transmission magnitude.
func propagationConstant(thru *rf.Network, f rf.Frequency, bandwidthLimit float64) ([]complex128, error) {
	s21 := thru.Param(1, 0)
	s22 := thru.Param(1, 1)
	n := len(s21)

	phase := make([]float64, n)
	for k, v := range s21 {
		phase[k] = cmplx.Phase(v)
	}
	beta := tdr.UnwrapPhase(phase)

	alpha := make([]float64, n)
	for k := 0; k < n; k++ {
		m21 := cmplx.Abs(s21[k])
		m22 := cmplx.Abs(s22[k])
		alpha[k] = 10 * math.Log10(m21*m21/(1-m22*m22)) / -dbPerNeper
	}
	if bandwidthLimit > 0 {
		var err error
		if alpha, err = fitAttenuation(f, alpha, bandwidthLimit); err != nil {
			return nil, err
		}
	}

	gamma := make([]complex128, n)
	for k := 0; k < n; k++ {
		gamma[k] = complex(alpha[k], -beta[k])
	}
	return gamma, nil
}

// fitAttenuation least-squares fits the attenuation to
// c0*sqrt(f) + c1*f + c2*f^2 over the samples below the bandwidth
// limit and evaluates the model over the whole grid.
func fitAttenuation(f rf.Frequency, alpha []float64, limit float64) ([]float64, error) {
	cut := 0
	for k := 1; k < len(f); k++ {
		if math.Abs(f[k]-limit) < math.Abs(f[cut]-limit) {
			cut = k
		}
	}
	if cut < 3 {
		return nil, fmt.Errorf("%w: bandwidth limit %g covers only %d samples", ErrConfig, limit, cut)
	}

	basis := func(fv float64) [3]float64 {
		return [3]float64{math.Sqrt(fv), fv, fv * fv}
	}
	var g [3][3]float64
	var r [3]float64
	for k := 0; k < cut; k++ {
		b := basis(f[k])
		for i := 0; i < 3; i++ {
			r[i] += b[i] * alpha[k]
			for j := 0; j < 3; j++ {
				g[i][j] += b[i] * b[j]
			}
		}
	}
	c, err := solve3(g, r)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(f))
	for k := range f {
		b := basis(f[k])
		out[k] = c[0]*b[0] + c[1]*b[1] + c[2]*b[2]
	}
	return out, nil
}

// solve3 solves a 3x3 linear system by Gaussian elimination with
// partial pivoting.
func solve3(a [3][3]float64, b [3]float64) ([3]float64, error) {
	for col := 0; col < 3; col++ {
		pivot := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if a[pivot][col] == 0 {
			return [3]float64{}, fmt.Errorf("%w: degenerate attenuation fit", ErrConfig)
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]
		for row := col + 1; row < 3; row++ {
			m := a[row][col] / a[col][col]
			for j := col; j < 3; j++ {
				a[row][j] -= m * a[col][j]
			}
			b[row] -= m * b[col]
		}
	}
	var x [3]float64
	for row := 2; row >= 0; row-- {
		sum := b[row]
		for j := row + 1; j < 3; j++ {
			sum -= a[row][j] * x[j]
		}
		x[row] = sum / a[row][row]
	}
	return x, nil
}
