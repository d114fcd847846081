package deembed

import "github.com/TH1622EE/scikit-rf/rf"

// Open removes shunt parasitics measured by an open dummy: the dummy
// admittance matrix is subtracted from the measured admittance matrix
// at every frequency.
type Open struct {
	strategyBase
	open *rf.Network
}

// NewOpen builds an Open strategy from the open dummy measurement.
func NewOpen(open *rf.Network, name string) (*Open, error) {
	if err := checkDummies(open); err != nil {
		return nil, err
	}
	return &Open{
		strategyBase: strategyBase{name: name, freq: open.Freq.Clone(), nports: open.NPorts()},
		open:         open.Clone(),
	}, nil
}

func (o *Open) Deembed(measured *rf.Network) (*rf.Network, error) {
	if err := o.checkMeasured(measured); err != nil {
		return nil, err
	}
	return subtractY(measured, o.open)
}

// Short removes series parasitics measured by a short dummy: the dummy
// impedance matrix is subtracted from the measured impedance matrix at
// every frequency.
type Short struct {
	strategyBase
	short *rf.Network
}

// NewShort builds a Short strategy from the short dummy measurement.
func NewShort(short *rf.Network, name string) (*Short, error) {
	if err := checkDummies(short); err != nil {
		return nil, err
	}
	return &Short{
		strategyBase: strategyBase{name: name, freq: short.Freq.Clone(), nports: short.NPorts()},
		short:        short.Clone(),
	}, nil
}

func (s *Short) Deembed(measured *rf.Network) (*rf.Network, error) {
	if err := s.checkMeasured(measured); err != nil {
		return nil, err
	}
	return subtractZ(measured, s.short)
}

// OpenShort removes shunt parasitics first and series parasitics
// second: the open dummy's admittance is subtracted from the measured
// admittance, then the short dummy's impedance is subtracted from the
// intermediate impedance.
type OpenShort struct {
	strategyBase
	open  *rf.Network
	short *rf.Network
}

// NewOpenShort builds an OpenShort strategy from the open and short
// dummy measurements, which must share one frequency grid.
func NewOpenShort(open, short *rf.Network, name string) (*OpenShort, error) {
	if err := checkDummies(open, short); err != nil {
		return nil, err
	}
	return &OpenShort{
		strategyBase: strategyBase{name: name, freq: open.Freq.Clone(), nports: open.NPorts()},
		open:         open.Clone(),
		short:        short.Clone(),
	}, nil
}

func (o *OpenShort) Deembed(measured *rf.Network) (*rf.Network, error) {
	if err := o.checkMeasured(measured); err != nil {
		return nil, err
	}
	step, err := subtractY(measured, o.open)
	if err != nil {
		return nil, err
	}
	return subtractZ(step, o.short)
}

// ShortOpen removes series parasitics first and shunt parasitics
// second, the dual of OpenShort.
type ShortOpen struct {
	strategyBase
	short *rf.Network
	open  *rf.Network
}

// NewShortOpen builds a ShortOpen strategy from the short and open
// dummy measurements, which must share one frequency grid.
func NewShortOpen(short, open *rf.Network, name string) (*ShortOpen, error) {
	if err := checkDummies(short, open); err != nil {
		return nil, err
	}
	return &ShortOpen{
		strategyBase: strategyBase{name: name, freq: short.Freq.Clone(), nports: short.NPorts()},
		short:        short.Clone(),
		open:         open.Clone(),
	}, nil
}

func (s *ShortOpen) Deembed(measured *rf.Network) (*rf.Network, error) {
	if err := s.checkMeasured(measured); err != nil {
		return nil, err
	}
	step, err := subtractZ(measured, s.short)
	if err != nil {
		return nil, err
	}
	return subtractY(step, s.open)
}

// subtractY returns a network whose admittance is Y(a)-Y(b), expressed
// back in scattering parameters at a's reference impedances.
func subtractY(a, b *rf.Network) (*rf.Network, error) {
	ya, err := a.Y()
	if err != nil {
		return nil, err
	}
	yb, err := b.Y()
	if err != nil {
		return nil, err
	}
	out := a.Clone()
	if err := out.SetY(subtract(ya, yb)); err != nil {
		return nil, err
	}
	return out, nil
}

// subtractZ returns a network whose impedance is Z(a)-Z(b), expressed
// back in scattering parameters at a's reference impedances.
func subtractZ(a, b *rf.Network) (*rf.Network, error) {
	za, err := a.Z()
	if err != nil {
		return nil, err
	}
	zb, err := b.Z()
	if err != nil {
		return nil, err
	}
	out := a.Clone()
	if err := out.SetZ(subtract(za, zb)); err != nil {
		return nil, err
	}
	return out, nil
}
