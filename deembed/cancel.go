package deembed

import (
	"fmt"

	"github.com/TH1622EE/scikit-rf/rf"
)

// AdmittanceCancel removes a symmetric thru fixture by mono-directional
// cancellation in the admittance domain: the measurement is cascaded
// with the inverted thru, the result is averaged with its
// port-flipped mirror in Y parameters, and the average is the device.
// The method suits shunt-dominated (pi-like) fixtures.
type AdmittanceCancel struct {
	strategyBase
	thruInv *rf.Network
}

// NewAdmittanceCancel builds an AdmittanceCancel strategy from a
// symmetric 2-port thru dummy measurement.
func NewAdmittanceCancel(thru *rf.Network, name string) (*AdmittanceCancel, error) {
	inv, err := cancelThruInverse(thru)
	if err != nil {
		return nil, err
	}
	return &AdmittanceCancel{
		strategyBase: strategyBase{name: name, freq: thru.Freq.Clone(), nports: 2},
		thruInv:      inv,
	}, nil
}

func (a *AdmittanceCancel) Deembed(measured *rf.Network) (*rf.Network, error) {
	if err := a.checkMeasured(measured); err != nil {
		return nil, err
	}
	h, err := measured.Cascade(a.thruInv)
	if err != nil {
		return nil, err
	}
	hf := h.Flipped()
	yh, err := h.Y()
	if err != nil {
		return nil, err
	}
	yf, err := hf.Y()
	if err != nil {
		return nil, err
	}
	out := h.Clone()
	if err := out.SetY(average(yh, yf)); err != nil {
		return nil, err
	}
	return out, nil
}

// ImpedanceCancel is the impedance-domain dual of AdmittanceCancel:
// the half-corrected measurement is averaged with its port-flipped
// mirror in Z parameters. The method suits series-dominated (tee-like)
// fixtures.
type ImpedanceCancel struct {
	strategyBase
	thruInv *rf.Network
}

// NewImpedanceCancel builds an ImpedanceCancel strategy from a
// symmetric 2-port thru dummy measurement.
func NewImpedanceCancel(thru *rf.Network, name string) (*ImpedanceCancel, error) {
	inv, err := cancelThruInverse(thru)
	if err != nil {
		return nil, err
	}
	return &ImpedanceCancel{
		strategyBase: strategyBase{name: name, freq: thru.Freq.Clone(), nports: 2},
		thruInv:      inv,
	}, nil
}

func (im *ImpedanceCancel) Deembed(measured *rf.Network) (*rf.Network, error) {
	if err := im.checkMeasured(measured); err != nil {
		return nil, err
	}
	h, err := measured.Cascade(im.thruInv)
	if err != nil {
		return nil, err
	}
	hf := h.Flipped()
	zh, err := h.Z()
	if err != nil {
		return nil, err
	}
	zf, err := hf.Z()
	if err != nil {
		return nil, err
	}
	out := h.Clone()
	if err := out.SetZ(average(zh, zf)); err != nil {
		return nil, err
	}
	return out, nil
}

func cancelThruInverse(thru *rf.Network) (*rf.Network, error) {
	if err := checkDummies(thru); err != nil {
		return nil, err
	}
	if thru.NPorts() != 2 {
		return nil, fmt.Errorf("%w: thru dummy must have 2 ports, got %d", ErrConfig, thru.NPorts())
	}
	return thru.Inverse()
}
