package deembed

import (
	"fmt"

	"github.com/TH1622EE/scikit-rf/rf"
)

// SplitPi splits a symmetric 2-port thru dummy into two mirrored
// halves under a pi (shunt-series-shunt) circuit assumption and strips
// one half from each side of the measurement. The left half is derived
// per frequency from the thru admittance matrix:
//
//	yl11 = (y11 - y21 + y22 - y12) / 2
//	yl12 = yl21 = y12 + y21
//	yl22 = -(y12 + y21)
//
// and the right half is the left half with its ports flipped.
type SplitPi struct {
	strategyBase
	leftInv  *rf.Network
	rightInv *rf.Network
}

// NewSplitPi builds a SplitPi strategy from a symmetric 2-port thru
// dummy measurement.
func NewSplitPi(thru *rf.Network, name string) (*SplitPi, error) {
	left, err := splitHalf(thru, true, piHalf)
	if err != nil {
		return nil, err
	}
	li, ri, err := halfInverses(left)
	if err != nil {
		return nil, err
	}
	return &SplitPi{
		strategyBase: strategyBase{name: name, freq: thru.Freq.Clone(), nports: 2},
		leftInv:      li,
		rightInv:     ri,
	}, nil
}

func (p *SplitPi) Deembed(measured *rf.Network) (*rf.Network, error) {
	if err := p.checkMeasured(measured); err != nil {
		return nil, err
	}
	return stripHalves(p.leftInv, measured, p.rightInv)
}

// SplitTee splits a symmetric 2-port thru dummy into two mirrored
// halves under a tee (series-shunt-series) circuit assumption. The
// left half is derived per frequency from the thru impedance matrix:
//
//	zl11 = (z11 + z21 + z22 + z12) / 2
//	zl12 = zl21 = zl22 = z12 + z21
//
// and the right half is the left half with its ports flipped.
type SplitTee struct {
	strategyBase
	leftInv  *rf.Network
	rightInv *rf.Network
}

// NewSplitTee builds a SplitTee strategy from a symmetric 2-port thru
// dummy measurement.
func NewSplitTee(thru *rf.Network, name string) (*SplitTee, error) {
	left, err := splitHalf(thru, false, teeHalf)
	if err != nil {
		return nil, err
	}
	li, ri, err := halfInverses(left)
	if err != nil {
		return nil, err
	}
	return &SplitTee{
		strategyBase: strategyBase{name: name, freq: thru.Freq.Clone(), nports: 2},
		leftInv:      li,
		rightInv:     ri,
	}, nil
}

func (t *SplitTee) Deembed(measured *rf.Network) (*rf.Network, error) {
	if err := t.checkMeasured(measured); err != nil {
		return nil, err
	}
	return stripHalves(t.leftInv, measured, t.rightInv)
}

// piHalf fills the left-half admittance matrix from the thru
// admittance matrix at one frequency.
func piHalf(y []complex128) []complex128 {
	sum := y[1] + y[2]
	return []complex128{
		(y[0] - y[2] + y[3] - y[1]) / 2, sum,
		sum, -sum,
	}
}

// teeHalf fills the left-half impedance matrix from the thru impedance
// matrix at one frequency.
func teeHalf(z []complex128) []complex128 {
	sum := z[1] + z[2]
	return []complex128{
		(z[0] + z[2] + z[3] + z[1]) / 2, sum,
		sum, sum,
	}
}

// splitHalf computes the left half of a symmetric 2-port thru. The pi
// form transforms in the admittance domain, the tee form in the
// impedance domain.
func splitHalf(thru *rf.Network, inY bool, combine func([]complex128) []complex128) (*rf.Network, error) {
	if err := checkDummies(thru); err != nil {
		return nil, err
	}
	if thru.NPorts() != 2 {
		return nil, fmt.Errorf("%w: thru dummy must have 2 ports, got %d", ErrConfig, thru.NPorts())
	}
	var (
		params [][]complex128
		err    error
	)
	if inY {
		params, err = thru.Y()
	} else {
		params, err = thru.Z()
	}
	if err != nil {
		return nil, err
	}
	half := make([][]complex128, len(params))
	for k := range params {
		half[k] = combine(params[k])
	}
	left := thru.Clone()
	if inY {
		err = left.SetY(half)
	} else {
		err = left.SetZ(half)
	}
	if err != nil {
		return nil, err
	}
	return left, nil
}

// halfInverses inverts the left half and its flipped mirror once at
// construction so Deembed is a pair of cascades.
func halfInverses(left *rf.Network) (*rf.Network, *rf.Network, error) {
	li, err := left.Inverse()
	if err != nil {
		return nil, nil, err
	}
	ri, err := left.Flipped().Inverse()
	if err != nil {
		return nil, nil, err
	}
	return li, ri, nil
}

// stripHalves applies leftInv ** measured ** rightInv.
func stripHalves(leftInv, measured, rightInv *rf.Network) (*rf.Network, error) {
	step, err := leftInv.Cascade(measured)
	if err != nil {
		return nil, err
	}
	return step.Cascade(rightInv)
}
