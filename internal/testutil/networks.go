package testutil

import (
	"math"
	"math/cmplx"

	"github.com/TH1622EE/scikit-rf/rf"
)

// LinearFrequency generates a uniform frequency grid from start to stop
// inclusive.
func LinearFrequency(start, stop float64, n int) rf.Frequency {
	out := make(rf.Frequency, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// MatchedLine generates a reflectionless delay line: s11 = s22 = 0 and
// s21 = s12 = exp(-j*2*pi*f*delay) * 10^(-lossDB/20).
func MatchedLine(freq rf.Frequency, delay, lossDB float64) *rf.Network {
	n := rf.New(freq.Clone(), 2)
	mag := math.Pow(10, -lossDB/20)
	for k, f := range freq {
		s21 := cmplx.Rect(mag, -2*math.Pi*f*delay)
		n.Set(k, 0, 1, s21)
		n.Set(k, 1, 0, s21)
	}
	return n
}

// ShuntAdmittance generates a 2-port with an identical shunt
// admittance to ground at each port and no through path, the shape of
// an open dummy. With a non-nil scale the admittance at grid point k
// is y*scale[k].
func ShuntAdmittance(freq rf.Frequency, y complex128, scale []complex128) (*rf.Network, error) {
	n := rf.New(freq.Clone(), 2)
	ym := make([][]complex128, len(freq))
	for k := range freq {
		v := y
		if scale != nil {
			v *= scale[k]
		}
		ym[k] = []complex128{v, 0, 0, v}
	}
	if err := n.SetY(ym); err != nil {
		return nil, err
	}
	return n, nil
}

// SeriesImpedance generates a 2-port whose ports each see an identical
// impedance to ground, the shape of a short dummy measured through its
// series parasitics. Scaled per grid point like ShuntAdmittance.
func SeriesImpedance(freq rf.Frequency, z complex128, scale []complex128) (*rf.Network, error) {
	n := rf.New(freq.Clone(), 2)
	zm := make([][]complex128, len(freq))
	for k := range freq {
		v := z
		if scale != nil {
			v *= scale[k]
		}
		zm[k] = []complex128{v, 0, 0, v}
	}
	if err := n.SetZ(zm); err != nil {
		return nil, err
	}
	return n, nil
}

// PiThru generates a symmetric pi 2-port: shunt admittance yshunt at
// each port and series admittance yseries between them.
func PiThru(freq rf.Frequency, yshunt, yseries complex128, scale []complex128) (*rf.Network, error) {
	n := rf.New(freq.Clone(), 2)
	ym := make([][]complex128, len(freq))
	for k := range freq {
		ys, ym2 := yshunt, yseries
		if scale != nil {
			ys *= scale[k]
			ym2 *= scale[k]
		}
		ym[k] = []complex128{ys + ym2, -ym2, -ym2, ys + ym2}
	}
	if err := n.SetY(ym); err != nil {
		return nil, err
	}
	return n, nil
}

// TeeThru generates a symmetric tee 2-port: series impedance zseries
// in each arm and shunt impedance zshunt in the middle leg.
func TeeThru(freq rf.Frequency, zseries, zshunt complex128, scale []complex128) (*rf.Network, error) {
	n := rf.New(freq.Clone(), 2)
	zm := make([][]complex128, len(freq))
	for k := range freq {
		zs, zm2 := zseries, zshunt
		if scale != nil {
			zs *= scale[k]
			zm2 *= scale[k]
		}
		zm[k] = []complex128{zs + zm2, zm2, zm2, zs + zm2}
	}
	if err := n.SetZ(zm); err != nil {
		return nil, err
	}
	return n, nil
}

// OmegaScale returns j*2*pi*f per grid point, the per-frequency factor
// of an ideal capacitor admittance or inductor impedance.
func OmegaScale(freq rf.Frequency) []complex128 {
	out := make([]complex128, len(freq))
	for k, f := range freq {
		out[k] = complex(0, 2*math.Pi*f)
	}
	return out
}
