package rf

import (
	"errors"
	"math/cmplx"
	"testing"
)

func testFreq(n int) Frequency {
	f := make(Frequency, n)
	for i := range f {
		f[i] = 1e9 * float64(i+1)
	}
	return f
}

func TestFrequencyValidate(t *testing.T) {
	if err := (Frequency{}).Validate(); !errors.Is(err, ErrEmptyGrid) {
		t.Fatalf("empty grid: %v", err)
	}
	if err := (Frequency{1e9, 1e9}).Validate(); !errors.Is(err, ErrGridNotSorted) {
		t.Fatalf("duplicate sample: %v", err)
	}
	if err := (Frequency{2e9, 1e9}).Validate(); !errors.Is(err, ErrGridNotSorted) {
		t.Fatalf("descending grid: %v", err)
	}
	if err := (Frequency{0, 1e9, 2e9}).Validate(); err != nil {
		t.Fatalf("valid grid with dc: %v", err)
	}
}

func TestFrequencyHasDC(t *testing.T) {
	if (Frequency{1e9, 2e9}).HasDC() {
		t.Fatal("grid without dc reported dc")
	}
	if !(Frequency{0, 1e9}).HasDC() {
		t.Fatal("grid with dc not reported")
	}
}

func TestNewDefaults(t *testing.T) {
	n := New(testFreq(4), 2)
	if n.NPorts() != 2 || n.NPoints() != 4 {
		t.Fatalf("shape = %d ports, %d points", n.NPorts(), n.NPoints())
	}
	for _, z := range n.Z0 {
		if z != DefaultZ0 {
			t.Fatalf("z0 = %v, want %v", z, DefaultZ0)
		}
	}
}

func TestThru(t *testing.T) {
	n := Thru(testFreq(3))
	for k := 0; k < n.NPoints(); k++ {
		if n.At(k, 0, 1) != 1 || n.At(k, 1, 0) != 1 {
			t.Fatalf("sample %d: transmission not unity", k)
		}
		if n.At(k, 0, 0) != 0 || n.At(k, 1, 1) != 0 {
			t.Fatalf("sample %d: reflection not zero", k)
		}
	}
}

func TestCloneIndependent(t *testing.T) {
	n := Thru(testFreq(3))
	c := n.Clone()
	c.Set(1, 0, 1, 0.5)
	c.Freq[0] = 7
	c.Z0[0] = 75
	if n.At(1, 0, 1) != 1 || n.Freq[0] == 7 || n.Z0[0] == 75 {
		t.Fatal("clone shares state with original")
	}
}

func TestParamRoundTrip(t *testing.T) {
	n := New(testFreq(3), 2)
	want := []complex128{1, 2i, 3 + 1i}
	if err := n.SetParam(1, 0, want); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	got := n.Param(1, 0)
	for k := range want {
		if got[k] != want[k] {
			t.Fatalf("sample %d: got %v, want %v", k, got[k], want[k])
		}
	}
	if err := n.SetParam(0, 1, []complex128{1}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestFlipped(t *testing.T) {
	n := New(testFreq(2), 2)
	n.Set(0, 0, 0, 1)
	n.Set(0, 0, 1, 2)
	n.Set(0, 1, 0, 3)
	n.Set(0, 1, 1, 4)
	f := n.Flipped()
	if f.At(0, 0, 0) != 4 || f.At(0, 1, 1) != 1 {
		t.Fatal("reflections not swapped")
	}
	if f.At(0, 0, 1) != 3 || f.At(0, 1, 0) != 2 {
		t.Fatal("transmissions not swapped")
	}
	ff := f.Flipped()
	for i := range n.S[0] {
		if ff.S[0][i] != n.S[0][i] {
			t.Fatal("double flip is not the identity")
		}
	}
}

func TestCascadeWithInverse(t *testing.T) {
	f := testFreq(8)
	n := New(f, 2)
	for k, fv := range f {
		n.Set(k, 0, 0, complex(0.1, 0.02))
		n.Set(k, 0, 1, cmplx.Rect(0.9, -1e-10*fv))
		n.Set(k, 1, 0, cmplx.Rect(0.9, -1e-10*fv))
		n.Set(k, 1, 1, complex(-0.05, 0.01))
	}
	inv, err := n.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	id, err := inv.Cascade(n)
	if err != nil {
		t.Fatalf("Cascade: %v", err)
	}
	thru := Thru(f)
	for k := range f {
		for i := range id.S[k] {
			if d := cmplx.Abs(id.S[k][i] - thru.S[k][i]); d > 1e-12 {
				t.Fatalf("sample %d element %d: off identity by %v", k, i, d)
			}
		}
	}
}

func TestCascadeGridMismatch(t *testing.T) {
	a := Thru(testFreq(3))
	b := Thru(testFreq(4))
	if _, err := a.Cascade(b); !errors.Is(err, ErrGridMismatch) {
		t.Fatalf("err = %v, want ErrGridMismatch", err)
	}
}

func TestCascadeRenormalizesMismatchedZ0(t *testing.T) {
	f := testFreq(4)
	a := Thru(f)
	b := Thru(f)
	for i := range b.Z0 {
		b.Z0[i] = 75
	}
	out, err := a.Cascade(b)
	if err != nil {
		t.Fatalf("Cascade: %v", err)
	}
	if out.Z0[0] != a.Z0[0] {
		t.Fatalf("result z0 = %v, want %v", out.Z0[0], a.Z0[0])
	}
	// A direct connection is reference-independent when both ports move
	// together, so the cascade of two thrus stays an ideal thru.
	requireSameS(t, out, Thru(f), 1e-12)

	// A line matched at 75 ohm reflects at 50 ohm.
	line := New(f, 2)
	for i := range line.Z0 {
		line.Z0[i] = 75
	}
	for k := range line.S {
		v := cmplx.Rect(1, -1e-10*line.Freq[k])
		line.Set(k, 0, 1, v)
		line.Set(k, 1, 0, v)
	}
	out, err = a.Cascade(line)
	if err != nil {
		t.Fatalf("Cascade line: %v", err)
	}
	if cmplx.Abs(out.At(0, 0, 0)) == 0 {
		t.Fatal("renormalization had no effect")
	}
}
