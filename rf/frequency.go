package rf

import (
	"errors"
	"fmt"
)

// Frequency errors.
var (
	ErrEmptyGrid     = errors.New("rf: frequency grid is empty")
	ErrGridNotSorted = errors.New("rf: frequency grid must be strictly increasing")
)

// Frequency is a strictly increasing sequence of sample frequencies in Hz.
// The grid may or may not include a DC sample (f = 0).
type Frequency []float64

// Validate checks that the grid is non-empty, non-negative and strictly
// increasing.
func (f Frequency) Validate() error {
	if len(f) == 0 {
		return ErrEmptyGrid
	}
	if f[0] < 0 {
		return fmt.Errorf("%w: negative frequency %g at index 0", ErrGridNotSorted, f[0])
	}
	for i := 1; i < len(f); i++ {
		if f[i] <= f[i-1] {
			return fmt.Errorf("%w: at index %d", ErrGridNotSorted, i)
		}
	}
	return nil
}

// Equal reports whether two grids are sample-for-sample identical.
func (f Frequency) Equal(other Frequency) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if f[i] != other[i] {
			return false
		}
	}
	return true
}

// HasDC reports whether the grid includes a DC sample.
func (f Frequency) HasDC() bool {
	return len(f) > 0 && f[0] == 0
}

// Clone returns a copy of the grid.
func (f Frequency) Clone() Frequency {
	out := make(Frequency, len(f))
	copy(out, f)
	return out
}
