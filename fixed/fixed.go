// Package fixed implements the 16.16 fixed-point numbers and binary angles
// shared by the WAD loader and the renderer.
//
// A Fixed holds a signed value scaled by FracUnit. Products and quotients are
// computed with 64-bit intermediates so the usual Doom overflow traps are
// avoided; Div saturates instead of trapping when the quotient does not fit.
package fixed

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Fixed is a 16.16 fixed-point number.
type Fixed int32

const (
	FracBits          = 16
	FracUnit    Fixed = 1 << FracBits
	MaxFixed    Fixed = math.MaxInt32
	MinFixed    Fixed = math.MinInt32
	fracUnitF64       = float64(FracUnit)
)

// FromInt converts an integer to fixed point.
func FromInt[T constraints.Integer](n T) Fixed {
	return Fixed(n) << FracBits
}

// FromFloat converts a float to the nearest fixed-point value, saturating at
// the limits of the type.
func FromFloat[T constraints.Float](f T) Fixed {
	v := math.Round(float64(f) * fracUnitF64)
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return MaxFixed
	case v <= math.MinInt32:
		return MinFixed
	}
	return Fixed(v)
}

// Int truncates towards negative infinity, like an arithmetic shift.
func (f Fixed) Int() int {
	return int(f >> FracBits)
}

// Float returns f as a float64.
func (f Fixed) Float() float64 {
	return float64(f) / fracUnitF64
}

// Mul returns a*b.
func Mul(a, b Fixed) Fixed {
	return Fixed((int64(a) * int64(b)) >> FracBits)
}

// Div returns a/b, saturating to MaxFixed or MinFixed when the result would
// overflow (including division by zero).
func Div(a, b Fixed) Fixed {
	if abs64(int64(a))>>14 >= abs64(int64(b)) {
		if (a < 0) != (b < 0) {
			return MinFixed
		}
		return MaxFixed
	}
	return Fixed((int64(a) << FracBits) / int64(b))
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
