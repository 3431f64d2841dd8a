package numeric

import (
	"math"
	"math/cmplx"
)

// Number is the scalar type the solver works on: real for DC, phasor for AC.
type Number interface {
	float64 | complex128
}

func Add[T Number](a, b T) T { return a + b }
func Sub[T Number](a, b T) T { return a - b }
func Mul[T Number](a, b T) T { return a * b }
func Opp[T Number](a T) T    { return -a }

// Div returns a/b. A zero divisor gives 0 and reports degenerate=true,
// which lets floating sub-circuits resolve to 0 instead of NaN.
func Div[T Number](a, b T) (result T, degenerate bool) {
	var zero T
	if b == zero {
		return zero, true
	}
	return a / b, false
}

// Inv returns 1/a. Zero maps to +Inf (real) or (+Inf, +Inf) (complex).
func Inv[T Number](a T) T {
	var zero T
	if a != zero {
		return 1 / a
	}
	switch any(a).(type) {
	case complex128:
		return any(complex(math.Inf(1), math.Inf(1))).(T)
	default:
		return any(math.Inf(1)).(T)
	}
}

func Abs[T Number](a T) float64 {
	switch v := any(a).(type) {
	case complex128:
		return cmplx.Abs(v)
	case float64:
		return math.Abs(v)
	}
	return 0
}

// Arg is the phase in radians. Negative reals give Pi.
func Arg[T Number](a T) float64 {
	switch v := any(a).(type) {
	case complex128:
		return cmplx.Phase(v)
	case float64:
		if v < 0 {
			return math.Pi
		}
	}
	return 0
}

// Round rounds half away from zero to the given number of decimals,
// separately for the real and imaginary parts.
func Round[T Number](a T, digits int) T {
	switch v := any(a).(type) {
	case complex128:
		return any(complex(roundFloat(real(v), digits), roundFloat(imag(v), digits))).(T)
	case float64:
		return any(roundFloat(v, digits)).(T)
	}
	return a
}

func roundFloat(v float64, digits int) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	scale := math.Pow(10, float64(digits))
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// FromReal lifts a real value into T.
func FromReal[T Number](v float64) T {
	var zero T
	switch any(zero).(type) {
	case complex128:
		return any(complex(v, 0)).(T)
	default:
		return any(v).(T)
	}
}

// Polar builds the phasor mag∠phase (radians).
func Polar(mag, phase float64) complex128 {
	return cmplx.Rect(mag, phase)
}
