package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDivZeroConvention(t *testing.T) {
	r, deg := Div(complex(3, 4), 0)
	assert.True(t, deg)
	assert.Equal(t, complex128(0), r)

	f, deg := Div(0.0, 0.0)
	assert.True(t, deg)
	assert.Equal(t, 0.0, f)

	f, deg = Div(6.0, 3.0)
	assert.False(t, deg)
	assert.Equal(t, 2.0, f)
}

func TestInv(t *testing.T) {
	assert.Equal(t, 0.5, Inv(2.0))
	assert.True(t, math.IsInf(Inv(0.0), 1))

	c := Inv(complex128(0))
	assert.True(t, math.IsInf(real(c), 1))
	assert.True(t, math.IsInf(imag(c), 1))

	assert.InDelta(t, 0.0, real(Inv(complex(0, 2))), 1e-12)
	assert.InDelta(t, -0.5, imag(Inv(complex(0, 2))), 1e-12)
}

func TestAbsArgOpp(t *testing.T) {
	assert.Equal(t, 5.0, Abs(complex(3, -4)))
	assert.Equal(t, 2.0, Abs(-2.0))
	assert.InDelta(t, math.Pi/2, Arg(complex(0, 1)), 1e-12)
	assert.Equal(t, math.Pi, Arg(-1.0))
	assert.Equal(t, complex(-1, 2), Opp(complex(1, -2)))
	assert.Equal(t, complex(4, 2), Add(complex(1, 1), Mul(complex(1, 1), complex(2, -1))))
	assert.Equal(t, 1.5, Sub(2.0, 0.5))
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.234564, 1.23456},
		{1.234566, 1.23457},
		{-0.000004, 0},
		{10, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(tt.in, 5), "Round(%v)", tt.in)
	}
	assert.Equal(t, complex(0.33333, -0.66667), Round(complex(1.0/3, -2.0/3), 5))
}

func TestPolar(t *testing.T) {
	p := Polar(2, math.Pi/2)
	assert.InDelta(t, 0, real(p), 1e-12)
	assert.InDelta(t, 2, imag(p), 1e-12)
	assert.Equal(t, complex(3, 0), FromReal[complex128](3))
	assert.Equal(t, 3.0, FromReal[float64](3))
}
