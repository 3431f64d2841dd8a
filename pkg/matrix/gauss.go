package matrix

import "github.com/leoll2/Ohmulator/pkg/numeric"

// Gauss solves the augmented system by elimination with partial pivoting
// and returns the unknowns rounded to digits decimals. m is left untouched.
//
// A division by zero yields 0 instead of Inf or NaN, and degenerate is set.
// This happens when part of the circuit floats with no path to ground: its
// voltages are undefined and come out as 0.
func Gauss[T numeric.Number](m *Augmented[T], digits int) (x []T, degenerate bool) {
	a := m.Clone()
	n := a.size
	rows := a.rows

	for i := 0; i < n; i++ {
		pivot, best := i, numeric.Abs(rows[i][i])
		for j := i + 1; j < n; j++ {
			if v := numeric.Abs(rows[j][i]); v > best {
				pivot, best = j, v
			}
		}
		rows[i], rows[pivot] = rows[pivot], rows[i]

		for j := i + 1; j < n; j++ {
			q, deg := numeric.Div(rows[j][i], rows[i][i])
			degenerate = degenerate || deg
			c := numeric.Opp(q)
			rows[j][i] = 0
			for k := i + 1; k <= n; k++ {
				rows[j][k] += c * rows[i][k]
			}
		}
	}

	x = make([]T, n)
	for i := n - 1; i >= 0; i-- {
		v, deg := numeric.Div(rows[i][n], rows[i][i])
		degenerate = degenerate || deg
		x[i] = v
		for j := i - 1; j >= 0; j-- {
			rows[j][n] -= v * rows[j][i]
		}
	}

	for i := range x {
		x[i] = numeric.Round(x[i], digits)
	}
	return x, degenerate
}
