package matrix

import (
	"fmt"
	"io"
	"strings"

	"github.com/leoll2/Ohmulator/pkg/numeric"
)

// Augmented is a dense n×(n+1) system [A | b], 0-based. Unknown k is the
// voltage of node k+1.
type Augmented[T numeric.Number] struct {
	size int
	rows [][]T
}

func NewAugmented[T numeric.Number](n int) *Augmented[T] {
	rows := make([][]T, n)
	for i := range rows {
		rows[i] = make([]T, n+1)
	}
	return &Augmented[T]{size: n, rows: rows}
}

// FromRows wraps existing rows; each must have len(rows)+1 entries.
func FromRows[T numeric.Number](rows [][]T) (*Augmented[T], error) {
	for i, r := range rows {
		if len(r) != len(rows)+1 {
			return nil, fmt.Errorf("row %d has %d entries, want %d", i, len(r), len(rows)+1)
		}
	}
	return &Augmented[T]{size: len(rows), rows: rows}, nil
}

func (m *Augmented[T]) Size() int { return m.size }

func (m *Augmented[T]) At(i, j int) T { return m.rows[i][j] }

func (m *Augmented[T]) Set(i, j int, v T) { m.rows[i][j] = v }

func (m *Augmented[T]) Add(i, j int, v T) { m.rows[i][j] += v }

func (m *Augmented[T]) RHS(i int) T { return m.rows[i][m.size] }

func (m *Augmented[T]) AddRHS(i int, v T) { m.rows[i][m.size] += v }

// Row exposes row i, constant term last.
func (m *Augmented[T]) Row(i int) []T { return m.rows[i] }

// AddRow adds row src into row dst.
func (m *Augmented[T]) AddRow(dst, src int) {
	for j := range m.rows[dst] {
		m.rows[dst][j] += m.rows[src][j]
	}
}

func (m *Augmented[T]) ClearRow(i int) {
	clear(m.rows[i])
}

func (m *Augmented[T]) Clone() *Augmented[T] {
	clone := NewAugmented[T](m.size)
	for i := range m.rows {
		copy(clone.rows[i], m.rows[i])
	}
	return clone
}

// Load stamps the nonzero entries into dst, shifting to 1-based indices.
func (m *Augmented[T]) Load(dst DeviceMatrix) {
	for i, row := range m.rows {
		for j, v := range row {
			if v == 0 {
				continue
			}
			switch x := any(v).(type) {
			case complex128:
				if j == m.size {
					dst.AddComplexRHS(i+1, real(x), imag(x))
				} else {
					dst.AddComplexElement(i+1, j+1, real(x), imag(x))
				}
			case float64:
				if j == m.size {
					dst.AddRHS(i+1, x)
				} else {
					dst.AddElement(i+1, j+1, x)
				}
			}
		}
	}
}

// Fprint writes the system one equation per line.
func (m *Augmented[T]) Fprint(w io.Writer) {
	for i, row := range m.rows {
		var sb strings.Builder
		for j := 0; j < m.size; j++ {
			if row[j] != 0 {
				fmt.Fprintf(&sb, " %+v*v%d", row[j], j+1)
			}
		}
		fmt.Fprintf(w, "eq%d:%s = %v\n", i+1, sb.String(), row[m.size])
	}
}
