package matrix

import (
	"fmt"

	"github.com/edp1096/sparse"
)

// CircuitMatrix is a sparse nodal system backed by github.com/edp1096/sparse.
// Vectors are 1-based; complex vectors interleave real and imaginary parts.
type CircuitMatrix struct {
	Size      int
	matrix    *sparse.Matrix
	rhs       []float64
	solution  []float64
	isComplex bool
}

func NewMatrix(size int, isComplex bool) (*CircuitMatrix, error) {
	config := &sparse.Configuration{
		Real:           true,
		Complex:        isComplex,
		Expandable:     true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %v", err)
	}

	vectorSize := size + 1 // 1-based
	if isComplex {
		vectorSize *= 2
	}

	return &CircuitMatrix{
		Size:      size,
		matrix:    mat,
		rhs:       make([]float64, vectorSize),
		isComplex: isComplex,
	}, nil
}

func (m *CircuitMatrix) inBounds(i, j int) bool {
	return i > 0 && j > 0 && i <= m.Size && j <= m.Size
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) {
	if !m.inBounds(i, j) {
		return
	}
	m.matrix.GetElement(int64(i), int64(j)).Real += value
}

func (m *CircuitMatrix) AddComplexElement(i, j int, real, imag float64) {
	if !m.inBounds(i, j) {
		return
	}
	element := m.matrix.GetElement(int64(i), int64(j))
	element.Real += real
	element.Imag += imag
}

func (m *CircuitMatrix) AddRHS(i int, value float64) {
	if !m.inBounds(i, i) {
		return
	}
	if m.isComplex {
		m.rhs[2*i] += value
		return
	}
	m.rhs[i] += value
}

func (m *CircuitMatrix) AddComplexRHS(i int, real, imag float64) {
	if !m.inBounds(i, i) {
		return
	}
	m.rhs[2*i] += real
	m.rhs[2*i+1] += imag
}

// Solve factors the matrix and solves it against the loaded right-hand side.
// A singular matrix fails at factorization with a zero pivot.
func (m *CircuitMatrix) Solve() error {
	var err error

	err = m.matrix.Factor()
	if err != nil {
		return fmt.Errorf("matrix factorization failed: %v", err)
	}

	if m.isComplex {
		m.solution, _, err = m.matrix.SolveComplex(m.rhs, nil)
	} else {
		m.solution, err = m.matrix.Solve(m.rhs)
	}
	if err != nil {
		return fmt.Errorf("matrix solve failed: %v", err)
	}
	return nil
}

func (m *CircuitMatrix) Solution() []float64 {
	return m.solution
}

// ComplexSolution returns unknown i (1-based) of a complex solve.
func (m *CircuitMatrix) ComplexSolution(i int) complex128 {
	if !m.isComplex || i <= 0 || i > m.Size {
		return 0
	}
	return complex(m.solution[2*i], m.solution[2*i+1])
}

func (m *CircuitMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
	}
}
