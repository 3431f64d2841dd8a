package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/leoll2/Ohmulator/pkg/numeric"
)

type Backend string

const (
	Dense  Backend = "dense"
	Sparse Backend = "sparse"
)

func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", Dense:
		return Dense, nil
	case Sparse:
		return Sparse, nil
	}
	return "", fmt.Errorf("unknown solver %q (want dense or sparse)", s)
}

// Solve reduces m with the chosen backend. The sparse backend hands singular
// systems over to Gauss, which resolves them with the zero-division rule.
func Solve[T numeric.Number](m *Augmented[T], backend Backend, digits int) ([]T, bool, error) {
	if backend != Sparse || m.Size() == 0 {
		x, degenerate := Gauss(m, digits)
		return x, degenerate, nil
	}

	x, err := solveSparse(m, digits)
	if err != nil {
		x, degenerate := Gauss(m, digits)
		return x, degenerate, nil
	}
	return x, false, nil
}

func solveSparse[T numeric.Number](m *Augmented[T], digits int) ([]T, error) {
	var zero T
	_, isComplex := any(zero).(complex128)

	cm, err := NewMatrix(m.Size(), isComplex)
	if err != nil {
		return nil, err
	}
	defer cm.Destroy()

	m.Load(cm)
	if err := cm.Solve(); err != nil {
		return nil, err
	}

	x := make([]T, m.Size())
	sol := cm.Solution()
	for i := range x {
		var v T
		switch any(zero).(type) {
		case complex128:
			v = any(cm.ComplexSolution(i + 1)).(T)
		default:
			v = any(sol[i+1]).(T)
		}
		if numeric.Abs(v) > math.MaxFloat64 || math.IsNaN(numeric.Abs(v)) {
			return nil, fmt.Errorf("unknown %d is not finite", i+1)
		}
		x[i] = numeric.Round(v, digits)
	}
	return x, nil
}

// Residual returns max|A·x - b| of a real system, a check on the accuracy
// of a solution.
func Residual(m *Augmented[float64], x []float64) float64 {
	n := m.Size()
	if n == 0 {
		return 0
	}
	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, m.At(i, j))
		}
		b.SetVec(i, m.RHS(i))
	}

	var r mat.VecDense
	r.MulVec(a, mat.NewVecDense(n, x))
	r.SubVec(&r, b)
	return mat.Norm(&r, math.Inf(1))
}
