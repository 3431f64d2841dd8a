package nodal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leoll2/Ohmulator/pkg/circuit"
	"github.com/leoll2/Ohmulator/pkg/device"
	"github.com/leoll2/Ohmulator/pkg/kcl"
	"github.com/leoll2/Ohmulator/pkg/matrix"
	"github.com/leoll2/Ohmulator/pkg/numeric"
	"github.com/leoll2/Ohmulator/pkg/topology"
)

type edge struct {
	p1, p2 int
	elem   device.Element
}

func newCircuit(t *testing.T, nodes int, edges ...edge) *circuit.Circuit {
	t.Helper()
	c := circuit.New(t.Name())
	for i := 0; i < nodes; i++ {
		c.AddNode(0, 0)
	}
	for _, e := range edges {
		_, err := c.AddBranch(e.p1, e.p2, e.elem)
		require.NoError(t, err)
	}
	return c
}

func build[T numeric.Number](t *testing.T, c *circuit.Circuit) *matrix.Augmented[T] {
	t.Helper()
	e := kcl.New[T](c)
	require.NoError(t, topology.FindConnectedComponents(c, topology.Bypass(e.Regime())))
	m, err := Build(c, e)
	require.NoError(t, err)
	return m
}

func rows[T numeric.Number](m *matrix.Augmented[T]) [][]T {
	out := make([][]T, m.Size())
	for i := range out {
		out[i] = m.Row(i)
	}
	return out
}

func TestAdmittanceWithoutBypass(t *testing.T) {
	c := newCircuit(t, 3,
		edge{0, 1, device.NewDCCurrentSource("I1", 2)},
		edge{1, 2, device.NewResistor("R1", 2)},
		edge{2, 0, device.NewResistor("R2", 4)},
	)
	m := build[float64](t, c)
	assert.Equal(t, [][]float64{
		{0.5, -0.5, 2},
		{-0.5, 0.75, 0},
	}, rows(m))
}

func TestGroundedSourceConstraint(t *testing.T) {
	c := newCircuit(t, 3,
		edge{0, 1, device.NewDCVoltageSource("V1", 10)},
		edge{1, 2, device.NewResistor("R1", 2)},
		edge{2, 0, device.NewResistor("R2", 2)},
	)
	m := build[float64](t, c)
	assert.Equal(t, [][]float64{
		{1, 0, 10},
		{-0.5, 1, 0},
	}, rows(m))

	x, degenerate := matrix.Gauss(m, 5)
	assert.False(t, degenerate)
	assert.Equal(t, []float64{10, 5}, x)
}

func TestSupernode(t *testing.T) {
	// V1 and W1 join nodes 1, 2 and 3 under root 1
	c := newCircuit(t, 4,
		edge{1, 2, device.NewDCVoltageSource("V1", 3)},
		edge{1, 0, device.NewResistor("R1", 1)},
		edge{2, 0, device.NewResistor("R2", 1)},
		edge{0, 3, device.NewDCCurrentSource("I1", 4)},
		edge{3, 2, device.NewWire("W1")},
	)
	m := build[float64](t, c)
	assert.Equal(t, [][]float64{
		{1, 1, 0, 4},
		{-1, 1, 0, 3},
		{0, 1, -1, 0},
	}, rows(m))

	x, degenerate := matrix.Gauss(m, 5)
	assert.False(t, degenerate)
	assert.Equal(t, []float64{0.5, 3.5, 3.5}, x)
}

func TestCCCSConstant(t *testing.T) {
	c := newCircuit(t, 4,
		edge{0, 1, device.NewDCCurrentSource("I1", 3)},
		edge{1, 2, device.NewResistor("R1", 1)},
		edge{2, 0, device.NewResistor("R2", 1)},
		edge{0, 3, device.NewCCCS("F1", 2, 0)},
		edge{3, 1, device.NewResistor("R3", 1)},
	)
	m := build[float64](t, c)
	assert.Equal(t, []float64{-1, 0, 1, 6}, m.Row(2))
}

func TestControlledVoltageSources(t *testing.T) {
	// E1 holds v2 = 2·v1, H1 holds v3 = 4·I(R1)
	c := newCircuit(t, 5,
		edge{0, 1, device.NewDCCurrentSource("I1", 1)},
		edge{1, 4, device.NewResistor("R1", 1)},
		edge{4, 0, device.NewResistor("R4", 1)},
		edge{0, 2, device.NewVCVS("E1", 2, 1, 0)},
		edge{2, 3, device.NewResistor("R2", 1)},
		edge{0, 3, device.NewCCVS("H1", 4, 1)},
	)
	m := build[float64](t, c)
	assert.Equal(t, []float64{-2, 1, 0, 0, 0}, m.Row(1))
	assert.Equal(t, []float64{-4, 0, 1, 4, 0}, m.Row(2))

	x, degenerate := matrix.Gauss(m, 5)
	assert.False(t, degenerate)
	assert.Equal(t, []float64{2, 4, 4, 1}, x)
}

func TestACRows(t *testing.T) {
	c := newCircuit(t, 3,
		edge{0, 1, device.NewSinCurrentSource("I1", 0, device.SinSource, 1, 1, 0)},
		edge{1, 2, device.NewResistor("R1", 1)},
		edge{2, 0, device.NewCapacitor("C1", 1)},
	)
	m := build[complex128](t, c)
	assert.Equal(t, []complex128{1, -1, 1}, m.Row(0))
	assert.Equal(t, []complex128{-1, complex(1, 1), 0}, m.Row(1))

	dc := build[float64](t, c)
	assert.Equal(t, []float64{-1, 1, 0}, dc.Row(1))
}

func TestInconsistentPartitions(t *testing.T) {
	c := newCircuit(t, 2, edge{0, 1, device.NewResistor("R1", 1)})
	c.Node(1).Partition = 0

	_, err := Build(c, kcl.New[float64](c))
	assert.ErrorIs(t, err, ErrInconsistentSystem)
}
