package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leoll2/Ohmulator/pkg/circuit"
	"github.com/leoll2/Ohmulator/pkg/device"
)

func build(t *testing.T, nodes int, branches ...func(c *circuit.Circuit) error) *circuit.Circuit {
	t.Helper()
	c := circuit.New(t.Name())
	for i := 0; i < nodes; i++ {
		c.AddNode(0, 0)
	}
	for _, add := range branches {
		require.NoError(t, add(c))
	}
	return c
}

func branch(p1, p2 int, e device.Element) func(c *circuit.Circuit) error {
	return func(c *circuit.Circuit) error {
		_, err := c.AddBranch(p1, p2, e)
		return err
	}
}

func partitions(c *circuit.Circuit) []int {
	out := make([]int, 0, c.NumNodes())
	for _, n := range c.Nodes() {
		out = append(out, n.Partition)
	}
	return out
}

func TestPartitions(t *testing.T) {
	c := build(t, 5,
		branch(3, 4, device.NewWire("W1")),
		branch(1, 3, device.NewDCVoltageSource("V1", 5)),
		branch(0, 1, device.NewResistor("R1", 1)),
		branch(0, 2, device.NewInductor("L1", 1)),
	)

	require.NoError(t, FindConnectedComponents(c, Bypass(device.DC)))
	assert.Equal(t, []int{0, 1, 0, 1, 1}, partitions(c))
	assert.Equal(t, map[int][]int{0: {0, 2}, 1: {1, 3, 4}}, Groups(c))

	require.NoError(t, FindConnectedComponents(c, Bypass(device.AC)))
	assert.Equal(t, []int{-1, 1, -1, 1, 1}, partitions(c))
}

func TestPartitionsMerge(t *testing.T) {
	c := build(t, 5,
		branch(1, 2, device.NewWire("W1")),
		branch(3, 4, device.NewWire("W2")),
		branch(2, 3, device.NewDCVoltageSource("V1", 1)),
		branch(0, 4, device.NewResistor("R1", 1)),
	)
	require.NoError(t, FindConnectedComponents(c, Bypass(device.DC)))
	assert.Equal(t, []int{-1, 1, 1, 1, 1}, partitions(c))
}

func TestFindConnectedComponentsIdempotent(t *testing.T) {
	c := build(t, 4,
		branch(2, 3, device.NewWire("W1")),
		branch(0, 3, device.NewDCVoltageSource("V1", 1)),
		branch(1, 2, device.NewResistor("R1", 1)),
		branch(0, 1, device.NewVCVS("E1", 2, 2, 0)),
	)
	require.NoError(t, FindConnectedComponents(c, Bypass(device.DC)))
	first := partitions(c)
	require.NoError(t, FindConnectedComponents(c, Bypass(device.DC)))
	assert.Equal(t, first, partitions(c))
}

func TestGeneratorLoop(t *testing.T) {
	// two sources in parallel, joined through a wire
	c := build(t, 3,
		branch(0, 1, device.NewDCVoltageSource("V1", 1)),
		branch(1, 2, device.NewWire("W1")),
		branch(2, 0, device.NewDCVoltageSource("V2", 2)),
	)
	err := FindConnectedComponents(c, Bypass(device.DC))
	assert.ErrorIs(t, err, ErrGeneratorLoop)
	assert.ErrorIs(t, FindConnectedComponents(c, Bypass(device.AC)), ErrGeneratorLoop)
}

func TestInductorLoopOnlyInDC(t *testing.T) {
	c := build(t, 2,
		branch(0, 1, device.NewDCVoltageSource("V1", 1)),
	)
	c.AddNode(0, 0)
	_, err := c.AddBranch(1, 2, device.NewInductor("L1", 1))
	require.NoError(t, err)
	_, err = c.AddBranch(2, 0, device.NewResistor("R1", 1))
	require.NoError(t, err)
	require.NoError(t, FindConnectedComponents(c, Bypass(device.DC)))

	_, err = c.RemoveBranch(2)
	require.NoError(t, err)
	_, err = c.AddBranch(2, 0, device.NewInductor("L2", 1))
	require.NoError(t, err)

	assert.ErrorIs(t, FindConnectedComponents(c, Bypass(device.DC)), ErrGeneratorLoop)
	assert.NoError(t, FindConnectedComponents(c, Bypass(device.AC)))
}

func TestOnlyCurrentSources(t *testing.T) {
	tests := []struct {
		name   string
		add    []func(c *circuit.Circuit) error
		dcFail bool
		acFail bool
	}{
		{
			name: "current source and resistor",
			add: []func(c *circuit.Circuit) error{
				branch(0, 1, device.NewDCCurrentSource("I1", 1)),
				branch(1, 2, device.NewResistor("R1", 1)),
				branch(2, 0, device.NewResistor("R2", 1)),
			},
		},
		{
			name: "two current sources in series",
			add: []func(c *circuit.Circuit) error{
				branch(0, 1, device.NewDCCurrentSource("I1", 1)),
				branch(1, 2, device.NewDCCurrentSource("I2", 1)),
				branch(2, 0, device.NewResistor("R1", 1)),
			},
			dcFail: true,
			acFail: true,
		},
		{
			name: "capacitor and current source",
			add: []func(c *circuit.Circuit) error{
				branch(0, 1, device.NewDCCurrentSource("I1", 1)),
				branch(1, 2, device.NewCapacitor("C1", 1)),
				branch(2, 0, device.NewResistor("R1", 1)),
			},
			dcFail: true,
		},
		{
			name: "only capacitors",
			add: []func(c *circuit.Circuit) error{
				branch(0, 1, device.NewCapacitor("C1", 1)),
				branch(1, 2, device.NewCapacitor("C2", 1)),
				branch(2, 0, device.NewResistor("R1", 1)),
			},
		},
		{
			name: "ac-only current source and capacitor",
			add: []func(c *circuit.Circuit) error{
				branch(0, 1, device.NewSinCurrentSource("I1", 0, device.SinSource, 1, 10, 0)),
				branch(1, 2, device.NewCapacitor("C1", 1)),
				branch(2, 0, device.NewResistor("R1", 1)),
			},
		},
		{
			name: "controlled current sources",
			add: []func(c *circuit.Circuit) error{
				branch(0, 1, device.NewResistor("R1", 1)),
				branch(1, 2, device.NewCCCS("F1", 2, 0)),
				branch(2, 0, device.NewVCCS("G1", 1, 1, 0)),
			},
			dcFail: true,
			acFail: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := build(t, 3, tt.add...)
			if tt.dcFail {
				assert.ErrorIs(t, OnlyCurrentSources(c, device.DC), ErrUnsolvableTopology)
			} else {
				assert.NoError(t, OnlyCurrentSources(c, device.DC))
			}
			if tt.acFail {
				assert.ErrorIs(t, OnlyCurrentSources(c, device.AC), ErrUnsolvableTopology)
			} else {
				assert.NoError(t, OnlyCurrentSources(c, device.AC))
			}
		})
	}
}

func TestOnlyCurrentSourcesSkipsIsolatedNodes(t *testing.T) {
	c := build(t, 4,
		branch(0, 1, device.NewDCCurrentSource("I1", 1)),
		branch(1, 2, device.NewResistor("R1", 1)),
		branch(2, 0, device.NewResistor("R2", 1)),
	)
	require.Empty(t, c.Node(3).Branches)
	assert.NoError(t, OnlyCurrentSources(c, device.DC))
	assert.NoError(t, OnlyCurrentSources(c, device.AC))

	require.NoError(t, branch(3, 0, device.NewDCCurrentSource("I2", 1))(c))
	assert.ErrorIs(t, OnlyCurrentSources(c, device.DC), ErrUnsolvableTopology)
}
