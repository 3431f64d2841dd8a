package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leoll2/Ohmulator/pkg/device"
)

func TestOperatingPoint(t *testing.T) {
	c := newCircuit(t, 3,
		edge{0, 1, device.NewDCCurrentSource("I1", 1)},
		edge{1, 2, device.NewResistor("R1", 1)},
		edge{2, 0, device.NewResistor("", 1)},
	)
	var a Analysis = NewOP(Options{})
	require.NoError(t, a.Setup(c))
	require.NoError(t, a.Execute())

	results := a.GetResults()
	assert.Equal(t, []float64{2}, results["V(1)"])
	assert.Equal(t, []float64{1}, results["V(2)"])
	assert.Equal(t, []float64{1}, results["I(R1)"])
	assert.Equal(t, []float64{1}, results["I(R2)"])
	assert.NotContains(t, results, "V(0)")
}

func TestACAnalysis(t *testing.T) {
	c := newCircuit(t, 3,
		edge{0, 1, device.NewSinVoltageSource("V1", 0, device.SinSource, 1, 1, 0)},
		edge{1, 2, device.NewResistor("R1", 1)},
		edge{2, 0, device.NewCapacitor("C1", 1)},
	)
	ac := NewAC(0, Options{})
	require.NoError(t, ac.Setup(c))
	assert.Equal(t, 1.0, ac.Omega())
	require.NoError(t, ac.Execute())

	results := ac.GetResults()
	assert.Equal(t, []float64{1}, results["OMEGA"])
	assert.InDelta(t, 0.70711, results["V(2)_MAG"][0], 1e-5)
	assert.InDelta(t, -45, results["V(2)_PHASE"][0], 1e-3)
	assert.InDelta(t, 45, results["I(R1)_PHASE"][0], 1e-3)
}

func TestACAnalysisNeedsFrequency(t *testing.T) {
	c := newCircuit(t, 2, edge{0, 1, device.NewDCVoltageSource("V1", 1)})
	assert.ErrorIs(t, NewAC(0, Options{}).Setup(c), ErrNoACSource)
	assert.NoError(t, NewAC(0, Options{Omega: 3}).Setup(c))
}

func TestDCSweep(t *testing.T) {
	c := newCircuit(t, 3,
		edge{0, 1, device.NewDCCurrentSource("I1", 1)},
		edge{1, 2, device.NewResistor("R1", 1)},
		edge{2, 0, device.NewResistor("R2", 1)},
	)
	dc, err := NewDCSweep("I1", 0, 2, 0.5, Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, dc.Values())

	require.NoError(t, dc.Setup(c))
	require.NoError(t, dc.Execute())

	results := dc.GetResults()
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, results["SWEEP1"])
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, results["V(1)"])
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, results["I(R1)"])

	// source restored
	b, _ := c.BranchByName("I1")
	assert.Equal(t, 1.0, b.DC)
}

func TestDCSweepErrors(t *testing.T) {
	_, err := NewDCSweep("V1", 0, 1, 0, Options{})
	assert.Error(t, err)
	_, err = NewDCSweep("V1", 2, 1, 0.1, Options{})
	assert.Error(t, err)

	c := newCircuit(t, 2, edge{0, 1, device.NewResistor("R1", 1)})
	dc, err := NewDCSweep("R1", 0, 1, 1, Options{})
	require.NoError(t, err)
	assert.ErrorIs(t, dc.Setup(c), ErrSweepSource)

	dc, err = NewDCSweep("V9", 0, 1, 1, Options{})
	require.NoError(t, err)
	assert.Error(t, dc.Setup(c))
}

func TestDegenerateIsReported(t *testing.T) {
	c := newCircuit(t, 4,
		edge{0, 1, device.NewDCVoltageSource("V1", 1)},
		edge{2, 3, device.NewResistor("R1", 1)},
	)
	op := NewOP(Options{})
	require.NoError(t, op.Setup(c))
	require.NoError(t, op.Execute())
	assert.True(t, op.Degenerate())
	assert.Equal(t, []float64{0}, op.GetResults()["V(3)"])
}
