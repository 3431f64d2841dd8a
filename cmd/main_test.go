package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leoll2/Ohmulator/pkg/analysis"
	"github.com/leoll2/Ohmulator/pkg/circuit"
	"github.com/leoll2/Ohmulator/pkg/netlist"
	"github.com/leoll2/Ohmulator/pkg/report"
)

func solveNetlist(t *testing.T, input string) (*circuit.Circuit, *analysis.Result, analysis.Options) {
	t.Helper()
	nd, err := netlist.Parse(input)
	require.NoError(t, err)
	s, err := netlist.Build(nd, nil)
	require.NoError(t, err)
	opts := s.Options()
	res, err := s.Solve(context.Background(), opts)
	require.NoError(t, err)
	return s.Snapshot(), res, opts
}

func TestPrintSolutionDC(t *testing.T) {
	ckt, res, opts := solveNetlist(t, "divider\nV1 0 in DC 10\nR1 in out 1k\nR2 out 0 1k\n")

	var buf bytes.Buffer
	printSolution(&buf, ckt, res, 0, opts.AC)
	out := buf.String()
	assert.Contains(t, out, "V(in) = 10\n")
	assert.Contains(t, out, "V(out) = 5\n")
	assert.Contains(t, out, "I(R1) 1→2 = 0.005\n")
	assert.NotContains(t, out, "deg")
}

func TestPrintSolutionAC(t *testing.T) {
	ckt, res, opts := solveNetlist(t, "rc\nV1 0 1 SIN(1)\nR1 1 2 1\nC1 2 0 1\n")
	require.True(t, opts.AC)

	var buf bytes.Buffer
	printSolution(&buf, ckt, res, opts.Omega, opts.AC)
	out := buf.String()
	assert.Contains(t, out, "V(2) = 0.70711⋅sin(t - 0.7854)")
	assert.Contains(t, out, "0.707< -45.0deg")
}

func TestPrintResultsAC(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, map[string][]float64{
		"OMEGA":       {1},
		"V(2)_MAG":    {0.70711},
		"V(2)_PHASE":  {-45},
		"I(R1)_MAG":   {0.70711},
		"I(R1)_PHASE": {45},
	})
	out := buf.String()
	assert.Contains(t, out, "AC Analysis Results (1 frequency points)")
	assert.Contains(t, out, "V(2)=   0.707< -45.0deg")
	assert.Contains(t, out, "I(R1)=   0.707<  45.0deg")
}

func TestWriteReport(t *testing.T) {
	ckt, res, opts := solveNetlist(t, "divider\nV1 0 1 DC 10\nR1 1 2 1\nR2 2 0 1\n")
	rep := report.New("divider")
	rep.AddTopology(ckt)
	rep.AddSolution(ckt, res, opts)

	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, writeReport(path, rep))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DC node voltages")

	assert.Error(t, writeReport(filepath.Join(t.TempDir(), "missing", "report.html"), rep))
}
