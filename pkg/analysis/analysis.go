package analysis

import (
	"fmt"
	"log"
	"math"
	"math/cmplx"
	"strconv"

	"github.com/leoll2/Ohmulator/pkg/circuit"
)

type Analysis interface {
	Setup(ckt *circuit.Circuit) error
	Execute() error
	GetResults() map[string][]float64
}

type BaseAnalysis struct {
	Circuit    *circuit.Circuit
	Options    Options
	Logger     *log.Logger          // nil = silent
	results    map[string][]float64 // key: variable name, value: result by point
	degenerate bool
}

func NewBaseAnalysis(opts Options) *BaseAnalysis {
	return &BaseAnalysis{
		Options: opts,
		results: make(map[string][]float64),
	}
}

func (a *BaseAnalysis) StoreResult(solution map[string]float64) {
	for name, value := range solution {
		a.results[name] = append(a.results[name], value)
	}
}

// StoreACResult records one phasor solution as magnitude and phase (degrees).
func (a *BaseAnalysis) StoreACResult(omega float64, solution map[string]complex128) {
	a.results["OMEGA"] = append(a.results["OMEGA"], omega)

	for name, value := range solution {
		magName := name + "_MAG"
		a.results[magName] = append(a.results[magName], cmplx.Abs(value))

		phaseName := name + "_PHASE"
		phase := 0.0
		if value != 0 {
			phase = cmplx.Phase(value) * 180.0 / math.Pi
		}
		a.results[phaseName] = append(a.results[phaseName], phase)
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}

// Degenerate reports whether any solve of the analysis divided by zero,
// which happens with floating sub-circuits.
func (a *BaseAnalysis) Degenerate() bool {
	return a.degenerate
}

// NodeLabel names a node in result keys: its netlist name, or its id.
func NodeLabel(n *circuit.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return strconv.Itoa(n.ID)
}

// BranchLabel names a branch in result keys: its name, or kind prefix and id.
func BranchLabel(b *circuit.Branch) string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("%s%d", b.Kind.Prefix(), b.ID)
}

func voltageKey(n *circuit.Node) string   { return fmt.Sprintf("V(%s)", NodeLabel(n)) }
func currentKey(b *circuit.Branch) string { return fmt.Sprintf("I(%s)", BranchLabel(b)) }
