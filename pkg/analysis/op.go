package analysis

import (
	"context"
	"fmt"

	"github.com/leoll2/Ohmulator/pkg/circuit"
)

// OperatingPoint is the DC solution of the circuit.
type OperatingPoint struct{ BaseAnalysis }

func NewOP(opts Options) *OperatingPoint {
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(opts),
	}
}

func (op *OperatingPoint) Setup(ckt *circuit.Circuit) error {
	if ckt == nil {
		return fmt.Errorf("circuit not set")
	}
	op.Circuit = ckt
	return nil
}

func (op *OperatingPoint) Execute() error {
	opts := op.Options
	opts.DC, opts.AC = true, false

	res, err := Solve(context.Background(), op.Circuit, opts, op.Logger)
	if err != nil {
		return fmt.Errorf("operating point: %w", err)
	}
	op.degenerate = op.degenerate || res.Degenerate
	op.StoreResult(dcSolution(op.Circuit, res))
	return nil
}

// dcSolution flattens the DC part of res into V(node) and I(branch) keys.
func dcSolution(ckt *circuit.Circuit, res *Result) map[string]float64 {
	solution := make(map[string]float64)
	for _, n := range ckt.Nodes() {
		if n.ID > 0 {
			solution[voltageKey(n)] = res.VoltagesDC[n.ID]
		}
	}
	for _, c := range res.CurrentsDC {
		solution[currentKey(ckt.Branch(c.Branch))] = c.Value
	}
	return solution
}
