package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/leoll2/Ohmulator/pkg/circuit"
)

var ErrSweepSource = errors.New("sweep source must be an independent source")

// DCSweep repeats the operating point while stepping the DC value of one
// independent source.
type DCSweep struct {
	BaseAnalysis
	sourceName string
	startVal   float64
	stopVal    float64
	increment  float64
	sweepVals  []float64
	origVal    float64
}

func NewDCSweep(source string, start, stop, step float64, opts Options) (*DCSweep, error) {
	if step <= 0 || stop < start {
		return nil, fmt.Errorf("sweep %s: bad range %g..%g step %g", source, start, stop, step)
	}

	dc := &DCSweep{
		BaseAnalysis: *NewBaseAnalysis(opts),
		sourceName:   source,
		startVal:     start,
		stopVal:      stop,
		increment:    step,
	}

	// Generate sweep values
	n := int(math.Floor((stop-start)/step+1e-9)) + 1
	dc.sweepVals = make([]float64, n)
	for i := range n {
		dc.sweepVals[i] = start + float64(i)*step
	}
	return dc, nil
}

func (dc *DCSweep) Setup(ckt *circuit.Circuit) error {
	if ckt == nil {
		return fmt.Errorf("circuit not set")
	}
	dc.Circuit = ckt

	b, err := dc.source()
	if err != nil {
		return err
	}
	dc.origVal = b.DC
	return nil
}

func (dc *DCSweep) source() (*circuit.Branch, error) {
	b, ok := dc.Circuit.BranchByName(dc.sourceName)
	if !ok {
		return nil, fmt.Errorf("source %s not found", dc.sourceName)
	}
	if !b.IsSource() {
		return nil, fmt.Errorf("%s: %w", dc.sourceName, ErrSweepSource)
	}
	return b, nil
}

func (dc *DCSweep) Values() []float64 { return dc.sweepVals }

func (dc *DCSweep) Execute() error {
	if dc.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}
	source, err := dc.source()
	if err != nil {
		return err
	}
	defer dc.setValue(source, dc.origVal)

	opts := dc.Options
	opts.DC, opts.AC = true, false

	for _, val := range dc.sweepVals {
		dc.setValue(source, val)

		res, err := Solve(context.Background(), dc.Circuit, opts, dc.Logger)
		if err != nil {
			return fmt.Errorf("sweep %s=%g: %w", dc.sourceName, val, err)
		}
		dc.degenerate = dc.degenerate || res.Degenerate

		dc.results["SWEEP1"] = append(dc.results["SWEEP1"], val)
		dc.StoreResult(dcSolution(dc.Circuit, res))
	}
	return nil
}

func (dc *DCSweep) setValue(b *circuit.Branch, v float64) {
	b.DC = v
	if !b.IsSinusoidal() {
		b.Value = v
	}
}
