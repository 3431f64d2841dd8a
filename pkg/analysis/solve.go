package analysis

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/leoll2/Ohmulator/internal/consts"
	"github.com/leoll2/Ohmulator/pkg/circuit"
	"github.com/leoll2/Ohmulator/pkg/device"
	"github.com/leoll2/Ohmulator/pkg/kcl"
	"github.com/leoll2/Ohmulator/pkg/matrix"
	"github.com/leoll2/Ohmulator/pkg/nodal"
	"github.com/leoll2/Ohmulator/pkg/numeric"
	"github.com/leoll2/Ohmulator/pkg/topology"
)

// Options selects what Solve computes.
type Options struct {
	DC     bool
	AC     bool
	Omega  float64 // AC frequency, taken from the sinusoidal sources when 0
	Solver string  // "dense" (default) or "sparse"
	Digits int     // decimals kept in results, consts.DIGITS when 0
}

// Current is a branch current, positive from Point1 to Point2.
type Current[T numeric.Number] struct {
	Branch int
	Point1 int
	Point2 int
	Value  T
}

// Result holds both regimes. A regime that was not requested is all zeros.
// Voltages are indexed by node id; index 0 is ground.
type Result struct {
	VoltagesDC []float64
	VoltagesAC []complex128
	CurrentsDC []Current[float64]
	CurrentsAC []Current[complex128]
	Degenerate bool
	Residual   float64 // max |A·v - b| of the DC system
}

// SortedByEndpoints returns a copy of cs ordered by (Point1, Point2).
func SortedByEndpoints[T numeric.Number](cs []Current[T]) []Current[T] {
	out := slices.Clone(cs)
	slices.SortStableFunc(out, func(a, b Current[T]) int {
		if c := cmp.Compare(a.Point1, b.Point1); c != 0 {
			return c
		}
		return cmp.Compare(a.Point2, b.Point2)
	})
	return out
}

// Solve computes the requested regimes on a snapshot of ckt, AC first. Any
// topology or assembly error aborts the whole solve; ckt is never modified.
func Solve(ctx context.Context, ckt *circuit.Circuit, opts Options, logger *log.Logger) (*Result, error) {
	backend, err := matrix.ParseBackend(opts.Solver)
	if err != nil {
		return nil, err
	}
	digits := opts.Digits
	if digits <= 0 {
		digits = consts.DIGITS
	}

	snapshot := ckt.Clone()
	res := &Result{
		VoltagesDC: make([]float64, snapshot.NumNodes()),
		VoltagesAC: make([]complex128, snapshot.NumNodes()),
		CurrentsDC: emptyCurrents[float64](snapshot),
		CurrentsAC: emptyCurrents[complex128](snapshot),
	}

	if opts.AC {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		omega, err := resolveOmega(snapshot, opts.Omega)
		if err != nil {
			return nil, fmt.Errorf("ac analysis: %w", err)
		}
		snapshot.Retune(omega)
		sol, err := solveRegime[complex128](snapshot, backend, digits, logger)
		if err != nil {
			return nil, fmt.Errorf("ac analysis: %w", err)
		}
		res.VoltagesAC, res.CurrentsAC = sol.voltages, sol.currents
		res.Degenerate = res.Degenerate || sol.degenerate
	}

	if opts.DC {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sol, err := solveRegime[float64](snapshot, backend, digits, logger)
		if err != nil {
			return nil, fmt.Errorf("dc analysis: %w", err)
		}
		res.VoltagesDC, res.CurrentsDC = sol.voltages, sol.currents
		res.Degenerate = res.Degenerate || sol.degenerate
		if len(sol.voltages) > 0 {
			res.Residual = matrix.Residual(sol.system, sol.voltages[1:])
		}
	}
	return res, nil
}

type solution[T numeric.Number] struct {
	voltages   []T
	currents   []Current[T]
	degenerate bool
	system     *matrix.Augmented[T]
}

func solveRegime[T numeric.Number](ckt *circuit.Circuit, backend matrix.Backend, digits int, logger *log.Logger) (*solution[T], error) {
	regime := device.RegimeOf[T]()

	if err := topology.OnlyCurrentSources(ckt, regime); err != nil {
		return nil, err
	}
	if err := topology.FindConnectedComponents(ckt, topology.Bypass(regime)); err != nil {
		return nil, err
	}
	tracef(logger, "%s: bypass groups %v", regime, topology.Groups(ckt))

	eng := kcl.New[T](ckt)
	m, err := nodal.Build(ckt, eng)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Printf("%s: nodal system (%d unknowns, %s)", regime, m.Size(), backend)
		m.Fprint(logger.Writer())
	}

	x, degenerate, err := matrix.Solve(m, backend, digits)
	if err != nil {
		return nil, err
	}

	voltages := make([]T, ckt.NumNodes())
	if len(voltages) > 0 {
		copy(voltages[1:], x)
	}

	currents := make([]Current[T], ckt.NumBranches())
	for _, b := range ckt.Branches() {
		value, err := eng.Current(b.ID, voltages)
		if err != nil {
			return nil, err
		}
		currents[b.ID] = Current[T]{
			Branch: b.ID,
			Point1: b.Point1,
			Point2: b.Point2,
			Value:  numeric.Round(value, digits),
		}
	}

	degenerate = degenerate || eng.Degenerate()
	if degenerate {
		tracef(logger, "%s: division by zero while solving, floating sub-circuit?", regime)
	}
	return &solution[T]{voltages: voltages, currents: currents, degenerate: degenerate, system: m}, nil
}

func emptyCurrents[T numeric.Number](ckt *circuit.Circuit) []Current[T] {
	out := make([]Current[T], ckt.NumBranches())
	for _, b := range ckt.Branches() {
		out[b.ID] = Current[T]{Branch: b.ID, Point1: b.Point1, Point2: b.Point2}
	}
	return out
}

func tracef(logger *log.Logger, format string, args ...any) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
