package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/leoll2/Ohmulator/pkg/circuit"
)

var (
	ErrNoACSource          = errors.New("no sinusoidal source sets the angular frequency")
	ErrMultipleFrequencies = errors.New("all sinusoidal sources must share one angular frequency")
)

// ACAnalysis is the phasor solution at a single angular frequency.
type ACAnalysis struct {
	BaseAnalysis
	omega float64
}

// NewAC solves at omega rad/s. With omega 0 the frequency is taken from the
// sinusoidal sources of the circuit.
func NewAC(omega float64, opts Options) *ACAnalysis {
	return &ACAnalysis{
		BaseAnalysis: *NewBaseAnalysis(opts),
		omega:        omega,
	}
}

func (ac *ACAnalysis) Setup(ckt *circuit.Circuit) error {
	if ckt == nil {
		return fmt.Errorf("circuit not set")
	}
	ac.Circuit = ckt

	omega := ac.omega
	if omega == 0 {
		omega = ac.Options.Omega
	}
	omega, err := resolveOmega(ckt, omega)
	if err != nil {
		return err
	}
	ac.omega = omega
	return nil
}

// resolveOmega returns the angular frequency of an AC solve: override when
// set, otherwise the one of the sinusoidal sources. Every sinusoidal source
// must run at that frequency.
func resolveOmega(ckt *circuit.Circuit, override float64) (float64, error) {
	omega := override
	for _, b := range ckt.Branches() {
		if !b.IsSinusoidal() {
			continue
		}
		if omega == 0 {
			omega = b.Omega
			continue
		}
		if b.Omega != omega {
			return 0, fmt.Errorf("%s at w=%g, analysis at w=%g: %w", BranchLabel(b), b.Omega, omega, ErrMultipleFrequencies)
		}
	}
	if omega == 0 {
		return 0, ErrNoACSource
	}
	return omega, nil
}

func (ac *ACAnalysis) Omega() float64 { return ac.omega }

func (ac *ACAnalysis) Execute() error {
	if ac.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}
	opts := ac.Options
	opts.DC, opts.AC = false, true
	opts.Omega = ac.omega

	res, err := Solve(context.Background(), ac.Circuit, opts, ac.Logger)
	if err != nil {
		return fmt.Errorf("ac at w=%g: %w", ac.omega, err)
	}
	ac.degenerate = ac.degenerate || res.Degenerate

	solution := make(map[string]complex128)
	for _, n := range ac.Circuit.Nodes() {
		if n.ID > 0 {
			solution[voltageKey(n)] = res.VoltagesAC[n.ID]
		}
	}
	for _, c := range res.CurrentsAC {
		solution[currentKey(ac.Circuit.Branch(c.Branch))] = c.Value
	}
	ac.StoreACResult(ac.omega, solution)
	return nil
}
