package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/leoll2/Ohmulator/pkg/analysis"
	"github.com/leoll2/Ohmulator/pkg/circuit"
	"github.com/leoll2/Ohmulator/pkg/device"
)

var ErrMultipleFrequencies = analysis.ErrMultipleFrequencies

// Session owns a circuit being edited. Mutations and solves are serialized;
// a solve works on a snapshot, so a failure never changes the circuit.
//
// The session also owns the shared angular frequency: the first sinusoidal
// source sets it and retunes every reactance, removing the last one resets
// it.
type Session struct {
	mu     sync.Mutex
	ckt    *circuit.Circuit
	omega  float64 // 0 while no sinusoidal source exists
	logger *log.Logger
}

// New starts an empty session. logger may be nil.
func New(name string, logger *log.Logger) *Session {
	return &Session{
		ckt:    circuit.New(name),
		logger: logger,
	}
}

func (s *Session) Name() string { return s.ckt.Name() }

// Omega returns the shared angular frequency and whether one is set.
func (s *Session) Omega() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.omega, s.omega != 0
}

// Snapshot returns a copy of the circuit for inspection.
func (s *Session) Snapshot() *circuit.Circuit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ckt.Clone()
}

// AddNode adds a junction; the first one is ground.
func (s *Session) AddNode(x, y float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ckt.AddNode(x, y)
}

func (s *Session) AddNamedNode(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ckt.AddNamedNode(name)
}

func (s *Session) NodeByName(name string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ckt.NodeByName(name)
}

// BranchByName returns the id of the named branch.
func (s *Session) BranchByName(name string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.ckt.BranchByName(name)
	if !ok {
		return 0, false
	}
	return b.ID, true
}

// AddBranch inserts elem between p1 and p2. A sinusoidal source must run at
// the session frequency, or sets it when it is the first one.
func (s *Session) AddBranch(p1, p2 int, elem device.Element) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addBranch(p1, p2, elem)
}

func (s *Session) addBranch(p1, p2 int, elem device.Element) (int, error) {
	if elem.IsSinusoidal() && s.omega != 0 && elem.Omega != s.omega {
		return 0, fmt.Errorf("%s at w=%g, circuit at w=%g: %w", elem.Name, elem.Omega, s.omega, ErrMultipleFrequencies)
	}
	elem.Retune(s.omega)

	id, err := s.ckt.AddBranch(p1, p2, elem)
	if err != nil {
		return 0, err
	}
	if elem.IsSinusoidal() && s.omega == 0 {
		s.setOmega(elem.Omega)
	}
	return id, nil
}

// AddControlledByPair inserts a current-controlled source whose controller
// is the branch between ctrl1 and ctrl2. If that branch runs from ctrl2 to
// ctrl1, the gain is negated so the control current keeps the requested
// direction.
func (s *Session) AddControlledByPair(p1, p2 int, elem device.Element, ctrl1, ctrl2 int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !elem.Kind.ControlledByCurrent() {
		return 0, fmt.Errorf("%s %s is not current controlled", elem.Kind, elem.Name)
	}
	id, reversed, ok := s.ckt.FindBranch(ctrl1, ctrl2)
	if !ok {
		return 0, fmt.Errorf("%s: no branch between %d and %d: %w", elem.Name, ctrl1, ctrl2, circuit.ErrInvalidController)
	}
	elem.Control = device.Controller{Branch: id, NodeA: -1, NodeB: -1}
	if reversed {
		elem.Reverse()
	}
	return s.addBranch(p1, p2, elem)
}

// RemoveBranch deletes a branch and every controlled source depending on
// it. The returned ids are those of the dependents, as they were when each
// was removed.
func (s *Session) RemoveBranch(id int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.ckt.RemoveBranch(id)
	if err != nil {
		return nil, err
	}
	s.checkLastSinusoid()
	return removed, nil
}

// RemoveNode deletes a node with its incident branches and their
// dependents.
func (s *Session) RemoveNode(id int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.ckt.RemoveNode(id)
	if err != nil {
		return nil, err
	}
	s.checkLastSinusoid()
	return removed, nil
}

func (s *Session) checkLastSinusoid() {
	if s.omega == 0 {
		return
	}
	for _, b := range s.ckt.Branches() {
		if b.IsSinusoidal() {
			return
		}
	}
	s.setOmega(0)
}

func (s *Session) setOmega(omega float64) {
	if s.logger != nil {
		s.logger.Printf("%s: angular frequency %g -> %g", s.ckt.Name(), s.omega, omega)
	}
	s.omega = omega
	s.ckt.Retune(omega)
}

// Options derives what to solve: DC when some independent source has a DC
// component, AC when the frequency is set.
func (s *Session) Options() analysis.Options {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := analysis.Options{AC: s.omega != 0, Omega: s.omega}
	for _, b := range s.ckt.Branches() {
		if b.IsSource() && !b.IsACOnly() {
			opts.DC = true
			break
		}
	}
	return opts
}

// Solve runs the analyses selected by opts on a snapshot of the circuit.
// A zero opts.Omega means the session frequency.
func (s *Session) Solve(ctx context.Context, opts analysis.Options) (*analysis.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.Omega == 0 {
		opts.Omega = s.omega
	}
	return analysis.Solve(ctx, s.ckt, opts, s.logger)
}
