package kcl

import (
	"errors"
	"fmt"

	"github.com/leoll2/Ohmulator/pkg/circuit"
	"github.com/leoll2/Ohmulator/pkg/device"
	"github.com/leoll2/Ohmulator/pkg/numeric"
)

var ErrControlLoop = errors.New("current expression depends on itself")

// Expression is a branch current written as a linear function of the node
// voltages: slot id-1 holds the coefficient of node id, the last slot holds
// the constant term.
type Expression[T numeric.Number] []T

func (x Expression[T]) Constant() T { return x[len(x)-1] }

// Eval applies x to voltages indexed by node id (voltages[0] is ground).
func (x Expression[T]) Eval(voltages []T) T {
	last := len(x) - 1
	sum := x[last]
	for i := 0; i < last; i++ {
		sum += x[i] * voltages[i+1]
	}
	return sum
}

type visit struct {
	branch   int
	junction int
}

// Engine derives branch current expressions over a fixed circuit. The
// scalar type selects the regime: float64 for DC, complex128 for AC. An
// Engine reads the circuit but never changes it; the circuit must not be
// mutated while the engine is in use.
type Engine[T numeric.Number] struct {
	ckt        *circuit.Circuit
	regime     device.Regime
	size       int
	degenerate bool
	active     map[visit]bool
}

func New[T numeric.Number](ckt *circuit.Circuit) *Engine[T] {
	return &Engine[T]{
		ckt:    ckt,
		regime: device.RegimeOf[T](),
		size:   ckt.NumNodes(),
		active: make(map[visit]bool),
	}
}

func (e *Engine[T]) Regime() device.Regime { return e.regime }

// Degenerate reports whether a division by zero was resolved to 0.
func (e *Engine[T]) Degenerate() bool { return e.degenerate }

func (e *Engine[T]) zero() Expression[T] { return make(Expression[T], e.size) }

// CurrentExpression returns the current flowing through branch id from its
// Point1 to its Point2. from is the node the request comes from; it only
// matters for bypass branches, whose current is found by applying KCL at
// the opposite endpoint.
func (e *Engine[T]) CurrentExpression(id, from int) (Expression[T], error) {
	b := e.ckt.Branch(id)
	if b == nil {
		return nil, fmt.Errorf("current of branch %d: %w", id, circuit.ErrBranchNotFound)
	}
	key := visit{branch: id, junction: from}
	if e.active[key] {
		return nil, fmt.Errorf("branch %d %s: %w", id, b.Name, ErrControlLoop)
	}
	e.active[key] = true
	defer delete(e.active, key)

	value := device.Scalar[T](&b.Element)
	result := e.zero()
	last := e.size - 1

	switch {
	case b.Kind == device.CurrentSource:
		result[last] = value

	case b.Kind == device.CCCS:
		ctrl := e.ckt.Branch(b.Control.Branch)
		if ctrl == nil {
			return nil, fmt.Errorf("branch %d %s: %w", id, b.Name, circuit.ErrInvalidController)
		}
		sub, err := e.CurrentExpression(ctrl.ID, ctrl.Point2)
		if err != nil {
			return nil, err
		}
		for i := range result {
			result[i] = value * sub[i]
		}

	case b.Kind == device.VCCS:
		e.set(result, b.Control.NodeA, value)
		e.set(result, b.Control.NodeB, -value)

	case b.Kind.IsBypass(e.regime):
		junction := b.Other(from)
		for _, nid := range e.ckt.Node(junction).Branches {
			if nid == id {
				continue
			}
			sub, err := e.CurrentExpression(nid, junction)
			if err != nil {
				return nil, err
			}
			// KCL at junction: inflow from the neighbour continues through b
			// when b leaves the junction.
			entering := e.ckt.Branch(nid).Point2 == junction
			if entering == (b.Point2 == junction) {
				subtract(result, sub)
			} else {
				add(result, sub)
			}
		}

	case b.Kind == device.Capacitor && e.regime == device.DC:
		// open circuit

	case b.Kind.IsPassive():
		pos, d1 := numeric.Div(numeric.FromReal[T](1), value)
		neg, d2 := numeric.Div(numeric.FromReal[T](-1), value)
		e.degenerate = e.degenerate || d1 || d2
		e.set(result, b.Point1, pos)
		e.set(result, b.Point2, neg)
	}
	return result, nil
}

// Current evaluates the current of branch id for the given node voltages.
func (e *Engine[T]) Current(id int, voltages []T) (T, error) {
	b := e.ckt.Branch(id)
	if b == nil {
		var zero T
		return zero, fmt.Errorf("current of branch %d: %w", id, circuit.ErrBranchNotFound)
	}
	x, err := e.CurrentExpression(id, b.Point2)
	if err != nil {
		var zero T
		return zero, err
	}
	return x.Eval(voltages), nil
}

// set writes v at the slot of node; ground has no slot.
func (e *Engine[T]) set(x Expression[T], node int, v T) {
	if node > 0 {
		x[node-1] = v
	}
}

func add[T numeric.Number](dst, src Expression[T]) {
	for i := range dst {
		dst[i] += src[i]
	}
}

func subtract[T numeric.Number](dst, src Expression[T]) {
	for i := range dst {
		dst[i] -= src[i]
	}
}
