package nodal

import (
	"errors"
	"fmt"

	"github.com/leoll2/Ohmulator/internal/consts"
	"github.com/leoll2/Ohmulator/pkg/circuit"
	"github.com/leoll2/Ohmulator/pkg/device"
	"github.com/leoll2/Ohmulator/pkg/kcl"
	"github.com/leoll2/Ohmulator/pkg/matrix"
	"github.com/leoll2/Ohmulator/pkg/numeric"
)

var ErrInconsistentSystem = errors.New("not enough bypass branches for the constraint rows")

// Build assembles the nodal system of c in the regime of the engine: one row
// per non-ground node, unknown k being the voltage of node k+1.
//
// Node partitions must already be computed for the same regime. Rows of
// nodes joined by bypass branches are summed into the row of their group
// root (the supernode equation); each freed row then holds the voltage
// constraint of one bypass branch, v(Point2) - v(Point1) = source.
func Build[T numeric.Number](c *circuit.Circuit, e *kcl.Engine[T]) (*matrix.Augmented[T], error) {
	n := max(c.NumNodes()-1, 0)
	m := matrix.NewAugmented[T](n)

	for i := 1; i <= n; i++ {
		if err := stampNode(c, e, m, i); err != nil {
			return nil, err
		}
	}

	bypass := make([]*circuit.Branch, 0)
	for _, b := range c.Branches() {
		if b.Kind.IsBypass(e.Regime()) {
			bypass = append(bypass, b)
		}
	}

	next := 0
	for i := 1; i <= n; i++ {
		root := c.Node(i).Partition
		if root == consts.UNASSIGNED || root == i {
			continue
		}
		if root != consts.GROUND {
			m.AddRow(root-1, i-1)
		}
		m.ClearRow(i - 1)
		if next >= len(bypass) {
			return nil, fmt.Errorf("%s: row of node %d: %w", e.Regime(), i, ErrInconsistentSystem)
		}
		if err := stampConstraint(c, e, m, i-1, bypass[next]); err != nil {
			return nil, err
		}
		next++
	}
	return m, nil
}

// stampNode writes the KCL row of node i, leaving bypass branches out.
// Currents entering the node go to the right-hand side.
func stampNode[T numeric.Number](c *circuit.Circuit, e *kcl.Engine[T], m *matrix.Augmented[T], i int) error {
	row := i - 1
	regime := e.Regime()

	for _, bid := range c.Node(i).Branches {
		b := c.Branch(bid)
		if b.Kind.IsBypass(regime) {
			continue
		}
		value := device.Scalar[T](&b.Element)
		sign := numeric.FromReal[T](-1)
		if b.Point2 == i {
			sign = numeric.FromReal[T](1)
		}

		switch {
		case b.Kind == device.CurrentSource:
			m.AddRHS(row, sign*value)

		case b.Kind == device.CCCS:
			ctrl := c.Branch(b.Control.Branch)
			if ctrl == nil {
				return fmt.Errorf("branch %d %s: %w", b.ID, b.Name, circuit.ErrInvalidController)
			}
			x, err := e.CurrentExpression(ctrl.ID, ctrl.Point2)
			if err != nil {
				return err
			}
			last := len(x) - 1
			m.AddRHS(row, sign*value*x[last])
			for k := 0; k < last; k++ {
				m.Add(row, k, -sign*value*x[k])
			}

		case b.Kind == device.VCCS:
			addAt(m, row, b.Control.NodeA, -sign*value)
			addAt(m, row, b.Control.NodeB, sign*value)

		case b.Kind == device.Capacitor && regime == device.DC:
			// open circuit

		case b.Kind.IsPassive():
			y := numeric.Inv(value)
			m.Add(row, row, y)
			addAt(m, row, b.Other(i), -y)
		}
	}
	return nil
}

// stampConstraint overwrites row with the voltage relation imposed by b.
func stampConstraint[T numeric.Number](c *circuit.Circuit, e *kcl.Engine[T], m *matrix.Augmented[T], row int, b *circuit.Branch) error {
	if b.Point1 > 0 {
		m.Set(row, b.Point1-1, -1)
	}
	if b.Point2 > 0 {
		m.Set(row, b.Point2-1, 1)
	}
	value := device.Scalar[T](&b.Element)

	switch b.Kind {
	case device.VoltageSource:
		m.AddRHS(row, value)

	case device.VCVS:
		addAt(m, row, b.Control.NodeA, -value)
		addAt(m, row, b.Control.NodeB, value)

	case device.CCVS:
		ctrl := c.Branch(b.Control.Branch)
		if ctrl == nil {
			return fmt.Errorf("branch %d %s: %w", b.ID, b.Name, circuit.ErrInvalidController)
		}
		x, err := e.CurrentExpression(ctrl.ID, ctrl.Point2)
		if err != nil {
			return err
		}
		last := len(x) - 1
		m.AddRHS(row, value*x[last])
		for k := 0; k < last; k++ {
			m.Add(row, k, -value*x[k])
		}
	}
	// wires and DC inductors only tie the two voltages
	return nil
}

// addAt adds v at the column of node; ground has no column.
func addAt[T numeric.Number](m *matrix.Augmented[T], row, node int, v T) {
	if node > 0 {
		m.Add(row, node-1, v)
	}
}
