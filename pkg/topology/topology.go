package topology

import (
	"errors"
	"fmt"

	"github.com/leoll2/Ohmulator/internal/consts"
	"github.com/leoll2/Ohmulator/pkg/circuit"
	"github.com/leoll2/Ohmulator/pkg/device"
)

var (
	ErrGeneratorLoop      = errors.New("loop of voltage sources, wires or shorted inductors")
	ErrUnsolvableTopology = errors.New("node connected only to current sources")
)

// Predicate selects the branches that join nodes into one bypass group.
type Predicate func(b *circuit.Branch) bool

// Bypass selects voltage sources, wires and controlled voltage sources, plus
// inductors in DC.
func Bypass(regime device.Regime) Predicate {
	return func(b *circuit.Branch) bool { return b.Kind.IsBypass(regime) }
}

// FindConnectedComponents stores in every node the root (lowest id) of the
// group of nodes it is joined to through bypass branches. Nodes outside any
// group stay consts.UNASSIGNED. A bypass branch closing a cycle fails with
// ErrGeneratorLoop; the partitions are then only partially assigned.
func FindConnectedComponents(c *circuit.Circuit, bypass Predicate) error {
	nodes := c.Nodes()
	for _, n := range nodes {
		n.Partition = consts.UNASSIGNED
	}

	for _, b := range c.Branches() {
		if !bypass(b) {
			continue
		}
		n1, n2 := nodes[b.Point1], nodes[b.Point2]

		switch {
		case n1.Partition == consts.UNASSIGNED && n2.Partition == consts.UNASSIGNED:
			root := min(b.Point1, b.Point2)
			n1.Partition, n2.Partition = root, root

		case n1.Partition == consts.UNASSIGNED || n2.Partition == consts.UNASSIGNED:
			fresh, joined := n1, n2
			if n2.Partition == consts.UNASSIGNED {
				fresh, joined = n2, n1
			}
			old := joined.Partition
			root := min(old, fresh.ID)
			fresh.Partition = root
			if root != old {
				repaint(nodes, old, root)
			}

		case n1.Partition == n2.Partition:
			return fmt.Errorf("branch %d %s between nodes %d and %d: %w", b.ID, b.Name, b.Point1, b.Point2, ErrGeneratorLoop)

		default:
			lo, hi := n1.Partition, n2.Partition
			if lo > hi {
				lo, hi = hi, lo
			}
			repaint(nodes, hi, lo)
		}
	}
	return nil
}

func repaint(nodes []*circuit.Node, from, to int) {
	for _, n := range nodes {
		if n.Partition == from {
			n.Partition = to
		}
	}
}

// OnlyCurrentSources fails with ErrUnsolvableTopology when a non-ground node
// is reached only by current-type branches, since its voltage is then
// undetermined. In DC a node reached only by capacitors is allowed.
func OnlyCurrentSources(c *circuit.Circuit, regime device.Regime) error {
	for _, n := range c.Nodes() {
		if n.ID == consts.GROUND || len(n.Branches) == 0 {
			continue
		}
		onlyCurrents, onlyCapacitors := true, true
		for _, bid := range n.Branches {
			b := c.Branch(bid)
			if !b.IsCurrentType(regime) {
				onlyCurrents = false
				break
			}
			if b.Kind != device.Capacitor {
				onlyCapacitors = false
			}
		}
		if onlyCurrents && !(regime == device.DC && onlyCapacitors) {
			return fmt.Errorf("%s: node %d: %w", regime, n.ID, ErrUnsolvableTopology)
		}
	}
	return nil
}

// Groups lists the bypass groups found by the last FindConnectedComponents,
// keyed by root.
func Groups(c *circuit.Circuit) map[int][]int {
	groups := make(map[int][]int)
	for _, n := range c.Nodes() {
		if n.Partition != consts.UNASSIGNED {
			groups[n.Partition] = append(groups[n.Partition], n.ID)
		}
	}
	return groups
}
