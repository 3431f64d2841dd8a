package circuit

import (
	"fmt"
	"slices"
)

// RemoveBranch deletes branch id together with every controlled source that
// depends on it, directly or through other removed sources. It returns the
// ids of the additionally removed branches in removal order, each id as it
// was at the moment of its removal.
func (c *Circuit) RemoveBranch(id int) ([]int, error) {
	if c.Branch(id) == nil {
		return nil, fmt.Errorf("remove branch %d: %w", id, ErrBranchNotFound)
	}
	removed := make([]int, 0)
	c.removeBranch(id, &removed)
	return removed, nil
}

// RemoveNode deletes node id, its incident branches and their dependents.
// Sources controlled by the voltage of the node are removed as well. Every
// removed branch id is reported as in RemoveBranch.
func (c *Circuit) RemoveNode(id int) ([]int, error) {
	node := c.Node(id)
	if node == nil {
		return nil, fmt.Errorf("remove node %d: %w", id, ErrNodeNotFound)
	}
	removed := make([]int, 0)

	incident := make([]*Branch, 0, len(node.Branches))
	for _, bid := range node.Branches {
		incident = append(incident, c.branches[bid])
	}
	c.removeAll(incident, &removed)

	// Sources reading the voltage of this node lose their controller.
	orphans := make([]*Branch, 0)
	for _, b := range c.branches {
		if b.Kind.ControlledByVoltage() && (b.Control.NodeA == id || b.Control.NodeB == id) {
			b.Control.NodeA, b.Control.NodeB = -1, -1
			orphans = append(orphans, b)
		}
	}

	c.nodes = slices.Delete(c.nodes, id, id+1)
	c.reindexNodes(id)

	c.removeAll(orphans, &removed)
	return removed, nil
}

func (c *Circuit) removeBranch(id int, removed *[]int) {
	b := c.branches[id]
	c.detach(b)

	orphans := make([]*Branch, 0)
	for _, other := range c.branches {
		if other != b && other.Kind.ControlledByCurrent() && other.Control.Branch == id {
			other.Control.Branch = -1
			orphans = append(orphans, other)
		}
	}

	c.branches = slices.Delete(c.branches, id, id+1)
	c.reindexBranches(id)

	c.removeAll(orphans, removed)
}

// removeAll removes the given branches highest id first, so that each
// removal only shifts ids already handled. Branches already taken out by an
// earlier cascade are skipped.
func (c *Circuit) removeAll(targets []*Branch, removed *[]int) {
	for len(targets) > 0 {
		slices.SortFunc(targets, func(a, b *Branch) int { return b.ID - a.ID })
		b := targets[0]
		targets = targets[1:]
		if c.Branch(b.ID) != b {
			continue
		}
		*removed = append(*removed, b.ID)
		c.removeBranch(b.ID, removed)
	}
}

func (c *Circuit) detach(b *Branch) {
	for _, p := range []int{b.Point1, b.Point2} {
		n := c.nodes[p]
		n.Branches = slices.DeleteFunc(n.Branches, func(bid int) bool { return bid == b.ID })
	}
}

// reindexBranches closes the gap left by branch id.
func (c *Circuit) reindexBranches(id int) {
	for _, b := range c.branches {
		if b.ID > id {
			b.ID--
		}
		if b.Kind.ControlledByCurrent() && b.Control.Branch > id {
			b.Control.Branch--
		}
	}
	for _, n := range c.nodes {
		for i, bid := range n.Branches {
			if bid > id {
				n.Branches[i] = bid - 1
			}
		}
	}
}

// reindexNodes closes the gap left by node id.
func (c *Circuit) reindexNodes(id int) {
	for _, n := range c.nodes {
		if n.ID > id {
			n.ID--
		}
		if n.Partition > id {
			n.Partition--
		}
	}
	for _, b := range c.branches {
		if b.Point1 > id {
			b.Point1--
		}
		if b.Point2 > id {
			b.Point2--
		}
		if b.Kind.ControlledByVoltage() {
			if b.Control.NodeA > id {
				b.Control.NodeA--
			}
			if b.Control.NodeB > id {
				b.Control.NodeB--
			}
		}
	}
}
