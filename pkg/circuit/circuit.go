package circuit

import (
	"errors"
	"fmt"
	"slices"

	"github.com/leoll2/Ohmulator/internal/consts"
	"github.com/leoll2/Ohmulator/pkg/device"
)

var (
	ErrNodeNotFound      = errors.New("node not found")
	ErrBranchNotFound    = errors.New("branch not found")
	ErrDuplicateBranch   = errors.New("a branch already connects these nodes")
	ErrSelfLoop          = errors.New("branch endpoints must differ")
	ErrInvalidController = errors.New("controller does not exist")
	ErrDuplicateName     = errors.New("branch name already in use")
)

// Node is a circuit junction. Node 0 is the ground reference.
type Node struct {
	ID        int
	Name      string
	X, Y      float64
	Branches  []int // incident branch ids
	Partition int   // root of the bypass group, or consts.UNASSIGNED
}

// Branch is a two-terminal element between Point1 and Point2. The endpoint
// order is the reference direction of its current.
type Branch struct {
	ID     int
	Point1 int
	Point2 int
	device.Element
}

// Other returns the endpoint opposite to node.
func (b *Branch) Other(node int) int {
	if b.Point1 == node {
		return b.Point2
	}
	return b.Point1
}

func (b *Branch) Touches(node int) bool { return b.Point1 == node || b.Point2 == node }

// Circuit owns nodes and branches. Ids are always contiguous, starting at 0;
// removals renumber everything above the removed id.
type Circuit struct {
	name     string
	nodes    []*Node
	branches []*Branch
}

func New(name string) *Circuit {
	return &Circuit{
		name:     name,
		nodes:    make([]*Node, 0),
		branches: make([]*Branch, 0),
	}
}

func (c *Circuit) Name() string { return c.name }

func (c *Circuit) NumNodes() int { return len(c.nodes) }

func (c *Circuit) NumBranches() int { return len(c.branches) }

func (c *Circuit) Nodes() []*Node { return c.nodes }

func (c *Circuit) Branches() []*Branch { return c.branches }

func (c *Circuit) Node(id int) *Node {
	if id < 0 || id >= len(c.nodes) {
		return nil
	}
	return c.nodes[id]
}

func (c *Circuit) Branch(id int) *Branch {
	if id < 0 || id >= len(c.branches) {
		return nil
	}
	return c.branches[id]
}

// AddNode appends a junction at the given coordinates. The first node is
// ground.
func (c *Circuit) AddNode(x, y float64) int {
	id := len(c.nodes)
	c.nodes = append(c.nodes, &Node{
		ID:        id,
		X:         x,
		Y:         y,
		Branches:  make([]int, 0),
		Partition: consts.UNASSIGNED,
	})
	return id
}

// AddNamedNode is AddNode for netlist-built circuits.
func (c *Circuit) AddNamedNode(name string) int {
	id := c.AddNode(0, 0)
	c.nodes[id].Name = name
	return id
}

func (c *Circuit) NodeByName(name string) (int, bool) {
	for _, n := range c.nodes {
		if n.Name == name {
			return n.ID, true
		}
	}
	return 0, false
}

// AddBranch connects p1 and p2 with elem and returns the new branch id.
func (c *Circuit) AddBranch(p1, p2 int, elem device.Element) (int, error) {
	if c.Node(p1) == nil || c.Node(p2) == nil {
		return 0, fmt.Errorf("add %s %s (%d,%d): %w", elem.Kind, elem.Name, p1, p2, ErrNodeNotFound)
	}
	if p1 == p2 {
		return 0, fmt.Errorf("add %s %s (%d,%d): %w", elem.Kind, elem.Name, p1, p2, ErrSelfLoop)
	}
	if id, _, ok := c.FindBranch(p1, p2); ok {
		return 0, fmt.Errorf("add %s %s (%d,%d): branch %d: %w", elem.Kind, elem.Name, p1, p2, id, ErrDuplicateBranch)
	}
	if elem.Name != "" {
		if _, ok := c.BranchByName(elem.Name); ok {
			return 0, fmt.Errorf("add %s %s: %w", elem.Kind, elem.Name, ErrDuplicateName)
		}
	}
	if err := c.checkController(&elem); err != nil {
		return 0, fmt.Errorf("add %s %s: %w", elem.Kind, elem.Name, err)
	}
	if err := elem.Validate(); err != nil {
		return 0, fmt.Errorf("add branch: %w", err)
	}

	id := len(c.branches)
	c.branches = append(c.branches, &Branch{ID: id, Point1: p1, Point2: p2, Element: elem})
	c.nodes[p1].Branches = append(c.nodes[p1].Branches, id)
	c.nodes[p2].Branches = append(c.nodes[p2].Branches, id)
	return id, nil
}

func (c *Circuit) checkController(elem *device.Element) error {
	ctrl := elem.Control
	switch {
	case elem.Kind.ControlledByCurrent():
		if c.Branch(ctrl.Branch) == nil {
			return fmt.Errorf("branch %d: %w", ctrl.Branch, ErrInvalidController)
		}
	case elem.Kind.ControlledByVoltage():
		if c.Node(ctrl.NodeA) == nil || c.Node(ctrl.NodeB) == nil {
			return fmt.Errorf("nodes %d,%d: %w", ctrl.NodeA, ctrl.NodeB, ErrInvalidController)
		}
	}
	return nil
}

// FindBranch looks up the branch joining p1 and p2 in either direction.
// reversed is true when the branch is stored as (p2, p1).
func (c *Circuit) FindBranch(p1, p2 int) (id int, reversed bool, ok bool) {
	n := c.Node(p1)
	if n == nil {
		return 0, false, false
	}
	for _, bid := range n.Branches {
		b := c.branches[bid]
		if b.Point1 == p1 && b.Point2 == p2 {
			return bid, false, true
		}
		if b.Point1 == p2 && b.Point2 == p1 {
			return bid, true, true
		}
	}
	return 0, false, false
}

func (c *Circuit) BranchByName(name string) (*Branch, bool) {
	for _, b := range c.branches {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Retune recomputes passive impedances at angular frequency omega.
func (c *Circuit) Retune(omega float64) {
	for _, b := range c.branches {
		b.Retune(omega)
	}
}

// Clone returns a deep copy sharing no mutable state with c.
func (c *Circuit) Clone() *Circuit {
	clone := &Circuit{
		name:     c.name,
		nodes:    make([]*Node, len(c.nodes)),
		branches: make([]*Branch, len(c.branches)),
	}
	for i, n := range c.nodes {
		nn := *n
		nn.Branches = slices.Clone(n.Branches)
		clone.nodes[i] = &nn
	}
	for i, b := range c.branches {
		bb := *b
		clone.branches[i] = &bb
	}
	return clone
}

// Validate re-checks the graph invariants.
func (c *Circuit) Validate() error {
	pairs := make(map[[2]int]int)
	for i, n := range c.nodes {
		if n.ID != i {
			return fmt.Errorf("node at slot %d has id %d", i, n.ID)
		}
		for _, bid := range n.Branches {
			b := c.Branch(bid)
			if b == nil || !b.Touches(i) {
				return fmt.Errorf("node %d lists branch %d which does not touch it", i, bid)
			}
		}
	}
	for i, b := range c.branches {
		if b.ID != i {
			return fmt.Errorf("branch at slot %d has id %d", i, b.ID)
		}
		if c.Node(b.Point1) == nil || c.Node(b.Point2) == nil {
			return fmt.Errorf("branch %d: %w", i, ErrNodeNotFound)
		}
		if b.Point1 == b.Point2 {
			return fmt.Errorf("branch %d: %w", i, ErrSelfLoop)
		}
		key := [2]int{min(b.Point1, b.Point2), max(b.Point1, b.Point2)}
		if other, ok := pairs[key]; ok {
			return fmt.Errorf("branches %d and %d: %w", other, i, ErrDuplicateBranch)
		}
		pairs[key] = i
		if !slices.Contains(c.nodes[b.Point1].Branches, i) || !slices.Contains(c.nodes[b.Point2].Branches, i) {
			return fmt.Errorf("branch %d missing from its endpoints", i)
		}
		if err := c.checkController(&b.Element); err != nil {
			return fmt.Errorf("branch %d: %w", i, err)
		}
	}
	return nil
}
