package device

// NewVCVS imposes v(Point2) - v(Point1) = gain·(v(a) - v(b)).
func NewVCVS(name string, gain float64, a, b int) Element {
	return newControlled(VCVS, name, gain, Controller{Branch: -1, NodeA: a, NodeB: b})
}

// NewCCVS imposes v(Point2) - v(Point1) = gain·I(branch).
func NewCCVS(name string, gain float64, branch int) Element {
	return newControlled(CCVS, name, gain, Controller{Branch: branch, NodeA: -1, NodeB: -1})
}

// NewVCCS drives gain·(v(a) - v(b)) from Point1 to Point2.
func NewVCCS(name string, gain float64, a, b int) Element {
	return newControlled(VCCS, name, gain, Controller{Branch: -1, NodeA: a, NodeB: b})
}

// NewCCCS drives gain·I(branch) from Point1 to Point2.
func NewCCCS(name string, gain float64, branch int) Element {
	return newControlled(CCCS, name, gain, Controller{Branch: branch, NodeA: -1, NodeB: -1})
}

func newControlled(kind Kind, name string, gain float64, ctrl Controller) Element {
	return Element{
		Name:    name,
		Kind:    kind,
		Value:   gain,
		DC:      gain,
		AC:      complex(gain, 0),
		Control: ctrl,
	}
}

// Reverse negates the gain. Used when a current controller is referenced
// against its own reference direction.
func (e *Element) Reverse() {
	e.Value, e.DC, e.AC = -e.Value, -e.DC, -e.AC
}
