package device

// NewInductor returns an inductor of l henries. It shorts in DC; in AC its
// impedance is jωL.
func NewInductor(name string, l float64) Element {
	return Element{
		Name:    name,
		Kind:    Inductor,
		Value:   l,
		AC:      inductorImpedance(l, 1),
		Control: NoController,
	}
}

func inductorImpedance(l, omega float64) complex128 { return complex(0, omega*l) }
