package device

// NewResistor returns a resistor of r ohms. Its impedance does not depend on
// frequency.
func NewResistor(name string, r float64) Element {
	return Element{
		Name:    name,
		Kind:    Resistor,
		Value:   r,
		DC:      r,
		AC:      resistorImpedance(r),
		Control: NoController,
	}
}

// NewWire is an ideal zero-impedance connection.
func NewWire(name string) Element {
	return Element{Name: name, Kind: Wire, Control: NoController}
}

func resistorImpedance(r float64) complex128 { return complex(r, 0) }
