package device

// NewCapacitor returns a capacitor of c farads. No current flows through it
// in DC; in AC its impedance is -j/(ωC).
func NewCapacitor(name string, c float64) Element {
	return Element{
		Name:    name,
		Kind:    Capacitor,
		Value:   c,
		AC:      capacitorImpedance(c, 1),
		Control: NoController,
	}
}

func capacitorImpedance(c, omega float64) complex128 {
	if c == 0 {
		return 0
	}
	return complex(0, -1/(omega*c))
}
