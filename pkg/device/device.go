package device

import (
	"errors"
	"fmt"

	"github.com/leoll2/Ohmulator/pkg/numeric"
)

type Kind int

const (
	Wire Kind = iota
	Resistor
	Inductor
	Capacitor
	VoltageSource
	CurrentSource
	VCVS // voltage-controlled voltage source
	CCVS // current-controlled voltage source
	VCCS // voltage-controlled current source
	CCCS // current-controlled current source
)

var kindNames = map[Kind]string{
	Wire:          "wire",
	Resistor:      "resistor",
	Inductor:      "inductor",
	Capacitor:     "capacitor",
	VoltageSource: "voltage source",
	CurrentSource: "current source",
	VCVS:          "VCVS",
	CCVS:          "CCVS",
	VCCS:          "VCCS",
	CCCS:          "CCCS",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Prefix is the netlist letter of the kind.
func (k Kind) Prefix() string {
	switch k {
	case Wire:
		return "W"
	case Resistor:
		return "R"
	case Inductor:
		return "L"
	case Capacitor:
		return "C"
	case VoltageSource:
		return "V"
	case CurrentSource:
		return "I"
	case VCVS:
		return "E"
	case CCVS:
		return "H"
	case VCCS:
		return "G"
	case CCCS:
		return "F"
	}
	return "?"
}

func (k Kind) IsPassive() bool { return k == Resistor || k == Inductor || k == Capacitor }

func (k Kind) IsControlled() bool { return k == VCVS || k == CCVS || k == VCCS || k == CCCS }

func (k Kind) ControlledByCurrent() bool { return k == CCVS || k == CCCS }

func (k Kind) ControlledByVoltage() bool { return k == VCVS || k == VCCS }

// IsBypass reports whether the kind is left out of the admittance rows and
// handled through a voltage constraint instead. Inductors short in DC.
func (k Kind) IsBypass(regime Regime) bool {
	switch k {
	case Wire, VoltageSource, VCVS, CCVS:
		return true
	case Inductor:
		return regime == DC
	}
	return false
}

type Regime int

const (
	DC Regime = iota
	AC
)

func (r Regime) String() string {
	if r == AC {
		return "ac"
	}
	return "dc"
}

// RegimeOf maps the scalar type of a solve onto its regime.
func RegimeOf[T numeric.Number]() Regime {
	var zero T
	if _, ok := any(zero).(complex128); ok {
		return AC
	}
	return DC
}

// Controller references the quantity a controlled source depends on.
// Branch is used by current-controlled kinds, NodeA/NodeB by
// voltage-controlled kinds. Unused fields hold -1.
type Controller struct {
	Branch int
	NodeA  int
	NodeB  int
}

var NoController = Controller{Branch: -1, NodeA: -1, NodeB: -1}

// Element is the electrical description of a branch, independent of where
// it sits in the graph.
type Element struct {
	Name    string
	Kind    Kind
	Value   float64    // ohm, henry, farad, volt, ampere or gain
	DC      float64    // resistance, DC source value or gain
	AC      complex128 // impedance, source phasor or gain
	Omega   float64    // angular frequency of a sinusoidal source
	Source  SourceType
	Control Controller
}

var (
	ErrZeroValue     = errors.New("value cannot be 0")
	ErrNegativeValue = errors.New("passive value must be positive")
	ErrZeroOmega     = errors.New("angular frequency cannot be 0")
)

// Validate checks element values. Controller references are checked by the
// circuit, which knows what exists.
func (e *Element) Validate() error {
	switch {
	case e.Kind == Wire:
		return nil
	case e.Value == 0:
		return fmt.Errorf("%s %s: %w", e.Kind, e.Name, ErrZeroValue)
	case e.Kind.IsPassive() && e.Value < 0:
		return fmt.Errorf("%s %s: %w", e.Kind, e.Name, ErrNegativeValue)
	case e.IsSinusoidal() && e.Omega == 0:
		return fmt.Errorf("%s %s: %w", e.Kind, e.Name, ErrZeroOmega)
	}
	return nil
}

func (e *Element) IsSource() bool { return e.Kind == VoltageSource || e.Kind == CurrentSource }

// IsSinusoidal reports whether the element is an independent source with an
// AC component.
func (e *Element) IsSinusoidal() bool { return e.IsSource() && e.Source != DCSource }

// IsCurrentType reports whether the element only injects current into its
// nodes in the given regime. In DC, capacitors are open and count as zero
// current sources; an AC-only current source does not count.
func (e *Element) IsCurrentType(regime Regime) bool {
	switch e.Kind {
	case VCCS, CCCS:
		return true
	case CurrentSource:
		return regime == AC || !e.IsACOnly()
	case Capacitor:
		return regime == DC
	}
	return false
}

// IsACOnly reports a sinusoidal source without DC offset.
func (e *Element) IsACOnly() bool { return e.IsSinusoidal() && e.DC == 0 }

// Retune recomputes the AC impedance of a passive at a new angular frequency.
func (e *Element) Retune(omega float64) {
	if e.Kind.IsPassive() || e.Kind == Wire {
		e.AC = Impedance(e.Kind, e.Value, omega)
	}
}

// Scalar is the element value used by a solve of scalar type T: the DC value
// for real solves, the AC value for phasor solves.
func Scalar[T numeric.Number](e *Element) T {
	var zero T
	switch any(zero).(type) {
	case complex128:
		return any(e.AC).(T)
	default:
		return any(e.DC).(T)
	}
}

// Impedance of a passive at angular frequency omega. omega 0 is treated as 1
// so that reactive elements stay finite before any AC source exists.
func Impedance(kind Kind, value, omega float64) complex128 {
	if omega == 0 {
		omega = 1
	}
	switch kind {
	case Resistor:
		return resistorImpedance(value)
	case Inductor:
		return inductorImpedance(value, omega)
	case Capacitor:
		return capacitorImpedance(value, omega)
	}
	return 0
}
