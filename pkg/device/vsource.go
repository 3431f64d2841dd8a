package device

import (
	"math"

	"github.com/leoll2/Ohmulator/pkg/numeric"
)

type SourceType int

const (
	DCSource SourceType = iota
	SinSource
	CosSource
)

func (s SourceType) String() string {
	switch s {
	case SinSource:
		return "sin"
	case CosSource:
		return "cos"
	}
	return "dc"
}

// Phasor of mag·sin(ωt+phase) or mag·cos(ωt+phase). Sine is the reference,
// so cosine leads by π/2.
func Phasor(stype SourceType, mag, phase float64) complex128 {
	switch stype {
	case SinSource:
		return numeric.Polar(mag, phase)
	case CosSource:
		return numeric.Polar(mag, phase+math.Pi/2)
	}
	return 0
}

// NewDCVoltageSource imposes v(Point2) - v(Point1) = value.
func NewDCVoltageSource(name string, value float64) Element {
	return newSource(VoltageSource, name, value, DCSource, 0, 0, 0)
}

// NewSinVoltageSource is a sinusoidal voltage source with an optional DC
// offset.
func NewSinVoltageSource(name string, offset float64, stype SourceType, mag, omega, phase float64) Element {
	return newSource(VoltageSource, name, offset, stype, mag, omega, phase)
}

func newSource(kind Kind, name string, dc float64, stype SourceType, mag, omega, phase float64) Element {
	e := Element{
		Name:    name,
		Kind:    kind,
		Value:   dc,
		DC:      dc,
		Source:  stype,
		Control: NoController,
	}
	if stype != DCSource {
		e.Value = mag
		e.Omega = omega
		e.AC = Phasor(stype, mag, phase)
	}
	return e
}
