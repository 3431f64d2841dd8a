package device

// NewDCCurrentSource drives value amperes from Point1 to Point2 through the
// source.
func NewDCCurrentSource(name string, value float64) Element {
	return newSource(CurrentSource, name, value, DCSource, 0, 0, 0)
}

func NewSinCurrentSource(name string, offset float64, stype SourceType, mag, omega, phase float64) Element {
	return newSource(CurrentSource, name, offset, stype, mag, omega, phase)
}
