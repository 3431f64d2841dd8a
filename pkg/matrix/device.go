package matrix

// DeviceMatrix receives stamps with 1-based indexing; row and column 0 are
// ground and never stored.
type DeviceMatrix interface {
	AddElement(i, j int, value float64)
	AddRHS(i int, value float64)
	AddComplexElement(i, j int, real, imag float64)
	AddComplexRHS(i int, real, imag float64)
}
