package consts

const (
	GROUND     = 0  // Reference node id
	UNASSIGNED = -1 // Partition of a node outside any bypass group
	DIGITS     = 5  // Decimal digits kept in every solution value
)
