// Package units converts between the host's fixed-scale internal length
// unit and millimetres. The host stores all geometry in its internal unit;
// the addin's UI presents millimetres. Both systems are fixed-scale, so the
// conversion is a single multiplication and round-trips are stable.
package units

// MillimetresPerInternalUnit is the host's fixed conversion factor.
const MillimetresPerInternalUnit = 304.8

// ToMillimetres converts a length from host internal units to millimetres.
func ToMillimetres(internal float64) float64 {
	return internal * MillimetresPerInternalUnit
}

// FromMillimetres converts a length from millimetres to host internal units.
func FromMillimetres(mm float64) float64 {
	return mm / MillimetresPerInternalUnit
}

// AreaToSquareMillimetres converts an area from host internal units squared.
func AreaToSquareMillimetres(internal float64) float64 {
	return internal * MillimetresPerInternalUnit * MillimetresPerInternalUnit
}

// AreaFromSquareMillimetres converts an area to host internal units squared.
func AreaFromSquareMillimetres(mm2 float64) float64 {
	return mm2 / (MillimetresPerInternalUnit * MillimetresPerInternalUnit)
}
