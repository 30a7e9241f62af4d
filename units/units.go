// Package units defines the internal unit system used by stepping data.
//
// Values carried by the stepping data model are expressed in base units
// (millimeter, MeV, nanosecond). Dividing a value by one of the constants
// below converts it to that display unit, e.g. `pos.X / units.Cm`.
package units

// Length units.
const (
	Mm float64 = 1
	Cm float64 = 10 * Mm
	M  float64 = 1000 * Mm
	Um float64 = 1e-3 * Mm
)

// Energy units.
const (
	MeV float64 = 1
	KeV float64 = 1e-3 * MeV
	GeV float64 = 1e3 * MeV
	TeV float64 = 1e6 * MeV
)

// Time units.
const (
	Ns float64 = 1
	Ps float64 = 1e-3 * Ns
	S  float64 = 1e9 * Ns
)

// CLight is the speed of light in mm/ns.
const CLight float64 = 299.792458 * Mm / Ns
