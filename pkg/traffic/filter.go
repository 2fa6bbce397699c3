// pkg/traffic/filter.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

// AltitudeFilterMode selects the band of relative altitudes, in feet
// around ownship, inside which traffic is eligible for display. The
// filter is strictly a display concern; exports classify all targets
// regardless of the active mode.
type AltitudeFilterMode int

const (
	FilterNormal AltitudeFilterMode = iota
	FilterAbove
	FilterBelow
	FilterExtended
)

func (m AltitudeFilterMode) String() string {
	switch m {
	case FilterAbove:
		return "ABOVE"
	case FilterBelow:
		return "BELOW"
	case FilterExtended:
		return "EXTENDED"
	default:
		return "NORMAL"
	}
}

// Below returns the lower bound of the band (negative: feet below
// ownship).
func (m AltitudeFilterMode) Below() float32 {
	switch m {
	case FilterBelow, FilterExtended:
		return -9000
	default:
		return -2700
	}
}

// Above returns the upper bound of the band.
func (m AltitudeFilterMode) Above() float32 {
	switch m {
	case FilterAbove, FilterExtended:
		return 9000
	default:
		return 2700
	}
}

// PassesFilter reports whether a target with the given relative altitude
// is eligible for display under the mode.
func (m AltitudeFilterMode) PassesFilter(relAltFt float32) bool {
	return relAltFt >= m.Below() && relAltFt <= m.Above()
}
