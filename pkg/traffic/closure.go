// pkg/traffic/closure.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

import (
	"github.com/mmp/cdti/pkg/math"
)

// VelocitySource records whether closure rates were derived from true
// velocity components or estimated from heading and groundspeed.
type VelocitySource int

const (
	// VelocityADSB: both aircraft carried true velocity components.
	VelocityADSB VelocitySource = iota
	// VelocityEstimated: at least one aircraft's velocity was derived
	// from heading plus (possibly defaulted) groundspeed.
	VelocityEstimated
)

func (v VelocitySource) String() string {
	if v == VelocityADSB {
		return "ADSB"
	}
	return "ESTIMATED"
}

// Nominal groundspeeds used when the track data carries none.
const (
	DefaultOwnshipSpeedKt = 120
	DefaultTargetSpeedKt  = 100
)

// Below this separation the horizontal closure rate is not computed; the
// line-of-sight direction is numerically meaningless there.
const minClosureDistanceNm = 0.001

// ClosureInfo holds the closure rates and times-to-threshold for one
// (ownship, target) pair. Positive rates mean converging. TAU values are
// in seconds and are +Inf when the pair is not on a converging
// trajectory; a horizontal TAU of zero means the pair is already inside
// the TAU distance threshold.
type ClosureInfo struct {
	HorizClosureRateKt float32
	HorizTauSec        float32
	VertClosureRateFpm float32
	VertTauSec         float32
	ModTauSec          float32
	Source             VelocitySource
}

// resolveVelocity returns the horizontal velocity vector (east, north in
// knots) for the aircraft and whether it came from true velocity
// components.
func resolveVelocity(ac AircraftState, defaultSpeedKt float32) ([2]float32, bool) {
	if ac.Velocity != nil {
		return [2]float32{ac.Velocity.VxKt, ac.Velocity.VyKt}, true
	}
	gs := ac.GroundspeedKt
	if gs == 0 {
		gs = defaultSpeedKt
	}
	return math.Scale2f(math.HeadingVector(ac.HeadingDeg), gs), false
}

func verticalRate(ac AircraftState) float32 {
	if ac.Velocity != nil {
		return ac.Velocity.VzFpm
	}
	return ac.VerticalRateFpm
}

// ComputeClosure evaluates closure rates and TAU values for the given
// pair. relAltFt is target altitude minus ownship altitude in feet.
func ComputeClosure(own, target AircraftState, geo RelativeGeometry, relAltFt float32, cfg *Config) ClosureInfo {
	ov, ownTrue := resolveVelocity(own, DefaultOwnshipSpeedKt)
	tv, targetTrue := resolveVelocity(target, DefaultTargetSpeedKt)

	info := ClosureInfo{
		HorizTauSec: math.Inf(),
		VertTauSec:  math.Inf(),
		Source:      VelocityADSB,
	}
	if !ownTrue || !targetTrue {
		info.Source = VelocityEstimated
	}

	// Horizontal closure: the rate at which the line-of-sight distance is
	// shrinking. With u the unit line-of-sight vector from ownship to the
	// target, that is -dot(vOwn-vTarget, u); positive means closing.
	if geo.DistanceNm >= minClosureDistanceNm {
		u := math.Normalize2f([2]float32{geo.XNm, geo.YNm})
		info.HorizClosureRateKt = -math.Dot2f(math.Sub2f(ov, tv), u)
	}

	if info.HorizClosureRateKt > 0 {
		if geo.DistanceNm > cfg.TAUDistanceThresholdNm {
			info.HorizTauSec = (geo.DistanceNm - cfg.TAUDistanceThresholdNm) / info.HorizClosureRateKt * 3600
		} else {
			info.HorizTauSec = 0
		}
	}

	// Vertical closure: positive when altitude separation is shrinking
	// with the target above, per the sign convention of the source data.
	info.VertClosureRateFpm = -(verticalRate(target) - verticalRate(own))
	if info.VertClosureRateFpm > 0 && math.Abs(relAltFt) > 0 {
		info.VertTauSec = math.Abs(relAltFt) / info.VertClosureRateFpm * 60
	}

	// When the pair is diverging vertically only the horizontal geometry
	// matters for timing.
	if info.VertClosureRateFpm > 0 {
		info.ModTauSec = min(info.HorizTauSec, info.VertTauSec)
	} else {
		info.ModTauSec = info.HorizTauSec
	}

	return info
}
