// pkg/traffic/geometry.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

import (
	"github.com/mmp/cdti/pkg/math"
)

// RelativeGeometry gives the position of a target aircraft with respect
// to ownship on a local tangent plane: XNm east and YNm north, in
// nautical miles. It is recomputed for every (ownship, target, time)
// evaluation and carries no identity of its own.
type RelativeGeometry struct {
	XNm        float32
	YNm        float32
	DistanceNm float32
}

// RelativeOffset computes the flat-earth offset of target from ownship.
// One degree of latitude is taken as 60 nm and one degree of longitude as
// 60*cos(ownship latitude) nm; this is plenty accurate for the display
// ranges involved (tens of nm at mid-latitudes) and is not great-circle
// exact.
func RelativeOffset(own, target math.Point2LL) RelativeGeometry {
	y := (target.Latitude() - own.Latitude()) * math.NMPerLatitude
	x := (target.Longitude() - own.Longitude()) * math.NMPerLatitude * math.Cos(math.Radians(own.Latitude()))
	return RelativeGeometry{
		XNm:        x,
		YNm:        y,
		DistanceNm: math.Sqrt(math.Sqr(x) + math.Sqr(y)),
	}
}

// TrackUpRotate rotates an (east, north) offset into the track-up display
// frame: with ownship heading hdg, a target dead ahead comes back with
// dx=0, dy>0. The display compositor relies on this "ownship always
// points up" contract.
func TrackUpRotate(x, y, hdg float32) (dx, dy float32) {
	dist := math.Sqrt(math.Sqr(x) + math.Sqr(y))
	if dist == 0 {
		return 0, 0
	}
	// Bearing from north to the target, then relative to ownship's track.
	angle := math.Atan2(x, y) - math.Radians(hdg)
	return dist * math.Sin(angle), dist * math.Cos(angle)
}
