// pkg/timeline/track.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package timeline

import (
	"sort"
	"time"

	"github.com/mmp/cdti/pkg/math"
	"github.com/mmp/cdti/pkg/traffic"
)

// Sample is one recorded position fix. Tracks are sequences of samples
// ordered by time; everything else about an aircraft's motion (heading,
// groundspeed, vertical rate) is derived from neighboring samples unless
// a sidecar provides it directly.
type Sample struct {
	Time       time.Time
	Position   math.Point2LL
	AltitudeFt float32
}

// ScalarSample carries one timestamped scalar from a sidecar file (e.g.
// recorded groundspeed).
type ScalarSample struct {
	Time  time.Time
	Value float32
}

type Track struct {
	ID      string
	Samples []Sample

	// Groundspeed is optional; when present it overrides the speed
	// derived from successive positions.
	Groundspeed []ScalarSample
}

func (tr *Track) Start() time.Time { return tr.Samples[0].Time }
func (tr *Track) End() time.Time   { return tr.Samples[len(tr.Samples)-1].Time }

// bracket returns the index i of the first sample at or after t;
// interpolation happens between samples i-1 and i.
func (tr *Track) bracket(t time.Time) int {
	return sort.Search(len(tr.Samples), func(i int) bool {
		return !tr.Samples[i].Time.Before(t)
	})
}

// segmentSpeedKt returns the average groundspeed over the segment from
// sample i to sample i+1.
func (tr *Track) segmentSpeedKt(i int) float32 {
	a, b := tr.Samples[i], tr.Samples[i+1]
	dt := float32(b.Time.Sub(a.Time).Seconds())
	if dt <= 0 {
		return 0
	}
	return math.NMDistance2LL(a.Position, b.Position) / dt * 3600
}

// derivedSpeedKt estimates groundspeed over the segment ending at sample
// i, smoothing over the neighboring segments to suppress sampling jitter.
func (tr *Track) derivedSpeedKt(i int) float32 {
	n := len(tr.Samples) - 1 // number of segments
	if n <= 0 {
		return 0
	}
	i = math.Clamp(i, 0, n-1)

	var sum, count float32
	for _, j := range []int{i - 1, i, i + 1} {
		if j >= 0 && j < n {
			sum += tr.segmentSpeedKt(j)
			count++
		}
	}
	return sum / count
}

func interpolateScalar(samples []ScalarSample, t time.Time) (float32, bool) {
	if len(samples) == 0 {
		return 0, false
	}
	i := sort.Search(len(samples), func(i int) bool {
		return !samples[i].Time.Before(t)
	})
	if i == 0 {
		return samples[0].Value, true
	}
	if i == len(samples) {
		return samples[len(samples)-1].Value, true
	}
	a, b := samples[i-1], samples[i]
	dt := float32(b.Time.Sub(a.Time).Seconds())
	if dt == 0 {
		return a.Value, true
	}
	x := float32(t.Sub(a.Time).Seconds()) / dt
	return math.Lerp(x, a.Value, b.Value), true
}

// StateAt returns the aircraft's interpolated kinematic state at t, or
// false if t is outside the track's time span.
func (tr *Track) StateAt(t time.Time) (traffic.AircraftState, bool) {
	if len(tr.Samples) == 0 || t.Before(tr.Start()) || t.After(tr.End()) {
		return traffic.AircraftState{}, false
	}
	if len(tr.Samples) == 1 {
		s := tr.Samples[0]
		return traffic.AircraftState{ID: tr.ID, Position: s.Position, AltitudeFt: s.AltitudeFt}, true
	}

	// t <= End() guarantees i < len(Samples) here.
	i := tr.bracket(t)
	if i == 0 {
		i = 1
	}
	a, b := tr.Samples[i-1], tr.Samples[i]

	var x float32
	if dt := float32(b.Time.Sub(a.Time).Seconds()); dt > 0 {
		x = float32(t.Sub(a.Time).Seconds()) / dt
	}

	pos := math.Point2LL{
		math.Lerp(x, a.Position[0], b.Position[0]),
		math.Lerp(x, a.Position[1], b.Position[1]),
	}
	alt := math.Lerp(x, a.AltitudeFt, b.AltitudeFt)

	state := traffic.AircraftState{
		ID:         tr.ID,
		Position:   pos,
		AltitudeFt: alt,
	}

	// Heading from the bracketing segment's direction of motion.
	if a.Position != b.Position {
		state.HeadingDeg = math.Heading2LL(a.Position, b.Position)
	} else if i >= 2 {
		state.HeadingDeg = math.Heading2LL(tr.Samples[i-2].Position, a.Position)
	}

	if gs, ok := interpolateScalar(tr.Groundspeed, t); ok {
		state.GroundspeedKt = gs
	} else {
		state.GroundspeedKt = tr.derivedSpeedKt(i - 1)
	}

	if dt := float32(b.Time.Sub(a.Time).Seconds()); dt > 0 {
		state.VerticalRateFpm = (b.AltitudeFt - a.AltitudeFt) / dt * 60
	}

	return state, true
}
