// pkg/timeline/track_test.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package timeline

import (
	"testing"
	"time"

	"github.com/mmp/cdti/pkg/math"
)

var trackEpoch = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// northboundTrack climbs from 1000 to 1600ft over a minute while
// covering 6nm of latitude: 360kt groundspeed, 600fpm, heading north.
func northboundTrack() *Track {
	return &Track{
		ID: "N123",
		Samples: []Sample{
			Sample{Time: trackEpoch, Position: math.MakePoint2LL(36.0, -115.0), AltitudeFt: 1000},
			Sample{Time: trackEpoch.Add(30 * time.Second), Position: math.MakePoint2LL(36.05, -115.0), AltitudeFt: 1300},
			Sample{Time: trackEpoch.Add(60 * time.Second), Position: math.MakePoint2LL(36.1, -115.0), AltitudeFt: 1600},
		},
	}
}

func TestStateAtInterpolation(t *testing.T) {
	tr := northboundTrack()

	state, ok := tr.StateAt(trackEpoch.Add(15 * time.Second))
	if !ok {
		t.Fatal("no state inside the track span")
	}
	if math.Abs(state.Position.Latitude()-36.025) > 1e-4 {
		t.Errorf("got latitude %f, expected 36.025", state.Position.Latitude())
	}
	if math.Abs(state.AltitudeFt-1150) > 0.5 {
		t.Errorf("got altitude %f, expected 1150", state.AltitudeFt)
	}
	if math.Abs(state.HeadingDeg) > 0.5 && math.Abs(state.HeadingDeg-360) > 0.5 {
		t.Errorf("got heading %f, expected north", state.HeadingDeg)
	}
	if math.Abs(state.GroundspeedKt-360) > 5 {
		t.Errorf("got groundspeed %f, expected about 360", state.GroundspeedKt)
	}
	if math.Abs(state.VerticalRateFpm-600) > 1 {
		t.Errorf("got vertical rate %f, expected 600", state.VerticalRateFpm)
	}
	if state.Velocity != nil {
		t.Errorf("track-derived state carries velocity components")
	}
}

func TestStateAtSampleTimes(t *testing.T) {
	tr := northboundTrack()

	// Exactly on a sample returns that sample's position.
	state, ok := tr.StateAt(trackEpoch.Add(30 * time.Second))
	if !ok {
		t.Fatal("no state at a sample time")
	}
	if math.Abs(state.Position.Latitude()-36.05) > 1e-5 || math.Abs(state.AltitudeFt-1300) > 0.1 {
		t.Errorf("got %s at %f ft", state.Position.DDString(), state.AltitudeFt)
	}

	// The endpoints are inside the span.
	if _, ok := tr.StateAt(tr.Start()); !ok {
		t.Errorf("no state at the track start")
	}
	if _, ok := tr.StateAt(tr.End()); !ok {
		t.Errorf("no state at the track end")
	}
}

func TestStateAtOutOfSpan(t *testing.T) {
	tr := northboundTrack()
	if _, ok := tr.StateAt(trackEpoch.Add(-time.Second)); ok {
		t.Errorf("got a state before the track starts")
	}
	if _, ok := tr.StateAt(trackEpoch.Add(61 * time.Second)); ok {
		t.Errorf("got a state after the track ends")
	}
}

func TestStateAtSingleSample(t *testing.T) {
	tr := &Track{ID: "N1", Samples: []Sample{
		Sample{Time: trackEpoch, Position: math.MakePoint2LL(36, -115), AltitudeFt: 5000}}}

	state, ok := tr.StateAt(trackEpoch)
	if !ok {
		t.Fatal("no state for a single-sample track at its sample time")
	}
	if state.AltitudeFt != 5000 {
		t.Errorf("got altitude %f", state.AltitudeFt)
	}
	if _, ok := tr.StateAt(trackEpoch.Add(time.Second)); ok {
		t.Errorf("got a state past a single-sample track")
	}
}

func TestGroundspeedSidecar(t *testing.T) {
	tr := northboundTrack()
	tr.Groundspeed = []ScalarSample{
		ScalarSample{Time: trackEpoch, Value: 200},
		ScalarSample{Time: trackEpoch.Add(60 * time.Second), Value: 240},
	}

	// The sidecar overrides the derived speed, interpolated in time.
	state, ok := tr.StateAt(trackEpoch.Add(30 * time.Second))
	if !ok {
		t.Fatal("no state inside the track span")
	}
	if math.Abs(state.GroundspeedKt-220) > 0.1 {
		t.Errorf("got groundspeed %f, expected 220 from the sidecar", state.GroundspeedKt)
	}
}

func TestDerivedSpeedSmoothing(t *testing.T) {
	// One segment twice as fast as its neighbors: the smoothed estimate
	// at the fast segment averages all three.
	tr := &Track{ID: "N1", Samples: []Sample{
		Sample{Time: trackEpoch, Position: math.MakePoint2LL(36.00, -115)},
		Sample{Time: trackEpoch.Add(time.Minute), Position: math.MakePoint2LL(36.05, -115)},
		Sample{Time: trackEpoch.Add(2 * time.Minute), Position: math.MakePoint2LL(36.15, -115)},
		Sample{Time: trackEpoch.Add(3 * time.Minute), Position: math.MakePoint2LL(36.20, -115)},
	}}

	// Segments run 180, 360, 180 kt.
	if gs := tr.derivedSpeedKt(1); math.Abs(gs-240) > 2 {
		t.Errorf("got smoothed speed %f, expected about 240", gs)
	}
	// At the ends only two segments contribute.
	if gs := tr.derivedSpeedKt(0); math.Abs(gs-270) > 2 {
		t.Errorf("got smoothed speed %f at the start, expected about 270", gs)
	}
}
