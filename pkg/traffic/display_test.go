// pkg/traffic/display_test.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

import (
	"testing"
	"time"

	"github.com/mmp/cdti/pkg/math"
)

func TestThreatSymbolsAndColors(t *testing.T) {
	type tc struct {
		level  ThreatLevel
		symbol SymbolType
		color  RGB
	}
	for _, c := range []tc{
		tc{LevelRA, SymbolFilledSquare, RGBRed},
		tc{LevelTA, SymbolFilledCircle, RGBAmber},
		tc{LevelPA, SymbolFilledDiamond, RGBWhite},
		tc{LevelOther, SymbolHollowDiamond, RGBWhite},
	} {
		if s := c.level.Symbol(); s != c.symbol {
			t.Errorf("%s: got symbol %s, expected %s", c.level, s, c.symbol)
		}
		if col := c.level.Color(); col != c.color {
			t.Errorf("%s: got color %+v, expected %+v", c.level, col, c.color)
		}
	}
}

// fixedProvider returns the same states at any time.
func fixedProvider(states []AircraftState) StateProvider {
	return StateProviderFunc(func(time.Time) []AircraftState { return states })
}

func ownship() AircraftState {
	return AircraftState{
		ID:            "OWN",
		Position:      math.MakePoint2LL(36.2000, -115.2000),
		AltitudeFt:    3000,
		HeadingDeg:    0,
		GroundspeedKt: 120,
	}
}

// targetAt places a target the given nm north of ownship at the given
// relative altitude, heading south.
func targetAt(id string, northNm, relAltFt float32) AircraftState {
	return AircraftState{
		ID:            id,
		Position:      math.MakePoint2LL(36.2000+northNm/60, -115.2000),
		AltitudeFt:    3000 + relAltFt,
		HeadingDeg:    180,
		GroundspeedKt: 100,
	}
}

func TestEvaluateNoOwnship(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OwnshipID = "OWN"
	e := NewEngine(fixedProvider([]AircraftState{targetAt("N1", 1, 0)}), cfg, nil)

	if cmds, ok := e.Evaluate(time.Now()); ok {
		t.Errorf("got ok with no ownship in the states (%d commands)", len(cmds))
	}
}

func TestEvaluateDrawOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OwnshipID = "OWN"
	cfg.TAUEnabled = false

	// One target per tier; the display list must come back in ascending
	// priority so high-priority symbols draw last.
	states := []AircraftState{
		targetAt("RA1", 0.15, 0),
		ownship(),
		targetAt("OT1", 6, 0),
		targetAt("PA1", 2, 0),
		targetAt("TA1", 0.4, 0),
	}
	e := NewEngine(fixedProvider(states), cfg, nil)

	cmds, ok := e.Evaluate(time.Now())
	if !ok {
		t.Fatal("no ownship found")
	}
	if len(cmds) != 4 {
		t.Fatalf("got %d commands, expected 4", len(cmds))
	}
	for i, id := range []string{"OT1", "PA1", "TA1", "RA1"} {
		if cmds[i].ACID != id {
			t.Errorf("position %d: got %s (%s), expected %s", i, cmds[i].ACID, cmds[i].Level, id)
		}
	}
	for i := 1; i < len(cmds); i++ {
		if cmds[i].Level < cmds[i-1].Level {
			t.Errorf("commands not in ascending priority: %s before %s",
				cmds[i-1].Level, cmds[i].Level)
		}
	}
}

func TestEvaluateAltitudeFilter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OwnshipID = "OWN"
	cfg.AltitudeFilter = FilterBelow

	// A target 3000ft above is outside the BELOW band and must not be
	// displayed, whatever it would classify as.
	states := []AircraftState{ownship(), targetAt("HI1", 1, 3000), targetAt("LO1", 1, -3000)}
	e := NewEngine(fixedProvider(states), cfg, nil)

	cmds, ok := e.Evaluate(time.Now())
	if !ok {
		t.Fatal("no ownship found")
	}
	if len(cmds) != 1 || cmds[0].ACID != "LO1" {
		t.Errorf("BELOW filter: got %d commands, expected only LO1", len(cmds))
	}
}

func TestEvaluateRangeClipping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OwnshipID = "OWN"
	cfg.MaxRangeNm = 0.5

	// TA1 is inside its advisory zone but beyond the display radius: kept,
	// scaled to the edge, and marked clipped. PA1 beyond the radius is
	// dropped.
	states := []AircraftState{ownship(), targetAt("TA1", 0.53, 0), targetAt("PA1", 3, 0)}
	e := NewEngine(fixedProvider(states), cfg, nil)

	cmds, ok := e.Evaluate(time.Now())
	if !ok {
		t.Fatal("no ownship found")
	}
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, expected 1", len(cmds))
	}
	c := cmds[0]
	if c.ACID != "TA1" || !c.Clipped {
		t.Errorf("got %s clipped=%v, expected clipped TA1", c.ACID, c.Clipped)
	}
	if r := math.Length2f(c.P); math.Abs(r-0.5) > 1e-4 {
		t.Errorf("clipped symbol at radius %f, expected pinned to 0.5", r)
	}
	// The recorded distance is still the true one.
	if math.Abs(c.DistanceNm-0.53) > 1e-3 {
		t.Errorf("clipped symbol distance %f, expected 0.53", c.DistanceNm)
	}
}

func TestEvaluateTrendArrows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OwnshipID = "OWN"

	climb := targetAt("UP1", 1, 0)
	climb.VerticalRateFpm = 600
	descend := targetAt("DN1", 2, 0)
	descend.VerticalRateFpm = -600
	level := targetAt("LV1", 3, 0)
	level.VerticalRateFpm = 300

	e := NewEngine(fixedProvider([]AircraftState{ownship(), climb, descend, level}), cfg, nil)
	cmds, ok := e.Evaluate(time.Now())
	if !ok {
		t.Fatal("no ownship found")
	}

	expected := map[string]int{"UP1": 1, "DN1": -1, "LV1": 0}
	for _, c := range cmds {
		if c.TrendArrow != expected[c.ACID] {
			t.Errorf("%s: got trend %d, expected %d", c.ACID, c.TrendArrow, expected[c.ACID])
		}
	}
}

func TestEvaluateTrackUpPositions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OwnshipID = "OWN"

	// With ownship heading east, a target due north appears off the left
	// wing in the track-up frame.
	own := ownship()
	own.HeadingDeg = 90
	e := NewEngine(fixedProvider([]AircraftState{own, targetAt("N1", 2, 0)}), cfg, nil)

	cmds, ok := e.Evaluate(time.Now())
	if !ok || len(cmds) != 1 {
		t.Fatalf("got ok=%v with %d commands", ok, len(cmds))
	}
	if p := cmds[0].P; math.Abs(p[0]- -2) > 1e-3 || math.Abs(p[1]) > 1e-3 {
		t.Errorf("got track-up position (%f, %f), expected (-2, 0)", p[0], p[1])
	}
}

func TestUpdateConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OwnshipID = "OWN"
	e := NewEngine(fixedProvider(nil), cfg, nil)

	e.UpdateConfig(func(c *Config) { c.MaxRangeNm = 20 })
	if got := e.Config().MaxRangeNm; got != 20 {
		t.Errorf("got MaxRangeNm %f after update, expected 20", got)
	}
}
