// pkg/traffic/display.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

import (
	"slices"

	"github.com/mmp/cdti/pkg/math"
)

type RGB struct {
	R, G, B float32
}

// Advisory colors follow the usual CDTI conventions.
var (
	RGBRed   = RGB{R: 1, G: 0.1, B: 0.1}
	RGBAmber = RGB{R: 1, G: 0.75, B: 0}
	RGBWhite = RGB{R: 1, G: 1, B: 1}
)

// SymbolType identifies the shape drawn for a target. The mapping from
// threat level to symbol is a fixed contract with the renderer, not
// configurable.
type SymbolType int

const (
	SymbolHollowDiamond SymbolType = iota // OTHER
	SymbolFilledDiamond                   // PA
	SymbolFilledCircle                    // TA
	SymbolFilledSquare                    // RA
)

func (s SymbolType) String() string {
	switch s {
	case SymbolFilledSquare:
		return "filled-square"
	case SymbolFilledCircle:
		return "filled-circle"
	case SymbolFilledDiamond:
		return "filled-diamond"
	default:
		return "hollow-diamond"
	}
}

func (l ThreatLevel) Symbol() SymbolType {
	switch l {
	case LevelRA:
		return SymbolFilledSquare
	case LevelTA:
		return SymbolFilledCircle
	case LevelPA:
		return SymbolFilledDiamond
	default:
		return SymbolHollowDiamond
	}
}

func (l ThreatLevel) Color() RGB {
	switch l {
	case LevelRA:
		return RGBRed
	case LevelTA:
		return RGBAmber
	default:
		return RGBWhite
	}
}

// RenderCommand describes one traffic symbol for the external renderer:
// a shape at a track-up position, in nautical miles from the screen
// center, with ownship's track pointing up. The engine owns no drawing
// surface; this list is the only thing that crosses the rendering
// boundary.
type RenderCommand struct {
	ACID   string
	Level  ThreatLevel
	Symbol SymbolType
	Color  RGB

	// P is the symbol position in the track-up frame, nm east/up.
	P [2]float32

	// Clipped marks an out-of-range RA/TA that has been projected onto
	// the edge of the display radius; it is drawn as a half symbol.
	Clipped bool

	// TrendArrow is +1 for a climb arrow, -1 for a descent arrow, 0 for
	// neither.
	TrendArrow int

	DistanceNm float32
	RelAltFt   float32
}

// compose classifies every target against ownship and builds the display
// list: altitude-filtered, range-clipped, and sorted so that
// higher-priority symbols draw last (on top).
func compose(own AircraftState, targets []AircraftState, cfg *Config) []RenderCommand {
	var cmds []RenderCommand

	for _, target := range targets {
		if target.ID == own.ID {
			continue
		}

		geo := RelativeOffset(own.Position, target.Position)
		relAlt := target.AltitudeFt - own.AltitudeFt

		if !cfg.AltitudeFilter.PassesFilter(relAlt) {
			continue
		}

		closure := ComputeClosure(own, target, geo, relAlt, cfg)
		c := Classify(geo, relAlt, closure, cfg)

		clipped := false
		if geo.DistanceNm > cfg.MaxRangeNm {
			// Beyond the display radius only RA and TA remain, drawn as
			// half symbols pinned to the edge along the target's bearing.
			if c.Level != LevelRA && c.Level != LevelTA {
				continue
			}
			clipped = true
		}

		dx, dy := TrackUpRotate(geo.XNm, geo.YNm, own.HeadingDeg)
		if clipped {
			scale := cfg.MaxRangeNm / geo.DistanceNm
			dx, dy = dx*scale, dy*scale
		}

		trend := 0
		if vs := verticalRate(target); math.Abs(vs) > cfg.VerticalRateThresholdFpm {
			if vs > 0 {
				trend = 1
			} else {
				trend = -1
			}
		}

		cmds = append(cmds, RenderCommand{
			ACID:       target.ID,
			Level:      c.Level,
			Symbol:     c.Level.Symbol(),
			Color:      c.Level.Color(),
			P:          [2]float32{dx, dy},
			Clipped:    clipped,
			TrendArrow: trend,
			DistanceNm: geo.DistanceNm,
			RelAltFt:   relAlt,
		})
	}

	slices.SortStableFunc(cmds, func(a, b RenderCommand) int {
		return int(a.Level) - int(b.Level)
	})

	return cmds
}
