// pkg/traffic/classify.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

import (
	"github.com/mmp/cdti/pkg/math"
)

// ThreatLevel is an advisory tier in the RTCA convention. The numeric
// values give the display draw order, lowest first, so that higher
// priority symbols render on top; the same ordering is the tie-break
// priority everywhere.
type ThreatLevel int

const (
	LevelOther ThreatLevel = iota
	LevelPA                // proximity advisory
	LevelTA                // traffic advisory
	LevelRA                // resolution advisory
)

func (l ThreatLevel) String() string {
	switch l {
	case LevelRA:
		return "RA"
	case LevelTA:
		return "TA"
	case LevelPA:
		return "PA"
	default:
		return "OTHER"
	}
}

// Advisory-tier thresholds. These are the fixed zone definitions of the
// display; the TAU-based TA thresholds live in Config since they are
// operator adjustable.
const (
	RADistanceNm = 0.20
	RAAltitudeFt = 600

	TADistanceNm = 0.55
	TAAltitudeFt = 800

	PADistanceNm = 4.0
	PAAltitudeFt = 1200
)

// ThreatClassification is the result of classifying one target against
// ownship. It is a pure derived value: recomputed on every evaluation,
// never mutated. The trigger booleans record which rule(s) fired and the
// threshold fields record the values that applied for the winning tier,
// so that exports can reconstruct how close a target was to triggering.
type ThreatClassification struct {
	Level ThreatLevel

	DistTrigger    bool
	TauTrigger     bool
	VertTauTrigger bool
	AltTrigger     bool

	DistThresholdNm float32
	AltThresholdFt  float32

	DistanceNm float32
	RelAltFt   float32
	Closure    ClosureInfo
}

// Classify maps the pair's separation and closure state to an advisory
// tier. Rules are evaluated in strict priority order and the first match
// wins; for TA, the distance-zone condition takes precedence over the TAU
// conditions for trigger attribution when both hold at once.
func Classify(geo RelativeGeometry, relAltFt float32, closure ClosureInfo, cfg *Config) ThreatClassification {
	c := ThreatClassification{
		DistanceNm: geo.DistanceNm,
		RelAltFt:   relAltFt,
		Closure:    closure,
	}
	absAlt := math.Abs(relAltFt)

	switch {
	case geo.DistanceNm <= RADistanceNm && absAlt <= RAAltitudeFt:
		c.Level = LevelRA
		c.DistTrigger = true
		c.AltTrigger = true
		c.DistThresholdNm = RADistanceNm
		c.AltThresholdFt = RAAltitudeFt

	case geo.DistanceNm <= TADistanceNm && absAlt <= TAAltitudeFt:
		c.Level = LevelTA
		c.DistTrigger = true
		c.AltTrigger = true
		c.DistThresholdNm = TADistanceNm
		c.AltThresholdFt = TAAltitudeFt

	case cfg.TAUEnabled && closure.HorizTauSec <= cfg.TAUThresholdSec && absAlt <= cfg.TAUAltitudeThresholdFt:
		c.Level = LevelTA
		c.TauTrigger = true
		c.AltTrigger = true
		c.DistThresholdNm = cfg.TAUDistanceThresholdNm
		c.AltThresholdFt = cfg.TAUAltitudeThresholdFt

	case cfg.TAUEnabled && closure.VertClosureRateFpm > 0 && closure.VertTauSec <= cfg.TAUThresholdSec:
		c.Level = LevelTA
		c.VertTauTrigger = true
		c.DistThresholdNm = cfg.TAUDistanceThresholdNm
		c.AltThresholdFt = cfg.TAUAltitudeThresholdFt

	case geo.DistanceNm <= PADistanceNm && absAlt <= PAAltitudeFt:
		c.Level = LevelPA
		c.DistTrigger = true
		c.AltTrigger = true
		c.DistThresholdNm = PADistanceNm
		c.AltThresholdFt = PAAltitudeFt

	default:
		c.Level = LevelOther
		// No thresholds recorded for non-advisory traffic.
	}

	return c
}

// AlertBasis returns the set of contributing trigger families joined with
// "+", e.g. "ALT+DIST" or "ALT+TAU"; empty for OTHER.
func (c ThreatClassification) AlertBasis() string {
	var basis string
	add := func(s string) {
		if basis != "" {
			basis += "+"
		}
		basis += s
	}
	if c.AltTrigger {
		add("ALT")
	}
	if c.DistTrigger {
		add("DIST")
	}
	if c.TauTrigger || c.VertTauTrigger {
		add("TAU")
	}
	return basis
}
