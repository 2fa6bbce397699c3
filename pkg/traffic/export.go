// pkg/traffic/export.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mmp/cdti/pkg/math"

	"github.com/brunoga/deep"
	"github.com/iancoleman/orderedmap"
)

// AlertRecord is one exported row: a target that classified above OTHER
// at one integer second of the replay timeline, with both aircraft's
// kinematic snapshots and the full classification that fired.
type AlertRecord struct {
	TimeOffsetSec  int
	Timestamp      time.Time
	Own            AircraftState
	Target         AircraftState
	Classification ThreatClassification
}

// exporter carries the per-run state of a batch export: the accumulated
// records and the per-target dedup clock.
type exporter struct {
	e         *Engine
	cfg       Config // snapshot taken at export start
	start     time.Time
	lastAlert map[string]time.Time
	records   []AlertRecord
}

// scan classifies every target against ownship at time t and records the
// qualifying alerts. A target that was recorded less than one second ago
// is suppressed, so re-entrant scans within the same second cannot
// produce duplicate rows.
func (ex *exporter) scan(t time.Time) {
	states := ex.e.provider.StatesAt(t)
	own, ok := findOwnship(states, ex.cfg.OwnshipID)
	if !ok {
		ex.e.lg.Debugf("%s: no ownship state at %s; skipping second", ex.cfg.OwnshipID, t)
		return
	}

	for _, target := range states {
		if target.ID == own.ID {
			continue
		}

		geo := RelativeOffset(own.Position, target.Position)
		relAlt := target.AltitudeFt - own.AltitudeFt
		closure := ComputeClosure(own, target, geo, relAlt, &ex.cfg)
		c := Classify(geo, relAlt, closure, &ex.cfg)
		if c.Level == LevelOther {
			continue
		}

		if last, ok := ex.lastAlert[target.ID]; ok && t.Sub(last) < time.Second {
			continue
		}
		ex.lastAlert[target.ID] = t

		ex.records = append(ex.records, AlertRecord{
			TimeOffsetSec:  int(t.Sub(ex.start).Seconds()),
			Timestamp:      t,
			Own:            own,
			Target:         target,
			Classification: c,
		})
	}
}

// ExportAlerts replays the classification pipeline over [start, stop] at
// 1 Hz, inclusive, and returns the qualifying alert records. The replay
// timeline must be paused for the duration of the export; the altitude
// filter does not apply (every target is classified). ErrNoAlerts is
// returned when no second in the range produced a record.
func (e *Engine) ExportAlerts(start, stop time.Time) ([]AlertRecord, error) {
	if e.driver != nil && e.driver.Playing() {
		return nil, ErrTimelineActive
	}
	if stop.Before(start) {
		return nil, ErrInvalidRange
	}

	ex := &exporter{
		e:         e,
		cfg:       deep.MustCopy(*e.config),
		start:     start,
		lastAlert: make(map[string]time.Time),
	}

	for t := start; !t.After(stop); t = t.Add(time.Second) {
		ex.scan(t)
	}

	if len(ex.records) == 0 {
		return nil, ErrNoAlerts
	}

	e.lg.Infof("exported %d alert records over %s", len(ex.records), stop.Sub(start))
	return ex.records, nil
}

///////////////////////////////////////////////////////////////////////////
// CSV serialization

// The export schema is fixed at 30 columns; consumers key on it.
var alertCSVHeader = []string{
	"time_offset_sec", "timestamp",
	"own_lat", "own_lon", "own_alt_ft", "own_heading_deg", "own_gs_kt", "own_vs_fpm",
	"target_id",
	"target_lat", "target_lon", "target_alt_ft", "target_heading_deg", "target_gs_kt", "target_vs_fpm",
	"threat_level",
	"distance_nm", "rel_alt_ft", "dist_threshold_nm", "alt_threshold_ft",
	"horiz_closure_kt", "vert_closure_fpm",
	"horiz_tau_sec", "vert_tau_sec", "mod_tau_sec",
	"dist_trigger", "tau_trigger", "vert_tau_trigger",
	"alert_basis", "velocity_source",
}

func ftoa(v float32, prec int) string {
	return strconv.FormatFloat(float64(v), 'f', prec, 32)
}

func tauString(tau float32) string {
	if math.IsInf(tau) {
		return "inf"
	}
	return ftoa(tau, 1)
}

func (r AlertRecord) csvRow() []string {
	c := r.Classification
	speed := func(ac AircraftState, defaultKt float32) string {
		// The recorded groundspeed is the one the closure computation
		// used, defaults included.
		v, _ := resolveVelocity(ac, defaultKt)
		return ftoa(math.Length2f(v), 1)
	}
	return []string{
		strconv.Itoa(r.TimeOffsetSec),
		r.Timestamp.UTC().Format(time.RFC3339),
		ftoa(r.Own.Position.Latitude(), 6), ftoa(r.Own.Position.Longitude(), 6),
		ftoa(r.Own.AltitudeFt, 1), ftoa(r.Own.HeadingDeg, 1), speed(r.Own, DefaultOwnshipSpeedKt), ftoa(r.Own.VerticalRateFpm, 1),
		r.Target.ID,
		ftoa(r.Target.Position.Latitude(), 6), ftoa(r.Target.Position.Longitude(), 6),
		ftoa(r.Target.AltitudeFt, 1), ftoa(r.Target.HeadingDeg, 1), speed(r.Target, DefaultTargetSpeedKt), ftoa(r.Target.VerticalRateFpm, 1),
		c.Level.String(),
		ftoa(c.DistanceNm, 4), ftoa(c.RelAltFt, 1), ftoa(c.DistThresholdNm, 2), ftoa(c.AltThresholdFt, 0),
		ftoa(c.Closure.HorizClosureRateKt, 1), ftoa(c.Closure.VertClosureRateFpm, 1),
		tauString(c.Closure.HorizTauSec), tauString(c.Closure.VertTauSec), tauString(c.Closure.ModTauSec),
		strconv.FormatBool(c.DistTrigger), strconv.FormatBool(c.TauTrigger), strconv.FormatBool(c.VertTauTrigger),
		c.AlertBasis(),
		c.Closure.Source.String(),
	}
}

// WriteAlertsCSV writes the fixed 30-column record stream.
func WriteAlertsCSV(w io.Writer, records []AlertRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(alertCSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.csvRow()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename encodes the active TAU configuration and the range start
// so that an artifact is traceable back to the settings that produced it.
func ExportFilename(cfg Config, start time.Time) string {
	tau := "tauoff"
	if cfg.TAUEnabled {
		tau = fmt.Sprintf("tau%.0fs_%.2fnm_%.0fft", cfg.TAUThresholdSec,
			cfg.TAUDistanceThresholdNm, cfg.TAUAltitudeThresholdFt)
	}
	return fmt.Sprintf("alerts_%s_%s.csv", start.UTC().Format("20060102T150405Z"), tau)
}

// WriteExportMetadata writes a JSON sidecar describing the export: time
// range, record count, and the exact configuration snapshot, with stable
// key order so that repeated exports diff cleanly.
func WriteExportMetadata(w io.Writer, cfg Config, start, stop time.Time, nrecords int) error {
	om := orderedmap.New()
	om.Set("start", start.UTC().Format(time.RFC3339))
	om.Set("stop", stop.UTC().Format(time.RFC3339))
	om.Set("records", nrecords)
	om.Set("ownship_id", cfg.OwnshipID)
	om.Set("tau_enabled", cfg.TAUEnabled)
	om.Set("tau_threshold_sec", cfg.TAUThresholdSec)
	om.Set("tau_distance_threshold_nm", cfg.TAUDistanceThresholdNm)
	om.Set("tau_altitude_threshold_ft", cfg.TAUAltitudeThresholdFt)
	om.Set("vertical_rate_threshold_fpm", cfg.VerticalRateThresholdFpm)
	om.Set("altitude_filter", cfg.AltitudeFilter.String())
	om.Set("max_range_nm", cfg.MaxRangeNm)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(om)
}
