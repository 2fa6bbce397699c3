// pkg/traffic/export_test.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/mmp/cdti/pkg/math"
)

var exportEpoch = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// conflictEngine returns an engine whose provider reports ownship and a
// single target in a persistent RA-level conflict.
func conflictEngine(cfg *Config) *Engine {
	states := []AircraftState{ownship(), targetAt("N123", 0.1, 0)}
	return NewEngine(fixedProvider(states), cfg, nil)
}

func exportConfig() *Config {
	cfg := DefaultConfig()
	cfg.OwnshipID = "OWN"
	return cfg
}

func TestExportAlerts(t *testing.T) {
	e := conflictEngine(exportConfig())

	// Five seconds inclusive is six scan times, one record each.
	records, err := e.ExportAlerts(exportEpoch, exportEpoch.Add(5*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("got %d records, expected 6", len(records))
	}

	for i, r := range records {
		if r.TimeOffsetSec != i {
			t.Errorf("record %d: time offset %d", i, r.TimeOffsetSec)
		}
		if r.Target.ID != "N123" {
			t.Errorf("record %d: target %s", i, r.Target.ID)
		}
		if r.Classification.Level != LevelRA {
			t.Errorf("record %d: level %s, expected RA", i, r.Classification.Level)
		}
	}
}

func TestExportIdempotent(t *testing.T) {
	e := conflictEngine(exportConfig())

	first, err := e.ExportAlerts(exportEpoch, exportEpoch.Add(10*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.ExportAlerts(exportEpoch, exportEpoch.Add(10*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Errorf("repeated export gave %d then %d records", len(first), len(second))
	}
}

func TestExportDedup(t *testing.T) {
	e := conflictEngine(exportConfig())
	ex := &exporter{
		e:         e,
		cfg:       e.Config(),
		start:     exportEpoch,
		lastAlert: make(map[string]time.Time),
	}

	// Re-scanning within the same second is suppressed by the per-target
	// dedup clock; a scan a full second later records again.
	ex.scan(exportEpoch)
	ex.scan(exportEpoch)
	ex.scan(exportEpoch.Add(500 * time.Millisecond))
	if len(ex.records) != 1 {
		t.Fatalf("got %d records within one second, expected 1", len(ex.records))
	}
	ex.scan(exportEpoch.Add(time.Second))
	if len(ex.records) != 2 {
		t.Errorf("got %d records after a full second, expected 2", len(ex.records))
	}
}

func TestExportErrors(t *testing.T) {
	e := conflictEngine(exportConfig())

	if _, err := e.ExportAlerts(exportEpoch.Add(time.Second), exportEpoch); err != ErrInvalidRange {
		t.Errorf("reversed range: got %v, expected ErrInvalidRange", err)
	}

	// A distant, level target produces no alerts at all.
	far := NewEngine(fixedProvider([]AircraftState{ownship(), targetAt("N9", 8, 2000)}),
		exportConfig(), nil)
	if _, err := far.ExportAlerts(exportEpoch, exportEpoch.Add(5*time.Second)); err != ErrNoAlerts {
		t.Errorf("no conflicts: got %v, expected ErrNoAlerts", err)
	}
}

type fakeDriver struct{ playing bool }

func (d *fakeDriver) Playing() bool { return d.playing }

func TestExportRequiresPausedTimeline(t *testing.T) {
	e := conflictEngine(exportConfig())
	d := &fakeDriver{playing: true}
	e.SetTimelineDriver(d)

	if _, err := e.ExportAlerts(exportEpoch, exportEpoch.Add(time.Second)); err != ErrTimelineActive {
		t.Errorf("playing timeline: got %v, expected ErrTimelineActive", err)
	}

	d.playing = false
	if _, err := e.ExportAlerts(exportEpoch, exportEpoch.Add(time.Second)); err != nil {
		t.Errorf("paused timeline: unexpected error %v", err)
	}
}

func TestExportIgnoresAltitudeFilter(t *testing.T) {
	// A fast-descending target 3000ft above converges vertically inside
	// the TAU window; the BELOW filter hides it from the display but not
	// from the export.
	cfg := exportConfig()
	cfg.AltitudeFilter = FilterBelow

	diving := targetAt("DV1", 1, 3000)
	diving.Velocity = &Velocity{VxKt: 0, VyKt: -100, VzFpm: -13000}
	e := NewEngine(fixedProvider([]AircraftState{ownship(), diving}), cfg, nil)

	if cmds, ok := e.Evaluate(exportEpoch); !ok || len(cmds) != 0 {
		t.Errorf("display: got ok=%v with %d commands, expected empty list", ok, len(cmds))
	}

	records, err := e.ExportAlerts(exportEpoch, exportEpoch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Classification.Level != LevelTA {
		t.Fatalf("export: got %d records, expected 1 TA", len(records))
	}
	if !records[0].Classification.VertTauTrigger {
		t.Errorf("export: vertical TAU trigger not set")
	}
}

func TestAlertsCSV(t *testing.T) {
	e := conflictEngine(exportConfig())
	records, err := e.ExportAlerts(exportEpoch, exportEpoch.Add(2*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteAlertsCSV(&buf, records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-reading CSV: %v", err)
	}
	if len(rows) != len(records)+1 {
		t.Fatalf("got %d CSV rows for %d records", len(rows), len(records))
	}
	for i, row := range rows {
		if len(row) != 30 {
			t.Errorf("row %d: %d columns, expected 30", i, len(row))
		}
	}

	header := rows[0]
	if header[0] != "time_offset_sec" || header[8] != "target_id" || header[29] != "velocity_source" {
		t.Errorf("unexpected header layout: %v", header)
	}

	// Spot-check the first record row.
	row := rows[1]
	if row[0] != "0" {
		t.Errorf("time offset column: %q", row[0])
	}
	if row[1] != exportEpoch.Format(time.RFC3339) {
		t.Errorf("timestamp column: %q", row[1])
	}
	if row[8] != "N123" {
		t.Errorf("target id column: %q", row[8])
	}
	if row[15] != "RA" {
		t.Errorf("threat level column: %q", row[15])
	}
	if row[29] != "ESTIMATED" {
		t.Errorf("velocity source column: %q", row[29])
	}
}

func TestTauString(t *testing.T) {
	if s := tauString(math.Inf()); s != "inf" {
		t.Errorf("got %q for +Inf, expected inf", s)
	}
	if s := tauString(7.25); s != "7.2" && s != "7.3" {
		t.Errorf("got %q for 7.25", s)
	}
}

func TestExportFilename(t *testing.T) {
	cfg := *exportConfig()
	name := ExportFilename(cfg, exportEpoch)
	if name != "alerts_20260314T120000Z_tau15s_0.20nm_800ft.csv" {
		t.Errorf("got filename %q", name)
	}

	cfg.TAUEnabled = false
	if name := ExportFilename(cfg, exportEpoch); name != "alerts_20260314T120000Z_tauoff.csv" {
		t.Errorf("TAU disabled: got filename %q", name)
	}
}

func TestExportMetadata(t *testing.T) {
	var buf bytes.Buffer
	cfg := *exportConfig()
	if err := WriteExportMetadata(&buf, cfg, exportEpoch, exportEpoch.Add(time.Minute), 17); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := buf.String()
	for _, want := range []string{`"records": 17`, `"ownship_id": "OWN"`, `"tau_enabled": true`} {
		if !strings.Contains(s, want) {
			t.Errorf("metadata missing %s:\n%s", want, s)
		}
	}
	// Stable key order: start first.
	if !strings.Contains(strings.Split(s, "\n")[1], `"start"`) {
		t.Errorf("metadata does not start with the time range:\n%s", s)
	}
}
