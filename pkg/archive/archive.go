// pkg/archive/archive.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package archive persists exported alert records in a sqlite database
// so that they can be queried after the fact without re-running the
// replay.
package archive

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mmp/cdti/pkg/math"
	"github.com/mmp/cdti/pkg/traffic"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS alerts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    exported_at TEXT NOT NULL,
    time_offset_sec INTEGER NOT NULL,
    timestamp TEXT NOT NULL,
    ownship_id TEXT NOT NULL,
    target_id TEXT NOT NULL,
    threat_level TEXT NOT NULL,
    distance_nm REAL NOT NULL,
    rel_alt_ft REAL NOT NULL,
    horiz_closure_kt REAL NOT NULL,
    vert_closure_fpm REAL NOT NULL,
    horiz_tau_sec REAL,
    vert_tau_sec REAL,
    mod_tau_sec REAL,
    alert_basis TEXT NOT NULL,
    velocity_source TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_alerts_target ON alerts(target_id);
CREATE INDEX IF NOT EXISTS idx_alerts_level ON alerts(threat_level);
`

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL mode for better concurrency with any readers.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// tauValue maps an undefined (+Inf) TAU to NULL.
func tauValue(tau float32) any {
	if math.IsInf(tau) {
		return nil
	}
	return float64(tau)
}

// InsertRecords stores one export's records in a single transaction.
func (s *Store) InsertRecords(ownshipID string, records []traffic.AlertRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO alerts
        (exported_at, time_offset_sec, timestamp, ownship_id, target_id, threat_level,
         distance_nm, rel_alt_ft, horiz_closure_kt, vert_closure_fpm,
         horiz_tau_sec, vert_tau_sec, mod_tau_sec, alert_basis, velocity_source)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	exportedAt := time.Now().UTC().Format(time.RFC3339)
	for _, r := range records {
		c := r.Classification
		_, err := stmt.Exec(exportedAt, r.TimeOffsetSec, r.Timestamp.UTC().Format(time.RFC3339),
			ownshipID, r.Target.ID, c.Level.String(),
			float64(c.DistanceNm), float64(c.RelAltFt),
			float64(c.Closure.HorizClosureRateKt), float64(c.Closure.VertClosureRateFpm),
			tauValue(c.Closure.HorizTauSec), tauValue(c.Closure.VertTauSec), tauValue(c.Closure.ModTauSec),
			c.AlertBasis(), c.Closure.Source.String())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SummaryByLevel returns the number of stored alerts per threat level.
func (s *Store) SummaryByLevel() (map[string]int, error) {
	rows, err := s.db.Query("SELECT threat_level, COUNT(*) FROM alerts GROUP BY threat_level")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		counts[level] = n
	}
	return counts, rows.Err()
}

// TargetCounts returns, for each target, how many alerts were recorded.
func (s *Store) TargetCounts() (map[string]int, error) {
	rows, err := s.db.Query("SELECT target_id, COUNT(*) FROM alerts GROUP BY target_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
