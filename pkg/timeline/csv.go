// pkg/timeline/csv.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package timeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmp/cdti/pkg/log"
	"github.com/mmp/cdti/pkg/math"
	"github.com/mmp/cdti/pkg/util"

	"golang.org/x/sync/errgroup"
)

// Track files are headerless CSV, one row per fix: time,lon,lat,alt with
// altitude in feet MSL. Timestamps are ISO-8601 without a zone and are
// taken as UTC.
const timeLayout = "2006-01-02T15:04:05.999"

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.UTC)
}

// ParseTrack reads one aircraft's position track.
func ParseTrack(r io.Reader, id string) (*Track, error) {
	tr := &Track{ID: id}
	scan := bufio.NewScanner(r)
	line := 0
	for scan.Scan() {
		line++
		text := strings.TrimSpace(scan.Text())
		if text == "" {
			continue
		}

		f := strings.Split(text, ",")
		if len(f) < 4 {
			return nil, fmt.Errorf("%s:%d: expected time,lon,lat,alt; got %q", id, line, text)
		}

		t, err := parseTime(f[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", id, line, err)
		}
		lon, err := strconv.ParseFloat(f[1], 32)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", id, line, err)
		}
		lat, err := strconv.ParseFloat(f[2], 32)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", id, line, err)
		}
		alt, err := strconv.ParseFloat(f[3], 32)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", id, line, err)
		}

		tr.Samples = append(tr.Samples, Sample{
			Time:       t,
			Position:   math.Point2LL{float32(lon), float32(lat)},
			AltitudeFt: float32(alt),
		})
	}
	if err := scan.Err(); err != nil {
		return nil, err
	}
	if len(tr.Samples) == 0 {
		return nil, fmt.Errorf("%s: no samples in track", id)
	}
	return tr, nil
}

// ParseScalarSidecar reads a time,value sidecar file (groundspeed etc.)
func ParseScalarSidecar(r io.Reader) ([]ScalarSample, error) {
	var samples []ScalarSample
	scan := bufio.NewScanner(r)
	line := 0
	for scan.Scan() {
		line++
		text := strings.TrimSpace(scan.Text())
		if text == "" {
			continue
		}

		f := strings.Split(text, ",")
		if len(f) < 2 {
			return nil, fmt.Errorf("line %d: expected time,value; got %q", line, text)
		}
		t, err := parseTime(f[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		v, err := strconv.ParseFloat(f[1], 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, ScalarSample{Time: t, Value: float32(v)})
	}
	return samples, scan.Err()
}

// LoadTracks reads every "<id>.csv" track in the directory, attaching
// "<id>_gs.csv" groundspeed sidecars where present. Tracks load
// concurrently since directories can hold many aircraft.
func LoadTracks(dir string, lg *log.Logger) (map[string]*Track, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	tracks := make(map[string]*Track)
	var g errgroup.Group

	for _, path := range paths {
		path := path
		id := strings.TrimSuffix(filepath.Base(path), ".csv")
		if strings.HasSuffix(id, "_gs") {
			continue // sidecar, picked up with its track
		}

		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			tr, err := ParseTrack(f, id)
			if err != nil {
				return err
			}

			if gf, err := os.Open(filepath.Join(dir, id+"_gs.csv")); err == nil {
				defer gf.Close()
				if tr.Groundspeed, err = ParseScalarSidecar(gf); err != nil {
					return fmt.Errorf("%s_gs: %w", id, err)
				}
			}

			lg.Infof("%s: loaded %d samples (%d groundspeed)", id, len(tr.Samples), len(tr.Groundspeed))

			mu.Lock()
			tracks[id] = tr
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%s: no track files found", dir)
	}
	return tracks, nil
}

// LoadTracksCached is LoadTracks behind the msgpack object cache: parsed
// tracks are reused across runs as long as no source file is newer than
// the cache entry.
func LoadTracksCached(dir string, lg *log.Logger) (map[string]*Track, error) {
	newest := time.Time{}
	paths, _ := filepath.Glob(filepath.Join(dir, "*.csv"))
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil && fi.ModTime().After(newest) {
			newest = fi.ModTime()
		}
	}

	cachePath := filepath.Join("tracks", filepath.Base(filepath.Clean(dir))+".msgpack")

	var tracks map[string]*Track
	if mod, err := util.CacheRetrieveObject(cachePath, &tracks); err == nil && mod.After(newest) {
		lg.Infof("%s: %d tracks from cache", dir, len(tracks))
		return tracks, nil
	}

	tracks, err := LoadTracks(dir, lg)
	if err != nil {
		return nil, err
	}
	if err := util.CacheStoreObject(cachePath, tracks); err != nil {
		lg.Warnf("%s: unable to cache tracks: %v", cachePath, err)
	}
	return tracks, nil
}
