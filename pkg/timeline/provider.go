// pkg/timeline/provider.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package timeline

import (
	"time"

	"github.com/mmp/cdti/pkg/traffic"
	"github.com/mmp/cdti/pkg/util"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Provider implements traffic.StateProvider over a set of loaded tracks.
// The batch exporter and the interactive tick both hit the same integer
// seconds repeatedly, so resolved snapshots are memoized in a small LRU
// keyed by query time.
type Provider struct {
	tracks map[string]*Track
	ids    []string // sorted, for deterministic state ordering
	cache  *lru.Cache[int64, []traffic.AircraftState]
}

func NewProvider(tracks map[string]*Track) *Provider {
	cache, _ := lru.New[int64, []traffic.AircraftState](256)
	return &Provider{
		tracks: tracks,
		ids:    util.SortedMapKeys(tracks),
		cache:  cache,
	}
}

// Start returns the earliest sample time across all tracks, End the
// latest.
func (p *Provider) Start() time.Time {
	var t time.Time
	for _, id := range p.ids {
		if s := p.tracks[id].Start(); t.IsZero() || s.Before(t) {
			t = s
		}
	}
	return t
}

func (p *Provider) End() time.Time {
	var t time.Time
	for _, id := range p.ids {
		if e := p.tracks[id].End(); e.After(t) {
			t = e
		}
	}
	return t
}

// StatesAt returns the interpolated state of every aircraft whose track
// spans t, in stable ID order.
func (p *Provider) StatesAt(t time.Time) []traffic.AircraftState {
	key := t.UnixMilli()
	if states, ok := p.cache.Get(key); ok {
		return states
	}

	var states []traffic.AircraftState
	for _, id := range p.ids {
		if state, ok := p.tracks[id].StateAt(t); ok {
			states = append(states, state)
		}
	}

	p.cache.Add(key, states)
	return states
}
