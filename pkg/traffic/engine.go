// pkg/traffic/engine.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

import (
	"time"

	"github.com/mmp/cdti/pkg/log"
)

// TimelineDriver is what the engine needs to know about the external
// replay clock: whether it is currently advancing. Exports are only
// legal against a paused timeline.
type TimelineDriver interface {
	Playing() bool
}

// Engine evaluates the traffic picture. It owns the shared configuration
// and depends only on a StateProvider for kinematics; everything it
// computes is derived fresh from the provider's snapshots, so there is no
// per-target state to invalidate. The engine is single-threaded by
// contract: configuration updates must not race an Evaluate or export
// call.
type Engine struct {
	provider StateProvider
	config   *Config
	driver   TimelineDriver
	lg       *log.Logger
}

func NewEngine(provider StateProvider, config *Config, lg *log.Logger) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		provider: provider,
		config:   config,
		lg:       lg,
	}
}

// SetTimelineDriver attaches the replay clock consulted by ExportAlerts'
// must-be-paused check. Without one, exports are always allowed.
func (e *Engine) SetTimelineDriver(d TimelineDriver) {
	e.driver = d
}

func (e *Engine) Config() Config {
	return *e.config
}

// UpdateConfig applies a configuration change between evaluations.
func (e *Engine) UpdateConfig(update func(*Config)) {
	update(e.config)
}

// Evaluate computes the display list for the given time. The returned
// Boolean is false when the provider had no ownship snapshot, in which
// case the list is empty; that is a reportable condition, not an error.
// All targets within one call are classified against the same ownship
// snapshot.
func (e *Engine) Evaluate(t time.Time) ([]RenderCommand, bool) {
	states := e.provider.StatesAt(t)

	own, ok := findOwnship(states, e.config.OwnshipID)
	if !ok {
		e.lg.Debugf("%s: no ownship state at %s", e.config.OwnshipID, t)
		return nil, false
	}

	return compose(own, states, e.config), true
}

func findOwnship(states []AircraftState, id string) (AircraftState, bool) {
	for _, s := range states {
		if s.ID == id {
			return s, true
		}
	}
	return AircraftState{}, false
}
