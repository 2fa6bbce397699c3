// pkg/traffic/state.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

import (
	"time"

	"github.com/mmp/cdti/pkg/math"
)

// AircraftState is a snapshot of a single aircraft's kinematic state at
// one evaluation time. It is produced by a StateProvider and never
// mutated by the traffic engine.
type AircraftState struct {
	ID              string
	Position        math.Point2LL
	AltitudeFt      float32
	HeadingDeg      float32
	VerticalRateFpm float32

	// GroundspeedKt is zero when the source data does not carry
	// groundspeed; the closure calculator then falls back to a nominal
	// speed for the aircraft.
	GroundspeedKt float32

	// Velocity holds true ground-relative velocity components when the
	// data source provides them (e.g. ADS-B velocity messages); nil
	// otherwise.
	Velocity *Velocity
}

// Velocity gives ground-relative velocity components: Vx east and Vy
// north in knots, Vz vertical in feet per minute.
type Velocity struct {
	VxKt  float32
	VyKt  float32
	VzFpm float32
}

// StateProvider supplies the kinematic snapshots of every aircraft,
// ownship included, at a requested time. Implementations interpolate or
// otherwise resolve positions; the traffic engine depends only on this
// interface.
type StateProvider interface {
	StatesAt(t time.Time) []AircraftState
}

// StateProviderFunc adapts a function to the StateProvider interface.
type StateProviderFunc func(t time.Time) []AircraftState

func (f StateProviderFunc) StatesAt(t time.Time) []AircraftState { return f(t) }
