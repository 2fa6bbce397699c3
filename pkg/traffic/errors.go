// pkg/traffic/errors.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

import "errors"

var (
	ErrNoOwnship      = errors.New("No ownship state at the requested time")
	ErrNoAlerts       = errors.New("No alerts in the requested time range")
	ErrTimelineActive = errors.New("Timeline must be paused to export alerts")
	ErrInvalidRange   = errors.New("Export stop time precedes start time")
)
