// pkg/traffic/config.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

import (
	"encoding/json"
	"os"
)

// Config holds the classification and display settings shared by the
// interactive tick and the batch exporter. One engine owns one Config;
// it is read on every evaluation and written only through explicit
// configuration updates, never concurrently with a tick.
type Config struct {
	OwnshipID string `json:"ownship_id"`

	RangeRingsNm []float32 `json:"range_rings_nm"`
	MaxRangeNm   float32   `json:"max_range_nm"`

	AltitudeFilter AltitudeFilterMode `json:"altitude_filter"`

	TAUEnabled             bool    `json:"tau_enabled"`
	TAUThresholdSec        float32 `json:"tau_threshold_sec"`
	TAUDistanceThresholdNm float32 `json:"tau_distance_threshold_nm"`
	TAUAltitudeThresholdFt float32 `json:"tau_altitude_threshold_ft"`

	VerticalRateThresholdFpm float32 `json:"vertical_rate_threshold_fpm"`

	UpdateIntervalMs int `json:"update_interval_ms"`
}

func DefaultConfig() *Config {
	return &Config{
		RangeRingsNm:             []float32{1, 2, 5, 10},
		MaxRangeNm:               10,
		AltitudeFilter:           FilterNormal,
		TAUEnabled:               true,
		TAUThresholdSec:          15,
		TAUDistanceThresholdNm:   0.20,
		TAUAltitudeThresholdFt:   800,
		VerticalRateThresholdFpm: 500,
		UpdateIntervalMs:         100,
	}
}

// LoadConfig reads a Config from the given JSON file, filling unset
// fields from the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	return enc.Encode(c)
}
