// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/relabs-tech/compass/internal/orientation"
)

// MagSample is the payload of a standalone magnetometer producer.
// mx,my,mz are in µT×10; norm is the magnitude in µT.
type MagSample struct {
	Mx   int16   `json:"mx"`
	My   int16   `json:"my"`
	Mz   int16   `json:"mz"`
	Norm float64 `json:"norm"`
	Time string  `json:"time"`
}

// Field returns the reading in µT with the correction applied.
func (s MagSample) Field(c *MagCorrection) orientation.Vector3 {
	return MagFromTenths(s.Mx, s.My, s.Mz, c)
}

// MagCorrection is a hard-iron offset plus per-axis soft-iron scale, in the
// raw units of the producer (µT×10):
//
//	corrected = (raw - offset) / scale
type MagCorrection struct {
	Offset orientation.Vector3 `json:"mag_offset"`
	Scale  orientation.Vector3 `json:"mag_scale"`
}

// Apply corrects v. Zero scale components are treated as 1.
func (c *MagCorrection) Apply(v orientation.Vector3) orientation.Vector3 {
	if c == nil {
		return v
	}
	return orientation.Vector3{
		X: (v.X - c.Offset.X) / nonZero(c.Scale.X),
		Y: (v.Y - c.Offset.Y) / nonZero(c.Scale.Y),
		Z: (v.Z - c.Offset.Z) / nonZero(c.Scale.Z),
	}
}

func nonZero(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}

// LoadMagCorrection reads the mag_offset/mag_scale fields of a calibration
// result file. Other fields of the file are ignored.
func LoadMagCorrection(path string) (*MagCorrection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mag calibration: %w", err)
	}
	var c MagCorrection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse mag calibration %s: %w", path, err)
	}
	return &c, nil
}
