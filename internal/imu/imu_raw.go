// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"math"

	"github.com/relabs-tech/compass/internal/orientation"
)

// StandardGravity converts g to m/s².
const StandardGravity = 9.80665

// accelCountsPerG is the MPU9250 sensitivity at ±2g; each range step halves it.
const accelCountsPerG = 16384.0

// IMURaw represents a single raw IMU+mag sample as published by the
// inertial producer.
type IMURaw struct {
	Source string `json:"source"` // "left" or "right"

	Ax int16 `json:"ax"` // accel, counts
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`

	Mx int16 `json:"mx"` // magnetometer, µT×10
	My int16 `json:"my"`
	Mz int16 `json:"mz"`
}

type IMURawSource interface {
	NextRaw() (IMURaw, error)
}

// Accel converts the accelerometer counts to m/s² for the given range code
// (0=±2g, 1=±4g, 2=±8g, 3=±16g).
func (r IMURaw) Accel(rangeCode byte) orientation.Vector3 {
	return AccelFromCounts(r.Ax, r.Ay, r.Az, rangeCode)
}

// HasMag reports whether the sample carries a magnetometer reading. The
// producer leaves all three axes at zero when the magnetometer is not ready
// or overflowed.
func (r IMURaw) HasMag() bool {
	return r.Mx != 0 || r.My != 0 || r.Mz != 0
}

// Mag returns the magnetometer reading in µT with the correction applied.
// A nil correction leaves the reading untouched.
func (r IMURaw) Mag(c *MagCorrection) orientation.Vector3 {
	return MagFromTenths(r.Mx, r.My, r.Mz, c)
}

// AccelFromCounts converts raw accelerometer counts to m/s².
func AccelFromCounts(x, y, z int16, rangeCode byte) orientation.Vector3 {
	if rangeCode > 3 {
		rangeCode = 0
	}
	perG := accelCountsPerG / float64(int(1)<<rangeCode)
	k := StandardGravity / perG
	return orientation.Vector3{X: float64(x) * k, Y: float64(y) * k, Z: float64(z) * k}
}

// MagFromTenths converts a µT×10 reading to µT, correcting it first.
func MagFromTenths(x, y, z int16, c *MagCorrection) orientation.Vector3 {
	v := orientation.Vector3{X: float64(x), Y: float64(y), Z: float64(z)}
	return c.Apply(v).Mul(0.1)
}

// RawFromVectors encodes gravity (m/s²) and a magnetic field (µT) as a raw
// sample, the inverse of Accel and Mag without correction. Values outside
// the int16 range saturate.
func RawFromVectors(source string, gravity, field orientation.Vector3, rangeCode byte) IMURaw {
	if rangeCode > 3 {
		rangeCode = 0
	}
	perMS2 := accelCountsPerG / float64(int(1)<<rangeCode) / StandardGravity
	return IMURaw{
		Source: source,
		Ax:     saturate(gravity.X * perMS2),
		Ay:     saturate(gravity.Y * perMS2),
		Az:     saturate(gravity.Z * perMS2),
		Mx:     saturate(field.X * 10),
		My:     saturate(field.Y * 10),
		Mz:     saturate(field.Z * 10),
	}
}

func saturate(f float64) int16 {
	switch {
	case f >= math.MaxInt16:
		return math.MaxInt16
	case f <= math.MinInt16:
		return math.MinInt16
	}
	return int16(math.Round(f))
}
