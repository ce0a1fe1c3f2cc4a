// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"
)

// Pose is the canonical representation of orientation for the compass.
// Yaw is the magnetic azimuth in [0, 360).
type Pose struct {
	Roll        float64 `json:"roll"`
	Pitch       float64 `json:"pitch"`
	Yaw         float64 `json:"yaw"`
	Inclination float64 `json:"inclination"`
}

// Reading is a gravity/geomagnetic pair sampled at the same tick.
type Reading struct {
	Gravity     Vector3
	Geomagnetic Vector3
	Time        time.Time
}

// Source is anything that can provide readings over time: the mock source,
// a replay, a local IMU.
type Source interface {
	Next() (Reading, error)
}

// NormalizeDegrees maps any finite angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg+360, 360)
	if deg < 0 {
		deg += 360
	}
	// a tiny negative remainder plus 360 rounds to 360
	if deg >= 360 {
		deg = 0
	}
	return deg
}

func degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// ComputePose fuses a gravity and a geomagnetic vector into a full pose.
// It returns ErrDegenerateInput when no rotation matrix exists for the pair;
// callers keep their previous pose in that case.
func ComputePose(gravity, geomagnetic Vector3) (Pose, error) {
	r, i, err := RotationMatrix(gravity, geomagnetic)
	if err != nil {
		return Pose{}, err
	}
	azimuth, pitch, roll := Angles(r)

	return Pose{
		Roll:        degrees(roll),
		Pitch:       degrees(pitch),
		Yaw:         NormalizeDegrees(degrees(azimuth)),
		Inclination: degrees(Inclination(i)),
	}, nil
}
