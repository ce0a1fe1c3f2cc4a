// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/golang/geo/r3"
)

// Vector3 is a device-frame 3-axis sample. Accelerometer vectors are in m/s²,
// magnetometer vectors in µT.
type Vector3 = r3.Vector

// IsFinite reports whether no component of v is NaN or infinite.
func IsFinite(v Vector3) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
