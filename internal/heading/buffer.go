// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package heading

import (
	"fmt"

	"github.com/relabs-tech/compass/internal/orientation"
)

// SensorKind identifies which vector a sample carries.
type SensorKind int

const (
	Accelerometer SensorKind = iota
	Magnetometer
)

func (k SensorKind) String() string {
	switch k {
	case Accelerometer:
		return "accelerometer"
	case Magnetometer:
		return "magnetometer"
	default:
		return fmt.Sprintf("SensorKind(%d)", int(k))
	}
}

// SampleBuffer keeps the last vector seen per sensor kind. It has no locking
// of its own; the pipeline serializes access.
type SampleBuffer struct {
	gravity     orientation.Vector3
	geomagnetic orientation.Vector3
	haveGravity bool
	haveField   bool
}

// Update overwrites the stored vector for kind.
func (b *SampleBuffer) Update(kind SensorKind, v orientation.Vector3) {
	switch kind {
	case Accelerometer:
		b.gravity = v
		b.haveGravity = true
	case Magnetometer:
		b.geomagnetic = v
		b.haveField = true
	}
}

// Pair returns the latest gravity and geomagnetic vectors. ok is false until
// both kinds have been seen once.
func (b *SampleBuffer) Pair() (gravity, geomagnetic orientation.Vector3, ok bool) {
	return b.gravity, b.geomagnetic, b.haveGravity && b.haveField
}

// Reset forgets both vectors.
func (b *SampleBuffer) Reset() {
	*b = SampleBuffer{}
}
