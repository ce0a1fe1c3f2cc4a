// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"
)

// Field strengths of a mid-latitude location, µT.
const (
	mockHorizontalField = 22.0
	mockVerticalField   = 40.0
)

type mockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock source of a device that turns at 30°/s while
// gently pitching, generating the gravity and geomagnetic vectors it would
// measure.
func NewMockSource() Source {
	return &mockSource{start: time.Now(), now: time.Now}
}

func (m *mockSource) Next() (Reading, error) {
	t := m.now()
	elapsed := t.Sub(m.start).Seconds()

	heading := math.Mod(elapsed*30, 360)
	pitch := 15 * math.Sin(elapsed*0.7)
	g, b := SimulateReading(heading, pitch)

	return Reading{Gravity: g, Geomagnetic: b, Time: t}, nil
}

// SimulateReading returns the gravity and geomagnetic vectors a device would
// measure with its Y axis pointing at headingDeg (clockwise from magnetic
// north) and pitched by pitchDeg about its X axis.
func SimulateReading(headingDeg, pitchDeg float64) (gravity, geomagnetic Vector3) {
	psi := headingDeg * math.Pi / 180
	gravity = Vector3{Z: StandardGravity}
	geomagnetic = Vector3{
		X: -mockHorizontalField * math.Sin(psi),
		Y: mockHorizontalField * math.Cos(psi),
		Z: -mockVerticalField,
	}

	theta := pitchDeg * math.Pi / 180
	return rotateX(gravity, theta), rotateX(geomagnetic, theta)
}

func rotateX(v Vector3, theta float64) Vector3 {
	s, c := math.Sincos(theta)
	return Vector3{
		X: v.X,
		Y: c*v.Y + s*v.Z,
		Z: -s*v.Y + c*v.Z,
	}
}
