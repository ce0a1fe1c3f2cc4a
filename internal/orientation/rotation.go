// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"errors"
	"math"
)

// StandardGravity is the reference gravity used for the free-fall check, m/s².
const StandardGravity = 9.81

// minFieldCross is the smallest |E × A| accepted. Typical values are above 100
// for µT × m/s² inputs.
const minFieldCross = 0.1

// ErrDegenerateInput is returned when gravity and geomagnetic vectors cannot
// produce a rotation matrix: free fall, parallel vectors, missing field or
// non-finite or overflowing components.
var ErrDegenerateInput = errors.New("degenerate gravity/geomagnetic input")

// Matrix3 is a row-major 3x3 matrix.
type Matrix3 [9]float64

// RotationMatrix computes the device-to-world rotation matrix R and the
// inclination matrix I from a gravity and a geomagnetic vector, both in
// device coordinates.
//
// World frame: X points east, Y points magnetic north, Z points up.
// Rows of R are the east (H), north (M) and up (A) unit vectors expressed in
// device coordinates.
func RotationMatrix(gravity, geomagnetic Vector3) (r, i Matrix3, err error) {
	if !IsFinite(gravity) || !IsFinite(geomagnetic) {
		return r, i, ErrDegenerateInput
	}

	normSqA := gravity.Norm2()
	if math.IsInf(normSqA, 0) {
		return r, i, ErrDegenerateInput
	}
	freeFallGravitySquared := 0.01 * StandardGravity * StandardGravity
	if normSqA < freeFallGravitySquared {
		// less than 10% of normal gravity
		return r, i, ErrDegenerateInput
	}

	h := geomagnetic.Cross(gravity)
	normH := h.Norm()
	if normH < minFieldCross || math.IsInf(normH, 0) {
		// free fall, parallel vectors or close to a magnetic pole
		return r, i, ErrDegenerateInput
	}
	normE := geomagnetic.Norm()
	if math.IsInf(normE, 0) {
		return r, i, ErrDegenerateInput
	}
	h = h.Mul(1 / normH)
	a := gravity.Mul(1 / math.Sqrt(normSqA))
	m := a.Cross(h)

	r = Matrix3{
		h.X, h.Y, h.Z,
		m.X, m.Y, m.Z,
		a.X, a.Y, a.Z,
	}

	// Project the geomagnetic vector onto the up and the horizontal north axes.
	invE := 1 / normE
	c := geomagnetic.Dot(m) * invE
	s := geomagnetic.Dot(a) * invE
	i = Matrix3{
		1, 0, 0,
		0, c, s,
		0, -s, c,
	}
	return r, i, nil
}

// Angles extracts azimuth, pitch and roll in radians from a rotation matrix
// produced by RotationMatrix. Azimuth is the rotation about the vertical axis,
// in (-π, π].
func Angles(r Matrix3) (azimuth, pitch, roll float64) {
	azimuth = math.Atan2(r[1], r[4])
	pitch = math.Asin(-r[7])
	roll = math.Atan2(-r[6], r[8])
	return azimuth, pitch, roll
}

// Inclination returns the geomagnetic inclination (dip) angle in radians from
// an inclination matrix produced by RotationMatrix.
func Inclination(i Matrix3) float64 {
	return math.Atan2(i[5], i[4])
}
