// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package heading

import (
	"encoding/json"
	"math"
)

// Direction is an 8-point compass sector.
type Direction int

const (
	DirectionUnknown Direction = iota
	North
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var directionNames = [...]string{"", "N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return ""
	}
	return directionNames[d]
}

// MarshalJSON encodes the direction as its label.
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a label; unknown labels decode to DirectionUnknown.
func (d *Direction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = DirectionUnknown
	for i, name := range directionNames {
		if i > 0 && name == s {
			*d = Direction(i)
		}
	}
	return nil
}

// sector is an inclusive degree range.
type sector struct {
	lo, hi int
	dir    Direction
}

// North owns two ranges, one on each side of the 0/360 seam.
var sectors = [...]sector{
	{0, 22, North},
	{23, 67, NorthEast},
	{68, 112, East},
	{113, 157, SouthEast},
	{158, 202, South},
	{203, 247, SouthWest},
	{248, 292, West},
	{293, 337, NorthWest},
	{338, 360, North},
}

// Classify maps a whole degree to its 8-point direction. 360 is accepted as
// an alias of 0. Anything outside [0, 360] returns DirectionUnknown.
func Classify(degree int) Direction {
	for _, s := range sectors {
		if degree >= s.lo && degree <= s.hi {
			return s.dir
		}
	}
	return DirectionUnknown
}

// RoundDegrees rounds a continuous azimuth to the nearest whole degree,
// halves to even: 22.5 becomes 22 and 23.5 becomes 24. 359.6 becomes 360,
// which Classify still treats as N.
func RoundDegrees(azimuth float64) int {
	return int(math.RoundToEven(azimuth))
}
