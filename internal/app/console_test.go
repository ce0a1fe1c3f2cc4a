// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"testing"

	"go.viam.com/test"

	"github.com/relabs-tech/compass/internal/heading"
)

func TestFormatSnapshot(t *testing.T) {
	s := heading.Snapshot{
		HeadingDegrees:   123,
		Direction:        heading.SouthEast,
		CalibrationLabel: "fully calibrated",
		Available:        true,
		HasHeading:       true,
	}
	test.That(t, FormatSnapshot(s), test.ShouldEqual, "[HDG] 123° SE fully calibrated")

	s = heading.Snapshot{CalibrationLabel: "no sensors found"}
	test.That(t, FormatSnapshot(s), test.ShouldEqual, "[HDG] --- no sensors found")
}
