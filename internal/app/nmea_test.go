// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/adrianmo/go-nmea"
	"go.uber.org/zap/zaptest"
	"go.viam.com/test"

	"github.com/relabs-tech/compass/internal/heading"
)

func TestHDMSentence(t *testing.T) {
	test.That(t, HDMSentence("HC", 123.4), test.ShouldEqual, "$HCHDM,123.4,M*2D")
	test.That(t, HDMSentence("HC", 123.44), test.ShouldEqual, "$HCHDM,123.4,M*2D")
	// rounds up to 360.0, which is 0.0
	test.That(t, HDMSentence("HC", 359.96), test.ShouldEqual, "$HCHDM,0.0,M*29")
}

func TestHDMSentenceParses(t *testing.T) {
	for _, deg := range []float64{0, 45.5, 181.2, 359.9} {
		s, err := nmea.Parse(HDMSentence("HC", deg))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, s.DataType(), test.ShouldEqual, nmea.TypeHDM)

		hdm, ok := s.(nmea.HDM)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, hdm.Heading, test.ShouldAlmostEqual, deg, 1e-9)
		test.That(t, hdm.MagneticValid, test.ShouldBeTrue)
	}
}

func TestNMEAWriter(t *testing.T) {
	var buf bytes.Buffer
	w := newNMEAWriter(&buf, "HC", zaptest.NewLogger(t).Sugar())

	test.That(t, w.write(heading.Snapshot{CalibrationLabel: "needs calibration"}), test.ShouldBeNil)
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	test.That(t, w.write(heading.Snapshot{HasHeading: true, Azimuth: 90.04}), test.ShouldBeNil)
	test.That(t, w.write(heading.Snapshot{HasHeading: true, Azimuth: 270}), test.ShouldBeNil)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	test.That(t, lines, test.ShouldHaveLength, 2)
	test.That(t, lines[0], test.ShouldStartWith, "$HCHDM,90.0,M*")
	test.That(t, lines[1], test.ShouldStartWith, "$HCHDM,270.0,M*")
}
