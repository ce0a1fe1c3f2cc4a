// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package heading

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CalibrationLevel is the platform-reported magnetometer accuracy.
// Known levels are ordered Unreliable < Low < Medium < High.
type CalibrationLevel int

const (
	CalibrationUnknown CalibrationLevel = iota
	CalibrationUnreliable
	CalibrationLow
	CalibrationMedium
	CalibrationHigh
)

// Platform accuracy constants as delivered by sensor frameworks.
const (
	AccuracyUnreliable = 0
	AccuracyLow        = 1
	AccuracyMedium     = 2
	AccuracyHigh       = 3
)

var levelNames = map[CalibrationLevel]string{
	CalibrationUnknown:    "unknown",
	CalibrationUnreliable: "unreliable",
	CalibrationLow:        "low",
	CalibrationMedium:     "medium",
	CalibrationHigh:       "high",
}

func (l CalibrationLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("CalibrationLevel(%d)", int(l))
}

// MarshalJSON encodes the level by name.
func (l CalibrationLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts a level name or a platform accuracy integer.
func (l *CalibrationLevel) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*l = LevelFromAccuracy(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("calibration level: %w", err)
	}
	level, err := ParseCalibrationLevel(s)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// LevelFromAccuracy maps a platform accuracy constant to a level. Values the
// platform uses for "no contact" or anything unexpected map to
// CalibrationUnknown.
func LevelFromAccuracy(accuracy int) CalibrationLevel {
	switch accuracy {
	case AccuracyUnreliable:
		return CalibrationUnreliable
	case AccuracyLow:
		return CalibrationLow
	case AccuracyMedium:
		return CalibrationMedium
	case AccuracyHigh:
		return CalibrationHigh
	default:
		return CalibrationUnknown
	}
}

// ParseCalibrationLevel parses a level name, case-insensitively.
func ParseCalibrationLevel(s string) (CalibrationLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return CalibrationUnknown, fmt.Errorf("unknown calibration level %q", s)
}

// Severity tells a display how alarming a calibration state is.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalJSON encodes the severity by name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity name.
func (s *Severity) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	switch name {
	case "ok":
		*s = SeverityOK
	case "warning":
		*s = SeverityWarning
	case "critical":
		*s = SeverityCritical
	default:
		return fmt.Errorf("unknown severity %q", name)
	}
	return nil
}

// CalibrationStatus is the user-facing rendering of a level.
type CalibrationStatus struct {
	Label    string
	Severity Severity
}

// Classify returns the label and severity for the level.
func (l CalibrationLevel) Classify() CalibrationStatus {
	switch l {
	case CalibrationUnreliable:
		return CalibrationStatus{Label: "needs figure-eight motion", Severity: SeverityCritical}
	case CalibrationLow:
		return CalibrationStatus{Label: "needs calibration", Severity: SeverityWarning}
	case CalibrationMedium:
		return CalibrationStatus{Label: "calibrated", Severity: SeverityOK}
	case CalibrationHigh:
		return CalibrationStatus{Label: "fully calibrated", Severity: SeverityOK}
	default:
		return CalibrationStatus{Label: "calibration unknown", Severity: SeverityWarning}
	}
}

// missingSensorStatus is shown once a required sensor is known to be absent.
var missingSensorStatus = CalibrationStatus{Label: "no sensors found", Severity: SeverityCritical}
