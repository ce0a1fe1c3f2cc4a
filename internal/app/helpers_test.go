// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/compass/internal/heading"
	"github.com/relabs-tech/compass/internal/orientation"
)

type recordingSink struct {
	mu          sync.Mutex
	accel       []orientation.Vector3
	mag         []orientation.Vector3
	levels      []heading.CalibrationLevel
	unavailable []heading.SensorKind
}

func (s *recordingSink) OnAccelerometerSample(v orientation.Vector3, _ time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accel = append(s.accel, v)
	return false
}

func (s *recordingSink) OnMagnetometerSample(v orientation.Vector3, _ time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mag = append(s.mag, v)
	return false
}

func (s *recordingSink) OnAccuracyChanged(level heading.CalibrationLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = append(s.levels, level)
}

func (s *recordingSink) MarkUnavailable(kind heading.SensorKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = append(s.unavailable, kind)
}

func (s *recordingSink) unavailableKinds() []heading.SensorKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]heading.SensorKind(nil), s.unavailable...)
}

type doneToken struct {
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakePublisher struct {
	mu       sync.Mutex
	topics   []string
	retained []bool
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.retained = append(f.retained, retained)
	f.payloads = append(f.payloads, payload.([]byte))
	return doneToken{err: f.err}
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

// eventually polls cond for up to a second.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

// flatReading returns gravity and field of a level device facing headingDeg.
func flatReading(headingDeg float64) (orientation.Vector3, orientation.Vector3) {
	return orientation.SimulateReading(headingDeg, 0)
}
