// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package heading turns raw accelerometer and magnetometer samples into a
// stable compass heading, an 8-point direction and a calibration status.
//
// A Pipeline is one observation session: create it when sensors start
// delivering, Close it when they stop. Nothing survives a session.
package heading

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/compass/internal/orientation"
)

// ErrMissingSensor marks a pipeline that can never produce a heading because
// a required sensor is absent.
var ErrMissingSensor = errors.New("required sensor unavailable")

// SampleSink is the inbound contract adapters feed. Pipeline implements it.
type SampleSink interface {
	OnAccelerometerSample(v orientation.Vector3, t time.Time) bool
	OnMagnetometerSample(v orientation.Vector3, t time.Time) bool
	OnAccuracyChanged(level CalibrationLevel)
	MarkUnavailable(kind SensorKind)
}

// HeadingState is the last accepted heading.
type HeadingState struct {
	Pose      orientation.Pose
	Degrees   int
	Direction Direction
	UpdatedAt time.Time
	valid     bool
}

// Snapshot is the read-only view handed to displays and publishers.
type Snapshot struct {
	HeadingDegrees   int              `json:"heading_degrees"`
	Direction        Direction        `json:"direction"`
	Calibration      CalibrationLevel `json:"calibration"`
	CalibrationLabel string           `json:"calibration_label"`
	Severity         Severity         `json:"severity"`
	Available        bool             `json:"available"`
	HasHeading       bool             `json:"has_heading"`
	Azimuth          float64          `json:"azimuth"`
	Pitch            float64          `json:"pitch"`
	Roll             float64          `json:"roll"`
	Inclination      float64          `json:"inclination"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMinInterval overrides the throttle gap between accepted updates.
func WithMinInterval(d time.Duration) Option {
	return func(p *Pipeline) {
		p.throttle = NewThrottle(d)
	}
}

// Pipeline owns the sample buffer, the throttle and the heading state of one
// observation session. All mutation happens under a single lock, so samples
// may arrive from several goroutines.
type Pipeline struct {
	mu          sync.Mutex
	logger      *zap.SugaredLogger
	buffer      SampleBuffer
	throttle    *Throttle
	state       HeadingState
	calibration CalibrationLevel
	unavailable error
	closed      bool

	subscribers map[int]func(Snapshot)
	nextSubID   int
}

var _ SampleSink = (*Pipeline)(nil)

// New starts an observation session. A nil logger discards output.
func New(logger *zap.SugaredLogger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	p := &Pipeline{
		logger:      logger,
		throttle:    NewThrottle(DefaultMinInterval),
		calibration: CalibrationUnknown,
		subscribers: map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnAccelerometerSample stores a gravity vector and, if the throttle allows,
// recomputes the heading. It reports whether the heading state changed.
func (p *Pipeline) OnAccelerometerSample(v orientation.Vector3, t time.Time) bool {
	return p.onSample(Accelerometer, v, t)
}

// OnMagnetometerSample stores a geomagnetic vector and, if the throttle
// allows, recomputes the heading. It reports whether the heading state
// changed.
func (p *Pipeline) OnMagnetometerSample(v orientation.Vector3, t time.Time) bool {
	return p.onSample(Magnetometer, v, t)
}

func (p *Pipeline) onSample(kind SensorKind, v orientation.Vector3, t time.Time) bool {
	p.mu.Lock()
	if p.closed || p.unavailable != nil {
		p.mu.Unlock()
		return false
	}

	p.buffer.Update(kind, v)
	if !p.throttle.Allow(t) {
		p.mu.Unlock()
		return false
	}

	gravity, geomagnetic, ok := p.buffer.Pair()
	if !ok {
		p.mu.Unlock()
		return false
	}

	pose, err := orientation.ComputePose(gravity, geomagnetic)
	if err != nil {
		p.mu.Unlock()
		p.logger.Debugw("skipping heading update", "trigger", kind, "error", err)
		return false
	}

	degrees := RoundDegrees(pose.Yaw)
	p.state = HeadingState{
		Pose:      pose,
		Degrees:   degrees % 360,
		Direction: Classify(degrees),
		UpdatedAt: t,
		valid:     true,
	}
	snap, subs := p.snapshotLocked(), p.subscribersLocked()
	p.mu.Unlock()

	notify(subs, snap)
	return true
}

// OnAccuracyChanged records a new calibration level. It never waits for the
// throttle and never touches the heading state.
func (p *Pipeline) OnAccuracyChanged(level CalibrationLevel) {
	p.mu.Lock()
	if p.closed || p.calibration == level {
		p.mu.Unlock()
		return
	}
	p.calibration = level
	snap, subs := p.snapshotLocked(), p.subscribersLocked()
	p.mu.Unlock()

	status := level.Classify()
	p.logger.Infow("calibration changed", "level", level, "label", status.Label, "severity", status.Severity)
	notify(subs, snap)
}

// MarkUnavailable reports that a required sensor is absent. The pipeline
// stops accepting samples for good. Only the first call has an effect.
func (p *Pipeline) MarkUnavailable(kind SensorKind) {
	p.mu.Lock()
	if p.closed || p.unavailable != nil {
		p.mu.Unlock()
		return
	}
	p.unavailable = fmt.Errorf("%s: %w", kind, ErrMissingSensor)
	p.buffer.Reset()
	p.state = HeadingState{}
	snap, subs := p.snapshotLocked(), p.subscribersLocked()
	p.mu.Unlock()

	p.logger.Errorw("compass unavailable", "sensor", kind)
	notify(subs, snap)
}

// Err returns the terminal error of the session, if any.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unavailable
}

// State returns a copy of the heading state and whether a heading was ever
// computed.
func (p *Pipeline) State() (HeadingState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.state.valid
}

// Snapshot returns the current outbound view.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Subscribe registers fn to be called after every accepted heading update and
// every calibration or availability change. Callbacks run on the goroutine
// that delivered the triggering event, outside the pipeline lock.
// The returned function removes the subscription.
func (p *Pipeline) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// Close tears the session down. Later events are ignored.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.buffer.Reset()
	p.throttle.Reset()
	p.state = HeadingState{}
	clear(p.subscribers)
}

func (p *Pipeline) snapshotLocked() Snapshot {
	status := p.calibration.Classify()
	if p.unavailable != nil {
		status = missingSensorStatus
	}
	snap := Snapshot{
		Calibration:      p.calibration,
		CalibrationLabel: status.Label,
		Severity:         status.Severity,
		Available:        p.unavailable == nil,
		HasHeading:       p.state.valid,
	}
	if p.state.valid {
		snap.HeadingDegrees = p.state.Degrees
		snap.Direction = p.state.Direction
		snap.Azimuth = p.state.Pose.Yaw
		snap.Pitch = p.state.Pose.Pitch
		snap.Roll = p.state.Pose.Roll
		snap.Inclination = p.state.Pose.Inclination
		snap.UpdatedAt = p.state.UpdatedAt
	}
	return snap
}

func (p *Pipeline) subscribersLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
