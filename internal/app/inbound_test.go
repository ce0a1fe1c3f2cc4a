// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"go.viam.com/test"

	"github.com/relabs-tech/compass/internal/heading"
	"github.com/relabs-tech/compass/internal/imu"
	"github.com/relabs-tech/compass/internal/orientation"
)

func TestRouterIMUPayload(t *testing.T) {
	sink := &recordingSink{}
	r := newSampleRouter(sink, 0, nil, zaptest.NewLogger(t).Sugar())

	err := r.handleIMU([]byte(`{"source":"left","ax":0,"ay":0,"az":16384,"mx":220,"my":0,"mz":-400}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sink.accel, test.ShouldHaveLength, 1)
	test.That(t, sink.accel[0].Z, test.ShouldAlmostEqual, imu.StandardGravity, 1e-9)
	test.That(t, sink.mag, test.ShouldHaveLength, 1)
	test.That(t, sink.mag[0].X, test.ShouldAlmostEqual, 22, 1e-9)
	test.That(t, sink.mag[0].Z, test.ShouldAlmostEqual, -40, 1e-9)

	// no magnetometer reading in this sample
	err = r.handleIMU([]byte(`{"source":"left","az":16384}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sink.accel, test.ShouldHaveLength, 2)
	test.That(t, sink.mag, test.ShouldHaveLength, 1)

	test.That(t, r.handleIMU([]byte("not json")), test.ShouldNotBeNil)
	test.That(t, sink.accel, test.ShouldHaveLength, 2)
}

func TestRouterMagPayloadCorrected(t *testing.T) {
	sink := &recordingSink{}
	c := &imu.MagCorrection{
		Offset: orientation.Vector3{X: 100},
		Scale:  orientation.Vector3{X: 2, Y: 1, Z: 1},
	}
	r := newSampleRouter(sink, 0, c, zaptest.NewLogger(t).Sugar())

	err := r.handleMag([]byte(`{"mx":300,"my":-50,"mz":10,"norm":20.6,"time":"2026-01-02T03:04:05Z"}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sink.mag, test.ShouldHaveLength, 1)
	test.That(t, sink.mag[0].X, test.ShouldAlmostEqual, 10, 1e-9)
	test.That(t, sink.mag[0].Y, test.ShouldAlmostEqual, -5, 1e-9)
	test.That(t, sink.mag[0].Z, test.ShouldAlmostEqual, 1, 1e-9)

	test.That(t, r.handleMag([]byte("{")), test.ShouldNotBeNil)
}

func TestRouterAccuracyPayload(t *testing.T) {
	sink := &recordingSink{}
	r := newSampleRouter(sink, 0, nil, zaptest.NewLogger(t).Sugar())

	test.That(t, r.handleAccuracy([]byte(`{"accuracy":3}`)), test.ShouldBeNil)
	test.That(t, r.handleAccuracy([]byte(`{"accuracy":"low"}`)), test.ShouldBeNil)
	test.That(t, r.handleAccuracy([]byte(`{"accuracy":-1}`)), test.ShouldBeNil)
	test.That(t, sink.levels, test.ShouldResemble, []heading.CalibrationLevel{
		heading.CalibrationHigh,
		heading.CalibrationLow,
		heading.CalibrationUnknown,
	})

	err := r.handleAccuracy([]byte(`{}`))
	test.That(t, errors.Is(err, errNoAccuracy), test.ShouldBeTrue)
	test.That(t, r.handleAccuracy([]byte(`{"accuracy":"sideways"}`)), test.ShouldNotBeNil)
	test.That(t, sink.levels, test.ShouldHaveLength, 3)
}

func TestRouterFeedsPipeline(t *testing.T) {
	p := heading.New(zaptest.NewLogger(t).Sugar())
	r := newSampleRouter(p, 0, nil, zaptest.NewLogger(t).Sugar())

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	r.now = func() time.Time { return now }

	// level device facing east
	payload := []byte(`{"source":"left","ax":0,"ay":0,"az":16384,"mx":-220,"my":0,"mz":-400}`)

	test.That(t, r.handleIMU(payload), test.ShouldBeNil)
	now = t0.Add(40 * time.Millisecond)
	test.That(t, r.handleIMU(payload), test.ShouldBeNil)

	snap := p.Snapshot()
	test.That(t, snap.HasHeading, test.ShouldBeTrue)
	test.That(t, snap.HeadingDegrees, test.ShouldEqual, 90)
	test.That(t, snap.Direction, test.ShouldEqual, heading.East)
	test.That(t, snap.UpdatedAt.Equal(now), test.ShouldBeTrue)
}

func TestRouterMissing(t *testing.T) {
	sink := &recordingSink{}
	r := newSampleRouter(sink, 0, nil, zaptest.NewLogger(t).Sugar())

	kind, ok := r.missing()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, kind, test.ShouldEqual, heading.Accelerometer)

	r.accel(orientation.Vector3{Z: 9.81}, time.Now())
	kind, ok = r.missing()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, kind, test.ShouldEqual, heading.Magnetometer)

	r.mag(orientation.Vector3{Y: 22, Z: -40}, time.Now())
	_, ok = r.missing()
	test.That(t, ok, test.ShouldBeFalse)
}

func TestWatchMissing(t *testing.T) {
	t.Run("reports silent sensor", func(t *testing.T) {
		sink := &recordingSink{}
		r := newSampleRouter(sink, 0, nil, zaptest.NewLogger(t).Sugar())
		r.accel(orientation.Vector3{Z: 9.81}, time.Now())

		r.watchMissing(context.Background(), 10*time.Millisecond)
		test.That(t, sink.unavailableKinds(), test.ShouldResemble, []heading.SensorKind{heading.Magnetometer})
	})

	t.Run("quiet when both reported", func(t *testing.T) {
		sink := &recordingSink{}
		r := newSampleRouter(sink, 0, nil, zaptest.NewLogger(t).Sugar())
		r.accel(orientation.Vector3{Z: 9.81}, time.Now())
		r.mag(orientation.Vector3{Y: 22, Z: -40}, time.Now())

		r.watchMissing(context.Background(), 10*time.Millisecond)
		test.That(t, sink.unavailableKinds(), test.ShouldHaveLength, 0)
	})

	t.Run("cancelled", func(t *testing.T) {
		sink := &recordingSink{}
		r := newSampleRouter(sink, 0, nil, zaptest.NewLogger(t).Sugar())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r.watchMissing(ctx, time.Hour)
		r.watchMissing(context.Background(), 0)
		test.That(t, sink.unavailableKinds(), test.ShouldHaveLength, 0)
	})
}
