// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"
	"go.viam.com/test"

	"github.com/relabs-tech/compass/internal/config"
	"github.com/relabs-tech/compass/internal/heading"
)

func TestHeadingPublisherPublishesRetainedJSON(t *testing.T) {
	client := &fakePublisher{}
	cfg := config.Default().MQTT
	pub := newHeadingPublisher(client, cfg, zaptest.NewLogger(t).Sugar())

	snap := heading.Snapshot{
		HeadingDegrees:   123,
		Direction:        heading.SouthEast,
		Calibration:      heading.CalibrationHigh,
		CalibrationLabel: "fully calibrated",
		Severity:         heading.SeverityOK,
		Available:        true,
		HasHeading:       true,
		Azimuth:          123.4,
	}
	test.That(t, pub.publish(snap), test.ShouldBeNil)
	test.That(t, client.topics, test.ShouldResemble, []string{"compass/heading"})
	test.That(t, client.retained, test.ShouldResemble, []bool{true})

	var got heading.Snapshot
	test.That(t, json.Unmarshal(client.payloads[0], &got), test.ShouldBeNil)
	test.That(t, got.HeadingDegrees, test.ShouldEqual, 123)
	test.That(t, got.Direction, test.ShouldEqual, heading.SouthEast)
	test.That(t, got.Calibration, test.ShouldEqual, heading.CalibrationHigh)
	test.That(t, got.CalibrationLabel, test.ShouldEqual, "fully calibrated")
	test.That(t, got.Azimuth, test.ShouldAlmostEqual, 123.4, 1e-9)

	client.err = errors.New("broker gone")
	test.That(t, pub.publish(snap), test.ShouldNotBeNil)
}

func TestHeadingPublisherRunsFromPipeline(t *testing.T) {
	client := &fakePublisher{}
	pub := newHeadingPublisher(client, config.Default().MQTT, zaptest.NewLogger(t).Sugar())

	p := heading.New(zaptest.NewLogger(t).Sugar())
	defer p.Subscribe(pub.queue.push)()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		pub.run(ctx)
	}()

	p.OnAccuracyChanged(heading.CalibrationLow)
	test.That(t, eventually(func() bool { return client.count() == 1 }), test.ShouldBeTrue)

	cancel()
	<-done

	var got heading.Snapshot
	test.That(t, json.Unmarshal(client.payloads[0], &got), test.ShouldBeNil)
	test.That(t, got.Calibration, test.ShouldEqual, heading.CalibrationLow)
	test.That(t, got.CalibrationLabel, test.ShouldEqual, "needs calibration")
	test.That(t, got.HasHeading, test.ShouldBeFalse)
}
