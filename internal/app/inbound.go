// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/compass/internal/config"
	"github.com/relabs-tech/compass/internal/heading"
	"github.com/relabs-tech/compass/internal/imu"
	"github.com/relabs-tech/compass/internal/orientation"
)

var errNoAccuracy = errors.New("accuracy field missing")

// accuracyMessage is the payload of the accuracy topic. The level may be a
// name ("high") or a platform accuracy integer (3).
type accuracyMessage struct {
	Accuracy *heading.CalibrationLevel `json:"accuracy"`
}

// sampleRouter converts incoming sensor data into pipeline events and keeps
// track of which sensor kinds have reported at least once.
type sampleRouter struct {
	sink       heading.SampleSink
	accelRange byte
	correction *imu.MagCorrection
	logger     *zap.SugaredLogger
	now        func() time.Time

	seenAccel atomic.Bool
	seenMag   atomic.Bool
}

func newSampleRouter(sink heading.SampleSink, accelRange byte, correction *imu.MagCorrection, logger *zap.SugaredLogger) *sampleRouter {
	return &sampleRouter{
		sink:       sink,
		accelRange: accelRange,
		correction: correction,
		logger:     logger,
		now:        time.Now,
	}
}

func (r *sampleRouter) accel(v orientation.Vector3, t time.Time) {
	r.seenAccel.Store(true)
	r.sink.OnAccelerometerSample(v, t)
}

func (r *sampleRouter) mag(v orientation.Vector3, t time.Time) {
	r.seenMag.Store(true)
	r.sink.OnMagnetometerSample(v, t)
}

// raw feeds a raw IMU sample. The magnetometer part is used only when the
// producer filled it in.
func (r *sampleRouter) raw(s imu.IMURaw, t time.Time) {
	r.accel(s.Accel(r.accelRange), t)
	if s.HasMag() {
		r.mag(s.Mag(r.correction), t)
	}
}

func (r *sampleRouter) handleIMU(payload []byte) error {
	var s imu.IMURaw
	if err := json.Unmarshal(payload, &s); err != nil {
		return fmt.Errorf("imu payload: %w", err)
	}
	r.raw(s, r.now())
	return nil
}

func (r *sampleRouter) handleMag(payload []byte) error {
	var s imu.MagSample
	if err := json.Unmarshal(payload, &s); err != nil {
		return fmt.Errorf("mag payload: %w", err)
	}
	r.mag(s.Field(r.correction), r.now())
	return nil
}

func (r *sampleRouter) handleAccuracy(payload []byte) error {
	var msg accuracyMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("accuracy payload: %w", err)
	}
	if msg.Accuracy == nil {
		return errNoAccuracy
	}
	r.sink.OnAccuracyChanged(*msg.Accuracy)
	return nil
}

// subscribe registers the MQTT handlers. withIMU selects whether raw IMU
// samples come from the broker; when false gravity is read locally and
// only magnetometer and accuracy topics are used.
func (r *sampleRouter) subscribe(client mqtt.Client, cfg config.MQTTConfig, withIMU bool) error {
	routes := []struct {
		topic  string
		handle func([]byte) error
	}{
		{cfg.TopicMag, r.handleMag},
		{cfg.TopicAccuracy, r.handleAccuracy},
	}
	if withIMU {
		routes = append(routes, struct {
			topic  string
			handle func([]byte) error
		}{cfg.TopicIMU, r.handleIMU})
	}

	for _, rt := range routes {
		if rt.topic == "" {
			continue
		}
		token := client.Subscribe(rt.topic, cfg.QoS, func(_ mqtt.Client, msg mqtt.Message) {
			if err := rt.handle(msg.Payload()); err != nil {
				r.logger.Warnw("dropping message", "topic", msg.Topic(), "error", err)
			}
		})
		token.Wait()
		if err := token.Error(); err != nil {
			return fmt.Errorf("subscribe %s: %w", rt.topic, err)
		}
		r.logger.Infow("subscribed", "topic", rt.topic)
	}
	return nil
}

// missing returns the first sensor kind that never delivered a sample.
func (r *sampleRouter) missing() (heading.SensorKind, bool) {
	if !r.seenAccel.Load() {
		return heading.Accelerometer, true
	}
	if !r.seenMag.Load() {
		return heading.Magnetometer, true
	}
	return 0, false
}

// watchMissing waits for timeout and marks the pipeline unavailable if a
// sensor kind stayed silent. A non-positive timeout disables the check.
func (r *sampleRouter) watchMissing(ctx context.Context, timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	if kind, ok := r.missing(); ok {
		r.logger.Warnw("no samples received", "sensor", kind, "waited", timeout)
		r.sink.MarkUnavailable(kind)
	}
}
