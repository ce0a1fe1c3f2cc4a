// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/compass/internal/config"
	"github.com/relabs-tech/compass/internal/imu"
	"github.com/relabs-tech/compass/internal/orientation"
)

// RunMockProducer publishes raw IMU samples of a synthetic turning device,
// so a compass can be exercised without hardware.
func RunMockProducer(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) error {
	client, err := connectMQTT(cfg.MQTT, cfg.MQTT.ClientID+"-mock-producer", logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesce)

	if cfg.MQTT.TopicAccuracy != "" {
		token := client.Publish(cfg.MQTT.TopicAccuracy, cfg.MQTT.QoS, true, []byte(`{"accuracy":"high"}`))
		if token.Wait() && token.Error() != nil {
			return fmt.Errorf("publish accuracy: %w", token.Error())
		}
	}

	src := orientation.NewMockSource()
	ticker := time.NewTicker(cfg.SampleInterval())
	defer ticker.Stop()

	logger.Infow("publishing mock IMU samples", "topic", cfg.MQTT.TopicIMU, "interval", cfg.SampleInterval())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		reading, err := src.Next()
		if err != nil {
			logger.Warnw("error from mock source", "error", err)
			continue
		}
		payload, err := json.Marshal(imu.RawFromVectors("mock", reading.Gravity, reading.Geomagnetic, cfg.IMU.AccelRange))
		if err != nil {
			logger.Warnw("json marshal error", "error", err)
			continue
		}
		if token := client.Publish(cfg.MQTT.TopicIMU, cfg.MQTT.QoS, false, payload); token.Wait() && token.Error() != nil {
			logger.Warnw("MQTT publish error", "error", token.Error())
		}
	}
}
