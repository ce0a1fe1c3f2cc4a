// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/compass/internal/config"
	"github.com/relabs-tech/compass/internal/heading"
)

// FormatSnapshot renders a snapshot as one console line, e.g.
// "[HDG] 123° SE fully calibrated".
func FormatSnapshot(s heading.Snapshot) string {
	if !s.HasHeading {
		return fmt.Sprintf("[HDG] --- %s", s.CalibrationLabel)
	}
	return fmt.Sprintf("[HDG] %d° %s %s", s.HeadingDegrees, s.Direction, s.CalibrationLabel)
}

// RunConsole prints every heading published on the broker until ctx is
// done.
func RunConsole(ctx context.Context, cfg *config.Config, out io.Writer, logger *zap.SugaredLogger) error {
	client, err := connectMQTT(cfg.MQTT, cfg.MQTT.ClientID+"-console", logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesce)

	token := client.Subscribe(cfg.MQTT.TopicHeading, cfg.MQTT.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		var s heading.Snapshot
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			logger.Warnw("heading unmarshal error", "error", err)
			return
		}
		fmt.Fprintln(out, FormatSnapshot(s))
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.MQTT.TopicHeading, err)
	}
	logger.Infow("subscribed", "topic", cfg.MQTT.TopicHeading)

	<-ctx.Done()
	return nil
}
