// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/compass/internal/config"
	"github.com/relabs-tech/compass/internal/heading"
)

const (
	publishTimeout    = 2 * time.Second
	disconnectQuiesce = 250 // ms
)

func connectMQTT(cfg config.MQTTConfig, clientID string, logger *zap.SugaredLogger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warnw("MQTT connection lost", "error", err)
		})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect %s: %w", cfg.Broker, token.Error())
	}
	logger.Infow("connected to MQTT broker", "broker", cfg.Broker, "client_id", clientID)
	return client, nil
}

// publisher is the part of mqtt.Client the heading publisher needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// headingPublisher publishes every snapshot as a retained JSON message so
// late subscribers immediately get the current heading.
type headingPublisher struct {
	client publisher
	topic  string
	qos    byte
	queue  *latestQueue
	logger *zap.SugaredLogger
}

func newHeadingPublisher(client publisher, cfg config.MQTTConfig, logger *zap.SugaredLogger) *headingPublisher {
	return &headingPublisher{
		client: client,
		topic:  cfg.TopicHeading,
		qos:    cfg.QoS,
		queue:  newLatestQueue(),
		logger: logger,
	}
}

func (p *headingPublisher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-p.queue.C():
			if err := p.publish(s); err != nil {
				p.logger.Warnw("heading publish failed", "topic", p.topic, "error", err)
			}
		}
	}
}

func (p *headingPublisher) publish(s heading.Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("json marshal snapshot: %w", err)
	}
	token := p.client.Publish(p.topic, p.qos, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out after %s", p.topic, publishTimeout)
	}
	return token.Error()
}
