// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package app wires sensor inputs, the heading pipeline and the heading
// outputs into runnable programs.
package app

import (
	"context"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/compass/internal/config"
	"github.com/relabs-tech/compass/internal/heading"
	"github.com/relabs-tech/compass/internal/imu"
	"github.com/relabs-tech/compass/internal/orientation"
	"github.com/relabs-tech/compass/internal/sensors"
)

// RunCompass runs one observation session until ctx is done or the web
// server fails.
func RunCompass(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) error {
	logger.Infow("starting compass",
		"source", cfg.IMU.Source,
		"throttle", cfg.ThrottleInterval(),
	)

	pipeline := heading.New(logger.Named("heading"), heading.WithMinInterval(cfg.ThrottleInterval()))
	defer pipeline.Close()

	return runSession(ctx, cfg, pipeline, logger)
}

// runSession connects inputs and outputs to pipeline. On return every
// goroutine it started has stopped, and only then are the broker connection,
// the serial port and the subscriptions released.
func runSession(ctx context.Context, cfg *config.Config, pipeline *heading.Pipeline, logger *zap.SugaredLogger) error {
	var correction *imu.MagCorrection
	if path := cfg.IMU.MagCalibrationFile; path != "" {
		c, err := imu.LoadMagCorrection(path)
		if err != nil {
			return err
		}
		correction = c
		logger.Infow("loaded magnetometer correction", "file", path, "offset", c.Offset, "scale", c.Scale)
	}

	ctx, cancel := context.WithCancel(ctx)
	var (
		wg      sync.WaitGroup
		closers []func()
	)
	defer func() {
		cancel()
		wg.Wait()
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	var client mqtt.Client
	if cfg.MQTT.Broker != "" {
		c, err := connectMQTT(cfg.MQTT, cfg.MQTT.ClientID, logger.Named("mqtt"))
		if err != nil {
			return err
		}
		client = c
		closers = append(closers, func() { client.Disconnect(disconnectQuiesce) })
	}

	// --- outputs ---
	if client != nil && cfg.MQTT.TopicHeading != "" {
		pub := newHeadingPublisher(client, cfg.MQTT, logger.Named("publisher"))
		closers = append(closers, pipeline.Subscribe(pub.queue.push))
		wg.Add(1)
		go func() {
			defer wg.Done()
			pub.run(ctx)
		}()
	}

	if cfg.NMEA.SerialPort != "" {
		port, err := openSerial(cfg.NMEA)
		if err != nil {
			return err
		}
		closers = append(closers, func() { _ = port.Close() })
		w := newNMEAWriter(port, cfg.NMEA.Talker, logger.Named("nmea"))
		closers = append(closers, pipeline.Subscribe(w.queue.push))
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
		logger.Infow("writing NMEA HDM sentences", "port", cfg.NMEA.SerialPort, "baud", cfg.NMEA.BaudRate)
	}

	webErr := make(chan error, 1)
	if cfg.Web.Port != 0 {
		hub := newWSHub()
		closers = append(closers, pipeline.Subscribe(hub.broadcast))
		handler := newWebHandler(pipeline, hub, logger.Named("web"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			webErr <- runWeb(ctx, cfg.Web.Port, handler, hub, logger.Named("web"))
		}()
	}

	// --- inputs ---
	router := newSampleRouter(pipeline, cfg.IMU.AccelRange, correction, logger.Named("inbound"))

	switch cfg.IMU.Source {
	case config.SourceMQTT:
		if err := router.subscribe(client, cfg.MQTT, true); err != nil {
			return err
		}

	case config.SourceMPU9250:
		src, err := sensors.NewIMUSource(cfg.IMU, logger.Named("imu"))
		if err != nil {
			logger.Errorw("local IMU unavailable", "error", err)
			pipeline.MarkUnavailable(heading.Accelerometer)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				pollIMU(ctx, src, router, cfg.SampleInterval(), logger.Named("imu"))
			}()
		}
		if client != nil {
			if err := router.subscribe(client, cfg.MQTT, false); err != nil {
				return err
			}
		}

	case config.SourceMock:
		pipeline.OnAccuracyChanged(heading.CalibrationHigh)
		wg.Add(1)
		go func() {
			defer wg.Done()
			pollMock(ctx, orientation.NewMockSource(), router, cfg.SampleInterval(), logger.Named("mock"))
		}()

	default:
		return fmt.Errorf("unknown imu source %q", cfg.IMU.Source)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		router.watchMissing(ctx, cfg.SensorTimeout())
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-webErr:
	}
	logger.Info("shutting down compass")
	return err
}
