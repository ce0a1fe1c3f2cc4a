// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Sample sources understood by IMUConfig.Source.
const (
	SourceMQTT    = "mqtt"
	SourceMPU9250 = "mpu9250"
	SourceMock    = "mock"
)

// MQTTConfig describes the broker and the topics the compass uses.
type MQTTConfig struct {
	Broker        string `yaml:"broker"`
	ClientID      string `yaml:"client_id"`
	TopicIMU      string `yaml:"topic_imu"`      // raw IMU samples (accel + mag)
	TopicMag      string `yaml:"topic_mag"`      // standalone magnetometer samples
	TopicAccuracy string `yaml:"topic_accuracy"` // calibration accuracy changes
	TopicHeading  string `yaml:"topic_heading"`  // published snapshots
	QoS           byte   `yaml:"qos"`
}

// PipelineConfig tunes the heading pipeline.
type PipelineConfig struct {
	ThrottleIntervalMS int `yaml:"throttle_interval_ms"`
}

// IMUConfig selects where samples come from.
type IMUConfig struct {
	Source             string `yaml:"source"` // mqtt, mpu9250 or mock
	SPIDevice          string `yaml:"spi_device"`
	CSPin              string `yaml:"cs_pin"`
	AccelRange         byte   `yaml:"accel_range"` // 0=±2g, 1=±4g, 2=±8g, 3=±16g
	SampleIntervalMS   int    `yaml:"sample_interval_ms"`
	MagCalibrationFile string `yaml:"mag_calibration_file"`
	// A sensor kind never seen within this window is reported missing.
	// 0 disables the check.
	SensorTimeoutMS int `yaml:"sensor_timeout_ms"`
}

// WebConfig configures the HTTP/websocket server. Port 0 disables it.
type WebConfig struct {
	Port int `yaml:"port"`
}

// NMEAConfig configures the NMEA 0183 heading output. An empty serial port
// disables it.
type NMEAConfig struct {
	SerialPort string `yaml:"serial_port"`
	BaudRate   int    `yaml:"baud_rate"`
	Talker     string `yaml:"talker"`
}

// Config holds all application configuration values.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	IMU      IMUConfig      `yaml:"imu"`
	Web      WebConfig      `yaml:"web"`
	NMEA     NMEAConfig     `yaml:"nmea"`
}

// Default returns a configuration usable against a local broker.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		MQTT: MQTTConfig{
			Broker:        "tcp://localhost:1883",
			ClientID:      "compass",
			TopicIMU:      "inertial/imu/left",
			TopicMag:      "inertial/mag/hmc",
			TopicAccuracy: "compass/accuracy",
			TopicHeading:  "compass/heading",
		},
		Pipeline: PipelineConfig{ThrottleIntervalMS: 33},
		IMU: IMUConfig{
			Source:           SourceMQTT,
			SPIDevice:        "/dev/spidev6.0",
			CSPin:            "18",
			SampleIntervalMS: 10,
			SensorTimeoutMS:  5000,
		},
		Web:  WebConfig{Port: 8080},
		NMEA: NMEAConfig{BaudRate: 4800, Talker: "HC"},
	}
}

// Package-level state for the singleton used by cmd/ programs. Library
// packages take a *Config explicitly.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads a YAML configuration file on top of Default().
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration on top of Default() and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks required fields and ranges.
func (c *Config) validate() error {
	switch c.IMU.Source {
	case SourceMQTT, SourceMPU9250, SourceMock:
	default:
		return fmt.Errorf("imu.source must be one of mqtt, mpu9250, mock, got %q", c.IMU.Source)
	}
	if c.IMU.Source != SourceMock && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required")
	}
	if c.IMU.Source == SourceMQTT && c.MQTT.TopicIMU == "" && c.MQTT.TopicMag == "" {
		return fmt.Errorf("mqtt.topic_imu or mqtt.topic_mag is required")
	}
	if c.IMU.Source == SourceMPU9250 && c.IMU.SPIDevice == "" {
		return fmt.Errorf("imu.spi_device is required")
	}
	if c.IMU.AccelRange > 3 {
		return fmt.Errorf("imu.accel_range must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", c.IMU.AccelRange)
	}
	if c.IMU.SampleIntervalMS <= 0 {
		return fmt.Errorf("imu.sample_interval_ms must be positive, got %d", c.IMU.SampleIntervalMS)
	}
	if c.IMU.SensorTimeoutMS < 0 {
		return fmt.Errorf("imu.sensor_timeout_ms must not be negative, got %d", c.IMU.SensorTimeoutMS)
	}
	if c.Pipeline.ThrottleIntervalMS < 0 {
		return fmt.Errorf("pipeline.throttle_interval_ms must not be negative, got %d", c.Pipeline.ThrottleIntervalMS)
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0-2, got %d", c.MQTT.QoS)
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port out of range: %d", c.Web.Port)
	}
	if c.NMEA.SerialPort != "" {
		if c.NMEA.BaudRate <= 0 {
			return fmt.Errorf("nmea.baud_rate is required with nmea.serial_port")
		}
		if len(c.NMEA.Talker) != 2 {
			return fmt.Errorf("nmea.talker must be two characters, got %q", c.NMEA.Talker)
		}
	}
	return nil
}

// ThrottleInterval returns the pipeline throttle gap.
func (c *Config) ThrottleInterval() time.Duration {
	return time.Duration(c.Pipeline.ThrottleIntervalMS) * time.Millisecond
}

// SampleInterval returns the polling period of local sources.
func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.IMU.SampleIntervalMS) * time.Millisecond
}

// SensorTimeout returns how long to wait for the first sample of each kind.
func (c *Config) SensorTimeout() time.Duration {
	return time.Duration(c.IMU.SensorTimeoutMS) * time.Millisecond
}

// InitGlobal initializes the global configuration from file. Only the first
// call has an effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
