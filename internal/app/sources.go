// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/compass/internal/imu"
	"github.com/relabs-tech/compass/internal/orientation"
)

// pollIMU reads a local IMU on every tick until ctx is done.
func pollIMU(ctx context.Context, src imu.IMURawSource, r *sampleRouter, interval time.Duration, logger *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			raw, err := src.NextRaw()
			if err != nil {
				logger.Warnw("error reading IMU", "error", err)
				continue
			}
			r.raw(raw, t)
		}
	}
}

// pollMock feeds readings of a synthetic device until ctx is done.
func pollMock(ctx context.Context, src orientation.Source, r *sampleRouter, interval time.Duration, logger *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reading, err := src.Next()
			if err != nil {
				logger.Warnw("error from mock source", "error", err)
				continue
			}
			r.accel(reading.Gravity, reading.Time)
			r.mag(reading.Geomagnetic, reading.Time)
		}
	}
}
