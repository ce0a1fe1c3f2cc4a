// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/compass/internal/app"
	"github.com/relabs-tech/compass/internal/config"
	"github.com/relabs-tech/compass/internal/logging"
)

func main() {
	configPath := flag.String("config", "./compass_config.yaml", "path to configuration file")
	flag.Parse()

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	logger := logging.NewOrDie(cfg.LogLevel).Named("compass")
	defer func() { _ = logger.Sync() }()
	logger.Infof("starting compass (sensors → heading → MQTT/web/NMEA)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunCompass(ctx, cfg, logger); err != nil {
		logger.Fatalw("fatal", "error", err)
	}
}
