// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/adrianmo/go-nmea"
	"github.com/jacobsa/go-serial/serial"
	"go.uber.org/zap"

	"github.com/relabs-tech/compass/internal/config"
	"github.com/relabs-tech/compass/internal/heading"
)

// HDMSentence formats a magnetic heading as an NMEA 0183 HDM sentence,
// e.g. $HCHDM,123.4,M*2D.
func HDMSentence(talker string, azimuth float64) string {
	deg := math.Round(azimuth*10) / 10
	if deg >= 360 || deg < 0 {
		deg = 0
	}
	body := fmt.Sprintf("%sHDM,%.1f,M", talker, deg)
	return nmea.SentenceStart + body + nmea.ChecksumSep + nmea.Checksum(body)
}

// nmeaWriter streams HDM sentences to a serial port or any other writer.
type nmeaWriter struct {
	w      io.Writer
	talker string
	queue  *latestQueue
	logger *zap.SugaredLogger
}

func newNMEAWriter(w io.Writer, talker string, logger *zap.SugaredLogger) *nmeaWriter {
	return &nmeaWriter{w: w, talker: talker, queue: newLatestQueue(), logger: logger}
}

// write emits one sentence. Snapshots without a heading are skipped.
func (n *nmeaWriter) write(s heading.Snapshot) error {
	if !s.HasHeading {
		return nil
	}
	_, err := io.WriteString(n.w, HDMSentence(n.talker, s.Azimuth)+"\r\n")
	return err
}

func (n *nmeaWriter) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-n.queue.C():
			if err := n.write(s); err != nil {
				n.logger.Warnw("NMEA write failed", "error", err)
			}
		}
	}
}

func openSerial(cfg config.NMEAConfig) (io.ReadWriteCloser, error) {
	port, err := serial.Open(serial.OpenOptions{
		PortName:        cfg.SerialPort,
		BaudRate:        uint(cfg.BaudRate),
		DataBits:        8,
		StopBits:        1,
		ParityMode:      serial.PARITY_NONE,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.SerialPort, err)
	}
	return port, nil
}
