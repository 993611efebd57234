// go-nfchat
// Copyright (c) 2025 The go-nfchat Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-nfchat.
//
// go-nfchat is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-nfchat is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-nfchat; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	nfchat "github.com/jfaithedu/go-nfchat"
	"github.com/jfaithedu/go-nfchat/detection"
	// Import all detectors to register them
	_ "github.com/jfaithedu/go-nfchat/detection/i2c"
	_ "github.com/jfaithedu/go-nfchat/detection/uart"
	"github.com/jfaithedu/go-nfchat/transport/i2c"
	"github.com/jfaithedu/go-nfchat/transport/uart"
)

type config struct {
	devicePath   *string
	timeout      *time.Duration
	writeText    *string
	writeURL     *string
	debug        *bool
	pollInterval *time.Duration
}

func parseFlags() *config {
	cfg := &config{
		devicePath: flag.String("device", "",
			"Device path (e.g., /dev/i2c-1 or /dev/ttyUSB0). Leave empty for auto-detection."),
		timeout:   flag.Duration("timeout", 30*time.Second, "Timeout for tag detection (default: 30s)"),
		writeText: flag.String("write", "", "Text to write to the tag (if not specified, will only read)"),
		writeURL:  flag.String("write-url", "", "URL to write to the tag"),
		debug:     flag.Bool("debug", false, "Enable debug output"),
		pollInterval: flag.Duration("poll-interval", 100*time.Millisecond,
			"Polling interval for tag detection (default: 100ms)"),
	}
	flag.Parse()

	if *cfg.debug {
		nfchat.SetDebugEnabled(true)
	}

	return cfg
}

// newTransport creates a new transport from a device path.
func newTransport(path string) (nfchat.Transport, error) {
	if path == "" {
		return nil, errors.New("empty device path")
	}

	if strings.Contains(strings.ToLower(path), "i2c") {
		transport, err := i2c.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create I2C transport: %w", err)
		}
		return transport, nil
	}

	// Default to UART for serial ports
	transport, err := uart.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create UART transport: %w", err)
	}
	return transport, nil
}

// resolveDevicePath returns the configured path, or auto-detects one.
func resolveDevicePath(ctx context.Context, cfg *config) (string, error) {
	if *cfg.devicePath != "" {
		return *cfg.devicePath, nil
	}

	_, _ = fmt.Println("Auto-detecting NFC HAT...")
	devices, err := detection.DetectAll(ctx, detection.DefaultOptions())
	if err != nil {
		return "", fmt.Errorf("auto-detection failed: %w", err)
	}
	_, _ = fmt.Printf("Using %s (%s)\n", devices[0].Path, devices[0].Transport)
	return devices[0].Path, nil
}

func printTag(tag *nfchat.DetectedTag) {
	_, _ = fmt.Printf("Tag detected: %s (%s)\n", tag.UID, tag.Type)
	if tag.Message == nil {
		return
	}
	if uri := tag.Message.FirstURI(); uri != "" {
		_, _ = fmt.Printf("  URI:  %s\n", uri)
	}
	if text := tag.Message.FirstText(); text != nil {
		_, _ = fmt.Printf("  Text: %s (%s)\n", text.Text, text.Language)
	}
}

// runWriteMode waits for a tag, then writes the requested NDEF content.
func runWriteMode(ctx context.Context, ctrl *nfchat.Controller, cfg *config) error {
	_, _ = fmt.Println("Waiting for tag to write...")

	deadline := time.Now().Add(*cfg.timeout)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if time.Now().After(deadline) {
			_, _ = fmt.Printf("timeout: no tag detected within %s\n", *cfg.timeout)
			return nil
		}

		tag, err := ctrl.PollForTag(false)
		if err != nil {
			return fmt.Errorf("poll failed: %w", err)
		}
		if tag == nil {
			time.Sleep(*cfg.pollInterval)
			continue
		}

		printTag(tag)
		if err := ctrl.WriteNDEFData(*cfg.writeURL, *cfg.writeText); err != nil {
			return fmt.Errorf("failed to write tag: %w", err)
		}
		_, _ = fmt.Println("Write successful!")
		return nil
	}
}

// runMonitorMode prints each distinct tag placement until cancelled.
func runMonitorMode(ctx context.Context, ctrl *nfchat.Controller, cfg *config) {
	_, _ = fmt.Printf("Waiting for NFC tags (poll interval: %s, Ctrl-C to stop)...\n", *cfg.pollInterval)
	ctrl.ContinuousPoll(ctx, *cfg.pollInterval, true, printTag)
}

func run() error {
	cfg := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	path, err := resolveDevicePath(ctx, cfg)
	if err != nil {
		return err
	}

	transport, err := newTransport(path)
	if err != nil {
		return err
	}

	ctrl, err := nfchat.NewController(transport)
	if err != nil {
		return err
	}
	if err := ctrl.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize controller: %w", err)
	}
	defer func() { _ = ctrl.Shutdown() }()

	info := ctrl.HardwareInfo()
	_, _ = fmt.Printf("NFC HAT firmware %s on %s (%s)\n", info.FirmwareVersion, info.Bus, info.Path)

	if *cfg.writeText != "" || *cfg.writeURL != "" {
		return runWriteMode(ctx, ctrl, cfg)
	}

	runMonitorMode(ctx, ctrl, cfg)
	return nil
}

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
