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

// Package uart detects NFC HATs reachable over serial ports
package uart

import (
	"context"
	"strings"

	"github.com/jfaithedu/go-nfchat/detection"
	"go.bug.st/serial"
)

type detector struct{}

// New creates a UART detector
func New() detection.Detector {
	return &detector{}
}

func init() {
	detection.Register(New())
}

// Transport returns the transport name for this detector
func (*detector) Transport() string {
	return "uart"
}

// Detect lists serial ports that plausibly carry a HAT. Serial enumeration
// is inherently passive; confirming the HAT requires opening the port,
// which is left to the caller.
func (*detector) Detect(ctx context.Context, _ *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := serial.GetPortsList()
	if err != nil || len(ports) == 0 {
		return nil, detection.ErrNoDevicesFound
	}

	var devices []detection.DeviceInfo
	for _, port := range ports {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}
		if !isCandidatePort(port) {
			continue
		}
		devices = append(devices, detection.DeviceInfo{
			Transport: "uart",
			Path:      port,
			Name:      "Serial port " + port,
		})
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// isCandidatePort filters out ports that never carry a HAT, like Bluetooth
// pseudo-terminals.
func isCandidatePort(port string) bool {
	lower := strings.ToLower(port)
	if strings.Contains(lower, "bluetooth") {
		return false
	}
	for _, prefix := range []string{"/dev/ttyusb", "/dev/ttyacm", "/dev/ttyama", "/dev/ttys", "/dev/cu.", "com"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
