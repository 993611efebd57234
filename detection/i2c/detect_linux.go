//go:build linux

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

package i2c

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/jfaithedu/go-nfchat/detection"
	"github.com/jfaithedu/go-nfchat/internal/frame"
	"golang.org/x/sys/unix"
)

// i2cSlave is the ioctl request that binds a file descriptor to a slave
// address
const i2cSlave = 0x0703

// detectLinux scans /dev/i2c-* buses for a HAT at its fixed address
func detectLinux(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	buses, err := filepath.Glob("/dev/i2c-*")
	if err != nil || len(buses) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	sort.Strings(buses)

	var devices []detection.DeviceInfo
	for _, busPath := range buses {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		if opts.Mode == detection.Active && !probeBus(busPath) {
			continue
		}

		devices = append(devices, detection.DeviceInfo{
			Transport: "i2c",
			Path:      busPath,
			Name:      fmt.Sprintf("NFC HAT on %s", busPath),
			Metadata: map[string]string{
				"address": fmt.Sprintf("0x%02X", frame.DeviceAddress),
			},
		})
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// probeBus reports whether something acknowledges the HAT address on the
// bus. A zero-length write is enough to observe the ACK without disturbing
// the device.
func probeBus(busPath string) bool {
	fd, err := unix.Open(busPath, unix.O_RDWR, 0)
	if err != nil {
		return false
	}
	defer func() { _ = unix.Close(fd) }()

	if err := unix.IoctlSetInt(fd, i2cSlave, frame.DeviceAddress); err != nil {
		return false
	}

	_, err = unix.Write(fd, []byte{})
	return err == nil
}
