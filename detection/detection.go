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

// Package detection discovers NFC HAT devices on the local machine.
// Transport-specific detectors register themselves via their package init;
// importing a detector package (e.g. detection/i2c) enables it.
package detection

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Detection errors.
var (
	// ErrNoDevicesFound indicates no candidate devices were discovered
	ErrNoDevicesFound = errors.New("no devices found")
	// ErrDetectionTimeout indicates detection was cut short by the context
	ErrDetectionTimeout = errors.New("detection timed out")
)

// Mode controls how intrusive detection is allowed to be
type Mode int

const (
	// Passive lists plausible device paths without touching hardware
	Passive Mode = iota
	// Active probes candidate devices to confirm a HAT responds
	Active
)

// DeviceInfo describes a discovered device
type DeviceInfo struct {
	// Metadata holds detector-specific details (bus path, address, ...)
	Metadata map[string]string
	// Transport names the transport kind, "i2c" or "uart"
	Transport string
	// Path is the device path to pass to the matching transport's New
	Path string
	// Name is a human-readable device description
	Name string
}

// Options configures a detection run
type Options struct {
	// Mode selects passive listing or active probing
	Mode Mode
	// IgnorePaths lists device paths to skip
	IgnorePaths []string
}

// DefaultOptions returns the default detection options
func DefaultOptions() *Options {
	return &Options{Mode: Active}
}

// Detector finds devices reachable over one transport kind
type Detector interface {
	// Transport names the transport this detector covers
	Transport() string
	// Detect returns the devices found
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	registryMu sync.RWMutex
	registry   []Detector
)

// Register adds a detector to the global registry. Detector packages call
// it from init.
func Register(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, d)
}

// DetectAll runs every registered detector and merges the results, sorted
// by path for stable output. Detectors that find nothing are not an error;
// ErrNoDevicesFound is returned only when all of them come up empty.
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	registryMu.RLock()
	detectors := append([]Detector(nil), registry...)
	registryMu.RUnlock()

	var devices []DeviceInfo
	for _, d := range detectors {
		select {
		case <-ctx.Done():
			return devices, ErrDetectionTimeout
		default:
		}

		found, err := d.Detect(ctx, opts)
		if err != nil && !errors.Is(err, ErrNoDevicesFound) {
			return devices, err
		}
		for _, dev := range found {
			if !IsPathIgnored(dev.Path, opts.IgnorePaths) {
				devices = append(devices, dev)
			}
		}
	}

	if len(devices) == 0 {
		return nil, ErrNoDevicesFound
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Path < devices[j].Path
	})
	return devices, nil
}

// IsPathIgnored reports whether devicePath matches any entry in
// ignorePaths. Matching is case-insensitive and symlink-tolerant: both
// sides are cleaned before comparison.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if len(ignorePaths) == 0 {
		return false
	}
	target := normalizedPath(devicePath)
	for _, p := range ignorePaths {
		if normalizedPath(p) == target {
			return true
		}
	}
	return false
}

func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
