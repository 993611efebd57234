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

package detection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		devicePath  string
		ignorePaths []string
		want        bool
	}{
		{
			name:        "exact match",
			devicePath:  "/dev/ttyUSB0",
			ignorePaths: []string{"/dev/ttyUSB0"},
			want:        true,
		},
		{
			name:        "case insensitive",
			devicePath:  "/dev/ttyUSB0",
			ignorePaths: []string{"/DEV/TTYUSB0"},
			want:        true,
		},
		{
			name:        "unclean path",
			devicePath:  "/dev/../dev/i2c-1",
			ignorePaths: []string{"/dev/i2c-1"},
			want:        true,
		},
		{
			name:        "no match",
			devicePath:  "/dev/ttyUSB1",
			ignorePaths: []string{"/dev/ttyUSB0"},
			want:        false,
		},
		{
			name:       "empty ignore list",
			devicePath: "/dev/ttyUSB0",
			want:       false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsPathIgnored(tt.devicePath, tt.ignorePaths))
		})
	}
}

type fakeDetector struct {
	devices []DeviceInfo
}

func (*fakeDetector) Transport() string { return "fake" }

func (f *fakeDetector) Detect(_ context.Context, _ *Options) ([]DeviceInfo, error) {
	if len(f.devices) == 0 {
		return nil, ErrNoDevicesFound
	}
	return f.devices, nil
}

func TestDetectAll(t *testing.T) {
	t.Parallel()

	Register(&fakeDetector{devices: []DeviceInfo{
		{Transport: "fake", Path: "/dev/fake-b"},
		{Transport: "fake", Path: "/dev/fake-a"},
	}})

	devices, err := DetectAll(context.Background(), &Options{
		IgnorePaths: []string{"/dev/fake-b"},
	})
	require.NoError(t, err)

	var paths []string
	for _, d := range devices {
		if d.Transport == "fake" {
			paths = append(paths, d.Path)
		}
	}
	assert.Equal(t, []string{"/dev/fake-a"}, paths, "ignored paths are filtered, results sorted")
}
