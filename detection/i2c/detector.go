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

// Package i2c detects NFC HATs on Linux I2C buses
package i2c

import (
	"context"

	"github.com/jfaithedu/go-nfchat/detection"
)

type detector struct{}

// New creates an I2C detector
func New() detection.Detector {
	return &detector{}
}

func init() {
	detection.Register(New())
}

// Transport returns the transport name for this detector
func (*detector) Transport() string {
	return "i2c"
}

// Detect searches I2C buses for a HAT at its fixed address
func (*detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	return detectLinux(ctx, opts)
}
