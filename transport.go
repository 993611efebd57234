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

package nfchat

import (
	"context"
	"time"
)

// TransportType identifies the kind of transport connecting to the HAT
type TransportType string

// Transport type constants
const (
	TransportI2C  TransportType = "i2c"
	TransportUART TransportType = "uart"
	TransportMock TransportType = "mock"
)

// Transport abstracts the wire connection to the NFC HAT. Implementations
// frame the command, transmit it, and return the verified response payload
// (status byte first, checksum already stripped).
type Transport interface {
	// SendCommand sends a command with arguments and returns the response
	// payload. The payload always begins with the status byte.
	SendCommand(cmd byte, args []byte) ([]byte, error)

	// Close closes the transport connection
	Close() error

	// SetTimeout sets the response deadline for subsequent commands
	SetTimeout(timeout time.Duration) error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType

	// Path returns the device path or bus name the transport is bound to
	Path() string
}

// TransportWithRetry wraps a Transport and retries transient failures
// according to a RetryConfig.
type TransportWithRetry struct {
	transport Transport
	config    *RetryConfig
}

// NewTransportWithRetry creates a transport wrapper with retry logic
func NewTransportWithRetry(transport Transport, config *RetryConfig) *TransportWithRetry {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &TransportWithRetry{
		transport: transport,
		config:    config,
	}
}

// SendCommand sends a command with retry on transient transport errors
func (t *TransportWithRetry) SendCommand(cmd byte, args []byte) ([]byte, error) {
	var result []byte
	err := RetryWithConfig(context.Background(), t.config, func() error {
		var sendErr error
		result, sendErr = t.transport.SendCommand(cmd, args)
		return sendErr
	})
	return result, err
}

// Close closes the underlying transport
func (t *TransportWithRetry) Close() error {
	return t.transport.Close()
}

// SetTimeout sets the timeout on the underlying transport
func (t *TransportWithRetry) SetTimeout(timeout time.Duration) error {
	return t.transport.SetTimeout(timeout)
}

// IsConnected returns the underlying transport's connection state
func (t *TransportWithRetry) IsConnected() bool {
	return t.transport.IsConnected()
}

// Type returns the underlying transport's type
func (t *TransportWithRetry) Type() TransportType {
	return t.transport.Type()
}

// Path returns the underlying transport's device path
func (t *TransportWithRetry) Path() string {
	return t.transport.Path()
}
