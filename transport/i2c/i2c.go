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

// Package i2c provides the I2C transport for the NFC HAT
package i2c

import (
	"fmt"
	"sync"
	"time"

	nfchat "github.com/jfaithedu/go-nfchat"
	"github.com/jfaithedu/go-nfchat/internal/frame"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// Max clock frequency (400 kHz).
	maxClockFreq = 400 * physic.KiloHertz

	// Delay between not-ready polls of the response length byte.
	readPollInterval = 2 * time.Millisecond
)

// Transport implements the nfchat.Transport interface for I2C communication
type Transport struct {
	dev     *i2c.Dev
	bus     i2c.BusCloser
	busName string

	mu      sync.Mutex
	timeout time.Duration
}

// New creates a new I2C transport. An empty busName opens the first
// available bus.
func New(busName string) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	// The HAT handles 400 kHz; fall back to the bus default if the
	// controller refuses.
	_ = bus.SetSpeed(maxClockFreq)

	dev := &i2c.Dev{Addr: frame.DeviceAddress, Bus: bus}

	return &Transport{
		dev:     dev,
		bus:     bus,
		busName: busName,
		timeout: 1 * time.Second,
	}, nil
}

// SendCommand sends a command frame and waits for the HAT's response,
// returning the decoded payload (status byte first)
func (t *Transport) SendCommand(cmd byte, args []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dev == nil {
		return nil, nfchat.NewTransportNotReadyError("SendCommand", t.busName)
	}

	frm, err := frame.Encode(cmd, args)
	if err != nil {
		return nil, nfchat.NewDataTooLargeError("SendCommand", t.busName)
	}

	if err := t.dev.Tx(frm, nil); err != nil {
		return nil, nfchat.NewTransportError("SendCommand", t.busName,
			fmt.Errorf("I2C write failed: %w", err), nfchat.ErrorTypeTransient)
	}

	return t.receiveFrame()
}

// receiveFrame polls the HAT for a response frame. A zero length byte means
// the command is still being processed. Caller must hold t.mu.
func (t *Transport) receiveFrame() ([]byte, error) {
	deadline := time.Now().Add(t.timeout)

	lenBuf := make([]byte, 1)
	for {
		if err := t.dev.Tx(nil, lenBuf); err != nil {
			return nil, nfchat.NewTransportError("receiveFrame", t.busName,
				fmt.Errorf("I2C read failed: %w", err), nfchat.ErrorTypeTransient)
		}
		if lenBuf[0] != frame.NotReady {
			break
		}
		if time.Now().After(deadline) {
			return nil, nfchat.NewTimeoutError("receiveFrame", t.busName)
		}
		time.Sleep(readPollInterval)
	}

	bodyLen := int(lenBuf[0])
	buf := make([]byte, bodyLen+1)
	if err := t.dev.Tx(nil, buf); err != nil {
		return nil, nfchat.NewTransportError("receiveFrame", t.busName,
			fmt.Errorf("I2C read failed: %w", err), nfchat.ErrorTypeTransient)
	}

	body, dcs := buf[:bodyLen], buf[bodyLen]
	if !frame.Verify(body, dcs) {
		return nil, nfchat.NewChecksumError("receiveFrame", t.busName)
	}
	return body, nil
}

// SetTimeout sets the response deadline for subsequent commands
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = timeout
	return nil
}

// Close closes the I2C bus
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bus == nil {
		return nil
	}
	err := t.bus.Close()
	t.bus = nil
	t.dev = nil
	if err != nil {
		return fmt.Errorf("failed to close I2C bus: %w", err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dev != nil
}

// Type returns the transport type
func (*Transport) Type() nfchat.TransportType {
	return nfchat.TransportI2C
}

// Path returns the bus name the transport was opened on
func (t *Transport) Path() string {
	return t.busName
}
