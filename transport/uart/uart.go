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

// Package uart provides the serial transport for the NFC HAT
package uart

import (
	"fmt"
	"sync"
	"time"

	nfchat "github.com/jfaithedu/go-nfchat"
	"github.com/jfaithedu/go-nfchat/internal/frame"
	"go.bug.st/serial"
)

const (
	// HAT serial link parameters: 115200 8N1.
	baudRate = 115200

	// Per-Read deadline while assembling a frame.
	readChunkTimeout = 20 * time.Millisecond
)

// Transport implements the nfchat.Transport interface for serial
// communication
type Transport struct {
	port     serial.Port
	portName string

	mu      sync.Mutex
	timeout time.Duration
}

// New creates a new UART transport on the given serial port
func New(portName string) (*Transport, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(readChunkTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}

	return &Transport{
		port:     port,
		portName: portName,
		timeout:  1 * time.Second,
	}, nil
}

// SendCommand sends a command frame and waits for the HAT's response,
// returning the decoded payload (status byte first)
func (t *Transport) SendCommand(cmd byte, args []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil, nfchat.NewTransportNotReadyError("SendCommand", t.portName)
	}

	frm, err := frame.Encode(cmd, args)
	if err != nil {
		return nil, nfchat.NewDataTooLargeError("SendCommand", t.portName)
	}

	if err := t.port.ResetInputBuffer(); err != nil {
		return nil, nfchat.NewTransportError("SendCommand", t.portName,
			fmt.Errorf("failed to flush input: %w", err), nfchat.ErrorTypeTransient)
	}
	if _, err := t.port.Write(frm); err != nil {
		return nil, nfchat.NewTransportError("SendCommand", t.portName,
			fmt.Errorf("serial write failed: %w", err), nfchat.ErrorTypeTransient)
	}

	return t.receiveFrame()
}

// receiveFrame reads a response frame from the serial port. A zero length
// byte means the HAT is still processing. Caller must hold t.mu.
func (t *Transport) receiveFrame() ([]byte, error) {
	deadline := time.Now().Add(t.timeout)

	lenBuf := make([]byte, 1)
	for {
		n, err := t.port.Read(lenBuf)
		if err != nil {
			return nil, nfchat.NewTransportError("receiveFrame", t.portName,
				fmt.Errorf("serial read failed: %w", err), nfchat.ErrorTypeTransient)
		}
		if n == 1 && lenBuf[0] != frame.NotReady {
			break
		}
		if time.Now().After(deadline) {
			return nil, nfchat.NewTimeoutError("receiveFrame", t.portName)
		}
	}

	bodyLen := int(lenBuf[0])
	buf := make([]byte, bodyLen+1)
	if err := t.readFull(buf, deadline); err != nil {
		return nil, err
	}

	body, dcs := buf[:bodyLen], buf[bodyLen]
	if !frame.Verify(body, dcs) {
		return nil, nfchat.NewChecksumError("receiveFrame", t.portName)
	}
	return body, nil
}

// readFull fills buf from the port, honoring the frame deadline across
// short reads. Caller must hold t.mu.
func (t *Transport) readFull(buf []byte, deadline time.Time) error {
	filled := 0
	for filled < len(buf) {
		n, err := t.port.Read(buf[filled:])
		if err != nil {
			return nfchat.NewTransportError("readFull", t.portName,
				fmt.Errorf("serial read failed: %w", err), nfchat.ErrorTypeTransient)
		}
		filled += n
		if n == 0 && time.Now().After(deadline) {
			return nfchat.NewFrameCorruptedError("readFull", t.portName)
		}
	}
	return nil
}

// SetTimeout sets the response deadline for subsequent commands
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = timeout
	return nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}

// Type returns the transport type
func (*Transport) Type() nfchat.TransportType {
	return nfchat.TransportUART
}

// Path returns the serial port the transport was opened on
func (t *Transport) Path() string {
	return t.portName
}
