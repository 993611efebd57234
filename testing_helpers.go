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
	"sync"
	"time"

	"github.com/jfaithedu/go-nfchat/internal/frame"
)

// MockCall records one command sent through a MockTransport
type MockCall struct {
	Args []byte
	Cmd  byte
}

// MockTransport is an in-memory Transport for tests. Responses come from
// ResponseFunc when set; otherwise every command succeeds with an empty
// payload. All commands sent are recorded and retrievable via Calls.
type MockTransport struct {
	// ResponseFunc produces the response payload for a command. The
	// payload must start with the status byte, as a real transport's
	// decoded frame would.
	ResponseFunc func(cmd byte, args []byte) ([]byte, error)

	mu        sync.Mutex
	calls     []MockCall
	timeout   time.Duration
	connected bool
}

// NewMockTransport creates a connected mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{connected: true}
}

// SendCommand records the call and returns the scripted response
func (m *MockTransport) SendCommand(cmd byte, args []byte) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{
		Cmd:  cmd,
		Args: append([]byte(nil), args...),
	})
	fn := m.ResponseFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(cmd, args)
	}
	return []byte{frame.RespSuccess}, nil
}

// Calls returns a copy of all recorded calls
func (m *MockTransport) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns how many times cmd was sent
func (m *MockTransport) CallCount(cmd byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Cmd == cmd {
			n++
		}
	}
	return n
}

// Close marks the transport disconnected
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

// SetTimeout records the requested timeout
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// IsConnected reports the mock's connection state
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Type returns TransportMock
func (m *MockTransport) Type() TransportType {
	return TransportMock
}

// Path returns a fixed placeholder path
func (m *MockTransport) Path() string {
	return "mock"
}
