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
	"errors"
	"fmt"
)

// Tag operation errors. These form the caller-facing taxonomy: ErrNoTag is
// an expected, recoverable condition (poll again later), ErrHardware is
// fatal to the session and requires re-initialization, and the remaining
// errors are surfaced only after every fallback strategy has been
// exhausted.
var (
	// ErrHardware indicates a bus or connection level failure.
	ErrHardware = errors.New("nfc hardware failure")
	// ErrNoTag indicates no tag is present on the reader.
	ErrNoTag = errors.New("no tag detected")
	// ErrRead indicates a block read failed after all addressing and
	// authentication fallbacks.
	ErrRead = errors.New("tag read failed")
	// ErrWrite indicates a block write failed after all fallbacks.
	ErrWrite = errors.New("tag write failed")
	// ErrAuthentication indicates every supplied key was rejected.
	ErrAuthentication = errors.New("tag authentication failed")
	// ErrInvalidParameter indicates invalid caller input.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNotConnected indicates an operation before Connect succeeded.
	ErrNotConnected = fmt.Errorf("%w: not connected", ErrHardware)
)

// ErrTagNotWritable is raised pre-emptively when the read-only heuristic
// triggers. It unwraps to ErrWrite so errors.Is(err, ErrWrite) holds.
var ErrTagNotWritable = fmt.Errorf("%w: tag is read-only", ErrWrite)

// Transport errors
var (
	ErrTransportTimeout    = errors.New("transport timeout")
	ErrTransportRead       = errors.New("transport read failed")
	ErrTransportWrite      = errors.New("transport write failed")
	ErrCommunicationFailed = errors.New("communication failed")
	ErrFrameCorrupted      = errors.New("frame corrupted")
	ErrChecksumMismatch    = errors.New("checksum mismatch")
	ErrDeviceNotFound      = errors.New("device not found")
	ErrTransportNotReady   = errors.New("transport not ready")
	ErrDataTooLarge        = errors.New("data too large")
)

// ErrorType classifies errors for retry decisions
type ErrorType int

const (
	// ErrorTypePermanent indicates an error that will not resolve by retrying
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient indicates an error that may resolve by retrying
	ErrorTypeTransient
	// ErrorTypeTimeout indicates a timeout that may resolve by retrying
	ErrorTypeTimeout
)

// TransportError wraps transport-level failures with operation context
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

// Error returns the error message
func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new transport error
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a retryable timeout transport error
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// NewFrameCorruptedError creates a retryable frame corruption error
func NewFrameCorruptedError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrFrameCorrupted, ErrorTypeTransient)
}

// NewChecksumError creates a retryable checksum mismatch error
func NewChecksumError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrChecksumMismatch, ErrorTypeTransient)
}

// NewDataTooLargeError creates a permanent data-too-large error
func NewDataTooLargeError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrDataTooLarge, ErrorTypePermanent)
}

// NewTransportNotReadyError creates a retryable not-ready error
func NewTransportNotReadyError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportNotReady, ErrorTypeTransient)
}

// retryableSentinels are the transport conditions worth retrying.
var retryableSentinels = []error{
	ErrTransportTimeout,
	ErrTransportRead,
	ErrTransportWrite,
	ErrCommunicationFailed,
	ErrFrameCorrupted,
	ErrChecksumMismatch,
	ErrTransportNotReady,
}

// IsRetryable reports whether an operation that failed with err is worth
// retrying. A TransportError carries its own verdict; otherwise only the
// known transient sentinels qualify.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	for _, sentinel := range retryableSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// GetErrorType classifies err for retry backoff decisions
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	if errors.Is(err, ErrTransportTimeout) {
		return ErrorTypeTimeout
	}

	for _, sentinel := range retryableSentinels {
		if errors.Is(err, sentinel) {
			return ErrorTypeTransient
		}
	}
	return ErrorTypePermanent
}
