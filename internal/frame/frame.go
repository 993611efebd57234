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

// Package frame provides the wire framing and protocol constants shared by
// all NFC HAT transports.
//
// A command frame is [len][cmd][params...][dcs] and a response frame is
// [len][payload...][dcs], where len counts the body (cmd+params, or
// payload) and dcs is the two's-complement checksum of the body. A
// response length byte of zero means the HAT has not finished processing
// yet; transports poll until a non-zero length appears or their deadline
// expires.
package frame

import "errors"

// DeviceAddress is the fixed I2C address of the NFC HAT.
const DeviceAddress = 0x24

// HAT command codes.
const (
	CmdReset        = 0x01
	CmdVersion      = 0x02
	CmdPoll         = 0x03
	CmdReadBlock    = 0x04
	CmdWriteBlock   = 0x05
	CmdAuthenticate = 0x06
	CmdReadPage     = 0x07
	CmdWritePage    = 0x08
)

// HAT status codes. Error responses carry RespError as the first payload
// byte followed by a reason code.
const (
	RespSuccess = 0x00
	RespError   = 0xFF
	RespNoTag   = 0xFE
)

// Frame size limits.
const (
	// MaxBodyLength is the maximum body length a single frame can carry.
	MaxBodyLength = 255
	// NotReady is the length byte the HAT exposes while a command is
	// still being processed.
	NotReady = 0x00
)

// ErrBodyTooLarge indicates a command body exceeding MaxBodyLength.
var ErrBodyTooLarge = errors.New("frame body too large")

// Checksum returns the two's-complement checksum of the body so that
// sum(body) + Checksum(body) == 0 (mod 256).
func Checksum(body []byte) byte {
	var sum byte
	for _, b := range body {
		sum += b
	}
	return ^sum + 1
}

// Encode builds a command frame for the given command and parameters.
func Encode(cmd byte, params []byte) ([]byte, error) {
	bodyLen := 1 + len(params)
	if bodyLen > MaxBodyLength {
		return nil, ErrBodyTooLarge
	}

	buf := make([]byte, 0, bodyLen+2)
	buf = append(buf, byte(bodyLen))
	buf = append(buf, cmd)
	buf = append(buf, params...)
	buf = append(buf, Checksum(buf[1:]))
	return buf, nil
}

// Verify reports whether dcs is the correct checksum for body.
func Verify(body []byte, dcs byte) bool {
	return Checksum(body) == dcs
}
