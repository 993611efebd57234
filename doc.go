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

// Package nfchat communicates with an NFC HAT over I2C or UART. It provides
// block-level tag access with type detection (NTAG215, MIFARE Classic),
// an NDEF codec for URI and text records, and a Controller that layers
// polling, verified writes, and continuous tag monitoring on top.
//
// Typical use:
//
//	t, err := i2c.New("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	ctrl, err := nfchat.NewController(t)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := ctrl.Initialize(); err != nil {
//		log.Fatal(err)
//	}
//	defer ctrl.Shutdown()
//
//	tag, err := ctrl.PollForTag(true)
package nfchat
