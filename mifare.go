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
	"fmt"

	"github.com/jfaithedu/go-nfchat/internal/frame"
)

// mifareKeyLength is the length of a MIFARE Classic sector key
const mifareKeyLength = 6

// mifareBlocksPerSector is the number of blocks per MIFARE Classic 1K sector
const mifareBlocksPerSector = 4

// Well-known MIFARE Classic keys, tried in order during authentication
var (
	// mifareFactoryKey is the transport-configuration key tags ship with
	mifareFactoryKey = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	// mifareNDEFKey is the public NFC Forum key for NDEF data sectors
	mifareNDEFKey = []byte{0xD3, 0xF7, 0xD3, 0xF7, 0xD3, 0xF7}
	// mifareMADKey is the public key for the MIFARE application directory
	mifareMADKey = []byte{0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5}
	// mifareZeroKey shows up on some rewritten tags
	mifareZeroKey = []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
)

// mifareKeyCascade returns the candidate keys in trial order
func mifareKeyCascade() [][]byte {
	return [][]byte{mifareFactoryKey, mifareNDEFKey, mifareMADKey, mifareZeroKey}
}

// mifareAuthenticateSector tries each well-known key under both key slots
// until one authenticates the sector containing block. Caller must hold r.mu.
func (r *Reader) mifareAuthenticateSector(block byte) error {
	var lastErr error
	for _, key := range mifareKeyCascade() {
		for _, keyType := range []byte{KeyTypeA, KeyTypeB} {
			err := r.authenticate(block, keyType, key)
			if err == nil {
				return nil
			}
			if IsNoTag(err) {
				return err
			}
			lastErr = err
		}
	}
	return fmt.Errorf("%w: no known key opened sector %d: %v",
		ErrAuthentication, int(block)/mifareBlocksPerSector, lastErr)
}

// mifareReadBlock reads a 16-byte MIFARE Classic block. Authentication
// failures do not abort: some readers cache a prior authentication, so an
// unauthenticated read is still attempted. Caller must hold r.mu.
func (r *Reader) mifareReadBlock(block byte) ([]byte, error) {
	if err := r.mifareAuthenticateSector(block); err != nil {
		if IsNoTag(err) {
			return nil, err
		}
		debugf("sector auth failed for block %d, trying raw read: %v", block, err)
	}

	data, err := r.command(frame.CmdReadBlock, []byte{block})
	if err != nil {
		return nil, err
	}
	if len(data) < blockSize {
		return nil, fmt.Errorf("%w: short block read (%d bytes)", ErrRead, len(data))
	}
	return data[:blockSize], nil
}

// mifareWriteBlock writes a 16-byte MIFARE Classic block. Unlike reads,
// writes require a successful authentication first. Caller must hold r.mu.
func (r *Reader) mifareWriteBlock(block byte, data []byte) error {
	if len(data) != blockSize {
		return fmt.Errorf("%w: block data must be %d bytes, got %d",
			ErrInvalidParameter, blockSize, len(data))
	}

	if err := r.mifareAuthenticateSector(block); err != nil {
		return err
	}

	params := make([]byte, 0, 1+blockSize)
	params = append(params, block)
	params = append(params, data...)
	if _, err := r.command(frame.CmdWriteBlock, params); err != nil {
		if IsNoTag(err) {
			return err
		}
		return fmt.Errorf("%w: block %d: %v", ErrWrite, block, err)
	}
	return nil
}
