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

// blockSize is the logical block size exposed by the Reader, regardless
// of the underlying tag's native page or block geometry
const blockSize = 16

// readStrategy attempts one way of reading a block from an unclassified
// tag. Strategies are tried in order until one succeeds.
type readStrategy struct {
	name string
	read func(r *Reader, block byte) ([]byte, error)
}

// unknownReadStrategies is the trial order for tags that could not be
// classified: NTAG-style page assembly first (short assemblies zero-padded),
// then the MIFARE path, then a raw block command as a last resort.
var unknownReadStrategies = []readStrategy{
	{"ntag", (*Reader).ntagReadBlockPadded},
	{"mifare", (*Reader).mifareReadBlock},
	{"raw", (*Reader).rawReadBlock},
}

// writeStrategy attempts one way of writing a block to an unclassified tag
type writeStrategy struct {
	name  string
	write func(r *Reader, block byte, data []byte) error
}

// unknownWriteStrategies mirrors unknownReadStrategies for writes
var unknownWriteStrategies = []writeStrategy{
	{"ntag", (*Reader).ntagWriteBlock},
	{"mifare", (*Reader).mifareWriteBlock},
	{"raw", (*Reader).rawWriteBlock},
}

// ReadBlock reads a 16-byte logical block from the current tag. The read
// path depends on the tag's classified type. Returns ErrNoTag without any
// bus traffic when no tag has been seen.
func (r *Reader) ReadBlock(block byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connected {
		return nil, ErrNotConnected
	}
	if r.lastUID == nil {
		return nil, ErrNoTag
	}
	return r.readBlock(block)
}

// readBlock dispatches a block read by tag type. Caller must hold r.mu.
func (r *Reader) readBlock(block byte) ([]byte, error) {
	switch r.tagType {
	case TagTypeNTAG215:
		return r.ntagReadBlock(block)
	case TagTypeMIFAREClassic:
		return r.mifareReadBlock(block)
	default:
		return r.unknownReadBlock(block)
	}
}

// unknownReadBlock tries each read strategy in order. Caller must hold r.mu.
func (r *Reader) unknownReadBlock(block byte) ([]byte, error) {
	var lastErr error
	for _, s := range unknownReadStrategies {
		data, err := s.read(r, block)
		if err == nil {
			return data, nil
		}
		if IsNoTag(err) {
			return nil, err
		}
		debugf("%s read strategy failed for block %d: %v", s.name, block, err)
		lastErr = err
	}
	return nil, fmt.Errorf("%w: block %d unreadable: %v", ErrRead, block, lastErr)
}

// rawReadBlock sends the block read command directly and returns the first
// 16 bytes of whatever comes back. Caller must hold r.mu.
func (r *Reader) rawReadBlock(block byte) ([]byte, error) {
	data, err := r.command(frame.CmdReadBlock, []byte{block})
	if err != nil {
		return nil, err
	}
	if len(data) < blockSize {
		return nil, fmt.Errorf("%w: short raw read (%d bytes)", ErrRead, len(data))
	}
	return data[:blockSize], nil
}

// rawWriteBlock sends the block write command directly, without any
// authentication or page translation. Caller must hold r.mu.
func (r *Reader) rawWriteBlock(block byte, data []byte) error {
	if len(data) != blockSize {
		return fmt.Errorf("%w: block data must be %d bytes, got %d",
			ErrInvalidParameter, blockSize, len(data))
	}
	params := make([]byte, 0, 1+blockSize)
	params = append(params, block)
	params = append(params, data...)
	_, err := r.command(frame.CmdWriteBlock, params)
	return err
}

// WriteBlock writes a 16-byte logical block to the current tag. It refuses
// to write tags that appear read-only; see IsTagReadOnly for the probe.
func (r *Reader) WriteBlock(block byte, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connected {
		return ErrNotConnected
	}
	if r.lastUID == nil {
		return ErrNoTag
	}

	if r.isTagReadOnly() {
		return ErrTagNotWritable
	}
	return r.writeBlockInternal(block, data)
}

// writeBlockNoProbe writes a block without the read-only probe. The
// Controller's verify-retry loop uses it so retries do not multiply bus
// writes with repeated probing.
func (r *Reader) writeBlockNoProbe(block byte, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connected {
		return ErrNotConnected
	}
	if r.lastUID == nil {
		return ErrNoTag
	}
	return r.writeBlockInternal(block, data)
}

// writeBlockInternal dispatches a block write by tag type without the
// read-only probe. Caller must hold r.mu.
func (r *Reader) writeBlockInternal(block byte, data []byte) error {
	switch r.tagType {
	case TagTypeNTAG215:
		return r.ntagWriteBlock(block, data)
	case TagTypeMIFAREClassic:
		return r.mifareWriteBlock(block, data)
	default:
		return r.unknownWriteBlock(block, data)
	}
}

// unknownWriteBlock tries each write strategy in order. The NTAG path goes
// first: its reserved-page guard prevents clobbering header pages. Caller
// must hold r.mu.
func (r *Reader) unknownWriteBlock(block byte, data []byte) error {
	var lastErr error
	for _, s := range unknownWriteStrategies {
		err := s.write(r, block, data)
		if err == nil {
			return nil
		}
		if IsNoTag(err) {
			return err
		}
		debugf("%s write strategy failed for block %d: %v", s.name, block, err)
		lastErr = err
	}
	return fmt.Errorf("%w: block %d unwritable: %v", ErrWrite, block, lastErr)
}

// IsTagReadOnly probes whether the current tag accepts writes by rewriting
// the first user block with its own contents. An unreadable tag is reported
// writable so callers fail on the write itself with a clearer error.
func (r *Reader) IsTagReadOnly() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connected {
		return false, ErrNotConnected
	}
	if r.lastUID == nil {
		return false, ErrNoTag
	}
	return r.isTagReadOnly(), nil
}

// isTagReadOnly is the lock-free core of IsTagReadOnly. Caller must hold r.mu.
func (r *Reader) isTagReadOnly() bool {
	data, err := r.readBlock(4)
	if err != nil {
		return false
	}
	if err := r.writeBlockInternal(4, data); err != nil {
		debugf("read-only probe: rewrite failed: %v", err)
		return true
	}
	return false
}
