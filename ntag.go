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

// NTAG215 memory layout
const (
	// ntagPageSize is the number of bytes per NTAG page
	ntagPageSize = 4
	// ntagPagesPerBlock maps one 16-byte logical block onto four pages
	ntagPagesPerBlock = 4
	// ntagMaxPage is the last addressable page on an NTAG215
	ntagMaxPage = 134
	// ntagUserCeiling is the last page in the user memory area; pages
	// beyond it hold lock bytes and configuration and must not be
	// written through the block interface
	ntagUserCeiling = 130
	// ntagFirstUserPage is the first page of user memory; pages 0-3 hold
	// the UID, lock bytes and capability container
	ntagFirstUserPage = 4
	// ntagDynamicLockPage holds the dynamic lock bytes
	ntagDynamicLockPage = 130
)

// readPage reads a single 4-byte NTAG page. Caller must hold r.mu.
func (r *Reader) readPage(page byte) ([]byte, error) {
	data, err := r.command(frame.CmdReadPage, []byte{page})
	if err != nil {
		return nil, err
	}
	if len(data) < ntagPageSize {
		return nil, fmt.Errorf("%w: short page read (%d bytes)", ErrRead, len(data))
	}
	return data[:ntagPageSize], nil
}

// writePage writes a single 4-byte NTAG page. Caller must hold r.mu.
func (r *Reader) writePage(page byte, data []byte) error {
	if len(data) != ntagPageSize {
		return fmt.Errorf("%w: page data must be %d bytes, got %d",
			ErrInvalidParameter, ntagPageSize, len(data))
	}
	params := make([]byte, 0, 1+ntagPageSize)
	params = append(params, page)
	params = append(params, data...)
	_, err := r.command(frame.CmdWritePage, params)
	return err
}

// ntagReadBlock reads a 16-byte logical block by assembling four pages.
// Pages beyond the end of the tag read back as zeros. Caller must hold r.mu.
func (r *Reader) ntagReadBlock(block byte) ([]byte, error) {
	result := make([]byte, 0, blockSize)
	firstPage := int(block) * ntagPagesPerBlock

	for i := 0; i < ntagPagesPerBlock; i++ {
		page := firstPage + i
		if page > ntagMaxPage {
			result = append(result, make([]byte, ntagPageSize)...)
			continue
		}
		data, err := r.readPage(byte(page))
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrRead, page, err)
		}
		result = append(result, data...)
	}
	return result, nil
}

// ntagReadBlockPadded assembles as many pages of a block as the tag will
// give up and zero-pads the remainder. Used for unclassified tags, where a
// partial page assembly still counts as a successful read; a tag that
// refuses even the first page fails the strategy. Caller must hold r.mu.
func (r *Reader) ntagReadBlockPadded(block byte) ([]byte, error) {
	result := make([]byte, 0, blockSize)
	firstPage := int(block) * ntagPagesPerBlock

	for i := 0; i < ntagPagesPerBlock; i++ {
		page := firstPage + i
		if page > ntagMaxPage {
			break
		}
		data, err := r.readPage(byte(page))
		if err != nil {
			if IsNoTag(err) {
				return nil, err
			}
			if i == 0 {
				return nil, fmt.Errorf("%w: page %d: %v", ErrRead, page, err)
			}
			debugf("padding block %d from page %d: %v", block, page, err)
			break
		}
		result = append(result, data...)
	}

	for len(result) < blockSize {
		result = append(result, 0)
	}
	return result, nil
}

// ntagWriteBlock writes a 16-byte logical block as four page writes.
// Writes that would touch the reserved header pages are refused; pages
// past the user area are silently skipped. Caller must hold r.mu.
func (r *Reader) ntagWriteBlock(block byte, data []byte) error {
	if len(data) != blockSize {
		return fmt.Errorf("%w: block data must be %d bytes, got %d",
			ErrInvalidParameter, blockSize, len(data))
	}

	firstPage := int(block) * ntagPagesPerBlock
	if firstPage < ntagFirstUserPage {
		return fmt.Errorf("%w: block %d overlaps reserved pages", ErrWrite, block)
	}

	for i := 0; i < ntagPagesPerBlock; i++ {
		page := firstPage + i
		if page > ntagUserCeiling {
			debugf("skipping write to page %d beyond user area", page)
			continue
		}
		chunk := data[i*ntagPageSize : (i+1)*ntagPageSize]
		if err := r.writePage(byte(page), chunk); err != nil {
			return fmt.Errorf("%w: page %d: %v", ErrWrite, page, err)
		}
	}
	return nil
}

// LockBytes holds the lock state read from an NTAG tag. Static covers
// pages 3-15, Dynamic covers the rest of user memory.
type LockBytes struct {
	Static  []byte // page 2, bytes 2-3
	Dynamic []byte // page 130, bytes 0-2
}

// ReadLockBytes reads the NTAG static and dynamic lock bytes.
// It returns an error for non-NTAG tags.
func (r *Reader) ReadLockBytes() (*LockBytes, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connected {
		return nil, ErrNotConnected
	}
	if r.lastUID == nil {
		return nil, ErrNoTag
	}
	if r.tagType != TagTypeNTAG215 {
		return nil, fmt.Errorf("%w: lock bytes only exist on NTAG tags", ErrInvalidParameter)
	}

	static, err := r.readPage(2)
	if err != nil {
		return nil, err
	}
	dynamic, err := r.readPage(ntagDynamicLockPage)
	if err != nil {
		return nil, err
	}
	return &LockBytes{Static: static[2:4], Dynamic: dynamic[:3]}, nil
}
