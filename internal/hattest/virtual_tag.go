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

// Package hattest emulates the NFC HAT firmware for tests. A VirtualTag
// answers decoded command payloads the way the HAT would, including
// tag-type quirks: NTAG tags answer page commands, MIFARE tags answer
// block commands behind sector authentication.
package hattest

import (
	"bytes"
	"sync"

	"github.com/jfaithedu/go-nfchat/internal/frame"
)

// Tag geometries.
const (
	ntagPages    = 135
	pageSize     = 4
	mifareBlocks = 64
	blockSize    = 16
	keyLength    = 6
)

// TagKind selects which tag family a VirtualTag emulates.
type TagKind int

// Supported tag kinds.
const (
	KindNTAG215 TagKind = iota
	KindMIFARE1K
)

// keyPair holds a sector's two keys.
type keyPair struct {
	a [keyLength]byte
	b [keyLength]byte
}

// VirtualTag emulates the HAT with a single tag in (or out of) the field.
// HandleCommand consumes decoded command payloads and produces decoded
// response payloads (status byte first), so it plugs directly into a mock
// transport's response hook.
type VirtualTag struct {
	mu sync.Mutex

	kind     TagKind
	uid      []byte
	present  bool
	readOnly bool

	pages  [ntagPages][pageSize]byte
	blocks [mifareBlocks][blockSize]byte
	keys   [mifareBlocks / 4]keyPair

	authedSector int

	// corruptWrites makes the next n stored writes flip their last byte,
	// so a verifying caller sees a mismatch. corruptBlock restricts the
	// corruption to one block (-1 corrupts any write).
	corruptWrites int
	corruptBlock  int

	firmwareMajor byte
	firmwareMinor byte
}

// NewNTAG215 creates a present NTAG215 with the given 7-byte UID.
func NewNTAG215(uid []byte) *VirtualTag {
	t := &VirtualTag{
		kind:          KindNTAG215,
		uid:           append([]byte(nil), uid...),
		present:       true,
		authedSector:  -1,
		corruptBlock:  -1,
		firmwareMajor: 1,
		firmwareMinor: 2,
	}
	return t
}

// NewMIFARE1K creates a present MIFARE Classic 1K with the given 4-byte
// UID and factory keys on every sector.
func NewMIFARE1K(uid []byte) *VirtualTag {
	t := &VirtualTag{
		kind:          KindMIFARE1K,
		uid:           append([]byte(nil), uid...),
		present:       true,
		authedSector:  -1,
		corruptBlock:  -1,
		firmwareMajor: 1,
		firmwareMinor: 2,
	}
	factory := [keyLength]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	for i := range t.keys {
		t.keys[i] = keyPair{a: factory, b: factory}
	}
	return t
}

// SetPresent places the tag in or removes it from the field.
func (t *VirtualTag) SetPresent(present bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.present = present
	if !present {
		t.authedSector = -1
	}
}

// SetUID swaps the tag in the field for one with a different UID.
func (t *VirtualTag) SetUID(uid []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.uid = append([]byte(nil), uid...)
}

// SetReadOnly makes every write command fail.
func (t *VirtualTag) SetReadOnly(readOnly bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readOnly = readOnly
}

// SetSectorKey overrides one sector key. slot is 0x00 for key A, 0x01 for
// key B.
func (t *VirtualTag) SetSectorKey(sector int, slot byte, key []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var k [keyLength]byte
	copy(k[:], key)
	if slot == 0x00 {
		t.keys[sector].a = k
	} else {
		t.keys[sector].b = k
	}
}

// CorruptNextWrites makes the next n writes store flipped data.
func (t *VirtualTag) CorruptNextWrites(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.corruptWrites = n
	t.corruptBlock = -1
}

// CorruptWritesTo makes the next n writes addressed to block store flipped
// data; writes to other blocks are unaffected.
func (t *VirtualTag) CorruptWritesTo(block, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.corruptWrites = n
	t.corruptBlock = block
}

// shouldCorrupt consumes one corruption credit when the write to block is
// in scope. Caller must hold t.mu.
func (t *VirtualTag) shouldCorrupt(block int) bool {
	if t.corruptWrites <= 0 {
		return false
	}
	if t.corruptBlock >= 0 && t.corruptBlock != block {
		return false
	}
	t.corruptWrites--
	return true
}

// LoadBlock seeds a 16-byte block directly, bypassing the command path.
func (t *VirtualTag) LoadBlock(block int, data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.kind == KindNTAG215 {
		for i := 0; i < 4; i++ {
			copy(t.pages[block*4+i][:], data[i*pageSize:(i+1)*pageSize])
		}
		return
	}
	copy(t.blocks[block][:], data)
}

// LoadNDEF seeds raw NDEF bytes into consecutive blocks starting at block 4.
func (t *VirtualTag) LoadNDEF(data []byte) {
	for i := 0; i*blockSize < len(data); i++ {
		chunk := make([]byte, blockSize)
		copy(chunk, data[i*blockSize:])
		t.LoadBlock(4+i, chunk)
	}
}

// BlockBytes returns a copy of a block's current contents for assertions.
func (t *VirtualTag) BlockBytes(block int) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]byte, blockSize)
	if t.kind == KindNTAG215 {
		for i := 0; i < 4; i++ {
			copy(out[i*pageSize:], t.pages[block*4+i][:])
		}
		return out
	}
	copy(out, t.blocks[block][:])
	return out
}

// Respond adapts HandleCommand to a mock transport's response hook.
func (t *VirtualTag) Respond(cmd byte, args []byte) ([]byte, error) {
	return t.HandleCommand(cmd, args), nil
}

// HandleCommand executes one HAT command against the virtual tag and
// returns the response payload, status byte first.
func (t *VirtualTag) HandleCommand(cmd byte, args []byte) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch cmd {
	case frame.CmdReset:
		t.authedSector = -1
		return []byte{frame.RespSuccess}
	case frame.CmdVersion:
		return []byte{frame.RespSuccess, t.firmwareMajor, t.firmwareMinor}
	case frame.CmdPoll:
		if !t.present {
			return []byte{frame.RespNoTag}
		}
		return append([]byte{frame.RespSuccess}, t.uid...)
	case frame.CmdReadPage:
		return t.handleReadPage(args)
	case frame.CmdWritePage:
		return t.handleWritePage(args)
	case frame.CmdReadBlock:
		return t.handleReadBlock(args)
	case frame.CmdWriteBlock:
		return t.handleWriteBlock(args)
	case frame.CmdAuthenticate:
		return t.handleAuthenticate(args)
	default:
		return []byte{frame.RespError, 0x01}
	}
}

func (t *VirtualTag) handleReadPage(args []byte) []byte {
	if !t.present {
		return []byte{frame.RespNoTag}
	}
	if t.kind != KindNTAG215 || len(args) != 1 || int(args[0]) >= ntagPages {
		return []byte{frame.RespError, 0x02}
	}
	return append([]byte{frame.RespSuccess}, t.pages[args[0]][:]...)
}

func (t *VirtualTag) handleWritePage(args []byte) []byte {
	if !t.present {
		return []byte{frame.RespNoTag}
	}
	if t.kind != KindNTAG215 || len(args) != 1+pageSize || int(args[0]) >= ntagPages {
		return []byte{frame.RespError, 0x02}
	}
	if t.readOnly {
		return []byte{frame.RespError, 0x03}
	}
	data := append([]byte(nil), args[1:]...)
	if t.shouldCorrupt(int(args[0]) / 4) {
		data[len(data)-1] ^= 0xFF
	}
	copy(t.pages[args[0]][:], data)
	return []byte{frame.RespSuccess}
}

func (t *VirtualTag) handleReadBlock(args []byte) []byte {
	if !t.present {
		return []byte{frame.RespNoTag}
	}
	if t.kind != KindMIFARE1K || len(args) != 1 || int(args[0]) >= mifareBlocks {
		return []byte{frame.RespError, 0x02}
	}
	if t.authedSector != int(args[0])/4 {
		return []byte{frame.RespError, 0x04}
	}
	return append([]byte{frame.RespSuccess}, t.blocks[args[0]][:]...)
}

func (t *VirtualTag) handleWriteBlock(args []byte) []byte {
	if !t.present {
		return []byte{frame.RespNoTag}
	}
	if t.kind != KindMIFARE1K || len(args) != 1+blockSize || int(args[0]) >= mifareBlocks {
		return []byte{frame.RespError, 0x02}
	}
	if t.authedSector != int(args[0])/4 {
		return []byte{frame.RespError, 0x04}
	}
	if t.readOnly {
		return []byte{frame.RespError, 0x03}
	}
	data := append([]byte(nil), args[1:]...)
	if t.shouldCorrupt(int(args[0])) {
		data[len(data)-1] ^= 0xFF
	}
	copy(t.blocks[args[0]][:], data)
	return []byte{frame.RespSuccess}
}

func (t *VirtualTag) handleAuthenticate(args []byte) []byte {
	if !t.present {
		return []byte{frame.RespNoTag}
	}
	if t.kind != KindMIFARE1K || len(args) != 2+keyLength {
		return []byte{frame.RespError, 0x02}
	}
	block := int(args[0])
	if block >= mifareBlocks {
		return []byte{frame.RespError, 0x02}
	}

	sector := block / 4
	keys := t.keys[sector]
	expected := keys.a[:]
	if args[1] == 0x01 {
		expected = keys.b[:]
	}
	if !bytes.Equal(args[2:], expected) {
		t.authedSector = -1
		return []byte{frame.RespError, 0x05}
	}
	t.authedSector = sector
	return []byte{frame.RespSuccess}
}
