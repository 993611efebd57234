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
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/jfaithedu/go-nfchat/internal/frame"
)

// Controller defaults
const (
	// ndefStartBlock is the first user block, where NDEF data lives
	ndefStartBlock = 4
	// maxNDEFBlocks caps how many blocks an NDEF read will accumulate
	maxNDEFBlocks = 8
	// writeSettleDelay is how long a write is given to settle before
	// the verify read-back
	writeSettleDelay = 50 * time.Millisecond
	// initializeAttempts is how many times Initialize tries to connect
	initializeAttempts = 3
	// pollWindow is the per-call poll window used by the controller
	pollWindow = 100 * time.Millisecond
)

// HardwareInfo describes the connected HAT
type HardwareInfo struct {
	// Bus is the transport kind carrying the connection
	Bus TransportType
	// Path is the device path or bus name the transport is bound to
	Path string
	// FirmwareVersion is the HAT firmware version
	FirmwareVersion string
	// Address is the device address on the bus (I2C only)
	Address byte
	// Connected reports whether the transport is currently usable
	Connected bool
}

// Controller orchestrates tag operations on top of a Reader. All logical
// operations (a poll, a read, a full verify-retry write sequence) are
// serialized through a single mutex so a background poll loop and
// foreground callers never interleave bus traffic.
type Controller struct {
	reader *Reader
	mu     sync.Mutex
}

// NewController creates a controller owning a Reader on the given transport
func NewController(transport Transport, opts ...ReaderOption) (*Controller, error) {
	reader, err := New(transport, opts...)
	if err != nil {
		return nil, err
	}
	return &Controller{reader: reader}, nil
}

// Initialize connects to the HAT and resets it to a clean state. Connection
// failures are retried with increasing backoff; if all attempts fail the
// controller stays uninitialized and the error is returned so the caller
// can retry later.
func (c *Controller) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < initializeAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 200 * time.Millisecond)
		}
		if err := c.reader.Connect(); err != nil {
			lastErr = err
			debugf("initialize attempt %d failed: %v", attempt+1, err)
			continue
		}
		if err := c.reader.Reset(); err != nil {
			lastErr = err
			debugf("reset after connect failed: %v", err)
			continue
		}
		return nil
	}
	return fmt.Errorf("initialization failed after %d attempts: %w",
		initializeAttempts, lastErr)
}

// Shutdown closes the reader and its transport
func (c *Controller) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reader.Close()
}

// HardwareInfo returns details about the connected HAT
func (c *Controller) HardwareInfo() HardwareInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	info := HardwareInfo{
		Bus:             c.reader.transport.Type(),
		Path:            c.reader.transport.Path(),
		FirmwareVersion: c.reader.FirmwareVersion(),
		Connected:       c.reader.transport.IsConnected(),
	}
	if info.Bus == TransportI2C {
		info.Address = frame.DeviceAddress
	}
	return info
}

// PollForTag checks once for a tag in the field. It returns (nil, nil) when
// no tag is present. When readNDEF is set it additionally attempts a
// best-effort NDEF read; NDEF failures are logged and swallowed because a
// tag without NDEF data is not a fault.
func (c *Controller) PollForTag(readNDEF bool) (*DetectedTag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tag, err := c.reader.Poll(pollWindow)
	if err != nil || tag == nil {
		return nil, err
	}

	if readNDEF {
		msg, err := c.readNDEFData()
		if err != nil {
			debugf("best-effort NDEF read for %s failed: %v", tag.UID, err)
		} else {
			tag.Message = msg
		}
	}
	return tag, nil
}

// ReadTagData reads one 16-byte block from the current tag
func (c *Controller) ReadTagData(block byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reader.ReadBlock(block)
}

// WriteTagData writes data to a block, padding it with zeros to the 16-byte
// block size. Data longer than a block is refused. With verify set, the
// block is read back after a short settle delay and compared byte-for-byte;
// mismatches are rewritten up to maxRetries more times. A tag leaving the
// field aborts immediately.
func (c *Controller) WriteTagData(data []byte, block byte, verify bool, maxRetries int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeTagData(data, block, verify, maxRetries)
}

// writeTagData is the lock-free core of WriteTagData. Caller must hold c.mu.
func (c *Controller) writeTagData(data []byte, block byte, verify bool, maxRetries int) error {
	if len(data) > blockSize {
		return fmt.Errorf("%w: data is %d bytes, block is %d",
			ErrWrite, len(data), blockSize)
	}

	padded := make([]byte, blockSize)
	copy(padded, data)

	readOnly, err := c.reader.IsTagReadOnly()
	if err != nil {
		return err
	}
	if readOnly {
		return ErrTagNotWritable
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.reader.writeBlockNoProbe(block, padded); err != nil {
			if IsNoTag(err) {
				return err
			}
			debugf("write attempt %d failed: %v", attempt+1, err)
			continue
		}

		if !verify {
			return nil
		}

		time.Sleep(writeSettleDelay)
		readBack, err := c.reader.ReadBlock(block)
		if err != nil {
			if IsNoTag(err) {
				return err
			}
			debugf("verify read after attempt %d failed: %v", attempt+1, err)
			continue
		}
		if bytes.Equal(readBack, padded) {
			return nil
		}
		debugf("verify mismatch on attempt %d for block %d", attempt+1, block)
	}

	return fmt.Errorf("%w: block %d still mismatched after %d attempts",
		ErrWrite, block, maxRetries+1)
}

// ReadNDEFData reads the NDEF message starting at the first user block.
// When the first block declares a TLV longer than one block, consecutive
// blocks are accumulated until the declared length is satisfied; a failed
// extra read stops accumulation and whatever was gathered is parsed.
func (c *Controller) ReadNDEFData() (*NDEFMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readNDEFData()
}

// readNDEFData is the lock-free core of ReadNDEFData. Caller must hold c.mu.
func (c *Controller) readNDEFData() (*NDEFMessage, error) {
	data, err := c.reader.ReadBlock(ndefStartBlock)
	if err != nil {
		return nil, err
	}

	if total, ok := DeclaredTLVTotal(data); ok && total > len(data) {
		blocksNeeded := (total + blockSize - 1) / blockSize
		if blocksNeeded > maxNDEFBlocks {
			blocksNeeded = maxNDEFBlocks
		}
		for i := 1; i < blocksNeeded; i++ {
			extra, err := c.reader.ReadBlock(byte(ndefStartBlock + i))
			if err != nil {
				debugf("NDEF accumulation stopped at block %d: %v",
					ndefStartBlock+i, err)
				break
			}
			data = append(data, extra...)
		}
	}

	return ParseNDEF(data)
}

// WriteNDEFData encodes url and/or text as an NDEF message and writes it
// across consecutive blocks starting at the first user block. Each block
// gets its own verify-retry cycle.
func (c *Controller) WriteNDEFData(url, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := BuildNDEF(url, text)
	if err != nil {
		return err
	}

	for i := 0; i*blockSize < len(data); i++ {
		chunk := data[i*blockSize : (i+1)*blockSize]
		block := byte(ndefStartBlock + i)
		if err := c.writeTagData(chunk, block, true, 3); err != nil {
			return fmt.Errorf("NDEF write failed at block %d: %w", block, err)
		}
	}
	return nil
}

// WriteNDEFURI writes an NDEF message holding a single URI record
func (c *Controller) WriteNDEFURI(uri string) error {
	return c.WriteNDEFData(uri, "")
}
