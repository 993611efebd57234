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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jfaithedu/go-nfchat/internal/frame"
)

// Key type constants for MIFARE Classic authentication
const (
	KeyTypeA byte = 0x00
	KeyTypeB byte = 0x01
)

// Reader communicates with the NFC HAT at the block level. It handles tag
// detection, type classification, authentication and block I/O; the NDEF
// layer and the Controller build on top of it.
type Reader struct {
	transport Transport
	cfg       *readerConfig

	mu              sync.Mutex
	firmwareVersion string
	connected       bool
	lastUID         []byte
	tagType         TagType
}

// New creates a new Reader using the given transport
func New(transport Transport, opts ...ReaderOption) (*Reader, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: transport is nil", ErrInvalidParameter)
	}

	cfg := defaultReaderConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Reader{
		transport: NewTransportWithRetry(transport, cfg.retryConfig),
		cfg:       cfg,
	}, nil
}

// Connect establishes communication with the HAT and reads its firmware
// version. It must be called before any other operation.
func (r *Reader) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.transport.SetTimeout(r.cfg.timeout); err != nil {
		return fmt.Errorf("failed to set timeout: %w", err)
	}

	data, err := r.command(frame.CmdVersion, nil)
	if err != nil {
		return fmt.Errorf("failed to query firmware version: %w", err)
	}
	if len(data) >= 2 {
		r.firmwareVersion = fmt.Sprintf("%d.%d", data[0], data[1])
	} else {
		r.firmwareVersion = "unknown"
	}
	r.connected = true

	debugf("connected, firmware %s", r.firmwareVersion)
	return nil
}

// Close closes the reader and its transport
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connected = false
	r.lastUID = nil
	r.tagType = ""
	return r.transport.Close()
}

// FirmwareVersion returns the HAT firmware version read during Connect
func (r *Reader) FirmwareVersion() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.firmwareVersion
}

// Reset issues a hardware reset to the HAT and waits for it to settle
func (r *Reader) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.command(frame.CmdReset, nil); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	r.lastUID = nil
	r.tagType = ""

	// The firmware needs a moment after reset before it accepts commands.
	time.Sleep(100 * time.Millisecond)
	return nil
}

// Poll checks for a tag in the field, retrying until timeout elapses.
// It returns (nil, nil) when no tag is present within the window. When a
// tag with a UID different from the previously seen one appears, its type
// is re-classified.
func (r *Reader) Poll(timeout time.Duration) (*DetectedTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connected {
		return nil, ErrNotConnected
	}

	deadline := time.Now().Add(timeout)
	for {
		uid, err := r.pollOnce()
		if err != nil {
			return nil, err
		}
		if uid != nil {
			return r.sawTag(uid)
		}
		if time.Now().After(deadline) {
			return nil, nil
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// pollOnce issues a single poll command. It returns (nil, nil) when the
// field is empty. Caller must hold r.mu.
func (r *Reader) pollOnce() ([]byte, error) {
	data, err := r.command(frame.CmdPoll, nil)
	if err != nil {
		if IsNoTag(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	uid := make([]byte, len(data))
	copy(uid, data)
	return uid, nil
}

// sawTag records a polled UID and classifies the tag when the UID changed.
// Caller must hold r.mu.
func (r *Reader) sawTag(uid []byte) (*DetectedTag, error) {
	if !bytes.Equal(uid, r.lastUID) {
		r.lastUID = uid
		r.tagType = r.classifyTag(uid)
		debugf("new tag %s classified as %s", FormatUID(uid), r.tagType)
	}

	return &DetectedTag{
		UID:        FormatUID(uid),
		UIDBytes:   uid,
		Type:       r.tagType,
		DetectedAt: time.Now(),
	}, nil
}

// DetectTagType classifies the currently present tag. It re-runs the probe
// sequence even if the tag was classified before.
func (r *Reader) DetectTagType() (TagType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connected {
		return TagTypeUnknown, ErrNotConnected
	}
	if r.lastUID == nil {
		return TagTypeUnknown, ErrNoTag
	}

	r.tagType = r.classifyTag(r.lastUID)
	return r.tagType, nil
}

// classifyTag probes the tag to determine its type. Probe failures
// downgrade the classification rather than propagate: an unreadable tag is
// simply Unknown. Caller must hold r.mu.
func (r *Reader) classifyTag(uid []byte) TagType {
	// NTAG215 tags always carry a 7-byte UID. A successful page-0 read
	// without authentication confirms an NTAG-family tag.
	if len(uid) == 7 {
		if _, err := r.readPage(0); err == nil {
			return TagTypeNTAG215
		}
	}

	// MIFARE Classic requires sector authentication before any read.
	// Try the factory default key on a data sector.
	if len(uid) == 4 || len(uid) == 7 {
		if err := r.authenticate(16, KeyTypeA, mifareFactoryKey); err == nil {
			return TagTypeMIFAREClassic
		}
	}

	return TagTypeUnknown
}

// Authenticate authenticates a MIFARE Classic sector via the block that
// addresses it. keyType is KeyTypeA or KeyTypeB; key must be 6 bytes.
func (r *Reader) Authenticate(block byte, keyType byte, key []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connected {
		return ErrNotConnected
	}
	return r.authenticate(block, keyType, key)
}

// authenticate is the lock-free core of Authenticate. Caller must hold r.mu.
func (r *Reader) authenticate(block byte, keyType byte, key []byte) error {
	if len(key) != mifareKeyLength {
		return fmt.Errorf("%w: key must be %d bytes, got %d",
			ErrInvalidParameter, mifareKeyLength, len(key))
	}
	if keyType != KeyTypeA && keyType != KeyTypeB {
		return fmt.Errorf("%w: invalid key type 0x%02X", ErrInvalidParameter, keyType)
	}

	params := make([]byte, 0, 2+mifareKeyLength)
	params = append(params, block, keyType)
	params = append(params, key...)

	if _, err := r.command(frame.CmdAuthenticate, params); err != nil {
		if IsNoTag(err) {
			return err
		}
		return fmt.Errorf("%w: block %d", ErrAuthentication, block)
	}
	return nil
}

// command sends a command and maps the HAT status byte onto the error
// taxonomy. On success it returns the payload following the status byte.
// Caller must hold r.mu.
func (r *Reader) command(cmd byte, params []byte) ([]byte, error) {
	payload, err := r.transport.SendCommand(cmd, params)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty response to command 0x%02X",
			ErrCommunicationFailed, cmd)
	}

	status := payload[0]
	data := payload[1:]

	switch status {
	case frame.RespSuccess:
		return data, nil
	case frame.RespNoTag:
		return nil, ErrNoTag
	case frame.RespError:
		return nil, fmt.Errorf("%w: command 0x%02X rejected", ErrHardware, cmd)
	default:
		return nil, fmt.Errorf("%w: unexpected status 0x%02X for command 0x%02X",
			ErrCommunicationFailed, status, cmd)
	}
}

// IsNoTag reports whether err indicates the tag left the field
func IsNoTag(err error) bool {
	return errors.Is(err, ErrNoTag)
}
