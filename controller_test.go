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
	"testing"

	"github.com/jfaithedu/go-nfchat/internal/frame"
	"github.com/jfaithedu/go-nfchat/internal/hattest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestController builds an initialized Controller whose transport
// answers from respond.
func newTestController(t *testing.T, respond func(cmd byte, args []byte) ([]byte, error)) (*Controller, *MockTransport) {
	t.Helper()

	mock := NewMockTransport()
	mock.ResponseFunc = respond

	ctrl, err := NewController(mock, WithRetryConfig(&RetryConfig{MaxAttempts: 1}))
	require.NoError(t, err)
	require.NoError(t, ctrl.Initialize())
	return ctrl, mock
}

// placeTag polls until the controller has seen the virtual tag.
func placeTag(t *testing.T, ctrl *Controller) *DetectedTag {
	t.Helper()
	tag, err := ctrl.PollForTag(false)
	require.NoError(t, err)
	require.NotNil(t, tag)
	return tag
}

// writesTo counts write commands addressed to one block.
func writesTo(mock *MockTransport, block byte) int {
	n := 0
	for _, call := range mock.Calls() {
		if call.Cmd == frame.CmdWriteBlock && len(call.Args) > 0 && call.Args[0] == block {
			n++
		}
	}
	return n
}

func TestInitializeFailureReturnsError(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.ResponseFunc = func(_ byte, _ []byte) ([]byte, error) {
		return []byte{frame.RespError, 0x01}, nil
	}

	ctrl, err := NewController(mock, WithRetryConfig(&RetryConfig{MaxAttempts: 1}))
	require.NoError(t, err)

	err = ctrl.Initialize()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHardware)
}

func TestHardwareInfo(t *testing.T) {
	t.Parallel()

	vt := hattest.NewNTAG215(ntagUID)
	ctrl, _ := newTestController(t, vt.Respond)

	info := ctrl.HardwareInfo()
	assert.Equal(t, TransportMock, info.Bus)
	assert.Equal(t, "mock", info.Path)
	assert.Equal(t, "1.2", info.FirmwareVersion)
	assert.True(t, info.Connected)
}

func TestWriteTagDataVerifyRetry(t *testing.T) {
	t.Parallel()

	t.Run("mismatches then succeeds on third attempt", func(t *testing.T) {
		t.Parallel()
		vt := hattest.NewMIFARE1K(mifareUID)
		ctrl, mock := newTestController(t, vt.Respond)
		placeTag(t, ctrl)

		vt.CorruptWritesTo(1, 2)
		err := ctrl.WriteTagData([]byte("HELLO"), 1, true, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, writesTo(mock, 1))
	})

	t.Run("persistent mismatch exhausts the budget", func(t *testing.T) {
		t.Parallel()
		vt := hattest.NewMIFARE1K(mifareUID)
		ctrl, mock := newTestController(t, vt.Respond)
		placeTag(t, ctrl)

		vt.CorruptWritesTo(1, 100)
		err := ctrl.WriteTagData([]byte("HELLO"), 1, true, 3)
		require.ErrorIs(t, err, ErrWrite)
		assert.Equal(t, 4, writesTo(mock, 1), "1 initial + 3 retries")
	})

	t.Run("tag leaving mid-loop aborts immediately", func(t *testing.T) {
		t.Parallel()
		vt := hattest.NewMIFARE1K(mifareUID)
		ctrl, _ := newTestController(t, vt.Respond)
		placeTag(t, ctrl)

		vt.SetPresent(false)
		err := ctrl.WriteTagData([]byte("HELLO"), 1, true, 3)
		require.ErrorIs(t, err, ErrNoTag)
	})
}

func TestWriteTagDataRejectsOversizedData(t *testing.T) {
	t.Parallel()

	vt := hattest.NewMIFARE1K(mifareUID)
	ctrl, _ := newTestController(t, vt.Respond)
	placeTag(t, ctrl)

	err := ctrl.WriteTagData(make([]byte, 17), 1, true, 3)
	require.ErrorIs(t, err, ErrWrite)
}

func TestWriteThenReadBlock(t *testing.T) {
	t.Parallel()

	vt := hattest.NewMIFARE1K(mifareUID)
	ctrl, _ := newTestController(t, vt.Respond)
	placeTag(t, ctrl)

	require.NoError(t, ctrl.WriteTagData([]byte("HELLO"), 1, true, 3))

	data, err := ctrl.ReadTagData(1)
	require.NoError(t, err)
	assert.Equal(t, append([]byte("HELLO"), make([]byte, 11)...), data)
}

func TestPollForTagWithNDEF(t *testing.T) {
	t.Parallel()

	t.Run("tag with NDEF data", func(t *testing.T) {
		t.Parallel()
		vt := hattest.NewNTAG215(ntagUID)
		seeded, err := BuildNDEF("https://media.local/track/7", "")
		require.NoError(t, err)
		vt.LoadNDEF(seeded)

		ctrl, _ := newTestController(t, vt.Respond)
		tag, err := ctrl.PollForTag(true)
		require.NoError(t, err)
		require.NotNil(t, tag)
		require.NotNil(t, tag.Message)
		assert.Equal(t, "https://media.local/track/7", tag.Message.FirstURI())
	})

	t.Run("NDEF failure is swallowed", func(t *testing.T) {
		t.Parallel()
		vt := hattest.NewNTAG215(ntagUID)

		ctrl, _ := newTestController(t, vt.Respond)
		tag, err := ctrl.PollForTag(true)
		require.NoError(t, err)
		require.NotNil(t, tag)
		assert.Nil(t, tag.Message, "blank tag yields UID without a message")
	})

	t.Run("no tag present", func(t *testing.T) {
		t.Parallel()
		vt := hattest.NewNTAG215(ntagUID)
		vt.SetPresent(false)

		ctrl, _ := newTestController(t, vt.Respond)
		tag, err := ctrl.PollForTag(false)
		require.NoError(t, err)
		assert.Nil(t, tag)
	})
}

func TestReadNDEFDataAccumulatesBlocks(t *testing.T) {
	t.Parallel()

	vt := hattest.NewNTAG215(ntagUID)
	url := "https://media.local/playlists/summer-road-trip/track/42"
	seeded, err := BuildNDEF(url, "Summer Road Trip")
	require.NoError(t, err)
	require.Greater(t, len(seeded), 16, "message must span multiple blocks")
	vt.LoadNDEF(seeded)

	ctrl, _ := newTestController(t, vt.Respond)
	placeTag(t, ctrl)

	msg, err := ctrl.ReadNDEFData()
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, url, msg.FirstURI())

	text := msg.FirstText()
	require.NotNil(t, text)
	assert.Equal(t, "Summer Road Trip", text.Text)
}

func TestWriteNDEFDataRoundTrip(t *testing.T) {
	t.Parallel()

	vt := hattest.NewNTAG215(ntagUID)
	ctrl, _ := newTestController(t, vt.Respond)
	placeTag(t, ctrl)

	require.NoError(t, ctrl.WriteNDEFData("https://media.local/albums/9", "Bedtime Songs"))

	msg, err := ctrl.ReadNDEFData()
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "https://media.local/albums/9", msg.FirstURI())
	require.NotNil(t, msg.FirstText())
	assert.Equal(t, "Bedtime Songs", msg.FirstText().Text)
}

func TestWriteNDEFURI(t *testing.T) {
	t.Parallel()

	vt := hattest.NewNTAG215(ntagUID)
	ctrl, _ := newTestController(t, vt.Respond)
	placeTag(t, ctrl)

	require.NoError(t, ctrl.WriteNDEFURI("https://media.local/x"))

	msg, err := ctrl.ReadNDEFData()
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "https://media.local/x", msg.FirstURI())
	assert.Nil(t, msg.FirstText())
}
