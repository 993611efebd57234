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
	"strings"
	"testing"

	gondef "github.com/hsanjuan/go-ndef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The builder emits a complete tag image: TLV wrapper, terminator and
// block-aligned padding, so a locally written tag reads back through
// ParseNDEF without external framing.
func TestBuildNDEFEmitsTLVWrapper(t *testing.T) {
	t.Parallel()

	data, err := BuildNDEF("https://example.com", "")
	require.NoError(t, err)

	assert.Equal(t, byte(0x03), data[0], "first byte is the NDEF TLV tag")
	assert.Zero(t, len(data)%16, "result is block aligned")

	msgLen := int(data[1])
	assert.Equal(t, byte(0xFE), data[2+msgLen], "terminator follows the message")
	for _, b := range data[2+msgLen+1:] {
		assert.Equal(t, byte(0), b, "padding is zeros")
	}
}

func TestBuildNDEFRequiresContent(t *testing.T) {
	t.Parallel()

	_, err := BuildNDEF("", "")
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBuildNDEFTextRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
	}{
		{name: "ascii", text: "hello world"},
		{name: "unicode", text: "héllo wörld ☺"},
		{name: "empty-ish", text: " "},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := BuildNDEF("", tt.text)
			require.NoError(t, err)

			msg, err := ParseNDEF(data)
			require.NoError(t, err)
			require.NotNil(t, msg)

			text := msg.FirstText()
			require.NotNil(t, text)
			assert.Equal(t, "en", text.Language)
			assert.Equal(t, tt.text, text.Text)
		})
	}
}

func TestBuildNDEFURLRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		url  string
	}{
		{name: "https www", url: "https://www.example.com/page"},
		{name: "https bare", url: "https://media.local/track/42"},
		{name: "http bare", url: "http://example.com"},
		{name: "mailto", url: "mailto:kids@example.com"},
		{name: "unprefixed scheme", url: "spotify:track:abc123"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := BuildNDEF(tt.url, "")
			require.NoError(t, err)

			msg, err := ParseNDEF(data)
			require.NoError(t, err)
			require.NotNil(t, msg)
			assert.Equal(t, tt.url, msg.FirstURI())
		})
	}
}

func TestBuildNDEFURLCompressesPrefix(t *testing.T) {
	t.Parallel()

	data, err := BuildNDEF("https://www.example.com", "")
	require.NoError(t, err)

	// The record payload starts after TLV(2) + record header(3) + type(1);
	// prefix index 0x02 is "https://www." so the suffix must not repeat it.
	payload := data[6:]
	assert.Equal(t, byte(0x02), payload[0])
	assert.True(t, strings.HasPrefix(string(payload[1:]), "example.com"))
}

func TestBuildNDEFBothRecords(t *testing.T) {
	t.Parallel()

	data, err := BuildNDEF("https://media.local/x", "Track title")
	require.NoError(t, err)

	msg, err := ParseNDEF(data)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Len(t, msg.Records, 2)

	// URL record comes first, then the text record.
	assert.Equal(t, "U", msg.Records[0].Type)
	assert.Equal(t, "https://media.local/x", msg.Records[0].URI)
	assert.Equal(t, "T", msg.Records[1].Type)
	require.NotNil(t, msg.Records[1].Text)
	assert.Equal(t, "Track title", msg.Records[1].Text.Text)
}

func TestBuildNDEFRejectsOversizedPayload(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 300)
	_, err := BuildNDEF("https://"+long, "")
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = BuildNDEF("", long)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

// Cross-check the builder against the go-ndef reference decoder.
func TestBuildNDEFAgainstReferenceDecoder(t *testing.T) {
	t.Parallel()

	data, err := BuildNDEF("https://www.example.com/x", "")
	require.NoError(t, err)

	msgLen := int(data[1])
	raw := data[2 : 2+msgLen]

	ref := &gondef.Message{}
	_, err = ref.Unmarshal(raw)
	require.NoError(t, err)
	assert.Equal(t, "https://www.example.com/x", ref.String())
}
