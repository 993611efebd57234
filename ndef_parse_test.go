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

	gondef "github.com/hsanjuan/go-ndef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNDEFText(t *testing.T) {
	t.Parallel()

	// TLV(0x03, len) wrapping a single short Text record: "en" + "hello"
	data := []byte{
		0x03, 0x0C,
		0xD1, 0x01, 0x08, 'T',
		0x02, 'e', 'n', 'h', 'e', 'l', 'l', 'o',
		0xFE,
	}

	msg, err := ParseNDEF(data)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Len(t, msg.Records, 1)

	rec := msg.Records[0]
	assert.Equal(t, TNFWellKnown, rec.TNF)
	assert.Equal(t, "T", rec.Type)
	require.NotNil(t, rec.Text)
	assert.Equal(t, "en", rec.Text.Language)
	assert.Equal(t, "hello", rec.Text.Text)
}

func TestParseNDEFURIPrefixes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		want   string
		prefix byte
		suffix string
	}{
		{
			name:   "https www",
			prefix: 0x02,
			suffix: "example.com",
			want:   "https://www.example.com",
		},
		{
			name:   "no prefix",
			prefix: 0x00,
			suffix: "spotify:track:abc",
			want:   "spotify:track:abc",
		},
		{
			name:   "mailto",
			prefix: 0x06,
			suffix: "kids@example.com",
			want:   "mailto:kids@example.com",
		},
		{
			name:   "index beyond table treated as no prefix",
			prefix: 0x7F,
			suffix: "x",
			want:   "x",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			payload := append([]byte{tt.prefix}, tt.suffix...)
			record := []byte{0xD1, 0x01, byte(len(payload)), 'U'}
			record = append(record, payload...)
			data := append([]byte{0x03, byte(len(record))}, record...)

			msg, err := ParseNDEF(data)
			require.NoError(t, err)
			require.NotNil(t, msg)
			require.Len(t, msg.Records, 1)
			assert.Equal(t, tt.want, msg.Records[0].URI)
		})
	}
}

func TestParseNDEFSkipsNullTLVs(t *testing.T) {
	t.Parallel()

	data := []byte{
		0x00, 0x00, 0x00,
		0x03, 0x08,
		0xD1, 0x01, 0x04, 'T', 0x02, 'e', 'n', 'x',
		0xFE,
	}

	msg, err := ParseNDEF(data)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Len(t, msg.Records, 1)
	assert.Equal(t, "x", msg.Records[0].Text.Text)
}

func TestParseNDEFTruncatedStopsCleanly(t *testing.T) {
	t.Parallel()

	// Two records declared, buffer cut mid-second-record: the first record
	// is still returned.
	first := []byte{0x91, 0x01, 0x04, 'T', 0x02, 'e', 'n', 'a'}
	second := []byte{0x51, 0x01, 0x20, 'T'} // payload length 32, missing
	body := append(append([]byte{}, first...), second...)
	data := append([]byte{0x03, byte(len(body) + 32)}, body...)

	msg, err := ParseNDEF(data)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Len(t, msg.Records, 1)
	assert.Equal(t, "a", msg.Records[0].Text.Text)
}

func TestParseNDEFNoMessage(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "single byte", data: []byte{0x03}},
		{name: "all zeros", data: make([]byte, 16)},
		{name: "terminator first", data: []byte{0xFE, 0x03, 0x02}},
		{name: "empty message", data: []byte{0x03, 0x00, 0xFE}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg, err := ParseNDEF(tt.data)
			require.NoError(t, err)
			assert.Nil(t, msg)
		})
	}
}

func TestParseNDEFExtendedLength(t *testing.T) {
	t.Parallel()

	// Build a >254 byte message so the TLV needs the 0xFF extended form.
	suffix := make([]byte, 300)
	for i := range suffix {
		suffix[i] = 'a'
	}
	payload := append([]byte{0x04}, suffix...) // https:// prefix

	record := []byte{0xC1, 0x01} // MB|ME, no SR
	record = append(record, 0x00, 0x00, 0x01, 0x2D) // 4-byte payload length (301)
	record = append(record, 'U')
	record = append(record, payload...)

	data := []byte{0x03, 0xFF, byte(len(record) >> 8), byte(len(record))}
	data = append(data, record...)

	total, ok := DeclaredTLVTotal(data)
	require.True(t, ok)
	assert.Equal(t, len(data), total)

	msg, err := ParseNDEF(data)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Len(t, msg.Records, 1)
	assert.Equal(t, "https://"+string(suffix), msg.Records[0].URI)
}

func TestParseNDEFRecordWithID(t *testing.T) {
	t.Parallel()

	// IL set: the ID length and ID bytes sit between the payload length
	// and the type bytes.
	record := []byte{
		0xD9,      // MB|ME|SR|IL, well-known
		0x01,      // type length
		0x04,      // payload length
		0x02,      // ID length
		'i', 'd',  // ID
		'T',       // type
		0x02, 'e', 'n', // text status + lang
		'z',
	}
	data := append([]byte{0x03, byte(len(record))}, record...)

	msg, err := ParseNDEF(data)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Len(t, msg.Records, 1)
	assert.Equal(t, []byte("id"), msg.Records[0].ID)
	assert.Equal(t, "z", msg.Records[0].Text.Text)
}

func TestParseNDEFUTF16Text(t *testing.T) {
	t.Parallel()

	// Status byte 0x82: UTF-16, 2-byte language code. Text "hi" encoded
	// little-endian with BOM.
	payload := []byte{0x82, 'e', 'n', 0xFF, 0xFE, 'h', 0x00, 'i', 0x00}
	record := []byte{0xD1, 0x01, byte(len(payload)), 'T'}
	record = append(record, payload...)
	data := append([]byte{0x03, byte(len(record))}, record...)

	msg, err := ParseNDEF(data)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.NotNil(t, msg.Records[0].Text)
	assert.Equal(t, "hi", msg.Records[0].Text.Text)
	assert.Equal(t, "en", msg.Records[0].Text.Language)
	assert.Equal(t, "utf-16", msg.Records[0].Text.Encoding)
}

// Cross-check the parser against the go-ndef reference encoder.
func TestParseNDEFAgainstReferenceEncoder(t *testing.T) {
	t.Parallel()

	ref := gondef.NewTextMessage("reference text", "en")
	raw, err := ref.Marshal()
	require.NoError(t, err)

	data := append([]byte{0x03, byte(len(raw))}, raw...)
	data = append(data, 0xFE)

	msg, err := ParseNDEF(data)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Len(t, msg.Records, 1)
	require.NotNil(t, msg.Records[0].Text)
	assert.Equal(t, "reference text", msg.Records[0].Text.Text)
	assert.Equal(t, "en", msg.Records[0].Text.Language)
}
