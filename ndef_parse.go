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
	"encoding/binary"
	"unicode/utf16"
)

// ParseNDEF decodes the NDEF message held in tag memory bytes: an NDEF TLV
// (tag 0x03) wrapping a sequence of records. It is tolerant of truncation:
// when the buffer runs out mid-record, the records decoded so far are
// returned. It returns (nil, nil) when the data holds no NDEF message.
func ParseNDEF(data []byte) (*NDEFMessage, error) {
	if len(data) < 2 {
		return nil, nil
	}

	pos := 0
	for pos < len(data) {
		switch data[pos] {
		case tlvNull:
			pos++
			continue
		case tlvTerminator:
			return nil, nil
		case tlvNDEF:
			length, hdrLen, ok := tlvLength(data[pos+1:])
			if !ok {
				return nil, nil
			}
			body := data[pos+1+hdrLen:]
			if length < len(body) {
				body = body[:length]
			}
			records := parseRecords(body)
			if len(records) == 0 {
				return nil, nil
			}
			return &NDEFMessage{Records: records}, nil
		default:
			// Unknown TLV: skip over its declared value
			length, hdrLen, ok := tlvLength(data[pos+1:])
			if !ok {
				return nil, nil
			}
			pos += 1 + hdrLen + length
		}
	}
	return nil, nil
}

// tlvLength decodes a TLV length field: a single byte, or 0xFF followed by
// a 2-byte big-endian extended length. Returns the value length, the number
// of length bytes consumed, and whether decoding succeeded.
func tlvLength(data []byte) (length, hdrLen int, ok bool) {
	if len(data) < 1 {
		return 0, 0, false
	}
	if data[0] != 0xFF {
		return int(data[0]), 1, true
	}
	if len(data) < 3 {
		return 0, 0, false
	}
	return int(binary.BigEndian.Uint16(data[1:3])), 3, true
}

// DeclaredTLVTotal inspects the start of tag memory and returns the total
// number of bytes (TLV header included) the full NDEF message occupies, so
// a caller can keep reading blocks until it holds the whole message. It
// returns (0, false) when the data does not start with an NDEF TLV.
func DeclaredTLVTotal(data []byte) (int, bool) {
	if len(data) < 2 || data[0] != tlvNDEF {
		return 0, false
	}
	length, hdrLen, ok := tlvLength(data[1:])
	if !ok {
		return 0, false
	}
	return 1 + hdrLen + length, true
}

// parseRecords decodes consecutive NDEF records until the buffer runs out
// or a record carries the message-end flag.
func parseRecords(data []byte) []NDEFRecord {
	var records []NDEFRecord
	pos := 0

	for pos < len(data) {
		rec, next, ok := parseRecord(data, pos)
		if !ok {
			break
		}
		records = append(records, rec)
		if data[pos]&ndefFlagME != 0 {
			break
		}
		pos = next
	}
	return records
}

// parseRecord decodes one record starting at pos. The field order is
// header, type length, payload length, optional ID length and ID bytes,
// type bytes, payload bytes.
func parseRecord(data []byte, pos int) (NDEFRecord, int, bool) {
	var rec NDEFRecord

	if pos >= len(data) {
		return rec, 0, false
	}
	header := data[pos]
	rec.TNF = header & ndefTNFMsk
	pos++

	if pos >= len(data) {
		return rec, 0, false
	}
	typeLen := int(data[pos])
	pos++

	var payloadLen int
	if header&ndefFlagSR != 0 {
		if pos >= len(data) {
			return rec, 0, false
		}
		payloadLen = int(data[pos])
		pos++
	} else {
		if pos+4 > len(data) {
			return rec, 0, false
		}
		payloadLen = int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
	}

	if header&ndefFlagIL != 0 {
		if pos >= len(data) {
			return rec, 0, false
		}
		idLen := int(data[pos])
		pos++
		if pos+idLen > len(data) {
			return rec, 0, false
		}
		rec.ID = append([]byte(nil), data[pos:pos+idLen]...)
		pos += idLen
	}

	if pos+typeLen > len(data) {
		return rec, 0, false
	}
	rec.Type = string(data[pos : pos+typeLen])
	pos += typeLen

	if pos+payloadLen > len(data) {
		return rec, 0, false
	}
	rec.Payload = append([]byte(nil), data[pos:pos+payloadLen]...)
	pos += payloadLen

	if rec.TNF == TNFWellKnown {
		switch rec.Type {
		case "U":
			rec.URI = decodeURI(rec.Payload)
		case "T":
			rec.Text = decodeText(rec.Payload)
		}
	}

	return rec, pos, true
}

// decodeURI expands a "U" record payload: prefix table index + suffix
func decodeURI(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}
	prefix := ""
	if idx := int(payload[0]); idx < len(uriPrefixes) {
		prefix = uriPrefixes[idx]
	}
	return prefix + string(payload[1:])
}

// decodeText decodes a "T" record payload: status byte, language code,
// then text in UTF-8 or UTF-16 as the status byte indicates.
func decodeText(payload []byte) *TextRecord {
	if len(payload) == 0 {
		return nil
	}
	status := payload[0]
	langLen := int(status & textStatusLangMask)
	if 1+langLen > len(payload) {
		return nil
	}

	lang := string(payload[1 : 1+langLen])
	textBytes := payload[1+langLen:]

	if status&textStatusUTF16 == 0 {
		return &TextRecord{Language: lang, Encoding: "utf-8", Text: string(textBytes)}
	}
	return &TextRecord{Language: lang, Encoding: "utf-16", Text: decodeUTF16(textBytes)}
}

// decodeUTF16 decodes UTF-16 text, honoring a byte-order mark when present
// and defaulting to little-endian otherwise.
func decodeUTF16(b []byte) string {
	if len(b) < 2 {
		return ""
	}

	bigEndian := false
	if b[0] == 0xFE && b[1] == 0xFF {
		bigEndian = true
		b = b[2:]
	} else if b[0] == 0xFF && b[1] == 0xFE {
		b = b[2:]
	}

	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		if bigEndian {
			units = append(units, binary.BigEndian.Uint16(b[i:i+2]))
		} else {
			units = append(units, binary.LittleEndian.Uint16(b[i:i+2]))
		}
	}
	return string(utf16.Decode(units))
}
