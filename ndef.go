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

// NDEF Type Name Format values
const (
	TNFEmpty       byte = 0x00
	TNFWellKnown   byte = 0x01
	TNFMedia       byte = 0x02
	TNFAbsoluteURI byte = 0x03
	TNFExternal    byte = 0x04
	TNFUnknown     byte = 0x05
	TNFUnchanged   byte = 0x06
)

// NDEF record header flag bits
const (
	ndefFlagMB byte = 0x80 // message begin
	ndefFlagME byte = 0x40 // message end
	ndefFlagCF byte = 0x20 // chunked
	ndefFlagSR byte = 0x10 // short record
	ndefFlagIL byte = 0x08 // ID length present
	ndefTNFMsk byte = 0x07
)

// TLV tags used in the tag memory layout
const (
	tlvNull       byte = 0x00
	tlvNDEF       byte = 0x03
	tlvTerminator byte = 0xFE
)

// textStatusUTF16 marks a UTF-16 encoded Text record payload
const textStatusUTF16 byte = 0x80

// textStatusLangMask extracts the language-code length from the status byte
const textStatusLangMask byte = 0x3F

// TextRecord is the decoded payload of a well-known "T" record
type TextRecord struct {
	// Language is the IANA language code, e.g. "en"
	Language string
	// Encoding is the wire encoding, "utf-8" or "utf-16"
	Encoding string
	// Text is the decoded text content
	Text string
}

// NDEFRecord is a single NDEF record
type NDEFRecord struct {
	// Type is the record type, e.g. "T" or "U" for well-known records
	Type string
	// URI is the decoded URI for well-known "U" records, empty otherwise
	URI string
	// ID is the optional record identifier
	ID []byte
	// Payload is the raw record payload
	Payload []byte
	// Text is the decoded content for well-known "T" records, nil otherwise
	Text *TextRecord
	// TNF is the 3-bit type name format from the record header
	TNF byte
}

// NDEFMessage is a parsed NDEF message
type NDEFMessage struct {
	Records []NDEFRecord
}

// FirstURI returns the URI of the first "U" record, or "" when none exists
func (m *NDEFMessage) FirstURI() string {
	for i := range m.Records {
		if m.Records[i].URI != "" {
			return m.Records[i].URI
		}
	}
	return ""
}

// FirstText returns the first decoded "T" record, or nil when none exists
func (m *NDEFMessage) FirstText() *TextRecord {
	for i := range m.Records {
		if m.Records[i].Text != nil {
			return m.Records[i].Text
		}
	}
	return nil
}

// uriPrefixes is the NFC Forum URI record prefix table. The payload's first
// byte indexes this table; the decoded URI is the prefix plus the suffix
// that follows.
var uriPrefixes = [36]string{
	0x00: "",
	0x01: "http://www.",
	0x02: "https://www.",
	0x03: "http://",
	0x04: "https://",
	0x05: "tel:",
	0x06: "mailto:",
	0x07: "ftp://anonymous:anonymous@",
	0x08: "ftp://ftp.",
	0x09: "ftps://",
	0x0A: "sftp://",
	0x0B: "smb://",
	0x0C: "nfs://",
	0x0D: "ftp://",
	0x0E: "dav://",
	0x0F: "news:",
	0x10: "telnet://",
	0x11: "imap:",
	0x12: "rtsp://",
	0x13: "urn:",
	0x14: "pop:",
	0x15: "sip:",
	0x16: "sips:",
	0x17: "tftp:",
	0x18: "btspp://",
	0x19: "btl2cap://",
	0x1A: "btgoep://",
	0x1B: "tcpobex://",
	0x1C: "irdaobex://",
	0x1D: "file://",
	0x1E: "urn:epc:id:",
	0x1F: "urn:epc:tag:",
	0x20: "urn:epc:pat:",
	0x21: "urn:epc:raw:",
	0x22: "urn:epc:",
	0x23: "urn:nfc:",
}
