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

import "time"

// TagType represents the type of detected NFC tag
type TagType string

// Tag type constants
const (
	TagTypeMIFAREClassic TagType = "MIFARE_CLASSIC"
	TagTypeNTAG215       TagType = "NTAG215"
	TagTypeUnknown       TagType = "UNKNOWN"
	TagTypeAny           TagType = "ANY"
)

// DetectedTag represents a tag found during polling
type DetectedTag struct {
	// DetectedAt is when the tag was first seen
	DetectedAt time.Time
	// UID is the tag's unique identifier in colon-hex form
	UID string
	// Type is the classified tag type
	Type TagType
	// UIDBytes is the raw UID
	UIDBytes []byte
	// Message holds the parsed NDEF message, when NDEF decoding was
	// requested and succeeded. Nil otherwise.
	Message *NDEFMessage
}
