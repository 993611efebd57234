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
	"encoding/hex"
	"fmt"
	"strings"
)

// FormatUID renders a tag UID as colon-separated uppercase hex,
// e.g. "04:A3:1B:92:5C:66:80".
func FormatUID(uid []byte) string {
	if len(uid) == 0 {
		return ""
	}
	parts := make([]string, len(uid))
	for i, b := range uid {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}

// ParseUID parses a UID string in either colon-separated or plain hex form
func ParseUID(s string) ([]byte, error) {
	cleaned := strings.ReplaceAll(s, ":", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty UID", ErrInvalidParameter)
	}
	uid, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid UID %q: %v", ErrInvalidParameter, s, err)
	}
	return uid, nil
}
