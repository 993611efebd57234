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
	"fmt"
	"strings"
)

// maxShortRecordPayload is the payload ceiling for a short NDEF record
const maxShortRecordPayload = 255

// BuildNDEF encodes url and/or text into tag-ready bytes: the records are
// wrapped in an NDEF TLV, terminated, and zero-padded to a block boundary
// so the result can be written starting at the first user block and read
// back by ParseNDEF as-is. At least one of url and text must be non-empty.
func BuildNDEF(url, text string) ([]byte, error) {
	if url == "" && text == "" {
		return nil, fmt.Errorf("%w: need a url or text to encode", ErrInvalidParameter)
	}

	var payloads [][]byte
	var types []string

	if url != "" {
		payload, err := encodeURI(url)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)
		types = append(types, "U")
	}
	if text != "" {
		payload, err := encodeText("en", text)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)
		types = append(types, "T")
	}

	var msg []byte
	for i, payload := range payloads {
		header := TNFWellKnown | ndefFlagSR
		if i == 0 {
			header |= ndefFlagMB
		}
		if i == len(payloads)-1 {
			header |= ndefFlagME
		}
		msg = append(msg, header, byte(len(types[i])), byte(len(payload)))
		msg = append(msg, types[i]...)
		msg = append(msg, payload...)
	}

	wrapped := wrapTLV(msg)
	wrapped = append(wrapped, tlvTerminator)
	if rem := len(wrapped) % blockSize; rem != 0 {
		wrapped = append(wrapped, make([]byte, blockSize-rem)...)
	}
	return wrapped, nil
}

// wrapTLV prepends the NDEF TLV header, using the extended length form
// when the message exceeds 254 bytes
func wrapTLV(msg []byte) []byte {
	out := make([]byte, 0, len(msg)+4)
	out = append(out, tlvNDEF)
	if len(msg) < 0xFF {
		out = append(out, byte(len(msg)))
	} else {
		out = append(out, 0xFF, byte(len(msg)>>8), byte(len(msg)))
	}
	return append(out, msg...)
}

// encodeURI builds a "U" record payload, compressing the URL with the
// first table prefix that matches
func encodeURI(url string) ([]byte, error) {
	prefixIdx := byte(0)
	suffix := url
	for i := 1; i < len(uriPrefixes); i++ {
		if strings.HasPrefix(url, uriPrefixes[i]) {
			prefixIdx = byte(i)
			suffix = url[len(uriPrefixes[i]):]
			break
		}
	}

	if 1+len(suffix) > maxShortRecordPayload {
		return nil, fmt.Errorf("%w: url too long for a short record", ErrInvalidParameter)
	}

	payload := make([]byte, 0, 1+len(suffix))
	payload = append(payload, prefixIdx)
	return append(payload, suffix...), nil
}

// encodeText builds a "T" record payload: UTF-8 with the given language code
func encodeText(lang, text string) ([]byte, error) {
	if len(lang) > int(textStatusLangMask) {
		return nil, fmt.Errorf("%w: language code too long", ErrInvalidParameter)
	}
	if 1+len(lang)+len(text) > maxShortRecordPayload {
		return nil, fmt.Errorf("%w: text too long for a short record", ErrInvalidParameter)
	}

	payload := make([]byte, 0, 1+len(lang)+len(text))
	payload = append(payload, byte(len(lang)))
	payload = append(payload, lang...)
	return append(payload, text...), nil
}
