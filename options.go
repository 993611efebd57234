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

// ReaderOption configures a Reader
type ReaderOption func(*readerConfig)

type readerConfig struct {
	timeout     time.Duration
	retryConfig *RetryConfig
}

func defaultReaderConfig() *readerConfig {
	return &readerConfig{
		timeout:     1 * time.Second,
		retryConfig: DefaultRetryConfig(),
	}
}

// WithTimeout sets the per-command response deadline
func WithTimeout(timeout time.Duration) ReaderOption {
	return func(c *readerConfig) {
		c.timeout = timeout
	}
}

// WithRetryConfig sets the retry policy applied to transport commands
func WithRetryConfig(config *RetryConfig) ReaderOption {
	return func(c *readerConfig) {
		c.retryConfig = config
	}
}
