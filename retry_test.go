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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetryWithConfig(t *testing.T) {
	t.Parallel()

	t.Run("transient failure then success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := RetryWithConfig(context.Background(), fastRetryConfig(3), func() error {
			calls++
			if calls < 3 {
				return ErrTransportTimeout
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error aborts immediately", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := RetryWithConfig(context.Background(), fastRetryConfig(3), func() error {
			calls++
			return ErrNoTag
		})
		require.ErrorIs(t, err, ErrNoTag)
		assert.Equal(t, 1, calls)
	})

	t.Run("budget exhaustion returns last error", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := RetryWithConfig(context.Background(), fastRetryConfig(3), func() error {
			calls++
			return ErrChecksumMismatch
		})
		require.ErrorIs(t, err, ErrChecksumMismatch)
		assert.Equal(t, 3, calls)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := RetryWithConfig(ctx, fastRetryConfig(3), func() error {
			return ErrTransportTimeout
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestTransportWithRetry(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	calls := 0
	mock.ResponseFunc = func(_ byte, _ []byte) ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, NewTimeoutError("read", "mock")
		}
		return []byte{0x00, 0xAB}, nil
	}

	wrapped := NewTransportWithRetry(mock, fastRetryConfig(3))
	payload, err := wrapped.SendCommand(0x02, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xAB}, payload)
	assert.Equal(t, 2, calls)
}
