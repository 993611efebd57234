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
	"time"
)

// TagCallback is invoked once per distinct tag placement event
type TagCallback func(tag *DetectedTag)

// ContinuousPoll polls for tags at the given interval until ctx is
// cancelled. The callback fires exactly once per distinct placement: when a
// tag appears whose UID differs from the last tag that triggered the
// callback. Re-reading the same tag on consecutive ticks is silent, as is
// removal; placing the same tag back after removal does not re-fire. Errors
// on a tick are logged and the loop keeps running.
func (c *Controller) ContinuousPoll(ctx context.Context, interval time.Duration, readNDEF bool, callback TagCallback) {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastUID string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		tag, err := c.PollForTag(readNDEF)
		if err != nil {
			debugf("continuous poll tick failed: %v", err)
			continue
		}
		if tag == nil {
			continue
		}
		if tag.UID == lastUID {
			continue
		}

		lastUID = tag.UID
		callback(tag)
	}
}
