// go-bleradio
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-bleradio.
//
// go-bleradio is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-bleradio is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-bleradio; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package monitor

import (
	"time"

	bleradio "github.com/ZaparooProject/go-bleradio"
)

// Activity is the state of a tracked link
type Activity int

const (
	LinkActive Activity = iota
	LinkIdle
)

func (a Activity) String() string {
	if a == LinkIdle {
		return "idle"
	}
	return "active"
}

// LinkState tracks one connection reported by the radio
type LinkState struct {
	ConnectedAt  time.Time
	LastActivity time.Time
	idleTimer    *time.Timer
	Peer         bleradio.BDAddr
	RxPackets    uint64
	TxPackets    uint64
	Handle       uint16
	Interval     uint16
	Role         bleradio.Role
	Activity     Activity
}

func stopTimer(timer *time.Timer) {
	if timer != nil {
		timer.Stop()
	}
}

// touch records traffic on the link and restarts its idle timer
func (ls *LinkState) touch(now time.Time, timeout time.Duration, onIdle func()) {
	ls.LastActivity = now
	ls.Activity = LinkActive
	stopTimer(ls.idleTimer)
	ls.idleTimer = nil
	if timeout > 0 && onIdle != nil {
		ls.idleTimer = time.AfterFunc(timeout, onIdle)
	}
}

// release stops the idle timer of a link that went away
func (ls *LinkState) release() {
	stopTimer(ls.idleTimer)
	ls.idleTimer = nil
}
