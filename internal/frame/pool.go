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

package frame

import "sync"

var receivePool = sync.Pool{
	New: func() any {
		buf := make([]byte, MaxReceiveSize)
		return &buf
	},
}

// GetBuffer returns a receive buffer able to hold any frame the radio can send.
// Return it with PutBuffer once nothing aliases it any more.
func GetBuffer() []byte {
	bufPtr, ok := receivePool.Get().(*[]byte)
	if !ok {
		return make([]byte, MaxReceiveSize)
	}
	return (*bufPtr)[:MaxReceiveSize]
}

// PutBuffer returns a buffer obtained from GetBuffer to the pool
func PutBuffer(buf []byte) {
	if cap(buf) < MaxReceiveSize {
		return
	}
	buf = buf[:MaxReceiveSize]
	receivePool.Put(&buf)
}
