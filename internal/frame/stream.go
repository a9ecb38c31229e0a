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

// Split is a bufio.SplitFunc that cuts a raw byte stream from the radio into
// complete received frames.
//
// Bytes preceding a packet type marker are discarded so the reader resyncs
// after line noise. A frame is only returned once all 3+param_len bytes have
// arrived; the token is a fresh copy owned by the caller.
func Split(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) && data[start] != PacketTypeEvent {
		start++
	}
	if start > 0 {
		// Drop the noise before looking for a full frame
		return start, nil, nil
	}

	if len(data) < HeaderSize {
		if atEOF {
			return len(data), nil, nil
		}
		return 0, nil, nil
	}

	total := HeaderSize + int(data[offParamLen])
	if len(data) < total {
		if atEOF {
			return len(data), nil, nil
		}
		return 0, nil, nil
	}

	tok := make([]byte, total)
	copy(tok, data[:total])
	return total, tok, nil
}
