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

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrParamsTooLong is returned when the parameters do not fit a single command frame
var ErrParamsTooLong = errors.New("command parameters exceed frame size")

// Encode builds a command frame for opcode carrying params.
//
// The returned slice is freshly allocated and owned by the caller.
func Encode(opcode uint16, params []byte) ([]byte, error) {
	if len(params) > MaxParamLen {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrParamsTooLong, len(params), MaxParamLen)
	}

	frm := make([]byte, CommandHeaderSize, CommandHeaderSize+len(params))
	frm[0] = PacketTypeCommand
	frm[1] = VendorCodeLo
	frm[2] = VendorCodeHi
	frm[3] = byte(2 + len(params))
	binary.LittleEndian.PutUint16(frm[4:6], opcode)
	return append(frm, params...), nil
}

// CommandOpcode extracts the opcode from an encoded command frame.
// ok is false if frm is not a command frame.
func CommandOpcode(frm []byte) (opcode uint16, ok bool) {
	if len(frm) < CommandHeaderSize || frm[0] != PacketTypeCommand ||
		frm[1] != VendorCodeLo || frm[2] != VendorCodeHi {
		return 0, false
	}
	if int(frm[3]) != len(frm)-4 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(frm[4:6]), true
}

// CommandParams returns the parameter bytes of an encoded command frame
func CommandParams(frm []byte) []byte {
	if len(frm) < CommandHeaderSize {
		return nil
	}
	return frm[CommandHeaderSize:]
}
