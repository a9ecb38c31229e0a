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

// Package testing builds synthetic radio frames for tests
package testing

import (
	"encoding/binary"

	"github.com/ZaparooProject/go-bleradio/internal/frame"
)

// Status bytes used by tests
const (
	StatusSuccess      byte = 0x00
	StatusEventFollows byte = 0x01
	StatusFailure      byte = 0x02
	StatusBusy         byte = 0x03
	StatusInsufEnc     byte = 0x06
)

// BuildResponse creates a command complete frame answering opcode
func BuildResponse(opcode uint16, status byte, payload ...byte) []byte {
	frm := []byte{
		frame.PacketTypeEvent, frame.EventCodeResponse, byte(frame.ResponseRemainder + len(payload)),
		0x01, frame.VendorCodeLo, frame.VendorCodeHi,
	}
	frm = binary.LittleEndian.AppendUint16(frm, opcode)
	frm = append(frm, status)
	return append(frm, payload...)
}

// BuildSuccess creates a successful response to opcode
func BuildSuccess(opcode uint16, payload ...byte) []byte {
	return BuildResponse(opcode, StatusSuccess, payload...)
}

// BuildPending creates a response announcing that an event follows
func BuildPending(opcode uint16) []byte {
	return BuildResponse(opcode, StatusEventFollows)
}

// BuildEvent creates a vendor event frame
func BuildEvent(code uint16, status byte, payload ...byte) []byte {
	frm := []byte{
		frame.PacketTypeEvent, frame.EventCodeVendor, byte(frame.EventRemainder + len(payload)),
		frame.ACIEventMarker,
	}
	frm = binary.LittleEndian.AppendUint16(frm, code)
	frm = append(frm, status)
	return append(frm, payload...)
}

// BuildInquiryResult creates an inquiry result event carrying adv
func BuildInquiryResult(addrType byte, addr [6]byte, rssi int8, adv []byte) []byte {
	p := append([]byte{addrType}, addr[:]...)
	p = append(p, 0x00, byte(rssi), byte(len(adv)))
	p = append(p, adv...)
	return BuildEvent(0x0104, StatusSuccess, p...)
}

// BuildConnected creates a connected event
func BuildConnected(handle uint16, role, peerType byte, addr [6]byte, interval, latency, timeout uint16) []byte {
	p := binary.LittleEndian.AppendUint16(nil, handle)
	p = append(p, role, peerType)
	p = append(p, addr[:]...)
	p = binary.LittleEndian.AppendUint16(p, interval)
	p = binary.LittleEndian.AppendUint16(p, latency)
	p = binary.LittleEndian.AppendUint16(p, timeout)
	return BuildEvent(0x0101, StatusSuccess, p...)
}

// Corrupt returns a copy of frm with its declared parameter length off by one
func Corrupt(frm []byte) []byte {
	out := append([]byte(nil), frm...)
	if len(out) > 2 {
		out[2]++
	}
	return out
}
