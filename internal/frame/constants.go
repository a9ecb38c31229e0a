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

// Package frame provides the wire format of the radio's vendor command and event frames
package frame

// Packet type markers - first byte of every frame
const (
	PacketTypeCommand = 0x01 // Host to radio command
	PacketTypeEvent   = 0x04 // Radio to host response or event
)

// Vendor code carried by command frames and echoed by responses (0xFC20, little-endian)
const (
	VendorCodeLo = 0x20
	VendorCodeHi = 0xFC
)

// Event codes - second byte of a received frame
const (
	EventCodeResponse = 0x0E // Command complete, carries the ACI opcode
	EventCodeVendor   = 0xFF // Vendor specific, carries an ACI event code
)

// ACIEventMarker is the first parameter byte of every vendor event
const ACIEventMarker = 0x01

// Frame size limits
const (
	MaxFrameSize      = 64                             // Largest command frame the radio accepts
	CommandHeaderSize = 6                              // type + vendor code + param len + opcode
	MaxParamLen       = MaxFrameSize - CommandHeaderSize // Opcode-specific parameter bytes
	HeaderSize        = 3                              // type + event code + param len
	ResponseRemainder = 6                              // num packets + vendor code + opcode + status
	EventRemainder    = 4                              // marker + event code + status
	MaxReceiveSize    = HeaderSize + 255               // Largest frame param_len can describe
)

// Fixed offsets inside a received frame
const (
	offType      = 0
	offEventCode = 1
	offParamLen  = 2

	offRespVendorLo = 4
	offRespVendorHi = 5
	offRespOpcode   = 6
	offRespStatus   = 8
	offRespPayload  = 9

	offEvtMarker  = 3
	offEvtCode    = 4
	offEvtStatus  = 6
	offEvtPayload = 7
)
