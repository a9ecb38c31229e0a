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

// Parse errors. Every rejected frame wraps exactly one of these.
var (
	ErrShortFrame     = errors.New("frame shorter than header")
	ErrPacketType     = errors.New("unexpected packet type")
	ErrLengthMismatch = errors.New("declared length does not match frame size")
	ErrEventCode      = errors.New("unknown event code")
	ErrVendorCode     = errors.New("unexpected vendor code")
	ErrEventMarker    = errors.New("unexpected ACI event marker")
	ErrShortParams    = errors.New("parameter length below packet header")
)

// Kind distinguishes a response to a command from an unsolicited event
type Kind uint8

const (
	// KindResponse is a command complete frame answering the outstanding command
	KindResponse Kind = iota + 1
	// KindEvent is an unsolicited vendor event
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindResponse:
		return "response"
	case KindEvent:
		return "event"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Packet is a validated view of one received frame.
//
// Payload aliases the slice passed to Parse and is only valid while that slice
// is not reused.
type Packet struct {
	Payload    []byte
	PayloadLen int
	Code       uint16 // ACI opcode for responses, ACI event code for events
	Kind       Kind
	EventCode  byte
	Status     byte
}

// Parse validates frm and decodes it into a Packet.
// Frames are never buffered for continuation: a short frame is an error.
func Parse(frm []byte) (Packet, error) {
	if len(frm) < HeaderSize {
		return Packet{}, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(frm))
	}
	if frm[offType] != PacketTypeEvent {
		return Packet{}, fmt.Errorf("%w: 0x%02X", ErrPacketType, frm[offType])
	}

	paramLen := int(frm[offParamLen])
	if paramLen != len(frm)-HeaderSize {
		return Packet{}, fmt.Errorf("%w: declared %d, received %d",
			ErrLengthMismatch, paramLen, len(frm)-HeaderSize)
	}

	switch frm[offEventCode] {
	case EventCodeResponse:
		return parseResponse(frm, paramLen)
	case EventCodeVendor:
		return parseEvent(frm, paramLen)
	default:
		return Packet{}, fmt.Errorf("%w: 0x%02X", ErrEventCode, frm[offEventCode])
	}
}

func parseResponse(frm []byte, paramLen int) (Packet, error) {
	if paramLen < ResponseRemainder {
		return Packet{}, fmt.Errorf("%w: response needs %d, got %d", ErrShortParams, ResponseRemainder, paramLen)
	}
	if frm[offRespVendorLo] != VendorCodeLo || frm[offRespVendorHi] != VendorCodeHi {
		return Packet{}, fmt.Errorf("%w: %02X %02X", ErrVendorCode, frm[offRespVendorLo], frm[offRespVendorHi])
	}

	return Packet{
		Kind:       KindResponse,
		EventCode:  EventCodeResponse,
		PayloadLen: paramLen - ResponseRemainder,
		Code:       binary.LittleEndian.Uint16(frm[offRespOpcode:]),
		Status:     frm[offRespStatus],
		Payload:    frm[offRespPayload:],
	}, nil
}

func parseEvent(frm []byte, paramLen int) (Packet, error) {
	if paramLen < EventRemainder {
		return Packet{}, fmt.Errorf("%w: event needs %d, got %d", ErrShortParams, EventRemainder, paramLen)
	}
	if frm[offEvtMarker] != ACIEventMarker {
		return Packet{}, fmt.Errorf("%w: 0x%02X", ErrEventMarker, frm[offEvtMarker])
	}

	return Packet{
		Kind:       KindEvent,
		EventCode:  EventCodeVendor,
		PayloadLen: paramLen - EventRemainder,
		Code:       binary.LittleEndian.Uint16(frm[offEvtCode:]),
		Status:     frm[offEvtStatus],
		Payload:    frm[offEvtPayload:],
	}, nil
}
