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
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responseFrame(opcode uint16, status byte, payload ...byte) []byte {
	frm := []byte{
		PacketTypeEvent, EventCodeResponse, byte(ResponseRemainder + len(payload)),
		0x01, VendorCodeLo, VendorCodeHi, byte(opcode), byte(opcode >> 8), status,
	}
	return append(frm, payload...)
}

func eventFrame(code uint16, status byte, payload ...byte) []byte {
	frm := []byte{
		PacketTypeEvent, EventCodeVendor, byte(EventRemainder + len(payload)),
		ACIEventMarker, byte(code), byte(code >> 8), status,
	}
	return append(frm, payload...)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params []byte
		want   []byte
		opcode uint16
	}{
		{
			name:   "no_params",
			opcode: 0x0001,
			want:   []byte{0x01, 0x20, 0xFC, 0x02, 0x01, 0x00},
		},
		{
			name:   "with_params",
			opcode: 0x0108,
			params: []byte{0xA0, 0x00},
			want:   []byte{0x01, 0x20, 0xFC, 0x04, 0x08, 0x01, 0xA0, 0x00},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Encode(tt.opcode, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_MaxParams(t *testing.T) {
	t.Parallel()

	frm, err := Encode(0x0405, make([]byte, MaxParamLen))
	require.NoError(t, err)
	assert.Len(t, frm, MaxFrameSize)

	_, err = Encode(0x0405, make([]byte, MaxParamLen+1))
	require.ErrorIs(t, err, ErrParamsTooLong)
}

func TestCommandOpcode_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, opcode := range []uint16{0x0001, 0x0109, 0x0204, 0x0303, 0x0405, 0xFFFF} {
		params := []byte{byte(opcode), 0x55, 0xAA}
		frm, err := Encode(opcode, params)
		require.NoError(t, err)

		got, ok := CommandOpcode(frm)
		require.True(t, ok)
		assert.Equal(t, opcode, got)
		assert.Equal(t, params, CommandParams(frm))
	}

	_, ok := CommandOpcode([]byte{0x04, 0x20, 0xFC, 0x02, 0x01, 0x00})
	assert.False(t, ok)
}

func TestParse_Response(t *testing.T) {
	t.Parallel()

	pkt, err := Parse(responseFrame(0x0001, 0x00, 0x01, 0x02, 0x03, 0x04))
	require.NoError(t, err)

	assert.Equal(t, KindResponse, pkt.Kind)
	assert.Equal(t, uint16(0x0001), pkt.Code)
	assert.Equal(t, byte(0x00), pkt.Status)
	assert.Equal(t, 4, pkt.PayloadLen)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, pkt.Payload)
}

func TestParse_Event(t *testing.T) {
	t.Parallel()

	pkt, err := Parse(eventFrame(0x0104, 0x00, 0xAA))
	require.NoError(t, err)

	assert.Equal(t, KindEvent, pkt.Kind)
	assert.Equal(t, uint16(0x0104), pkt.Code)
	assert.Equal(t, 1, pkt.PayloadLen)
	assert.Equal(t, []byte{0xAA}, pkt.Payload)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	badVendor := responseFrame(0x0001, 0x00)
	badVendor[5] = 0x00
	badMarker := eventFrame(0x0101, 0x00)
	badMarker[3] = 0x02

	tests := []struct {
		want error
		name string
		frm  []byte
	}{
		{name: "empty", frm: nil, want: ErrShortFrame},
		{name: "two_bytes", frm: []byte{0x04, 0x0E}, want: ErrShortFrame},
		{name: "command_type", frm: []byte{0x01, 0x0E, 0x00}, want: ErrPacketType},
		{name: "declared_too_long", frm: []byte{0x04, 0xFF, 0x05, 0x01}, want: ErrLengthMismatch},
		{name: "declared_too_short", frm: []byte{0x04, 0xFF, 0x00, 0x01}, want: ErrLengthMismatch},
		{name: "unknown_event_code", frm: []byte{0x04, 0x3E, 0x00}, want: ErrEventCode},
		{name: "response_vendor", frm: badVendor, want: ErrVendorCode},
		{name: "response_short", frm: []byte{0x04, 0x0E, 0x05, 0x01, 0x20, 0xFC, 0x01, 0x00}, want: ErrShortParams},
		{name: "event_marker", frm: badMarker, want: ErrEventMarker},
		{name: "event_short", frm: []byte{0x04, 0xFF, 0x03, 0x01, 0x01, 0x01}, want: ErrShortParams},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.frm)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

// Every declared length other than the received one must be rejected without
// reading past the slice.
func TestParse_LengthInvariant(t *testing.T) {
	t.Parallel()

	for actual := 0; actual <= 40; actual++ {
		for declared := 0; declared <= 255; declared++ {
			frm := make([]byte, HeaderSize+actual)
			frm[0] = PacketTypeEvent
			frm[1] = EventCodeVendor
			frm[2] = byte(declared)
			if actual > 0 {
				frm[3] = ACIEventMarker
			}

			_, err := Parse(frm)
			if declared != actual {
				require.ErrorIs(t, err, ErrLengthMismatch, "declared=%d actual=%d", declared, actual)
			}
		}
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	first := eventFrame(0x0001, 0x00, 0x07)
	second := responseFrame(0x0104, 0x00, 0x00, 1, 2, 3, 4, 5, 6)

	var stream bytes.Buffer
	stream.Write([]byte{0x00, 0xFF, 0x13}) // line noise
	stream.Write(first)
	stream.Write(second)
	stream.Write([]byte{0x04, 0xFF}) // truncated tail

	scanner := bufio.NewScanner(&stream)
	scanner.Split(Split)

	var got [][]byte
	for scanner.Scan() {
		got = append(got, scanner.Bytes())
	}
	require.NoError(t, scanner.Err())
	require.Len(t, got, 2)
	assert.Equal(t, first, got[0])
	assert.Equal(t, second, got[1])
}

func TestBufferPool(t *testing.T) {
	t.Parallel()

	buf := GetBuffer()
	assert.Len(t, buf, MaxReceiveSize)
	PutBuffer(buf)
	PutBuffer(make([]byte, 4)) // undersized buffers are ignored

	again := GetBuffer()
	assert.Len(t, again, MaxReceiveSize)
}
