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

package bleradio

import (
	"encoding/binary"
	"fmt"
)

// ResponseData receives the payload of a successful response. A destination is
// registered when its command is issued and decoded at most once.
type ResponseData interface {
	decodeResponse(payload []byte) error
}

// statusDecoder is implemented by destinations whose value is carried by the
// status byte rather than the payload
type statusDecoder interface {
	decodeStatus(status byte) (Event, bool)
}

func lengthError(what string, want, got int) error {
	return fmt.Errorf("%w: %s wants %d bytes, got %d", ErrProcessing, what, want, got)
}

// RawResponse copies the payload as is. The payload must be exactly
// len(Data) bytes; N is set to the number of bytes copied.
type RawResponse struct {
	Data []byte
	N    int
}

func (r *RawResponse) decodeResponse(payload []byte) error {
	if len(payload) != len(r.Data) {
		return lengthError("raw response", len(r.Data), len(payload))
	}
	r.N = copy(r.Data, payload)
	return nil
}

// ControllerVersion is returned by CoreGetControllerVersion
type ControllerVersion struct {
	ManufacturerID uint16
	LMPSubVersion  uint16
}

func (v *ControllerVersion) decodeResponse(payload []byte) error {
	if len(payload) != 4 {
		return lengthError("controller version", 4, len(payload))
	}
	v.ManufacturerID = binary.LittleEndian.Uint16(payload[0:2])
	v.LMPSubVersion = binary.LittleEndian.Uint16(payload[2:4])
	return nil
}

// BDAddress is returned by GAPGetLocalAddress
type BDAddress struct {
	Address BDAddr
	Type    AddressType
}

func (a *BDAddress) decodeResponse(payload []byte) error {
	if len(payload) != 1+len(a.Address) {
		return lengthError("device address", 1+len(a.Address), len(payload))
	}
	a.Type = AddressType(payload[0])
	copy(a.Address[:], payload[1:])
	return nil
}

// AdvertisingData is returned by GAPGetAdvertisingData
type AdvertisingData struct {
	Data [MaxAdvDataLen]byte
	Len  uint8
}

// Bytes returns the valid part of the block
func (a *AdvertisingData) Bytes() []byte {
	return a.Data[:a.Len]
}

func (a *AdvertisingData) decodeResponse(payload []byte) error {
	if len(payload) < 1 {
		return lengthError("advertising data", 1, 0)
	}
	n := int(payload[0])
	if n > MaxAdvDataLen || len(payload) != 1+n {
		return lengthError("advertising data", 1+n, len(payload))
	}
	a.Len = uint8(n)
	copy(a.Data[:], payload[1:])
	return nil
}

// ConnectionList is returned by GAPGetConnectionList
type ConnectionList struct {
	Handles [MaxConnections]uint16
	Count   uint8
}

// List returns the valid handles
func (c *ConnectionList) List() []uint16 {
	return c.Handles[:c.Count]
}

func (c *ConnectionList) decodeResponse(payload []byte) error {
	if len(payload) < 1 {
		return lengthError("connection list", 1, 0)
	}
	n := int(payload[0])
	if n > MaxConnections || len(payload) != 1+2*n {
		return lengthError("connection list", 1+2*n, len(payload))
	}
	var handles [MaxConnections]uint16
	for i := 0; i < n; i++ {
		handles[i] = binary.LittleEndian.Uint16(payload[1+2*i:])
	}
	c.Handles = handles
	c.Count = uint8(n)
	return nil
}

// LinkSecurity is returned by SMPGetLinkSecurity
type LinkSecurity struct {
	Level SecurityLevel
}

func (s *LinkSecurity) decodeResponse(payload []byte) error {
	if len(payload) != 1 {
		return lengthError("link security", 1, len(payload))
	}
	s.Level = SecurityLevel(payload[0])
	return nil
}

// BondStatus is returned by SMPIsDeviceBonded. The radio answers through the
// status byte: success means bonded and failure means not bonded.
type BondStatus struct {
	Bonded bool
}

func (*BondStatus) decodeResponse([]byte) error {
	return nil
}

func (b *BondStatus) decodeStatus(status byte) (Event, bool) {
	switch status {
	case statusSuccess:
		b.Bonded = true
		return ResponseSuccess, true
	case statusFailure:
		b.Bonded = false
		return ResponseSuccess, true
	default:
		return EventNone, false
	}
}

// TestResult is returned by TestEnd
type TestResult struct {
	PacketCount uint16
}

func (t *TestResult) decodeResponse(payload []byte) error {
	if len(payload) != 2 {
		return lengthError("test result", 2, len(payload))
	}
	t.PacketCount = binary.LittleEndian.Uint16(payload)
	return nil
}

// RSSI is returned by GAPGetConnectionRSSI
type RSSI struct {
	Value int8
}

func (r *RSSI) decodeResponse(payload []byte) error {
	if len(payload) != 1 {
		return lengthError("rssi", 1, len(payload))
	}
	r.Value = int8(payload[0])
	return nil
}
