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

// ACI event codes carried in vendor event frames
const (
	aciCoreHardwareError      uint16 = 0x0001
	aciCoreVendor             uint16 = 0x0002
	aciGAPConnected           uint16 = 0x0101
	aciGAPDisconnected        uint16 = 0x0102
	aciGAPConnectionUpdated   uint16 = 0x0103
	aciGAPInquiryResult       uint16 = 0x0104
	aciGAPInquiryComplete     uint16 = 0x0105
	aciGAPLocalName           uint16 = 0x0106
	aciGAPRandomAddress       uint16 = 0x0107
	aciSMPPairingRequest      uint16 = 0x0201
	aciSMPPasskeyRequest      uint16 = 0x0202
	aciSMPPasskeyDisplay      uint16 = 0x0203
	aciSMPPairingComplete     uint16 = 0x0204
	aciFindMeAlert            uint16 = 0x0401
	aciProximityLinkLossAlert uint16 = 0x0402
	aciDataExchangeRx         uint16 = 0x0403
	aciDataExchangeTxComplete uint16 = 0x0404
)

// eventDecoder decodes one event payload into a local value. apply commits
// that value and is only called when decode succeeded.
type eventDecoder interface {
	decode(payload []byte) error
	apply(c *caches)
}

type eventKind struct {
	newDecoder func() eventDecoder
	event      Event
}

var aciEvents = map[uint16]eventKind{
	aciCoreHardwareError:      {event: EventHardwareError, newDecoder: func() eventDecoder { return &hardwareErrorEvent{} }},
	aciCoreVendor:             {event: EventVendor, newDecoder: func() eventDecoder { return &vendorEvent{} }},
	aciGAPConnected:           {event: EventGAPConnected, newDecoder: func() eventDecoder { return &connectedEvent{} }},
	aciGAPDisconnected:        {event: EventGAPDisconnected, newDecoder: func() eventDecoder { return &disconnectedEvent{} }},
	aciGAPConnectionUpdated:   {event: EventGAPConnectionUpdated, newDecoder: func() eventDecoder { return &connectionUpdatedEvent{} }},
	aciGAPInquiryResult:       {event: EventGAPInquiryResult, newDecoder: func() eventDecoder { return &inquiryResultEvent{} }},
	aciGAPInquiryComplete:     {event: EventGAPInquiryComplete, newDecoder: func() eventDecoder { return emptyEvent{} }},
	aciGAPLocalName:           {event: EventGAPLocalName, newDecoder: func() eventDecoder { return &localNameEvent{} }},
	aciGAPRandomAddress:       {event: EventGAPRandomAddress, newDecoder: func() eventDecoder { return &randomAddressEvent{} }},
	aciSMPPairingRequest:      {event: EventSMPPairingRequest, newDecoder: func() eventDecoder { return &pairingRequestEvent{} }},
	aciSMPPasskeyRequest:      {event: EventSMPPasskeyRequest, newDecoder: func() eventDecoder { return &passkeyRequestEvent{} }},
	aciSMPPasskeyDisplay:      {event: EventSMPPasskeyDisplay, newDecoder: func() eventDecoder { return &passkeyDisplayEvent{} }},
	aciSMPPairingComplete:     {event: EventSMPPairingComplete, newDecoder: func() eventDecoder { return &pairingCompleteEvent{} }},
	aciFindMeAlert:            {event: EventFindMeAlert, newDecoder: func() eventDecoder { return &alertEvent{} }},
	aciProximityLinkLossAlert: {event: EventProximityLinkLossAlert, newDecoder: func() eventDecoder { return &alertEvent{linkLoss: true} }},
	aciDataExchangeRx:         {event: EventDataExchangeRx, newDecoder: func() eventDecoder { return &rxEvent{} }},
	aciDataExchangeTxComplete: {event: EventDataExchangeTxComplete, newDecoder: func() eventDecoder { return &txCompleteEvent{} }},
}

func exactLen(what string, payload []byte, n int) error {
	if len(payload) != n {
		return fmt.Errorf("%w: %s event wants %d bytes, got %d", ErrProcessing, what, n, len(payload))
	}
	return nil
}

type emptyEvent struct{}

func (emptyEvent) decode([]byte) error { return nil }
func (emptyEvent) apply(*caches)       {}

type hardwareErrorEvent struct {
	code byte
}

func (e *hardwareErrorEvent) decode(p []byte) error {
	if err := exactLen("hardware error", p, 1); err != nil {
		return err
	}
	e.code = p[0]
	return nil
}

func (e *hardwareErrorEvent) apply(c *caches) { c.hardwareError = e.code }

type vendorEvent struct {
	data   []byte
	opcode uint16
}

func (e *vendorEvent) decode(p []byte) error {
	if len(p) < 3 {
		return fmt.Errorf("%w: vendor event wants at least 3 bytes, got %d", ErrProcessing, len(p))
	}
	if int(p[2]) != len(p)-3 {
		return fmt.Errorf("%w: vendor event declares %d data bytes, carries %d", ErrProcessing, p[2], len(p)-3)
	}
	e.opcode = binary.LittleEndian.Uint16(p)
	e.data = append([]byte(nil), p[3:]...)
	return nil
}

func (e *vendorEvent) apply(c *caches) {
	c.vendor = VendorData{Opcode: e.opcode, Data: e.data}
}

type connectedEvent struct {
	info ConnectionInfo
}

func (e *connectedEvent) decode(p []byte) error {
	if err := exactLen("connected", p, 16); err != nil {
		return err
	}
	e.info = ConnectionInfo{
		Handle:             binary.LittleEndian.Uint16(p[0:2]),
		Role:               Role(p[2]),
		PeerAddressType:    AddressType(p[3]),
		Interval:           binary.LittleEndian.Uint16(p[10:12]),
		Latency:            binary.LittleEndian.Uint16(p[12:14]),
		SupervisionTimeout: binary.LittleEndian.Uint16(p[14:16]),
		Connected:          true,
	}
	copy(e.info.PeerAddress[:], p[4:10])
	return nil
}

func (e *connectedEvent) apply(c *caches) { c.connection = e.info }

type disconnectedEvent struct {
	handle uint16
	reason byte
}

func (e *disconnectedEvent) decode(p []byte) error {
	if err := exactLen("disconnected", p, 3); err != nil {
		return err
	}
	e.handle = binary.LittleEndian.Uint16(p)
	e.reason = p[2]
	return nil
}

func (e *disconnectedEvent) apply(c *caches) {
	c.connection.Handle = e.handle
	c.connection.Connected = false
	c.connection.DisconnectReason = e.reason
}

type connectionUpdatedEvent struct {
	handle, interval, latency, timeout uint16
}

func (e *connectionUpdatedEvent) decode(p []byte) error {
	if err := exactLen("connection updated", p, 8); err != nil {
		return err
	}
	e.handle = binary.LittleEndian.Uint16(p[0:2])
	e.interval = binary.LittleEndian.Uint16(p[2:4])
	e.latency = binary.LittleEndian.Uint16(p[4:6])
	e.timeout = binary.LittleEndian.Uint16(p[6:8])
	return nil
}

func (e *connectionUpdatedEvent) apply(c *caches) {
	c.connection.Handle = e.handle
	c.connection.Interval = e.interval
	c.connection.Latency = e.latency
	c.connection.SupervisionTimeout = e.timeout
}

// Inquiry result layout: addr type, addr[6], mode, rssi, data len, data
const inquiryFixedLen = 10

type inquiryResultEvent struct {
	result InquiryResult
}

func (e *inquiryResultEvent) decode(p []byte) error {
	if len(p) < inquiryFixedLen {
		return fmt.Errorf("%w: inquiry result wants at least %d bytes, got %d", ErrProcessing, inquiryFixedLen, len(p))
	}
	n := int(p[9])
	if n > MaxAdvDataLen || len(p) != inquiryFixedLen+n {
		return fmt.Errorf("%w: inquiry result declares %d data bytes, carries %d", ErrProcessing, n, len(p)-inquiryFixedLen)
	}
	e.result.AddressType = AddressType(p[0])
	copy(e.result.Address[:], p[1:7])
	e.result.Mode = p[7]
	e.result.RSSI = int8(p[8])
	e.result.DataLen = uint8(n)
	copy(e.result.Data[:], p[inquiryFixedLen:])
	return nil
}

func (e *inquiryResultEvent) apply(c *caches) { c.inquiry = e.result }

type localNameEvent struct {
	name []byte
}

func (e *localNameEvent) decode(p []byte) error {
	if len(p) < 1 || len(p) > MaxNameLen {
		return fmt.Errorf("%w: local name of %d bytes", ErrProcessing, len(p))
	}
	e.name = append([]byte(nil), p...)
	return nil
}

func (e *localNameEvent) apply(c *caches) { c.localName = e.name }

type randomAddressEvent struct {
	addr BDAddr
}

func (e *randomAddressEvent) decode(p []byte) error {
	if err := exactLen("random address", p, len(e.addr)); err != nil {
		return err
	}
	copy(e.addr[:], p)
	return nil
}

func (e *randomAddressEvent) apply(c *caches) { c.randomAddress = e.addr }

type pairingRequestEvent struct {
	info PairingInfo
}

func (e *pairingRequestEvent) decode(p []byte) error {
	if err := exactLen("pairing request", p, 4); err != nil {
		return err
	}
	e.info = PairingInfo{
		Kind:         PairingRequest,
		Handle:       binary.LittleEndian.Uint16(p),
		IOCapability: IOCapability(p[2]),
		AuthReq:      p[3],
	}
	return nil
}

func (e *pairingRequestEvent) apply(c *caches) { c.pairing = e.info }

type passkeyRequestEvent struct {
	handle uint16
}

func (e *passkeyRequestEvent) decode(p []byte) error {
	if err := exactLen("passkey request", p, 2); err != nil {
		return err
	}
	e.handle = binary.LittleEndian.Uint16(p)
	return nil
}

func (e *passkeyRequestEvent) apply(c *caches) {
	c.pairing = PairingInfo{Kind: PairingPasskeyRequest, Handle: e.handle}
}

type passkeyDisplayEvent struct {
	passkey uint32
	handle  uint16
}

func (e *passkeyDisplayEvent) decode(p []byte) error {
	if err := exactLen("passkey display", p, 6); err != nil {
		return err
	}
	e.handle = binary.LittleEndian.Uint16(p)
	e.passkey = binary.LittleEndian.Uint32(p[2:])
	return nil
}

func (e *passkeyDisplayEvent) apply(c *caches) {
	c.pairing = PairingInfo{Kind: PairingPasskeyDisplay, Handle: e.handle, Passkey: e.passkey}
}

type pairingCompleteEvent struct {
	info PairingInfo
}

func (e *pairingCompleteEvent) decode(p []byte) error {
	if err := exactLen("pairing complete", p, 4); err != nil {
		return err
	}
	e.info = PairingInfo{
		Kind:   PairingComplete,
		Handle: binary.LittleEndian.Uint16(p),
		Result: p[2],
		Bonded: p[3] != 0,
	}
	return nil
}

func (e *pairingCompleteEvent) apply(c *caches) { c.pairing = e.info }

type alertEvent struct {
	handle   uint16
	level    AlertLevel
	linkLoss bool
}

func (e *alertEvent) decode(p []byte) error {
	if err := exactLen("alert", p, 3); err != nil {
		return err
	}
	e.handle = binary.LittleEndian.Uint16(p)
	e.level = AlertLevel(p[2])
	return nil
}

func (e *alertEvent) apply(c *caches) {
	if e.linkLoss {
		c.alerts.LinkLoss = e.level
		c.alerts.LinkLossHandle = e.handle
		return
	}
	c.alerts.Immediate = e.level
	c.alerts.ImmediateHandle = e.handle
}

type rxEvent struct {
	rx RxData
}

func (e *rxEvent) decode(p []byte) error {
	if len(p) < 3 || len(p) > 2+MaxDataExchangePacket {
		return fmt.Errorf("%w: data exchange packet of %d bytes", ErrProcessing, len(p))
	}
	e.rx.Handle = binary.LittleEndian.Uint16(p)
	e.rx.Len = uint8(copy(e.rx.Data[:], p[2:]))
	return nil
}

func (e *rxEvent) apply(c *caches) { c.rx = e.rx }

type txCompleteEvent struct {
	handle uint16
}

func (e *txCompleteEvent) decode(p []byte) error {
	if err := exactLen("tx complete", p, 2); err != nil {
		return err
	}
	e.handle = binary.LittleEndian.Uint16(p)
	return nil
}

func (e *txCompleteEvent) apply(c *caches) { c.txComplete = e.handle }
