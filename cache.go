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

import "time"

// ConnectionInfo is the state of the most recently reported link
type ConnectionInfo struct {
	PeerAddress        BDAddr
	Handle             uint16
	Interval           uint16
	Latency            uint16
	SupervisionTimeout uint16
	Role               Role
	PeerAddressType    AddressType
	Connected          bool
	DisconnectReason   byte
}

// InquiryResult is the most recent advertiser reported by an inquiry
type InquiryResult struct {
	Address     BDAddr
	Data        [MaxAdvDataLen]byte
	AddressType AddressType
	Mode        byte
	RSSI        int8
	DataLen     uint8
}

// AdvData returns the valid part of the advertising block
func (r InquiryResult) AdvData() []byte {
	return r.Data[:r.DataLen]
}

// VendorData is the payload of the last vendor event. Data is owned by the copy.
type VendorData struct {
	Data   []byte
	Opcode uint16
}

// PairingKind tells which SMP event last updated PairingInfo
type PairingKind uint8

const (
	PairingNone PairingKind = iota
	PairingRequest
	PairingPasskeyRequest
	PairingPasskeyDisplay
	PairingComplete
)

func (k PairingKind) String() string {
	switch k {
	case PairingRequest:
		return "request"
	case PairingPasskeyRequest:
		return "passkey-request"
	case PairingPasskeyDisplay:
		return "passkey-display"
	case PairingComplete:
		return "complete"
	default:
		return "none"
	}
}

// PairingInfo holds the fields of the last SMP event. Only the fields of Kind are meaningful.
type PairingInfo struct {
	Passkey      uint32
	Handle       uint16
	Kind         PairingKind
	IOCapability IOCapability
	AuthReq      byte
	Result       byte
	Bonded       bool
}

// AlertLevels are the last levels written by a peer to the alert services
type AlertLevels struct {
	Immediate       AlertLevel
	LinkLoss        AlertLevel
	ImmediateHandle uint16
	LinkLossHandle  uint16
}

// RxData is the last packet received by the data exchange server
type RxData struct {
	Data   [MaxDataExchangePacket]byte
	Handle uint16
	Len    uint8
}

// Bytes returns the valid part of the packet
func (d RxData) Bytes() []byte {
	return d.Data[:d.Len]
}

// caches are only touched with Radio.mu held
type caches struct {
	vendor        VendorData
	localName     []byte
	inquiry       InquiryResult
	connection    ConnectionInfo
	pairing       PairingInfo
	alerts        AlertLevels
	rx            RxData
	txComplete    uint16
	randomAddress BDAddr
	hardwareError byte
}

// snapshot returns a copy of the cache group ev updates, or nil
func (c *caches) snapshot(ev Event) any {
	switch ev {
	case EventHardwareError:
		return c.hardwareError
	case EventVendor:
		return VendorData{Opcode: c.vendor.Opcode, Data: append([]byte(nil), c.vendor.Data...)}
	case EventGAPConnected, EventGAPDisconnected, EventGAPConnectionUpdated:
		return c.connection
	case EventGAPInquiryResult:
		return c.inquiry
	case EventGAPLocalName:
		return string(c.localName)
	case EventGAPRandomAddress:
		return c.randomAddress
	case EventSMPPairingRequest, EventSMPPasskeyRequest, EventSMPPasskeyDisplay, EventSMPPairingComplete:
		return c.pairing
	case EventFindMeAlert, EventProximityLinkLossAlert:
		return c.alerts
	case EventDataExchangeRx:
		return c.rx
	case EventDataExchangeTxComplete:
		return c.txComplete
	default:
		return nil
	}
}

// Notification is an application visible event with the cache group it
// updated, copied when the frame was processed
type Notification struct {
	Time  time.Time
	Data  any
	Event Event
}

// ConnectionInfo returns the last reported connection state
func (r *Radio) ConnectionInfo() ConnectionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.connection
}

// InquiryResult returns the last advertiser reported by an inquiry
func (r *Radio) InquiryResult() InquiryResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.inquiry
}

// PairingInfo returns the fields of the last SMP event
func (r *Radio) PairingInfo() PairingInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.pairing
}

// VendorData returns a copy of the last vendor event
func (r *Radio) VendorData() VendorData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return VendorData{Opcode: r.cache.vendor.Opcode, Data: append([]byte(nil), r.cache.vendor.Data...)}
}

// LocalName returns the name reported by the last GAPGetLocalName
func (r *Radio) LocalName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.cache.localName)
}

// RandomAddress returns the last generated random address
func (r *Radio) RandomAddress() BDAddr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.randomAddress
}

// AlertLevels returns the last alert levels written by a peer
func (r *Radio) AlertLevels() AlertLevels {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.alerts
}

// HardwareError returns the code of the last hardware error event
func (r *Radio) HardwareError() byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.hardwareError
}

// RxData returns the last packet received by the data exchange server
func (r *Radio) RxData() RxData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.rx
}
