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
	"context"
	"encoding/binary"
)

func handleParams(handle uint16, extra ...byte) []byte {
	return append(binary.LittleEndian.AppendUint16(nil, handle), extra...)
}

func addressParams(addrType AddressType, addr BDAddr) []byte {
	return append([]byte{byte(addrType)}, addr[:]...)
}

// RegisterDevice registers the radio in a GAP role. It must precede any
// other GAP command.
func (r *Radio) RegisterDevice(ctx context.Context, role Role) error {
	mustInRange("role", role, RolePeripheral, RoleObserver)
	return r.exec(ctx, responseCommand("RegisterDevice", OpGAPRegisterDevice, []byte{byte(role)}, nil))
}

// SetLocalName sets the advertised device name
func (r *Radio) SetLocalName(ctx context.Context, name string) error {
	mustLenRange("name", []byte(name), 1, MaxNameLen)
	params := append([]byte{byte(len(name))}, name...)
	return r.exec(ctx, responseCommand("SetLocalName", OpGAPSetLocalName, params, nil))
}

// GetLocalName asks the radio for its name. The name arrives as
// EventGAPLocalName and is read with LocalName.
func (r *Radio) GetLocalName(ctx context.Context) error {
	return r.exec(ctx, eventCommand("GetLocalName", OpGAPGetLocalName, nil))
}

// GetLocalAddress reads the device address of the radio
func (r *Radio) GetLocalAddress(ctx context.Context) (BDAddress, error) {
	var a BDAddress
	err := r.exec(ctx, responseCommand("GetLocalAddress", OpGAPGetLocalAddress, nil, &a))
	return a, err
}

// SetAdvertisingData replaces the advertising block
func (r *Radio) SetAdvertisingData(ctx context.Context, data []byte) error {
	mustMaxLen("advertising data", data, MaxAdvDataLen)
	params := append([]byte{byte(len(data))}, data...)
	return r.exec(ctx, responseCommand("SetAdvertisingData", OpGAPSetAdvertisingData, params, nil))
}

// GetAdvertisingData reads the current advertising block
func (r *Radio) GetAdvertisingData(ctx context.Context) (AdvertisingData, error) {
	var a AdvertisingData
	err := r.exec(ctx, responseCommand("GetAdvertisingData", OpGAPGetAdvertisingData, nil, &a))
	return a, err
}

// SetMode sets the discoverable and connectable modes
func (r *Radio) SetMode(ctx context.Context, disc DiscoverableMode, conn ConnectableMode) error {
	mustInRange("discoverable mode", disc, NonDiscoverable, GeneralDiscoverable)
	mustInRange("connectable mode", conn, NonConnectable, UndirectedConnectable)
	return r.exec(ctx, responseCommand("SetMode", OpGAPSetMode, []byte{byte(disc), byte(conn)}, nil))
}

// SetAdvertisingInterval sets the advertising interval in 0.625 ms units
func (r *Radio) SetAdvertisingInterval(ctx context.Context, interval uint16) error {
	mustInRange("advertising interval", interval, MinAdvInterval, MaxAdvInterval)
	params := binary.LittleEndian.AppendUint16(nil, interval)
	return r.exec(ctx, responseCommand("SetAdvertisingInterval", OpGAPSetAdvertisingInterval, params, nil))
}

// Connect starts connecting to a peer. The link is reported by EventGAPConnected.
func (r *Radio) Connect(ctx context.Context, addrType AddressType, addr BDAddr, params ConnParams) error {
	mustInRange("address type", addrType, AddressPublic, AddressRandom)
	params.mustValidate()
	p := params.appendTo(addressParams(addrType, addr))
	return r.exec(ctx, eventCommand("Connect", OpGAPConnect, p))
}

// Disconnect terminates a link. Completion is reported by EventGAPDisconnected.
func (r *Radio) Disconnect(ctx context.Context, handle uint16) error {
	return r.exec(ctx, eventCommand("Disconnect", OpGAPDisconnect, handleParams(handle)))
}

// UpdateConnectionParams renegotiates a link. The outcome is reported by
// EventGAPConnectionUpdated.
func (r *Radio) UpdateConnectionParams(ctx context.Context, handle uint16, params ConnParams) error {
	params.mustValidate()
	p := params.appendTo(handleParams(handle))
	return r.exec(ctx, eventCommand("UpdateConnectionParams", OpGAPUpdateConnectionParams, p))
}

// GetConnectionList reads the handles of all open links
func (r *Radio) GetConnectionList(ctx context.Context) (ConnectionList, error) {
	var l ConnectionList
	err := r.exec(ctx, responseCommand("GetConnectionList", OpGAPGetConnectionList, nil, &l))
	return l, err
}

// StartInquiry scans for advertisers for duration seconds. Each advertiser is
// reported by EventGAPInquiryResult and the end of the scan by
// EventGAPInquiryComplete.
func (r *Radio) StartInquiry(ctx context.Context, mode InquiryMode, duration uint8) error {
	mustInRange("inquiry mode", mode, InquiryGeneral, InquiryLimited)
	mustInRange("inquiry duration", duration, 1, 255)
	return r.exec(ctx, eventCommand("StartInquiry", OpGAPStartInquiry, []byte{byte(mode), duration}))
}

// StopInquiry ends a scan early
func (r *Radio) StopInquiry(ctx context.Context) error {
	return r.exec(ctx, responseCommand("StopInquiry", OpGAPStopInquiry, nil, nil))
}

// GetConnectionRSSI reads the signal strength of a link in dBm
func (r *Radio) GetConnectionRSSI(ctx context.Context, handle uint16) (int8, error) {
	var rssi RSSI
	err := r.exec(ctx, responseCommand("GetConnectionRSSI", OpGAPGetConnectionRSSI, handleParams(handle), &rssi))
	return rssi.Value, err
}

// GenerateRandomAddress asks the radio for a new random address. It is
// reported by EventGAPRandomAddress and read with RandomAddress.
func (r *Radio) GenerateRandomAddress(ctx context.Context) error {
	return r.exec(ctx, eventCommand("GenerateRandomAddress", OpGAPGenerateRandomAddress, nil))
}
