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

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// ConfigureSecurity sets the pairing capabilities the radio advertises
func (r *Radio) ConfigureSecurity(ctx context.Context, io IOCapability, bonding, mitm bool) error {
	mustInRange("io capability", io, IODisplayOnly, IOKeyboardDisplay)
	params := []byte{byte(io), boolByte(bonding), boolByte(mitm)}
	return r.exec(ctx, responseCommand("ConfigureSecurity", OpSMPConfigure, params, nil))
}

// Pair starts pairing on a link. Progress is reported by the SMP events and
// read with PairingInfo.
func (r *Radio) Pair(ctx context.Context, handle uint16) error {
	return r.exec(ctx, eventCommand("Pair", OpSMPPair, handleParams(handle)))
}

// SetPasskey answers an EventSMPPasskeyRequest
func (r *Radio) SetPasskey(ctx context.Context, handle uint16, passkey uint32) error {
	mustInRange("passkey", passkey, 0, MaxPasskey)
	params := binary.LittleEndian.AppendUint32(handleParams(handle), passkey)
	return r.exec(ctx, responseCommand("SetPasskey", OpSMPSetPasskey, params, nil))
}

// IsDeviceBonded reports whether the radio holds a bond for a peer
func (r *Radio) IsDeviceBonded(ctx context.Context, addrType AddressType, addr BDAddr) (bool, error) {
	mustInRange("address type", addrType, AddressPublic, AddressRandom)
	var b BondStatus
	err := r.exec(ctx, responseCommand("IsDeviceBonded", OpSMPIsDeviceBonded, addressParams(addrType, addr), &b))
	return b.Bonded, err
}

// GetLinkSecurity reads the security level of a link
func (r *Radio) GetLinkSecurity(ctx context.Context, handle uint16) (SecurityLevel, error) {
	var s LinkSecurity
	err := r.exec(ctx, responseCommand("GetLinkSecurity", OpSMPGetLinkSecurity, handleParams(handle), &s))
	return s.Level, err
}

// DeleteBonds erases every stored bond
func (r *Radio) DeleteBonds(ctx context.Context) error {
	return r.exec(ctx, responseCommand("DeleteBonds", OpSMPDeleteBonds, nil, nil))
}
