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

import "fmt"

// Opcode identifies a radio command
type Opcode uint16

// Core commands
const (
	OpCoreGetControllerVersion Opcode = 0x0001
	OpCoreReset                Opcode = 0x0002
	OpCoreVendorCommand        Opcode = 0x0003
)

// GAP commands
const (
	OpGAPRegisterDevice         Opcode = 0x0101
	OpGAPSetLocalName           Opcode = 0x0102
	OpGAPGetLocalName           Opcode = 0x0103
	OpGAPGetLocalAddress        Opcode = 0x0104
	OpGAPSetAdvertisingData     Opcode = 0x0105
	OpGAPGetAdvertisingData     Opcode = 0x0106
	OpGAPSetMode                Opcode = 0x0107
	OpGAPSetAdvertisingInterval Opcode = 0x0108
	OpGAPConnect                Opcode = 0x0109
	OpGAPDisconnect             Opcode = 0x010A
	OpGAPUpdateConnectionParams Opcode = 0x010B
	OpGAPGetConnectionList      Opcode = 0x010C
	OpGAPStartInquiry           Opcode = 0x010D
	OpGAPStopInquiry            Opcode = 0x010E
	OpGAPGetConnectionRSSI      Opcode = 0x010F
	OpGAPGenerateRandomAddress  Opcode = 0x0110
)

// Security manager commands
const (
	OpSMPConfigure       Opcode = 0x0201
	OpSMPPair            Opcode = 0x0202
	OpSMPSetPasskey      Opcode = 0x0203
	OpSMPIsDeviceBonded  Opcode = 0x0204
	OpSMPGetLinkSecurity Opcode = 0x0205
	OpSMPDeleteBonds     Opcode = 0x0206
)

// Direct test mode commands
const (
	OpTestTransmitter Opcode = 0x0301
	OpTestReceiver    Opcode = 0x0302
	OpTestEnd         Opcode = 0x0303
)

// Profile commands
const (
	OpFindMeRegisterTarget       Opcode = 0x0401
	OpFindMeSetAlert             Opcode = 0x0402
	OpProximityRegisterReporter  Opcode = 0x0403
	OpDataExchangeRegisterServer Opcode = 0x0404
	OpDataExchangeSend           Opcode = 0x0405
)

var opcodeNames = map[Opcode]string{
	OpCoreGetControllerVersion:   "CoreGetControllerVersion",
	OpCoreReset:                  "CoreReset",
	OpCoreVendorCommand:          "CoreVendorCommand",
	OpGAPRegisterDevice:          "GAPRegisterDevice",
	OpGAPSetLocalName:            "GAPSetLocalName",
	OpGAPGetLocalName:            "GAPGetLocalName",
	OpGAPGetLocalAddress:         "GAPGetLocalAddress",
	OpGAPSetAdvertisingData:      "GAPSetAdvertisingData",
	OpGAPGetAdvertisingData:      "GAPGetAdvertisingData",
	OpGAPSetMode:                 "GAPSetMode",
	OpGAPSetAdvertisingInterval:  "GAPSetAdvertisingInterval",
	OpGAPConnect:                 "GAPConnect",
	OpGAPDisconnect:              "GAPDisconnect",
	OpGAPUpdateConnectionParams:  "GAPUpdateConnectionParams",
	OpGAPGetConnectionList:       "GAPGetConnectionList",
	OpGAPStartInquiry:            "GAPStartInquiry",
	OpGAPStopInquiry:             "GAPStopInquiry",
	OpGAPGetConnectionRSSI:       "GAPGetConnectionRSSI",
	OpGAPGenerateRandomAddress:   "GAPGenerateRandomAddress",
	OpSMPConfigure:               "SMPConfigure",
	OpSMPPair:                    "SMPPair",
	OpSMPSetPasskey:              "SMPSetPasskey",
	OpSMPIsDeviceBonded:          "SMPIsDeviceBonded",
	OpSMPGetLinkSecurity:         "SMPGetLinkSecurity",
	OpSMPDeleteBonds:             "SMPDeleteBonds",
	OpTestTransmitter:            "TestTransmitter",
	OpTestReceiver:               "TestReceiver",
	OpTestEnd:                    "TestEnd",
	OpFindMeRegisterTarget:       "FindMeRegisterTarget",
	OpFindMeSetAlert:             "FindMeSetAlert",
	OpProximityRegisterReporter:  "ProximityRegisterReporter",
	OpDataExchangeRegisterServer: "DataExchangeRegisterServer",
	OpDataExchangeSend:           "DataExchangeSend",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(0x%04X)", uint16(op))
}
