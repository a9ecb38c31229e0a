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
	"strconv"
	"strings"

	"github.com/ZaparooProject/go-bleradio/internal/frame"
)

// Protocol limits
const (
	MaxAdvDataLen         = 31 // Advertising and scan response block
	MaxNameLen            = 20 // Local device name
	MaxConnections        = 8  // Entries in a connection list
	MaxDataExchangePacket = 20 // Data exchange payload per packet
	MaxVendorDataLen      = 55 // Vendor command payload after opcode and length
	MaxPasskey            = 999999
	MaxTestChannel        = 39
	MaxTestPayloadType    = 7
	MaxParamLen           = frame.MaxParamLen // Parameter bytes in one command frame
)

// BDAddr is a Bluetooth device address in over-the-air (little-endian) byte order
type BDAddr [6]byte

// String formats the address most significant byte first
func (a BDAddr) String() string {
	var sb strings.Builder
	for i := len(a) - 1; i >= 0; i-- {
		_, _ = fmt.Fprintf(&sb, "%02X", a[i])
		if i > 0 {
			_ = sb.WriteByte(':')
		}
	}
	return sb.String()
}

// MarshalText encodes the address in its String form
func (a BDAddr) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText accepts the String form
func (a *BDAddr) UnmarshalText(text []byte) error {
	parsed, err := ParseBDAddr(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseBDAddr parses "AA:BB:CC:DD:EE:FF" into wire order
func ParseBDAddr(s string) (BDAddr, error) {
	var a BDAddr
	parts := strings.Split(s, ":")
	if len(parts) != len(a) {
		return a, fmt.Errorf("%w: address %q", ErrInvalidParameter, s)
	}
	for i, part := range parts {
		b, err := strconv.ParseUint(part, 16, 8)
		if err != nil || len(part) != 2 {
			return a, fmt.Errorf("%w: address %q", ErrInvalidParameter, s)
		}
		a[len(a)-1-i] = byte(b)
	}
	return a, nil
}

// AddressType tells public and random device addresses apart
type AddressType uint8

const (
	AddressPublic AddressType = 0x00
	AddressRandom AddressType = 0x01
)

func (t AddressType) String() string {
	switch t {
	case AddressPublic:
		return "public"
	case AddressRandom:
		return "random"
	default:
		return fmt.Sprintf("AddressType(%d)", uint8(t))
	}
}

// Role is the GAP role the radio registers as, or plays in a connection
type Role uint8

const (
	RolePeripheral  Role = 0x00
	RoleCentral     Role = 0x01
	RoleBroadcaster Role = 0x02
	RoleObserver    Role = 0x03
)

func (r Role) String() string {
	switch r {
	case RolePeripheral:
		return "peripheral"
	case RoleCentral:
		return "central"
	case RoleBroadcaster:
		return "broadcaster"
	case RoleObserver:
		return "observer"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// DiscoverableMode for GAPSetMode
type DiscoverableMode uint8

const (
	NonDiscoverable     DiscoverableMode = 0x00
	LimitedDiscoverable DiscoverableMode = 0x01
	GeneralDiscoverable DiscoverableMode = 0x02
)

// ConnectableMode for GAPSetMode
type ConnectableMode uint8

const (
	NonConnectable        ConnectableMode = 0x00
	DirectedConnectable   ConnectableMode = 0x01
	UndirectedConnectable ConnectableMode = 0x02
)

// InquiryMode selects which advertisers an inquiry reports
type InquiryMode uint8

const (
	InquiryGeneral InquiryMode = 0x00
	InquiryLimited InquiryMode = 0x01
)

// IOCapability advertised during pairing
type IOCapability uint8

const (
	IODisplayOnly     IOCapability = 0x00
	IODisplayYesNo    IOCapability = 0x01
	IOKeyboardOnly    IOCapability = 0x02
	IONoInputNoOutput IOCapability = 0x03
	IOKeyboardDisplay IOCapability = 0x04
)

// SecurityLevel of a link as reported by SMPGetLinkSecurity
type SecurityLevel uint8

const (
	SecurityNone                 SecurityLevel = 0x00
	SecurityUnauthenticated      SecurityLevel = 0x01
	SecurityAuthenticated        SecurityLevel = 0x02
	SecurityAuthenticatedSecureC SecurityLevel = 0x03
)

// AlertLevel of the immediate alert and link loss services
type AlertLevel uint8

const (
	AlertNone AlertLevel = 0x00
	AlertMild AlertLevel = 0x01
	AlertHigh AlertLevel = 0x02
)

func (l AlertLevel) String() string {
	switch l {
	case AlertNone:
		return "none"
	case AlertMild:
		return "mild"
	case AlertHigh:
		return "high"
	default:
		return fmt.Sprintf("AlertLevel(%d)", uint8(l))
	}
}

// PayloadType of direct test mode transmissions
type PayloadType uint8

const (
	PayloadPRBS9    PayloadType = 0x00
	Payload11110000 PayloadType = 0x01
	Payload10101010 PayloadType = 0x02
	PayloadPRBS15   PayloadType = 0x03
	PayloadAllOnes  PayloadType = 0x04
	PayloadAllZeros PayloadType = 0x05
	Payload00001111 PayloadType = 0x06
	Payload01010101 PayloadType = 0x07
)

// ConnParams are the connection parameters requested by GAPConnect and
// GAPUpdateConnectionParams
type ConnParams struct {
	IntervalMin        uint16 // 1.25 ms units, 0x0006..0x0C80
	IntervalMax        uint16 // 1.25 ms units, 0x0006..0x0C80
	Latency            uint16 // Connection events, 0..0x01F3
	SupervisionTimeout uint16 // 10 ms units, 0x000A..0x0C80
}

// Connection parameter limits
const (
	MinConnInterval       = 0x0006
	MaxConnInterval       = 0x0C80
	MaxConnLatency        = 0x01F3
	MinSupervisionTimeout = 0x000A
	MaxSupervisionTimeout = 0x0C80
	MinAdvInterval        = 0x0020
	MaxAdvInterval        = 0x4000
)

// DefaultConnParams returns parameters suited to a low duty cycle sensor link
func DefaultConnParams() ConnParams {
	return ConnParams{
		IntervalMin:        0x0018, // 30 ms
		IntervalMax:        0x0028, // 50 ms
		Latency:            0,
		SupervisionTimeout: 0x01F4, // 5 s
	}
}

func (p ConnParams) mustValidate() {
	mustInRange("interval min", p.IntervalMin, MinConnInterval, MaxConnInterval)
	mustInRange("interval max", p.IntervalMax, p.IntervalMin, MaxConnInterval)
	mustInRange("latency", p.Latency, 0, MaxConnLatency)
	mustInRange("supervision timeout", p.SupervisionTimeout, MinSupervisionTimeout, MaxSupervisionTimeout)
}

func (p ConnParams) appendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, p.IntervalMin)
	b = binary.LittleEndian.AppendUint16(b, p.IntervalMax)
	b = binary.LittleEndian.AppendUint16(b, p.Latency)
	return binary.LittleEndian.AppendUint16(b, p.SupervisionTimeout)
}
