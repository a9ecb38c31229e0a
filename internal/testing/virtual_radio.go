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

package testing

import (
	"encoding/binary"
	"sync"

	"github.com/ZaparooProject/go-bleradio/internal/frame"
)

// Default identity of a VirtualRadio
var (
	TestAddress     = [6]byte{0x66, 0x55, 0x44, 0x33, 0x22, 0x11}
	TestPeerAddress = [6]byte{0xF6, 0xE5, 0xD4, 0xC3, 0xB2, 0xA1}
	TestRandomAddr  = [6]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0xC6}
)

// VirtualRadio answers command frames the way a companion radio would.
// Respond returns the frames the radio sends back, in order.
type VirtualRadio struct {
	Bonds       map[[6]byte]bool
	Silent      map[uint16]bool // Opcodes left unanswered
	Status      map[uint16]byte // Status overrides per opcode
	Name        []byte
	AdvData     []byte
	Connections []uint16
	Received    []uint16 // Opcodes seen, in order
	Address     [6]byte
	mu          sync.Mutex
	Version     uint32 // Manufacturer id in the low half, LMP sub-version in the high half
	AddressType byte
	registered  bool
}

// NewVirtualRadio creates a virtual radio with default identity
func NewVirtualRadio() *VirtualRadio {
	return &VirtualRadio{
		Bonds:       map[[6]byte]bool{TestPeerAddress: true},
		Silent:      map[uint16]bool{},
		Status:      map[uint16]byte{},
		Name:        []byte("bleradio"),
		Address:     TestAddress,
		Version:     0x0403_0201,
		Connections: []uint16{0x0040},
	}
}

// Registered reports whether a GAP role was registered
func (v *VirtualRadio) Registered() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.registered
}

// Respond handles one command frame
func (v *VirtualRadio) Respond(cmd []byte) [][]byte {
	op, ok := frame.CommandOpcode(cmd)
	if !ok {
		return nil
	}
	params := frame.CommandParams(cmd)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.Received = append(v.Received, op)
	if v.Silent[op] {
		return nil
	}
	if st, ok := v.Status[op]; ok {
		return [][]byte{BuildResponse(op, st)}
	}

	switch op {
	case 0x0001: // controller version
		return [][]byte{BuildSuccess(op, binary.LittleEndian.AppendUint32(nil, v.Version)...)}
	case 0x0101: // register device
		v.registered = true
		return [][]byte{BuildSuccess(op)}
	case 0x0102: // set local name
		if len(params) < 1 || int(params[0]) != len(params)-1 {
			return [][]byte{BuildResponse(op, 0x08)}
		}
		v.Name = append([]byte(nil), params[1:]...)
		return [][]byte{BuildSuccess(op)}
	case 0x0103: // get local name
		return [][]byte{BuildPending(op), BuildEvent(0x0106, StatusSuccess, v.Name...)}
	case 0x0104: // local address
		return [][]byte{BuildSuccess(op, append([]byte{v.AddressType}, v.Address[:]...)...)}
	case 0x0105: // set advertising data
		v.AdvData = append([]byte(nil), params[1:]...)
		return [][]byte{BuildSuccess(op)}
	case 0x0106: // get advertising data
		return [][]byte{BuildSuccess(op, append([]byte{byte(len(v.AdvData))}, v.AdvData...)...)}
	case 0x0109: // connect
		var peer [6]byte
		copy(peer[:], params[1:7])
		iv := binary.LittleEndian.Uint16(params[9:])
		lat := binary.LittleEndian.Uint16(params[11:])
		to := binary.LittleEndian.Uint16(params[13:])
		v.Connections = append(v.Connections, 0x0041)
		return [][]byte{BuildPending(op), BuildConnected(0x0041, 0x01, params[0], peer, iv, lat, to)}
	case 0x010A: // disconnect
		return [][]byte{BuildPending(op), BuildEvent(0x0102, StatusSuccess, params[0], params[1], 0x13)}
	case 0x010C: // connection list
		p := []byte{byte(len(v.Connections))}
		for _, h := range v.Connections {
			p = binary.LittleEndian.AppendUint16(p, h)
		}
		return [][]byte{BuildSuccess(op, p...)}
	case 0x010D: // start inquiry
		return [][]byte{
			BuildPending(op),
			BuildInquiryResult(0x00, TestPeerAddress, -60, []byte{0x02, 0x01, 0x06}),
			BuildEvent(0x0105, StatusSuccess),
		}
	case 0x010F: // rssi
		return [][]byte{BuildSuccess(op, 0xC4)}
	case 0x0110: // random address
		return [][]byte{BuildPending(op), BuildEvent(0x0107, StatusSuccess, TestRandomAddr[:]...)}
	case 0x0202: // pair
		return [][]byte{
			BuildPending(op),
			BuildEvent(0x0203, StatusSuccess, params[0], params[1], 0x40, 0xE2, 0x01, 0x00),
		}
	case 0x0204: // bonded
		var peer [6]byte
		copy(peer[:], params[1:7])
		if v.Bonds[peer] {
			return [][]byte{BuildSuccess(op)}
		}
		return [][]byte{BuildResponse(op, StatusFailure)}
	case 0x0205: // link security
		return [][]byte{BuildSuccess(op, 0x02)}
	case 0x0206: // delete bonds
		v.Bonds = map[[6]byte]bool{}
		return [][]byte{BuildSuccess(op)}
	case 0x0303: // end test
		return [][]byte{BuildSuccess(op, 0xE8, 0x03)}
	case 0x0405: // data exchange send
		return [][]byte{BuildPending(op), BuildEvent(0x0404, StatusSuccess, params[0], params[1])}
	default:
		return [][]byte{BuildSuccess(op)}
	}
}
