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

	"github.com/ZaparooProject/go-bleradio/internal/waiter"
)

func responseCommand(name string, op Opcode, params []byte, dest ResponseData) command {
	return command{name: name, opcode: op, params: params, dest: dest, want: waiter.FlagResponse}
}

func eventCommand(name string, op Opcode, params []byte) command {
	return command{name: name, opcode: op, params: params, want: waiter.FlagEventFollows}
}

// Do issues an arbitrary command. When eventFollows is set the command
// completes on a pending status, otherwise on success. dest may be nil.
func (r *Radio) Do(ctx context.Context, op Opcode, params []byte, eventFollows bool, dest ResponseData) error {
	mustMaxLen("params", params, MaxParamLen)
	cmd := responseCommand("Do", op, params, dest)
	if eventFollows {
		cmd.want = waiter.FlagEventFollows
	}
	return r.exec(ctx, cmd)
}

// GetControllerVersion reads the manufacturer and LMP sub-version of the radio
func (r *Radio) GetControllerVersion(ctx context.Context) (ControllerVersion, error) {
	var v ControllerVersion
	err := r.exec(ctx, responseCommand("GetControllerVersion", OpCoreGetControllerVersion, nil, &v))
	return v, err
}

// Reset resets the radio. Caches are left as they are.
func (r *Radio) Reset(ctx context.Context) error {
	return r.exec(ctx, responseCommand("Reset", OpCoreReset, nil, nil))
}

// VendorCommand passes data to a vendor extension of the radio firmware
func (r *Radio) VendorCommand(ctx context.Context, vendorOpcode uint16, data []byte) error {
	mustMaxLen("vendor data", data, MaxVendorDataLen)
	params := binary.LittleEndian.AppendUint16(make([]byte, 0, 3+len(data)), vendorOpcode)
	params = append(params, byte(len(data)))
	params = append(params, data...)
	return r.exec(ctx, responseCommand("VendorCommand", OpCoreVendorCommand, params, nil))
}
