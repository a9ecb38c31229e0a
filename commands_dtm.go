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

import "context"

// StartTransmitterTest starts a direct test mode transmitter on channel
// (0..39) sending length byte packets of the given payload type
func (r *Radio) StartTransmitterTest(ctx context.Context, channel, length uint8, payload PayloadType) error {
	mustInRange("channel", channel, 0, MaxTestChannel)
	mustInRange("payload type", payload, PayloadPRBS9, MaxTestPayloadType)
	params := []byte{channel, length, byte(payload)}
	return r.exec(ctx, responseCommand("StartTransmitterTest", OpTestTransmitter, params, nil))
}

// StartReceiverTest starts a direct test mode receiver on channel (0..39)
func (r *Radio) StartReceiverTest(ctx context.Context, channel uint8) error {
	mustInRange("channel", channel, 0, MaxTestChannel)
	return r.exec(ctx, responseCommand("StartReceiverTest", OpTestReceiver, []byte{channel}, nil))
}

// EndTest stops the running test and returns the number of packets received
func (r *Radio) EndTest(ctx context.Context) (uint16, error) {
	var res TestResult
	err := r.exec(ctx, responseCommand("EndTest", OpTestEnd, nil, &res))
	return res.PacketCount, err
}
