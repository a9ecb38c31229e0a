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

// RegisterFindMeTarget exposes the immediate alert service. Alerts written
// by a peer are reported by EventFindMeAlert.
func (r *Radio) RegisterFindMeTarget(ctx context.Context) error {
	return r.exec(ctx, responseCommand("RegisterFindMeTarget", OpFindMeRegisterTarget, nil, nil))
}

// SetFindMeAlert writes an alert level to a peer's immediate alert service
func (r *Radio) SetFindMeAlert(ctx context.Context, handle uint16, level AlertLevel) error {
	mustInRange("alert level", level, AlertNone, AlertHigh)
	return r.exec(ctx, responseCommand("SetFindMeAlert", OpFindMeSetAlert, handleParams(handle, byte(level)), nil))
}

// RegisterProximityReporter exposes the link loss service. Link loss alert
// levels set by a peer are reported by EventProximityLinkLossAlert.
func (r *Radio) RegisterProximityReporter(ctx context.Context) error {
	return r.exec(ctx, responseCommand("RegisterProximityReporter", OpProximityRegisterReporter, nil, nil))
}

// RegisterDataExchangeServer exposes the data exchange service. Packets from
// a peer are reported by EventDataExchangeRx.
func (r *Radio) RegisterDataExchangeServer(ctx context.Context) error {
	return r.exec(ctx, responseCommand("RegisterDataExchangeServer", OpDataExchangeRegisterServer, nil, nil))
}

// SendData sends up to MaxDataExchangePacket bytes to a peer. Delivery is
// reported by EventDataExchangeTxComplete.
func (r *Radio) SendData(ctx context.Context, handle uint16, data []byte) error {
	mustLenRange("data", data, 1, MaxDataExchangePacket)
	return r.exec(ctx, eventCommand("SendData", OpDataExchangeSend, handleParams(handle, data...)))
}
