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
	"fmt"

	"github.com/ZaparooProject/go-bleradio/internal/waiter"
)

// Event is the single code the application observes for a command outcome or
// an event from the radio
type Event uint16

// Response outcomes, translated from the radio's status byte
const (
	EventNone Event = iota
	ResponseSuccess
	ResponsePending // Success, an event follows
	ResponseFailure
	ResponseBusy
	ResponseInsufficientAuthentication
	ResponseInsufficientAuthorization
	ResponseInsufficientEncryption
	ResponseInsufficientEncryptionKeySize
	ResponseInvalidParams
	ResponseNoResources
	ResponseNotSupported
)

// Sentinels for frames the engine could not use and commands that never completed
const (
	ErrorParsing Event = iota + 0x40
	ErrorProcessing
	ErrorTimeout
)

// Typed events decoded from the radio's unsolicited event frames
const (
	EventHardwareError Event = iota + 0x80
	EventVendor
	EventGAPConnected
	EventGAPDisconnected
	EventGAPConnectionUpdated
	EventGAPInquiryResult
	EventGAPInquiryComplete
	EventGAPLocalName
	EventGAPRandomAddress
	EventSMPPairingRequest
	EventSMPPasskeyRequest
	EventSMPPasskeyDisplay
	EventSMPPairingComplete
	EventFindMeAlert
	EventProximityLinkLossAlert
	EventDataExchangeRx
	EventDataExchangeTxComplete
)

var eventNames = map[Event]string{
	EventNone:                             "None",
	ResponseSuccess:                       "ResponseSuccess",
	ResponsePending:                       "ResponsePending",
	ResponseFailure:                       "ResponseFailure",
	ResponseBusy:                          "ResponseBusy",
	ResponseInsufficientAuthentication:    "ResponseInsufficientAuthentication",
	ResponseInsufficientAuthorization:     "ResponseInsufficientAuthorization",
	ResponseInsufficientEncryption:        "ResponseInsufficientEncryption",
	ResponseInsufficientEncryptionKeySize: "ResponseInsufficientEncryptionKeySize",
	ResponseInvalidParams:                 "ResponseInvalidParams",
	ResponseNoResources:                   "ResponseNoResources",
	ResponseNotSupported:                  "ResponseNotSupported",
	ErrorParsing:                          "ErrorParsing",
	ErrorProcessing:                       "ErrorProcessing",
	ErrorTimeout:                          "ErrorTimeout",
	EventHardwareError:                    "HardwareError",
	EventVendor:                           "Vendor",
	EventGAPConnected:                     "GAPConnected",
	EventGAPDisconnected:                  "GAPDisconnected",
	EventGAPConnectionUpdated:             "GAPConnectionUpdated",
	EventGAPInquiryResult:                 "GAPInquiryResult",
	EventGAPInquiryComplete:               "GAPInquiryComplete",
	EventGAPLocalName:                     "GAPLocalName",
	EventGAPRandomAddress:                 "GAPRandomAddress",
	EventSMPPairingRequest:                "SMPPairingRequest",
	EventSMPPasskeyRequest:                "SMPPasskeyRequest",
	EventSMPPasskeyDisplay:                "SMPPasskeyDisplay",
	EventSMPPairingComplete:               "SMPPairingComplete",
	EventFindMeAlert:                      "FindMeAlert",
	EventProximityLinkLossAlert:           "ProximityLinkLossAlert",
	EventDataExchangeRx:                   "DataExchangeRx",
	EventDataExchangeTxComplete:           "DataExchangeTxComplete",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Event(0x%04X)", uint16(e))
}

// IsResponse reports whether e is one of the status outcomes
func (e Event) IsResponse() bool {
	return e >= ResponseSuccess && e <= ResponseNotSupported
}

// IsSuccess reports whether e is a successful status outcome
func (e Event) IsSuccess() bool {
	return e == ResponseSuccess || e == ResponsePending
}

// IsError reports whether e is an engine sentinel rather than something the radio said
func (e Event) IsError() bool {
	return e == ErrorParsing || e == ErrorProcessing || e == ErrorTimeout
}

// Status bytes reported by the radio
const (
	statusSuccess                    byte = 0x00
	statusSuccessEventFollows        byte = 0x01
	statusFailure                    byte = 0x02
	statusBusy                       byte = 0x03
	statusInsufficientAuthentication byte = 0x04
	statusInsufficientAuthorization  byte = 0x05
	statusInsufficientEncryption     byte = 0x06
	statusInsufficientEncKeySize     byte = 0x07
	statusInvalidParams              byte = 0x08
	statusNoResources                byte = 0x09
	statusNotSupported               byte = 0x0A
)

var statusTable = map[byte]Event{
	statusSuccess:                    ResponseSuccess,
	statusSuccessEventFollows:        ResponsePending,
	statusFailure:                    ResponseFailure,
	statusBusy:                       ResponseBusy,
	statusInsufficientAuthentication: ResponseInsufficientAuthentication,
	statusInsufficientAuthorization:  ResponseInsufficientAuthorization,
	statusInsufficientEncryption:     ResponseInsufficientEncryption,
	statusInsufficientEncKeySize:     ResponseInsufficientEncryptionKeySize,
	statusInvalidParams:              ResponseInvalidParams,
	statusNoResources:                ResponseNoResources,
	statusNotSupported:               ResponseNotSupported,
}

// statusEvent translates a status byte; unknown values are processing errors
func statusEvent(status byte) Event {
	if ev, ok := statusTable[status]; ok {
		return ev
	}
	return ErrorProcessing
}

// completionFlag is the waiter flag a response outcome signals
func completionFlag(ev Event) waiter.Flags {
	switch ev {
	case ResponseSuccess:
		return waiter.FlagResponse
	case ResponsePending:
		return waiter.FlagEventFollows
	default:
		return waiter.FlagFailure
	}
}
