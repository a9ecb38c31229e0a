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

/*
Package bleradio drives a companion BLE radio through its vendor command and
event protocol.

The host sends command frames carrying a 16-bit opcode and parameters. The
radio answers each command with a command complete frame, and reports link
activity, pairing, inquiry results and received data with unsolicited vendor
events. A Radio encodes commands, keeps exactly one command outstanding,
parses every received frame, updates the event caches and delivers
application visible events on a bounded queue.

Features:
  - UART and SPI transports (see transport/uart and transport/spi)
  - GAP, SMP, direct test mode and profile commands
  - Typed responses and cached event data with copy-out accessors
  - Per command timeout and exclusive access timeout
  - Distinct errors for timeouts, parse failures and radio status codes

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-bleradio"
	    "github.com/ZaparooProject/go-bleradio/transport/uart"
	)

	transport, err := uart.New("/dev/ttyUSB0")
	if err != nil {
	    log.Fatal(err)
	}

	radio, err := bleradio.New(transport,
	    bleradio.WithCommandTimeout(2*time.Second),
	)
	if err != nil {
	    log.Fatal(err)
	}
	if err := radio.Init(ctx, nil); err != nil {
	    log.Fatal(err)
	}
	defer radio.Close()

	addr, err := radio.GetLocalAddress(ctx)
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println("local address:", addr.Address)

	// Commands announcing an event return once the radio accepted them.
	// The event itself arrives on the queue.
	if err := radio.StartInquiry(ctx, bleradio.InquiryGeneral, 5); err != nil {
	    log.Fatal(err)
	}
	for {
	    n, err := radio.NextEvent(ctx)
	    if err != nil {
	        log.Fatal(err)
	    }
	    if n.Event == bleradio.EventGAPInquiryComplete {
	        break
	    }
	    if res, ok := n.Data.(bleradio.InquiryResult); ok {
	        fmt.Println(res.Address, res.RSSI)
	    }
	}

Error Handling:

Failed commands return a *CommandError. EventOf reports the event code the
failure maps to, and errors.Is matches the cause:

	if errors.Is(err, bleradio.ErrTimeout) {
	    // no answer in time
	}
	if errors.Is(err, bleradio.ErrRadioStatus) {
	    // the radio rejected the command
	}

Thread Safety:

Radio methods may be called from several goroutines. Commands are serialized:
a caller waits up to the access timeout for the previous command to finish.
*/
package bleradio
