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
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-bleradio/internal/frame"
	"github.com/ZaparooProject/go-bleradio/internal/waiter"
	"go.uber.org/zap"
)

// command is one request to the radio
type command struct {
	dest   ResponseData
	name   string
	params []byte
	opcode Opcode
	want   waiter.Flags
}

func (c command) fail(ev Event, err error) error {
	return &CommandError{Op: c.name, Opcode: c.opcode, Event: ev, Err: err}
}

// exec issues cmd and waits for its completion. Exclusive access is held
// from before the frame is written until the command completes or times out.
func (r *Radio) exec(ctx context.Context, cmd command) error {
	if !r.running.Load() {
		return cmd.fail(ResponseFailure, ErrNotRunning)
	}

	frm, err := frame.Encode(uint16(cmd.opcode), cmd.params)
	if err != nil {
		return cmd.fail(ResponseInvalidParams, fmt.Errorf("%w: %w", ErrInvalidParameter, err))
	}

	if err := r.slot.Acquire(ctx, r.config.AccessTimeout); err != nil {
		if errors.Is(err, waiter.ErrAcquireTimeout) {
			err = ErrAccessTimeout
		}
		return cmd.fail(ErrorTimeout, err)
	}
	defer r.slot.Release()

	r.mu.Lock()
	r.opcode = cmd.opcode
	r.dest = cmd.dest
	r.want = cmd.want
	r.mu.Unlock()

	// Armed before the write so a fast answer is not lost
	pending := r.wait.Arm(cmd.want)

	debugln(r.log, "tx", zap.Stringer("opcode", cmd.opcode), hexField("frame", frm))
	if err := r.transport.Write(ctx, frm); err != nil {
		r.wait.Disarm(pending)
		r.clearDest()
		return cmd.fail(ResponseFailure, fmt.Errorf("%w: %w", ErrTransportWrite, err))
	}

	res, err := pending.Wait(ctx, r.config.CommandTimeout)
	if err != nil {
		// The opcode stays outstanding so a late answer is still recognized as stale
		r.clearDest()
		if errors.Is(err, waiter.ErrTimeout) {
			err = ErrTimeout
		} else {
			err = fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		r.log.Debug("command timed out", zap.Stringer("opcode", cmd.opcode))
		return cmd.fail(ErrorTimeout, err)
	}

	if res.Flag == waiter.FlagFailure {
		return cmd.fail(res.Value.event, res.Value.err)
	}
	return nil
}

func (r *Radio) clearDest() {
	r.mu.Lock()
	r.dest = nil
	r.want = 0
	r.mu.Unlock()
}
