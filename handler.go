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

	"github.com/ZaparooProject/go-bleradio/internal/frame"
	"github.com/ZaparooProject/go-bleradio/internal/waiter"
	"go.uber.org/zap"
)

// handled is the outcome of one received frame
type handled struct {
	data   any
	err    error
	event  Event
	flag   waiter.Flags
	signal bool
}

// ProcessFrame parses and handles one complete received frame and returns
// the event it produced.
//
// A response to the outstanding command completes it. Everything else, and
// responses the outstanding command was not waiting for, is queued for
// GetEvent.
func (r *Radio) ProcessFrame(frm []byte) Event {
	debugln(r.log, "rx", hexField("frame", frm))

	r.mu.Lock()
	h := r.handleLocked(frm)
	r.mu.Unlock()

	if h.signal && r.wait.Signal(h.flag, completion{event: h.event, err: h.err}) {
		return h.event
	}
	if h.event != EventNone {
		r.enqueue(h.event, h.data)
	}
	return h.event
}

func (r *Radio) handleLocked(frm []byte) handled {
	pkt, err := frame.Parse(frm)
	if err != nil {
		r.log.Warn("dropping malformed frame", zap.Error(err), hexField("frame", frm))
		// A malformed frame may be the answer to the outstanding command
		return handled{
			event:  ErrorParsing,
			err:    fmt.Errorf("%w: %w", ErrParsing, err),
			flag:   waiter.FlagFailure,
			signal: true,
		}
	}

	switch pkt.Kind {
	case frame.KindResponse:
		return r.handleResponse(pkt)
	default:
		return r.handleEvent(pkt)
	}
}

func (r *Radio) handleResponse(pkt frame.Packet) handled {
	op := Opcode(pkt.Code)
	if op != r.opcode {
		r.log.Warn("response does not match outstanding command",
			zap.Stringer("opcode", op), zap.Stringer("outstanding", r.opcode))
		return handled{event: ResponseFailure}
	}

	ev := statusEvent(pkt.Status)
	if flag := completionFlag(ev); flag != waiter.FlagFailure && flag&r.want == 0 {
		// The command is not waiting for this outcome, its destination stays registered
		debugf(r.log, "response %s status 0x%02X not awaited", op, pkt.Status)
		return handled{event: ev, flag: flag, signal: true}
	}

	dest := r.dest
	r.dest = nil

	var err error
	if sd, ok := dest.(statusDecoder); ok {
		if sev, ok := sd.decodeStatus(pkt.Status); ok {
			ev = sev
		}
	} else if dest != nil && ev.IsSuccess() {
		if derr := dest.decodeResponse(pkt.Payload); derr != nil {
			r.log.Warn("response payload rejected", zap.Stringer("opcode", op), zap.Error(derr))
			ev = ErrorProcessing
			err = derr
		}
	}

	switch {
	case err != nil:
	case ev == ErrorProcessing:
		err = fmt.Errorf("%w: status 0x%02X", ErrProcessing, pkt.Status)
	case !ev.IsSuccess():
		err = fmt.Errorf("%w: %s", ErrRadioStatus, ev)
	}

	debugf(r.log, "response %s status 0x%02X -> %s", op, pkt.Status, ev)
	return handled{event: ev, err: err, flag: completionFlag(ev), signal: true}
}

func (r *Radio) handleEvent(pkt frame.Packet) handled {
	kind, ok := aciEvents[pkt.Code]
	if !ok {
		r.log.Warn("unknown radio event", zap.Uint16("code", pkt.Code))
		return handled{event: ErrorProcessing}
	}

	dec := kind.newDecoder()
	if err := dec.decode(pkt.Payload); err != nil {
		r.log.Warn("radio event rejected", zap.Stringer("event", kind.event), zap.Error(err))
		return handled{event: ErrorProcessing}
	}

	ev := kind.event
	if kind.event != EventHardwareError {
		if sev := statusEvent(pkt.Status); !sev.IsSuccess() {
			return handled{event: sev}
		}
	}
	dec.apply(&r.cache)

	debugf(r.log, "event %s", ev)
	return handled{event: ev, data: r.cache.snapshot(ev)}
}
