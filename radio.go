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
	"sync"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-bleradio/internal/frame"
	"github.com/ZaparooProject/go-bleradio/internal/waiter"
	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned by Init on a radio whose receive path is running
var ErrAlreadyRunning = errors.New("radio already initialized")

// completion is what the receive path hands to a waiting command
type completion struct {
	err   error
	event Event
}

// Radio is a companion radio driven over a Transport.
//
// One command is outstanding at a time. Commands block until the radio
// answers, the command times out or the context is done. Unsolicited events
// are decoded into caches read through the accessor methods and queued for
// GetEvent and NextEvent.
type Radio struct {
	transport Transport
	log       *zap.Logger
	notify    func(Event)
	slot      *waiter.Slot
	events    chan Notification
	wake      chan struct{}
	done      chan struct{}
	cancel    context.CancelFunc
	dest      ResponseData
	want      waiter.Flags
	cache     caches
	wait      waiter.Waiter[completion]
	config    RadioConfig
	dropped   atomic.Uint64
	mu        sync.Mutex
	closeMu   sync.Mutex
	running   atomic.Bool
	opcode    Opcode
}

// New creates a radio on transport. Call Init to start the receive path.
func New(transport Transport, opts ...Option) (*Radio, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidParameter)
	}
	r := &Radio{
		transport: transport,
		config:    DefaultRadioConfig(),
		slot:      waiter.NewSlot(),
		wake:      make(chan struct{}, 1),
		log:       logger(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.events = make(chan Notification, r.config.EventQueueDepth)
	r.log = r.log.With(zap.String("transport", string(transport.Type())))
	return r, nil
}

// Transport returns the transport the radio was created with
func (r *Radio) Transport() Transport {
	return r.transport
}

// Init starts the transport and the receive goroutine. notify, if not nil,
// is called from the receive goroutine for each application visible event
// and replaces any WithEventCallback function. The receive path runs until
// ctx is done or Close is called.
func (r *Radio) Init(ctx context.Context, notify func(Event)) error {
	r.closeMu.Lock()
	defer r.closeMu.Unlock()

	if r.running.Load() {
		return ErrAlreadyRunning
	}
	if r.cancel != nil {
		// The previous receive loop stopped on a transport failure
		r.cancel()
		<-r.done
		r.cancel = nil
	}
	if notify != nil {
		r.notify = notify
	}
	if err := r.transport.Init(r.wakeup); err != nil {
		return fmt.Errorf("transport init: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running.Store(true)
	go r.receiveLoop(loopCtx, r.done)

	// Frames may have arrived before the callback was installed
	r.wakeup()
	r.log.Debug("radio initialized")
	return nil
}

// Close stops the receive path and closes the transport
func (r *Radio) Close() error {
	r.closeMu.Lock()
	defer r.closeMu.Unlock()

	if r.cancel != nil {
		r.cancel()
		<-r.done
		r.cancel = nil
	}
	if err := r.transport.Close(); err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}

// Running reports whether the receive path is running
func (r *Radio) Running() bool {
	return r.running.Load()
}

// DroppedEvents returns how many events were discarded because the queue was full
func (r *Radio) DroppedEvents() uint64 {
	return r.dropped.Load()
}

// wakeup is the transport's notify callback. It never blocks.
func (r *Radio) wakeup() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Radio) receiveLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer r.running.Store(false)

	buf := frame.GetBuffer()
	defer frame.PutBuffer(buf)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.wake:
		}
		if !r.drain(ctx, buf) {
			return
		}
	}
}

// drain processes frames until the transport has none ready. It returns
// false when the transport failed permanently.
func (r *Radio) drain(ctx context.Context, buf []byte) bool {
	for {
		n, err := r.transport.Read(ctx, buf)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			r.log.Warn("transport read failed", zap.Error(err))
			r.wait.Signal(waiter.FlagFailure, completion{
				event: ResponseFailure,
				err:   fmt.Errorf("%w: %w", ErrTransportRead, err),
			})
			if !IsRetryable(err) {
				r.log.Error("receive path stopped", zap.Error(err))
				return false
			}
			return true
		}
		if n == 0 {
			return true
		}
		r.ProcessFrame(buf[:n])
	}
}

// GetEvent returns the next queued application visible event, blocking until
// one arrives or ctx is done
func (r *Radio) GetEvent(ctx context.Context) (Event, error) {
	n, err := r.NextEvent(ctx)
	if err != nil {
		return EventNone, err
	}
	return n.Event, nil
}

// NextEvent is GetEvent with the cache snapshot taken when the event was processed
func (r *Radio) NextEvent(ctx context.Context) (Notification, error) {
	select {
	case n := <-r.events:
		return n, nil
	case <-ctx.Done():
		return Notification{}, fmt.Errorf("waiting for event: %w", ctx.Err())
	}
}

// PollEvent returns the next queued event without blocking, or EventNone
func (r *Radio) PollEvent() Event {
	select {
	case n := <-r.events:
		return n.Event
	default:
		return EventNone
	}
}

func (r *Radio) enqueue(ev Event, data any) {
	n := Notification{Event: ev, Time: time.Now(), Data: data}
	select {
	case r.events <- n:
	default:
		r.dropped.Add(1)
		r.log.Warn("event queue full, dropping event", zap.Stringer("event", ev))
		return
	}
	if r.notify != nil {
		r.notify(ev)
	}
}
