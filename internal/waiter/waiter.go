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

// Package waiter implements the completion wait and exclusive access slot
// shared by the radio command engines.
package waiter

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned when no wanted completion flag arrives in time
var ErrTimeout = errors.New("completion wait timed out")

// Flags is the completion vocabulary a command waits on
type Flags uint8

const (
	// FlagResponse signals a successful response with nothing further to follow
	FlagResponse Flags = 1 << iota
	// FlagEventFollows signals a successful response announcing a later event
	FlagEventFollows
	// FlagFailure signals that the radio (or the link to it) reported failure.
	// It always completes a wait, whether or not it was asked for.
	FlagFailure
)

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	s := ""
	add := func(name string) {
		if s != "" {
			s += "|"
		}
		s += name
	}
	if f&FlagResponse != 0 {
		add("response")
	}
	if f&FlagEventFollows != 0 {
		add("event-follows")
	}
	if f&FlagFailure != 0 {
		add("failure")
	}
	return s
}

// Result is what a completed wait observed
type Result[T any] struct {
	Value T
	Flag  Flags
}

// Waiter hands a single completion from the receive path to the one caller
// waiting for it. The zero value is ready to use.
type Waiter[T any] struct {
	pending *Pending[T]
	mu      sync.Mutex
}

// Pending is one armed wait
type Pending[T any] struct {
	w    *Waiter[T]
	ch   chan Result[T]
	want Flags
}

// Arm registers a new wait for want, replacing any previous one.
// Arm before the command is written so a fast reply is never missed.
func (w *Waiter[T]) Arm(want Flags) *Pending[T] {
	p := &Pending[T]{
		w:    w,
		ch:   make(chan Result[T], 1),
		want: want,
	}
	w.mu.Lock()
	w.pending = p
	w.mu.Unlock()
	return p
}

// Armed reports whether a wait is outstanding
func (w *Waiter[T]) Armed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending != nil
}

// Signal offers flag to the outstanding wait. It returns true if the wait was
// completed. Flags outside the wanted set are ignored, except FlagFailure.
func (w *Waiter[T]) Signal(flag Flags, value T) bool {
	w.mu.Lock()
	p := w.pending
	if p == nil || (flag&p.want == 0 && flag&FlagFailure == 0) {
		w.mu.Unlock()
		return false
	}
	w.pending = nil
	w.mu.Unlock()

	p.ch <- Result[T]{Flag: flag, Value: value}
	return true
}

// Disarm drops p if it is still the outstanding wait
func (w *Waiter[T]) Disarm(p *Pending[T]) {
	w.mu.Lock()
	if w.pending == p {
		w.pending = nil
	}
	w.mu.Unlock()
}

// Wait blocks until the wait is signaled, timeout elapses or ctx is done.
func (p *Pending[T]) Wait(ctx context.Context, timeout time.Duration) (Result[T], error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-p.ch:
		return res, nil
	case <-timer.C:
		return p.abandon(ErrTimeout)
	case <-ctx.Done():
		return p.abandon(ctx.Err())
	}
}

// abandon disarms p, unless a signal won the race in which case its result is returned
func (p *Pending[T]) abandon(cause error) (Result[T], error) {
	p.w.mu.Lock()
	if p.w.pending == p {
		p.w.pending = nil
		p.w.mu.Unlock()
		return Result[T]{}, cause
	}
	p.w.mu.Unlock()
	return <-p.ch, nil
}
