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

package waiter

import (
	"context"
	"errors"
	"time"
)

// ErrAcquireTimeout is returned when exclusive access is not granted in time
var ErrAcquireTimeout = errors.New("timed out waiting for exclusive access")

// Slot grants exclusive access to one holder at a time
type Slot struct {
	ch chan struct{}
}

// NewSlot creates a free slot
func NewSlot() *Slot {
	return &Slot{ch: make(chan struct{}, 1)}
}

// Acquire takes the slot, waiting at most timeout
func (s *Slot) Acquire(ctx context.Context, timeout time.Duration) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrAcquireTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the slot. Releasing a free slot panics.
func (s *Slot) Release() {
	select {
	case <-s.ch:
	default:
		panic("waiter: release of unheld slot")
	}
}
