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

// Package transport provides internal transport utilities
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotReady is returned by Poll when the device never became ready
var ErrNotReady = errors.New("device not ready")

// Attempt is one try of a polled operation.
// Returns: result, done, error
//   - result: the value once the device is ready
//   - done: false while the device is not ready yet
//   - error: a failure that stops polling
type Attempt[T any] func() (T, bool, error)

// PollConfig bounds how long and how often Poll tries
type PollConfig struct {
	Timeout  time.Duration
	Interval time.Duration
}

// Poll repeats op until it reports done, fails, ctx ends or the timeout
// elapses. op always runs at least once.
func Poll[T any](ctx context.Context, cfg PollConfig, op Attempt[T]) (T, error) {
	var zero T
	deadline := time.Now().Add(cfg.Timeout)

	for {
		result, done, err := op()
		if err != nil {
			return zero, err
		}
		if done {
			return result, nil
		}
		if !time.Now().Before(deadline) {
			return zero, ErrNotReady
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %w", ErrNotReady, ctx.Err())
		case <-time.After(cfg.Interval):
		}
	}
}
