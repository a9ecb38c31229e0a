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
	"errors"
	"time"

	"go.uber.org/zap"
)

// RadioConfig holds the dispatcher settings of a Radio
type RadioConfig struct {
	// CommandTimeout bounds the wait for a command's completion
	CommandTimeout time.Duration
	// AccessTimeout bounds the wait for exclusive access to the radio
	AccessTimeout time.Duration
	// EventQueueDepth is how many undelivered events are kept before new ones are dropped
	EventQueueDepth int
}

// DefaultRadioConfig returns the default dispatcher settings
func DefaultRadioConfig() RadioConfig {
	return RadioConfig{
		CommandTimeout:  time.Second,
		AccessTimeout:   time.Second,
		EventQueueDepth: 16,
	}
}

// Option is a functional option for configuring a Radio
type Option func(*Radio) error

// WithCommandTimeout sets how long a command waits for its completion
func WithCommandTimeout(timeout time.Duration) Option {
	return func(r *Radio) error {
		if timeout <= 0 {
			return errors.New("command timeout must be positive")
		}
		r.config.CommandTimeout = timeout
		return nil
	}
}

// WithAccessTimeout sets how long a command waits for exclusive access
func WithAccessTimeout(timeout time.Duration) Option {
	return func(r *Radio) error {
		if timeout <= 0 {
			return errors.New("access timeout must be positive")
		}
		r.config.AccessTimeout = timeout
		return nil
	}
}

// WithEventQueueDepth sets the capacity of the queue behind GetEvent
func WithEventQueueDepth(depth int) Option {
	return func(r *Radio) error {
		if depth < 1 {
			return errors.New("event queue depth must be at least 1")
		}
		r.config.EventQueueDepth = depth
		return nil
	}
}

// WithEventCallback installs a function called from the receive goroutine
// for every application visible event, in addition to the event queue
func WithEventCallback(fn func(Event)) Option {
	return func(r *Radio) error {
		r.notify = fn
		return nil
	}
}

// WithLogger sets the logger of the radio
func WithLogger(l *zap.Logger) Option {
	return func(r *Radio) error {
		if l == nil {
			return errors.New("nil logger")
		}
		r.log = l
		return nil
	}
}
