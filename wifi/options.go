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

package wifi

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Config holds the engine timeouts
type Config struct {
	CommandTimeout time.Duration // Wait for OK/ERROR of an ordinary command
	AccessTimeout  time.Duration // Wait for another command to finish
	JoinTimeout    time.Duration // Wait for an access point join
	DialTimeout    time.Duration // Wait for a connection to open
	ResetTimeout   time.Duration // Wait for the module to come back after a reset
}

// DefaultConfig returns timeouts suited to ESP8266 class modules
func DefaultConfig() Config {
	return Config{
		CommandTimeout: 2 * time.Second,
		AccessTimeout:  2 * time.Second,
		JoinTimeout:    20 * time.Second,
		DialTimeout:    10 * time.Second,
		ResetTimeout:   5 * time.Second,
	}
}

// Option configures a Module
type Option func(*Module) error

// WithConfig replaces all timeouts
func WithConfig(cfg Config) Option {
	return func(m *Module) error {
		if cfg.CommandTimeout <= 0 || cfg.AccessTimeout <= 0 || cfg.JoinTimeout <= 0 ||
			cfg.DialTimeout <= 0 || cfg.ResetTimeout <= 0 {
			return fmt.Errorf("%w: timeouts must be positive", ErrInvalidArgument)
		}
		m.config = cfg
		return nil
	}
}

// WithDataHandler installs the callback for data received on a connection.
// It runs on the reader goroutine and must not issue commands.
func WithDataHandler(fn func(link int, data []byte)) Option {
	return func(m *Module) error {
		m.onData = fn
		return nil
	}
}

// WithLogger sets the logger used by the engine
func WithLogger(l *zap.Logger) Option {
	return func(m *Module) error {
		if l == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidArgument)
		}
		m.log = l
		return nil
	}
}
