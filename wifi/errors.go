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
	"errors"
	"fmt"
	"strings"
)

// Errors returned by the AT engine
var (
	ErrCommandFailed   = errors.New("module reported failure")
	ErrTimeout         = errors.New("command timeout")
	ErrAccessTimeout   = errors.New("access timeout")
	ErrClosed          = errors.New("module closed")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnexpectedReply = errors.New("unexpected reply")
)

// CommandError describes a failed AT command. Lines holds the information
// lines the module printed before its final result.
type CommandError struct {
	Err     error
	Command string
	Lines   []string
}

func (e *CommandError) Error() string {
	if len(e.Lines) == 0 {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Command, e.Err, strings.Join(e.Lines, "; "))
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
