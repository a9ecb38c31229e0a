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
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	debugEnabled atomic.Bool
	pkgLogger    atomic.Pointer[zap.Logger]
)

// SetDebugEnabled turns debug logging of frames and dispatcher decisions on or off
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// SetLogger installs the logger used by radios created without WithLogger.
// Passing nil restores zap's global logger.
func SetLogger(l *zap.Logger) {
	pkgLogger.Store(l)
}

func logger() *zap.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return zap.L()
}

func debugf(l *zap.Logger, format string, args ...any) {
	if !debugEnabled.Load() {
		return
	}
	l.Debug(fmt.Sprintf(format, args...))
}

func debugln(l *zap.Logger, msg string, fields ...zap.Field) {
	if !debugEnabled.Load() {
		return
	}
	l.Debug(msg, fields...)
}

func hexField(key string, b []byte) zap.Field {
	return zap.String(key, hex.EncodeToString(b))
}
