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
	"cmp"
	"fmt"
)

// Argument checks for the command wrappers. An out of range argument is a
// programming error, so these panic before anything reaches the radio.

func mustInRange[T cmp.Ordered](name string, v, lo, hi T) {
	if v < lo || v > hi {
		panic(fmt.Sprintf("bleradio: %s %v out of range [%v, %v]", name, v, lo, hi))
	}
}

func mustMaxLen(name string, b []byte, limit int) {
	if len(b) > limit {
		panic(fmt.Sprintf("bleradio: %s length %d exceeds %d", name, len(b), limit))
	}
}

func mustLenRange(name string, b []byte, lo, hi int) {
	if len(b) < lo || len(b) > hi {
		panic(fmt.Sprintf("bleradio: %s length %d out of range [%d, %d]", name, len(b), lo, hi))
	}
}

// ValidateConnParams reports whether p is acceptable to GAPConnect without panicking
func ValidateConnParams(p ConnParams) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidParameter, rec)
		}
	}()
	p.mustValidate()
	return nil
}
