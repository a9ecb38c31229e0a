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
	"bytes"
	"strconv"
)

const ipdPrefix = "+IPD,"

// splitAT is a bufio.SplitFunc cutting module output into CRLF terminated
// lines, the bare send prompt and +IPD data blocks. Blank lines are skipped.
func splitAT(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) && (data[start] == '\r' || data[start] == '\n') {
		start++
	}
	if start > 0 {
		return start, nil, nil
	}
	if len(data) == 0 {
		return 0, nil, nil
	}

	if data[0] == '>' {
		n := 1
		if len(data) > 1 && data[1] == ' ' {
			n = 2
		}
		return n, []byte{'>'}, nil
	}

	if bytes.HasPrefix(data, []byte(ipdPrefix)) {
		colon := bytes.IndexByte(data, ':')
		if colon < 0 {
			if atEOF {
				return len(data), nil, nil
			}
			return 0, nil, nil
		}
		size, ok := ipdLength(data[len(ipdPrefix):colon])
		if !ok {
			// Not a data block after all, treat it as a line
			return splitLine(data, atEOF)
		}
		total := colon + 1 + size
		if len(data) < total {
			if atEOF {
				return len(data), nil, nil
			}
			return 0, nil, nil
		}
		return total, data[:total], nil
	}

	return splitLine(data, atEOF)
}

func splitLine(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.Index(data, []byte("\r\n")); i >= 0 {
		return i + 2, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// ipdLength reads the length from "<len>" or "<link>,<len>"
func ipdLength(hdr []byte) (int, bool) {
	if i := bytes.LastIndexByte(hdr, ','); i >= 0 {
		hdr = hdr[i+1:]
	}
	n, err := strconv.Atoi(string(hdr))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// parseIPD splits a data block into its link id and payload. Link is -1 when
// the module runs with a single connection.
func parseIPD(tok []byte) (link int, payload []byte, ok bool) {
	colon := bytes.IndexByte(tok, ':')
	if colon < 0 || !bytes.HasPrefix(tok, []byte(ipdPrefix)) {
		return 0, nil, false
	}
	hdr := tok[len(ipdPrefix):colon]
	link = -1
	if i := bytes.IndexByte(hdr, ','); i >= 0 {
		id, err := strconv.Atoi(string(hdr[:i]))
		if err != nil {
			return 0, nil, false
		}
		link = id
	}
	return link, tok[colon+1:], true
}
