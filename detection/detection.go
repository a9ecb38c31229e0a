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

// Package detection lists the serial ports a radio may be attached to
package detection

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.bug.st/serial/enumerator"
)

// Options filter the reported ports
type Options struct {
	// Blocklist holds USB VID:PID pairs (hex, case-insensitive) never reported
	Blocklist []string
	// IgnorePaths holds port paths never reported
	IgnorePaths []string
	// USBOnly drops ports not backed by a USB adapter
	USBOnly bool
}

// DefaultOptions reports every port
func DefaultOptions() Options {
	return Options{}
}

// Port describes one serial port
type Port struct {
	Path         string
	VIDPID       string
	Product      string
	SerialNumber string
	USB          bool
}

func (p Port) String() string {
	if !p.USB {
		return p.Path
	}
	s := fmt.Sprintf("%s [%s]", p.Path, p.VIDPID)
	if p.Product != "" {
		s += " " + p.Product
	}
	return s
}

// Ports enumerates the system's serial ports and applies opts
func Ports(opts Options) ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	return filter(details, opts), nil
}

func filter(details []*enumerator.PortDetails, opts Options) []Port {
	ports := make([]Port, 0, len(details))
	for _, d := range details {
		if d == nil || IsPathIgnored(d.Name, opts.IgnorePaths) {
			continue
		}
		if opts.USBOnly && !d.IsUSB {
			continue
		}
		p := Port{Path: d.Name, USB: d.IsUSB}
		if d.IsUSB {
			p.VIDPID = strings.ToUpper(d.VID + ":" + d.PID)
			p.Product = d.Product
			p.SerialNumber = d.SerialNumber
			if IsBlocked(p.VIDPID, opts.Blocklist) {
				continue
			}
		}
		ports = append(ports, p)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Path < ports[j].Path })
	return ports
}

// IsBlocked reports whether vidpid is in blocklist
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))
	for _, blocked := range blocklist {
		if vidpid == strings.ToUpper(strings.TrimSpace(blocked)) {
			return true
		}
	}
	return false
}

// IsPathIgnored reports whether devicePath matches one of ignorePaths.
// Paths are cleaned and compared case-insensitively.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}
	device := normalizedPath(devicePath)
	for _, ignore := range ignorePaths {
		if ignore != "" && normalizedPath(ignore) == device {
			return true
		}
	}
	return false
}

func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
