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
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/ZaparooProject/go-bleradio/internal/waiter"
)

// Mode is the module's Wi-Fi role
type Mode int

const (
	ModeStation Mode = 1
	ModeSoftAP  Mode = 2
	ModeBoth    Mode = 3
)

// Limits of the AT command set
const (
	MaxLinks    = 5
	MaxSendLen  = 2048
	MaxSSIDLen  = 32
	MaxPassLen  = 64
	maxLinkID   = MaxLinks - 1
	cwjapPrefix = "+CWJAP:"
	staIPPrefix = "+CIFSR:STAIP,"
)

var joinFailures = map[string]string{
	"1": "connection timeout",
	"2": "wrong password",
	"3": "access point not found",
	"4": "connection failed",
}

// Test checks that the module answers
func (m *Module) Test(ctx context.Context) error {
	_, err := m.command(ctx, "AT", m.config.CommandTimeout)
	return err
}

// Reset restarts the module and waits until it reports ready
func (m *Module) Reset(ctx context.Context) error {
	const cmd = "AT+RST"
	if err := m.acquire(ctx, cmd); err != nil {
		return err
	}
	defer m.slot.Release()

	ready := make(chan struct{})
	m.mu.Lock()
	m.ready = ready
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		if m.ready == ready {
			m.ready = nil
		}
		m.mu.Unlock()
	}()

	if _, err := m.roundTrip(ctx, cmd, []byte(cmd+"\r\n"), waiter.FlagResponse, m.config.CommandTimeout); err != nil {
		return err
	}

	timer := time.NewTimer(m.config.ResetTimeout)
	defer timer.Stop()
	select {
	case <-ready:
		return nil
	case <-timer.C:
		return &CommandError{Command: cmd, Err: ErrTimeout}
	case <-ctx.Done():
		return &CommandError{Command: cmd, Err: fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())}
	}
}

// Version returns the firmware version lines
func (m *Module) Version(ctx context.Context) (string, error) {
	lines, err := m.command(ctx, "AT+GMR", m.config.CommandTimeout)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// SetMode selects station, access point or both
func (m *Module) SetMode(ctx context.Context, mode Mode) error {
	if mode < ModeStation || mode > ModeBoth {
		return fmt.Errorf("%w: mode %d", ErrInvalidArgument, mode)
	}
	_, err := m.command(ctx, fmt.Sprintf("AT+CWMODE=%d", mode), m.config.CommandTimeout)
	return err
}

// JoinAP joins an access point in station mode
func (m *Module) JoinAP(ctx context.Context, ssid, password string) error {
	if ssid == "" || len(ssid) > MaxSSIDLen {
		return fmt.Errorf("%w: ssid length %d", ErrInvalidArgument, len(ssid))
	}
	if len(password) > MaxPassLen {
		return fmt.Errorf("%w: password length %d", ErrInvalidArgument, len(password))
	}

	cmd := fmt.Sprintf("AT+CWJAP=\"%s\",\"%s\"", escape(ssid), escape(password))
	if err := m.acquire(ctx, "AT+CWJAP"); err != nil {
		return err
	}
	defer m.slot.Release()

	_, err := m.roundTrip(ctx, "AT+CWJAP", []byte(cmd+"\r\n"), waiter.FlagResponse, m.config.JoinTimeout)
	var cerr *CommandError
	if errors.As(err, &cerr) {
		for _, line := range cerr.Lines {
			code, found := strings.CutPrefix(line, cwjapPrefix)
			if reason, known := joinFailures[code]; found && known {
				cerr.Err = fmt.Errorf("%w: %s", cerr.Err, reason)
			}
		}
	}
	return err
}

// escape quotes the characters the AT parser treats specially
func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `,`, `\,`)
	return r.Replace(s)
}

// QuitAP leaves the current access point
func (m *Module) QuitAP(ctx context.Context) error {
	_, err := m.command(ctx, "AT+CWQAP", m.config.CommandTimeout)
	return err
}

// LocalIP returns the station address
func (m *Module) LocalIP(ctx context.Context) (netip.Addr, error) {
	lines, err := m.command(ctx, "AT+CIFSR", m.config.CommandTimeout)
	if err != nil {
		return netip.Addr{}, err
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, staIPPrefix) {
			continue
		}
		addr, err := netip.ParseAddr(strings.Trim(strings.TrimPrefix(line, staIPPrefix), `"`))
		if err != nil {
			return netip.Addr{}, &CommandError{Command: "AT+CIFSR", Err: fmt.Errorf("%w: %w", ErrUnexpectedReply, err)}
		}
		return addr, nil
	}
	return netip.Addr{}, &CommandError{Command: "AT+CIFSR", Err: ErrUnexpectedReply, Lines: lines}
}

// SetMultiplexing switches between a single connection and up to MaxLinks
func (m *Module) SetMultiplexing(ctx context.Context, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	_, err := m.command(ctx, fmt.Sprintf("AT+CIPMUX=%d", v), m.config.CommandTimeout)
	return err
}

// Dial opens link to address ("host:port") over network "tcp", "udp" or "ssl".
// Multiplexing must be enabled.
func (m *Module) Dial(ctx context.Context, link int, network, address string) error {
	if err := checkLink(link); err != nil {
		return err
	}
	proto := strings.ToUpper(network)
	if proto != "TCP" && proto != "UDP" && proto != "SSL" {
		return fmt.Errorf("%w: network %q", ErrInvalidArgument, network)
	}
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return fmt.Errorf("%w: port %q", ErrInvalidArgument, portStr)
	}

	cmd := fmt.Sprintf("AT+CIPSTART=%d,\"%s\",\"%s\",%d", link, proto, host, port)
	_, err = m.command(ctx, cmd, m.config.DialTimeout)
	return err
}

// Send writes data on link. The module prompts for the payload before it is
// written and confirms it with SEND OK.
func (m *Module) Send(ctx context.Context, link int, data []byte) error {
	if err := checkLink(link); err != nil {
		return err
	}
	if len(data) == 0 || len(data) > MaxSendLen {
		return fmt.Errorf("%w: payload length %d", ErrInvalidArgument, len(data))
	}

	cmd := fmt.Sprintf("AT+CIPSEND=%d,%d", link, len(data))
	if err := m.acquire(ctx, cmd); err != nil {
		return err
	}
	defer m.slot.Release()

	if _, err := m.roundTrip(ctx, cmd, []byte(cmd+"\r\n"), waiter.FlagEventFollows, m.config.CommandTimeout); err != nil {
		return err
	}
	_, err := m.roundTrip(ctx, cmd, data, waiter.FlagResponse, m.config.CommandTimeout)
	return err
}

// CloseConn closes link
func (m *Module) CloseConn(ctx context.Context, link int) error {
	if err := checkLink(link); err != nil {
		return err
	}
	_, err := m.command(ctx, fmt.Sprintf("AT+CIPCLOSE=%d", link), m.config.CommandTimeout)
	return err
}

func checkLink(link int) error {
	if link < 0 || link > maxLinkID {
		return fmt.Errorf("%w: link %d", ErrInvalidArgument, link)
	}
	return nil
}
