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

// Package wifi drives an AT command Wi-Fi module, such as an ESP8266, over a
// serial byte stream.
//
// Commands share the completion contract of the BLE engine: one command at a
// time, a final OK completes it, a send prompt announces that payload may
// follow, and ERROR or FAIL fails it.
package wifi

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-bleradio/internal/waiter"
	"go.uber.org/zap"
)

const maxTokenSize = 8192

type reply struct {
	err   error
	lines []string
}

// Module is an AT command engine bound to one module
type Module struct {
	rw     io.ReadWriteCloser
	log    *zap.Logger
	onData func(link int, data []byte)
	slot   *waiter.Slot
	done   chan struct{}
	ready  chan struct{}
	wait   waiter.Waiter[reply]
	lines  []string
	config Config
	mu     sync.Mutex
	closed atomic.Bool
}

// New starts an engine reading from rw
func New(rw io.ReadWriteCloser, opts ...Option) (*Module, error) {
	if rw == nil {
		return nil, fmt.Errorf("%w: nil stream", ErrInvalidArgument)
	}
	m := &Module{
		rw:     rw,
		log:    zap.L().Named("wifi"),
		slot:   waiter.NewSlot(),
		done:   make(chan struct{}),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	go m.readLoop()
	return m, nil
}

func (m *Module) readLoop() {
	defer close(m.done)

	scanner := bufio.NewScanner(m.rw)
	scanner.Buffer(make([]byte, 1024), maxTokenSize)
	scanner.Split(splitAT)
	for scanner.Scan() {
		m.handleToken(scanner.Bytes())
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	if !m.closed.Swap(true) {
		m.log.Warn("module stream ended", zap.Error(err))
	}
	m.wait.Signal(waiter.FlagFailure, reply{err: fmt.Errorf("%w: %w", ErrClosed, err)})
}

func (m *Module) handleToken(tok []byte) {
	if bytes.HasPrefix(tok, []byte(ipdPrefix)) {
		if link, payload, ok := parseIPD(tok); ok {
			m.log.Debug("data received", zap.Int("link", link), zap.Int("len", len(payload)))
			if m.onData != nil {
				m.onData(link, append([]byte(nil), payload...))
			}
			return
		}
	}

	line := string(tok)
	switch {
	case line == ">":
		m.wait.Signal(waiter.FlagEventFollows, reply{})
	case line == "OK" || line == "SEND OK":
		m.finish(waiter.FlagResponse, nil)
	case line == "ERROR" || line == "FAIL" || line == "SEND FAIL":
		m.finish(waiter.FlagFailure, ErrCommandFailed)
	case line == "ready":
		m.mu.Lock()
		if m.ready != nil {
			close(m.ready)
			m.ready = nil
		}
		m.mu.Unlock()
	case unsolicited(line):
		m.log.Debug("module status", zap.String("line", line))
	case strings.HasPrefix(line, "AT"):
		// command echo
	default:
		if m.wait.Armed() {
			m.mu.Lock()
			m.lines = append(m.lines, line)
			m.mu.Unlock()
		}
	}
}

// unsolicited reports status lines the module prints on its own
func unsolicited(line string) bool {
	switch line {
	case "WIFI CONNECTED", "WIFI GOT IP", "WIFI DISCONNECT", "CONNECT", "CLOSED":
		return true
	}
	return strings.HasPrefix(line, "busy ") ||
		strings.HasSuffix(line, ",CONNECT") ||
		strings.HasSuffix(line, ",CLOSED") ||
		strings.HasSuffix(line, ",CONNECT FAIL")
}

func (m *Module) finish(flag waiter.Flags, err error) {
	m.mu.Lock()
	lines := m.lines
	m.lines = nil
	m.mu.Unlock()
	if !m.wait.Signal(flag, reply{lines: lines, err: err}) {
		m.log.Debug("result with no command waiting", zap.Stringer("flag", flag))
	}
}

// acquire takes the command slot for name
func (m *Module) acquire(ctx context.Context, name string) error {
	if m.closed.Load() {
		return &CommandError{Command: name, Err: ErrClosed}
	}
	if err := m.slot.Acquire(ctx, m.config.AccessTimeout); err != nil {
		if errors.Is(err, waiter.ErrAcquireTimeout) {
			err = ErrAccessTimeout
		}
		return &CommandError{Command: name, Err: err}
	}
	return nil
}

// roundTrip writes payload and waits for want. The slot must be held.
func (m *Module) roundTrip(ctx context.Context, name string, payload []byte, want waiter.Flags,
	timeout time.Duration,
) ([]string, error) {
	if m.closed.Load() {
		return nil, &CommandError{Command: name, Err: ErrClosed}
	}

	m.mu.Lock()
	m.lines = nil
	m.mu.Unlock()
	pending := m.wait.Arm(want)

	m.log.Debug("tx", zap.String("command", name), zap.Int("len", len(payload)))
	if _, err := m.rw.Write(payload); err != nil {
		m.wait.Disarm(pending)
		return nil, &CommandError{Command: name, Err: fmt.Errorf("write failed: %w", err)}
	}

	res, err := pending.Wait(ctx, timeout)
	if err != nil {
		if errors.Is(err, waiter.ErrTimeout) {
			err = ErrTimeout
		} else {
			err = fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, &CommandError{Command: name, Err: err}
	}
	if res.Flag == waiter.FlagFailure {
		return nil, &CommandError{Command: name, Err: res.Value.err, Lines: res.Value.lines}
	}
	return res.Value.lines, nil
}

// command runs one AT command that ends with OK
func (m *Module) command(ctx context.Context, cmd string, timeout time.Duration) ([]string, error) {
	if err := m.acquire(ctx, cmd); err != nil {
		return nil, err
	}
	defer m.slot.Release()
	return m.roundTrip(ctx, cmd, []byte(cmd+"\r\n"), waiter.FlagResponse, timeout)
}

// Close closes the stream and stops the reader
func (m *Module) Close() error {
	m.closed.Store(true)
	err := m.rw.Close()
	<-m.done
	if err != nil {
		return fmt.Errorf("failed to close module stream: %w", err)
	}
	return nil
}
