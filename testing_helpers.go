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
	"context"
	"sync"

	"github.com/ZaparooProject/go-bleradio/internal/frame"
)

// MockTransport is an in-memory Transport for tests.
//
// Frames passed to Inject are queued for Read and announced through the
// notify callback. A responder installed with SetResponder is called for each
// written command and its frames are injected the same way.
type MockTransport struct {
	notify    func()
	responder func(cmd []byte) [][]byte
	writeErr  error
	readErr   error
	initErr   error
	blockChan chan struct{}
	rx        [][]byte
	written   [][]byte
	mu        sync.Mutex
	blocked   int
	closed    bool
	blocking  bool
}

// NewMockTransport creates a mock transport with no responder
func NewMockTransport() *MockTransport {
	return &MockTransport{blockChan: make(chan struct{})}
}

// NewMockTransportWithResponder creates a mock transport answering commands with fn
func NewMockTransportWithResponder(fn func(cmd []byte) [][]byte) *MockTransport {
	m := NewMockTransport()
	m.SetResponder(fn)
	return m
}

// Init records the notify callback
func (m *MockTransport) Init(notify func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initErr != nil {
		return m.initErr
	}
	m.notify = notify
	m.closed = false
	return nil
}

// Write records frm and injects the responder's answer
func (m *MockTransport) Write(ctx context.Context, frm []byte) error {
	m.mu.Lock()
	blocking, blockChan := m.blocking, m.blockChan
	m.mu.Unlock()

	if blocking {
		m.mu.Lock()
		m.blocked++
		m.mu.Unlock()
		var err error
		select {
		case <-blockChan:
		case <-ctx.Done():
			err = NewTimeoutError("Write", "mock")
		}
		m.mu.Lock()
		m.blocked--
		m.mu.Unlock()
		if err != nil {
			return err
		}
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return NewTransportClosedError("Write", "mock")
	}
	if m.writeErr != nil {
		err := m.writeErr
		m.mu.Unlock()
		return err
	}
	m.written = append(m.written, append([]byte(nil), frm...))
	responder := m.responder
	m.mu.Unlock()

	if responder != nil {
		m.Inject(responder(frm)...)
	}
	return nil
}

// Read pops the next injected frame. A read error set with SetReadError is
// returned once.
func (m *MockTransport) Read(_ context.Context, buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		err := m.readErr
		m.readErr = nil
		return 0, err
	}
	if m.closed {
		return 0, NewTransportClosedError("Read", "mock")
	}
	if len(m.rx) == 0 {
		return 0, nil
	}
	frm := m.rx[0]
	m.rx = m.rx[1:]
	if len(frm) > len(buf) {
		return 0, NewDataTooLargeError("Read", "mock")
	}
	return copy(buf, frm), nil
}

// Close marks the transport closed and releases blocked writers
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		if m.blocking {
			close(m.blockChan)
			m.blockChan = make(chan struct{})
			m.blocking = false
		}
	}
	return nil
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// Inject queues frames for Read and wakes the receive path
func (m *MockTransport) Inject(frames ...[]byte) {
	if len(frames) == 0 {
		return
	}
	m.mu.Lock()
	for _, f := range frames {
		m.rx = append(m.rx, append([]byte(nil), f...))
	}
	notify := m.notify
	m.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// SetResponder installs the function answering written commands
func (m *MockTransport) SetResponder(fn func(cmd []byte) [][]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responder = fn
}

// SetWriteError makes every Write fail with err until cleared with nil
func (m *MockTransport) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// SetReadError makes the next Read fail with err and wakes the receive path
func (m *MockTransport) SetReadError(err error) {
	m.mu.Lock()
	m.readErr = err
	notify := m.notify
	m.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// SetInitError makes Init fail with err
func (m *MockTransport) SetInitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initErr = err
}

// BlockWrites makes Write wait until Unblock is called or its context is done
func (m *MockTransport) BlockWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocking = true
}

// Unblock releases writers waiting in Write and stops blocking new ones
func (m *MockTransport) Unblock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blocking {
		close(m.blockChan)
		m.blockChan = make(chan struct{})
		m.blocking = false
	}
}

// BlockedWriters returns how many writers are waiting in Write
func (m *MockTransport) BlockedWriters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blocked
}

// Written returns copies of the frames written so far
func (m *MockTransport) Written() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.written))
	for i, f := range m.written {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// WrittenOpcodes returns the opcodes of the frames written so far
func (m *MockTransport) WrittenOpcodes() []Opcode {
	m.mu.Lock()
	defer m.mu.Unlock()
	ops := make([]Opcode, 0, len(m.written))
	for _, f := range m.written {
		if op, ok := frame.CommandOpcode(f); ok {
			ops = append(ops, Opcode(op))
		}
	}
	return ops
}
