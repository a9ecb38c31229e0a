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

// Package uart provides the UART transport for a companion radio
package uart

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	bleradio "github.com/ZaparooProject/go-bleradio"
	"github.com/ZaparooProject/go-bleradio/internal/frame"
	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	defaultBaudRate    = 115200
	defaultReadTimeout = 50 * time.Millisecond
	frameQueueDepth    = 32
)

// port is the part of serial.Port the transport uses
type port interface {
	io.ReadWriteCloser
}

type config struct {
	baudRate    int
	readTimeout time.Duration
}

// Option configures a UART transport
type Option func(*config)

// WithBaudRate sets the line speed
func WithBaudRate(baud int) Option {
	return func(c *config) { c.baudRate = baud }
}

// WithReadTimeout sets how long one read from the port may block. It bounds
// how quickly Close is noticed by the reader.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *config) { c.readTimeout = timeout }
}

// Transport implements bleradio.Transport over a serial port.
//
// A reader goroutine reassembles the byte stream into complete frames and
// announces each one through the notify callback.
type Transport struct {
	port     port
	log      *zap.Logger
	notify   func()
	frames   chan []byte
	done     chan struct{}
	readErr  atomic.Pointer[error]
	portName string
	writeMu  sync.Mutex
	mu       sync.Mutex
	closed   atomic.Bool
	started  bool
}

// New opens portName for a radio
func New(portName string, opts ...Option) (*Transport, error) {
	cfg := config{baudRate: defaultBaudRate, readTimeout: defaultReadTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	mode := &serial.Mode{
		BaudRate: cfg.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(portName, mode)
	if err != nil {
		return nil, bleradio.NewTransportError("open", portName,
			fmt.Errorf("%w: %w", bleradio.ErrDeviceNotFound, err), bleradio.ErrorTypePermanent)
	}
	if err := p.SetReadTimeout(cfg.readTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}
	_ = p.ResetInputBuffer()

	return newTransport(p, portName), nil
}

func newTransport(p port, portName string) *Transport {
	return &Transport{
		port:     p,
		portName: portName,
		frames:   make(chan []byte, frameQueueDepth),
		done:     make(chan struct{}),
		log:      zap.L().Named("uart").With(zap.String("port", portName)),
	}
}

// Init starts the reader goroutine
func (t *Transport) Init(notify func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed.Load() {
		return bleradio.NewTransportClosedError("Init", t.portName)
	}
	t.notify = notify
	if !t.started {
		t.started = true
		go t.readLoop()
	}
	return nil
}

func (t *Transport) readLoop() {
	defer close(t.done)

	scanner := bufio.NewScanner(streamReader{t})
	scanner.Buffer(make([]byte, frame.MaxReceiveSize), 2*frame.MaxReceiveSize)
	scanner.Split(frame.Split)

	for scanner.Scan() {
		frm := scanner.Bytes()
		t.log.Debug("frame received", zap.Int("len", len(frm)))
		select {
		case t.frames <- frm:
		default:
			t.log.Warn("receive queue full, dropping frame")
			continue
		}
		t.mu.Lock()
		notify := t.notify
		t.mu.Unlock()
		if notify != nil {
			notify()
		}
	}

	if err := scanner.Err(); err != nil && !t.closed.Load() {
		t.log.Error("serial read failed", zap.Error(err))
		wrapped := bleradio.NewTransportError("Read", t.portName,
			fmt.Errorf("%w: %w", bleradio.ErrTransportRead, err), bleradio.ErrorTypePermanent)
		var e error = wrapped
		t.readErr.Store(&e)
		t.mu.Lock()
		notify := t.notify
		t.mu.Unlock()
		if notify != nil {
			notify()
		}
	}
}

// streamReader turns read timeouts into waiting so the scanner only sees
// data, a port error or EOF after Close
type streamReader struct {
	t *Transport
}

func (r streamReader) Read(p []byte) (int, error) {
	for {
		n, err := r.t.port.Read(p)
		if n > 0 || err != nil {
			return n, err
		}
		if r.t.closed.Load() {
			return 0, io.EOF
		}
	}
}

// Write sends one command frame
func (t *Transport) Write(ctx context.Context, frm []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write cancelled: %w", err)
	}
	if t.closed.Load() {
		return bleradio.NewTransportClosedError("Write", t.portName)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	for written := 0; written < len(frm); {
		n, err := t.port.Write(frm[written:])
		if err != nil {
			return bleradio.NewTransportError("Write", t.portName,
				fmt.Errorf("%w: %w", bleradio.ErrTransportWrite, err), bleradio.ErrorTypeTransient)
		}
		if n == 0 {
			return bleradio.NewTimeoutError("Write", t.portName)
		}
		written += n
	}
	return nil
}

// Read copies the next reassembled frame into buf without blocking
func (t *Transport) Read(_ context.Context, buf []byte) (int, error) {
	select {
	case frm := <-t.frames:
		if len(frm) > len(buf) {
			return 0, bleradio.NewDataTooLargeError("Read", t.portName)
		}
		return copy(buf, frm), nil
	default:
	}

	if errp := t.readErr.Swap(nil); errp != nil {
		return 0, *errp
	}
	if t.closed.Load() {
		return 0, bleradio.NewTransportClosedError("Read", t.portName)
	}
	return 0, nil
}

// Close closes the port and waits for the reader to stop
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	err := t.port.Close()

	t.mu.Lock()
	started := t.started
	t.mu.Unlock()
	if started {
		<-t.done
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to close %s: %w", t.portName, err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() bleradio.TransportType {
	return bleradio.TransportUART
}
