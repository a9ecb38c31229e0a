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

// Package spi provides the SPI transport for a companion radio
package spi

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	bleradio "github.com/ZaparooProject/go-bleradio"
	"github.com/ZaparooProject/go-bleradio/internal/frame"
	"github.com/ZaparooProject/go-bleradio/internal/transport"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// SPI header exchanged before every transfer
const (
	headerSize  = 5
	headerWrite = 0x0A
	headerRead  = 0x0B
	radioReady  = 0x02
)

const (
	defaultClock        = 1 * physic.MegaHertz
	defaultReadyTimeout = 50 * time.Millisecond
	readyInterval       = time.Millisecond
	irqPollTimeout      = 100 * time.Millisecond
)

// conn is the part of spi.Conn the transport uses
type conn interface {
	Tx(w, r []byte) error
}

// readyPin is the radio's data ready line, high while a frame is waiting
type readyPin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
	WaitForEdge(timeout time.Duration) bool
}

type config struct {
	clock        physic.Frequency
	readyTimeout time.Duration
}

// Option configures an SPI transport
type Option func(*config)

// WithClock sets the SPI clock frequency
func WithClock(f physic.Frequency) Option {
	return func(c *config) { c.clock = f }
}

// WithReadyTimeout sets how long Write waits for the radio to accept a frame
func WithReadyTimeout(timeout time.Duration) Option {
	return func(c *config) { c.readyTimeout = timeout }
}

// Transport implements bleradio.Transport over SPI with a data ready line
type Transport struct {
	conn    conn
	irq     readyPin
	closer  spi.PortCloser
	log     *zap.Logger
	notify  func()
	done    chan struct{}
	stop    chan struct{}
	busPath string
	pending []byte
	ready   transport.PollConfig
	mu      sync.Mutex
	closed  atomic.Bool
	started bool
}

// New opens the SPI port at busPath and the data ready pin irqPin, for
// example "/dev/spidev0.0" and "GPIO25"
func New(busPath, irqPin string, opts ...Option) (*Transport, error) {
	cfg := config{clock: defaultClock, readyTimeout: defaultReadyTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	p, err := spireg.Open(busPath)
	if err != nil {
		return nil, bleradio.NewTransportError("open", busPath,
			fmt.Errorf("%w: %w", bleradio.ErrDeviceNotFound, err), bleradio.ErrorTypePermanent)
	}

	c, err := p.Connect(cfg.clock, spi.Mode0, 8)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to connect to SPI port %s: %w", busPath, err)
	}

	pin := gpioreg.ByName(irqPin)
	if pin == nil {
		_ = p.Close()
		return nil, fmt.Errorf("%w: unknown data ready pin %s", bleradio.ErrInvalidParameter, irqPin)
	}

	t := newTransport(c, pin, busPath)
	t.closer = p
	t.ready.Timeout = cfg.readyTimeout
	return t, nil
}

func newTransport(c conn, irq readyPin, busPath string) *Transport {
	return &Transport{
		conn:    c,
		irq:     irq,
		busPath: busPath,
		done:    make(chan struct{}),
		stop:    make(chan struct{}),
		ready:   transport.PollConfig{Timeout: defaultReadyTimeout, Interval: readyInterval},
		log:     zap.L().Named("spi").With(zap.String("bus", busPath)),
	}
}

// Init configures the data ready pin and starts watching it
func (t *Transport) Init(notify func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed.Load() {
		return bleradio.NewTransportClosedError("Init", t.busPath)
	}
	t.notify = notify
	if t.started {
		return nil
	}
	if err := t.irq.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return fmt.Errorf("failed to configure data ready pin: %w", err)
	}
	t.started = true
	go t.watch()
	return nil
}

func (t *Transport) watch() {
	defer close(t.done)
	for {
		select {
		case <-t.stop:
			return
		default:
		}

		if t.irq.WaitForEdge(irqPollTimeout) || t.irq.Read() == gpio.High {
			t.mu.Lock()
			notify := t.notify
			t.mu.Unlock()
			if notify != nil {
				notify()
			}
		}
	}
}

// header exchanges an SPI header and returns the radio's reply
func (t *Transport) header(kind byte) ([]byte, error) {
	tx := []byte{kind, 0, 0, 0, 0}
	rx := make([]byte, headerSize)
	if err := t.conn.Tx(tx, rx); err != nil {
		return nil, bleradio.NewTransportError(opName(kind), t.busPath,
			fmt.Errorf("%w: %w", bleradio.ErrCommunicationFailed, err), bleradio.ErrorTypeTransient)
	}
	if rx[0] != radioReady {
		return nil, bleradio.NewTransportError(opName(kind), t.busPath,
			bleradio.ErrTransportNotReady, bleradio.ErrorTypeTransient)
	}
	return rx, nil
}

func opName(kind byte) string {
	if kind == headerWrite {
		return "Write"
	}
	return "Read"
}

// Write sends one command frame once the radio reports room for it, polling
// the radio for up to the ready timeout
func (t *Transport) Write(ctx context.Context, frm []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write cancelled: %w", err)
	}
	if t.closed.Load() {
		return bleradio.NewTransportClosedError("Write", t.busPath)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := transport.Poll(ctx, t.ready, func() (struct{}, bool, error) {
		hdr, err := t.header(headerWrite)
		if errors.Is(err, bleradio.ErrTransportNotReady) {
			return struct{}{}, false, nil
		}
		if err != nil {
			return struct{}{}, false, err
		}
		room := int(binary.LittleEndian.Uint16(hdr[1:3]))
		return struct{}{}, room >= len(frm), nil
	})
	if errors.Is(err, transport.ErrNotReady) {
		t.log.Debug("radio not ready for write", zap.Int("len", len(frm)))
		return bleradio.NewTransportError("Write", t.busPath,
			fmt.Errorf("%w: %w", bleradio.ErrTransportNotReady, err), bleradio.ErrorTypeTransient)
	}
	if err != nil {
		return err
	}
	if err := t.conn.Tx(frm, make([]byte, len(frm))); err != nil {
		return bleradio.NewTransportError("Write", t.busPath,
			fmt.Errorf("%w: %w", bleradio.ErrTransportWrite, err), bleradio.ErrorTypeTransient)
	}
	return nil
}

// Read returns the next complete frame, or 0 when the radio has nothing
// waiting. Bytes of a frame split across transfers are kept until the
// rest arrives.
func (t *Transport) Read(_ context.Context, buf []byte) (int, error) {
	if t.closed.Load() {
		return 0, bleradio.NewTransportClosedError("Read", t.busPath)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if n, ok, err := t.popFrame(buf); ok || err != nil {
		return n, err
	}
	if t.irq.Read() == gpio.Low {
		return 0, nil
	}

	hdr, err := t.header(headerRead)
	if errors.Is(err, bleradio.ErrTransportNotReady) {
		// Still asleep, the ready line will announce the frame again
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	size := int(binary.LittleEndian.Uint16(hdr[3:5]))
	if size == 0 {
		return 0, nil
	}
	if size > frame.MaxReceiveSize {
		return 0, bleradio.NewFrameCorruptedError("Read", t.busPath)
	}

	tx := make([]byte, size)
	for i := range tx {
		tx[i] = 0xFF
	}
	rx := make([]byte, size)
	if err := t.conn.Tx(tx, rx); err != nil {
		return 0, bleradio.NewTransportError("Read", t.busPath,
			fmt.Errorf("%w: %w", bleradio.ErrTransportRead, err), bleradio.ErrorTypeTransient)
	}
	t.pending = append(t.pending, rx...)

	n, _, err := t.popFrame(buf)
	return n, err
}

func (t *Transport) popFrame(buf []byte) (int, bool, error) {
	for len(t.pending) > 0 {
		advance, tok, _ := frame.Split(t.pending, false)
		if advance == 0 {
			return 0, false, nil
		}
		t.pending = t.pending[advance:]
		if tok == nil {
			continue
		}
		if len(tok) > len(buf) {
			return 0, true, bleradio.NewDataTooLargeError("Read", t.busPath)
		}
		return copy(buf, tok), true, nil
	}
	return 0, false, nil
}

// Close stops the pin watcher and releases the SPI port
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	close(t.stop)

	t.mu.Lock()
	started := t.started
	t.mu.Unlock()
	if started {
		<-t.done
	}

	if t.closer != nil {
		if err := t.closer.Close(); err != nil {
			return fmt.Errorf("failed to close SPI port %s: %w", t.busPath, err)
		}
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() bleradio.TransportType {
	return bleradio.TransportSPI
}
