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

// Package monitor follows a radio's event stream, tracks its links and fans
// events out to subscribers
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	bleradio "github.com/ZaparooProject/go-bleradio"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventSource is the part of *bleradio.Radio the monitor reads from
type EventSource interface {
	NextEvent(ctx context.Context) (bleradio.Notification, error)
	DroppedEvents() uint64
}

// Handler receives every event the monitor reads
type Handler func(bleradio.Notification)

// Config holds monitor settings
type Config struct {
	// LinkIdleTimeout marks a link idle when no traffic is seen for this
	// long. Zero disables idle tracking.
	LinkIdleTimeout time.Duration
}

// DefaultConfig returns the default monitor settings
func DefaultConfig() *Config {
	return &Config{LinkIdleTimeout: 30 * time.Second}
}

// Metrics are counters collected while the monitor runs
type Metrics struct {
	Events      uint64        // Events delivered to subscribers
	Errors      uint64        // Error events seen in the stream
	Dropped     uint64        // Events the radio dropped on a full queue
	LastLatency time.Duration // Time from frame processing to delivery of the last event
}

// Monitor reads events from a source until its context ends
type Monitor struct {
	source EventSource
	config *Config
	log    *zap.Logger
	// OnLinkIdle is called from a timer goroutine when a link goes quiet
	OnLinkIdle  func(LinkState)
	subs        map[uuid.UUID]Handler
	links       map[uint16]*LinkState
	events      atomic.Uint64
	errs        atomic.Uint64
	lastLatency atomic.Int64
	mu          sync.RWMutex
	running     atomic.Bool
}

// ErrAlreadyRunning is returned by Run when the monitor is already running
var ErrAlreadyRunning = errors.New("monitor already running")

// New creates a monitor over source
func New(source EventSource, config *Config) *Monitor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Monitor{
		source: source,
		config: config,
		log:    zap.L().Named("monitor"),
		subs:   make(map[uuid.UUID]Handler),
		links:  make(map[uint16]*LinkState),
	}
}

// Subscribe registers fn for every event and returns its id
func (m *Monitor) Subscribe(fn Handler) uuid.UUID {
	id := uuid.New()
	m.mu.Lock()
	m.subs[id] = fn
	m.mu.Unlock()
	m.log.Debug("subscriber added", zap.Stringer("id", id))
	return id
}

// Unsubscribe removes a subscriber and reports whether it existed
func (m *Monitor) Unsubscribe(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[id]; !ok {
		return false
	}
	delete(m.subs, id)
	return true
}

// Run delivers events until ctx is done. It returns the context's error.
func (m *Monitor) Run(ctx context.Context) error {
	if m.running.Swap(true) {
		return ErrAlreadyRunning
	}
	defer m.running.Store(false)
	defer m.releaseLinks()

	for {
		n, err := m.source.NextEvent(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("monitor stopped: %w", ctx.Err())
			}
			m.errs.Add(1)
			m.log.Warn("reading event failed", zap.Error(err))
			continue
		}
		m.handle(n)
	}
}

func (m *Monitor) handle(n bleradio.Notification) {
	if !n.Time.IsZero() {
		m.lastLatency.Store(int64(time.Since(n.Time)))
	}
	if n.Event.IsError() || n.Event == bleradio.EventHardwareError {
		m.errs.Add(1)
	}
	m.track(n)

	m.mu.RLock()
	handlers := make([]Handler, 0, len(m.subs))
	for _, h := range m.subs {
		handlers = append(handlers, h)
	}
	m.mu.RUnlock()

	for _, h := range handlers {
		h(n)
	}
	m.events.Add(1)
}

// track updates the link table from connection and data events
func (m *Monitor) track(n bleradio.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch n.Event {
	case bleradio.EventGAPConnected:
		info, ok := n.Data.(bleradio.ConnectionInfo)
		if !ok {
			return
		}
		if old, found := m.links[info.Handle]; found {
			old.release()
		}
		ls := &LinkState{
			Handle:      info.Handle,
			Peer:        info.PeerAddress,
			Role:        info.Role,
			Interval:    info.Interval,
			ConnectedAt: n.Time,
		}
		m.links[info.Handle] = ls
		m.touchLocked(ls, n.Time)
	case bleradio.EventGAPDisconnected:
		info, ok := n.Data.(bleradio.ConnectionInfo)
		if !ok {
			return
		}
		if ls, found := m.links[info.Handle]; found {
			ls.release()
			delete(m.links, info.Handle)
		}
	case bleradio.EventGAPConnectionUpdated:
		info, ok := n.Data.(bleradio.ConnectionInfo)
		if !ok {
			return
		}
		if ls, found := m.links[info.Handle]; found {
			ls.Interval = info.Interval
			m.touchLocked(ls, n.Time)
		}
	case bleradio.EventDataExchangeRx:
		rx, ok := n.Data.(bleradio.RxData)
		if !ok {
			return
		}
		if ls, found := m.links[rx.Handle]; found {
			ls.RxPackets++
			m.touchLocked(ls, n.Time)
		}
	case bleradio.EventDataExchangeTxComplete:
		handle, ok := n.Data.(uint16)
		if !ok {
			return
		}
		if ls, found := m.links[handle]; found {
			ls.TxPackets++
			m.touchLocked(ls, n.Time)
		}
	default:
	}
}

func (m *Monitor) touchLocked(ls *LinkState, now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	handle := ls.Handle
	ls.touch(now, m.config.LinkIdleTimeout, func() { m.markIdle(handle, ls) })
}

func (m *Monitor) markIdle(handle uint16, ls *LinkState) {
	m.mu.Lock()
	if cur, ok := m.links[handle]; !ok || cur != ls || ls.Activity == LinkIdle {
		m.mu.Unlock()
		return
	}
	ls.Activity = LinkIdle
	ls.idleTimer = nil
	snapshot := *ls
	m.mu.Unlock()

	m.log.Debug("link idle", zap.Uint16("handle", handle))
	if m.OnLinkIdle != nil {
		m.OnLinkIdle(snapshot)
	}
}

func (m *Monitor) releaseLinks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ls := range m.links {
		ls.release()
	}
}

// Links returns copies of the tracked links
func (m *Monitor) Links() []LinkState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]LinkState, 0, len(m.links))
	for _, ls := range m.links {
		cp := *ls
		cp.idleTimer = nil
		out = append(out, cp)
	}
	return out
}

// Metrics returns the current counters
func (m *Monitor) Metrics() Metrics {
	return Metrics{
		Events:      m.events.Load(),
		Errors:      m.errs.Load(),
		Dropped:     m.source.DroppedEvents(),
		LastLatency: time.Duration(m.lastLatency.Load()),
	}
}
