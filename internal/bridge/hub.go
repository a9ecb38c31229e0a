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

// Package bridge streams radio events to websocket clients as JSON
package bridge

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	bleradio "github.com/ZaparooProject/go-bleradio"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendQueueDepth = 64
	writeTimeout   = 5 * time.Second
)

// Message is the JSON document sent for each event
type Message struct {
	Data  any    `json:"data,omitempty"`
	Event string `json:"event"`
	Code  uint16 `json:"code"`
	Time  int64  `json:"time"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub accepts websocket clients and broadcasts events to all of them.
// A client that falls behind misses messages rather than slowing the others.
type Hub struct {
	log      *zap.Logger
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	mu       sync.RWMutex
}

// NewHub creates an empty hub
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:     log.Named("bridge"),
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and registers the client
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendQueueDepth)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.log.Info("client connected", zap.String("remote", r.RemoteAddr), zap.Int("clients", count))

	go h.writeLoop(c)
	go h.readLoop(c)
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

// readLoop discards client messages and unregisters the client when the
// connection ends
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		count := len(h.clients)
		h.mu.Unlock()
		close(c.send)
		h.log.Info("client disconnected", zap.Int("clients", count))
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends n to every connected client
func (h *Hub) Broadcast(n bleradio.Notification) {
	data, err := json.Marshal(Message{
		Event: n.Event.String(),
		Code:  uint16(n.Event),
		Time:  n.Time.UnixMilli(),
		Data:  n.Data,
	})
	if err != nil {
		h.log.Warn("encoding event failed", zap.Stringer("event", n.Event), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Debug("client too slow, skipping event", zap.Stringer("event", n.Event))
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
