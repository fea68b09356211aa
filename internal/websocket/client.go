// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package websocket

import (
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/fleetglass/fleetglass/internal/logging"
	"github.com/fleetglass/fleetglass/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 // control messages are tiny

	// DefaultSendBuffer is the per-client outbound queue size. A client
	// that falls this many messages behind is disconnected.
	DefaultSendBuffer = 256

	// DefaultInboundPerSecond bounds control-message processing per
	// client. Excess messages are read and discarded, not fatal.
	DefaultInboundPerSecond = 10
)

// clientIDCounter generates unique, monotonically increasing IDs for
// clients so broadcast iteration order is deterministic.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub
type Client struct {
	// id is a unique identifier for this client, used for deterministic
	// ordering of broadcast delivery and shutdown.
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan Message

	// subscribedTo is the vehicle this client is scoped to, 0 when
	// unscoped. Owned by the hub and only touched under hub.mu.
	subscribedTo int64

	// limiter bounds inbound control messages
	limiter *rate.Limiter
}

// NewClient creates a new Client with the default buffer and rate limit
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return NewClientWithOptions(hub, conn, DefaultSendBuffer, DefaultInboundPerSecond)
}

// NewClientWithOptions creates a new Client with an explicit outbound
// buffer size and inbound messages-per-second limit.
func NewClientWithOptions(hub *Hub, conn *websocket.Conn, sendBuffer, inboundPerSecond int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	if inboundPerSecond <= 0 {
		inboundPerSecond = DefaultInboundPerSecond
	}
	return &Client{
		id:      clientIDCounter.Add(1),
		hub:     hub,
		conn:    conn,
		send:    make(chan Message, sendBuffer),
		limiter: rate.NewLimiter(rate.Limit(inboundPerSecond), inboundPerSecond),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() uint64 {
	return c.id
}

// readPump pumps control messages from the websocket connection to the
// hub. Frames that do not parse as a recognized tagged object are
// silently ignored: malformed input must never take down a long-lived
// connection, so raw frames are read and unmarshaled by hand instead of
// using ReadJSON (whose parse errors are fatal to the read loop).
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			break
		}

		metrics.WSMessagesReceived.Inc()

		if !c.limiter.Allow() {
			// Client is flooding control messages. Drop the frame.
			continue
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		c.handleMessage(msg)
	}
}

// handleMessage dispatches one inbound control message. Unrecognized
// types are ignored.
func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case MessageTypePing:
		c.reply(Message{Type: MessageTypePong})

	case MessageTypeSubscribe:
		if msg.VehicleID <= 0 {
			return
		}
		c.hub.subscribe <- subscription{client: c, vehicleID: msg.VehicleID}
		c.reply(Message{Type: MessageTypeSubscribed, VehicleID: msg.VehicleID})
	}
}

// reply queues a protocol response to this client without blocking
func (c *Client) reply(msg Message) {
	select {
	case c.send <- msg:
	default:
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logging.Error().Err(err).Msg("failed to write close message")
				}
				return
			}

			payload, err := MarshalMessage(message)
			if err != nil {
				logging.Error().Err(err).Msg("failed to marshal websocket message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logging.Error().Err(err).Msg("failed to write websocket message")
				return
			}
			metrics.WSMessagesSent.Inc()

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
