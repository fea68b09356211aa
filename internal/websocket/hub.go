// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/fleetglass/fleetglass/internal/logging"
	"github.com/fleetglass/fleetglass/internal/metrics"
	"github.com/fleetglass/fleetglass/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types for WebSocket communication
const (
	MessageTypeVehicleUpdate = "vehicle_update"
	MessageTypeSubscribe     = "subscribe"
	MessageTypeSubscribed    = "subscribed"
	MessageTypePing          = "ping"
	MessageTypePong          = "pong"
)

// Message represents a WebSocket message. VehicleID carries the
// subscription target on inbound subscribe messages and the subject
// vehicle on outbound vehicle_update messages.
type Message struct {
	Type      string      `json:"type"`
	VehicleID int64       `json:"vehicle_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// NewVehicleUpdate builds the vehicle_update event message from a
// vehicle's post-update live state.
func NewVehicleUpdate(state *models.LiveState) Message {
	return Message{
		Type:      MessageTypeVehicleUpdate,
		VehicleID: state.ID,
		Data:      state,
	}
}

// subscription is a pending subscribe request handed to the hub loop
type subscription struct {
	client    *Client
	vehicleID int64
}

// targeted is a broadcast scoped to one vehicle's subscribers
type targeted struct {
	vehicleID int64
	message   Message
}

// Hub maintains the set of active clients and two indexes over them:
// the all-connections set and a per-vehicle subscriber index. A client
// present in the vehicle index is always present in the client set;
// removal clears both indexes under the same lock so a concurrent
// broadcast never observes a half-removed client.
type Hub struct {
	clients        map[*Client]bool
	vehicleClients map[int64]map[*Client]bool

	broadcast        chan Message
	broadcastVehicle chan targeted
	subscribe        chan subscription
	Register         chan *Client
	Unregister       chan *Client

	mu sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:          make(map[*Client]bool),
		vehicleClients:   make(map[int64]map[*Client]bool),
		broadcast:        make(chan Message, 256),
		broadcastVehicle: make(chan targeted, 256),
		subscribe:        make(chan subscription),
		Register:         make(chan *Client),
		Unregister:       make(chan *Client),
	}
}

// RunWithContext starts the hub with context support for graceful
// shutdown. Designed for use with suture supervision: when the context
// is canceled all connected clients are closed and ctx.Err() is
// returned, so a supervisor can restart the hub without orphaned
// connections.
//
// DETERMINISM: Uses priority-based selection so behavior is predictable
// when multiple channels are ready (Go's select picks randomly):
// - Priority 1: Context cancellation (shutdown)
// - Priority 2: Client lifecycle events (Register/Unregister/subscribe)
// - Priority 3: Broadcast messages
// Lifecycle before broadcast ensures client state is consistent before
// messages fan out.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: Check for shutdown (non-blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: Handle client lifecycle events (non-blocking check)
		select {
		case client := <-h.Register:
			h.registerClient(client)
			continue
		case client := <-h.Unregister:
			h.unregisterClient(client)
			continue
		case sub := <-h.subscribe:
			h.subscribeClient(sub.client, sub.vehicleID)
			continue
		default:
		}

		// Priority 3: Handle broadcasts or wait for any event (blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case sub := <-h.subscribe:
			h.subscribeClient(sub.client, sub.vehicleID)

		case message := <-h.broadcast:
			h.deliver(h.snapshotAll(), message)

		case t := <-h.broadcastVehicle:
			h.deliver(h.snapshotVehicle(t.vehicleID), t.message)
		}
	}
}

// registerClient adds a client to the all-connections set
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client connected")
}

// unregisterClient removes a client from both indexes and closes its
// send channel. Safe to call for an already-removed client.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	total := len(h.clients)
	if _, ok := h.clients[client]; ok {
		h.removeLocked(client)
		total = len(h.clients)
		close(client.send)
	}
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client disconnected")
}

// subscribeClient adds the client to the per-vehicle index. A client
// holds at most one vehicle subscription: subscribing again replaces
// the prior one rather than accumulating entries.
func (h *Hub) subscribeClient(client *Client, vehicleID int64) {
	if vehicleID <= 0 {
		return
	}
	h.mu.Lock()
	if !h.clients[client] {
		// Raced with disconnect, nothing to index.
		h.mu.Unlock()
		return
	}

	if prev := client.subscribedTo; prev != 0 && prev != vehicleID {
		h.dropSubscriptionLocked(client, prev)
	}

	if h.vehicleClients[vehicleID] == nil {
		h.vehicleClients[vehicleID] = make(map[*Client]bool)
	}
	h.vehicleClients[vehicleID][client] = true
	client.subscribedTo = vehicleID
	h.mu.Unlock()

	h.updateSubscriptionGauge()
	logging.Debug().Int64("vehicle_id", vehicleID).Msg("websocket client subscribed")
}

// removeLocked deletes a client from the all-connections set and from
// the vehicle index it appears in. Caller holds h.mu.
func (h *Hub) removeLocked(client *Client) {
	delete(h.clients, client)
	if client.subscribedTo != 0 {
		h.dropSubscriptionLocked(client, client.subscribedTo)
		client.subscribedTo = 0
	}
}

// dropSubscriptionLocked removes the client from one vehicle's
// subscriber set, deleting the set when it empties. Caller holds h.mu.
func (h *Hub) dropSubscriptionLocked(client *Client, vehicleID int64) {
	if subs := h.vehicleClients[vehicleID]; subs != nil {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.vehicleClients, vehicleID)
		}
	}
}

// snapshotAll returns the current clients sorted by id.
// DETERMINISM: Sorting by the monotonically assigned client ID gives a
// consistent delivery order instead of random map iteration.
func (h *Hub) snapshotAll() []*Client {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// snapshotVehicle returns the subscribers of one vehicle sorted by id.
// An unknown vehicle yields an empty snapshot, making the vehicle-scoped
// broadcast a silent no-op.
func (h *Hub) snapshotVehicle(vehicleID int64) []*Client {
	h.mu.RLock()
	subs := h.vehicleClients[vehicleID]
	clients := make([]*Client, 0, len(subs))
	for client := range subs {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// deliver sends a message to a snapshot of clients. Sends are
// non-blocking: a client whose buffer is full is disconnected rather
// than allowed to stall delivery to the rest.
func (h *Hub) deliver(clients []*Client, message Message) {
	var toRemove []*Client

	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			// Channel full, client is too slow. Mark for removal.
			toRemove = append(toRemove, client)
		}
	}

	if len(toRemove) == 0 {
		return
	}

	h.mu.Lock()
	for _, client := range toRemove {
		if _, ok := h.clients[client]; ok {
			h.removeLocked(client)
			close(client.send)
		}
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	metrics.WSBroadcastDropped.Add(float64(len(toRemove)))
	h.updateSubscriptionGauge()
	logging.Warn().Int("removed", len(toRemove)).Msg("disconnected slow websocket clients during broadcast")
}

// BroadcastAll queues a message for every connected client.
// Fire-and-forget: if the hub's broadcast buffer is full the message is
// dropped so ingestion never blocks on the fan-out path.
func (h *Hub) BroadcastAll(message Message) {
	select {
	case h.broadcast <- message:
	default:
		metrics.WSBroadcastDropped.Inc()
		logging.Warn().Str("message_type", message.Type).Msg("broadcast channel full, dropping message")
	}
}

// BroadcastToVehicle queues a message for the subscribers of one
// vehicle. A vehicle with no subscribers is a silent no-op.
func (h *Hub) BroadcastToVehicle(vehicleID int64, message Message) {
	select {
	case h.broadcastVehicle <- targeted{vehicleID: vehicleID, message: message}:
	default:
		metrics.WSBroadcastDropped.Inc()
		logging.Warn().Int64("vehicle_id", vehicleID).Msg("vehicle broadcast channel full, dropping message")
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetSubscriberCount returns the number of clients subscribed to a vehicle
func (h *Hub) GetSubscriberCount(vehicleID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.vehicleClients[vehicleID])
}

// updateSubscriptionGauge publishes the total subscription count
func (h *Hub) updateSubscriptionGauge() {
	h.mu.RLock()
	total := 0
	for _, subs := range h.vehicleClients {
		total += len(subs)
	}
	h.mu.RUnlock()
	metrics.WSSubscriptions.Set(float64(total))
}

// logGracefulShutdown closes all clients and logs structured shutdown
// information. ctx.Err() is NOT logged as an error because cancellation
// is expected behavior during graceful shutdown.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

// getShutdownReason determines the shutdown reason from the context error
func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients closes all connected clients during shutdown.
// DETERMINISM: Closes in ID order for consistent shutdown behavior.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		h.removeLocked(client)
		close(client.send)
	}
	metrics.WSConnections.Set(0)
	logging.Info().Msg("closed all websocket clients during shutdown")
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
