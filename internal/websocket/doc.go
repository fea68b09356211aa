// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

/*
Package websocket implements the real-time broadcast layer: a hub that
tracks connected observers and fans vehicle updates out to them.

# Architecture

The hub owns two indexes over the same set of live connections:

  - the all-connections set, fed by fleet-wide dashboards
  - a per-vehicle subscriber index, fed by the subscribe protocol

Both indexes mutate under one lock, so a connection is never visible in
the vehicle index after it has left the connection set. Broadcasts
iterate a sorted snapshot taken under the lock; the actual sends happen
outside the critical section so a slow connection cannot stall
registration or other deliveries.

Each client gets a buffered outbound channel. Sends into it are
non-blocking: when the buffer is full the client is disconnected and
the broadcast continues to the remaining clients.

# Protocol

Inbound control messages (observer to server):

	{"type": "subscribe", "vehicle_id": 42}  ->  {"type": "subscribed", "vehicle_id": 42}
	{"type": "ping"}                         ->  {"type": "pong"}

Frames that do not parse as a recognized tagged object are silently
discarded; malformed input never terminates the connection.

A connection holds at most one vehicle subscription. Subscribing again
replaces the prior subscription. There is no unsubscribe message;
closing the transport releases everything.

Outbound event messages (server to observer):

	{"type": "vehicle_update", "vehicle_id": 42, "data": {...live state...}}

Every accepted telemetry point produces one vehicle_update, delivered
to all fleet-wide connections and to the subscribers of that vehicle.

# Supervision

RunWithContext is the hub's main loop and is designed to run under a
suture supervisor: on context cancellation it closes every client and
returns, leaving no orphaned connections for the restarted instance.

# See Also

  - internal/tracking: the ingestion pipeline that feeds broadcasts
  - internal/api: the HTTP handler that upgrades connections
*/
package websocket
