// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

// Package models defines the shared data types of Fleetglass: vehicles and
// their live telemetry state, immutable tracking points, pricing quotes, and
// the standardized API response envelope.
//
// Types here carry JSON tags matching the wire format and no behavior beyond
// trivial accessors; persistence and business logic live in the database,
// tracking, and pricing packages.
package models
