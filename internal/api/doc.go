// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

// Package api provides the HTTP surface of Fleetglass: telemetry ingestion,
// tracking history, the websocket endpoint, vehicle CRUD, the order pricing
// calculator, health checks, and Prometheus metrics.
//
// Routing uses Chi with route groups carrying group-specific rate limits.
// All JSON endpoints respond with the models.APIResponse envelope; errors
// carry machine-readable codes (NOT_FOUND, VALIDATION_ERROR, ...).
//
// File layout:
//   - handlers.go: Handler struct, constructor, websocket origin checking
//   - helpers.go: response and parameter helpers shared across handlers
//   - requests.go: request DTOs with validation tags
//   - handlers_tracking.go: ingest, history, websocket upgrade
//   - handlers_vehicles.go: vehicle CRUD subset
//   - handlers_orders.go: pricing calculator
//   - handlers_health.go: health and readiness
//   - chi_middleware.go: CORS and rate limit factories
//   - router.go: route table
package api
