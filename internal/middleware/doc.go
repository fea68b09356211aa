// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

// Package middleware provides HTTP middleware shared across the API surface.
//
// The middleware here uses the http.HandlerFunc wrapping style and is adapted
// to Chi's func(http.Handler) http.Handler form at the router. RequestID tags
// every request with an X-Request-ID header and threads request and
// correlation IDs through the logging context. PrometheusMetrics records
// per-request counters, latency histograms, and the in-flight gauge.
package middleware
