// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

/*
Package metrics provides Prometheus metrics collection and export for observability.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - Database query performance (DuckDB)
  - Telemetry ingestion throughput and failures
  - WebSocket connection counts and broadcast fan-out
  - NATS publishing and circuit breaker state

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:4326/metrics

# Usage Example

	import (
	    "github.com/fleetglass/fleetglass/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    http.Handle("/metrics", promhttp.Handler())

	    metrics.RecordAPIRequest("GET", "/api/v1/tracking/vehicles/{id}/history", "200", 23*time.Millisecond)
	    metrics.RecordDBQuery("INSERT", "tracking_points", 5*time.Millisecond, nil)
	}

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels use chi route patterns, never raw URLs
  - Error types are truncated or limited to predefined constants
  - Vehicle IDs are never used as labels

# See Also

  - internal/middleware: HTTP middleware with metrics integration
  - internal/database: Database metrics recording
  - internal/websocket: Hub and client metrics recording
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
