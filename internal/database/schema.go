// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

/*
schema.go - Database Schema Management

Tables:
  - vehicles: Fleet registry with denormalized live state (location,
    speed, fuel) so snapshot reads never touch history
  - tracking_points: Append-only GPS telemetry log, one row per
    reported point

Schema Strategy:
All columns are defined in the initial CREATE TABLE statement. This
provides a single source of truth and fast startup with no migrations.

Index Strategy:
History reads always filter by vehicle_id and order by timestamp
descending, so a composite index on (vehicle_id, ts) covers the only
hot query against tracking_points.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_vehicle_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_tracking_point_id START 1`,

		`CREATE TABLE IF NOT EXISTS vehicles (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_vehicle_id'),
			plate_number TEXT NOT NULL UNIQUE,
			model TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'IDLE',

			-- Live state, overwritten on every ingested point
			current_lat DOUBLE,
			current_lng DOUBLE,
			current_speed DOUBLE NOT NULL DEFAULT 0,
			fuel_level DOUBLE NOT NULL DEFAULT 0,

			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS tracking_points (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_tracking_point_id'),
			vehicle_id BIGINT NOT NULL,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL,
			speed DOUBLE NOT NULL DEFAULT 0,
			fuel_level DOUBLE,
			heading DOUBLE,
			ts TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// createIndexes creates indexes for common query patterns
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_tracking_points_vehicle_ts
			ON tracking_points (vehicle_id, ts)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_status
			ON vehicles (status)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}
