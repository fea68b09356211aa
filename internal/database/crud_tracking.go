// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fleetglass/fleetglass/internal/metrics"
	"github.com/fleetglass/fleetglass/internal/models"
)

// InsertTrackingPoint appends a telemetry point to the history log and
// fills in the generated id. A zero timestamp is replaced with now.
func (db *DB) InsertTrackingPoint(ctx context.Context, p *models.TrackingPoint) error {
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}

	query := `INSERT INTO tracking_points (vehicle_id, lat, lng, speed, fuel_level, heading, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	start := time.Now()
	err := db.conn.QueryRowContext(ctx, query,
		p.VehicleID, p.Location.Lat, p.Location.Lng, p.Speed,
		p.FuelLevel, p.Heading, p.Timestamp,
	).Scan(&p.ID)
	metrics.RecordDBQuery("INSERT", "tracking_points", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("failed to insert tracking point: %w", err)
	}
	return nil
}

// ListTrackingHistory returns the most recent tracking points for a
// vehicle, newest first, capped at limit.
func (db *DB) ListTrackingHistory(ctx context.Context, vehicleID int64, limit int) ([]models.TrackingPoint, error) {
	query := `SELECT id, vehicle_id, lat, lng, speed, fuel_level, heading, ts
		FROM tracking_points
		WHERE vehicle_id = ?
		ORDER BY ts DESC
		LIMIT ?`

	stmt, err := db.getOrPrepare(ctx, query)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := stmt.QueryContext(ctx, vehicleID, limit)
	metrics.RecordDBQuery("SELECT", "tracking_points", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracking history: %w", err)
	}
	defer closeQuietly(rows)

	points := []models.TrackingPoint{}
	for rows.Next() {
		var (
			p             models.TrackingPoint
			fuel, heading sql.NullFloat64
		)
		err := rows.Scan(&p.ID, &p.VehicleID, &p.Location.Lat, &p.Location.Lng,
			&p.Speed, &fuel, &heading, &p.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracking point row: %w", err)
		}
		if fuel.Valid {
			p.FuelLevel = &fuel.Float64
		}
		if heading.Valid {
			p.Heading = &heading.Float64
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tracking point row iteration failed: %w", err)
	}
	return points, nil
}

// CountTrackingPoints returns the total number of stored points for a
// vehicle. Used by health reporting and tests.
func (db *DB) CountTrackingPoints(ctx context.Context, vehicleID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM tracking_points WHERE vehicle_id = ?`

	var count int64
	start := time.Now()
	err := db.conn.QueryRowContext(ctx, query, vehicleID).Scan(&count)
	metrics.RecordDBQuery("SELECT", "tracking_points", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count tracking points: %w", err)
	}
	return count, nil
}
