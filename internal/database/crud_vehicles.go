// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fleetglass/fleetglass/internal/metrics"
	"github.com/fleetglass/fleetglass/internal/models"
)

// CreateVehicle inserts a new vehicle into the registry and fills in the
// generated id and creation timestamp.
func (db *DB) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	if v.Status == "" {
		v.Status = models.VehicleStatusIdle
	}

	query := `INSERT INTO vehicles (plate_number, model, status, current_speed, fuel_level)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, created_at`

	start := time.Now()
	err := db.conn.QueryRowContext(ctx, query,
		v.PlateNumber, v.Model, string(v.Status), v.CurrentSpeed, v.FuelLevel,
	).Scan(&v.ID, &v.CreatedAt)
	metrics.RecordDBQuery("INSERT", "vehicles", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

// GetVehicle fetches a single vehicle by id.
// Returns ErrVehicleNotFound when no such vehicle exists.
func (db *DB) GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error) {
	query := `SELECT id, plate_number, model, status,
			current_lat, current_lng, current_speed, fuel_level, created_at
		FROM vehicles WHERE id = ?`

	stmt, err := db.getOrPrepare(ctx, query)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	v, err := scanVehicle(stmt.QueryRowContext(ctx, id))
	metrics.RecordDBQuery("SELECT", "vehicles", time.Since(start), ignoreNoRows(err))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle %d: %w", id, err)
	}
	return v, nil
}

// ListVehicles returns all vehicles in the registry ordered by id
func (db *DB) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	query := `SELECT id, plate_number, model, status,
			current_lat, current_lng, current_speed, fuel_level, created_at
		FROM vehicles ORDER BY id`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query)
	metrics.RecordDBQuery("SELECT", "vehicles", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer closeQuietly(rows)

	vehicles := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle row: %w", err)
		}
		vehicles = append(vehicles, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vehicle row iteration failed: %w", err)
	}
	return vehicles, nil
}

// UpdateVehicleTelemetry overwrites the vehicle's live state with the
// latest reported point. A nil fuelLevel keeps the stored value.
// Writers for the same vehicle are serialized via a per-vehicle lock,
// and transient DuckDB transaction conflicts are retried with backoff.
func (db *DB) UpdateVehicleTelemetry(ctx context.Context, id int64, lat, lng, speed float64, fuelLevel *float64) error {
	mu := db.acquireVehicleLock(id)
	defer db.releaseVehicleLock(mu)

	query := `UPDATE vehicles SET
			current_lat = ?,
			current_lng = ?,
			current_speed = ?,
			fuel_level = COALESCE(?, fuel_level)
		WHERE id = ?`

	const maxRetries = 3
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		start := time.Now()
		res, err := db.conn.ExecContext(ctx, query, lat, lng, speed, fuelLevel, id)
		metrics.RecordDBQuery("UPDATE", "vehicles", time.Since(start), err)

		if err == nil {
			affected, raErr := res.RowsAffected()
			if raErr != nil {
				return fmt.Errorf("failed to read rows affected: %w", raErr)
			}
			if affected == 0 {
				return ErrVehicleNotFound
			}
			return nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return fmt.Errorf("telemetry update timed out or canceled: %w", ctx.Err())
		}

		if isTransactionConflict(err) && attempt < maxRetries-1 {
			backoff := time.Millisecond * time.Duration(1<<uint(attempt)) // 1ms, 2ms, 4ms
			select {
			case <-time.After(backoff):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		return fmt.Errorf("failed to update vehicle %d telemetry: %w", id, err)
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanVehicle maps a vehicle row onto the model, folding the nullable
// lat/lng pair into a *Coordinates.
func scanVehicle(row rowScanner) (*models.Vehicle, error) {
	var (
		v        models.Vehicle
		status   string
		lat, lng sql.NullFloat64
	)

	err := row.Scan(&v.ID, &v.PlateNumber, &v.Model, &status,
		&lat, &lng, &v.CurrentSpeed, &v.FuelLevel, &v.CreatedAt)
	if err != nil {
		return nil, err
	}

	v.Status = models.VehicleStatus(status)
	if lat.Valid && lng.Valid {
		v.CurrentLocation = &models.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &v, nil
}

// ignoreNoRows strips sql.ErrNoRows so absent rows are not counted as
// query errors in metrics.
func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
