// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

// Package tracking implements the telemetry ingestion pipeline: one
// accepted GPS point drives history persistence, live-state update and
// the fan-out of a vehicle_update event to connected observers.
package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fleetglass/fleetglass/internal/database"
	"github.com/fleetglass/fleetglass/internal/logging"
	"github.com/fleetglass/fleetglass/internal/metrics"
	"github.com/fleetglass/fleetglass/internal/models"
	"github.com/fleetglass/fleetglass/internal/websocket"
)

// Store is the persistence surface the ingestor needs. Implemented by
// *database.DB; GetVehicle and UpdateVehicleTelemetry report unknown
// vehicles with database.ErrVehicleNotFound.
type Store interface {
	GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error)
	InsertTrackingPoint(ctx context.Context, p *models.TrackingPoint) error
	UpdateVehicleTelemetry(ctx context.Context, id int64, lat, lng, speed float64, fuelLevel *float64) error
	ListTrackingHistory(ctx context.Context, vehicleID int64, limit int) ([]models.TrackingPoint, error)
}

// Broadcaster is the fan-out surface, implemented by *websocket.Hub
type Broadcaster interface {
	BroadcastAll(message websocket.Message)
	BroadcastToVehicle(vehicleID int64, message websocket.Message)
}

// Publisher mirrors accepted updates onto an external bus. Optional;
// a nil Publisher disables mirroring.
type Publisher interface {
	PublishVehicleUpdate(ctx context.Context, state *models.LiveState) error
}

// PointInput is one telemetry report from a vehicle. FuelLevel and
// Heading are optional; an absent FuelLevel leaves the stored value
// untouched (partial-update semantics, not a reset).
type PointInput struct {
	VehicleID int64
	Location  models.Coordinates
	Speed     float64
	FuelLevel *float64
	Heading   *float64
}

// Ingestor drives the ingestion pipeline for telemetry points
type Ingestor struct {
	store     Store
	hub       Broadcaster
	publisher Publisher

	// vehicleLocks serializes the full pipeline per vehicle so two
	// points for the same vehicle apply to live state in completion
	// order. Different vehicles never contend.
	vehicleLocks sync.Map
}

// NewIngestor creates an Ingestor. publisher may be nil.
func NewIngestor(store Store, hub Broadcaster, publisher Publisher) *Ingestor {
	return &Ingestor{
		store:     store,
		hub:       hub,
		publisher: publisher,
	}
}

// IngestPoint processes one telemetry report:
//
//  1. Resolve the vehicle; an unknown id aborts with
//     database.ErrVehicleNotFound before any side effect.
//  2. Append an immutable history record with a server-assigned
//     timestamp.
//  3. Overwrite live location and speed; overwrite fuel only when
//     reported.
//  4. Build the vehicle_update event from the post-update state.
//  5. Broadcast fleet-wide, then to the vehicle's subscribers, with
//     the same message.
//
// State mutation and history persistence complete before any broadcast
// is attempted. Returns the stored point and the post-update state.
func (ing *Ingestor) IngestPoint(ctx context.Context, in PointInput) (*models.TrackingPoint, *models.LiveState, error) {
	start := time.Now()
	point, state, err := ing.ingest(ctx, in)
	metrics.RecordIngest(time.Since(start), err)
	return point, state, err
}

func (ing *Ingestor) ingest(ctx context.Context, in PointInput) (*models.TrackingPoint, *models.LiveState, error) {
	mu := ing.lockVehicle(in.VehicleID)
	defer mu.Unlock()

	vehicle, err := ing.store.GetVehicle(ctx, in.VehicleID)
	if err != nil {
		metrics.RecordIngestError("unknown_vehicle")
		return nil, nil, fmt.Errorf("ingest for vehicle %d: %w", in.VehicleID, err)
	}

	point := &models.TrackingPoint{
		VehicleID: in.VehicleID,
		Location:  in.Location,
		Speed:     in.Speed,
		FuelLevel: in.FuelLevel,
		Heading:   in.Heading,
		Timestamp: time.Now().UTC(),
	}
	if err := ing.store.InsertTrackingPoint(ctx, point); err != nil {
		metrics.RecordIngestError("database")
		return nil, nil, fmt.Errorf("persist tracking point for vehicle %d: %w", in.VehicleID, err)
	}

	if err := ing.store.UpdateVehicleTelemetry(ctx, in.VehicleID, in.Location.Lat, in.Location.Lng, in.Speed, in.FuelLevel); err != nil {
		metrics.RecordIngestError("database")
		return nil, nil, fmt.Errorf("update live state for vehicle %d: %w", in.VehicleID, err)
	}

	// Post-update state: the fetched row plus this point's changes.
	vehicle.CurrentLocation = &models.Coordinates{Lat: in.Location.Lat, Lng: in.Location.Lng}
	vehicle.CurrentSpeed = in.Speed
	if in.FuelLevel != nil {
		vehicle.FuelLevel = *in.FuelLevel
	}
	state := vehicle.Live()

	message := websocket.NewVehicleUpdate(&state)
	ing.hub.BroadcastAll(message)
	ing.hub.BroadcastToVehicle(in.VehicleID, message)

	if ing.publisher != nil {
		if err := ing.publisher.PublishVehicleUpdate(ctx, &state); err != nil {
			// Mirroring is best-effort; the point is already accepted.
			logging.Warn().Err(err).Int64("vehicle_id", in.VehicleID).Msg("failed to publish vehicle update")
		}
	}

	return point, &state, nil
}

// lockVehicle acquires the per-vehicle pipeline lock
func (ing *Ingestor) lockVehicle(id int64) *sync.Mutex {
	muInterface, _ := ing.vehicleLocks.LoadOrStore(id, &sync.Mutex{})
	mu, ok := muInterface.(*sync.Mutex)
	if !ok {
		mu = &sync.Mutex{}
		ing.vehicleLocks.Store(id, mu)
	}
	mu.Lock()
	return mu
}

// History returns the most recent points for a vehicle, newest first.
// The vehicle must exist; unknown ids return database.ErrVehicleNotFound.
func (ing *Ingestor) History(ctx context.Context, vehicleID int64, limit int) ([]models.TrackingPoint, error) {
	if _, err := ing.store.GetVehicle(ctx, vehicleID); err != nil {
		return nil, fmt.Errorf("history for vehicle %d: %w", vehicleID, err)
	}
	return ing.store.ListTrackingHistory(ctx, vehicleID, limit)
}

// ensure the concrete store satisfies the interface
var _ Store = (*database.DB)(nil)
