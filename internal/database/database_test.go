// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fleetglass/fleetglass/internal/config"
	"github.com/fleetglass/fleetglass/internal/models"
)

// testDBSemaphore limits concurrent database creation to prevent
// resource exhaustion in CI. Too many concurrent DuckDB CGO calls can
// cause hangs, so database-backed tests run one at a time.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates a new in-memory test database.
// The semaphore is held for the entire test lifecycle and released via
// t.Cleanup, so only one test has an active DuckDB connection at a time.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      "",
		MaxMemory: "512MB",
		Threads:   2,
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	return db
}

func mustCreateVehicle(t *testing.T, db *DB, plate string) *models.Vehicle {
	t.Helper()
	v := &models.Vehicle{
		PlateNumber: plate,
		Model:       "Ford Transit",
		Status:      models.VehicleStatusActive,
		FuelLevel:   100,
	}
	if err := db.CreateVehicle(context.Background(), v); err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	return v
}

func TestCreateAndGetVehicle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	v := mustCreateVehicle(t, db, "A123BC")
	if v.ID == 0 {
		t.Fatal("CreateVehicle did not assign an id")
	}
	if v.CreatedAt.IsZero() {
		t.Error("CreateVehicle did not assign created_at")
	}

	got, err := db.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("GetVehicle: %v", err)
	}
	if got.PlateNumber != "A123BC" || got.Model != "Ford Transit" {
		t.Errorf("unexpected vehicle: %+v", got)
	}
	if got.Status != models.VehicleStatusActive {
		t.Errorf("status = %q, want ACTIVE", got.Status)
	}
	if got.CurrentLocation != nil {
		t.Errorf("new vehicle should have no location, got %+v", got.CurrentLocation)
	}
}

func TestGetVehicleNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetVehicle(context.Background(), 9999)
	if !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("err = %v, want ErrVehicleNotFound", err)
	}
}

func TestCreateVehicleDefaultsStatus(t *testing.T) {
	db := setupTestDB(t)

	v := &models.Vehicle{PlateNumber: "B777XX", Model: "Gazelle Next"}
	if err := db.CreateVehicle(context.Background(), v); err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	if v.Status != models.VehicleStatusIdle {
		t.Errorf("status = %q, want IDLE default", v.Status)
	}
}

func TestListVehicles(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	vehicles, err := db.ListVehicles(ctx)
	if err != nil {
		t.Fatalf("ListVehicles on empty registry: %v", err)
	}
	if len(vehicles) != 0 {
		t.Fatalf("expected empty registry, got %d vehicles", len(vehicles))
	}

	mustCreateVehicle(t, db, "A001AA")
	mustCreateVehicle(t, db, "A002AA")
	mustCreateVehicle(t, db, "A003AA")

	vehicles, err = db.ListVehicles(ctx)
	if err != nil {
		t.Fatalf("ListVehicles: %v", err)
	}
	if len(vehicles) != 3 {
		t.Fatalf("got %d vehicles, want 3", len(vehicles))
	}
	// Ordered by id.
	if vehicles[0].PlateNumber != "A001AA" || vehicles[2].PlateNumber != "A003AA" {
		t.Errorf("unexpected ordering: %v, %v", vehicles[0].PlateNumber, vehicles[2].PlateNumber)
	}
}

func TestUpdateVehicleTelemetry(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	v := mustCreateVehicle(t, db, "C555CC")

	fuel := 73.5
	if err := db.UpdateVehicleTelemetry(ctx, v.ID, 55.7558, 37.6173, 61.5, &fuel); err != nil {
		t.Fatalf("UpdateVehicleTelemetry: %v", err)
	}

	got, err := db.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("GetVehicle: %v", err)
	}
	if got.CurrentLocation == nil {
		t.Fatal("location not set after telemetry update")
	}
	if got.CurrentLocation.Lat != 55.7558 || got.CurrentLocation.Lng != 37.6173 {
		t.Errorf("location = %+v", got.CurrentLocation)
	}
	if got.CurrentSpeed != 61.5 {
		t.Errorf("speed = %v, want 61.5", got.CurrentSpeed)
	}
	if got.FuelLevel != 73.5 {
		t.Errorf("fuel = %v, want 73.5", got.FuelLevel)
	}
}

func TestUpdateVehicleTelemetryNilFuelKeepsStored(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	v := mustCreateVehicle(t, db, "D888DD")

	if err := db.UpdateVehicleTelemetry(ctx, v.ID, 59.9311, 30.3609, 40, nil); err != nil {
		t.Fatalf("UpdateVehicleTelemetry: %v", err)
	}

	got, err := db.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("GetVehicle: %v", err)
	}
	if got.FuelLevel != 100 {
		t.Errorf("fuel = %v, want stored value 100 preserved", got.FuelLevel)
	}
}

func TestUpdateVehicleTelemetryUnknownVehicle(t *testing.T) {
	db := setupTestDB(t)

	err := db.UpdateVehicleTelemetry(context.Background(), 9999, 0, 0, 0, nil)
	if !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("err = %v, want ErrVehicleNotFound", err)
	}
}

func TestInsertAndListTrackingHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	v := mustCreateVehicle(t, db, "E111EE")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	heading := 270.0
	for i := 0; i < 5; i++ {
		p := &models.TrackingPoint{
			VehicleID: v.ID,
			Location:  models.Coordinates{Lat: 55.75 + float64(i)*0.001, Lng: 37.61},
			Speed:     float64(30 + i),
			Heading:   &heading,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.InsertTrackingPoint(ctx, p); err != nil {
			t.Fatalf("InsertTrackingPoint %d: %v", i, err)
		}
		if p.ID == 0 {
			t.Fatalf("point %d did not get an id", i)
		}
	}

	points, err := db.ListTrackingHistory(ctx, v.ID, 3)
	if err != nil {
		t.Fatalf("ListTrackingHistory: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want limit 3", len(points))
	}
	// Newest first.
	if !points[0].Timestamp.After(points[1].Timestamp) {
		t.Errorf("points not ordered newest first: %v then %v", points[0].Timestamp, points[1].Timestamp)
	}
	if points[0].Speed != 34 {
		t.Errorf("newest point speed = %v, want 34", points[0].Speed)
	}
	if points[0].FuelLevel != nil {
		t.Errorf("fuel should be nil when not reported, got %v", *points[0].FuelLevel)
	}
	if points[0].Heading == nil || *points[0].Heading != 270 {
		t.Errorf("heading not round-tripped: %v", points[0].Heading)
	}
}

func TestListTrackingHistoryEmptyVehicle(t *testing.T) {
	db := setupTestDB(t)

	v := mustCreateVehicle(t, db, "F222FF")
	points, err := db.ListTrackingHistory(context.Background(), v.ID, 100)
	if err != nil {
		t.Fatalf("ListTrackingHistory: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("got %d points, want 0", len(points))
	}
}

func TestConcurrentTelemetryUpdates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	v := mustCreateVehicle(t, db, "G333GG")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fuel := float64(50 + i)
			if err := db.UpdateVehicleTelemetry(ctx, v.ID, 55.0, 37.0, float64(i), &fuel); err != nil {
				t.Errorf("concurrent update %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := db.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("GetVehicle: %v", err)
	}
	// One of the writes won; fuel must be in the written range.
	if got.FuelLevel < 50 || got.FuelLevel > 69 {
		t.Errorf("fuel = %v, want value from one of the writers", got.FuelLevel)
	}
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
