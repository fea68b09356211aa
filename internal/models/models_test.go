// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package models

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestVehicleStatusValid(t *testing.T) {
	valid := []VehicleStatus{
		VehicleStatusActive, VehicleStatusMaintenance, VehicleStatusIdle,
		VehicleStatusSOS, VehicleStatusInProgress,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []VehicleStatus{"", "active", "PARKED"} {
		if s.Valid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestVehicleLiveProjection(t *testing.T) {
	v := &Vehicle{
		ID:              42,
		PlateNumber:     "A123BC",
		Status:          VehicleStatusActive,
		CurrentLocation: &Coordinates{Lat: 10, Lng: 20},
		CurrentSpeed:    55,
		FuelLevel:       80,
	}

	live := v.Live()
	if live.ID != 42 || live.PlateNumber != "A123BC" {
		t.Errorf("identity fields not carried: %+v", live)
	}
	if live.CurrentLocation.Lat != 10 || live.CurrentLocation.Lng != 20 {
		t.Errorf("location not carried: %+v", live.CurrentLocation)
	}
	if live.Speed != 55 || live.FuelLevel != 80 {
		t.Errorf("telemetry not carried: %+v", live)
	}
}

func TestVehicleLiveNoLocation(t *testing.T) {
	v := &Vehicle{ID: 1, PlateNumber: "X", Status: VehicleStatusIdle}
	live := v.Live()
	if live.CurrentLocation.Lat != 0 || live.CurrentLocation.Lng != 0 {
		t.Errorf("expected zero location for unreported vehicle, got %+v", live.CurrentLocation)
	}
}

func TestTrackingPointOptionalFieldsOmitted(t *testing.T) {
	p := TrackingPoint{ID: 1, VehicleID: 42, Location: Coordinates{Lat: 1, Lng: 2}, Speed: 30}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "fuel_level") {
		t.Errorf("nil fuel_level should be omitted: %s", out)
	}
	if strings.Contains(out, "heading") {
		t.Errorf("nil heading should be omitted: %s", out)
	}
}
