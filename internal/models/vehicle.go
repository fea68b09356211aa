// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package models

import "time"

// VehicleStatus is the operational state of a vehicle.
type VehicleStatus string

// Vehicle statuses.
const (
	VehicleStatusActive      VehicleStatus = "ACTIVE"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
	VehicleStatusIdle        VehicleStatus = "IDLE"
	VehicleStatusSOS         VehicleStatus = "SOS"
	VehicleStatusInProgress  VehicleStatus = "IN_PROGRESS"
)

// Valid reports whether s is a known vehicle status.
func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleStatusActive, VehicleStatusMaintenance, VehicleStatusIdle,
		VehicleStatusSOS, VehicleStatusInProgress:
		return true
	}
	return false
}

// Coordinates is a WGS 84 geographic position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Vehicle is the authoritative record for one fleet vehicle, including its
// latest known telemetry snapshot (location, speed, fuel).
//
// The snapshot fields are overwritten in place by the ingestion pipeline;
// the historical trail lives in tracking_points (see TrackingPoint). The
// snapshot must only ever be updated as a unit so that readers never observe
// a location from one point paired with the speed of another.
type Vehicle struct {
	ID              int64         `json:"id"`
	PlateNumber     string        `json:"plate_number"`
	Model           string        `json:"model,omitempty"`
	Status          VehicleStatus `json:"status"`
	CurrentLocation *Coordinates  `json:"current_location,omitempty"`
	CurrentSpeed    float64       `json:"current_speed"`
	FuelLevel       float64       `json:"fuel_level"`
	CreatedAt       time.Time     `json:"created_at"`
}

// LiveState is the broadcastable projection of a vehicle's latest snapshot.
// It is the payload of the "vehicle_update" websocket message.
type LiveState struct {
	ID              int64         `json:"id"`
	PlateNumber     string        `json:"plate_number"`
	CurrentLocation Coordinates   `json:"current_location"`
	Speed           float64       `json:"speed"`
	FuelLevel       float64       `json:"fuel_level"`
	Status          VehicleStatus `json:"status"`
}

// Live returns the vehicle's current snapshot as a LiveState.
// A vehicle that has never reported a position projects a zero location.
func (v *Vehicle) Live() LiveState {
	state := LiveState{
		ID:          v.ID,
		PlateNumber: v.PlateNumber,
		Speed:       v.CurrentSpeed,
		FuelLevel:   v.FuelLevel,
		Status:      v.Status,
	}
	if v.CurrentLocation != nil {
		state.CurrentLocation = *v.CurrentLocation
	}
	return state
}
