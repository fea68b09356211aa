// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package models

import "time"

// TrackingPoint is one GPS/sensor sample reported by a vehicle.
//
// Points are append-only: the timestamp is assigned by the server at ingest
// time and a persisted point is never mutated. FuelLevel and Heading are
// optional; a report without a fuel level leaves the vehicle's live fuel
// state untouched.
type TrackingPoint struct {
	ID        int64       `json:"id"`
	VehicleID int64       `json:"vehicle_id"`
	Location  Coordinates `json:"location"`
	Speed     float64     `json:"speed"`
	FuelLevel *float64    `json:"fuel_level,omitempty"`
	Heading   *float64    `json:"heading,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// PricingQuote is the result of a delivery price calculation.
// It is never persisted; callers recompute on demand.
type PricingQuote struct {
	Price            float64 `json:"price"`
	DistanceKm       float64 `json:"distance_km"`
	VolumeM3         float64 `json:"volume_m3"`
	VolumetricWeight float64 `json:"volumetric_weight"`
	ChargeableWeight float64 `json:"chargeable_weight"`
}
