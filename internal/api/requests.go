// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package api

// CoordinatesRequest is a lat/lng pair inside request bodies.
type CoordinatesRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// TrackingPointRequest is the body of POST /api/v1/tracking/points.
// FuelLevel and Heading are optional; an absent fuel level leaves the
// vehicle's stored fuel level untouched.
type TrackingPointRequest struct {
	VehicleID int64              `json:"vehicle_id" validate:"required,gt=0"`
	Location  CoordinatesRequest `json:"location"`
	Speed     float64            `json:"speed" validate:"gte=0"`
	FuelLevel *float64           `json:"fuel_level,omitempty" validate:"omitempty,gte=0,lte=100"`
	Heading   *float64           `json:"heading,omitempty" validate:"omitempty,gte=0,lt=360"`
}

// OrderCalculateRequest is the body of POST /api/v1/orders/calculate.
// Dimensions are centimeters, weight is kilograms.
type OrderCalculateRequest struct {
	PickupLocation   CoordinatesRequest `json:"pickup_location"`
	DeliveryLocation CoordinatesRequest `json:"delivery_location"`
	Weight           float64            `json:"weight" validate:"required,gt=0"`
	Length           float64            `json:"length" validate:"required,gt=0"`
	Width            float64            `json:"width" validate:"required,gt=0"`
	Height           float64            `json:"height" validate:"required,gt=0"`
}

// VehicleCreateRequest is the body of POST /api/v1/vehicles.
// Status defaults to IDLE when omitted.
type VehicleCreateRequest struct {
	PlateNumber string   `json:"plate_number" validate:"required,min=2,max=32"`
	Model       string   `json:"model,omitempty" validate:"omitempty,max=64"`
	Status      string   `json:"status,omitempty" validate:"omitempty,vehicle_status"`
	FuelLevel   *float64 `json:"fuel_level,omitempty" validate:"omitempty,gte=0,lte=100"`
}
