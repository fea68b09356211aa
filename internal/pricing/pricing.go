// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

// Package pricing implements the delivery price calculator: great-circle
// distance between pickup and delivery points, volumetric weight, and the
// tariff formula.
//
// The engine is pure and stateless. It assumes positive cargo dimensions and
// weight; input validation is the HTTP layer's responsibility.
package pricing

import (
	"math"

	"github.com/fleetglass/fleetglass/internal/models"
)

// Tariff constants, currency-agnostic units.
const (
	// BasePrice is the flat dispatch cost added to every quote.
	BasePrice = 500.0

	// RatePerKm is the price per kilometer of great-circle distance.
	RatePerKm = 40.0

	// RatePerKg is the price per chargeable kilogram.
	RatePerKg = 10.0

	// VolumetricDivisor converts cargo volume in cm³ to volumetric weight
	// in kg (freight-industry standard divisor).
	VolumetricDivisor = 5000.0

	// earthRadiusKm is the mean Earth radius used by the haversine formula.
	earthRadiusKm = 6371.0
)

// HaversineDistance returns the great-circle distance in kilometers between
// two points given in decimal degrees. Symmetric in its arguments; returns 0
// for identical points.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// CalculateOrderPrice computes a quote for a delivery of the given distance
// and cargo. The total price is rounded UP to the nearest multiple of 10 so
// the business never undercharges; the reported distance and weights are
// rounded for presentation only, with unrounded values used internally.
func CalculateOrderPrice(distanceKm, weightKg, lengthCm, widthCm, heightCm float64) models.PricingQuote {
	volumeCm3 := lengthCm * widthCm * heightCm
	volumeM3 := volumeCm3 / 1_000_000
	volumetricWeight := volumeCm3 / VolumetricDivisor

	chargeableWeight := math.Max(weightKg, volumetricWeight)

	rawPrice := BasePrice + distanceKm*RatePerKm + chargeableWeight*RatePerKg
	totalPrice := math.Ceil(rawPrice/10) * 10

	return models.PricingQuote{
		Price:            totalPrice,
		DistanceKm:       round2(distanceKm),
		VolumeM3:         round4(volumeM3),
		VolumetricWeight: round2(volumetricWeight),
		ChargeableWeight: round2(chargeableWeight),
	}
}

// toRadians converts decimal degrees to radians.
func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
