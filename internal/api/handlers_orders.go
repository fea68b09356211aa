// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package api

import (
	"net/http"

	"github.com/fleetglass/fleetglass/internal/metrics"
	"github.com/fleetglass/fleetglass/internal/pricing"
)

// CalculateOrderPrice handles POST /api/v1/orders/calculate.
// Pure calculation: nothing is persisted and no state is read.
func (h *Handler) CalculateOrderPrice(w http.ResponseWriter, r *http.Request) {
	var req OrderCalculateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	distanceKm := pricing.HaversineDistance(
		req.PickupLocation.Lat, req.PickupLocation.Lng,
		req.DeliveryLocation.Lat, req.DeliveryLocation.Lng,
	)

	quote := pricing.CalculateOrderPrice(distanceKm, req.Weight, req.Length, req.Width, req.Height)

	metrics.PricingQuotesTotal.Inc()

	respondSuccess(w, http.StatusOK, quote)
}
