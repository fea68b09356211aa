// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/fleetglass/fleetglass/internal/database"
	"github.com/fleetglass/fleetglass/internal/models"
)

// CreateVehicle handles POST /api/v1/vehicles.
func (h *Handler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req VehicleCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	vehicle := &models.Vehicle{
		PlateNumber: req.PlateNumber,
		Model:       req.Model,
		Status:      models.VehicleStatus(req.Status),
	}
	if req.FuelLevel != nil {
		vehicle.FuelLevel = *req.FuelLevel
	}

	if err := h.db.CreateVehicle(r.Context(), vehicle); err != nil {
		respondError(w, http.StatusInternalServerError, errCodeInternalError, "Failed to create vehicle", err)
		return
	}

	respondSuccess(w, http.StatusCreated, vehicle)
}

// ListVehicles handles GET /api/v1/vehicles.
func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.db.ListVehicles(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, errCodeInternalError, "Failed to list vehicles", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   vehicles,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			Count:     len(vehicles),
		},
	})
}

// GetVehicle handles GET /api/v1/vehicles/{vehicle_id}.
func (h *Handler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := getInt64URLParam(r, "vehicle_id")
	if !ok {
		respondError(w, http.StatusBadRequest, errCodeBadRequest, "Invalid vehicle id", nil)
		return
	}

	vehicle, err := h.db.GetVehicle(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, database.ErrVehicleNotFound) {
			respondError(w, http.StatusNotFound, errCodeNotFound, "Vehicle not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, errCodeInternalError, "Failed to load vehicle", err)
		return
	}

	respondSuccess(w, http.StatusOK, vehicle)
}
