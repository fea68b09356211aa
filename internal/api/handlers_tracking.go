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
	"github.com/fleetglass/fleetglass/internal/logging"
	"github.com/fleetglass/fleetglass/internal/models"
	"github.com/fleetglass/fleetglass/internal/tracking"
	ws "github.com/fleetglass/fleetglass/internal/websocket"
)

// IngestTrackingPoint handles POST /api/v1/tracking/points.
//
// The accepted point is persisted, the vehicle's live state is updated, and
// the update is broadcast to websocket observers before the response is
// written. An unknown vehicle yields 404 with no side effects.
func (h *Handler) IngestTrackingPoint(w http.ResponseWriter, r *http.Request) {
	var req TrackingPointRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	point, _, err := h.ingestor.IngestPoint(r.Context(), tracking.PointInput{
		VehicleID: req.VehicleID,
		Location:  models.Coordinates{Lat: req.Location.Lat, Lng: req.Location.Lng},
		Speed:     req.Speed,
		FuelLevel: req.FuelLevel,
		Heading:   req.Heading,
	})
	if err != nil {
		if errors.Is(err, database.ErrVehicleNotFound) {
			respondError(w, http.StatusNotFound, errCodeNotFound, "Vehicle not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, errCodeInternalError, "Failed to ingest tracking point", err)
		return
	}

	respondSuccess(w, http.StatusCreated, point)
}

// TrackingHistory handles GET /api/v1/tracking/vehicles/{vehicle_id}/history.
// Points come back most recent first; limit defaults to the configured
// history limit and is capped at the configured maximum.
func (h *Handler) TrackingHistory(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := getInt64URLParam(r, "vehicle_id")
	if !ok {
		respondError(w, http.StatusBadRequest, errCodeBadRequest, "Invalid vehicle id", nil)
		return
	}

	limit := getIntParam(r, "limit", h.config.Tracking.DefaultHistoryLimit)
	if limit <= 0 {
		limit = h.config.Tracking.DefaultHistoryLimit
	}
	if limit > h.config.Tracking.MaxHistoryLimit {
		limit = h.config.Tracking.MaxHistoryLimit
	}

	points, err := h.ingestor.History(r.Context(), vehicleID, limit)
	if err != nil {
		if errors.Is(err, database.ErrVehicleNotFound) {
			respondError(w, http.StatusNotFound, errCodeNotFound, "Vehicle not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, errCodeInternalError, "Failed to load tracking history", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   points,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			Count:     len(points),
		},
	})
}

// WebSocket handles GET /api/v1/tracking/ws: upgrades the connection,
// registers the client with the hub, and starts its pumps. Clients receive
// every vehicle_update; sending {"type":"subscribe","vehicle_id":N} adds a
// per-vehicle scope on top.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, errCodeUnavailable, "Websocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("Websocket upgrade error")
		return
	}

	client := ws.NewClientWithOptions(h.hub, conn, h.config.Websocket.SendBuffer, h.config.Websocket.InboundPerSecond)
	h.hub.Register <- client
	client.Start()
}
