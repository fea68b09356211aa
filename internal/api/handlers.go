// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fleetglass/fleetglass/internal/config"
	"github.com/fleetglass/fleetglass/internal/database"
	"github.com/fleetglass/fleetglass/internal/logging"
	"github.com/fleetglass/fleetglass/internal/tracking"
	ws "github.com/fleetglass/fleetglass/internal/websocket"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Handler contains the dependencies shared by all HTTP handlers.
type Handler struct {
	db        *database.DB
	hub       *ws.Hub
	ingestor  *tracking.Ingestor
	config    *config.Config
	startTime time.Time
}

// NewHandler creates the API handler.
func NewHandler(db *database.DB, hub *ws.Hub, ingestor *tracking.Ingestor, cfg *config.Config) *Handler {
	return &Handler{
		db:        db,
		hub:       hub,
		ingestor:  ingestor,
		config:    cfg,
		startTime: time.Now(),
	}
}

// getUpgrader creates a websocket upgrader with origin checking and a
// handshake timeout so a slow client cannot hold the upgrade open.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates connection origins against the configured
// CORS allowlist. Non-browser clients (telemetry simulators, dashboards run
// from scripts) omit the Origin header and are accepted.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("Websocket connection rejected from unauthorized origin")
	return false
}
