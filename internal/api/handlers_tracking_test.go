// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package api

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/fleetglass/fleetglass/internal/models"
)

func TestIngestTrackingPointCreated(t *testing.T) {
	api := setupTestAPI(t)
	vehicle := api.mustCreateVehicle(t, "FL-100-AA")

	fuel := 64.5
	status, env := api.doJSON(t, http.MethodPost, "/api/v1/tracking/points", TrackingPointRequest{
		VehicleID: vehicle.ID,
		Location:  CoordinatesRequest{Lat: 55.75, Lng: 37.62},
		Speed:     42.5,
		FuelLevel: &fuel,
	})

	if status != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", status)
	}
	if env.Status != "success" {
		t.Fatalf("expected success envelope, got %q", env.Status)
	}

	var point models.TrackingPoint
	if err := json.Unmarshal(env.Data, &point); err != nil {
		t.Fatalf("failed to decode point: %v", err)
	}
	if point.ID == 0 {
		t.Error("expected server-assigned point ID")
	}
	if point.VehicleID != vehicle.ID {
		t.Errorf("expected vehicle ID %d, got %d", vehicle.ID, point.VehicleID)
	}
	if point.Timestamp.IsZero() {
		t.Error("expected server-assigned timestamp")
	}
	if point.FuelLevel == nil || *point.FuelLevel != fuel {
		t.Errorf("expected fuel level %v, got %v", fuel, point.FuelLevel)
	}
}

func TestIngestTrackingPointUnknownVehicle(t *testing.T) {
	api := setupTestAPI(t)

	status, env := api.doJSON(t, http.MethodPost, "/api/v1/tracking/points", TrackingPointRequest{
		VehicleID: 9999,
		Location:  CoordinatesRequest{Lat: 10, Lng: 20},
		Speed:     30,
	})

	if status != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND error, got %+v", env.Error)
	}
}

func TestIngestTrackingPointInvalidBody(t *testing.T) {
	api := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tracking/points", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	api.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestIngestTrackingPointValidation(t *testing.T) {
	api := setupTestAPI(t)
	vehicle := api.mustCreateVehicle(t, "FL-101-AB")

	tests := []struct {
		name string
		req  TrackingPointRequest
	}{
		{"latitude out of range", TrackingPointRequest{
			VehicleID: vehicle.ID,
			Location:  CoordinatesRequest{Lat: 91, Lng: 0},
		}},
		{"longitude out of range", TrackingPointRequest{
			VehicleID: vehicle.ID,
			Location:  CoordinatesRequest{Lat: 0, Lng: 181},
		}},
		{"negative speed", TrackingPointRequest{
			VehicleID: vehicle.ID,
			Location:  CoordinatesRequest{Lat: 10, Lng: 10},
			Speed:     -1,
		}},
		{"missing vehicle id", TrackingPointRequest{
			Location: CoordinatesRequest{Lat: 10, Lng: 10},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := api.doJSON(t, http.MethodPost, "/api/v1/tracking/points", tt.req)
			if status != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", status)
			}
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("expected VALIDATION_ERROR, got %+v", env.Error)
			}
		})
	}
}

func TestTrackingHistoryOrderAndLimit(t *testing.T) {
	api := setupTestAPI(t)
	vehicle := api.mustCreateVehicle(t, "FL-102-AC")

	for i := 0; i < 5; i++ {
		status, _ := api.doJSON(t, http.MethodPost, "/api/v1/tracking/points", TrackingPointRequest{
			VehicleID: vehicle.ID,
			Location:  CoordinatesRequest{Lat: 50, Lng: 30},
			Speed:     float64(10 + i),
		})
		if status != http.StatusCreated {
			t.Fatalf("ingest %d: expected 201, got %d", i, status)
		}
		time.Sleep(2 * time.Millisecond)
	}

	status, env := api.doJSON(t, http.MethodGet, "/api/v1/tracking/vehicles/"+itoa(vehicle.ID)+"/history?limit=3", nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}

	var points []models.TrackingPoint
	if err := json.Unmarshal(env.Data, &points); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if env.Metadata.Count != 3 {
		t.Errorf("expected metadata count 3, got %d", env.Metadata.Count)
	}
	if points[0].Speed != 14 {
		t.Errorf("expected most recent point first (speed 14), got %v", points[0].Speed)
	}
}

func TestTrackingHistoryUnknownVehicle(t *testing.T) {
	api := setupTestAPI(t)

	status, env := api.doJSON(t, http.MethodGet, "/api/v1/tracking/vehicles/9999/history", nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND error, got %+v", env.Error)
	}
}

func TestTrackingHistoryInvalidID(t *testing.T) {
	api := setupTestAPI(t)

	status, _ := api.doJSON(t, http.MethodGet, "/api/v1/tracking/vehicles/abc/history", nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", status)
	}
}

// TestWebSocketSubscribeAndUpdate exercises the full loop: dial the websocket
// endpoint, subscribe to a vehicle, post a telemetry point, and verify the
// vehicle_update reaches the subscriber.
func TestWebSocketSubscribeAndUpdate(t *testing.T) {
	api := setupTestAPI(t)
	vehicle := api.mustCreateVehicle(t, "FL-103-AD")

	srv := httptest.NewServer(api.mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/tracking/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]interface{}{"type": "subscribe", "vehicle_id": vehicle.ID}); err != nil {
		t.Fatalf("failed to send subscribe: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ack struct {
		Type      string `json:"type"`
		VehicleID int64  `json:"vehicle_id"`
	}
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("failed to read subscribe ack: %v", err)
	}
	if ack.Type != "subscribed" || ack.VehicleID != vehicle.ID {
		t.Fatalf("unexpected ack %+v", ack)
	}

	status, _ := api.doJSON(t, http.MethodPost, "/api/v1/tracking/points", TrackingPointRequest{
		VehicleID: vehicle.ID,
		Location:  CoordinatesRequest{Lat: 48.85, Lng: 2.35},
		Speed:     88,
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	// The subscriber gets the update twice: once from the fleet-wide
	// broadcast and once from the per-vehicle stream.
	var update struct {
		Type      string            `json:"type"`
		VehicleID int64             `json:"vehicle_id"`
		Data      *models.LiveState `json:"data"`
	}
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("failed to read vehicle update: %v", err)
	}
	if update.Type != "vehicle_update" {
		t.Fatalf("expected vehicle_update, got %q", update.Type)
	}
	if update.Data == nil || update.Data.Speed != 88 {
		t.Errorf("unexpected update payload %+v", update.Data)
	}
	if update.Data.CurrentLocation.Lat != 48.85 {
		t.Errorf("expected lat 48.85, got %v", update.Data.CurrentLocation.Lat)
	}
	if update.Data.PlateNumber != vehicle.PlateNumber {
		t.Errorf("expected plate %q, got %q", vehicle.PlateNumber, update.Data.PlateNumber)
	}
}

func TestWebSocketPingPong(t *testing.T) {
	api := setupTestAPI(t)

	srv := httptest.NewServer(api.mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/tracking/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("failed to send ping: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("failed to read pong: %v", err)
	}
	if reply.Type != "pong" {
		t.Errorf("expected pong, got %q", reply.Type)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
