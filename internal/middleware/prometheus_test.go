// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestPrometheusMetricsPassesThrough(t *testing.T) {
	called := false
	handler := func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tracking/points", nil)
	rec := httptest.NewRecorder()

	PrometheusMetrics(handler)(rec, req)

	if !called {
		t.Fatal("expected wrapped handler to be called")
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
}

func TestMetricsResponseWriterCapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	mw := &metricsResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	mw.WriteHeader(http.StatusNotFound)

	if mw.statusCode != http.StatusNotFound {
		t.Errorf("expected captured status 404, got %d", mw.statusCode)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected underlying status 404, got %d", rec.Code)
	}
}

func TestMetricsResponseWriterDefaultsToOK(t *testing.T) {
	rec := httptest.NewRecorder()
	mw := &metricsResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	if _, err := mw.Write([]byte("ok")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if mw.statusCode != http.StatusOK {
		t.Errorf("expected implicit status 200, got %d", mw.statusCode)
	}
}

func TestPrometheusMetricsUsesRoutePattern(t *testing.T) {
	// Routed through chi so the route context carries the pattern rather
	// than the concrete path with its embedded vehicle ID.
	r := chi.NewRouter()
	var pattern string
	r.Get("/vehicles/{vehicle_id}/history", PrometheusMetrics(func(w http.ResponseWriter, req *http.Request) {
		pattern = chi.RouteContext(req.Context()).RoutePattern()
	}))

	req := httptest.NewRequest(http.MethodGet, "/vehicles/42/history", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if pattern != "/vehicles/{vehicle_id}/history" {
		t.Errorf("expected route pattern label, got %q", pattern)
	}
}

func TestMetricsResponseWriterHijackUnsupported(t *testing.T) {
	mw := &metricsResponseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	if _, _, err := mw.Hijack(); err == nil {
		t.Error("expected hijack error on non-hijackable writer")
	}
}
