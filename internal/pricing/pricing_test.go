// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package pricing

import (
	"math"
	"testing"
)

func TestHaversineDistanceKnownPairs(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		toleranceKm            float64
	}{
		{"moscow to st petersburg", 55.7558, 37.6173, 59.9343, 30.3351, 634, 5},
		{"london to paris", 51.5074, -0.1278, 48.8566, 2.3522, 344, 3},
		{"equator one degree longitude", 0, 0, 0, 1, 111.19, 0.5},
		{"antimeridian neighbors", 0, 179.5, 0, -179.5, 111.19, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantKm) > tt.toleranceKm {
				t.Errorf("HaversineDistance() = %.2f km, want %.2f ± %.2f", got, tt.wantKm, tt.toleranceKm)
			}
		})
	}
}

func TestHaversineDistanceSymmetry(t *testing.T) {
	pairs := [][4]float64{
		{55.7558, 37.6173, 59.9343, 30.3351},
		{-33.8688, 151.2093, 40.7128, -74.0060},
		{10, 20, -10, -20},
		{89.9, 0, -89.9, 180},
	}

	for _, p := range pairs {
		ab := HaversineDistance(p[0], p[1], p[2], p[3])
		ba := HaversineDistance(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("distance not symmetric: %v vs %v for %v", ab, ba, p)
		}
	}
}

func TestHaversineDistanceIdenticalPoints(t *testing.T) {
	if d := HaversineDistance(55.7558, 37.6173, 55.7558, 37.6173); d != 0 {
		t.Errorf("expected 0 for identical points, got %v", d)
	}
	if d := HaversineDistance(0, 0, 0, 0); d != 0 {
		t.Errorf("expected 0 at origin, got %v", d)
	}
}

func TestCalculateOrderPriceFormula(t *testing.T) {
	// 100 km, 10 kg actual, 50x40x30 cm = 60000 cm³ → 12 kg volumetric.
	quote := CalculateOrderPrice(100, 10, 50, 40, 30)

	if quote.VolumetricWeight != 12 {
		t.Errorf("volumetric weight = %v, want 12", quote.VolumetricWeight)
	}
	if quote.ChargeableWeight != 12 {
		t.Errorf("chargeable weight = %v, want 12 (volumetric exceeds actual)", quote.ChargeableWeight)
	}
	if quote.VolumeM3 != 0.06 {
		t.Errorf("volume = %v m3, want 0.06", quote.VolumeM3)
	}
	// 500 + 100*40 + 12*10 = 4620, already a multiple of 10.
	if quote.Price != 4620 {
		t.Errorf("price = %v, want 4620", quote.Price)
	}
	if quote.DistanceKm != 100 {
		t.Errorf("distance = %v, want 100", quote.DistanceKm)
	}
}

func TestCalculateOrderPriceRoundsUpToTen(t *testing.T) {
	// 10.1 km, 1 kg actual, 10x10x10 cm → 0.2 kg volumetric, chargeable 1 kg.
	// raw = 500 + 404 + 10 = 914 → 920.
	quote := CalculateOrderPrice(10.1, 1, 10, 10, 10)
	if quote.Price != 920 {
		t.Errorf("price = %v, want 920", quote.Price)
	}

	raw := BasePrice + 10.1*RatePerKm + 1*RatePerKg
	if quote.Price < raw {
		t.Errorf("rounded price %v is below raw price %v", quote.Price, raw)
	}
	if math.Mod(quote.Price, 10) != 0 {
		t.Errorf("price %v is not a multiple of 10", quote.Price)
	}
}

func TestCalculateOrderPriceChargeableWeightIsMax(t *testing.T) {
	tests := []struct {
		name           string
		weightKg       float64
		l, w, h        float64
		wantChargeable float64
	}{
		{"actual heavier", 50, 10, 10, 10, 50},
		{"volumetric heavier", 1, 100, 50, 20, 20},
		{"equal", 2, 10, 10, 100, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := CalculateOrderPrice(1, tt.weightKg, tt.l, tt.w, tt.h)
			if quote.ChargeableWeight != tt.wantChargeable {
				t.Errorf("chargeable = %v, want %v", quote.ChargeableWeight, tt.wantChargeable)
			}
		})
	}
}

func TestCalculateOrderPriceMonotonicity(t *testing.T) {
	base := CalculateOrderPrice(10, 5, 20, 20, 20)

	farther := CalculateOrderPrice(500, 5, 20, 20, 20)
	if farther.Price < base.Price {
		t.Errorf("price decreased with distance: %v -> %v", base.Price, farther.Price)
	}

	heavier := CalculateOrderPrice(10, 500, 20, 20, 20)
	if heavier.Price < base.Price {
		t.Errorf("price decreased with weight: %v -> %v", base.Price, heavier.Price)
	}

	// Sweep distance: total price is non-decreasing.
	prev := 0.0
	for d := 1.0; d <= 100; d += 1.7 {
		q := CalculateOrderPrice(d, 5, 20, 20, 20)
		if q.Price < prev {
			t.Fatalf("price decreased at distance %v: %v < %v", d, q.Price, prev)
		}
		prev = q.Price
	}
}

func TestCalculateOrderPriceOutputRounding(t *testing.T) {
	// Irrational-ish inputs exercise the presentation rounding.
	quote := CalculateOrderPrice(123.456789, 3.14159, 33.3, 44.4, 55.5)

	if quote.DistanceKm != 123.46 {
		t.Errorf("distance rounding: got %v, want 123.46", quote.DistanceKm)
	}
	// 33.3*44.4*55.5 = 82060.26 cm³ → 0.08206026 m³ → 0.0821.
	if quote.VolumeM3 != 0.0821 {
		t.Errorf("volume rounding: got %v, want 0.0821", quote.VolumeM3)
	}
	// 82060.26/5000 = 16.412052 → 16.41.
	if quote.VolumetricWeight != 16.41 {
		t.Errorf("volumetric rounding: got %v, want 16.41", quote.VolumetricWeight)
	}
}
