package services

import (
	"math"
	"testing"
	"time"

	"reachout_server/models"
)

func TestHaversineSymmetry(t *testing.T) {
	a := LatLng{Latitude: 40.000, Longitude: -73.000}
	b := LatLng{Latitude: 40.001, Longitude: -73.001}

	ab := HaversineKm(a, b)
	ba := HaversineKm(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("haversine not symmetric: %f vs %f", ab, ba)
	}
}

func TestHaversineIdentity(t *testing.T) {
	a := LatLng{Latitude: 51.5, Longitude: -0.12}
	if d := HaversineKm(a, a); d != 0 {
		t.Errorf("expected zero distance to self, got %f", d)
	}
}

func TestHaversineTriangleInequality(t *testing.T) {
	a := LatLng{Latitude: 40.0, Longitude: -73.0}
	b := LatLng{Latitude: 40.5, Longitude: -73.5}
	c := LatLng{Latitude: 41.0, Longitude: -74.0}

	ac := HaversineKm(a, c)
	viaB := HaversineKm(a, b) + HaversineKm(b, c)
	if ac > viaB+1e-9 {
		t.Errorf("triangle inequality violated: %f > %f", ac, viaB)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// The scenario coordinates: ~0.14 km apart.
	a := LatLng{Latitude: 40.000, Longitude: -73.000}
	b := LatLng{Latitude: 40.001, Longitude: -73.001}

	d := HaversineKm(a, b)
	if d < 0.10 || d > 0.20 {
		t.Errorf("expected ~0.14 km, got %f", d)
	}
}

func TestProximityBandBoundaries(t *testing.T) {
	cases := []struct {
		meters float64
		want   string
	}{
		{0, Band0to100},
		{99, Band0to100},
		{100, Band0to100},
		{101, Band100to250},
		{250, Band100to250},
		{251, Band250to500},
		{500, Band250to500},
		{501, Band500to1000},
		{1000, Band500to1000},
		{1001, BandBeyond1km},
		{25000, BandBeyond1km},
	}
	for _, tc := range cases {
		got, err := ProximityBand(tc.meters)
		if err != nil {
			t.Fatalf("ProximityBand(%f) returned error: %v", tc.meters, err)
		}
		if got != tc.want {
			t.Errorf("ProximityBand(%f) = %q, want %q", tc.meters, got, tc.want)
		}
	}
}

func TestProximityBandRejectsNegativeDistance(t *testing.T) {
	if _, err := ProximityBand(-1); err == nil {
		t.Fatal("expected error for negative distance")
	}
}

func TestBandLabels(t *testing.T) {
	if BandLabel(Band0to100) != "in this building" {
		t.Errorf("unexpected label for nearest band: %q", BandLabel(Band0to100))
	}
	if BandLabel(BandBeyond1km) != "further away" {
		t.Errorf("unexpected label for farthest band: %q", BandLabel(BandBeyond1km))
	}
	// Unknown bands fall back to the farthest label.
	if BandLabel("bogus") != "further away" {
		t.Errorf("unexpected fallback label: %q", BandLabel("bogus"))
	}
}

func TestBandScores(t *testing.T) {
	cases := map[string]float64{
		Band0to100:    1.0,
		Band100to250:  0.8,
		Band250to500:  0.6,
		Band500to1000: 0.4,
		BandBeyond1km: 0.2,
		"unknown":     0.2,
	}
	for band, want := range cases {
		if got := BandScore(band); got != want {
			t.Errorf("BandScore(%q) = %f, want %f", band, got, want)
		}
	}
}

func pendingRequestAt(id, owner string, lat, lng float64, age time.Duration) models.Request {
	return models.Request{
		RequestID: id,
		OwnerID:   owner,
		Latitude:  lat,
		Longitude: lng,
		Status:    models.RequestStatusPending,
		CreatedAt: time.Now().UTC().Add(-age).Format(time.RFC3339),
	}
}

func TestNearbyFilters(t *testing.T) {
	origin := LatLng{Latitude: 40.000, Longitude: -73.000}

	matched := pendingRequestAt("matched", "someone", 40.001, -73.001, time.Minute)
	matched.Status = models.RequestStatusMatched

	all := []models.Request{
		matched,
		pendingRequestAt("own", "me", 40.001, -73.001, time.Minute),
		pendingRequestAt("too-old", "a", 40.001, -73.001, 16*time.Minute),
		pendingRequestAt("fresh-10km", "b", 40.090, -73.000, 14*time.Minute),
		pendingRequestAt("too-far", "c", 41.000, -70.000, time.Minute),
		pendingRequestAt("closest", "d", 40.0005, -73.0005, time.Minute),
	}

	nearby := Nearby(all, origin, "me", 15, 50)

	if len(nearby) != 2 {
		t.Fatalf("expected 2 nearby requests, got %d: %+v", len(nearby), nearby)
	}
	if nearby[0].RequestID != "closest" {
		t.Errorf("expected ascending distance order, first was %s", nearby[0].RequestID)
	}
	if nearby[1].RequestID != "fresh-10km" {
		t.Errorf("expected fresh-10km second, got %s", nearby[1].RequestID)
	}
	if nearby[0].Band != Band0to100 {
		t.Errorf("expected nearest band for closest, got %s", nearby[0].Band)
	}
}

func TestNearbyKeepsUnparseableCreatedAt(t *testing.T) {
	// A malformed timestamp must never age a request off the feed.
	origin := LatLng{Latitude: 40.000, Longitude: -73.000}
	req := pendingRequestAt("no-timestamp", "a", 40.001, -73.001, 0)
	req.CreatedAt = "not-a-timestamp"

	nearby := Nearby([]models.Request{req}, origin, "me", 15, 50)
	if len(nearby) != 1 {
		t.Fatalf("expected permissive policy to keep the request, got %d results", len(nearby))
	}
}

func TestNearbyScenario(t *testing.T) {
	// Requester R at (40.000,-73.000); helper H at (40.001,-73.001) sees
	// the request ~0.14 km away in the nearest band.
	origin := LatLng{Latitude: 40.001, Longitude: -73.001}
	req := pendingRequestAt("req1", "R", 40.000, -73.000, time.Minute)

	nearby := Nearby([]models.Request{req}, origin, "H", DefaultMaxAgeMinutes, DefaultMaxDistanceKm)
	if len(nearby) != 1 {
		t.Fatalf("expected req1 visible, got %d results", len(nearby))
	}
	if nearby[0].Band != Band0to100 {
		t.Errorf("expected band %q, got %q", Band0to100, nearby[0].Band)
	}
	if nearby[0].Distance < 0.10 || nearby[0].Distance > 0.20 {
		t.Errorf("expected ~0.14 km, got %f", nearby[0].Distance)
	}
}
