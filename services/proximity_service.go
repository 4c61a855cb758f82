package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"reachout_server/models"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Default nearby-feed cutoffs.
const (
	DefaultMaxAgeMinutes = 15
	DefaultMaxDistanceKm = 50.0
)

// LatLng is an opaque coordinate pair supplied by an external location
// provider. Acquisition, permissions, and refresh cadence are not our
// concern.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NearbyRequest is a pending request annotated with its distance from the
// caller's origin.
type NearbyRequest struct {
	models.Request
	Distance  float64 `json:"distanceKm"`
	Band      string  `json:"proximityBand"`
	BandLabel string  `json:"proximityLabel"`
}

// HaversineKm computes the great-circle distance between two points in
// kilometers.
func HaversineKm(a, b LatLng) float64 {
	toRad := func(v float64) float64 { return v * math.Pi / 180 }

	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)
	lat1 := toRad(a.Latitude)
	lat2 := toRad(b.Latitude)

	sinDlat := math.Sin(dLat / 2)
	sinDlon := math.Sin(dLon / 2)

	h := sinDlat*sinDlat + math.Cos(lat1)*math.Cos(lat2)*sinDlon*sinDlon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// Nearby filters a request feed down to candidates a helper at origin can
// act on: pending only, not the helper's own, created within maxAgeMinutes,
// within maxDistanceKm. Results come back ascending by distance.
//
// A record whose createdAt is missing or unparseable is treated as not
// expired. That is a deliberate permissive policy: a request must never
// drop off the feed because of a malformed timestamp.
func Nearby(all []models.Request, origin LatLng, selfOwnerID string, maxAgeMinutes int, maxDistanceKm float64) []NearbyRequest {
	if maxAgeMinutes <= 0 {
		maxAgeMinutes = DefaultMaxAgeMinutes
	}
	if maxDistanceKm <= 0 {
		maxDistanceKm = DefaultMaxDistanceKm
	}
	cutoff := time.Now().UTC().Add(-time.Duration(maxAgeMinutes) * time.Minute)

	var out []NearbyRequest
	for _, req := range all {
		if req.Status != models.RequestStatusPending {
			continue
		}
		if req.OwnerID == selfOwnerID {
			continue
		}
		if createdAt, err := time.Parse(time.RFC3339, req.CreatedAt); err == nil {
			if createdAt.Before(cutoff) {
				continue
			}
		}

		distance := HaversineKm(origin, LatLng{Latitude: req.Latitude, Longitude: req.Longitude})
		if distance > maxDistanceKm {
			continue
		}

		band, err := ProximityBand(distance * 1000)
		if err != nil {
			continue
		}
		out = append(out, NearbyRequest{
			Request:   req,
			Distance:  distance,
			Band:      band,
			BandLabel: BandLabel(band),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}

// Proximity bands, nearest first. Clients only ever see these coarse
// buckets, never a raw distance to another person.
const (
	Band0to100    = "0-100"
	Band100to250  = "100-250"
	Band250to500  = "250-500"
	Band500to1000 = "500-1000"
	BandBeyond1km = ">1000"
)

// ProximityBand maps a distance in meters to a band. Upper bounds are
// inclusive: 100m is still "0-100". A negative distance is a caller error.
func ProximityBand(distanceMeters float64) (string, error) {
	if distanceMeters < 0 {
		return "", fmt.Errorf("proximity band: negative distance %f", distanceMeters)
	}
	switch {
	case distanceMeters <= 100:
		return Band0to100, nil
	case distanceMeters <= 250:
		return Band100to250, nil
	case distanceMeters <= 500:
		return Band250to500, nil
	case distanceMeters <= 1000:
		return Band500to1000, nil
	default:
		return BandBeyond1km, nil
	}
}

var bandLabels = map[string]string{
	Band0to100:    "in this building",
	Band100to250:  "a short walk away",
	Band250to500:  "a few blocks away",
	Band500to1000: "about ten minutes away",
	BandBeyond1km: "further away",
}

// BandLabel returns the fixed human-readable label for a band.
func BandLabel(band string) string {
	if label, ok := bandLabels[band]; ok {
		return label
	}
	return bandLabels[BandBeyond1km]
}

var bandScores = map[string]float64{
	Band0to100:    1.0,
	Band100to250:  0.8,
	Band250to500:  0.6,
	Band500to1000: 0.4,
	BandBeyond1km: 0.2,
}

// BandScore returns the ranking weight for a band, 1.0 for nearest down to
// 0.2. Unknown bands score as farthest.
func BandScore(band string) float64 {
	if score, ok := bandScores[band]; ok {
		return score
	}
	return 0.2
}
