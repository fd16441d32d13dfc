package geomath

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/eddm-planner/internal/model"
)

var (
	lakeland = model.LatLng{Lat: 28.0395, Lng: -81.9498}
	tampa    = model.LatLng{Lat: 27.9506, Lng: -82.4572}
)

func TestDistanceMiles_KnownPair(t *testing.T) {
	// Lakeland to Tampa is roughly 31.6 miles great-circle.
	d := DistanceMiles(lakeland, tampa)
	assert.InDelta(t, 31.6, d, 0.5)
}

func TestDistanceMiles_Symmetry(t *testing.T) {
	pairs := []struct{ a, b model.LatLng }{
		{lakeland, tampa},
		{model.LatLng{Lat: 0, Lng: 0}, model.LatLng{Lat: 10, Lng: 10}},
		{model.LatLng{Lat: 40.7128, Lng: -74.006}, model.LatLng{Lat: 34.0522, Lng: -118.2437}},
		{model.LatLng{Lat: -33.8688, Lng: 151.2093}, model.LatLng{Lat: 51.5074, Lng: -0.1278}},
	}
	for _, p := range pairs {
		assert.InDelta(t, DistanceMiles(p.a, p.b), DistanceMiles(p.b, p.a), 1e-9)
	}
}

func TestDistanceMiles_ZeroForSamePoint(t *testing.T) {
	assert.InDelta(t, 0, DistanceMiles(lakeland, lakeland), 1e-9)
}

func TestDestinationPoint_RoundTrip(t *testing.T) {
	tests := []struct {
		distance float64
		bearing  float64
	}{
		{1, 0},
		{5, 45},
		{5, 90},
		{12.5, 180},
		{50, 270},
		{100, 315},
		{0, 123},
	}
	for _, tt := range tests {
		dest := DestinationPoint(lakeland, tt.distance, tt.bearing)
		got := DistanceMiles(lakeland, dest)
		assert.InDelta(t, tt.distance, got, 1e-6,
			"distance %.1f bearing %.0f", tt.distance, tt.bearing)
	}
}

func TestDestinationPoint_NorthIncreasesLat(t *testing.T) {
	dest := DestinationPoint(lakeland, 10, 0)
	assert.Greater(t, dest.Lat, lakeland.Lat)
	assert.InDelta(t, lakeland.Lng, dest.Lng, 1e-6)
}

func TestPointInPolygon_Square(t *testing.T) {
	square := []model.LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 10}, {Lat: 10, Lng: 10}, {Lat: 10, Lng: 0}}

	assert.True(t, PointInPolygon(model.LatLng{Lat: 5, Lng: 5}, square))
	assert.False(t, PointInPolygon(model.LatLng{Lat: 15, Lng: 15}, square))
	assert.False(t, PointInPolygon(model.LatLng{Lat: -1, Lng: 5}, square))
}

func TestPointInPolygon_Degenerate(t *testing.T) {
	two := []model.LatLng{{Lat: 0, Lng: 0}, {Lat: 10, Lng: 10}}
	assert.False(t, PointInPolygon(model.LatLng{Lat: 5, Lng: 5}, two))
	assert.False(t, PointInPolygon(model.LatLng{Lat: 5, Lng: 5}, nil))
	assert.False(t, PointInPolygon(model.LatLng{Lat: 5, Lng: 5}, []model.LatLng{{Lat: 1, Lng: 1}}))
}

func TestPointInPolygon_Concave(t *testing.T) {
	// A "U" shape; the notch between the arms is outside.
	u := []model.LatLng{
		{Lat: 0, Lng: 0}, {Lat: 10, Lng: 0}, {Lat: 10, Lng: 3}, {Lat: 3, Lng: 3}, {Lat: 3, Lng: 7}, {Lat: 10, Lng: 7}, {Lat: 10, Lng: 10}, {Lat: 0, Lng: 10},
	}
	assert.True(t, PointInPolygon(model.LatLng{Lat: 1, Lng: 5}, u))
	assert.False(t, PointInPolygon(model.LatLng{Lat: 8, Lng: 5}, u))
}
