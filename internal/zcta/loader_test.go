package zcta

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/eddm-planner/internal/model"
)

func TestPolygonRings_SinglePart(t *testing.T) {
	poly := &shp.Polygon{
		NumParts: 1,
		Parts:    []int32{0},
		Points: []shp.Point{
			{X: -82.0, Y: 28.0},
			{X: -82.0, Y: 28.1},
			{X: -81.9, Y: 28.1},
			{X: -81.9, Y: 28.0},
			{X: -82.0, Y: 28.0}, // closed ring
		},
	}

	rings := polygonRings(poly)
	require.Len(t, rings, 1)
	// Closing coordinate dropped, X/Y mapped to Lng/Lat.
	require.Len(t, rings[0], 4)
	assert.Equal(t, model.LatLng{Lat: 28.0, Lng: -82.0}, rings[0][0])
	assert.Equal(t, model.LatLng{Lat: 28.0, Lng: -81.9}, rings[0][3])
}

func TestPolygonRings_MultiPart(t *testing.T) {
	poly := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 5},
		Points: []shp.Point{
			// mainland
			{X: -82.0, Y: 28.0},
			{X: -82.0, Y: 28.1},
			{X: -81.9, Y: 28.1},
			{X: -81.9, Y: 28.0},
			{X: -82.0, Y: 28.0},
			// island
			{X: -81.5, Y: 27.9},
			{X: -81.5, Y: 27.95},
			{X: -81.45, Y: 27.95},
			{X: -81.5, Y: 27.9},
		},
	}

	rings := polygonRings(poly)
	require.Len(t, rings, 2)
	assert.Len(t, rings[0], 4)
	assert.Len(t, rings[1], 3)
}

func TestPolygonRings_Degenerate(t *testing.T) {
	assert.Nil(t, polygonRings(nil))
	assert.Nil(t, polygonRings(&shp.Polygon{}))

	// A two-point part is not a ring.
	assert.Nil(t, polygonRings(&shp.Polygon{
		NumParts: 1,
		Parts:    []int32{0},
		Points:   []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
	}))
}

func TestBoundaryRegion_LargestRing(t *testing.T) {
	b := Boundary{
		ZCTA: "33815",
		Rings: [][]model.LatLng{
			{{Lat: 27.9, Lng: -81.5}, {Lat: 27.95, Lng: -81.5}, {Lat: 27.95, Lng: -81.45}},
			{
				{Lat: 28.0, Lng: -82.0}, {Lat: 28.1, Lng: -82.0},
				{Lat: 28.1, Lng: -81.9}, {Lat: 28.0, Lng: -81.9},
			},
		},
	}

	region := b.Region()
	assert.Len(t, region.Vertices, 4)
	assert.Equal(t, model.LatLng{Lat: 28.0, Lng: -82.0}, region.Vertices[0])
}

func TestFind(t *testing.T) {
	boundaries := []Boundary{
		{ZCTA: "33815"},
		{ZCTA: "33803"},
	}

	b, ok := Find(boundaries, "33803")
	require.True(t, ok)
	assert.Equal(t, "33803", b.ZCTA)

	_, ok = Find(boundaries, "99999")
	assert.False(t, ok)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir() + "/nope.shp")
	assert.Error(t, err)
}
