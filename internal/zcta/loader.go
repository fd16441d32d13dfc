// Package zcta loads ZIP Code Tabulation Area boundaries from Census
// TIGER/Line shapefiles. Boundaries back the select-by-ZIP-outline region
// mode and the demographics join.
package zcta

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/eddm-planner/internal/model"
)

const zctaField = "zcta5ce20"

// Boundary is one ZCTA polygon with its rings in lat/lng order.
type Boundary struct {
	ZCTA  string
	Rings [][]model.LatLng
}

// Region returns the boundary's largest ring as a drawn-polygon region.
// ZCTAs with islands get the main outline, which is what a planner means
// by "the ZIP's shape".
func (b Boundary) Region() model.PolygonRegion {
	var largest []model.LatLng
	for _, ring := range b.Rings {
		if len(ring) > len(largest) {
			largest = ring
		}
	}
	return model.PolygonRegion{Vertices: largest}
}

// Route converts the boundary to a ZCTA-derived route for areas where the
// carrier-route API has no coverage. Address counts are unknown upstream and
// stay zero until demographics enrichment fills what it can.
func (b Boundary) Route(demo *model.Demographics) model.Route {
	return model.NewRoute("ZCTA-"+b.ZCTA, b.ZCTA, b.Rings, 0, 0, demo)
}

// Load reads all ZCTA boundaries from a shapefile.
func Load(shpPath string) ([]Boundary, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "zcta: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}
	idx, ok := fieldIdx[zctaField]
	if !ok {
		return nil, eris.Errorf("zcta: shapefile %s has no %s field", shpPath, strings.ToUpper(zctaField))
	}

	var boundaries []Boundary
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}

		code := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
		rings := polygonRings(poly)
		if code == "" || len(rings) == 0 {
			skipped++
			continue
		}
		boundaries = append(boundaries, Boundary{ZCTA: code, Rings: rings})
	}

	if skipped > 0 {
		zap.L().Debug("zcta: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}
	return boundaries, nil
}

// Find returns the boundary for one ZCTA code.
func Find(boundaries []Boundary, zcta string) (Boundary, bool) {
	for _, b := range boundaries {
		if b.ZCTA == zcta {
			return b, true
		}
	}
	return Boundary{}, false
}

// polygonRings converts a shapefile polygon's parts to rings, dropping the
// closing coordinate shapefiles repeat.
func polygonRings(p *shp.Polygon) [][]model.LatLng {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	rings := make([][]model.LatLng, 0, p.NumParts)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 3 {
			continue
		}

		pts := p.Points[start:end]
		if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		ring := make([]model.LatLng, 0, len(pts))
		for _, pt := range pts {
			ring = append(ring, model.LatLng{Lat: pt.Y, Lng: pt.X})
		}
		rings = append(rings, ring)
	}
	if len(rings) == 0 {
		return nil
	}
	return rings
}
