// Package scope decides which routes fall inside the active region and
// delivery-type filter, and maintains the selection against that set.
//
// The intersection tests are deliberate heuristics, not exact computational
// geometry: circles are tested by vertex sampling plus a centroid slack, and
// polygons by coarse two-way containment. Large thin polygons that cross a
// region boundary without a vertex or centroid inside can be missed; that
// false-negative risk is accepted and tuned for.
package scope

import (
	"github.com/sells-group/eddm-planner/internal/geomath"
	"github.com/sells-group/eddm-planner/internal/model"
)

// centroidSlack widens the circle test for routes whose geometry surrounds
// the circle without any vertex falling inside it.
const centroidSlack = 1.2

// IntersectsCircle reports whether the route intersects a circle of
// radiusMiles around center. True if any vertex of any ring is within the
// radius, or if the route centroid is within radius times the slack factor.
// Routes with no geometry never intersect.
func IntersectsCircle(r model.Route, center model.LatLng, radiusMiles float64) bool {
	if radiusMiles <= 0 || !hasGeometry(r) {
		return false
	}

	for _, ring := range r.Coordinates {
		for _, pt := range ring {
			if geomath.DistanceMiles(center, pt) <= radiusMiles {
				return true
			}
		}
	}

	return geomath.DistanceMiles(center, r.Centroid) <= radiusMiles*centroidSlack
}

// IntersectsPolygon reports whether the route intersects the drawn polygon.
// True if the route centroid lies inside the polygon, or if any polygon
// vertex lies inside any of the route's rings. Degenerate input (fewer than
// three polygon vertices, or a route with no points) never intersects.
func IntersectsPolygon(r model.Route, vertices []model.LatLng) bool {
	if len(vertices) < 3 || !hasGeometry(r) {
		return false
	}

	if geomath.PointInPolygon(r.Centroid, vertices) {
		return true
	}

	for _, ring := range r.Coordinates {
		for _, v := range vertices {
			if geomath.PointInPolygon(v, ring) {
				return true
			}
		}
	}
	return false
}

func hasGeometry(r model.Route) bool {
	for _, ring := range r.Coordinates {
		if len(ring) > 0 {
			return true
		}
	}
	return false
}
