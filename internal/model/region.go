package model

// Region is the user's area of interest. Exactly one region is active at a
// time; a nil Region means unbounded (all fetched routes are in scope).
// The concrete types below are the only implementations.
type Region interface {
	isRegion()
}

// CircleRegion is a radius search around a center point.
type CircleRegion struct {
	Center      LatLng  `json:"center"`
	RadiusMiles float64 `json:"radius_miles"`
}

func (CircleRegion) isRegion() {}

// PolygonRegion is a user-drawn polygon of at least three vertices.
type PolygonRegion struct {
	Vertices []LatLng `json:"vertices"`
}

func (PolygonRegion) isRegion() {}

// ActiveRegion resolves the single active region from the (at most one each)
// polygon and circle a session holds. A drawn polygon always overrides a
// radius circle; with neither present the region is unbounded (nil).
func ActiveRegion(polygon *PolygonRegion, circle *CircleRegion) Region {
	if polygon != nil {
		return *polygon
	}
	if circle != nil {
		return *circle
	}
	return nil
}
