// Package geomath provides pure spherical-distance and containment math on
// WGS-84 coordinates. Distances use the Haversine formula with a fixed Earth
// radius in miles. None of these functions are antimeridian-safe; planning
// areas are assumed to stay well inside the continental US.
package geomath

import (
	"math"

	"github.com/sells-group/eddm-planner/internal/model"
)

// EarthRadiusMiles is the mean radius of Earth in statute miles.
const EarthRadiusMiles = 3959.0

// DistanceMiles returns the great-circle distance between two points in
// miles via the Haversine formula. Symmetric and non-negative.
func DistanceMiles(a, b model.LatLng) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*sinLng*sinLng

	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(h))
}

// DestinationPoint returns the point reached by travelling distanceMiles
// along bearingDegrees (0 = north, clockwise) from origin, using the
// standard spherical direct formula.
func DestinationPoint(origin model.LatLng, distanceMiles, bearingDegrees float64) model.LatLng {
	d := distanceMiles / EarthRadiusMiles
	brng := radians(bearingDegrees)
	lat1 := radians(origin.Lat)
	lng1 := radians(origin.Lng)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) +
		math.Cos(lat1)*math.Sin(d)*math.Cos(brng))
	lng2 := lng1 + math.Atan2(
		math.Sin(brng)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2),
	)

	return model.LatLng{Lat: degrees(lat2), Lng: degrees(lng2)}
}

// PointInPolygon reports whether the point lies inside the ring using the
// ray-casting parity test. Boundary points are implementation-defined.
// Rings with fewer than three vertices contain nothing.
func PointInPolygon(p model.LatLng, ring []model.LatLng) bool {
	if len(ring) < 3 {
		return false
	}

	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		vi, vj := ring[i], ring[j]
		if (vi.Lng > p.Lng) != (vj.Lng > p.Lng) &&
			p.Lat < (vj.Lat-vi.Lat)*(p.Lng-vi.Lng)/(vj.Lng-vi.Lng)+vi.Lat {
			inside = !inside
		}
		j = i
	}
	return inside
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
