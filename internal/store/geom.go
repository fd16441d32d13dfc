package store

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/sells-group/eddm-planner/internal/model"
)

// EncodeRings converts a route's rings to EWKB bytes with SRID 4326.
// Each ring becomes the outer ring of its own polygon inside a
// MultiPolygon; the EDDM API returns rings unnested, so hole semantics
// never apply. Returns nil, nil when there is no geometry.
func EncodeRings(rings [][]model.LatLng) ([]byte, error) {
	if len(rings) == 0 {
		return nil, nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for _, ring := range rings {
		if len(ring) == 0 {
			continue
		}
		flat := make([]float64, 0, (len(ring)+1)*2)
		for _, p := range ring {
			flat = append(flat, p.Lng, p.Lat)
		}
		// EWKB linear rings must be closed.
		first, last := ring[0], ring[len(ring)-1]
		if first != last {
			flat = append(flat, first.Lng, first.Lat)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			return nil, eris.Wrap(err, "store: build polygon ring")
		}
		if err := mp.Push(poly); err != nil {
			return nil, eris.Wrap(err, "store: build multipolygon")
		}
	}
	if mp.NumPolygons() == 0 {
		return nil, nil
	}

	data, err := ewkb.Marshal(mp, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "store: encode geometry")
	}
	return data, nil
}

// DecodeRings converts EWKB bytes back into rings, dropping the closing
// coordinate EncodeRings added. Nil or empty input decodes to nil.
func DecodeRings(data []byte) ([][]model.LatLng, error) {
	if len(data) == 0 {
		return nil, nil
	}

	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, eris.Wrap(err, "store: decode geometry")
	}
	mp, ok := g.(*geom.MultiPolygon)
	if !ok {
		return nil, eris.Errorf("store: expected multipolygon geometry, got %T", g)
	}

	rings := make([][]model.LatLng, 0, mp.NumPolygons())
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		if poly.NumLinearRings() == 0 {
			continue
		}
		coords := poly.LinearRing(0).Coords()
		if len(coords) > 1 && coords[0].Equal(geom.XY, coords[len(coords)-1]) {
			coords = coords[:len(coords)-1]
		}
		ring := make([]model.LatLng, 0, len(coords))
		for _, c := range coords {
			ring = append(ring, model.LatLng{Lat: c[1], Lng: c[0]})
		}
		rings = append(rings, ring)
	}
	return rings, nil
}
