package scope

import (
	"fmt"

	"github.com/sells-group/eddm-planner/internal/catalog"
	"github.com/sells-group/eddm-planner/internal/model"
)

// InScope returns the routes from the catalog that pass the delivery-type
// filter and fall inside the active region. A polygon region replaces circle
// filtering entirely; a nil region keeps everything that passes the delivery
// filter. Output order follows the catalog's deterministic ordering.
func InScope(c *catalog.Catalog, region model.Region, dt model.DeliveryType) []model.Route {
	var out []model.Route
	for _, r := range c.All() {
		if !matchesDelivery(r, dt) {
			continue
		}
		if !inRegion(r, region) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesDelivery(r model.Route, dt model.DeliveryType) bool {
	switch dt {
	case model.DeliveryResidential:
		return r.ResidentialCount > 0
	case model.DeliveryBusiness:
		return r.BusinessCount > 0
	default:
		return true
	}
}

func inRegion(r model.Route, region model.Region) bool {
	switch reg := region.(type) {
	case nil:
		return true
	case model.PolygonRegion:
		return IntersectsPolygon(r, reg.Vertices)
	case model.CircleRegion:
		return IntersectsCircle(r, reg.Center, reg.RadiusMiles)
	default:
		// Region is a sealed union; any other type is a programmer error.
		panic(fmt.Sprintf("scope: unknown region type %T", region))
	}
}

// PruneSelection drops IDs no longer present in the in-scope set, preserving
// the relative order of the rest. Pruning against an unchanged set is a
// no-op, and pruning is idempotent.
func PruneSelection(sel model.Selection, inScope []model.Route) model.Selection {
	ids := make(map[string]bool, len(inScope))
	for _, r := range inScope {
		ids[r.ID] = true
	}

	out := make(model.Selection, 0, len(sel))
	for _, id := range sel {
		if ids[id] {
			out = append(out, id)
		}
	}
	return out
}

// TotalAddressCount sums the delivery-type-relevant address counts across
// the given routes.
func TotalAddressCount(routes []model.Route, dt model.DeliveryType) int {
	total := 0
	for _, r := range routes {
		total += r.CountFor(dt)
	}
	return total
}
