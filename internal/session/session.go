// Package session owns the mutable state of one planning flow: the route
// catalog, the active region, the delivery-type filter, and the selection.
// There are no package-level singletons; callers create and pass a Session.
// A Session is intended for a single logical user flow and is not safe for
// concurrent mutation by multiple callers (the catalog it owns is safe for
// concurrent per-ZIP merges, which is the only concurrency that occurs in
// practice).
package session

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/eddm-planner/internal/catalog"
	"github.com/sells-group/eddm-planner/internal/model"
	"github.com/sells-group/eddm-planner/internal/scope"
)

// Session holds one planning flow's state.
type Session struct {
	ID      string
	Catalog *catalog.Catalog

	selection    model.Selection
	polygon      *model.PolygonRegion
	circle       *model.CircleRegion
	deliveryType model.DeliveryType
}

// New creates an empty session with the "all" delivery filter.
func New() *Session {
	return &Session{
		ID:           uuid.New().String(),
		Catalog:      catalog.New(),
		deliveryType: model.DeliveryAll,
	}
}

// Region returns the active region, honoring polygon-over-circle precedence.
func (s *Session) Region() model.Region {
	return model.ActiveRegion(s.polygon, s.circle)
}

// DeliveryType returns the active delivery-type filter.
func (s *Session) DeliveryType() model.DeliveryType {
	return s.deliveryType
}

// Selection returns a copy of the current selection.
func (s *Session) Selection() model.Selection {
	out := make(model.Selection, len(s.selection))
	copy(out, s.selection)
	return out
}

// SetCircle activates a radius region and prunes the selection.
func (s *Session) SetCircle(center model.LatLng, radiusMiles float64) error {
	if radiusMiles <= 0 {
		return eris.Errorf("session: radius must be positive, got %v", radiusMiles)
	}
	s.circle = &model.CircleRegion{Center: center, RadiusMiles: radiusMiles}
	s.prune()
	return nil
}

// ClearCircle removes the radius region and prunes the selection.
func (s *Session) ClearCircle() {
	s.circle = nil
	s.prune()
}

// SetPolygon activates a drawn-polygon region (which overrides any circle)
// and prunes the selection.
func (s *Session) SetPolygon(vertices []model.LatLng) error {
	if len(vertices) < 3 {
		return eris.Errorf("session: polygon needs at least 3 vertices, got %d", len(vertices))
	}
	s.polygon = &model.PolygonRegion{Vertices: vertices}
	s.prune()
	return nil
}

// ClearPolygon removes the drawn polygon; a previously set circle becomes
// active again.
func (s *Session) ClearPolygon() {
	s.polygon = nil
	s.prune()
}

// SetDeliveryType changes the delivery filter and prunes the selection.
func (s *Session) SetDeliveryType(dt model.DeliveryType) {
	s.deliveryType = dt
	s.prune()
}

// MergeRoutes merges one ZIP's fetched routes into the catalog and prunes
// the selection against the new in-scope set.
func (s *Session) MergeRoutes(zip string, routes []model.Route) {
	s.Catalog.Merge(zip, routes)
	s.prune()
}

// InScope returns the routes passing the active region and delivery filter.
func (s *Session) InScope() []model.Route {
	return scope.InScope(s.Catalog, s.Region(), s.deliveryType)
}

// Toggle flips a route in or out of the selection. Only in-scope routes may
// be selected.
func (s *Session) Toggle(id string) error {
	if s.selection.Contains(id) {
		s.selection = s.selection.Toggle(id)
		return nil
	}
	for _, r := range s.InScope() {
		if r.ID == id {
			s.selection = s.selection.Toggle(id)
			return nil
		}
	}
	return eris.Errorf("session: route %s is not in scope", id)
}

// SelectAll selects every in-scope route, replacing the current selection.
func (s *Session) SelectAll() {
	inScope := s.InScope()
	s.selection = make(model.Selection, 0, len(inScope))
	for _, r := range inScope {
		s.selection = append(s.selection, r.ID)
	}
}

// SetSelection replaces the selection, dropping any out-of-scope IDs.
func (s *Session) SetSelection(sel model.Selection) {
	s.selection = scope.PruneSelection(sel, s.InScope())
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	s.selection = nil
}

// SelectedRoutes resolves the selection to routes, in selection order.
func (s *Session) SelectedRoutes() []model.Route {
	out := make([]model.Route, 0, len(s.selection))
	for _, id := range s.selection {
		if r, ok := s.Catalog.Get(id); ok {
			out = append(out, r)
		}
	}
	return out
}

// SelectedAddressCount sums the selection's address counts under the active
// delivery filter.
func (s *Session) SelectedAddressCount() int {
	return scope.TotalAddressCount(s.SelectedRoutes(), s.deliveryType)
}

func (s *Session) prune() {
	s.selection = scope.PruneSelection(s.selection, s.InScope())
}
