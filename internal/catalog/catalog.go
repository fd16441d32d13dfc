// Package catalog accumulates carrier routes fetched per ZIP into a single
// deduplicated collection keyed by route ID.
package catalog

import (
	"sort"
	"sync"

	"github.com/sells-group/eddm-planner/internal/model"
)

// Catalog is the accumulated mapping from route ID to Route, spanning many
// ZIP fetches. Merge is the only mutation entry point; merges for different
// ZIPs commute, so concurrent per-ZIP fetches may land in any order.
type Catalog struct {
	mu     sync.RWMutex
	routes map[string]model.Route
}

// New creates an empty Catalog.
func New() *Catalog {
	return &Catalog{routes: make(map[string]model.Route)}
}

// Merge atomically removes all existing entries for the given ZIP and
// inserts the new batch. Entries merged under other ZIPs are untouched, so
// a partial multi-ZIP fetch still leaves the successful ZIPs in place.
func (c *Catalog) Merge(zip string, routes []model.Route) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, r := range c.routes {
		if r.ZIPCode == zip {
			delete(c.routes, id)
		}
	}
	for _, r := range routes {
		c.routes[r.ID] = r
	}
}

// All returns a snapshot of the catalog sorted by route ID. Callers must not
// rely on the ordering beyond its determinism.
func (c *Catalog) All() []model.Route {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Route, 0, len(c.routes))
	for _, r := range c.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the route with the given ID, if present.
func (c *Catalog) Get(id string) (model.Route, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.routes[id]
	return r, ok
}

// Len returns the number of routes currently in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.routes)
}

// ZIPs returns the sorted distinct ZIP codes present in the catalog.
func (c *Catalog) ZIPs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	for _, r := range c.routes {
		seen[r.ZIPCode] = true
	}
	out := make([]string, 0, len(seen))
	for z := range seen {
		out = append(out, z)
	}
	sort.Strings(out)
	return out
}
