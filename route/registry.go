package route

import (
	"errors"
	"fmt"
	"sort"
)

// ErrRouteNotFound is returned for ids missing from the catalog
var ErrRouteNotFound = errors.New("route not found")

// Registry is the read-only route catalog
type Registry struct {
	routes map[string]*Route
	ids    []string
}

// NewRegistry builds a registry from routes. Duplicate ids are rejected.
func NewRegistry(routes ...*Route) (*Registry, error) {
	reg := &Registry{routes: make(map[string]*Route, len(routes))}
	for _, r := range routes {
		if r == nil {
			continue
		}
		if _, dup := reg.routes[r.ID]; dup {
			return nil, fmt.Errorf("duplicate route id %q", r.ID)
		}
		if len(r.segmentKM) != r.SegmentCount() {
			r.prepare()
		}
		reg.routes[r.ID] = r
		reg.ids = append(reg.ids, r.ID)
	}
	sort.Strings(reg.ids)
	return reg, nil
}

// GetRoute returns the route with the given id or ErrRouteNotFound.
func (reg *Registry) GetRoute(id string) (*Route, error) {
	r, ok := reg.routes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, id)
	}
	return r, nil
}

// Routes returns all routes ordered by id.
func (reg *Registry) Routes() []*Route {
	out := make([]*Route, 0, len(reg.ids))
	for _, id := range reg.ids {
		out = append(out, reg.routes[id])
	}
	return out
}

// Len returns the number of routes in the catalog.
func (reg *Registry) Len() int { return len(reg.ids) }
