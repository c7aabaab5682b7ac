package sim

import (
	"math"

	"github.com/theoremus-urban-solutions/routesim/route"
)

// InTransitLabel is used when a route has no location labels
const InTransitLabel = "In transit"

// ResolveLabel maps progress proportionally onto the route's label list.
func ResolveLabel(r *route.Route, progress float64) string {
	n := len(r.LocationLabels)
	if n == 0 {
		return InTransitLabel
	}
	p, _ := clampUnit(progress)
	idx := int(math.Floor(p * float64(n)))
	if idx > n-1 {
		idx = n - 1
	}
	return r.LocationLabels[idx]
}
