/*
Package route provides the immutable route catalog.

A route is an ordered list of waypoints plus the data the simulation needs to
animate vehicles along it: a speed profile (a base multiplier and segment-range
overrides) and the location labels shown to riders.

# Basic Usage

	reg, err := route.LoadCatalogFile("routes.yml")
	if err != nil {
	    log.Fatal(err)
	}
	r, err := reg.GetRoute("danang-hue")
	if errors.Is(err, route.ErrRouteNotFound) {
	    // unknown id
	}

# Catalog format

	routes:
	  - id: danang-hue
	    name: Da Nang - Hue
	    color: "#0ea5e9"
	    waypoints: [[16.0544, 108.2022], [16.2014, 108.1206]]
	    speedProfile:
	      base: 1.0
	      segmentOverrides:
	        - {from: 1, to: 2, multiplier: 0.4}
	    locationLabels: [Da Nang, Hai Van Pass]

Routes with zero or one waypoint are accepted; consumers decide how to treat them.

# Thread safety

The registry and its routes are never mutated after loading and are safe for
concurrent reads without locking.
*/
package route
