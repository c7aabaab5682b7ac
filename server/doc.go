// Package server exposes a running simulation over HTTP.
//
// Endpoints:
//
//	GET    /api/health
//	GET    /api/routes, /api/routes/{id}
//	GET    /api/vehicles, /api/vehicles/{id}
//	POST   /api/vehicles           start a vehicle (404 unknown route, 409 duplicate id)
//	DELETE /api/vehicles/{id}      cancel, always 204
//	POST   /api/pause, /api/resume
//	GET    /api/siri/vehicle-monitoring.json|.xml   ?LineRef=&VehicleRef=&MaximumVehicles=
//	GET    /api/gtfsrt/vehicle-positions.pb
//	GET    /ws?vehicle=<id|*>      live snapshot stream
//
// Feed responses are rendered once per engine revision and served from cache
// until the next tick, start or cancel.
package server
