package sim

import (
	"time"

	"github.com/theoremus-urban-solutions/routesim/route"
)

// Snapshot is the published, point-in-time state of one vehicle
type Snapshot struct {
	VehicleID     string         `json:"vehicleId"`
	RouteID       string         `json:"routeId"`
	Position      route.Waypoint `json:"position"`
	Progress      float64        `json:"progress"`
	SpeedEstimate float64        `json:"speedEstimate"`
	Bearing       float64        `json:"bearing"`
	Status        Status         `json:"status"`
	Label         string         `json:"label"`
	Metadata      Metadata       `json:"metadata"`
	TickTimestamp time.Time      `json:"tickTimestamp"`
	Tick          int64          `json:"tick"`
}
