package sim

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/routesim/route"
)

// Status is the lifecycle state of a vehicle
type Status int

const (
	Scheduled Status = iota
	Moving
	Stopped
	Completed
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case Moving:
		return "moving"
	case Stopped:
		return "stopped"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool { return s == Completed || s == Cancelled }

func (s Status) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// Mode selects what happens when a vehicle reaches the end of its route
type Mode int

const (
	Loop Mode = iota
	OneShot
)

func (m Mode) String() string {
	if m == OneShot {
		return "oneshot"
	}
	return "loop"
}

func (m Mode) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

// ParseMode accepts "loop" (also the empty string) and "oneshot", the same
// spellings the config and HTTP validators allow.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "loop":
		return Loop, nil
	case "oneshot":
		return OneShot, nil
	}
	return Loop, fmt.Errorf("unknown mode %q", s)
}

// Metadata is supplied by the trip backend when a vehicle starts
type Metadata struct {
	DriverName string `json:"driverName,omitempty"`
	Passengers int    `json:"passengers"`
	Capacity   int    `json:"capacity"`
}

// VehicleState is the mutable record of one simulated vehicle.
// It is owned by the Engine and only touched while the engine lock is held.
type VehicleState struct {
	ID            string
	RouteID       string
	Progress      float64
	SpeedEstimate float64 // km/h, display only
	Bearing       float64
	Status        Status
	Mode          Mode
	Position      route.Waypoint
	Label         string
	Metadata      Metadata
	DepartAt      time.Time
	Ticks         int64

	route *route.Route
	rng   RNG
}

// refresh recomputes everything derived from progress.
func (v *VehicleState) refresh() {
	v.Position = Interpolate(v.route, v.Progress)
	v.Label = ResolveLabel(v.route, v.Progress)
	v.Bearing = BearingAt(v.route, v.Progress)
}

func (v *VehicleState) snapshot(ts time.Time, tick int64) Snapshot {
	return Snapshot{
		VehicleID:     v.ID,
		RouteID:       v.RouteID,
		Position:      v.Position,
		Progress:      v.Progress,
		SpeedEstimate: v.SpeedEstimate,
		Bearing:       v.Bearing,
		Status:        v.Status,
		Label:         v.Label,
		Metadata:      v.Metadata,
		TickTimestamp: ts,
		Tick:          tick,
	}
}
