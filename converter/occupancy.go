package converter

import "github.com/theoremus-urban-solutions/routesim/sim"

// OccupancyFor buckets passengers/capacity. Without a capacity there is no data.
func OccupancyFor(m sim.Metadata) OccupancyLevel {
	if m.Capacity <= 0 || m.Passengers < 0 {
		return OccupancyNoData
	}
	if m.Passengers == 0 {
		return OccupancyEmpty
	}
	ratio := float64(m.Passengers) / float64(m.Capacity)
	switch {
	case ratio < 0.5:
		return OccupancyManySeats
	case ratio < 0.8:
		return OccupancyFewSeats
	case ratio < 0.95:
		return OccupancyStandingRoom
	case ratio < 1:
		return OccupancyCrushedStanding
	default:
		return OccupancyFull
	}
}

// SiriOccupancy maps an occupancy level to the SIRI Occupancy value
func SiriOccupancy(level OccupancyLevel) string {
	switch level {
	case OccupancyEmpty, OccupancyManySeats:
		return "manySeatsAvailable"
	case OccupancyFewSeats:
		return "seatsAvailable"
	case OccupancyStandingRoom, OccupancyCrushedStanding:
		return "standingAvailable"
	case OccupancyFull:
		return "full"
	default:
		return "unknown"
	}
}
