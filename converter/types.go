package converter

import "time"

// ConverterOptions contains all configuration needed for snapshot to SIRI conversion.
type ConverterOptions struct {
	// AgencyID is the codespace used in SIRI references like {agency}:Line:{route_id}
	AgencyID string

	// ValidFor is added to the record time to produce ValidUntil timestamps,
	// normally the tick interval.
	ValidFor time.Duration

	// VehicleMode is reported for every vehicle. Defaults to "bus".
	VehicleMode string
}

// OccupancyLevel is a coarse load bucket shared by the SIRI and GTFS-RT encoders
type OccupancyLevel int

const (
	OccupancyNoData OccupancyLevel = iota
	OccupancyEmpty
	OccupancyManySeats
	OccupancyFewSeats
	OccupancyStandingRoom
	OccupancyCrushedStanding
	OccupancyFull
)
