package converter

import (
	"math"
	"time"

	"github.com/theoremus-urban-solutions/routesim/route"
	"github.com/theoremus-urban-solutions/routesim/sim"
	"github.com/theoremus-urban-solutions/routesim/siri"
	"github.com/theoremus-urban-solutions/routesim/utils"
)

func (c *Converter) buildActivity(s sim.Snapshot, now time.Time) siri.VehicleActivityEntry {
	recorded := s.TickTimestamp
	if recorded.IsZero() {
		recorded = now
	}
	r, _ := c.Routes.GetRoute(s.RouteID)

	entry := siri.VehicleActivityEntry{
		RecordedAtTime:          utils.Iso8601(recorded),
		ValidUntilTime:          utils.ValidUntilFrom(recorded, c.Opts.ValidFor),
		MonitoredVehicleJourney: c.buildMVJ(s, r, recorded),
		Extensions: &siri.ActivityExtensions{
			LocationLabel: s.Label,
			DriverName:    s.Metadata.DriverName,
			Tick:          s.Tick,
		},
	}
	if r != nil {
		entry.ProgressBetweenStops = &siri.ProgressBetweenStops{
			LinkDistance: math.Round(r.LengthKM() * 1000),
			Percentage:   math.Round(s.Progress*10000) / 100,
		}
	}
	return entry
}

func (c *Converter) buildMVJ(s sim.Snapshot, r *route.Route, recorded time.Time) siri.MonitoredVehicleJourney {
	agency := c.Opts.AgencyID

	// LineRef format: {codespace}:Line:{lineid}
	lineRef := s.RouteID
	if agency != "" {
		lineRef = agency + ":Line:" + s.RouteID
	}
	// VehicleRef format: {codespace}:VehicleRef:{vehicle_id}
	vehRef := s.VehicleID
	if agency != "" {
		vehRef = agency + ":VehicleRef:" + s.VehicleID
	}
	datedRef := s.RouteID + "-" + s.VehicleID
	if agency != "" {
		datedRef = agency + ":ServiceJourney:" + datedRef
	}

	published, origin, dest := s.RouteID, "", ""
	if r != nil {
		if r.Name != "" {
			published = r.Name
		}
		if n := len(r.LocationLabels); n > 0 {
			origin, dest = r.LocationLabels[0], r.LocationLabels[n-1]
		}
	}

	bearing := math.Round(s.Bearing*100) / 100
	velocity := int(math.Round(s.SpeedEstimate))
	inCongestion := s.Status == sim.Stopped

	return siri.MonitoredVehicleJourney{
		LineRef: lineRef,
		FramedVehicleJourneyRef: &siri.FramedVehicleJourneyRef{
			DataFrameRef:           utils.Iso8601Date(recorded),
			DatedVehicleJourneyRef: datedRef,
		},
		VehicleMode:            c.Opts.VehicleMode,
		PublishedLineName:      published,
		OperatorRef:            agency,
		OriginName:             origin,
		DestinationName:        dest,
		Monitored:              true,
		DataSource:             agency,
		VehicleLocation:        &siri.VehicleLocation{Latitude: s.Position.Lat, Longitude: s.Position.Lng},
		Bearing:                &bearing,
		Velocity:               &velocity,
		Occupancy:              SiriOccupancy(OccupancyFor(s.Metadata)),
		Delay:                  "PT0S", // simulated vehicles keep their own schedule
		InCongestion:           &inCongestion,
		VehicleStatus:          vehicleStatus(s.Status),
		VehicleRef:             vehRef,
		IsCompleteStopSequence: false,
	}
}

// vehicleStatus maps a simulation status to the SIRI VehicleStatus enumeration
func vehicleStatus(st sim.Status) string {
	switch st {
	case sim.Scheduled:
		return "assigned"
	case sim.Moving, sim.Stopped:
		return "inProgress"
	case sim.Completed:
		return "completed"
	case sim.Cancelled:
		return "cancelled"
	default:
		return ""
	}
}
