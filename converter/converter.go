package converter

import (
	"time"

	"github.com/theoremus-urban-solutions/routesim/sim"
	"github.com/theoremus-urban-solutions/routesim/siri"
	"github.com/theoremus-urban-solutions/routesim/utils"
)

const defaultVehicleMode = "bus"

// Converter coordinates the route catalog and options to produce SIRI deliveries
type Converter struct {
	Routes sim.RouteSource
	Opts   ConverterOptions
}

// NewConverter creates a new converter instance
func NewConverter(routes sim.RouteSource, opts ConverterOptions) *Converter {
	if opts.VehicleMode == "" {
		opts.VehicleMode = defaultVehicleMode
	}
	return &Converter{Routes: routes, Opts: opts}
}

// BuildVehicleMonitoring builds one VM delivery holding an activity per snapshot.
// Cancelled snapshots are skipped.
func (c *Converter) BuildVehicleMonitoring(snaps []sim.Snapshot, now time.Time) siri.VehicleMonitoring {
	vm := siri.VehicleMonitoring{
		ResponseTimestamp: utils.Iso8601(now),
		ValidUntil:        utils.ValidUntilFrom(now, c.Opts.ValidFor),
		VehicleActivity:   []siri.VehicleActivityEntry{},
	}
	for _, s := range snaps {
		if s.Status == sim.Cancelled {
			continue
		}
		vm.VehicleActivity = append(vm.VehicleActivity, c.buildActivity(s, now))
	}
	return vm
}
