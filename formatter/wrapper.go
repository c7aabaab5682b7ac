package formatter

import (
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/routesim/siri"
	"github.com/theoremus-urban-solutions/routesim/utils"
)

// BuildServiceDelivery creates a standardized ServiceDelivery wrapper
// with ResponseTimestamp and ProducerRef (codespace)
func BuildServiceDelivery(timestamp time.Time, codespace string) siri.ServiceDelivery {
	if codespace == "" {
		codespace = "UNKNOWN"
	}

	return siri.ServiceDelivery{
		ResponseTimestamp:         utils.Iso8601(timestamp),
		ProducerRef:               codespace,
		VehicleMonitoringDelivery: []siri.VehicleMonitoring{},
	}
}

// WrapVehicleMonitoringResponse wraps a VM delivery in a complete SIRI response
func WrapVehicleMonitoringResponse(vm siri.VehicleMonitoring, codespace string) *siri.SiriResponse {
	timestamp := parseISO8601(vm.ResponseTimestamp)

	sd := BuildServiceDelivery(timestamp, codespace)
	sd.VehicleMonitoringDelivery = append(sd.VehicleMonitoringDelivery, vm)

	return &siri.SiriResponse{
		Siri: siri.SiriServiceDelivery{
			ServiceDelivery: sd,
		},
	}
}

// FilterVehicleMonitoring keeps the activities matching lineRef and vehicleRef.
// Both filters are case-insensitive substring matches; empty filters match everything.
func FilterVehicleMonitoring(vm siri.VehicleMonitoring, lineRef, vehicleRef string) siri.VehicleMonitoring {
	lineRef = strings.ToLower(strings.TrimSpace(lineRef))
	vehicleRef = strings.ToLower(strings.TrimSpace(vehicleRef))

	filtered := siri.VehicleMonitoring{
		ResponseTimestamp: vm.ResponseTimestamp,
		ValidUntil:        vm.ValidUntil,
		VehicleActivity:   []siri.VehicleActivityEntry{},
	}
	for _, va := range vm.VehicleActivity {
		mvj := va.MonitoredVehicleJourney
		if lineRef != "" && !strings.Contains(strings.ToLower(mvj.LineRef), lineRef) {
			continue
		}
		if vehicleRef != "" && !strings.Contains(strings.ToLower(mvj.VehicleRef), vehicleRef) {
			continue
		}
		filtered.VehicleActivity = append(filtered.VehicleActivity, va)
	}
	return filtered
}

// parseISO8601 parses a response timestamp back to a time.
// If parsing fails, returns current time
func parseISO8601(iso string) time.Time {
	if iso == "" {
		return time.Now()
	}
	for _, format := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(format, iso); err == nil {
			return t
		}
	}
	return time.Now()
}
