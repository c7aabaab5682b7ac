package server

import (
	"net/url"
	"strconv"
	"strings"
)

type QueryError struct{ Msg string }

func (e *QueryError) Error() string { return e.Msg }

// vmQuery holds the VehicleMonitoring request filters
type vmQuery struct {
	LineRef         string
	VehicleRef      string
	MaximumVehicles int // -1 means unlimited
}

func (q vmQuery) key() string {
	return memoKey(q.LineRef, q.VehicleRef, itoa(q.MaximumVehicles))
}

// parseVehicleMonitoringQuery reads parameters case-insensitively, like SIRI clients send them
func parseVehicleMonitoringQuery(values url.Values) (vmQuery, error) {
	params := map[string]string{}
	for k, v := range values {
		if len(v) > 0 {
			params[strings.ToLower(k)] = v[0]
		}
	}
	n, err := parseNonNegativeInt(params["maximumvehicles"])
	if err != nil {
		return vmQuery{}, err
	}
	return vmQuery{
		LineRef:         strings.TrimSpace(params["lineref"]),
		VehicleRef:      strings.TrimSpace(params["vehicleref"]),
		MaximumVehicles: n,
	}, nil
}

func parseNonNegativeInt(s string) (int, error) {
	if s == "" {
		return -1, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return -1, &QueryError{Msg: "Numeric parameter must be a non-negative integer."}
	}
	return v, nil
}
