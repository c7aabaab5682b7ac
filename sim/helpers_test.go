package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/routesim/route"
)

// equatorRoute has three segments of equal length along the equator
func equatorRoute(id string, overrides ...route.SegmentOverride) *route.Route {
	return route.New(id, []route.Waypoint{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 1},
		{Lat: 0, Lng: 2},
		{Lat: 0, Lng: 3},
	}, route.SpeedProfile{Base: 1, SegmentOverrides: overrides}, []string{"West", "Middle", "East"})
}

// calmSpeedConfig disables random slowdowns
func calmSpeedConfig() SpeedConfig {
	cfg := DefaultSpeedConfig()
	cfg.SlowdownProbability = 0
	return cfg
}

func newTestRegistry(t *testing.T) *route.Registry {
	t.Helper()
	reg, err := route.NewRegistry(
		equatorRoute("line"),
		route.New("dot", []route.Waypoint{{Lat: 16.05, Lng: 108.2}}, route.SpeedProfile{Base: 1}, nil),
		route.New("diag", []route.Waypoint{{Lat: 0, Lng: 0}, {Lat: 10, Lng: 10}}, route.SpeedProfile{Base: 1}, nil),
	)
	require.NoError(t, err)
	return reg
}

// drain empties a subscription without blocking
func drainSub(s *Subscription) []Snapshot {
	var out []Snapshot
	for {
		select {
		case snap, ok := <-s.C():
			if !ok {
				return out
			}
			out = append(out, snap)
		default:
			return out
		}
	}
}
