package sim

import (
	"math"

	"github.com/theoremus-urban-solutions/routesim/route"
)

// Origin is returned for routes without any waypoint
var Origin = route.Waypoint{}

// clampUnit forces p into [0,1]. ok is false when p had to be changed.
func clampUnit(p float64) (float64, bool) {
	switch {
	case math.IsNaN(p) || p < 0:
		return 0, false
	case p > 1:
		return 1, false
	}
	return p, true
}

// SegmentAt returns the segment index and the position inside it for progress.
// An exact segment boundary resolves to the earlier segment (localT = 1),
// except at progress 0.
func SegmentAt(r *route.Route, progress float64) (seg int, localT float64) {
	n := r.SegmentCount()
	if n == 0 {
		return 0, 0
	}
	p, _ := clampUnit(progress)
	pos := p * float64(n)
	f := math.Floor(pos)
	if f == pos && f > 0 {
		f--
	}
	seg = int(f)
	if seg > n-1 {
		seg = n - 1
	}
	return seg, pos - float64(seg)
}

// Interpolate maps progress along r to a coordinate.
func Interpolate(r *route.Route, progress float64) route.Waypoint {
	switch len(r.Waypoints) {
	case 0:
		return Origin
	case 1:
		return r.Waypoints[0]
	}
	seg, t := SegmentAt(r, progress)
	a, b := r.Waypoints[seg], r.Waypoints[seg+1]
	return route.Waypoint{
		Lat: a.Lat + t*(b.Lat-a.Lat),
		Lng: a.Lng + t*(b.Lng-a.Lng),
	}
}

// BearingAt is the heading of the segment progress falls on, 0 for degenerate routes.
func BearingAt(r *route.Route, progress float64) float64 {
	if r.SegmentCount() == 0 {
		return 0
	}
	seg, _ := SegmentAt(r, progress)
	return route.Bearing(r.Waypoints[seg], r.Waypoints[seg+1])
}
