package route

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Waypoint is one (lat, lng) pair of a route
type Waypoint struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// UnmarshalYAML accepts the compact [lat, lng] form used in catalogs.
func (w *Waypoint) UnmarshalYAML(value *yaml.Node) error {
	var pair []float64
	if err := value.Decode(&pair); err != nil {
		return fmt.Errorf("waypoint at line %d: %w", value.Line, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("waypoint at line %d: want [lat, lng], got %d values", value.Line, len(pair))
	}
	w.Lat, w.Lng = pair[0], pair[1]
	return nil
}

// SegmentOverride scales speed on the inclusive segment range [From, To]
type SegmentOverride struct {
	From       int     `yaml:"from" json:"from" validate:"gte=0"`
	To         int     `yaml:"to" json:"to" validate:"gtefield=From"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier" validate:"gte=0"`
}

// SpeedProfile is the per-route speed configuration
type SpeedProfile struct {
	Base             float64           `yaml:"base" json:"base" validate:"gte=0"`
	SegmentOverrides []SegmentOverride `yaml:"segmentOverrides" json:"segmentOverrides" validate:"dive"`
}

// OverrideFor returns the multiplier of the first override containing seg, or 1.
func (p SpeedProfile) OverrideFor(seg int) float64 {
	for _, o := range p.SegmentOverrides {
		if seg >= o.From && seg <= o.To {
			return o.Multiplier
		}
	}
	return 1
}

// Route is an immutable route geometry with its speed and label configuration
type Route struct {
	ID             string       `json:"id" validate:"required"`
	Name           string       `json:"name"`
	Color          string       `json:"color"`
	Waypoints      []Waypoint   `json:"waypoints" validate:"dive"`
	SpeedProfile   SpeedProfile `json:"speedProfile"`
	LocationLabels []string     `json:"locationLabels"`

	segmentKM     []float64
	meanSegmentKM float64
	lengthKM      float64
}

// New builds a route and precomputes its segment lengths.
func New(id string, waypoints []Waypoint, profile SpeedProfile, labels []string) *Route {
	r := &Route{
		ID:             id,
		Waypoints:      waypoints,
		SpeedProfile:   profile,
		LocationLabels: labels,
	}
	r.prepare()
	return r
}

func (r *Route) prepare() {
	n := r.SegmentCount()
	r.segmentKM = make([]float64, n)
	r.lengthKM = 0
	for i := 0; i < n; i++ {
		a, b := r.Waypoints[i], r.Waypoints[i+1]
		r.segmentKM[i] = HaversineKM(a.Lat, a.Lng, b.Lat, b.Lng)
		r.lengthKM += r.segmentKM[i]
	}
	r.meanSegmentKM = 0
	if n > 0 {
		r.meanSegmentKM = r.lengthKM / float64(n)
	}
}

// SegmentCount returns len(waypoints)-1, or 0 for degenerate routes.
func (r *Route) SegmentCount() int {
	if len(r.Waypoints) < 2 {
		return 0
	}
	return len(r.Waypoints) - 1
}

// IsDegenerate reports whether the route has no segment to travel along.
func (r *Route) IsDegenerate() bool { return r.SegmentCount() == 0 }

// SegmentKM returns the haversine length of segment i in kilometers.
func (r *Route) SegmentKM(i int) float64 {
	if i < 0 || i >= r.SegmentCount() {
		return 0
	}
	if len(r.segmentKM) == r.SegmentCount() {
		return r.segmentKM[i]
	}
	a, b := r.Waypoints[i], r.Waypoints[i+1]
	return HaversineKM(a.Lat, a.Lng, b.Lat, b.Lng)
}

// MeanSegmentKM returns the average segment length in kilometers.
func (r *Route) MeanSegmentKM() float64 {
	if len(r.segmentKM) == r.SegmentCount() {
		return r.meanSegmentKM
	}
	n := r.SegmentCount()
	if n == 0 {
		return 0
	}
	return r.LengthKM() / float64(n)
}

// LengthKM returns the total route length in kilometers.
func (r *Route) LengthKM() float64 {
	if len(r.segmentKM) == r.SegmentCount() {
		return r.lengthKM
	}
	total := 0.0
	for i := 0; i < r.SegmentCount(); i++ {
		total += r.SegmentKM(i)
	}
	return total
}
