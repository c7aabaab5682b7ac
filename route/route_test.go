package route

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
routes:
  - id: coast
    name: Coast road
    waypoints:
      - [16.0544, 108.2022]
      - [16.2, 108.12]
      - [16.46, 107.59]
    speedProfile:
      base: 0.8
      segmentOverrides:
        - {from: 1, to: 1, multiplier: 0.4}
    locationLabels: [Da Nang, Pass, Hue]
  - id: stub
    waypoints:
      - [16.05, 108.2]
`

func TestLoadCatalog(t *testing.T) {
	reg, err := LoadCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())

	r, err := reg.GetRoute("coast")
	require.NoError(t, err)
	assert.Equal(t, "Coast road", r.Name)
	assert.Equal(t, 2, r.SegmentCount())
	assert.Equal(t, 0.8, r.SpeedProfile.Base)
	assert.Equal(t, 0.4, r.SpeedProfile.OverrideFor(1))
	assert.Equal(t, 1.0, r.SpeedProfile.OverrideFor(0))
	assert.Equal(t, []string{"Da Nang", "Pass", "Hue"}, r.LocationLabels)

	stub, err := reg.GetRoute("stub")
	require.NoError(t, err)
	assert.True(t, stub.IsDegenerate())
	assert.Equal(t, 1.0, stub.SpeedProfile.Base, "omitted base defaults to 1")
	assert.Zero(t, stub.LengthKM())

	ids := []string{}
	for _, r := range reg.Routes() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"coast", "stub"}, ids)
}

func TestLoadCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "routes: [ {id: a"},
		{"waypoint arity", "routes: [{id: a, waypoints: [[1, 2, 3]]}]"},
		{"latitude out of range", "routes: [{id: a, waypoints: [[91, 0], [0, 0]]}]"},
		{"missing id", "routes: [{waypoints: [[0, 0], [0, 1]]}]"},
		{"negative base", "routes: [{id: a, waypoints: [[0, 0], [0, 1]], speedProfile: {base: -1}}]"},
		{"inverted override", "routes: [{id: a, waypoints: [[0, 0], [0, 1]], speedProfile: {segmentOverrides: [{from: 2, to: 1, multiplier: 1}]}}]"},
		{"duplicate id", "routes: [{id: a, waypoints: [[0, 0]]}, {id: a, waypoints: [[1, 1]]}]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalogFile_ProjectCatalog(t *testing.T) {
	reg, err := LoadCatalogFile("../routes.yml")
	require.NoError(t, err)

	r, err := reg.GetRoute("danang-hue")
	require.NoError(t, err)
	assert.False(t, r.IsDegenerate())
	assert.Greater(t, r.LengthKM(), 50.0)
}

func TestLoadCatalogFile_Missing(t *testing.T) {
	_, err := LoadCatalogFile("does-not-exist.yml")
	assert.Error(t, err)
}

func TestRegistry_GetRouteNotFound(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	_, err = reg.GetRoute("nowhere")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRouteNotFound))
	assert.Contains(t, err.Error(), "nowhere")
}

func TestNewRegistry_Duplicate(t *testing.T) {
	a := New("a", []Waypoint{{0, 0}, {0, 1}}, SpeedProfile{Base: 1}, nil)
	_, err := NewRegistry(a, New("a", nil, SpeedProfile{Base: 1}, nil))
	assert.Error(t, err)
}

func TestRoute_SegmentLengths(t *testing.T) {
	r := New("eq", []Waypoint{{0, 0}, {0, 1}, {0, 3}}, SpeedProfile{Base: 1}, nil)

	degKM := 2 * math.Pi * earthRadiusKM / 360
	assert.InDelta(t, degKM, r.SegmentKM(0), 1e-6)
	assert.InDelta(t, 2*degKM, r.SegmentKM(1), 1e-6)
	assert.InDelta(t, 3*degKM, r.LengthKM(), 1e-6)
	assert.InDelta(t, 1.5*degKM, r.MeanSegmentKM(), 1e-6)
	assert.Zero(t, r.SegmentKM(2))
	assert.Zero(t, r.SegmentKM(-1))
}

func TestHaversineKM(t *testing.T) {
	assert.Zero(t, HaversineKM(16.05, 108.2, 16.05, 108.2))
	// Da Nang to Hue is roughly 80 km in a straight line
	d := HaversineKM(16.0544, 108.2022, 16.4637, 107.5909)
	assert.InDelta(t, 79, d, 3)
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name string
		a, b Waypoint
		want float64
	}{
		{"north", Waypoint{0, 0}, Waypoint{1, 0}, 0},
		{"east", Waypoint{0, 0}, Waypoint{0, 1}, 90},
		{"south", Waypoint{1, 0}, Waypoint{0, 0}, 180},
		{"west", Waypoint{0, 1}, Waypoint{0, 0}, 270},
		{"same point", Waypoint{5, 5}, Waypoint{5, 5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Bearing(tt.a, tt.b), 1e-9)
		})
	}
}
