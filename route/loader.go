package route

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Routes []routeDoc `yaml:"routes"`
}

type routeDoc struct {
	ID             string     `yaml:"id"`
	Name           string     `yaml:"name"`
	Color          string     `yaml:"color"`
	Waypoints      []Waypoint `yaml:"waypoints"`
	SpeedProfile   profileDoc `yaml:"speedProfile"`
	LocationLabels []string   `yaml:"locationLabels"`
}

// profileDoc keeps base as a pointer so an omitted value can default to 1
type profileDoc struct {
	Base             *float64          `yaml:"base"`
	SegmentOverrides []SegmentOverride `yaml:"segmentOverrides"`
}

// LoadCatalogFile reads and validates a YAML route catalog from disk.
func LoadCatalogFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route catalog: %w", err)
	}
	return LoadCatalog(data)
}

// LoadCatalog decodes and validates a YAML route catalog.
// A missing speedProfile.base defaults to 1.
func LoadCatalog(data []byte) (*Registry, error) {
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode route catalog: %w", err)
	}
	v := validator.New()
	routes := make([]*Route, 0, len(doc.Routes))
	for i, d := range doc.Routes {
		base := 1.0
		if d.SpeedProfile.Base != nil {
			base = *d.SpeedProfile.Base
		}
		r := New(d.ID, d.Waypoints, SpeedProfile{
			Base:             base,
			SegmentOverrides: d.SpeedProfile.SegmentOverrides,
		}, d.LocationLabels)
		r.Name = d.Name
		r.Color = d.Color
		if err := v.Struct(r); err != nil {
			return nil, fmt.Errorf("route #%d (%q): %w", i, d.ID, err)
		}
		routes = append(routes, r)
	}
	return NewRegistry(routes...)
}
