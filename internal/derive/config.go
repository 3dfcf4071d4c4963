package derive

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModeConfig classifies GTFS route_type values into transit modes. It is
// immutable once built and passed explicitly into the aggregator, so mode
// filtering never depends on ambient state.
type ModeConfig struct {
	// SubwayRouteTypes lists the route_type values treated as subway service.
	// Kept as the raw strings from routes.txt so feeds using extended route
	// types ("401") work without parsing.
	SubwayRouteTypes []string `yaml:"subway_route_types"`

	subway map[string]bool
}

// DefaultModeConfig covers standard GTFS, where route_type 1 is subway/metro.
func DefaultModeConfig() ModeConfig {
	return NewModeConfig([]string{"1"})
}

func NewModeConfig(subwayRouteTypes []string) ModeConfig {
	cfg := ModeConfig{SubwayRouteTypes: subwayRouteTypes}
	cfg.compile()
	return cfg
}

// LoadModeConfig reads a mode classification table from a YAML file. Feeds
// that tag subway service with extended route types override the default here.
func LoadModeConfig(path string) (ModeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModeConfig{}, fmt.Errorf("error reading mode config: %w", err)
	}

	var cfg ModeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ModeConfig{}, fmt.Errorf("error parsing mode config %s: %w", path, err)
	}
	if len(cfg.SubwayRouteTypes) == 0 {
		return ModeConfig{}, fmt.Errorf("mode config %s declares no subway_route_types", path)
	}

	cfg.compile()
	return cfg, nil
}

func (c *ModeConfig) compile() {
	c.subway = make(map[string]bool, len(c.SubwayRouteTypes))
	for _, rt := range c.SubwayRouteTypes {
		c.subway[rt] = true
	}
}

// IsSubway reports whether a route_type value is classified as subway.
// The empty string is never classified; callers treat it as unknown.
func (c ModeConfig) IsSubway(routeType string) bool {
	return c.subway[routeType]
}
