package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/wegman-software/mapfile-go/internal/geo"
)

// Config holds the global configuration for the mapfile tool.
type Config struct {
	// Input settings
	InputFile string
	TypesFile string // Path to type registry YAML file
	BBox      geo.GeoBox

	// Output settings
	OutputDir      string
	WriteOptimized bool // Also write the low-zoom area variant without ids

	// Processing settings
	Workers int

	// Logging and metrics
	Verbose         bool
	LogFile         string
	MetricsInterval time.Duration
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:       "mapdata",
		Workers:         runtime.NumCPU(),
		MetricsInterval: 30 * time.Second,
	}
}

// Validate checks that the configuration is usable for an import run.
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("input file is required")
	}
	if c.TypesFile == "" {
		return fmt.Errorf("types file is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	return nil
}

// ParseBBox parses a bbox string in format "minlon,minlat,maxlon,maxlat".
// An empty string yields an invalid (unset) box.
func ParseBBox(s string) (geo.GeoBox, error) {
	if s == "" {
		return geo.GeoBox{}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geo.GeoBox{}, fmt.Errorf("bbox must have 4 values: minlon,minlat,maxlon,maxlat")
	}

	var coords [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geo.GeoBox{}, fmt.Errorf("invalid bbox coordinate %q: %w", p, err)
		}
		coords[i] = v
	}

	minCoord := geo.GeoPoint{Lat: coords[1], Lon: coords[0]}
	maxCoord := geo.GeoPoint{Lat: coords[3], Lon: coords[2]}
	if !minCoord.IsValid() || !maxCoord.IsValid() {
		return geo.GeoBox{}, fmt.Errorf("bbox coordinates out of range")
	}
	if coords[0] > coords[2] {
		return geo.GeoBox{}, fmt.Errorf("minlon (%f) must be <= maxlon (%f)", coords[0], coords[2])
	}
	if coords[1] > coords[3] {
		return geo.GeoBox{}, fmt.Errorf("minlat (%f) must be <= maxlat (%f)", coords[1], coords[3])
	}

	return geo.NewGeoBox(minCoord, maxCoord), nil
}
