// Package dataset describes the on-disk layout of an imported map
// directory and its mapinfo.yaml descriptor.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/wegman-software/mapfile-go/internal/geo"
)

// File names inside a dataset directory.
const (
	NodesFile          = "nodes.dat"
	WaysFile           = "ways.dat"
	AreasFile          = "areas.dat"
	OptimizedAreasFile = "areasopt.dat"
	InfoFile           = "mapinfo.yaml"
)

// Info is the dataset descriptor written next to the data files.
type Info struct {
	Generator string `yaml:"generator"`
	DataMode  string `yaml:"data_mode"`
	Nodes     uint64 `yaml:"nodes"`
	Ways      uint64 `yaml:"ways"`
	Areas     uint64 `yaml:"areas"`
	Optimized bool   `yaml:"optimized,omitempty"`

	MinLat float64 `yaml:"min_lat"`
	MinLon float64 `yaml:"min_lon"`
	MaxLat float64 `yaml:"max_lat"`
	MaxLon float64 `yaml:"max_lon"`
}

// SetBoundingBox copies a valid box into the descriptor fields.
func (i *Info) SetBoundingBox(box geo.GeoBox) {
	if !box.IsValid() {
		return
	}
	i.MinLat = box.GetMinCoord().Lat
	i.MinLon = box.GetMinCoord().Lon
	i.MaxLat = box.GetMaxCoord().Lat
	i.MaxLon = box.GetMaxCoord().Lon
}

// BoundingBox reconstructs the descriptor box. Empty descriptors yield an
// invalid box.
func (i *Info) BoundingBox() geo.GeoBox {
	var box geo.GeoBox
	if i.MinLat == 0 && i.MinLon == 0 && i.MaxLat == 0 && i.MaxLon == 0 {
		return box
	}
	box.SetValue(
		geo.GeoPoint{Lat: i.MinLat, Lon: i.MinLon},
		geo.GeoPoint{Lat: i.MaxLat, Lon: i.MaxLon},
	)
	return box
}

// WriteInfo writes the descriptor into dir.
func WriteInfo(dir string, info *Info) error {
	data, err := yaml.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset info: %w", err)
	}
	path := filepath.Join(dir, InfoFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadInfo reads the descriptor from dir.
func ReadInfo(dir string) (*Info, error) {
	path := filepath.Join(dir, InfoFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var info Info
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &info, nil
}
