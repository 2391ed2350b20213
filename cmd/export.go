package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
	"github.com/wegman-software/mapfile-go/internal/dataset"
	"github.com/wegman-software/mapfile-go/internal/filestream"
	"github.com/wegman-software/mapfile-go/internal/geo"
	"github.com/wegman-software/mapfile-go/internal/logger"
	"github.com/wegman-software/mapfile-go/internal/mapdata"
	"github.com/wegman-software/mapfile-go/internal/typemeta"
)

var (
	exportTypesFile string
	exportOutput    string
)

var exportCmd = &cobra.Command{
	Use:   "export <dataset-dir>",
	Short: "Export a map dataset as GeoJSON",
	Long: `Decode a map dataset directory and write all entities into a single
GeoJSON FeatureCollection. Nodes become Points, ways LineStrings and areas
Polygons; type names and feature values are carried as properties.`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportTypesFile, "types", "t", "", "Type registry YAML file (required)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "map.geojson", "Output GeoJSON file")
	exportCmd.MarkFlagRequired("types")
}

// featureProperties copies the type name and decoded feature values into
// GeoJSON properties.
func featureProperties(f *geojson.Feature, buf *typemeta.FeatureValueBuffer) {
	t := buf.Type()
	if t == nil {
		return
	}
	f.Properties["type"] = t.Name()
	for i, desc := range t.Features() {
		if v, ok := buf.Get(i); ok {
			f.Properties[desc.Name] = v
		}
	}
}

func toOrbRing(points []geo.GeoPointItem) orb.Ring {
	ring := make(orb.Ring, 0, len(points))
	for _, p := range points {
		ring = append(ring, orb.Point{p.Coord.Lon, p.Coord.Lat})
	}
	return ring
}

func runExport(cmd *cobra.Command, args []string) {
	dir := args[0]
	log := logger.Get()

	reg, err := typemeta.LoadRegistry(exportTypesFile)
	if err != nil {
		exitWithError("failed to load type registry", err)
	}

	start := time.Now()
	fc := geojson.NewFeatureCollection()

	err = scanEntities(filepath.Join(dir, dataset.NodesFile), func(s *filestream.FileScanner) error {
		var node mapdata.MapNode
		if err := node.Read(reg, s); err != nil {
			return err
		}
		f := geojson.NewFeature(orb.Point{node.Coord.Lon, node.Coord.Lat})
		featureProperties(f, &node.Features)
		fc.Append(f)
		return nil
	})
	if err != nil {
		exitWithError("failed to read nodes", err)
	}

	err = scanEntities(filepath.Join(dir, dataset.WaysFile), func(s *filestream.FileScanner) error {
		var way mapdata.MapWay
		if err := way.Read(reg, s, mapdata.DataModeAll); err != nil {
			return err
		}
		line := make(orb.LineString, 0, len(way.Nodes))
		for _, p := range way.Nodes {
			line = append(line, orb.Point{p.Coord.Lon, p.Coord.Lat})
		}
		f := geojson.NewFeature(line)
		featureProperties(f, &way.Features)
		fc.Append(f)
		return nil
	})
	if err != nil {
		exitWithError("failed to read ways", err)
	}

	err = scanEntities(filepath.Join(dir, dataset.AreasFile), func(s *filestream.FileScanner) error {
		var area mapdata.MapArea
		if err := area.ReadImport(reg, s); err != nil {
			return err
		}
		polygon := orb.Polygon{}
		for i := range area.Rings {
			ring := &area.Rings[i]
			if len(ring.Nodes) == 0 {
				continue
			}
			polygon = append(polygon, toOrbRing(ring.Nodes))
		}
		if len(polygon) == 0 {
			return nil
		}
		f := geojson.NewFeature(polygon)
		featureProperties(f, &area.Rings[0].Features)
		fc.Append(f)
		return nil
	})
	if err != nil {
		exitWithError("failed to read areas", err)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		exitWithError("failed to marshal GeoJSON", err)
	}
	if err := os.WriteFile(exportOutput, data, 0644); err != nil {
		exitWithError("failed to write output", err)
	}

	log.Info("Export complete",
		zap.String("output", exportOutput),
		zap.Int("features", len(fc.Features)),
		zap.Duration("duration", time.Since(start).Round(time.Millisecond)))
	fmt.Printf("wrote %d features to %s\n", len(fc.Features), exportOutput)
}
