package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/wegman-software/mapfile-go/internal/dataset"
	"github.com/wegman-software/mapfile-go/internal/filestream"
	"github.com/wegman-software/mapfile-go/internal/geo"
	"github.com/wegman-software/mapfile-go/internal/logger"
	"github.com/wegman-software/mapfile-go/internal/mapdata"
	"github.com/wegman-software/mapfile-go/internal/typemeta"
)

var inspectTypesFile string

var inspectCmd = &cobra.Command{
	Use:   "inspect <dataset-dir>",
	Short: "Decode a map dataset and print per-type statistics",
	Long: `Decode every entity in a map dataset directory and print entity counts
per registered type together with the covered bounding box. The same type
registry used for the import must be given.`,
	Args: cobra.ExactArgs(1),
	Run:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectTypesFile, "types", "t", "", "Type registry YAML file (required)")
	inspectCmd.MarkFlagRequired("types")
}

// inspectCounts accumulates per-type entity counts and the covered box.
type inspectCounts struct {
	perType map[string]uint64
	total   uint64
	bbox    geo.GeoBox
}

func newInspectCounts() *inspectCounts {
	return &inspectCounts{perType: make(map[string]uint64)}
}

func (c *inspectCounts) add(t *typemeta.TypeInfo, box geo.GeoBox) {
	name := "<none>"
	if t != nil {
		name = t.Name()
	}
	c.perType[name]++
	c.total++
	c.bbox.Include(box)
}

func (c *inspectCounts) print(label string) {
	fmt.Printf("%s: %d entities\n", label, c.total)
	names := make([]string, 0, len(c.perType))
	for name := range c.perType {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-30s %d\n", name, c.perType[name])
	}
	if c.bbox.IsValid() {
		fmt.Printf("  bbox: %s\n", c.bbox.String())
	}
}

func runInspect(cmd *cobra.Command, args []string) {
	dir := args[0]
	log := logger.Get()

	reg, err := typemeta.LoadRegistry(inspectTypesFile)
	if err != nil {
		exitWithError("failed to load type registry", err)
	}

	if info, err := dataset.ReadInfo(dir); err == nil {
		log.Info("Dataset descriptor",
			zap.String("generator", info.Generator),
			zap.String("data_mode", info.DataMode),
			zap.Uint64("nodes", info.Nodes),
			zap.Uint64("ways", info.Ways),
			zap.Uint64("areas", info.Areas))
	} else {
		log.Warn("No dataset descriptor found", zap.Error(err))
	}

	total := newInspectCounts()

	nodes := newInspectCounts()
	err = scanEntities(filepath.Join(dir, dataset.NodesFile), func(s *filestream.FileScanner) error {
		var node mapdata.MapNode
		if err := node.Read(reg, s); err != nil {
			return err
		}
		var box geo.GeoBox
		box.IncludePoint(node.Coord)
		nodes.add(node.Type(), box)
		total.bbox.Include(box)
		return nil
	})
	if err != nil {
		log.Warn("Node scan stopped early", zap.Error(err))
	}
	nodes.print("nodes")

	ways := newInspectCounts()
	err = scanEntities(filepath.Join(dir, dataset.WaysFile), func(s *filestream.FileScanner) error {
		var way mapdata.MapWay
		if err := way.Read(reg, s, mapdata.DataModeAll); err != nil {
			return err
		}
		ways.add(way.Type(), way.GetBoundingBox())
		total.bbox.Include(way.GetBoundingBox())
		return nil
	})
	if err != nil {
		log.Warn("Way scan stopped early", zap.Error(err))
	}
	ways.print("ways")

	areas := newInspectCounts()
	err = scanEntities(filepath.Join(dir, dataset.AreasFile), func(s *filestream.FileScanner) error {
		var area mapdata.MapArea
		if err := area.ReadImport(reg, s); err != nil {
			return err
		}
		areas.add(area.Type(), area.GetBoundingBox())
		total.bbox.Include(area.GetBoundingBox())
		return nil
	})
	if err != nil {
		log.Warn("Area scan stopped early", zap.Error(err))
	}
	areas.print("areas")

	optPath := filepath.Join(dir, dataset.OptimizedAreasFile)
	if _, statErr := os.Stat(optPath); statErr == nil {
		opt := newInspectCounts()
		err = scanEntities(optPath, func(s *filestream.FileScanner) error {
			var area mapdata.MapArea
			if err := area.ReadOptimized(reg, s); err != nil {
				return err
			}
			opt.add(area.Type(), area.GetBoundingBox())
			return nil
		})
		if err != nil {
			log.Warn("Optimized area scan stopped early", zap.Error(err))
		}
		opt.print("optimized areas")
	}

	if total.bbox.IsValid() {
		fmt.Printf("total bbox: %s\n", total.bbox.String())
	}
}

// scanEntities runs decode over a data file until EOF. A missing file is
// treated as empty. When an entity fails to decode the scanner is resynced
// to the entity's start offset, which equals the previous entity's
// NextFileOffset, and the error names that boundary; entities decoded before
// the failure stay counted.
func scanEntities(path string, decode func(*filestream.FileScanner) error) error {
	s, err := filestream.NewFileScanner(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer s.Close()

	for !s.IsEOF() {
		boundary := s.Position()
		if err := decode(s); err != nil {
			if posErr := s.SetPos(boundary); posErr != nil {
				return posErr
			}
			return fmt.Errorf("bad entity at offset %d: %w", boundary, err)
		}
	}
	return nil
}
