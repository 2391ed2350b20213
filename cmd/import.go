package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/wegman-software/mapfile-go/internal/config"
	"github.com/wegman-software/mapfile-go/internal/importer"
	"github.com/wegman-software/mapfile-go/internal/logger"
	"github.com/wegman-software/mapfile-go/internal/metrics"
	"github.com/wegman-software/mapfile-go/internal/typemeta"
)

var (
	importOutputDir string
	importTypesFile string
	importBBoxStr   string
	importOptimized bool
)

var importCmd = &cobra.Command{
	Use:   "import <input.osm.pbf>",
	Short: "Convert a PBF file into a map dataset directory",
	Long: `Convert an OSM PBF file into binary map files:

  1. Pass 1: Stream nodes into a memory-mapped index and write tagged nodes
  2. Pass 2: Collect multipolygon relations and their member ways
  3. Pass 3: Build ways and areas in parallel and write them out

The output directory receives nodes.dat, ways.dat, areas.dat and a
mapinfo.yaml descriptor. Point identifiers are always persisted in these
files so later processing stages can resolve shared nodes. With --optimized
an additional areasopt.dat is written without identifiers for low-zoom
rendering.`,
	Args: cobra.ExactArgs(1),
	Run:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importOutputDir, "output-dir", "o", "mapdata", "Directory for the generated map files")
	importCmd.Flags().StringVarP(&importTypesFile, "types", "t", "", "Type registry YAML file (required)")
	importCmd.Flags().StringVarP(&importBBoxStr, "bbox", "b", "", "Bounding box filter: minlon,minlat,maxlon,maxlat")
	importCmd.Flags().BoolVar(&importOptimized, "optimized", false, "Also write the low-zoom area variant without ids")
	importCmd.MarkFlagRequired("types")
}

func runImport(cmd *cobra.Command, args []string) {
	cfg.InputFile = args[0]
	cfg.TypesFile = importTypesFile
	cfg.OutputDir = importOutputDir
	cfg.WriteOptimized = importOptimized
	log := logger.Get()

	if importBBoxStr != "" {
		bbox, err := config.ParseBBox(importBBoxStr)
		if err != nil {
			exitWithError("invalid bbox", err)
		}
		cfg.BBox = bbox
	}

	if err := cfg.Validate(); err != nil {
		exitWithError("invalid configuration", err)
	}

	reg, err := typemeta.LoadRegistry(cfg.TypesFile)
	if err != nil {
		exitWithError("failed to load type registry", err)
	}

	totalStart := time.Now()

	logFields := []zap.Field{
		zap.String("input", cfg.InputFile),
		zap.String("output", cfg.OutputDir),
		zap.String("types", cfg.TypesFile),
		zap.Int("workers", cfg.Workers),
	}
	if cfg.BBox.IsValid() {
		logFields = append(logFields, zap.String("bbox", cfg.BBox.String()))
	}
	if cfg.WriteOptimized {
		logFields = append(logFields, zap.Bool("optimized", true))
	}
	log.Info("Starting mapfile import", logFields...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := metrics.NewCollector(cfg.MetricsInterval, log)
	go collector.Start(ctx)

	imp, err := importer.New(cfg, reg)
	if err != nil {
		exitWithError("failed to create importer", err)
	}
	defer imp.Close()

	stats, err := imp.Run(ctx)
	if err != nil {
		exitWithError("import failed", err)
	}

	totalElapsed := time.Since(totalStart)
	log.Info("Import complete",
		zap.Duration("total_time", totalElapsed.Round(time.Second)),
		zap.Int64("nodes", stats.Nodes),
		zap.Int64("ways", stats.Ways),
		zap.Int64("areas", stats.Areas),
		zap.Int64("relations", stats.Relations),
		zap.String("bbox", stats.BBox.String()),
		zap.Float64("throughput_mb_s", float64(stats.BytesRead)/(1024*1024)/totalElapsed.Seconds()),
	)
}
