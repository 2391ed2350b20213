// Package importer drives the multi-pass conversion from OSM PBF input into
// a map dataset directory.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/wegman-software/mapfile-go/internal/config"
	"github.com/wegman-software/mapfile-go/internal/dataset"
	"github.com/wegman-software/mapfile-go/internal/filestream"
	"github.com/wegman-software/mapfile-go/internal/geo"
	"github.com/wegman-software/mapfile-go/internal/logger"
	"github.com/wegman-software/mapfile-go/internal/mapdata"
	"github.com/wegman-software/mapfile-go/internal/nodeindex"
	"github.com/wegman-software/mapfile-go/internal/osmconv"
	"github.com/wegman-software/mapfile-go/internal/typemeta"
)

// Stats holds import statistics.
type Stats struct {
	Nodes     int64
	Ways      int64
	Areas     int64
	Relations int64
	BytesRead int64
	BBox      geo.GeoBox
}

// Importer converts a PBF file into the dataset files.
type Importer struct {
	cfg *config.Config
	reg *typemeta.TypeRegistry

	serials *osmconv.SerialAllocator

	nodeIndex     *nodeindex.Index
	nodeIndexPath string

	// Multipolygon relations collected before the way pass, and the
	// resolved geometries of their member ways.
	relations  []*osm.Relation
	neededWays map[int64]bool

	geomMu sync.Mutex
	geoms  map[int64][]geo.GeoPointItem

	statMu sync.Mutex
	stats  Stats
}

// New creates an importer writing into cfg.OutputDir.
func New(cfg *config.Config, reg *typemeta.TypeRegistry) (*Importer, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Importer{
		cfg:           cfg,
		reg:           reg,
		serials:       osmconv.NewSerialAllocator(),
		nodeIndexPath: filepath.Join(cfg.OutputDir, "node_index.bin"),
		neededWays:    make(map[int64]bool),
		geoms:         make(map[int64][]geo.GeoPointItem),
	}, nil
}

// Close cleans up the temporary node index.
func (im *Importer) Close() error {
	if im.nodeIndex != nil {
		im.nodeIndex.Close()
		im.nodeIndex = nil
	}
	os.Remove(im.nodeIndexPath)
	return nil
}

// Run executes the import passes.
func (im *Importer) Run(ctx context.Context) (*Stats, error) {
	log := logger.Get()

	f, err := os.Open(im.cfg.InputFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fileInfo, err := f.Stat()
	if err != nil {
		return nil, err
	}
	im.stats.BytesRead = fileInfo.Size()

	log.Info("Pass 1: Indexing node coordinates and writing tagged nodes")
	start := time.Now()
	if err := im.runNodePass(ctx, f); err != nil {
		return nil, err
	}
	log.Info("Pass 1 complete",
		zap.Int64("nodes", im.stats.Nodes),
		zap.Duration("duration", time.Since(start).Round(time.Second)))

	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}

	im.nodeIndex, err = nodeindex.Open(im.nodeIndexPath)
	if err != nil {
		return nil, err
	}

	log.Info("Pass 2: Collecting multipolygon relations")
	start = time.Now()
	if err := im.runRelationPass(ctx, f); err != nil {
		return nil, err
	}
	log.Info("Pass 2 complete",
		zap.Int64("relations", im.stats.Relations),
		zap.Int("member_ways", len(im.neededWays)),
		zap.Duration("duration", time.Since(start).Round(time.Second)))

	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}

	log.Info("Pass 3: Building ways and areas")
	start = time.Now()
	if err := im.runWayPass(ctx, f); err != nil {
		return nil, err
	}
	log.Info("Pass 3 complete",
		zap.Int64("ways", im.stats.Ways),
		zap.Int64("areas", im.stats.Areas),
		zap.Duration("duration", time.Since(start).Round(time.Second)))

	if err := im.writeInfo(); err != nil {
		return nil, err
	}

	return &im.stats, nil
}

// inBBox applies the optional bounding box filter.
func (im *Importer) inBBox(box geo.GeoBox) bool {
	if !im.cfg.BBox.IsValid() {
		return true
	}
	return im.cfg.BBox.IsIntersects(box, false)
}

// runNodePass streams nodes into the memory-mapped index and writes tagged
// nodes that match a registered type. The scan stops at the first way since
// PBF files order nodes first.
func (im *Importer) runNodePass(ctx context.Context, f *os.File) error {
	idx, err := nodeindex.Create(im.nodeIndexPath)
	if err != nil {
		return err
	}
	defer idx.Close()

	writer, err := filestream.NewFileWriter(filepath.Join(im.cfg.OutputDir, dataset.NodesFile))
	if err != nil {
		return err
	}
	defer writer.Close()

	builder := osmconv.NewBuilder(im.reg, im.serials)

	scanner := osmpbf.New(ctx, f, runtime.NumCPU())
	defer scanner.Close()
	scanner.SkipRelations = true

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			coord := geo.GeoPoint{Lat: o.Lat, Lon: o.Lon}
			idx.Put(int64(o.ID), coord)

			if len(o.Tags) == 0 {
				continue
			}
			node, ok := builder.Node(o)
			if !ok {
				continue
			}
			var box geo.GeoBox
			box.IncludePoint(node.Coord)
			if !im.inBBox(box) {
				continue
			}
			if err := node.Write(im.reg, writer); err != nil {
				return err
			}
			im.stats.Nodes++
			im.stats.BBox.IncludePoint(node.Coord)
		case *osm.Way:
			if err := idx.Sync(); err != nil {
				return err
			}
			return writer.Close()
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return err
	}
	if err := idx.Sync(); err != nil {
		return err
	}
	return writer.Close()
}

// runRelationPass collects multipolygon relations and records which member
// ways the way pass must keep geometries for.
func (im *Importer) runRelationPass(ctx context.Context, f *os.File) error {
	scanner := osmpbf.New(ctx, f, runtime.NumCPU())
	defer scanner.Close()
	scanner.SkipNodes = true
	scanner.SkipWays = true

	for scanner.Scan() {
		rel, ok := scanner.Object().(*osm.Relation)
		if !ok {
			continue
		}
		if !osmconv.IsMultipolygon(rel) {
			continue
		}
		if im.reg.ClassifyTags(typemeta.CategoryArea, rel.Tags.Map()) == nil {
			continue
		}
		im.relations = append(im.relations, rel)
		im.stats.Relations++
		for _, id := range osmconv.MemberWayIDs(rel) {
			im.neededWays[id] = true
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// entityResult carries one built entity from a worker to the writer.
type entityResult struct {
	way  *mapdata.MapWay
	area *mapdata.MapArea
}

// runWayPass streams ways through parallel builder workers, assembles the
// collected relations once all member geometries are known, and writes
// everything through a single writer goroutine.
func (im *Importer) runWayPass(ctx context.Context, f *os.File) error {
	numWorkers := im.cfg.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wayChan := make(chan *osm.Way, 10000)
	resultChan := make(chan entityResult, 10000)

	lookup := func(nodeID int64) (geo.GeoPoint, bool) {
		return im.nodeIndex.Get(nodeID)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < numWorkers; i++ {
		g.Go(func() error {
			builder := osmconv.NewBuilder(im.reg, im.serials)
			for way := range wayChan {
				im.captureGeometry(way, lookup)

				w, area, ok := builder.Way(way, lookup)
				if !ok {
					continue
				}
				switch {
				case area != nil && im.inBBox(area.GetBoundingBox()):
					resultChan <- entityResult{area: area}
				case w != nil && im.inBBox(w.GetBoundingBox()):
					resultChan <- entityResult{way: w}
				}
			}
			return nil
		})
	}

	var writerErr error
	var writerWg sync.WaitGroup
	writerWg.Add(1)
	go func() {
		defer writerWg.Done()
		writerErr = im.runWriter(resultChan)
	}()

	scanner := osmpbf.New(gctx, f, runtime.NumCPU())
	defer scanner.Close()
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		select {
		case wayChan <- way:
		case <-gctx.Done():
			close(wayChan)
			g.Wait()
			close(resultChan)
			writerWg.Wait()
			return gctx.Err()
		}
	}
	scanErr := scanner.Err()

	close(wayChan)
	if err := g.Wait(); err != nil {
		close(resultChan)
		writerWg.Wait()
		return err
	}

	if scanErr != nil && scanErr != io.EOF {
		close(resultChan)
		writerWg.Wait()
		return scanErr
	}

	// All member geometries are resolved now; assemble the relations on
	// the main goroutine and feed them to the still-running writer.
	builder := osmconv.NewBuilder(im.reg, im.serials)
	geom := func(wayID int64) ([]geo.GeoPointItem, bool) {
		points, ok := im.geoms[wayID]
		return points, ok
	}
	for _, rel := range im.relations {
		area, ok := builder.Relation(rel, geom)
		if !ok {
			continue
		}
		if !im.inBBox(area.GetBoundingBox()) {
			continue
		}
		resultChan <- entityResult{area: area}
	}

	close(resultChan)
	writerWg.Wait()
	return writerErr
}

// captureGeometry stashes resolved member way geometries for relation
// assembly.
func (im *Importer) captureGeometry(way *osm.Way, lookup osmconv.CoordLookup) {
	if !im.neededWays[int64(way.ID)] {
		return
	}
	points := make([]geo.GeoPointItem, 0, len(way.Nodes))
	for _, ref := range way.Nodes {
		coord, ok := lookup(int64(ref.ID))
		if !ok {
			return
		}
		points = append(points, geo.GeoPointItem{Coord: coord})
	}
	im.geomMu.Lock()
	im.geoms[int64(way.ID)] = points
	im.geomMu.Unlock()
}

// runWriter drains the result channel into the way and area files. Ids are
// persisted unconditionally in the main files; the optional optimized area
// file is written without ids for low-zoom rendering.
func (im *Importer) runWriter(results <-chan entityResult) error {
	wayWriter, err := filestream.NewFileWriter(filepath.Join(im.cfg.OutputDir, dataset.WaysFile))
	if err != nil {
		return err
	}
	defer wayWriter.Close()

	areaWriter, err := filestream.NewFileWriter(filepath.Join(im.cfg.OutputDir, dataset.AreasFile))
	if err != nil {
		return err
	}
	defer areaWriter.Close()

	var optWriter *filestream.FileWriter
	if im.cfg.WriteOptimized {
		optWriter, err = filestream.NewFileWriter(filepath.Join(im.cfg.OutputDir, dataset.OptimizedAreasFile))
		if err != nil {
			return err
		}
		defer optWriter.Close()
	}

	// Keep draining after a write error so the workers never block on a
	// full channel; the first error wins.
	var firstErr error
	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	for result := range results {
		if firstErr != nil {
			continue
		}
		switch {
		case result.way != nil:
			if err := result.way.Write(im.reg, wayWriter, mapdata.DataModeAll); err != nil {
				fail(err)
				continue
			}
			im.statMu.Lock()
			im.stats.Ways++
			im.stats.BBox.Include(result.way.GetBoundingBox())
			im.statMu.Unlock()
		case result.area != nil:
			if err := result.area.WriteImport(im.reg, areaWriter); err != nil {
				fail(err)
				continue
			}
			if optWriter != nil {
				t := result.area.Type()
				if t != nil && t.OptimizeLowZoom() {
					if err := result.area.WriteOptimized(im.reg, optWriter); err != nil {
						fail(err)
						continue
					}
				}
			}
			im.statMu.Lock()
			im.stats.Areas++
			im.stats.BBox.Include(result.area.GetBoundingBox())
			im.statMu.Unlock()
		}
	}
	return firstErr
}

// writeInfo writes the dataset descriptor.
func (im *Importer) writeInfo() error {
	info := &dataset.Info{
		Generator: "mapfile",
		DataMode:  mapdata.DataModeAll.String(),
		Nodes:     uint64(im.stats.Nodes),
		Ways:      uint64(im.stats.Ways),
		Areas:     uint64(im.stats.Areas),
		Optimized: im.cfg.WriteOptimized,
	}
	info.SetBoundingBox(im.stats.BBox)
	return dataset.WriteInfo(im.cfg.OutputDir, info)
}
