// Package osmconv converts OSM objects into map entities using the type
// registry: tagged nodes become MapNodes, ways become MapWays or simple
// areas, and multipolygon relations become multi-ring areas.
package osmconv

import (
	"strconv"
	"sync"

	"github.com/paulmach/osm"

	"github.com/wegman-software/mapfile-go/internal/geo"
	"github.com/wegman-software/mapfile-go/internal/mapdata"
	"github.com/wegman-software/mapfile-go/internal/typemeta"
)

// CoordLookup resolves an OSM node reference to a coordinate.
type CoordLookup func(nodeID int64) (geo.GeoPoint, bool)

// SerialAllocator hands out per-coordinate serial numbers so that distinct
// OSM nodes sharing one quantized position stay distinguishable. It is safe
// for concurrent use and is shared between all builders of an import run.
type SerialAllocator struct {
	mu   sync.Mutex
	seen map[uint64]uint8
}

// NewSerialAllocator creates an empty allocator.
func NewSerialAllocator() *SerialAllocator {
	return &SerialAllocator{seen: make(map[uint64]uint8)}
}

// Next returns the next serial for the coordinate. Serials wrap at 255; ids
// duplicated that often are beyond repair anyway.
func (a *SerialAllocator) Next(coord geo.GeoPoint) uint8 {
	id := coord.GetId()
	a.mu.Lock()
	a.seen[id]++
	serial := a.seen[id]
	a.mu.Unlock()
	return serial
}

// Builder converts OSM objects into entities. One builder per worker; the
// shared serial allocator keeps point ids unique across workers.
type Builder struct {
	reg     *typemeta.TypeRegistry
	serials *SerialAllocator
}

// NewBuilder creates a builder over the given type registry.
func NewBuilder(reg *typemeta.TypeRegistry, serials *SerialAllocator) *Builder {
	return &Builder{
		reg:     reg,
		serials: serials,
	}
}

// fillFeatures populates the buffer's feature slots from OSM tags.
func (b *Builder) fillFeatures(buf *typemeta.FeatureValueBuffer, t *typemeta.TypeInfo, tags map[string]string) {
	for i, f := range t.Features() {
		value, ok := tags[f.Tag]
		if !ok {
			continue
		}
		switch f.Kind {
		case typemeta.FeatureString:
			buf.Set(i, value)
		case typemeta.FeatureInt:
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				buf.Set(i, n)
			}
		case typemeta.FeatureFlag:
			if value == "yes" || value == "true" || value == "1" {
				buf.Set(i, true)
			}
		}
	}
}

// Node converts a tagged OSM node. It reports false for nodes matching no
// registered type.
func (b *Builder) Node(n *osm.Node) (*mapdata.MapNode, bool) {
	tags := n.Tags.Map()
	t := b.reg.ClassifyTags(typemeta.CategoryNode, tags)
	if t == nil {
		return nil, false
	}

	node := &mapdata.MapNode{
		Coord: geo.GeoPoint{Lat: n.Lat, Lon: n.Lon},
	}
	node.Features.SetType(t)
	b.fillFeatures(&node.Features, t, tags)
	return node, true
}

// Way converts an OSM way into either a polyline or, for closed ways
// matching an area type, a simple one-ring area. It reports false when a
// node reference cannot be resolved or no type matches.
func (b *Builder) Way(w *osm.Way, lookup CoordLookup) (*mapdata.MapWay, *mapdata.MapArea, bool) {
	tags := w.Tags.Map()

	points := make([]geo.GeoPointItem, 0, len(w.Nodes))
	for _, ref := range w.Nodes {
		coord, ok := lookup(int64(ref.ID))
		if !ok {
			return nil, nil, false
		}
		points = append(points, geo.GeoPointItem{Coord: coord})
	}
	if len(points) < 2 {
		return nil, nil, false
	}

	closed := len(points) > 3 && points[0].Coord == points[len(points)-1].Coord

	if closed {
		if t := b.reg.ClassifyTags(typemeta.CategoryArea, tags); t != nil {
			area := &mapdata.MapArea{
				Rings: []mapdata.MapAreaRing{{
					Ring:  mapdata.OuterRingId,
					Nodes: points,
				}},
			}
			area.Rings[0].Features.SetType(t)
			b.fillFeatures(&area.Rings[0].Features, t, tags)
			return nil, area, true
		}
	}

	t := b.reg.ClassifyTags(typemeta.CategoryWay, tags)
	if t == nil {
		return nil, nil, false
	}

	if t.CanRoute() || t.OptimizeLowZoom() {
		for i := range points {
			points[i].Serial = b.serials.Next(points[i].Coord)
		}
	}

	way := &mapdata.MapWay{Nodes: points}
	way.Features.SetType(t)
	b.fillFeatures(&way.Features, t, tags)
	return way, nil, true
}
