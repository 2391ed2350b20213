package osmconv

import (
	"github.com/paulmach/osm"

	"github.com/wegman-software/mapfile-go/internal/geo"
	"github.com/wegman-software/mapfile-go/internal/mapdata"
	"github.com/wegman-software/mapfile-go/internal/typemeta"
)

// RingGeometry resolves a member way id to its point sequence.
type RingGeometry func(wayID int64) ([]geo.GeoPointItem, bool)

// IsMultipolygon reports whether the relation describes an area.
func IsMultipolygon(rel *osm.Relation) bool {
	t := rel.Tags.Find("type")
	return t == "multipolygon" || t == "boundary"
}

// MemberWayIDs returns the way members contributing ring geometry.
func MemberWayIDs(rel *osm.Relation) []int64 {
	var ids []int64
	for _, m := range rel.Members {
		if m.Type == osm.TypeWay && (m.Role == "outer" || m.Role == "inner" || m.Role == "") {
			ids = append(ids, m.Ref)
		}
	}
	return ids
}

// Relation assembles a multipolygon relation into a multi-ring area: ring 0
// is a geometry-less master ring carrying the relation-level tags, outer
// members become ring 1, inner members ring 2. It reports false when the
// relation matches no area type or no outer ring geometry is available.
func (b *Builder) Relation(rel *osm.Relation, geom RingGeometry) (*mapdata.MapArea, bool) {
	if !IsMultipolygon(rel) {
		return nil, false
	}

	tags := rel.Tags.Map()
	t := b.reg.ClassifyTags(typemeta.CategoryArea, tags)
	if t == nil {
		return nil, false
	}

	area := &mapdata.MapArea{
		Rings: []mapdata.MapAreaRing{{Ring: mapdata.MasterRingId}},
	}
	area.Rings[0].Features.SetType(t)
	b.fillFeatures(&area.Rings[0].Features, t, tags)

	outers := 0
	for _, m := range rel.Members {
		if m.Type != osm.TypeWay {
			continue
		}

		points, ok := geom(m.Ref)
		if !ok || len(points) < 3 {
			continue
		}

		ring := mapdata.MapAreaRing{Nodes: points}
		switch m.Role {
		case "inner":
			ring.Ring = mapdata.OuterRingId + 1
		default:
			// outer or untagged members form boundaries
			ring.Ring = mapdata.OuterRingId
			outers++
		}
		ring.Features.SetType(b.reg.IgnoreType())

		area.Rings = append(area.Rings, ring)
	}

	if outers == 0 {
		return nil, false
	}

	return area, true
}
