package mapdata

import (
	"fmt"

	"github.com/wegman-software/mapfile-go/internal/filestream"
	"github.com/wegman-software/mapfile-go/internal/geo"
	"github.com/wegman-software/mapfile-go/internal/geodesy"
	"github.com/wegman-software/mapfile-go/internal/typemeta"
)

// MapWay is a feature-tagged open or closed polyline. The bounding box and
// the per-segment boxes are derived caches over Nodes: they are filled
// lazily on first access and must be invalidated whenever Nodes changes.
// First-time cache computation is not safe for concurrent use on a shared
// instance.
type MapWay struct {
	FileOffset     uint64
	NextFileOffset uint64

	Features typemeta.FeatureValueBuffer
	Nodes    []geo.GeoPointItem

	bbox        geo.GeoBox
	segments    []geo.SegmentGeoBox
	hasSegments bool
}

// Type returns the way's resolved type.
func (w *MapWay) Type() *typemeta.TypeInfo {
	return w.Features.Type()
}

// IsClosed reports whether first and last point coincide.
func (w *MapWay) IsClosed() bool {
	return len(w.Nodes) > 2 && w.Nodes[0].Coord == w.Nodes[len(w.Nodes)-1].Coord
}

// GetBoundingBox returns the way's bounding box, computing and caching it on
// first access.
func (w *MapWay) GetBoundingBox() geo.GeoBox {
	if !w.bbox.IsValid() {
		w.bbox = geo.BoxForPoints(w.Nodes, 0, len(w.Nodes)-1)
	}
	return w.bbox
}

// GetSegmentBoxes returns the per-segment bounding boxes used to accelerate
// intersection tests, computing and caching them on first access.
func (w *MapWay) GetSegmentBoxes() []geo.SegmentGeoBox {
	if !w.hasSegments {
		w.segments = geo.ComputeSegmentBoxes(w.Nodes)
		w.hasSegments = true
	}
	return w.segments
}

// InvalidateCaches drops the derived bounding box and segment boxes. Must be
// called after mutating Nodes.
func (w *MapWay) InvalidateCaches() {
	w.bbox.Invalidate()
	w.segments = nil
	w.hasSegments = false
}

// GetIntersection tests the segment a-b against the way, consulting the
// segment boxes so that long ways far from the segment are rejected without
// scanning every coordinate.
func (w *MapWay) GetIntersection(a, b geo.GeoPoint) (geo.GeoPoint, bool) {
	segBox := geo.NewGeoBox(a, b)

	for _, seg := range w.GetSegmentBoxes() {
		if !seg.BBox.IsIntersects(segBox, false) {
			continue
		}
		for i := seg.From; i < seg.To-1; i++ {
			p, ok := geodesy.GetLineIntersection(w.Nodes[i].Coord, w.Nodes[i+1].Coord, a, b)
			if ok {
				return p, true
			}
		}
	}

	return geo.GeoPoint{}, false
}

// Read decodes a way from the scanner's current position; the id-persistence
// decision follows the DataMode policy for the resolved type. Failures are
// fatal for the entity.
func (w *MapWay) Read(reg *typemeta.TypeRegistry, s *filestream.FileScanner, mode DataMode) error {
	w.FileOffset = s.Position()

	id, err := s.ReadTypeId(reg.TypeIdBytes(typemeta.CategoryWay))
	if err != nil {
		return err
	}
	t, err := reg.TypeForId(typemeta.CategoryWay, id)
	if err != nil {
		return err
	}
	if t.IsIgnore() {
		return fmt.Errorf("way at offset %d has no type", w.FileOffset)
	}

	w.Features.SetType(t)
	if err := w.Features.Read(s); err != nil {
		return err
	}

	w.Nodes, w.bbox, w.segments, err = s.ReadMapPoints(useIds(mode, t))
	if err != nil {
		return err
	}
	w.hasSegments = true

	w.NextFileOffset = s.Position()
	return nil
}

// Write encodes the way symmetrically to Read.
func (w *MapWay) Write(reg *typemeta.TypeRegistry, fw *filestream.FileWriter, mode DataMode) error {
	t := w.Features.Type()
	if t == nil || t.IsIgnore() {
		return fmt.Errorf("way has no type")
	}

	w.FileOffset = fw.Position()

	if err := fw.WriteTypeId(t.Id(typemeta.CategoryWay), reg.TypeIdBytes(typemeta.CategoryWay)); err != nil {
		return err
	}
	if err := w.Features.Write(fw); err != nil {
		return err
	}
	if err := fw.WriteMapPoints(w.Nodes, useIds(mode, t)); err != nil {
		return err
	}

	w.NextFileOffset = fw.Position()
	return nil
}
