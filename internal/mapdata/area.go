package mapdata

import (
	"fmt"

	"github.com/wegman-software/mapfile-go/internal/filestream"
	"github.com/wegman-software/mapfile-go/internal/geo"
	"github.com/wegman-software/mapfile-go/internal/typemeta"
)

// Ring numbers with a fixed meaning. Numbers above OuterRingId describe
// caller-defined ring hierarchies (holes and islands).
const (
	// MasterRingId marks a geometry-less ring carrying only
	// relation-level tags.
	MasterRingId uint8 = 0
	// OuterRingId marks a real outer boundary ring.
	OuterRingId uint8 = 1
)

// RingRole classifies a ring by its number.
type RingRole int

const (
	RingMaster RingRole = iota
	RingOuter
	RingInner
)

// MapAreaRing is one ring of a multi-ring area: its own feature values, its
// ring number, and its own point sequence with derived caches.
type MapAreaRing struct {
	Features typemeta.FeatureValueBuffer
	Ring     uint8
	Nodes    []geo.GeoPointItem

	bbox        geo.GeoBox
	segments    []geo.SegmentGeoBox
	hasSegments bool
}

// Role returns the ring's role derived from its number.
func (r *MapAreaRing) Role() RingRole {
	switch r.Ring {
	case MasterRingId:
		return RingMaster
	case OuterRingId:
		return RingOuter
	}
	return RingInner
}

// IsMaster reports whether this is the geometry-less master ring.
func (r *MapAreaRing) IsMaster() bool { return r.Ring == MasterRingId }

// IsOuter reports whether this is an outer boundary ring.
func (r *MapAreaRing) IsOuter() bool { return r.Ring == OuterRingId }

// GetBoundingBox returns the ring's bounding box, computed and cached on
// first access.
func (r *MapAreaRing) GetBoundingBox() geo.GeoBox {
	if !r.bbox.IsValid() {
		r.bbox = geo.BoxForPoints(r.Nodes, 0, len(r.Nodes)-1)
	}
	return r.bbox
}

// GetSegmentBoxes returns the ring's per-segment boxes, computed and cached
// on first access.
func (r *MapAreaRing) GetSegmentBoxes() []geo.SegmentGeoBox {
	if !r.hasSegments {
		r.segments = geo.ComputeSegmentBoxes(r.Nodes)
		r.hasSegments = true
	}
	return r.segments
}

// InvalidateCaches drops the derived caches. Must be called after mutating
// Nodes.
func (r *MapAreaRing) InvalidateCaches() {
	r.bbox.Invalidate()
	r.segments = nil
	r.hasSegments = false
}

// MapArea is one (possibly multi-polygon) area of one or more rings. A
// "simple" area has exactly one ring. When ring 0 is a master ring it
// carries only relation-level tags and ring 1 is the first real boundary.
type MapArea struct {
	FileOffset     uint64
	NextFileOffset uint64

	Rings []MapAreaRing
}

// Type returns the area's type, taken from ring 0.
func (a *MapArea) Type() *typemeta.TypeInfo {
	if len(a.Rings) == 0 {
		return nil
	}
	return a.Rings[0].Features.Type()
}

// IsSimple reports whether the area consists of a single ring.
func (a *MapArea) IsSimple() bool {
	return len(a.Rings) == 1
}

// GetBoundingBox unions the bounding boxes of the outer rings only; holes
// and the master ring do not contribute.
func (a *MapArea) GetBoundingBox() geo.GeoBox {
	var box geo.GeoBox
	for i := range a.Rings {
		if a.Rings[i].IsOuter() {
			box.Include(a.Rings[i].GetBoundingBox())
		}
	}
	return box
}

// GetCenter returns the midpoint of the outer rings' combined extent. It
// reports false for an area without outer rings.
func (a *MapArea) GetCenter() (geo.GeoPoint, bool) {
	box := a.GetBoundingBox()
	if !box.IsValid() {
		return geo.GeoPoint{}, false
	}
	return box.GetCenter(), true
}

// Read decodes an area from the scanner's current position.
//
// Ring 0 is read as a type id plus a feature buffer carrying the
// multiple-rings and has-master flags. When rings follow, their count is
// stored as count-1. Each subsequent ring reads a type id (possibly the
// ignore sentinel, in which case no feature buffer follows), a ring-number
// byte, and its point sequence. Any failure is fatal for the whole entity.
func (a *MapArea) Read(reg *typemeta.TypeRegistry, s *filestream.FileScanner, mode DataMode) error {
	a.FileOffset = s.Position()
	width := reg.TypeIdBytes(typemeta.CategoryArea)

	id, err := s.ReadTypeId(width)
	if err != nil {
		return err
	}
	t, err := reg.TypeForId(typemeta.CategoryArea, id)
	if err != nil {
		return err
	}
	if t.IsIgnore() {
		return fmt.Errorf("area at offset %d has no type", a.FileOffset)
	}

	var ring0 MapAreaRing
	ring0.Features.SetType(t)
	multipleRings, hasMaster, err := ring0.Features.ReadWithFlags(s)
	if err != nil {
		return err
	}

	ringCount := 1
	if multipleRings {
		additional, err := s.ReadNumber()
		if err != nil {
			return err
		}
		ringCount = int(additional) + 2
		if uint64(ringCount) > s.Size() {
			return fmt.Errorf("malformed ring count %d at offset %d", ringCount, a.FileOffset)
		}
	}

	if hasMaster {
		ring0.Ring = MasterRingId
	} else {
		ring0.Ring = OuterRingId
	}

	ring0.Nodes, ring0.bbox, ring0.segments, err = s.ReadMapPoints(useIds(mode, t))
	if err != nil {
		return err
	}
	ring0.hasSegments = true

	a.Rings = make([]MapAreaRing, ringCount)
	a.Rings[0] = ring0

	for i := 1; i < ringCount; i++ {
		ring := &a.Rings[i]

		ringTypeId, err := s.ReadTypeId(width)
		if err != nil {
			return err
		}
		ringType, err := reg.TypeForId(typemeta.CategoryArea, ringTypeId)
		if err != nil {
			return err
		}

		ring.Features.SetType(ringType)
		if !ringType.IsIgnore() {
			if err := ring.Features.Read(s); err != nil {
				return err
			}
		}

		if ring.Ring, err = s.ReadUint8(); err != nil {
			return err
		}

		ring.Nodes, ring.bbox, ring.segments, err = s.ReadMapPoints(useRingIds(mode, ringType, ring.IsOuter()))
		if err != nil {
			return err
		}
		ring.hasSegments = true
	}

	a.NextFileOffset = s.Position()
	return nil
}

// Write encodes the area symmetrically to Read. The multiple-rings and
// has-master flags are derived from the ring structure itself.
func (a *MapArea) Write(reg *typemeta.TypeRegistry, w *filestream.FileWriter, mode DataMode) error {
	if len(a.Rings) == 0 {
		return fmt.Errorf("area has no rings")
	}
	t := a.Rings[0].Features.Type()
	if t == nil || t.IsIgnore() {
		return fmt.Errorf("area ring 0 has no type")
	}

	a.FileOffset = w.Position()
	width := reg.TypeIdBytes(typemeta.CategoryArea)

	multipleRings := len(a.Rings) > 1
	hasMaster := a.Rings[0].IsMaster()

	if err := w.WriteTypeId(t.Id(typemeta.CategoryArea), width); err != nil {
		return err
	}
	if err := a.Rings[0].Features.WriteWithFlags(w, multipleRings, hasMaster); err != nil {
		return err
	}
	if multipleRings {
		if err := w.WriteNumber(uint64(len(a.Rings) - 2)); err != nil {
			return err
		}
	}
	if err := w.WriteMapPoints(a.Rings[0].Nodes, useIds(mode, t)); err != nil {
		return err
	}

	for i := 1; i < len(a.Rings); i++ {
		ring := &a.Rings[i]
		ringType := ring.Features.Type()
		if ringType == nil {
			ringType = reg.IgnoreType()
			ring.Features.SetType(ringType)
		}

		if err := w.WriteTypeId(ringType.Id(typemeta.CategoryArea), width); err != nil {
			return err
		}
		if !ringType.IsIgnore() {
			if err := ring.Features.Write(w); err != nil {
				return err
			}
		}
		if err := w.WriteUint8(ring.Ring); err != nil {
			return err
		}
		if err := w.WriteMapPoints(ring.Nodes, useRingIds(mode, ringType, ring.IsOuter())); err != nil {
			return err
		}
	}

	a.NextFileOffset = w.Position()
	return nil
}

// ReadImport decodes an area from full import data (mode All).
func (a *MapArea) ReadImport(reg *typemeta.TypeRegistry, s *filestream.FileScanner) error {
	return a.Read(reg, s, DataModeAll)
}

// WriteImport encodes an area as full import data (mode All).
func (a *MapArea) WriteImport(reg *typemeta.TypeRegistry, w *filestream.FileWriter) error {
	return a.Write(reg, w, DataModeAll)
}

// ReadOptimized decodes an area from the size-optimized low-zoom data (mode
// None).
func (a *MapArea) ReadOptimized(reg *typemeta.TypeRegistry, s *filestream.FileScanner) error {
	return a.Read(reg, s, DataModeNone)
}

// WriteOptimized encodes an area as size-optimized low-zoom data (mode
// None).
func (a *MapArea) WriteOptimized(reg *typemeta.TypeRegistry, w *filestream.FileWriter) error {
	return a.Write(reg, w, DataModeNone)
}
