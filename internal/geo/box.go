package geo

import "fmt"

// GeoBox is an axis-aligned geographic bounding box. The zero value is
// invalid; invalid boxes act as identity elements under Include and never
// satisfy containment or intersection queries. Min/max corners are
// normalized on construction.
type GeoBox struct {
	minCoord GeoPoint
	maxCoord GeoPoint
	valid    bool
}

// NewGeoBox creates a valid box spanning the two given corners.
func NewGeoBox(a, b GeoPoint) GeoBox {
	var box GeoBox
	box.SetValue(a, b)
	return box
}

// Invalidate resets the box to the invalid zero state.
func (b *GeoBox) Invalidate() {
	*b = GeoBox{}
}

// IsValid reports whether the box describes an actual region.
func (b GeoBox) IsValid() bool {
	return b.valid
}

// SetValue sets the box to span the two given corners, normalizing min/max.
func (b *GeoBox) SetValue(a, c GeoPoint) {
	b.minCoord = GeoPoint{Lat: min(a.Lat, c.Lat), Lon: min(a.Lon, c.Lon)}
	b.maxCoord = GeoPoint{Lat: max(a.Lat, c.Lat), Lon: max(a.Lon, c.Lon)}
	b.valid = true
}

// Include grows the box to cover other. Including an invalid box is a no-op;
// including into an invalid box adopts the operand.
func (b *GeoBox) Include(other GeoBox) {
	if !other.valid {
		return
	}
	if !b.valid {
		*b = other
		return
	}

	b.minCoord.Lat = min(b.minCoord.Lat, other.minCoord.Lat)
	b.minCoord.Lon = min(b.minCoord.Lon, other.minCoord.Lon)
	b.maxCoord.Lat = max(b.maxCoord.Lat, other.maxCoord.Lat)
	b.maxCoord.Lon = max(b.maxCoord.Lon, other.maxCoord.Lon)
}

// IncludePoint grows the box to cover the given point.
func (b *GeoBox) IncludePoint(p GeoPoint) {
	if !b.valid {
		b.SetValue(p, p)
		return
	}

	b.minCoord.Lat = min(b.minCoord.Lat, p.Lat)
	b.minCoord.Lon = min(b.minCoord.Lon, p.Lon)
	b.maxCoord.Lat = max(b.maxCoord.Lat, p.Lat)
	b.maxCoord.Lon = max(b.maxCoord.Lon, p.Lon)
}

// IsIncludes reports whether the box contains the point. With openInterval
// the box is treated as [min,max) on both axes, otherwise as [min,max].
func (b GeoBox) IsIncludes(p GeoPoint, openInterval bool) bool {
	if !b.valid {
		return false
	}

	if openInterval {
		return p.Lat >= b.minCoord.Lat && p.Lat < b.maxCoord.Lat &&
			p.Lon >= b.minCoord.Lon && p.Lon < b.maxCoord.Lon
	}

	return p.Lat >= b.minCoord.Lat && p.Lat <= b.maxCoord.Lat &&
		p.Lon >= b.minCoord.Lon && p.Lon <= b.maxCoord.Lon
}

// IsIntersects reports whether the two boxes overlap. The open-interval
// branch keeps the historical on-disk comparison operators, which are not
// the exact strict counterparts of the closed branch.
func (b GeoBox) IsIntersects(other GeoBox, openInterval bool) bool {
	if !b.valid || !other.valid {
		return false
	}

	if openInterval {
		return !(other.maxCoord.Lon < b.minCoord.Lon ||
			other.minCoord.Lon >= b.maxCoord.Lon ||
			other.maxCoord.Lat < b.minCoord.Lat ||
			other.minCoord.Lat >= b.maxCoord.Lat)
	}

	return !(other.maxCoord.Lon < b.minCoord.Lon ||
		other.minCoord.Lon > b.maxCoord.Lon ||
		other.maxCoord.Lat < b.minCoord.Lat ||
		other.minCoord.Lat > b.maxCoord.Lat)
}

// GetIntersection returns the overlapping region of the two boxes, or an
// invalid box when they do not intersect.
func (b GeoBox) GetIntersection(other GeoBox) GeoBox {
	if !b.IsIntersects(other, false) {
		return GeoBox{}
	}

	return GeoBox{
		minCoord: GeoPoint{
			Lat: max(b.minCoord.Lat, other.minCoord.Lat),
			Lon: max(b.minCoord.Lon, other.minCoord.Lon),
		},
		maxCoord: GeoPoint{
			Lat: min(b.maxCoord.Lat, other.maxCoord.Lat),
			Lon: min(b.maxCoord.Lon, other.maxCoord.Lon),
		},
		valid: true,
	}
}

// GetMinCoord returns the (south-west) minimum corner.
func (b GeoBox) GetMinCoord() GeoPoint { return b.minCoord }

// GetMaxCoord returns the (north-east) maximum corner.
func (b GeoBox) GetMaxCoord() GeoPoint { return b.maxCoord }

// GetTopLeft returns the north-west corner.
func (b GeoBox) GetTopLeft() GeoPoint {
	return GeoPoint{Lat: b.maxCoord.Lat, Lon: b.minCoord.Lon}
}

// GetBottomRight returns the south-east corner.
func (b GeoBox) GetBottomRight() GeoPoint {
	return GeoPoint{Lat: b.minCoord.Lat, Lon: b.maxCoord.Lon}
}

// GetCenter returns the midpoint of the box.
func (b GeoBox) GetCenter() GeoPoint {
	return GeoPoint{
		Lat: (b.minCoord.Lat + b.maxCoord.Lat) / 2,
		Lon: (b.minCoord.Lon + b.maxCoord.Lon) / 2,
	}
}

// GetWidth returns the longitude span in degrees.
func (b GeoBox) GetWidth() float64 { return b.maxCoord.Lon - b.minCoord.Lon }

// GetHeight returns the latitude span in degrees.
func (b GeoBox) GetHeight() float64 { return b.maxCoord.Lat - b.minCoord.Lat }

// String implements fmt.Stringer.
func (b GeoBox) String() string {
	if !b.valid {
		return "[invalid]"
	}
	return fmt.Sprintf("[%s - %s]", b.minCoord, b.maxCoord)
}

// BoxForPoints computes the bounding box of points[from..to] (inclusive),
// with the index range clamped to the slice bounds. An empty effective range
// yields an invalid box.
func BoxForPoints(points []GeoPointItem, from, to int) GeoBox {
	if from < 0 {
		from = 0
	}
	if to > len(points)-1 {
		to = len(points) - 1
	}

	var box GeoBox
	for i := from; i <= to; i++ {
		box.IncludePoint(points[i].Coord)
	}
	return box
}

// SegmentGeoBox is the bounding box of one contiguous run of points inside a
// larger point sequence. From is inclusive, To exclusive.
type SegmentGeoBox struct {
	From int
	To   int
	BBox GeoBox
}

// segmentSpan is the number of points covered by one segment box.
const segmentSpan = 64

// ComputeSegmentBoxes splits the point sequence into runs of segmentSpan
// points and computes a bounding box per run. Consecutive runs share their
// boundary point so that every line segment is covered by exactly one box.
func ComputeSegmentBoxes(points []GeoPointItem) []SegmentGeoBox {
	if len(points) < 2 {
		return nil
	}

	segments := make([]SegmentGeoBox, 0, len(points)/segmentSpan+1)
	for from := 0; from < len(points)-1; from += segmentSpan {
		to := from + segmentSpan
		if to > len(points)-1 {
			to = len(points) - 1
		}
		segments = append(segments, SegmentGeoBox{
			From: from,
			To:   to + 1,
			BBox: BoxForPoints(points, from, to),
		})
	}
	return segments
}
