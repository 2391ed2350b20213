package tile

import (
	"fmt"
	"math"

	"github.com/wegman-software/mapfile-go/internal/geo"
)

// OSMTileId addresses one tile in the Web Mercator slippy scheme. A tile id
// is only meaningful relative to a magnification: the same (x,y) pair covers
// different ground areas at different magnifications and must never be
// compared across them.
type OSMTileId struct {
	X uint32
	Y uint32
}

// String implements fmt.Stringer.
func (t OSMTileId) String() string {
	return fmt.Sprintf("%d,%d", t.X, t.Y)
}

// Web Mercator constants
const (
	// Maximum latitude representable in Web Mercator (approximately 85.051129°)
	MaxMercatorLat = 85.0511287798
	// Minimum latitude representable in Web Mercator
	MinMercatorLat = -85.0511287798
)

// GetOSMTile returns the tile containing coord at the given magnification.
// Latitudes outside the Mercator range map to the first/last tile row, and
// the grid's east/south edges belong to the last tile.
func GetOSMTile(mag Magnification, coord geo.GeoPoint) OSMTileId {
	lat := coord.Lat
	if lat > MaxMercatorLat {
		lat = MaxMercatorLat
	}
	if lat < MinMercatorLat {
		lat = MinMercatorLat
	}

	lon := coord.Lon
	if lon < -180 {
		lon = -180
	}
	if lon > 180 {
		lon = 180
	}

	scale := float64(mag.Value())
	latRad := lat * math.Pi / 180.0

	x := (lon + 180.0) / 360.0 * scale
	if x >= scale {
		x = scale - 1
	}

	y := (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * scale
	if y >= scale {
		y = scale - 1
	}
	if y < 0 {
		y = 0
	}

	return OSMTileId{X: uint32(x), Y: uint32(y)}
}

// GetTopLeftCoord returns the ground coordinate of the tile's north-west
// corner at the given magnification.
func (t OSMTileId) GetTopLeftCoord(mag Magnification) geo.GeoPoint {
	scale := float64(mag.Value())
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*float64(t.Y)/scale)))

	return geo.GeoPoint{
		Lat: latRad * 180.0 / math.Pi,
		Lon: float64(t.X)/scale*360.0 - 180.0,
	}
}

// GetBoundingBox returns the tile's ground rectangle. The bottom-right
// corner is the top-left corner of tile (x+1, y+1), so adjacent tiles share
// exact edges.
func (t OSMTileId) GetBoundingBox(mag Magnification) geo.GeoBox {
	next := OSMTileId{X: t.X + 1, Y: t.Y + 1}
	return geo.NewGeoBox(t.GetTopLeftCoord(mag), next.GetTopLeftCoord(mag))
}

// OSMTileIdBox is the inclusive rectangle of tiles between MinTile and
// MaxTile at one shared magnification.
type OSMTileIdBox struct {
	MinTile OSMTileId
	MaxTile OSMTileId
}

// NewOSMTileIdBox creates a tile box spanning the two given tiles.
func NewOSMTileIdBox(a, b OSMTileId) OSMTileIdBox {
	return OSMTileIdBox{
		MinTile: OSMTileId{X: min(a.X, b.X), Y: min(a.Y, b.Y)},
		MaxTile: OSMTileId{X: max(a.X, b.X), Y: max(a.Y, b.Y)},
	}
}

// GetOSMTileBox returns the tiles covering the given geographic box.
func GetOSMTileBox(mag Magnification, box geo.GeoBox) OSMTileIdBox {
	return NewOSMTileIdBox(
		GetOSMTile(mag, box.GetTopLeft()),
		GetOSMTile(mag, box.GetBottomRight()),
	)
}

// GetWidth returns the number of tile columns.
func (b OSMTileIdBox) GetWidth() uint32 {
	return b.MaxTile.X - b.MinTile.X + 1
}

// GetHeight returns the number of tile rows.
func (b OSMTileIdBox) GetHeight() uint32 {
	return b.MaxTile.Y - b.MinTile.Y + 1
}

// GetCount returns the number of tiles in the box.
func (b OSMTileIdBox) GetCount() uint32 {
	return b.GetWidth() * b.GetHeight()
}

// Contains reports whether the box covers the given tile.
func (b OSMTileIdBox) Contains(t OSMTileId) bool {
	return t.X >= b.MinTile.X && t.X <= b.MaxTile.X &&
		t.Y >= b.MinTile.Y && t.Y <= b.MaxTile.Y
}

// GetBoundingBox returns the ground rectangle covered by the whole box,
// derived the same way as for a single tile.
func (b OSMTileIdBox) GetBoundingBox(mag Magnification) geo.GeoBox {
	next := OSMTileId{X: b.MaxTile.X + 1, Y: b.MaxTile.Y + 1}
	return geo.NewGeoBox(b.MinTile.GetTopLeftCoord(mag), next.GetTopLeftCoord(mag))
}

// String implements fmt.Stringer.
func (b OSMTileIdBox) String() string {
	return fmt.Sprintf("[%s - %s]", b.MinTile, b.MaxTile)
}
