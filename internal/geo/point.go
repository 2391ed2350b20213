package geo

import (
	"fmt"
	"math"
)

// Coordinate quantization factors. Latitude and longitude are each stored
// with 27 bits of resolution over their full WGS84 ranges.
const (
	latConversionFactor = 134217727.0 / 180.0 // (2^27-1) / 180
	lonConversionFactor = 134217727.0 / 360.0 // (2^27-1) / 360

	// CoordBufferSize is the exact on-disk size of one packed coordinate.
	CoordBufferSize = 7
)

// GeoPoint is a WGS84 coordinate pair in degrees. It is an immutable value
// type compared by exact field equality.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// NewGeoPoint creates a point from latitude and longitude in degrees.
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Lat: lat, Lon: lon}
}

// IsValid reports whether the point lies within the WGS84 coordinate ranges
// (latitude [-90,90], longitude [-180,180]).
func (p GeoPoint) IsValid() bool {
	return p.Lat >= -90.0 && p.Lat <= 90.0 && p.Lon >= -180.0 && p.Lon <= 180.0
}

// latValue returns the 27-bit quantized latitude.
func (p GeoPoint) latValue() uint32 {
	return uint32(math.Round((p.Lat + 90.0) * latConversionFactor))
}

// lonValue returns the 27-bit quantized longitude.
func (p GeoPoint) lonValue() uint32 {
	return uint32(math.Round((p.Lon + 180.0) * lonConversionFactor))
}

// GetId returns a 56-bit identifier derived from the quantized coordinate.
// The identifier reassembles the packed byte groups (see Pack) with latitude
// and longitude bytes alternating, so two points that quantize to the same
// 27-bit values always produce the same id. Beyond shared high bytes there is
// no ordering relation between ids and geographic proximity.
func (p GeoPoint) GetId() uint64 {
	la := uint64(p.latValue())
	lo := uint64(p.lonValue())

	return (lo&0xff)<<0 |
		(la&0xff)<<8 |
		((lo>>8)&0xff)<<16 |
		((la>>8)&0xff)<<24 |
		((lo>>16)&0xff)<<32 |
		((la>>16)&0xff)<<40 |
		(((la>>24)&0x07)|((lo>>24)&0x07)<<4)<<48
}

// GetHash returns a Morton (Z-order) interleave of the quantized coordinate.
// Latitude bits occupy the even output positions, longitude bits the odd
// ones, from most to least significant. Unlike GetId the result is locality
// sensitive and suited for spatial hashing.
func (p GeoPoint) GetHash() uint64 {
	la := uint64(p.latValue())
	lo := uint64(p.lonValue())

	var hash uint64
	for i := uint(0); i < 27; i++ {
		hash |= ((la >> i) & 1) << (2 * i)
		hash |= ((lo >> i) & 1) << (2*i + 1)
	}

	return hash
}

// GetDisplayText formats the point as "DD.DDDDD N|S DDD.DDDDD E|W".
func (p GeoPoint) GetDisplayText() string {
	latHem := "N"
	if p.Lat < 0 {
		latHem = "S"
	}
	lonHem := "E"
	if p.Lon < 0 {
		lonHem = "W"
	}

	return fmt.Sprintf("%.5f %s %.5f %s", math.Abs(p.Lat), latHem, math.Abs(p.Lon), lonHem)
}

// String implements fmt.Stringer.
func (p GeoPoint) String() string {
	return p.GetDisplayText()
}

// GeoPointItem is a coordinate plus an 8-bit serial number disambiguating
// nodes that share the exact same position. Serial 0 means the point is not
// individually relevant and carries no stable identity of its own.
type GeoPointItem struct {
	Coord  GeoPoint
	Serial uint8
}

// GetId combines the coordinate's 56-bit id with the serial in the low byte.
func (i GeoPointItem) GetId() uint64 {
	return i.Coord.GetId()<<8 | uint64(i.Serial)
}

// IsRelevant reports whether the point carries a stable identity.
func (i GeoPointItem) IsRelevant() bool {
	return i.Serial != 0
}
