package geo

// On-disk coordinate layout, 7 bytes per point:
//
//	bytes 0-2  latValue bits 0-23, little-endian
//	bytes 3-5  lonValue bits 0-23, little-endian
//	byte 6     latValue bits 24-26 in the low nibble,
//	           lonValue bits 24-26 in the high nibble
//
// The layout is a bit-exact file format contract; both quantized values fit
// 27 bits so the nibble masks never truncate.

// Pack encodes the point into buf, which must hold at least CoordBufferSize
// bytes. It returns false for out-of-range coordinates or a short buffer and
// writes nothing in that case.
func (p GeoPoint) Pack(buf []byte) bool {
	if !p.IsValid() || len(buf) < CoordBufferSize {
		return false
	}

	la := p.latValue()
	lo := p.lonValue()

	buf[0] = byte(la)
	buf[1] = byte(la >> 8)
	buf[2] = byte(la >> 16)
	buf[3] = byte(lo)
	buf[4] = byte(lo >> 8)
	buf[5] = byte(lo >> 16)
	buf[6] = byte((la>>24)&0x0f) | byte((lo>>24)&0x0f)<<4

	return true
}

// UnpackGeoPoint decodes a coordinate packed by Pack. Round-tripping
// reproduces the original coordinate to the codec's quantization step;
// repeated pack/unpack cycles are idempotent after the first quantization.
func UnpackGeoPoint(buf []byte) (GeoPoint, bool) {
	if len(buf) < CoordBufferSize {
		return GeoPoint{}, false
	}

	la := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[6]&0x0f)<<24
	lo := uint32(buf[3]) | uint32(buf[4])<<8 | uint32(buf[5])<<16 | uint32(buf[6]>>4)<<24

	return GeoPoint{
		Lat: float64(la)/latConversionFactor - 90.0,
		Lon: float64(lo)/lonConversionFactor - 180.0,
	}, true
}
