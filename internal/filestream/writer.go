// Package filestream provides the typed sequential reader and writer used by
// the map data file format: variable-length numbers, fixed-width type ids,
// packed 7-byte coordinates and point sequences with optional stable ids.
package filestream

import (
	"bufio"
	"fmt"
	"os"

	"github.com/wegman-software/mapfile-go/internal/geo"
)

// FileWriter writes typed values sequentially to a map data file, tracking
// the absolute byte position of the next write.
type FileWriter struct {
	file *os.File
	buf  *bufio.Writer
	pos  uint64
}

// NewFileWriter creates (or truncates) the file at path for writing.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create data file: %w", err)
	}

	return &FileWriter{
		file: f,
		buf:  bufio.NewWriterSize(f, 64*1024),
	}, nil
}

// Position returns the absolute offset of the next byte to be written.
func (w *FileWriter) Position() uint64 {
	return w.pos
}

// Close flushes buffered data and closes the file.
func (w *FileWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush data file: %w", err)
	}
	return w.file.Close()
}

// WriteBytes writes the given bytes verbatim.
func (w *FileWriter) WriteBytes(p []byte) error {
	n, err := w.buf.Write(p)
	w.pos += uint64(n)
	if err != nil {
		return fmt.Errorf("write failed at offset %d: %w", w.pos, err)
	}
	return nil
}

// WriteUint8 writes a single byte.
func (w *FileWriter) WriteUint8(v uint8) error {
	return w.WriteBytes([]byte{v})
}

// WriteUint16 writes a little-endian 16-bit value.
func (w *FileWriter) WriteUint16(v uint16) error {
	return w.WriteBytes([]byte{byte(v), byte(v >> 8)})
}

// WriteBool writes a boolean as one byte.
func (w *FileWriter) WriteBool(v bool) error {
	if v {
		return w.WriteUint8(1)
	}
	return w.WriteUint8(0)
}

// WriteNumber writes an unsigned variable-length number, 7 bits per byte
// with the high bit as continuation flag.
func (w *FileWriter) WriteNumber(v uint64) error {
	var buf [10]byte
	n := 0
	for v >= 0x80 {
		buf[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	buf[n] = byte(v)
	return w.WriteBytes(buf[:n+1])
}

// WriteSignedNumber writes a signed number using zigzag encoding.
func (w *FileWriter) WriteSignedNumber(v int64) error {
	return w.WriteNumber(uint64(v)<<1 ^ uint64(v>>63))
}

// WriteString writes a length-prefixed string.
func (w *FileWriter) WriteString(s string) error {
	if err := w.WriteNumber(uint64(len(s))); err != nil {
		return err
	}
	return w.WriteBytes([]byte(s))
}

// WriteTypeId writes a type id of the given byte width (1 or 2,
// little-endian).
func (w *FileWriter) WriteTypeId(id uint16, width uint8) error {
	switch width {
	case 1:
		if id > 0xff {
			return fmt.Errorf("type id %d does not fit 1 byte", id)
		}
		return w.WriteUint8(uint8(id))
	case 2:
		return w.WriteUint16(id)
	default:
		return fmt.Errorf("unsupported type id width %d", width)
	}
}

// WriteCoord writes a coordinate in the packed 7-byte format.
func (w *FileWriter) WriteCoord(p geo.GeoPoint) error {
	var buf [geo.CoordBufferSize]byte
	if !p.Pack(buf[:]) {
		return fmt.Errorf("coordinate %v out of range", p)
	}
	return w.WriteBytes(buf[:])
}

// WriteMapPoints writes a point sequence: a point count, the packed
// coordinates, and, when useIds is set, a sparse table of the nonzero
// serial numbers as (index, serial) pairs.
func (w *FileWriter) WriteMapPoints(points []geo.GeoPointItem, useIds bool) error {
	if err := w.WriteNumber(uint64(len(points))); err != nil {
		return err
	}

	for _, p := range points {
		if err := w.WriteCoord(p.Coord); err != nil {
			return err
		}
	}

	if !useIds {
		return nil
	}

	relevant := 0
	for _, p := range points {
		if p.Serial != 0 {
			relevant++
		}
	}
	if err := w.WriteNumber(uint64(relevant)); err != nil {
		return err
	}
	for i, p := range points {
		if p.Serial == 0 {
			continue
		}
		if err := w.WriteNumber(uint64(i)); err != nil {
			return err
		}
		if err := w.WriteUint8(p.Serial); err != nil {
			return err
		}
	}

	return nil
}
