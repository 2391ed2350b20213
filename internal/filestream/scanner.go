package filestream

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/wegman-software/mapfile-go/internal/geo"
)

// FileScanner reads typed values sequentially from a map data file. It has
// two backends: a buffered sequential reader for full scans and a
// memory-mapped view for random access (SetPos is cheap there). Both track
// the absolute byte position of the next read.
type FileScanner struct {
	file *os.File
	buf  *bufio.Reader
	mm   mmap.MMap
	size uint64
	pos  uint64
}

// NewFileScanner opens the file for buffered sequential reading.
func NewFileScanner(path string) (*FileScanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat data file: %w", err)
	}

	return &FileScanner{
		file: f,
		buf:  bufio.NewReaderSize(f, 64*1024),
		size: uint64(info.Size()),
	}, nil
}

// NewMmapFileScanner opens the file as a read-only memory mapping, suited
// for offset-based random access.
func NewMmapFileScanner(path string) (*FileScanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap data file: %w", err)
	}

	return &FileScanner{
		file: f,
		mm:   mm,
		size: uint64(len(mm)),
	}, nil
}

// Position returns the absolute offset of the next byte to be read.
func (s *FileScanner) Position() uint64 {
	return s.pos
}

// Size returns the file size in bytes.
func (s *FileScanner) Size() uint64 {
	return s.size
}

// IsEOF reports whether the scanner has consumed the whole file.
func (s *FileScanner) IsEOF() bool {
	return s.pos >= s.size
}

// SetPos repositions the scanner to an absolute offset, typically a
// NextFileOffset recorded from a previously decoded entity.
func (s *FileScanner) SetPos(pos uint64) error {
	if pos > s.size {
		return fmt.Errorf("offset %d beyond end of file (%d)", pos, s.size)
	}
	if s.mm != nil {
		s.pos = pos
		return nil
	}

	if _, err := s.file.Seek(int64(pos), io.SeekStart); err != nil {
		return fmt.Errorf("seek to offset %d failed: %w", pos, err)
	}
	s.buf.Reset(s.file)
	s.pos = pos
	return nil
}

// Close unmaps (if mapped) and closes the file.
func (s *FileScanner) Close() error {
	if s.mm != nil {
		if err := s.mm.Unmap(); err != nil {
			s.file.Close()
			return err
		}
		s.mm = nil
	}
	return s.file.Close()
}

// readFull fills p from the current position or fails on a short read.
func (s *FileScanner) readFull(p []byte) error {
	if s.mm != nil {
		if s.pos+uint64(len(p)) > s.size {
			return fmt.Errorf("short read at offset %d: %w", s.pos, io.ErrUnexpectedEOF)
		}
		copy(p, s.mm[s.pos:s.pos+uint64(len(p))])
		s.pos += uint64(len(p))
		return nil
	}

	n, err := io.ReadFull(s.buf, p)
	s.pos += uint64(n)
	if err != nil {
		return fmt.Errorf("short read at offset %d: %w", s.pos, err)
	}
	return nil
}

// ReadBytes reads exactly n bytes.
func (s *FileScanner) ReadBytes(n int) ([]byte, error) {
	p := make([]byte, n)
	if err := s.readFull(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadUint8 reads a single byte.
func (s *FileScanner) ReadUint8() (uint8, error) {
	var b [1]byte
	if err := s.readFull(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a little-endian 16-bit value.
func (s *FileScanner) ReadUint16() (uint16, error) {
	var b [2]byte
	if err := s.readFull(b[:]); err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadBool reads a boolean byte.
func (s *FileScanner) ReadBool() (bool, error) {
	v, err := s.ReadUint8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadNumber reads an unsigned variable-length number.
func (s *FileScanner) ReadNumber() (uint64, error) {
	var value uint64
	var shift uint
	for i := 0; i < 10; i++ {
		b, err := s.ReadUint8()
		if err != nil {
			return 0, err
		}
		value |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return value, nil
		}
		shift += 7
	}
	return 0, fmt.Errorf("malformed number at offset %d", s.pos)
}

// ReadSignedNumber reads a zigzag-encoded signed number.
func (s *FileScanner) ReadSignedNumber() (int64, error) {
	v, err := s.ReadNumber()
	if err != nil {
		return 0, err
	}
	return int64(v>>1) ^ -int64(v&1), nil
}

// ReadString reads a length-prefixed string.
func (s *FileScanner) ReadString() (string, error) {
	n, err := s.ReadNumber()
	if err != nil {
		return "", err
	}
	if n > s.size {
		return "", fmt.Errorf("malformed string length %d at offset %d", n, s.pos)
	}
	p, err := s.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// ReadTypeId reads a type id of the given byte width.
func (s *FileScanner) ReadTypeId(width uint8) (uint16, error) {
	switch width {
	case 1:
		v, err := s.ReadUint8()
		return uint16(v), err
	case 2:
		return s.ReadUint16()
	default:
		return 0, fmt.Errorf("unsupported type id width %d", width)
	}
}

// ReadCoord reads a packed 7-byte coordinate.
func (s *FileScanner) ReadCoord() (geo.GeoPoint, error) {
	var buf [geo.CoordBufferSize]byte
	if err := s.readFull(buf[:]); err != nil {
		return geo.GeoPoint{}, err
	}
	p, ok := geo.UnpackGeoPoint(buf[:])
	if !ok {
		return geo.GeoPoint{}, fmt.Errorf("malformed coordinate at offset %d", s.pos)
	}
	return p, nil
}

// ReadMapPoints reads a point sequence written by WriteMapPoints and returns
// the points together with their derived bounding box and per-segment boxes.
// The caches are derived data; callers mutating the points must recompute
// them.
func (s *FileScanner) ReadMapPoints(useIds bool) ([]geo.GeoPointItem, geo.GeoBox, []geo.SegmentGeoBox, error) {
	count, err := s.ReadNumber()
	if err != nil {
		return nil, geo.GeoBox{}, nil, err
	}
	if count > s.size/geo.CoordBufferSize {
		return nil, geo.GeoBox{}, nil, fmt.Errorf("malformed point count %d at offset %d", count, s.pos)
	}

	points := make([]geo.GeoPointItem, count)
	for i := range points {
		coord, err := s.ReadCoord()
		if err != nil {
			return nil, geo.GeoBox{}, nil, err
		}
		points[i].Coord = coord
	}

	if useIds {
		relevant, err := s.ReadNumber()
		if err != nil {
			return nil, geo.GeoBox{}, nil, err
		}
		if relevant > count {
			return nil, geo.GeoBox{}, nil, fmt.Errorf("malformed serial count %d at offset %d", relevant, s.pos)
		}
		for i := uint64(0); i < relevant; i++ {
			index, err := s.ReadNumber()
			if err != nil {
				return nil, geo.GeoBox{}, nil, err
			}
			if index >= count {
				return nil, geo.GeoBox{}, nil, fmt.Errorf("serial index %d out of range at offset %d", index, s.pos)
			}
			serial, err := s.ReadUint8()
			if err != nil {
				return nil, geo.GeoBox{}, nil, err
			}
			points[index].Serial = serial
		}
	}

	box := geo.BoxForPoints(points, 0, len(points)-1)
	return points, box, geo.ComputeSegmentBoxes(points), nil
}
