// Package nodeindex implements the temporary node coordinate index used
// during import: a sparse memory-mapped file storing each OSM node's packed
// coordinate at offset nodeID * entrySize, giving O(1) lookup while ways are
// being assembled.
package nodeindex

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/wegman-software/mapfile-go/internal/geo"
)

const (
	// Each entry: one presence flag byte plus the packed coordinate.
	entrySize = 1 + geo.CoordBufferSize
	// Highest node id supported; the file is sparse so only written
	// entries consume disk.
	maxNodeID = 10_000_000_000
)

// Index is a memory-mapped node coordinate store keyed by node id.
type Index struct {
	file     *os.File
	data     mmap.MMap
	size     int64
	writable bool
}

// Create creates a new sparse index file for writing.
func Create(path string) (*Index, error) {
	size := int64(maxNodeID) * entrySize

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create node index: %w", err)
	}

	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to size node index: %w", err)
	}

	data, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap node index: %w", err)
	}

	return &Index{file: f, data: data, size: size, writable: true}, nil
}

// Open opens an existing index read-only.
func Open(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open node index: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat node index: %w", err)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap node index: %w", err)
	}

	return &Index{file: f, data: data, size: info.Size()}, nil
}

// Put stores a node's coordinate. Out-of-range ids and invalid coordinates
// are ignored. Concurrent Puts for distinct node ids are safe since each
// writes its own entry.
func (x *Index) Put(nodeID int64, coord geo.GeoPoint) {
	if !x.writable || nodeID < 0 || nodeID >= maxNodeID {
		return
	}

	offset := nodeID * entrySize
	if coord.Pack(x.data[offset+1 : offset+entrySize]) {
		x.data[offset] = 1
	}
}

// Get retrieves a node's coordinate, reporting false for nodes that were
// never stored.
func (x *Index) Get(nodeID int64) (geo.GeoPoint, bool) {
	if nodeID < 0 || nodeID >= maxNodeID {
		return geo.GeoPoint{}, false
	}

	offset := nodeID * entrySize
	if offset+entrySize > x.size || x.data[offset] == 0 {
		return geo.GeoPoint{}, false
	}

	return geo.UnpackGeoPoint(x.data[offset+1 : offset+entrySize])
}

// Sync flushes dirty pages to disk.
func (x *Index) Sync() error {
	return x.data.Flush()
}

// Close unmaps and closes the index file.
func (x *Index) Close() error {
	if err := x.data.Unmap(); err != nil {
		x.file.Close()
		return err
	}
	return x.file.Close()
}
