package mapdata

import (
	"fmt"

	"github.com/wegman-software/mapfile-go/internal/filestream"
	"github.com/wegman-software/mapfile-go/internal/tile"
)

// GroundTileType classifies the ground covered by a tile-aligned polygon.
type GroundTileType uint8

const (
	GroundTileUnknown GroundTileType = iota
	GroundTileLand
	GroundTileWater
	GroundTileCoast
)

// String implements fmt.Stringer.
func (t GroundTileType) String() string {
	switch t {
	case GroundTileLand:
		return "land"
	case GroundTileWater:
		return "water"
	case GroundTileCoast:
		return "coast"
	}
	return "unknown"
}

// GroundTileCoord is one vertex of a ground tile polygon in tile-local
// raster cells. Coast marks vertices originating from actual coastline
// rather than from a cell boundary. X is limited to 15 bits by the on-disk
// packing.
type GroundTileCoord struct {
	X     uint16
	Y     uint16
	Coast bool
}

// GroundTile is a raster-aligned land/water/coast polygon aligned to one
// tile, consumed by downstream renderers.
type GroundTile struct {
	Type   GroundTileType
	Tile   tile.OSMTileId
	Coords []GroundTileCoord
}

// groundCoordCoastFlag is packed into the high bit of the X cell value.
const groundCoordCoastFlag = 1 << 15

// Read decodes a ground tile from the scanner's current position.
func (g *GroundTile) Read(s *filestream.FileScanner) error {
	tileType, err := s.ReadUint8()
	if err != nil {
		return err
	}
	if tileType > uint8(GroundTileCoast) {
		return fmt.Errorf("unknown ground tile type %d", tileType)
	}
	g.Type = GroundTileType(tileType)

	x, err := s.ReadNumber()
	if err != nil {
		return err
	}
	y, err := s.ReadNumber()
	if err != nil {
		return err
	}
	g.Tile = tile.OSMTileId{X: uint32(x), Y: uint32(y)}

	count, err := s.ReadNumber()
	if err != nil {
		return err
	}
	if count > s.Size()/4 {
		return fmt.Errorf("malformed ground tile coord count %d", count)
	}

	g.Coords = make([]GroundTileCoord, count)
	for i := range g.Coords {
		packed, err := s.ReadUint16()
		if err != nil {
			return err
		}
		yCell, err := s.ReadUint16()
		if err != nil {
			return err
		}
		g.Coords[i] = GroundTileCoord{
			X:     packed &^ groundCoordCoastFlag,
			Y:     yCell,
			Coast: packed&groundCoordCoastFlag != 0,
		}
	}

	return nil
}

// Write encodes the ground tile symmetrically to Read.
func (g *GroundTile) Write(w *filestream.FileWriter) error {
	if err := w.WriteUint8(uint8(g.Type)); err != nil {
		return err
	}
	if err := w.WriteNumber(uint64(g.Tile.X)); err != nil {
		return err
	}
	if err := w.WriteNumber(uint64(g.Tile.Y)); err != nil {
		return err
	}
	if err := w.WriteNumber(uint64(len(g.Coords))); err != nil {
		return err
	}

	for _, c := range g.Coords {
		if c.X >= groundCoordCoastFlag {
			return fmt.Errorf("ground tile coord x %d exceeds 15 bits", c.X)
		}
		packed := c.X
		if c.Coast {
			packed |= groundCoordCoastFlag
		}
		if err := w.WriteUint16(packed); err != nil {
			return err
		}
		if err := w.WriteUint16(c.Y); err != nil {
			return err
		}
	}

	return nil
}
