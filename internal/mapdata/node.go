package mapdata

import (
	"fmt"

	"github.com/wegman-software/mapfile-go/internal/filestream"
	"github.com/wegman-software/mapfile-go/internal/geo"
	"github.com/wegman-software/mapfile-go/internal/typemeta"
)

// MapNode is one feature-tagged point. Its file offset doubles as its unique
// persistent id; NextFileOffset allows a sequential scan to resume after the
// entity.
type MapNode struct {
	FileOffset     uint64
	NextFileOffset uint64

	Features typemeta.FeatureValueBuffer
	Coord    geo.GeoPoint
}

// Type returns the node's resolved type.
func (n *MapNode) Type() *typemeta.TypeInfo {
	return n.Features.Type()
}

// Read decodes a node from the scanner's current position. Any failure is
// fatal for the entity; the caller must discard it and may resynchronize at
// a previously recorded NextFileOffset.
func (n *MapNode) Read(reg *typemeta.TypeRegistry, s *filestream.FileScanner) error {
	n.FileOffset = s.Position()

	id, err := s.ReadTypeId(reg.TypeIdBytes(typemeta.CategoryNode))
	if err != nil {
		return err
	}
	t, err := reg.TypeForId(typemeta.CategoryNode, id)
	if err != nil {
		return err
	}
	if t.IsIgnore() {
		return fmt.Errorf("node at offset %d has no type", n.FileOffset)
	}

	n.Features.SetType(t)
	if err := n.Features.Read(s); err != nil {
		return err
	}

	if n.Coord, err = s.ReadCoord(); err != nil {
		return err
	}

	n.NextFileOffset = s.Position()
	return nil
}

// Write encodes the node: type id, feature buffer, packed coordinate.
func (n *MapNode) Write(reg *typemeta.TypeRegistry, w *filestream.FileWriter) error {
	t := n.Features.Type()
	if t == nil || t.IsIgnore() {
		return fmt.Errorf("node has no type")
	}

	n.FileOffset = w.Position()

	if err := w.WriteTypeId(t.Id(typemeta.CategoryNode), reg.TypeIdBytes(typemeta.CategoryNode)); err != nil {
		return err
	}
	if err := n.Features.Write(w); err != nil {
		return err
	}
	if err := w.WriteCoord(n.Coord); err != nil {
		return err
	}

	n.NextFileOffset = w.Position()
	return nil
}
