// Package mapdata defines the map entities (nodes, ways, multi-ring areas,
// ground tiles) and their serialization protocol over the typed file stream.
package mapdata

import (
	"fmt"

	"github.com/wegman-software/mapfile-go/internal/typemeta"
)

// DataMode controls whether per-point stable identifiers are persisted when
// serializing ways and areas.
type DataMode int

const (
	// DataModeAuto persists ids only for types that route or participate
	// in low-zoom optimization.
	DataModeAuto DataMode = iota
	// DataModeAll always persists ids; used for full import data.
	DataModeAll
	// DataModeNone never persists ids; used for the size-optimized
	// low-zoom data variant.
	DataModeNone
)

// String implements fmt.Stringer.
func (m DataMode) String() string {
	switch m {
	case DataModeAuto:
		return "auto"
	case DataModeAll:
		return "all"
	case DataModeNone:
		return "none"
	}
	return "unknown"
}

// ParseDataMode parses a textual data mode.
func ParseDataMode(s string) (DataMode, error) {
	switch s {
	case "auto":
		return DataModeAuto, nil
	case "all":
		return DataModeAll, nil
	case "none":
		return DataModeNone, nil
	}
	return 0, fmt.Errorf("unknown data mode %q", s)
}

// typeWantsIds is the Auto-mode predicate.
func typeWantsIds(t *typemeta.TypeInfo) bool {
	return t.CanRoute() || t.OptimizeLowZoom()
}

// useIds resolves the id-persistence decision for a way or for area ring 0.
func useIds(mode DataMode, t *typemeta.TypeInfo) bool {
	switch mode {
	case DataModeAll:
		return true
	case DataModeAuto:
		return typeWantsIds(t)
	}
	return false
}

// useRingIds resolves the id-persistence decision for area rings >= 1. In
// All mode outer rings always get ids regardless of type.
func useRingIds(mode DataMode, t *typemeta.TypeInfo, isOuter bool) bool {
	switch mode {
	case DataModeAll:
		return isOuter || typeWantsIds(t)
	case DataModeAuto:
		return typeWantsIds(t)
	}
	return false
}
