// Package typemeta implements the type and feature metadata layer: a
// registry of entity types with per-category numeric ids, and the feature
// value buffer serialized alongside every entity.
package typemeta

import "fmt"

// Category selects one of the three entity id spaces. Type ids are numbered
// independently per category.
type Category int

const (
	CategoryNode Category = iota
	CategoryWay
	CategoryArea
)

// String implements fmt.Stringer.
func (c Category) String() string {
	switch c {
	case CategoryNode:
		return "node"
	case CategoryWay:
		return "way"
	case CategoryArea:
		return "area"
	}
	return "unknown"
}

// IgnoreTypeId is the reserved per-category sentinel for "this object
// carries no type".
const IgnoreTypeId = 0

// FeatureKind is the value type of one feature slot.
type FeatureKind uint8

const (
	// FeatureString carries a length-prefixed string payload.
	FeatureString FeatureKind = iota
	// FeatureInt carries a zigzag-encoded signed number payload.
	FeatureInt
	// FeatureFlag carries no payload; presence in the mask is the value.
	FeatureFlag
)

// FeatureDescriptor describes one feature slot of a type.
type FeatureDescriptor struct {
	Name string
	Kind FeatureKind
	Tag  string // source OSM tag for the importer, defaults to Name
}

// TagMatch is one importer classification rule: the tag key must be present
// and, when Values is non-empty, carry one of the listed values.
type TagMatch struct {
	Key    string
	Values []string
}

// TypeInfo describes one registered entity type.
type TypeInfo struct {
	name            string
	nodeId          uint16
	wayId           uint16
	areaId          uint16
	canRoute        bool
	optimizeLowZoom bool
	multipleRings   bool
	ignore          bool
	features        []FeatureDescriptor
	match           []TagMatch
}

// Name returns the type name.
func (t *TypeInfo) Name() string { return t.name }

// IsIgnore reports whether this is the reserved ignore sentinel.
func (t *TypeInfo) IsIgnore() bool { return t.ignore }

// CanRoute reports whether objects of this type participate in routing.
func (t *TypeInfo) CanRoute() bool { return t.canRoute }

// OptimizeLowZoom reports whether objects of this type participate in the
// low-zoom optimized data variant.
func (t *TypeInfo) OptimizeLowZoom() bool { return t.optimizeLowZoom }

// MultipleRings reports whether areas of this type may carry more than one
// ring.
func (t *TypeInfo) MultipleRings() bool { return t.multipleRings }

// Features returns the ordered feature slots of the type.
func (t *TypeInfo) Features() []FeatureDescriptor { return t.features }

// FeatureIndex returns the slot index of the named feature.
func (t *TypeInfo) FeatureIndex(name string) (int, bool) {
	for i, f := range t.features {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Id returns the type's numeric id in the given category, IgnoreTypeId when
// the type is not registered there.
func (t *TypeInfo) Id(cat Category) uint16 {
	switch cat {
	case CategoryNode:
		return t.nodeId
	case CategoryWay:
		return t.wayId
	case CategoryArea:
		return t.areaId
	}
	return IgnoreTypeId
}

// TypeRegistry holds all registered types and their per-category id spaces.
// A registry is built once and read-only afterwards.
type TypeRegistry struct {
	types  []*TypeInfo
	byName map[string]*TypeInfo

	nodeTypes []*TypeInfo // index == node id, [0] is the ignore sentinel
	wayTypes  []*TypeInfo
	areaTypes []*TypeInfo
}

func (r *TypeRegistry) categoryTypes(cat Category) []*TypeInfo {
	switch cat {
	case CategoryNode:
		return r.nodeTypes
	case CategoryWay:
		return r.wayTypes
	case CategoryArea:
		return r.areaTypes
	}
	return nil
}

// IgnoreType returns the reserved sentinel type.
func (r *TypeRegistry) IgnoreType() *TypeInfo {
	return r.types[0]
}

// TypeIdBytes returns the on-disk byte width of type ids in the given
// category: one byte while the id space fits, two otherwise.
func (r *TypeRegistry) TypeIdBytes(cat Category) uint8 {
	if len(r.categoryTypes(cat)) <= 256 {
		return 1
	}
	return 2
}

// TypeForId resolves a decoded type id. Unknown ids are a decode error; the
// ignore sentinel resolves successfully.
func (r *TypeRegistry) TypeForId(cat Category, id uint16) (*TypeInfo, error) {
	types := r.categoryTypes(cat)
	if int(id) >= len(types) {
		return nil, fmt.Errorf("unknown %s type id %d", cat, id)
	}
	return types[id], nil
}

// TypeForName looks up a type by name.
func (r *TypeRegistry) TypeForName(name string) (*TypeInfo, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Types returns all registered types excluding the ignore sentinel.
func (r *TypeRegistry) Types() []*TypeInfo {
	return r.types[1:]
}

// ClassifyTags returns the first registered type of the given category whose
// match rules accept the tags, or nil when none match.
func (r *TypeRegistry) ClassifyTags(cat Category, tags map[string]string) *TypeInfo {
	for _, t := range r.categoryTypes(cat)[1:] {
		if t.matches(tags) {
			return t
		}
	}
	return nil
}

func (t *TypeInfo) matches(tags map[string]string) bool {
	if len(t.match) == 0 {
		return false
	}
	for _, m := range t.match {
		value, ok := tags[m.Key]
		if !ok {
			return false
		}
		if len(m.Values) == 0 {
			continue
		}
		found := false
		for _, v := range m.Values {
			if v == value || v == "*" {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
