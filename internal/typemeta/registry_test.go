package typemeta

import (
	"os"
	"path/filepath"
	"testing"
)

func testDefs() []TypeDef {
	return []TypeDef{
		{
			Name:       "highway_motorway",
			Categories: []string{"way"},
			CanRoute:   true,
			Features: []FeatureDef{
				{Name: "name"},
				{Name: "max_speed", Kind: "int", Tag: "maxspeed"},
				{Name: "bridge", Kind: "flag"},
			},
			Match: map[string][]string{"highway": {"motorway", "motorway_link"}},
		},
		{
			Name:       "place_city",
			Categories: []string{"node"},
			Features:   []FeatureDef{{Name: "name"}},
			Match:      map[string][]string{"place": {"city"}},
		},
		{
			Name:            "water",
			Categories:      []string{"area"},
			OptimizeLowZoom: true,
			MultipleRings:   true,
			Match:           map[string][]string{"natural": {"water"}},
		},
		{
			Name:       "building",
			Categories: []string{"way", "area"},
			Match:      map[string][]string{"building": nil},
		},
	}
}

func TestBuildRegistryIdAssignment(t *testing.T) {
	reg, err := BuildRegistry(testDefs())
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}

	// Id 0 in every category is the ignore sentinel.
	for _, cat := range []Category{CategoryNode, CategoryWay, CategoryArea} {
		ti, err := reg.TypeForId(cat, IgnoreTypeId)
		if err != nil {
			t.Fatalf("TypeForId(%v, 0): %v", cat, err)
		}
		if !ti.IsIgnore() {
			t.Errorf("%v id 0 is not the ignore type", cat)
		}
	}

	// Per-category ids follow declaration order.
	motorway, ok := reg.TypeForName("highway_motorway")
	if !ok {
		t.Fatal("highway_motorway not registered")
	}
	if motorway.Id(CategoryWay) != 1 {
		t.Errorf("motorway way id = %d, want 1", motorway.Id(CategoryWay))
	}

	building, _ := reg.TypeForName("building")
	if building.Id(CategoryWay) != 2 {
		t.Errorf("building way id = %d, want 2", building.Id(CategoryWay))
	}
	if building.Id(CategoryArea) != 2 {
		t.Errorf("building area id = %d, want 2", building.Id(CategoryArea))
	}

	water, _ := reg.TypeForName("water")
	if water.Id(CategoryArea) != 1 {
		t.Errorf("water area id = %d, want 1", water.Id(CategoryArea))
	}
	if !water.OptimizeLowZoom() || !water.MultipleRings() {
		t.Error("water must optimize low zoom and allow multiple rings")
	}

	// Ids resolve back to their types.
	ti, err := reg.TypeForId(CategoryArea, 1)
	if err != nil || ti != water {
		t.Errorf("TypeForId(area, 1) = %v, %v", ti, err)
	}
	if _, err := reg.TypeForId(CategoryArea, 99); err == nil {
		t.Error("unknown id must not resolve")
	}
}

func TestBuildRegistryRejectsBadDefs(t *testing.T) {
	tests := []struct {
		name string
		defs []TypeDef
	}{
		{"missing name", []TypeDef{{Categories: []string{"node"}}}},
		{"duplicate name", []TypeDef{
			{Name: "a", Categories: []string{"node"}},
			{Name: "a", Categories: []string{"way"}},
		}},
		{"no categories", []TypeDef{{Name: "a"}}},
		{"bad category", []TypeDef{{Name: "a", Categories: []string{"volume"}}}},
		{"bad feature kind", []TypeDef{{
			Name:       "a",
			Categories: []string{"node"},
			Features:   []FeatureDef{{Name: "f", Kind: "float"}},
		}}},
	}

	for _, tt := range tests {
		if _, err := BuildRegistry(tt.defs); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestTypeIdBytes(t *testing.T) {
	// 4 way types (ignore + 3) fit one byte.
	defs := testDefs()
	reg, err := BuildRegistry(defs)
	if err != nil {
		t.Fatal(err)
	}
	if reg.TypeIdBytes(CategoryWay) != 1 {
		t.Errorf("TypeIdBytes = %d, want 1", reg.TypeIdBytes(CategoryWay))
	}

	// More than 256 types in a category need two bytes.
	big := make([]TypeDef, 300)
	for i := range big {
		big[i] = TypeDef{
			Name:       "t" + string(rune('a'+i/26%26)) + string(rune('a'+i%26)) + string(rune('0'+i/676)),
			Categories: []string{"way"},
		}
	}
	bigReg, err := BuildRegistry(big)
	if err != nil {
		t.Fatal(err)
	}
	if bigReg.TypeIdBytes(CategoryWay) != 2 {
		t.Errorf("TypeIdBytes for 300 types = %d, want 2", bigReg.TypeIdBytes(CategoryWay))
	}
}

func TestClassifyTags(t *testing.T) {
	reg, err := BuildRegistry(testDefs())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cat  Category
		tags map[string]string
		want string // empty means no match
	}{
		{"motorway", CategoryWay, map[string]string{"highway": "motorway"}, "highway_motorway"},
		{"motorway link", CategoryWay, map[string]string{"highway": "motorway_link"}, "highway_motorway"},
		{"other highway", CategoryWay, map[string]string{"highway": "residential"}, ""},
		{"city node", CategoryNode, map[string]string{"place": "city"}, "place_city"},
		{"city as way", CategoryWay, map[string]string{"place": "city"}, ""},
		{"water area", CategoryArea, map[string]string{"natural": "water"}, "water"},
		{"key only match", CategoryArea, map[string]string{"building": "yes"}, "building"},
		{"key only match other value", CategoryWay, map[string]string{"building": "garage"}, "building"},
		{"no tags", CategoryWay, map[string]string{}, ""},
	}

	for _, tt := range tests {
		got := reg.ClassifyTags(tt.cat, tt.tags)
		if tt.want == "" {
			if got != nil {
				t.Errorf("%s: classified as %q, want no match", tt.name, got.Name())
			}
			continue
		}
		if got == nil || got.Name() != tt.want {
			t.Errorf("%s: classified as %v, want %q", tt.name, got, tt.want)
		}
	}
}

func TestLoadRegistryYAML(t *testing.T) {
	content := `types:
  - name: highway_trunk
    categories: [way]
    can_route: true
    features:
      - name: name
      - name: lanes
        kind: int
    match:
      highway: [trunk]
  - name: forest
    categories: [area]
    optimize_low_zoom: true
    multiple_rings: true
    match:
      landuse: [forest]
`
	path := filepath.Join(t.TempDir(), "types.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	trunk, ok := reg.TypeForName("highway_trunk")
	if !ok {
		t.Fatal("highway_trunk not loaded")
	}
	if !trunk.CanRoute() {
		t.Error("can_route not parsed")
	}
	if len(trunk.Features()) != 2 {
		t.Fatalf("features = %d, want 2", len(trunk.Features()))
	}
	if idx, ok := trunk.FeatureIndex("lanes"); !ok || trunk.Features()[idx].Kind != FeatureInt {
		t.Error("lanes feature not parsed as int")
	}

	forest, _ := reg.TypeForName("forest")
	if forest == nil || !forest.MultipleRings() {
		t.Error("forest multiple_rings not parsed")
	}

	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file must fail")
	}
}
