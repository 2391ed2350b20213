package typemeta

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FeatureDef is the YAML form of one feature slot.
type FeatureDef struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"` // string, int, flag
	Tag  string `yaml:"tag,omitempty"`
}

// TypeDef is the YAML form of one type definition.
type TypeDef struct {
	Name            string              `yaml:"name"`
	Categories      []string            `yaml:"categories"` // node, way, area
	CanRoute        bool                `yaml:"can_route,omitempty"`
	OptimizeLowZoom bool                `yaml:"optimize_low_zoom,omitempty"`
	MultipleRings   bool                `yaml:"multiple_rings,omitempty"`
	Features        []FeatureDef        `yaml:"features,omitempty"`
	Match           map[string][]string `yaml:"match,omitempty"`
}

type registryFile struct {
	Types []TypeDef `yaml:"types"`
}

// LoadRegistry reads a type registry definition from a YAML file.
func LoadRegistry(path string) (*TypeRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read types file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse types YAML: %w", err)
	}

	return BuildRegistry(file.Types)
}

// BuildRegistry constructs a registry from type definitions, assigning
// per-category ids in declaration order. Id 0 in every category is the
// ignore sentinel.
func BuildRegistry(defs []TypeDef) (*TypeRegistry, error) {
	ignore := &TypeInfo{name: "_ignore", ignore: true}

	r := &TypeRegistry{
		types:     []*TypeInfo{ignore},
		byName:    map[string]*TypeInfo{},
		nodeTypes: []*TypeInfo{ignore},
		wayTypes:  []*TypeInfo{ignore},
		areaTypes: []*TypeInfo{ignore},
	}

	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("type definition without name")
		}
		if _, exists := r.byName[def.Name]; exists {
			return nil, fmt.Errorf("duplicate type %q", def.Name)
		}

		t := &TypeInfo{
			name:            def.Name,
			canRoute:        def.CanRoute,
			optimizeLowZoom: def.OptimizeLowZoom,
			multipleRings:   def.MultipleRings,
		}

		for _, f := range def.Features {
			kind, err := parseFeatureKind(f.Kind)
			if err != nil {
				return nil, fmt.Errorf("type %q feature %q: %w", def.Name, f.Name, err)
			}
			tag := f.Tag
			if tag == "" {
				tag = f.Name
			}
			t.features = append(t.features, FeatureDescriptor{Name: f.Name, Kind: kind, Tag: tag})
		}

		for key, values := range def.Match {
			t.match = append(t.match, TagMatch{Key: key, Values: values})
		}

		if len(def.Categories) == 0 {
			return nil, fmt.Errorf("type %q has no categories", def.Name)
		}
		for _, cat := range def.Categories {
			switch cat {
			case "node":
				t.nodeId = uint16(len(r.nodeTypes))
				r.nodeTypes = append(r.nodeTypes, t)
			case "way":
				t.wayId = uint16(len(r.wayTypes))
				r.wayTypes = append(r.wayTypes, t)
			case "area":
				t.areaId = uint16(len(r.areaTypes))
				r.areaTypes = append(r.areaTypes, t)
			default:
				return nil, fmt.Errorf("type %q: unknown category %q", def.Name, cat)
			}
		}

		r.types = append(r.types, t)
		r.byName[t.name] = t
	}

	return r, nil
}

func parseFeatureKind(kind string) (FeatureKind, error) {
	switch kind {
	case "string", "":
		return FeatureString, nil
	case "int":
		return FeatureInt, nil
	case "flag":
		return FeatureFlag, nil
	}
	return 0, fmt.Errorf("unknown feature kind %q", kind)
}
