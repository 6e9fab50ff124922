// Package schema decides which chunk tags are containers. The container
// format cannot tell a parent from a leaf on its own, so tools load that
// knowledge from a small YAML file:
//
//	parents:
//	  - modl
//	  - segm
//	limits:
//	  max_depth: 64
package schema

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/ucfbkit/ucfb"
)

//go:embed default.yaml
var defaultYAML []byte

// Schema is a parsed classifier file.
type Schema struct {
	Parents []string `yaml:"parents"`
	Limits  struct {
		MaxDepth int `yaml:"max_depth"`
	} `yaml:"limits"`

	set map[ucfb.MagicNumber]struct{}
}

// Default returns the built-in schema for munged game resources.
func Default() *Schema {
	s, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("schema: built-in default: %v", err))
	}
	return s
}

// Load reads and parses the schema file at path.
func Load(path string) (*Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a schema document. Every parent tag must be exactly four
// bytes.
func Parse(b []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if s.Limits.MaxDepth < 0 {
		return nil, fmt.Errorf("limits.max_depth must not be negative, got %d", s.Limits.MaxDepth)
	}
	s.set = make(map[ucfb.MagicNumber]struct{}, len(s.Parents))
	for i, tag := range s.Parents {
		if len(tag) != 4 {
			return nil, fmt.Errorf("parents[%d]: tag %q must be 4 bytes", i, tag)
		}
		s.set[ucfb.MagicFromBytes([4]byte([]byte(tag)))] = struct{}{}
	}
	return &s, nil
}

// IsParent reports whether chunks tagged mn are containers.
func (s *Schema) IsParent(mn ucfb.MagicNumber) bool {
	_, ok := s.set[mn]
	return ok
}

// Classifier adapts the schema for ucfb.BuildParent and ucfb.NewEditorFrom.
func (s *Schema) Classifier() ucfb.Classifier { return s.IsParent }

// EditorLimits returns the limits to build trees with.
func (s *Schema) EditorLimits() ucfb.Limits {
	return ucfb.Limits{MaxDepth: s.Limits.MaxDepth}
}

// Marshal encodes the schema back to YAML.
func (s *Schema) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
