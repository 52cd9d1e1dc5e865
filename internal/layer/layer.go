// Package layer describes the vector layer a style document belongs to:
// its fields, their semantic types and which field, if any, is the source
// primary key. The rewrite rules in internal/qml are derived entirely from
// this metadata.
package layer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldKind is the semantic type of a field as far as style rewriting is
// concerned. Everything that is neither boolean nor a 64-bit integer is
// Other.
type FieldKind int

const (
	KindOther FieldKind = iota
	KindBool
	KindInt64
)

// fileBackedProviders are the data-source providers backed by a file or
// database, the only kind for which primary-key rewriting is enabled. The
// three names are the same OGR driver family.
var fileBackedProviders = map[string]bool{
	"ogr":        true,
	"spatialite": true,
	"gpkg":       true,
}

// Field describes one attribute of a layer.
type Field struct {
	// Name is the attribute name as it appears in style expressions.
	Name string `json:"name" yaml:"name"`
	// Type is the declared field type, e.g. bool, int64, string, real.
	Type string `json:"type" yaml:"type"`
}

// Kind normalizes the declared type to its rewrite-relevant kind.
func (f Field) Kind() FieldKind {
	switch strings.ToLower(f.Type) {
	case "bool", "boolean":
		return KindBool
	case "int64", "integer64", "long", "longlong":
		return KindInt64
	default:
		return KindOther
	}
}

// Metadata describes a layer's data source. It is the sidecar input that
// accompanies a style document into the rewriter.
type Metadata struct {
	// Provider identifies the data-source provider, e.g. ogr, postgres,
	// memory. Primary-key rewriting only applies to file/database-backed
	// providers.
	Provider string `json:"provider" yaml:"provider"`
	// PrimaryKey is the index into Fields of the source primary key, if
	// the source has one.
	PrimaryKey *int `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	// Fields lists the layer's attributes in source order.
	Fields []Field `json:"fields" yaml:"fields"`
}

// Load reads layer metadata from a YAML or JSON file.
func Load(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var meta Metadata
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &meta)
	} else {
		err = yaml.Unmarshal(data, &meta)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse metadata file %s: %w", path, err)
	}

	for i, field := range meta.Fields {
		if field.Name == "" {
			return nil, fmt.Errorf("metadata file %s: field %d has no name", path, i)
		}
	}

	return &meta, nil
}

// IsFileBacked reports whether the provider is file/database-backed.
func (m *Metadata) IsFileBacked() bool {
	return fileBackedProviders[strings.ToLower(m.Provider)]
}

// BoolFields returns the names of all boolean fields in declaration order.
func (m *Metadata) BoolFields() []string {
	var names []string
	for _, field := range m.Fields {
		if field.Kind() == KindBool {
			names = append(names, field.Name)
		}
	}
	return names
}

// PrimaryKeyField returns the name of the primary-key field when
// primary-key rewriting applies: the provider must be file/database-backed
// and the field must exist and be a 64-bit integer. Inconsistent metadata
// (an index out of range, a non-integer key) disables the rewrite rather
// than failing.
func (m *Metadata) PrimaryKeyField() (string, bool) {
	if !m.IsFileBacked() || m.PrimaryKey == nil {
		return "", false
	}
	idx := *m.PrimaryKey
	if idx < 0 || idx >= len(m.Fields) {
		return "", false
	}
	field := m.Fields[idx]
	if field.Kind() != KindInt64 {
		return "", false
	}
	return field.Name, true
}
