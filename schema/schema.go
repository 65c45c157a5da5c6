// Package schema holds the column mapping between the wire-facing feature
// names accepted by the service and the labels the model was fitted with.
package schema

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed presets/*.yaml
var presets embed.FS

// Field maps one request field onto one model column.
type Field struct {
	Name   string `yaml:"name"`
	Column string `yaml:"column"`
}

// Schema is an ordered, versioned column mapping. The order of Fields is
// the column order of the feature vector handed to the model.
type Schema struct {
	Name    string  `yaml:"name"`
	Version int     `yaml:"version"`
	Fields  []Field `yaml:"fields"`
}

// Load reads a schema from a YAML file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML schema document.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Builtin returns one of the embedded presets by name.
func Builtin(name string) (*Schema, error) {
	data, err := presets.ReadFile("presets/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown schema preset %q (available: %s)", name, strings.Join(Presets(), ", "))
	}
	return Parse(data)
}

// Presets lists the embedded preset names.
func Presets() []string {
	entries, err := presets.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Resolve treats ref as a file path when it names an existing file and as a
// preset name otherwise.
func Resolve(ref string) (*Schema, error) {
	if ref == "" {
		return nil, errors.New("schema reference is empty")
	}
	if _, err := os.Stat(ref); err == nil {
		return Load(ref)
	}
	return Builtin(ref)
}

// Validate checks that the mapping is a bijection: every field and every
// column appears exactly once.
func (s *Schema) Validate() error {
	if s.Name == "" {
		return errors.New("schema name is required")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %s declares no fields", s.Name)
	}
	names := make(map[string]struct{}, len(s.Fields))
	columns := make(map[string]struct{}, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" || f.Column == "" {
			return fmt.Errorf("schema %s: field %d needs both name and column", s.Name, i)
		}
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("schema %s: duplicate field %q", s.Name, f.Name)
		}
		if _, dup := columns[f.Column]; dup {
			return fmt.Errorf("schema %s: duplicate column %q", s.Name, f.Column)
		}
		names[f.Name] = struct{}{}
		columns[f.Column] = struct{}{}
	}
	return nil
}

// Columns returns the model column labels in order.
func (s *Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Column
	}
	return cols
}

// Names returns the request field names in column order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// String identifies the schema in logs, e.g. "sensors-5@v1".
func (s *Schema) String() string {
	return fmt.Sprintf("%s@v%d", s.Name, s.Version)
}
