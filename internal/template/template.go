// Package template defines record templates: ordered, typed field schemas
// with validation rules, plus the coercion and validation applied to values
// extracted for them.
package template

import (
	"fmt"
	"os"
	"regexp"

	"github.com/pelletier/go-toml/v2"

	"github.com/matsen/learner/internal/value"
)

// Base types a field can declare.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeNull    = "null"
)

// Template is an ordered schema for one section of a record.
// Templates are immutable once loaded.
type Template struct {
	Name        string            `toml:"name" json:"name"`
	Description string            `toml:"description" json:"description,omitempty"`
	Fields      []FieldDefinition `toml:"fields" json:"fields"`
}

// FieldDefinition describes one named, typed field.
type FieldDefinition struct {
	Name        string            `toml:"name" json:"name"`
	BaseType    string            `toml:"base_type" json:"base_type"`
	Required    bool              `toml:"required" json:"required,omitempty"`
	Description string            `toml:"description" json:"description,omitempty"`
	Default     any               `toml:"default" json:"default,omitempty"`
	Items       *FieldDefinition  `toml:"items" json:"items,omitempty"`
	Fields      []FieldDefinition `toml:"fields" json:"fields,omitempty"`
	Validation  *ValidationRules  `toml:"validation" json:"validation,omitempty"`
}

// ValidationRules are optional constraints checked by Validate.
type ValidationRules struct {
	Pattern     string   `toml:"pattern" json:"pattern,omitempty"`
	MinLength   *int     `toml:"min_length" json:"min_length,omitempty"`
	MaxLength   *int     `toml:"max_length" json:"max_length,omitempty"`
	Minimum     *float64 `toml:"minimum" json:"minimum,omitempty"`
	Maximum     *float64 `toml:"maximum" json:"maximum,omitempty"`
	MultipleOf  *float64 `toml:"multiple_of" json:"multiple_of,omitempty"`
	MinItems    *int     `toml:"min_items" json:"min_items,omitempty"`
	MaxItems    *int     `toml:"max_items" json:"max_items,omitempty"`
	UniqueItems bool     `toml:"unique_items" json:"unique_items,omitempty"`
	EnumValues  []string `toml:"enum_values" json:"enum_values,omitempty"`
	Datetime    bool     `toml:"datetime" json:"datetime,omitempty"`

	pattern *regexp.Regexp
}

// Parse decodes a template from TOML and compiles it.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	if err := t.Compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadFile reads and parses a template file.
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Compile checks the template's structure, normalizes defaults and compiles
// validation patterns. Templates built in code must be compiled before use.
func (t *Template) Compile() error {
	if t.Name == "" {
		return fmt.Errorf("template has no name")
	}
	if err := compileFields(t.Fields); err != nil {
		return fmt.Errorf("template %s: %w", t.Name, err)
	}
	return nil
}

// Field returns the definition with the given name.
func (t *Template) Field(name string) (*FieldDefinition, bool) {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i], true
		}
	}
	return nil, false
}

func compileFields(fields []FieldDefinition) error {
	seen := make(map[string]bool, len(fields))
	for i := range fields {
		f := &fields[i]
		if f.Name == "" {
			return fmt.Errorf("field %d has no name", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if err := f.compile(); err != nil {
			return err
		}
	}
	return nil
}

func (f *FieldDefinition) compile() error {
	switch f.BaseType {
	case TypeString, TypeNumber, TypeBoolean, TypeArray, TypeObject, TypeNull:
	default:
		return fmt.Errorf("field %q: unknown base_type %q", f.Name, f.BaseType)
	}

	if f.Default != nil {
		f.Default = value.Normalize(f.Default)
	}

	if f.Items != nil {
		if f.Items.Name == "" {
			f.Items.Name = f.Name
		}
		if err := f.Items.compile(); err != nil {
			return err
		}
	}
	if err := compileFields(f.Fields); err != nil {
		return fmt.Errorf("field %q: %w", f.Name, err)
	}

	if f.Validation != nil {
		v := f.Validation
		if v.Pattern != "" {
			re, err := regexp.Compile(v.Pattern)
			if err != nil {
				return fmt.Errorf("field %q: invalid pattern: %w", f.Name, err)
			}
			v.pattern = re
		}
		if v.MultipleOf != nil && *v.MultipleOf <= 0 {
			return fmt.Errorf("field %q: multiple_of must be positive", f.Name)
		}
	}
	return nil
}
