package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Registry holds templates by name.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry returns a registry holding the given templates.
func NewRegistry(templates ...*Template) *Registry {
	r := &Registry{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		r.templates[t.Name] = t
	}
	return r
}

// LoadDir loads every *.toml file in dir. A missing directory yields an
// empty registry.
func LoadDir(dir string) (*Registry, error) {
	r := NewRegistry()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("reading templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		t, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if _, exists := r.templates[t.Name]; exists {
			return nil, fmt.Errorf("duplicate template name %q in %s", t.Name, entry.Name())
		}
		r.templates[t.Name] = t
	}
	return r, nil
}

// Get returns the named template. A trailing ".toml" is ignored.
func (r *Registry) Get(name string) (*Template, bool) {
	t, ok := r.templates[strings.TrimSuffix(name, ".toml")]
	return t, ok
}

// Names returns the registered template names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
