package retriever

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matsen/learner/internal/template"
)

// Match is the result of resolving free-form input to a retriever.
type Match struct {
	Retriever  *Retriever
	Identifier string
}

// Source returns the matched retriever's source tag.
func (m Match) Source() string { return m.Retriever.Source }

// Set is an immutable collection of retrievers keyed by name.
type Set struct {
	retrievers []*Retriever // sorted by name
	byName     map[string]*Retriever
}

// NewSet builds a set, rejecting duplicate names.
func NewSet(retrievers ...*Retriever) (*Set, error) {
	s := &Set{byName: make(map[string]*Retriever, len(retrievers))}
	for _, r := range retrievers {
		if _, exists := s.byName[r.Name]; exists {
			return nil, fmt.Errorf("duplicate retriever name %q", r.Name)
		}
		s.byName[r.Name] = r
		s.retrievers = append(s.retrievers, r)
	}
	sort.Slice(s.retrievers, func(i, j int) bool {
		return s.retrievers[i].Name < s.retrievers[j].Name
	})
	return s, nil
}

// LoadDir loads every *.toml file in dir as a retriever. A missing
// directory yields an empty set.
func LoadDir(dir string, templates *template.Registry) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSet()
		}
		return nil, fmt.Errorf("reading retrievers directory: %w", err)
	}

	var retrievers []*Retriever
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		r, err := LoadFile(filepath.Join(dir, entry.Name()), templates)
		if err != nil {
			return nil, err
		}
		retrievers = append(retrievers, r)
	}
	return NewSet(retrievers...)
}

// Load reads the template directory and then the retriever directory.
func Load(retrieversDir, templatesDir string) (*Set, error) {
	templates, err := template.LoadDir(templatesDir)
	if err != nil {
		return nil, err
	}
	return LoadDir(retrieversDir, templates)
}

// Len returns the number of retrievers.
func (s *Set) Len() int { return len(s.retrievers) }

// All returns the retrievers in name order.
func (s *Set) All() []*Retriever {
	out := make([]*Retriever, len(s.retrievers))
	copy(out, s.retrievers)
	return out
}

// Get returns the retriever with the given name.
func (s *Set) Get(name string) (*Retriever, bool) {
	r, ok := s.byName[name]
	return r, ok
}

// BySource returns the first retriever, in name order, producing the
// given source tag.
func (s *Set) BySource(source string) (*Retriever, bool) {
	for _, r := range s.retrievers {
		if r.Source == source {
			return r, true
		}
	}
	return nil, false
}

// Sanitize resolves input to exactly one retriever. Surrounding whitespace
// is ignored. No match yields ErrInvalidIdentifier; several matches yield an
// *AmbiguousIdentifierError naming every matching source.
func (s *Set) Sanitize(input string) (Match, error) {
	input = strings.TrimSpace(input)

	var matches []Match
	for _, r := range s.retrievers {
		id, err := r.ExtractIdentifier(input)
		if err != nil {
			continue
		}
		matches = append(matches, Match{Retriever: r, Identifier: id})
	}

	switch len(matches) {
	case 0:
		return Match{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, input)
	case 1:
		return matches[0], nil
	default:
		sources := make([]string, len(matches))
		for i, m := range matches {
			sources[i] = m.Source()
		}
		sort.Strings(sources)
		return Match{}, &AmbiguousIdentifierError{Input: input, Sources: sources}
	}
}
