// Package record defines the assembled output of a retrieval: validated
// resource and retrieval field maps for one paper.
package record

import (
	"strings"
	"time"

	"github.com/matsen/learner/internal/value"
)

// Keys injected into Resource after extraction.
const (
	SourceKey           = "source"
	SourceIdentifierKey = "source_identifier"
)

// Well-known resource fields read by storage, export and the CLI.
const (
	TitleKey           = "title"
	AuthorsKey         = "authors"
	AbstractKey        = "abstract_text"
	PublicationDateKey = "publication_date"
	DOIKey             = "doi"
	PDFURLKey          = "pdf_url"
)

// Record is one retrieved paper.
type Record struct {
	ID        string         `json:"id,omitempty"` // assigned by storage
	Resource  map[string]any `json:"resource"`
	Retrieval map[string]any `json:"retrieval"`
}

// New returns a record with the source fields injected into resource.
func New(source, identifier string, resource, retrieval map[string]any) *Record {
	if resource == nil {
		resource = make(map[string]any)
	}
	if retrieval == nil {
		retrieval = make(map[string]any)
	}
	resource[SourceKey] = source
	resource[SourceIdentifierKey] = identifier
	return &Record{Resource: resource, Retrieval: retrieval}
}

// Source returns the source tag.
func (r *Record) Source() string { return r.str(SourceKey) }

// SourceIdentifier returns the canonical identifier within the source.
func (r *Record) SourceIdentifier() string { return r.str(SourceIdentifierKey) }

// Title returns the title, or "" if absent.
func (r *Record) Title() string { return r.str(TitleKey) }

// Abstract returns the abstract text, or "" if absent.
func (r *Record) Abstract() string { return r.str(AbstractKey) }

// DOI returns the DOI, or "" if absent.
func (r *Record) DOI() string { return r.str(DOIKey) }

// PDFURL returns the PDF location from resource or retrieval metadata.
func (r *Record) PDFURL() string {
	if s := r.str(PDFURLKey); s != "" {
		return s
	}
	s, _ := value.AsString(r.Retrieval[PDFURLKey])
	return s
}

// PublicationDate parses the publication date. The zero time is returned
// when the field is absent or not RFC3339 / YYYY-MM-DD.
func (r *Record) PublicationDate() time.Time {
	s := r.str(PublicationDateKey)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// AuthorNames returns author names in order. Authors may be objects with a
// "name" key or bare strings.
func (r *Record) AuthorNames() []string {
	raw, ok := r.Resource[AuthorsKey]
	if !ok {
		return nil
	}
	arr, ok := raw.([]any)
	if !ok {
		arr = []any{raw}
	}

	var names []string
	for _, a := range arr {
		var name string
		switch t := a.(type) {
		case string:
			name = t
		case map[string]any:
			name, _ = value.AsString(t["name"])
		}
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (r *Record) str(key string) string {
	s, _ := value.AsString(r.Resource[key])
	return s
}
