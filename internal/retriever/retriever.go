// Package retriever loads per-source retriever configurations and runs the
// retrieval pipeline: identifier resolution, response normalization, field
// extraction, coercion and validation.
package retriever

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/matsen/learner/internal/mapping"
	"github.com/matsen/learner/internal/normalize"
	"github.com/matsen/learner/internal/record"
	"github.com/matsen/learner/internal/template"
)

// IdentifierPlaceholder is replaced in endpoint templates.
const IdentifierPlaceholder = "{identifier}"

// fileConfig is the on-disk TOML shape of a retriever.
type fileConfig struct {
	Name              string            `toml:"name"`
	Description       string            `toml:"description"`
	BaseURL           string            `toml:"base_url"`
	Source            string            `toml:"source"`
	Pattern           string            `toml:"pattern"`
	EndpointTemplate  string            `toml:"endpoint_template"`
	ResponseFormat    normalize.Format  `toml:"response_format"`
	Headers           map[string]string `toml:"headers"`
	ResourceTemplate  any               `toml:"resource_template"`
	RetrievalTemplate any               `toml:"retrieval_template"`
	ResourceMappings  map[string]any    `toml:"resource_mappings"`
	RetrievalMappings map[string]any    `toml:"retrieval_mappings"`
}

// Retriever is a compiled source configuration. It is immutable after
// loading and safe for concurrent use.
type Retriever struct {
	Name             string
	Description      string
	BaseURL          string
	Source           string
	Pattern          *regexp.Regexp
	EndpointTemplate string
	Format           normalize.Format
	Headers          map[string]string

	ResourceTemplate  *template.Template
	RetrievalTemplate *template.Template // nil when the source records no retrieval metadata
	ResourceMappings  map[string]mapping.FieldMapping
	RetrievalMappings map[string]mapping.FieldMapping
}

// Parse decodes and compiles a retriever configuration. Template references
// by name are resolved against templates.
func Parse(data []byte, templates *template.Registry) (*Retriever, error) {
	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing retriever: %w", err)
	}
	return compile(cfg, templates)
}

// LoadFile reads and parses a retriever file.
func LoadFile(path string, templates *template.Registry) (*Retriever, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading retriever: %w", err)
	}
	r, err := Parse(data, templates)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func compile(cfg fileConfig, templates *template.Registry) (*Retriever, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("retriever has no name")
	}
	if cfg.Source == "" {
		cfg.Source = cfg.Name
	}
	if cfg.EndpointTemplate == "" {
		return nil, fmt.Errorf("retriever %s: missing endpoint_template", cfg.Name)
	}
	if err := cfg.ResponseFormat.Validate(); err != nil {
		return nil, fmt.Errorf("retriever %s: %w", cfg.Name, err)
	}

	re, err := regexp.Compile(cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("retriever %s: invalid pattern: %w", cfg.Name, err)
	}
	if cfg.Pattern == "" || re.NumSubexp() != 1 {
		return nil, fmt.Errorf("retriever %s: pattern must have exactly one capture group", cfg.Name)
	}

	r := &Retriever{
		Name:             cfg.Name,
		Description:      cfg.Description,
		BaseURL:          cfg.BaseURL,
		Source:           cfg.Source,
		Pattern:          re,
		EndpointTemplate: cfg.EndpointTemplate,
		Format:           cfg.ResponseFormat,
		Headers:          cfg.Headers,
	}

	if cfg.ResourceTemplate == nil {
		return nil, fmt.Errorf("retriever %s: missing resource_template", cfg.Name)
	}
	if r.ResourceTemplate, err = resolveTemplate(cfg.ResourceTemplate, templates); err != nil {
		return nil, fmt.Errorf("retriever %s: resource_template: %w", cfg.Name, err)
	}
	if r.ResourceMappings, err = compileMappings(cfg.ResourceMappings, r.ResourceTemplate); err != nil {
		return nil, fmt.Errorf("retriever %s: resource_mappings: %w", cfg.Name, err)
	}

	if cfg.RetrievalTemplate != nil {
		if r.RetrievalTemplate, err = resolveTemplate(cfg.RetrievalTemplate, templates); err != nil {
			return nil, fmt.Errorf("retriever %s: retrieval_template: %w", cfg.Name, err)
		}
		if r.RetrievalMappings, err = compileMappings(cfg.RetrievalMappings, r.RetrievalTemplate); err != nil {
			return nil, fmt.Errorf("retriever %s: retrieval_mappings: %w", cfg.Name, err)
		}
	} else if len(cfg.RetrievalMappings) > 0 {
		return nil, fmt.Errorf("retriever %s: retrieval_mappings without retrieval_template", cfg.Name)
	}

	return r, nil
}

// resolveTemplate accepts a template name or an inline template table.
func resolveTemplate(raw any, templates *template.Registry) (*template.Template, error) {
	switch t := raw.(type) {
	case string:
		if templates == nil {
			return nil, fmt.Errorf("template %q referenced but no templates loaded", t)
		}
		tmpl, ok := templates.Get(t)
		if !ok {
			return nil, fmt.Errorf("unknown template %q", t)
		}
		return tmpl, nil
	case map[string]any:
		data, err := toml.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("encoding inline template: %w", err)
		}
		return template.Parse(data)
	default:
		return nil, fmt.Errorf("expected template name or table, got %T", raw)
	}
}

func compileMappings(raw map[string]any, tmpl *template.Template) (map[string]mapping.FieldMapping, error) {
	mappings, err := mapping.DecodeFields(raw)
	if err != nil {
		return nil, err
	}
	for name := range mappings {
		if _, ok := tmpl.Field(name); !ok {
			return nil, fmt.Errorf("mapping %q has no field in template %s", name, tmpl.Name)
		}
	}
	return mappings, nil
}

// ExtractIdentifier returns the pattern's capture group for input, or
// ErrInvalidIdentifier when the pattern does not match.
func (r *Retriever) ExtractIdentifier(input string) (string, error) {
	m := r.Pattern.FindStringSubmatch(input)
	if m == nil {
		return "", fmt.Errorf("%w: %q for %s", ErrInvalidIdentifier, input, r.Name)
	}
	return m[1], nil
}

// EndpointURL builds the request URL for an identifier. Relative endpoint
// templates are joined to the base URL.
func (r *Retriever) EndpointURL(identifier string) string {
	endpoint := strings.ReplaceAll(r.EndpointTemplate, IdentifierPlaceholder, identifier)
	if strings.Contains(endpoint, "://") || r.BaseURL == "" {
		return endpoint
	}
	return strings.TrimSuffix(r.BaseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")
}

// Process turns a raw response body into a validated record. The resource
// and retrieval templates are extracted and validated independently against
// the same tree; source fields are injected afterwards.
func (r *Retriever) Process(data []byte, identifier string) (*record.Record, error) {
	tree, err := r.Format.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name, err)
	}

	resource, err := extract(r.ResourceTemplate, r.ResourceMappings, tree)
	if err != nil {
		return nil, fmt.Errorf("%s resource: %w", r.Name, err)
	}

	var retrieval map[string]any
	if r.RetrievalTemplate != nil {
		if retrieval, err = extract(r.RetrievalTemplate, r.RetrievalMappings, tree); err != nil {
			return nil, fmt.Errorf("%s retrieval: %w", r.Name, err)
		}
	}

	slog.Debug("processed response", "retriever", r.Name, "identifier", identifier,
		"resource_fields", len(resource), "retrieval_fields", len(retrieval))
	return record.New(r.Source, identifier, resource, retrieval), nil
}

func extract(tmpl *template.Template, mappings map[string]mapping.FieldMapping, tree any) (map[string]any, error) {
	values, err := mapping.Extract(tmpl, mappings, tree)
	if err != nil {
		return nil, err
	}
	if err := tmpl.Validate(values); err != nil {
		return nil, err
	}
	return values, nil
}
