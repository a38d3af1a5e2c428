package mapping

import (
	"errors"

	"github.com/matsen/learner/internal/template"
	"github.com/matsen/learner/internal/value"
)

// Extract builds the field map for one template from a normalized tree.
// For each template field with a mapping, the mapping is resolved, its
// transforms applied and the result coerced to the field's type. A field
// that resolves to nothing takes its default, fails if required, and is
// otherwise omitted. Unmapped fields only receive their default.
func Extract(tmpl *template.Template, mappings map[string]FieldMapping, tree any) (map[string]any, error) {
	out := make(map[string]any, len(tmpl.Fields))

	for i := range tmpl.Fields {
		f := &tmpl.Fields[i]

		fm, ok := mappings[f.Name]
		if !ok {
			if f.Default != nil {
				out[f.Name] = value.Clone(f.Default)
			}
			continue
		}

		v, found := Resolve(tree, fm.Mapping)
		if !found {
			switch {
			case f.Default != nil:
				out[f.Name] = value.Clone(f.Default)
			case f.Required:
				return nil, &template.MissingFieldError{Field: f.Name}
			}
			continue
		}

		v, err := Apply(v, fm.Transforms, tree)
		if err != nil {
			var tErr *TransformError
			if errors.As(err, &tErr) && tErr.Field == "" {
				tErr.Field = f.Name
			}
			return nil, err
		}

		out[f.Name] = template.Coerce(v, f)
	}

	return out, nil
}
