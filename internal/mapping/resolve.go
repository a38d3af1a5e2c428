package mapping

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/matsen/learner/internal/value"
)

// ResolvePath walks expr through node. An empty expr yields node itself and
// a single leading "/" is ignored. Object nodes are indexed by key. At an
// array node a numeric component indexes the array; any other component is
// looked up in every object element: a single hit unwraps to that value and
// the walk continues, several hits end the walk and are returned as an
// array. Missing or empty keys, out of range indices and scalars with
// components left over yield false.
func ResolvePath(node any, expr string) (any, bool) {
	if expr == "" {
		return node, true
	}
	current := node
	for _, part := range strings.Split(strings.TrimPrefix(expr, "/"), "/") {
		switch t := current.(type) {
		case map[string]any:
			next, ok := t[part]
			if !ok || part == "" {
				return nil, false
			}
			current = next

		case []any:
			if idx, err := strconv.Atoi(part); err == nil {
				if idx < 0 || idx >= len(t) {
					return nil, false
				}
				current = t[idx]
				continue
			}
			var hits []any
			for _, e := range t {
				if obj, ok := e.(map[string]any); ok {
					if v, ok := obj[part]; ok && part != "" {
						hits = append(hits, v)
					}
				}
			}
			switch len(hits) {
			case 0:
				return nil, false
			case 1:
				current = hits[0]
			default:
				return hits, true
			}

		default:
			return nil, false
		}
	}
	return current, true
}

// Resolve evaluates a mapping against node. The boolean is false when the
// mapping yields no value.
func Resolve(node any, m Mapping) (any, bool) {
	return resolve(node, node, m)
}

// resolve evaluates m against node; root is the document root used by
// anchored paths in transforms of Map children.
func resolve(root, node any, m Mapping) (any, bool) {
	switch m := m.(type) {
	case Path:
		return ResolvePath(node, m.Expr)

	case Join:
		parts := make([]string, 0, len(m.Paths))
		for _, p := range m.Paths {
			v, ok := ResolvePath(node, p)
			if !ok {
				return nil, false
			}
			s, ok := value.AsString(v)
			if !ok {
				return nil, false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, m.Delimiter), true

	case Map:
		src := node
		if m.From != "" {
			v, ok := ResolvePath(node, m.From)
			if !ok {
				return nil, false
			}
			src = v
		}
		if arr, ok := src.([]any); ok {
			out := make([]any, 0, len(arr))
			for _, e := range arr {
				if obj := buildObject(root, e, m.Fields); len(obj) > 0 {
					out = append(out, obj)
				}
			}
			return out, true
		}
		return buildObject(root, src, m.Fields), true

	default:
		return nil, false
	}
}

// buildObject applies child mappings to node. Children that resolve to
// nothing or fail a transform are left out.
func buildObject(root, node any, fields map[string]FieldMapping) map[string]any {
	obj := make(map[string]any, len(fields))
	for name, fm := range fields {
		v, ok := resolve(root, node, fm.Mapping)
		if !ok {
			continue
		}
		v, err := Apply(v, fm.Transforms, root)
		if err != nil {
			slog.Debug("skipping mapped child", "field", name, "error", err)
			continue
		}
		obj[name] = v
	}
	return obj
}
