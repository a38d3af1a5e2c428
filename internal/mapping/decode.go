package mapping

import (
	"fmt"
	"regexp"
	"sort"
)

// DecodeFields decodes a table of field mappings as produced by the TOML
// decoder. Values take one of these shapes:
//
//	title   = "feed/entry/title"
//	title   = { path = "feed/entry/title", transforms = [...] }
//	date    = { paths = ["y", "m", "d"], with = "-" }
//	authors = { from = "feed/entry/author", map = { name = "name" } }
//
// Regexes are compiled here so that extraction never compiles patterns.
func DecodeFields(raw map[string]any) (map[string]FieldMapping, error) {
	out := make(map[string]FieldMapping, len(raw))
	for _, name := range sortedKeys(raw) {
		fm, err := DecodeField(raw[name])
		if err != nil {
			return nil, fmt.Errorf("mapping %q: %w", name, err)
		}
		out[name] = fm
	}
	return out, nil
}

// DecodeField decodes one field mapping.
func DecodeField(raw any) (FieldMapping, error) {
	switch t := raw.(type) {
	case string:
		return FieldMapping{Mapping: Path{Expr: t}}, nil
	case map[string]any:
		return decodeTable(t)
	default:
		return FieldMapping{}, fmt.Errorf("expected string or table, got %T", raw)
	}
}

func decodeTable(t map[string]any) (FieldMapping, error) {
	var fm FieldMapping

	switch {
	case t["paths"] != nil:
		paths, err := stringList(t["paths"], "paths")
		if err != nil {
			return fm, err
		}
		delim, err := optionalString(t, "with")
		if err != nil {
			return fm, err
		}
		if delim == "" {
			if delim, err = optionalString(t, "delimiter"); err != nil {
				return fm, err
			}
		}
		fm.Mapping = Join{Paths: paths, Delimiter: delim}

	case t["map"] != nil:
		children, ok := t["map"].(map[string]any)
		if !ok {
			return fm, fmt.Errorf("map must be a table")
		}
		from, err := optionalString(t, "from")
		if err != nil {
			return fm, err
		}
		fields, err := DecodeFields(children)
		if err != nil {
			return fm, err
		}
		fm.Mapping = Map{From: from, Fields: fields}

	case t["path"] != nil:
		path, err := optionalString(t, "path")
		if err != nil {
			return fm, err
		}
		fm.Mapping = Path{Expr: path}

	default:
		return fm, fmt.Errorf("table needs one of path, paths or map")
	}

	var rawTransforms []any
	if single, ok := t["transform"]; ok {
		rawTransforms = append(rawTransforms, single)
	}
	if list, ok := t["transforms"]; ok {
		items, ok := list.([]any)
		if !ok {
			return fm, fmt.Errorf("transforms must be an array")
		}
		rawTransforms = append(rawTransforms, items...)
	}
	for i, rt := range rawTransforms {
		tr, err := DecodeTransform(rt)
		if err != nil {
			return fm, fmt.Errorf("transform %d: %w", i, err)
		}
		fm.Transforms = append(fm.Transforms, tr)
	}
	return fm, nil
}

// DecodeTransform decodes a transform table keyed by its "type".
func DecodeTransform(raw any) (Transform, error) {
	t, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected table, got %T", raw)
	}
	kind, err := optionalString(t, "type")
	if err != nil {
		return nil, err
	}

	switch kind {
	case "replace":
		pattern, err := requiredString(t, "pattern")
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid replace pattern: %w", err)
		}
		replacement, err := optionalString(t, "replacement")
		if err != nil {
			return nil, err
		}
		return Replace{Pattern: re, Replacement: replacement}, nil

	case "date":
		from, err := requiredString(t, "from_format")
		if err != nil {
			return nil, err
		}
		to, err := requiredString(t, "to_format")
		if err != nil {
			return nil, err
		}
		return Date{FromFormat: from, ToFormat: to}, nil

	case "url":
		base, err := requiredString(t, "base")
		if err != nil {
			return nil, err
		}
		suffix, err := optionalString(t, "suffix")
		if err != nil {
			return nil, err
		}
		return URL{Base: base, Suffix: suffix}, nil

	case "compose":
		return decodeCompose(t)

	case "":
		return nil, fmt.Errorf("transform has no type")
	default:
		return nil, fmt.Errorf("unknown transform type %q", kind)
	}
}

func decodeCompose(t map[string]any) (Transform, error) {
	var c Compose

	if rawSources, ok := t["sources"]; ok {
		items, ok := rawSources.([]any)
		if !ok {
			return nil, fmt.Errorf("sources must be an array")
		}
		for i, item := range items {
			src, err := decodeSource(item)
			if err != nil {
				return nil, fmt.Errorf("source %d: %w", i, err)
			}
			c.Sources = append(c.Sources, src)
		}
	}

	format, err := decodeFormat(t["format"])
	if err != nil {
		return nil, err
	}
	c.Format = format

	if _, isArray := format.(ArrayOfObjectsFormat); !isArray && len(c.Sources) == 0 {
		return nil, fmt.Errorf("compose needs at least one source")
	}
	return c, nil
}

// decodeSource accepts a bare path string, a table with an explicit type,
// or a table whose keys imply the type.
func decodeSource(raw any) (Source, error) {
	switch t := raw.(type) {
	case string:
		return PathSource{Path: t}, nil
	case map[string]any:
		kind, err := optionalString(t, "type")
		if err != nil {
			return nil, err
		}
		if kind == "" {
			switch {
			case t["key"] != nil:
				kind = "key_value"
			case t["value"] != nil:
				kind = "literal"
			default:
				kind = "path"
			}
		}
		switch kind {
		case "path":
			path, err := requiredString(t, "path")
			if err != nil {
				return nil, err
			}
			return PathSource{Path: path}, nil
		case "literal":
			v, err := requiredString(t, "value")
			if err != nil {
				return nil, err
			}
			return LiteralSource{Value: v}, nil
		case "key_value":
			key, err := requiredString(t, "key")
			if err != nil {
				return nil, err
			}
			path, err := requiredString(t, "path")
			if err != nil {
				return nil, err
			}
			return KeyValueSource{Key: key, Path: path}, nil
		default:
			return nil, fmt.Errorf("unknown source type %q", kind)
		}
	default:
		return nil, fmt.Errorf("expected string or table, got %T", raw)
	}
}

func decodeFormat(raw any) (ComposeFormat, error) {
	var kind string
	var t map[string]any

	switch r := raw.(type) {
	case nil:
		return JoinFormat{Delimiter: " "}, nil
	case string:
		kind = r
	case map[string]any:
		t = r
		var err error
		if kind, err = requiredString(t, "type"); err != nil {
			return nil, fmt.Errorf("format: %w", err)
		}
	default:
		return nil, fmt.Errorf("format must be a string or table, got %T", raw)
	}

	switch kind {
	case "join":
		delim := " "
		if t != nil && t["delimiter"] != nil {
			d, err := optionalString(t, "delimiter")
			if err != nil {
				return nil, err
			}
			delim = d
		}
		return JoinFormat{Delimiter: delim}, nil
	case "object":
		return ObjectFormat{}, nil
	case "array_of_objects":
		if t == nil {
			return nil, fmt.Errorf("array_of_objects format needs a template table")
		}
		rawTmpl, ok := t["template"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("array_of_objects format needs a template table")
		}
		tmpl := make(map[string]string, len(rawTmpl))
		for k, v := range rawTmpl {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("template key %q must be a string", k)
			}
			tmpl[k] = s
		}
		return ArrayOfObjectsFormat{Template: tmpl}, nil
	default:
		return nil, fmt.Errorf("unknown compose format %q", kind)
	}
}

func optionalString(t map[string]any, key string) (string, error) {
	raw, ok := t[key]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, raw)
	}
	return s, nil
}

func requiredString(t map[string]any, key string) (string, error) {
	if _, ok := t[key]; !ok {
		return "", fmt.Errorf("missing %s", key)
	}
	return optionalString(t, key)
}

func stringList(raw any, key string) ([]string, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array", key)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a string", key, i)
		}
		out[i] = s
	}
	return out, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
