package mapping

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ncruces/go-strftime"

	"github.com/matsen/learner/internal/value"
)

// ValuePlaceholder is substituted by Url and ArrayOfObjects.
const ValuePlaceholder = "{value}"

// Transform is one of Replace, Date, URL or Compose. Kind names the
// transform in errors and config.
type Transform interface {
	Kind() string
	isTransform()
}

// Replace performs a global regex substitution. Replacement may use $1
// style group references.
type Replace struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Date reparses a date with strftime directives.
type Date struct {
	FromFormat string
	ToFormat   string
}

// URL substitutes the value into Base and appends Suffix.
type URL struct {
	Base   string
	Suffix string
}

// Compose combines several sources into a new value.
type Compose struct {
	Sources []Source
	Format  ComposeFormat
}

func (Replace) Kind() string { return "replace" }
func (Date) Kind() string    { return "date" }
func (URL) Kind() string     { return "url" }
func (Compose) Kind() string { return "compose" }

func (Replace) isTransform() {}
func (Date) isTransform()    {}
func (URL) isTransform()     {}
func (Compose) isTransform() {}

// Source is one of PathSource, LiteralSource or KeyValueSource. Paths are
// relative to the value being composed; a leading "/" anchors them at the
// document root.
type Source interface {
	isSource()
}

// PathSource reads a value by path.
type PathSource struct {
	Path string
}

// LiteralSource contributes fixed text.
type LiteralSource struct {
	Value string
}

// KeyValueSource reads a value by path and names it for Object output.
type KeyValueSource struct {
	Key  string
	Path string
}

func (PathSource) isSource()     {}
func (LiteralSource) isSource()  {}
func (KeyValueSource) isSource() {}

// ComposeFormat is one of JoinFormat, ObjectFormat or ArrayOfObjectsFormat.
type ComposeFormat interface {
	isFormat()
}

// JoinFormat concatenates the string forms of all sources.
type JoinFormat struct {
	Delimiter string
}

// ObjectFormat builds an object from KeyValue sources.
type ObjectFormat struct{}

// ArrayOfObjectsFormat builds one object per input element from Template,
// replacing {value} with the element's string form. KeyValue sources add
// extra keys resolved against each element.
type ArrayOfObjectsFormat struct {
	Template map[string]string
}

func (JoinFormat) isFormat()           {}
func (ObjectFormat) isFormat()         {}
func (ArrayOfObjectsFormat) isFormat() {}

// Apply runs transforms in order, each consuming the previous result.
// root is the normalized document, used by anchored Compose paths.
func Apply(v any, transforms []Transform, root any) (any, error) {
	var err error
	for _, t := range transforms {
		v, err = applyOne(v, t, root)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func applyOne(v any, t Transform, root any) (any, error) {
	switch t := t.(type) {
	case Replace:
		return eachString(v, t.Kind(), func(s string) (any, error) {
			return t.Pattern.ReplaceAllString(s, t.Replacement), nil
		})
	case Date:
		return eachString(v, t.Kind(), func(s string) (any, error) {
			parsed, err := strftime.Parse(t.FromFormat, strings.TrimSpace(s))
			if err != nil {
				return nil, transformErr(t.Kind(), fmt.Sprintf("cannot parse %q with %q", s, t.FromFormat), err)
			}
			return strftime.Format(t.ToFormat, parsed), nil
		})
	case URL:
		return eachString(v, t.Kind(), func(s string) (any, error) {
			return strings.ReplaceAll(t.Base, ValuePlaceholder, s) + t.Suffix, nil
		})
	case Compose:
		return compose(v, t, root)
	default:
		return nil, transformErr(fmt.Sprintf("%T", t), "unknown transform", nil)
	}
}

// eachString applies fn to a string-representable value, or to every
// element of an array of them.
func eachString(v any, kind string, fn func(string) (any, error)) (any, error) {
	if arr, ok := v.([]any); ok {
		out := make([]any, len(arr))
		for i, e := range arr {
			r, err := eachString(e, kind, fn)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	s, ok := value.AsString(v)
	if !ok {
		return nil, transformErr(kind, fmt.Sprintf("requires string input, got %s", value.KindOf(v)), nil)
	}
	return fn(s)
}

func compose(v any, c Compose, root any) (any, error) {
	switch f := c.Format.(type) {
	case ArrayOfObjectsFormat:
		arr, ok := v.([]any)
		if !ok {
			arr = []any{v}
		}
		out := make([]any, 0, len(arr))
		for _, e := range arr {
			text := value.Stringify(e)
			obj := make(map[string]any, len(f.Template))
			for k, tmpl := range f.Template {
				obj[k] = strings.ReplaceAll(tmpl, ValuePlaceholder, text)
			}
			for _, src := range c.Sources {
				if kv, ok := src.(KeyValueSource); ok {
					if sv, ok := sourcePath(e, root, kv.Path); ok {
						obj[kv.Key] = sv
					}
				}
			}
			out = append(out, obj)
		}
		return out, nil

	case JoinFormat, ObjectFormat:
		if arr, ok := v.([]any); ok {
			out := make([]any, 0, len(arr))
			for _, e := range arr {
				r, ok, err := composeOne(e, c.Sources, f, root)
				if err != nil {
					return nil, err
				}
				if ok {
					out = append(out, r)
				}
			}
			return out, nil
		}
		r, ok, err := composeOne(v, c.Sources, f, root)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, transformErr(c.Kind(), "no source produced a value", nil)
		}
		return r, nil

	default:
		return nil, transformErr(c.Kind(), fmt.Sprintf("unknown format %T", f), nil)
	}
}

// composeOne combines the sources for a single input value. Sources that
// do not resolve are skipped; ok is false when nothing resolved.
func composeOne(v any, sources []Source, format ComposeFormat, root any) (any, bool, error) {
	switch f := format.(type) {
	case JoinFormat:
		var parts []string
		for _, src := range sources {
			var sv any
			switch s := src.(type) {
			case LiteralSource:
				parts = append(parts, s.Value)
				continue
			case PathSource:
				r, ok := sourcePath(v, root, s.Path)
				if !ok {
					continue
				}
				sv = r
			case KeyValueSource:
				r, ok := sourcePath(v, root, s.Path)
				if !ok {
					continue
				}
				sv = r
			}
			text, ok := value.AsString(sv)
			if !ok {
				return nil, false, transformErr("compose", fmt.Sprintf("cannot join %s value", value.KindOf(sv)), nil)
			}
			parts = append(parts, text)
		}
		if len(parts) == 0 {
			return nil, false, nil
		}
		return strings.Join(parts, f.Delimiter), true, nil

	case ObjectFormat:
		obj := make(map[string]any, len(sources))
		for _, src := range sources {
			kv, ok := src.(KeyValueSource)
			if !ok {
				return nil, false, transformErr("compose", "object format requires key_value sources", nil)
			}
			if sv, ok := sourcePath(v, root, kv.Path); ok {
				obj[kv.Key] = sv
			}
		}
		if len(obj) == 0 {
			return nil, false, nil
		}
		return obj, true, nil
	}
	return nil, false, nil
}

func sourcePath(v, root any, path string) (any, bool) {
	if strings.HasPrefix(path, "/") {
		return ResolvePath(root, path)
	}
	return ResolvePath(v, path)
}
